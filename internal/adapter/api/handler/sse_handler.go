package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/V4T54L/lead-intake/internal/adapter/pii"
	"github.com/V4T54L/lead-intake/internal/domain"
)

const sseHeartbeat = 15 * time.Second

// SSEBroker fans committed lead events out to connected dashboard clients.
// It implements domain.EventPublisher.
type SSEBroker struct {
	logger   *slog.Logger
	redactor *pii.Redactor
	clients  map[chan []byte]struct{}
	mu       sync.RWMutex
}

// NewSSEBroker creates a new SSEBroker. redactor may be nil.
func NewSSEBroker(redactor *pii.Redactor, logger *slog.Logger) *SSEBroker {
	return &SSEBroker{
		logger:   logger.With("component", "sse_broker"),
		redactor: redactor,
		clients:  make(map[chan []byte]struct{}),
	}
}

// Publish broadcasts event to every connected client. Slow clients miss it.
func (b *SSEBroker) Publish(_ context.Context, event domain.LeadEvent) error {
	data, err := json.Marshal(b.redactor.Redact(event))
	if err != nil {
		return fmt.Errorf("failed to marshal lead event: %w", err)
	}
	b.broadcast(data)
	return nil
}

// Clients returns the number of connected clients.
func (b *SSEBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP handles new client connections for the SSE stream.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		b.logger.Error("streaming unsupported", "error", err)
		return
	}

	messageChan := make(chan []byte, 16)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: lead\ndata: %s\n\n", msg)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (b *SSEBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected", "clients", len(b.clients))
}

func (b *SSEBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected", "clients", len(b.clients))
	}
}

func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			b.logger.Warn("SSE client buffer full, dropping event")
		}
	}
}

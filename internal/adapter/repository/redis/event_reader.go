package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/lead-intake/internal/domain"
)

// EventReader inspects the lead event stream.
type EventReader struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewEventReader creates a new EventReader.
func NewEventReader(client *redis.Client, stream string, logger *slog.Logger) *EventReader {
	if stream == "" {
		stream = DefaultEventStream
	}
	return &EventReader{
		client: client,
		stream: stream,
		logger: logger.With("component", "redis_event_reader", "stream", stream),
	}
}

// Stream returns the stream key being read.
func (r *EventReader) Stream() string {
	return r.stream
}

// Recent returns up to count events, newest first.
func (r *EventReader) Recent(ctx context.Context, count int64) ([]domain.RecordedEvent, error) {
	messages, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", count).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read stream %s: %w", r.stream, err)
	}

	events := make([]domain.RecordedEvent, 0, len(messages))
	for _, msg := range messages {
		payload, ok := msg.Values["payload"].(string)
		if !ok {
			r.logger.Warn("Invalid message format in stream, skipping", "message_id", msg.ID)
			continue
		}
		var event domain.LeadEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			r.logger.Warn("Failed to unmarshal lead event from stream, skipping", "message_id", msg.ID, "error", err)
			continue
		}
		events = append(events, domain.RecordedEvent{MessageID: msg.ID, Event: event})
	}
	return events, nil
}

// Length returns the number of entries in the stream.
func (r *EventReader) Length(ctx context.Context) (int64, error) {
	n, err := r.client.XLen(ctx, r.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get length of stream %s: %w", r.stream, err)
	}
	return n, nil
}

// Trim trims the stream to a maximum length.
func (r *EventReader) Trim(ctx context.Context, maxLen int64) (int64, error) {
	return r.client.XTrimMaxLen(ctx, r.stream, maxLen).Result()
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/lead-intake/internal/adapter/pii"
	"github.com/V4T54L/lead-intake/internal/domain"
)

const DefaultEventStream = "lead_events"

// EventPublisher appends lead lifecycle events to a Redis Stream.
type EventPublisher struct {
	client   *redis.Client
	stream   string
	maxLen   int64
	redactor *pii.Redactor
	logger   *slog.Logger
}

// NewEventPublisher creates an EventPublisher. maxLen <= 0 disables trimming.
// redactor may be nil.
func NewEventPublisher(client *redis.Client, stream string, maxLen int64, redactor *pii.Redactor, logger *slog.Logger) *EventPublisher {
	if stream == "" {
		stream = DefaultEventStream
	}
	return &EventPublisher{
		client:   client,
		stream:   stream,
		maxLen:   maxLen,
		redactor: redactor,
		logger:   logger.With("component", "redis_event_publisher", "stream", stream),
	}
}

// Publish redacts the payload and XADDs the event.
func (p *EventPublisher) Publish(ctx context.Context, event domain.LeadEvent) error {
	event = p.redactor.Redact(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lead event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"payload": payload,
			"type":    event.Type,
			"lead_id": event.LeadID,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	p.logger.Debug("Published lead event", "event_id", event.ID, "type", event.Type, "message_id", id)
	return nil
}

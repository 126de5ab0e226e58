package domain

import "context"

// RecordedEvent is a published lead event together with the id the event
// stream assigned to it.
type RecordedEvent struct {
	MessageID string    `json:"message_id"`
	Event     LeadEvent `json:"event"`
}

// EventLogInfo summarizes the event stream.
type EventLogInfo struct {
	Stream string `json:"stream"`
	Length int64  `json:"length"`
}

// EventLog exposes the published event stream for inspection and maintenance.
type EventLog interface {
	Stream() string
	Recent(ctx context.Context, count int64) ([]RecordedEvent, error)
	Length(ctx context.Context) (int64, error)
	Trim(ctx context.Context, maxLen int64) (int64, error)
}

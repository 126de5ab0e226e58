package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/V4T54L/lead-intake/internal/domain"
)

const (
	defaultRecentEvents = 50
	maxRecentEvents     = 500
)

// ErrInvalidMaxLen is returned when a trim would empty the stream by accident.
var ErrInvalidMaxLen = errors.New("max length must be positive")

// EventLogUseCase provides use cases for inspecting the lead event stream.
type EventLogUseCase struct {
	log domain.EventLog
}

// NewEventLogUseCase creates a new EventLogUseCase.
func NewEventLogUseCase(log domain.EventLog) *EventLogUseCase {
	return &EventLogUseCase{log: log}
}

// Info reports the stream name and its current length.
func (uc *EventLogUseCase) Info(ctx context.Context) (domain.EventLogInfo, error) {
	n, err := uc.log.Length(ctx)
	if err != nil {
		return domain.EventLogInfo{}, err
	}
	return domain.EventLogInfo{Stream: uc.log.Stream(), Length: n}, nil
}

// Recent returns the newest events. count is clamped to [1, maxRecentEvents].
func (uc *EventLogUseCase) Recent(ctx context.Context, count int64) ([]domain.RecordedEvent, error) {
	if count <= 0 {
		count = defaultRecentEvents
	}
	if count > maxRecentEvents {
		count = maxRecentEvents
	}
	events, err := uc.log.Recent(ctx, count)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.RecordedEvent{}
	}
	return events, nil
}

// Trim caps the stream at maxLen entries and returns how many were removed.
func (uc *EventLogUseCase) Trim(ctx context.Context, maxLen int64) (int64, error) {
	if maxLen <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMaxLen, maxLen)
	}
	return uc.log.Trim(ctx, maxLen)
}

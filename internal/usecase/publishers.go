package usecase

import (
	"context"
	"errors"

	"github.com/V4T54L/lead-intake/internal/domain"
)

// Publishers delivers each event to every publisher in order. Delivery
// continues past failures; the joined error reports all of them.
type Publishers []domain.EventPublisher

// Publish implements domain.EventPublisher.
func (ps Publishers) Publish(ctx context.Context, event domain.LeadEvent) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

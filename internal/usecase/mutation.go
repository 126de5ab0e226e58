package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/lead-intake/internal/domain"
)

const maxIDAttempts = 8

var errIDExhausted = errors.New("could not generate a unique lead id")

// MutationService assigns identity and timestamps and applies partial updates.
// Each call is a full load-modify-save cycle against the store. It does no
// locking of its own; LeadCollection serializes calls.
type MutationService struct {
	store  domain.LeadStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// MutationOption customizes a MutationService.
type MutationOption func(*MutationService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MutationOption {
	return func(s *MutationService) { s.now = now }
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(newID func() string) MutationOption {
	return func(s *MutationService) { s.newID = newID }
}

// NewMutationService creates a new MutationService.
func NewMutationService(store domain.LeadStore, logger *slog.Logger, opts ...MutationOption) *MutationService {
	s := &MutationService{
		store:  store,
		logger: logger.With("component", "mutation_service"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create appends a new PENDING lead to a freshly loaded snapshot and persists it.
func (s *MutationService) Create(ctx context.Context, in domain.LeadInput) (domain.Lead, error) {
	leads, err := s.store.LoadAll(ctx)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load leads: %w", err)
	}

	id, err := s.uniqueID(leads)
	if err != nil {
		return domain.Lead{}, err
	}

	now := s.now()
	lead := domain.Lead{
		ID:                   id,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		LinkedinURL:          in.LinkedinURL,
		CountryOfCitizenship: domain.CountryName(in.CountryOfCitizenship),
		InterestedVisas:      append([]string(nil), in.InterestedVisas...),
		ResumeURL:            in.ResumeURL,
		OpenInput:            in.OpenInput,
		Status:               domain.StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if lead.InterestedVisas == nil && in.InterestedVisas != nil {
		lead.InterestedVisas = []string{}
	}

	if err := s.store.SaveAll(ctx, append(leads, lead)); err != nil {
		return domain.Lead{}, fmt.Errorf("save leads: %w", err)
	}

	s.logger.Debug("lead created", "lead_id", lead.ID)
	return lead.Clone(), nil
}

// Update merges patch over the stored record and refreshes UpdatedAt, even
// when no field changes. UpdatedAt always moves strictly forward.
func (s *MutationService) Update(ctx context.Context, id string, patch domain.LeadPatch) (domain.Lead, error) {
	leads, err := s.store.LoadAll(ctx)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load leads: %w", err)
	}

	idx := indexOf(leads, id)
	if idx < 0 {
		return domain.Lead{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	prev := leads[idx]
	updated := patch.Apply(prev)
	now := s.now()
	if !now.After(prev.UpdatedAt) {
		now = prev.UpdatedAt.Add(time.Nanosecond)
	}
	updated.UpdatedAt = now
	leads[idx] = updated

	if err := s.store.SaveAll(ctx, leads); err != nil {
		return domain.Lead{}, fmt.Errorf("save leads: %w", err)
	}

	s.logger.Debug("lead updated", "lead_id", id)
	return updated.Clone(), nil
}

// Delete removes the record with the given id and persists the remainder.
func (s *MutationService) Delete(ctx context.Context, id string) (domain.Lead, error) {
	leads, err := s.store.LoadAll(ctx)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load leads: %w", err)
	}

	idx := indexOf(leads, id)
	if idx < 0 {
		return domain.Lead{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	removed := leads[idx]
	remaining := make([]domain.Lead, 0, len(leads)-1)
	remaining = append(remaining, leads[:idx]...)
	remaining = append(remaining, leads[idx+1:]...)

	if err := s.store.SaveAll(ctx, remaining); err != nil {
		return domain.Lead{}, fmt.Errorf("save leads: %w", err)
	}

	s.logger.Debug("lead deleted", "lead_id", id)
	return removed, nil
}

func (s *MutationService) uniqueID(leads []domain.Lead) (string, error) {
	taken := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		taken[l.ID] = struct{}{}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if _, dup := taken[id]; !dup && id != "" {
			return id, nil
		}
		s.logger.Warn("generated lead id collides with existing record, retrying", "attempt", i+1)
	}
	return "", errIDExhausted
}

func indexOf(leads []domain.Lead, id string) int {
	for i := range leads {
		if leads[i].ID == id {
			return i
		}
	}
	return -1
}

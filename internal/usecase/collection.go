package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/lead-intake/internal/adapter/metrics"
	"github.com/V4T54L/lead-intake/internal/domain"
)

// LeadCollection is the single entry point used by the boundary layer.
// Mutations hold mu exclusively across their load-modify-save cycle and the
// publish of their event, so events leave in commit order. Reads hold it
// shared. Every unit runs detached from caller cancellation so a dropped
// request cannot interrupt a save.
type LeadCollection struct {
	mu        sync.RWMutex
	store     domain.LeadStore
	mutations *MutationService
	publisher domain.EventPublisher
	metrics   *metrics.LeadMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewLeadCollection creates a new LeadCollection. publisher and m may be nil.
func NewLeadCollection(store domain.LeadStore, publisher domain.EventPublisher, m *metrics.LeadMetrics, logger *slog.Logger, opts ...MutationOption) *LeadCollection {
	mutations := NewMutationService(store, logger, opts...)
	return &LeadCollection{
		store:     store,
		mutations: mutations,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("component", "lead_collection"),
		now:       mutations.now,
	}
}

// Create stores a new lead built from validated input.
func (c *LeadCollection) Create(ctx context.Context, in domain.LeadInput) (lead domain.Lead, err error) {
	defer c.observe("create", time.Now(), &err)
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	lead, err = c.mutations.Create(ctx, in)
	if err != nil {
		c.logger.Error("failed to create lead", "error", err)
		return domain.Lead{}, err
	}

	c.logger.Info("lead created", "lead_id", lead.ID)
	c.emit(ctx, domain.EventLeadCreated, &lead)
	return lead, nil
}

// GetByID returns the lead with the given id or domain.ErrNotFound.
func (c *LeadCollection) GetByID(ctx context.Context, id string) (lead domain.Lead, err error) {
	defer c.observe("get", time.Now(), &err)
	ctx = context.WithoutCancel(ctx)

	c.mu.RLock()
	leads, err := c.store.LoadAll(ctx)
	c.mu.RUnlock()
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load leads: %w", err)
	}

	if idx := indexOf(leads, id); idx >= 0 {
		return leads[idx], nil
	}
	return domain.Lead{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

// ListFiltered returns one page of the collection. Limit is validated before
// the store is read.
func (c *LeadCollection) ListFiltered(ctx context.Context, params domain.ListParams) (page domain.LeadPage, err error) {
	defer c.observe("list", time.Now(), &err)
	if params.Limit <= 0 {
		return domain.LeadPage{}, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidFilterArgs, params.Limit)
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.RLock()
	leads, err := c.store.LoadAll(ctx)
	c.mu.RUnlock()
	if err != nil {
		return domain.LeadPage{}, fmt.Errorf("load leads: %w", err)
	}

	return FilterLeads(leads, params)
}

// UpdateStatus validates status and applies it to the lead with the given id.
func (c *LeadCollection) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus) (lead domain.Lead, err error) {
	defer c.observe("update_status", time.Now(), &err)
	if !status.Valid() {
		return domain.Lead{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	lead, err = c.mutations.Update(ctx, id, domain.StatusPatch(status))
	if err != nil {
		return domain.Lead{}, err
	}

	c.logger.Info("lead status updated", "lead_id", id, "status", status)
	c.emit(ctx, domain.EventLeadStatusChanged, &lead)
	return lead, nil
}

// Delete removes a lead. It is not routed over HTTP.
func (c *LeadCollection) Delete(ctx context.Context, id string) (lead domain.Lead, err error) {
	defer c.observe("delete", time.Now(), &err)
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	lead, err = c.mutations.Delete(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	c.logger.Info("lead deleted", "lead_id", id)
	c.emit(ctx, domain.EventLeadDeleted, &lead)
	return lead, nil
}

// Reset replaces the whole collection with seed.
func (c *LeadCollection) Reset(ctx context.Context, seed []domain.Lead) (err error) {
	defer c.observe("reset", time.Now(), &err)
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.store.SaveAll(ctx, domain.CloneLeads(seed))
	if err != nil {
		return fmt.Errorf("reset leads: %w", err)
	}

	c.logger.Info("lead collection reset", "count", len(seed))
	c.emit(ctx, domain.EventCollectionReset, nil)
	return nil
}

// emit publishes a lifecycle event. The mutation has already committed, so a
// publishing failure is logged and counted but not returned.
func (c *LeadCollection) emit(ctx context.Context, eventType string, lead *domain.Lead) {
	if c.publisher == nil {
		return
	}

	event := domain.LeadEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: c.now(),
	}
	if lead != nil {
		event.LeadID = lead.ID
		event.Status = lead.Status
		payload, err := leadPayload(*lead)
		if err != nil {
			c.logger.Warn("failed to build event payload, publishing without it", "error", err, "lead_id", lead.ID)
		}
		event.Payload = payload
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Error("failed to publish lead event", "error", err, "type", eventType, "event_id", event.ID)
		c.metrics.RecordEvent(eventType, "error")
		return
	}
	c.metrics.RecordEvent(eventType, "published")
}

func (c *LeadCollection) observe(op string, start time.Time, err *error) {
	c.metrics.ObserveOperation(op, time.Since(start), *err)
}

func leadPayload(l domain.Lead) (map[string]any, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

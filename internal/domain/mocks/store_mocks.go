package mocks

import (
	"context"
	"sync"

	"github.com/V4T54L/lead-intake/internal/domain"
)

// MockLeadStore is a mock implementation of domain.LeadStore for testing.
type MockLeadStore struct {
	mu        sync.Mutex
	Leads     []domain.Lead
	LoadErr   error
	SaveErr   error
	LoadCalls int
	SaveCalls int
}

func (m *MockLeadStore) LoadAll(ctx context.Context) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return domain.CloneLeads(m.Leads), nil
}

func (m *MockLeadStore) SaveAll(ctx context.Context, leads []domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Leads = domain.CloneLeads(leads)
	return nil
}

// Snapshot returns a copy of the stored collection.
func (m *MockLeadStore) Snapshot() []domain.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneLeads(m.Leads)
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mu         sync.Mutex
	Events     []domain.LeadEvent
	PublishErr error
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.LeadEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Events = append(m.Events, event)
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockEventPublisher) Published() []domain.LeadEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LeadEvent(nil), m.Events...)
}

// MockEventLog is a mock implementation of domain.EventLog for testing.
type MockEventLog struct {
	StreamName  string
	Events      []domain.RecordedEvent
	Err         error
	LastCount   int64
	LastTrimLen int64
}

func (m *MockEventLog) Stream() string { return m.StreamName }

func (m *MockEventLog) Recent(ctx context.Context, count int64) ([]domain.RecordedEvent, error) {
	m.LastCount = count
	if m.Err != nil {
		return nil, m.Err
	}
	if int64(len(m.Events)) > count {
		return m.Events[:count], nil
	}
	return m.Events, nil
}

func (m *MockEventLog) Length(ctx context.Context) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.Events)), nil
}

func (m *MockEventLog) Trim(ctx context.Context, maxLen int64) (int64, error) {
	m.LastTrimLen = maxLen
	if m.Err != nil {
		return 0, m.Err
	}
	if int64(len(m.Events)) <= maxLen {
		return 0, nil
	}
	removed := int64(len(m.Events)) - maxLen
	m.Events = m.Events[:maxLen]
	return removed, nil
}

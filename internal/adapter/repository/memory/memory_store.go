package memory

import (
	"context"
	"sync"

	"github.com/V4T54L/lead-intake/internal/domain"
)

// MemoryStore holds the collection in process memory. Snapshots are deep
// copied in both directions so callers never share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	leads []domain.Lead
}

// NewMemoryStore creates a MemoryStore that starts from seed.
func NewMemoryStore(seed []domain.Lead) *MemoryStore {
	leads := domain.CloneLeads(seed)
	if leads == nil {
		leads = []domain.Lead{}
	}
	return &MemoryStore{leads: leads}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLeads(s.leads), nil
}

func (s *MemoryStore) SaveAll(ctx context.Context, leads []domain.Lead) error {
	cp := domain.CloneLeads(leads)
	if cp == nil {
		cp = []domain.Lead{}
	}
	s.mu.Lock()
	s.leads = cp
	s.mu.Unlock()
	return nil
}

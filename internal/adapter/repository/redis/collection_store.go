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

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// CollectionStore keeps the whole collection as one JSON string under a
// single key. SET replaces the value atomically.
type CollectionStore struct {
	client *redis.Client
	key    string
	seed   []domain.Lead
	logger *slog.Logger
}

// NewCollectionStore creates a Redis-backed domain.LeadStore.
func NewCollectionStore(client *redis.Client, key string, seed []domain.Lead, logger *slog.Logger) *CollectionStore {
	return &CollectionStore{
		client: client,
		key:    key,
		seed:   domain.CloneLeads(seed),
		logger: logger.With("component", "redis_collection_store", "key", key),
	}
}

// LoadAll reads the collection. A missing key is initialized with the seed
// unless another writer got there first.
func (s *CollectionStore) LoadAll(ctx context.Context) ([]domain.Lead, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.initialize(ctx)
	}
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}
	return s.decode(data)
}

// SaveAll replaces the stored collection.
func (s *CollectionStore) SaveAll(ctx context.Context, leads []domain.Lead) error {
	data, err := encode(leads)
	if err != nil {
		return domain.NewStoreError("save", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.logger.Error("Failed to save lead collection", "error", err)
		return domain.NewStoreError("save", err)
	}
	return nil
}

func (s *CollectionStore) initialize(ctx context.Context) ([]domain.Lead, error) {
	data, err := encode(s.seed)
	if err != nil {
		return nil, domain.NewStoreError("seed", err)
	}
	created, err := s.client.SetNX(ctx, s.key, data, 0).Result()
	if err != nil {
		return nil, domain.NewStoreError("seed", err)
	}
	if created {
		s.logger.Info("Lead collection key not found, initialized with seed", "count", len(s.seed))
		return s.decode(data)
	}

	current, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}
	return s.decode(current)
}

func (s *CollectionStore) decode(data []byte) ([]domain.Lead, error) {
	var leads []domain.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		s.logger.Error("Lead collection value is corrupt", "error", err)
		return nil, domain.NewStoreError("decode", err)
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

func encode(leads []domain.Lead) ([]byte, error) {
	if leads == nil {
		leads = []domain.Lead{}
	}
	data, err := json.Marshal(leads)
	if err != nil {
		return nil, fmt.Errorf("failed to encode leads: %w", err)
	}
	return data, nil
}

// Package repository selects and constructs the configured lead store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/V4T54L/lead-intake/internal/adapter/repository/file"
	"github.com/V4T54L/lead-intake/internal/adapter/repository/memory"
	redisrepo "github.com/V4T54L/lead-intake/internal/adapter/repository/redis"
	"github.com/V4T54L/lead-intake/internal/adapter/repository/sqlstore"
	"github.com/V4T54L/lead-intake/internal/domain"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
)

func noopClose() error { return nil }

// Open builds the LeadStore named by cfg.StoreDriver. redisClient is reused
// by the redis driver when non-nil; otherwise one is dialed from
// cfg.RedisURL. The returned close function releases whatever Open acquired.
func Open(ctx context.Context, cfg *config.Config, redisClient *goredis.Client, seed []domain.Lead, logger *slog.Logger) (domain.LeadStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreFile:
		store, err := file.NewFileStore(cfg.DataFile, seed, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, noopClose, nil

	case config.StoreMemory:
		return memory.NewMemoryStore(seed), noopClose, nil

	case config.StoreSQLite:
		store, err := sqlstore.NewSQLiteStore(ctx, cfg.SQLitePath, seed, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.StorePostgres:
		store, err := sqlstore.NewPostgresStore(ctx, cfg.PostgresURL, seed, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.StoreRedis:
		closeFn := noopClose
		if redisClient == nil {
			client, err := redisrepo.NewClient(ctx, cfg.RedisURL)
			if err != nil {
				return nil, nil, err
			}
			redisClient, closeFn = client, client.Close
		}
		return redisrepo.NewCollectionStore(redisClient, cfg.RedisCollectionKey, seed, logger), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

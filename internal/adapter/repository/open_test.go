package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/lead-intake/internal/adapter/repository/seed"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
)

func TestOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	drivers := []*config.Config{
		{StoreDriver: config.StoreFile, DataFile: filepath.Join(dir, "leads.json")},
		{StoreDriver: config.StoreMemory},
		{StoreDriver: config.StoreSQLite, SQLitePath: filepath.Join(dir, "leads.db")},
		{StoreDriver: config.StoreRedis, RedisURL: "redis://" + mr.Addr() + "/0", RedisCollectionKey: "leads:collection"},
	}

	for _, cfg := range drivers {
		t.Run(cfg.StoreDriver, func(t *testing.T) {
			ctx := context.Background()
			store, closeFn, err := Open(ctx, cfg, nil, seed.Default(), logger)
			require.NoError(t, err)
			defer closeFn()

			leads, err := store.LoadAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, seed.Default(), leads)

			require.NoError(t, store.SaveAll(ctx, leads[:1]))
			leads, err = store.LoadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, leads, 1)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, _, err := Open(context.Background(), &config.Config{StoreDriver: "mongo"}, nil, nil, logger)
	assert.ErrorContains(t, err, "unknown store driver")
}

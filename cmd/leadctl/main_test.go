package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisrepo "github.com/V4T54L/lead-intake/internal/adapter/repository/redis"
	"github.com/V4T54L/lead-intake/internal/adapter/repository/seed"
	"github.com/V4T54L/lead-intake/internal/domain"
	"github.com/V4T54L/lead-intake/internal/pkg/auth"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreDriver:  config.StoreFile,
		DataFile:     filepath.Join(t.TempDir(), "leads.json"),
		JWTSecret:    "cli-secret",
		JWTTTL:       time.Hour,
		EventsStream: "lead_events",
	}
}

func TestRun_Usage(t *testing.T) {
	cfg := fileConfig(t)
	assert.ErrorIs(t, run(context.Background(), cfg, testLogger, nil, io.Discard), errUsage)
	assert.ErrorIs(t, run(context.Background(), cfg, testLogger, []string{"explode"}, io.Discard), errUsage)
	assert.ErrorIs(t, run(context.Background(), cfg, testLogger, []string{"list", "-bogus"}, io.Discard), errUsage)
}

func TestRun_Token(t *testing.T) {
	cfg := fileConfig(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, testLogger, []string{"token", "-user", "ops"}, &out))

	claims, err := auth.ValidateToken(strings.TrimSpace(out.String()), cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestRun_ListAndReset(t *testing.T) {
	cfg := fileConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, testLogger, []string{"list", "-limit", "3"}, &out))
	var page domain.LeadPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	assert.Equal(t, len(seed.Default()), page.Total)
	assert.Len(t, page.Items, 3)

	out.Reset()
	require.NoError(t, run(ctx, cfg, testLogger, []string{"list", "-status", string(domain.StatusReachedOut)}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	for _, l := range page.Items {
		assert.Equal(t, domain.StatusReachedOut, l.Status)
	}

	seedFile := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, writeFile(seedFile, `[{"id":"only","firstName":"Solo","lastName":"Lead","email":"solo@example.com","status":"PENDING","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`))

	out.Reset()
	require.NoError(t, run(ctx, cfg, testLogger, []string{"reset", "-seed", seedFile}, &out))
	assert.Contains(t, out.String(), "restored 1 leads")

	out.Reset()
	require.NoError(t, run(ctx, cfg, testLogger, []string{"list"}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "only", page.Items[0].ID)
}

func TestRun_ListRejectsBadLimit(t *testing.T) {
	err := run(context.Background(), fileConfig(t), testLogger, []string{"list", "-limit", "0"}, io.Discard)
	assert.ErrorIs(t, err, domain.ErrInvalidFilterArgs)
}

func TestRun_Events(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := fileConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	ctx := context.Background()
	client, err := redisrepo.NewClient(ctx, cfg.RedisURL)
	require.NoError(t, err)
	defer client.Close()
	pub := redisrepo.NewEventPublisher(client, cfg.EventsStream, 0, nil, testLogger)
	require.NoError(t, pub.Publish(ctx, domain.LeadEvent{ID: "e1", Type: domain.EventCollectionReset, OccurredAt: time.Now().UTC()}))

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, testLogger, []string{"events", "-count", "5"}, &out))
	var events []domain.RecordedEvent
	require.NoError(t, json.Unmarshal(out.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCollectionReset, events[0].Event.Type)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

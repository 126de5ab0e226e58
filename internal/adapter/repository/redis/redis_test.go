package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/lead-intake/internal/adapter/pii"
	"github.com/V4T54L/lead-intake/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testLeads() []domain.Lead {
	created := time.Date(2024, 2, 2, 14, 45, 0, 0, time.UTC)
	return []domain.Lead{
		{ID: "1", FirstName: "Jorge", Email: "jorge@example.com", InterestedVisas: []string{"O-1"}, Status: domain.StatusPending, CreatedAt: created, UpdatedAt: created},
		{ID: "2", FirstName: "Mary", Email: "mary@example.com", InterestedVisas: []string{}, Status: domain.StatusReachedOut, CreatedAt: created, UpdatedAt: created},
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestCollectionStore(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewCollectionStore(client, "leads:collection", testLeads(), testLogger)

	leads, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testLeads(), leads)
	assert.True(t, mr.Exists("leads:collection"), "seed is persisted on first load")

	leads = append(leads, domain.Lead{ID: "3", Status: domain.StatusPending})
	require.NoError(t, store.SaveAll(ctx, leads))

	// A second store on the same key sees the saved state, not its own seed.
	other := NewCollectionStore(client, "leads:collection", nil, testLogger)
	got, err := other.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[2].ID)
}

func TestCollectionStore_Corrupt(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set("leads:collection", "{broken"))

	_, err := NewCollectionStore(client, "leads:collection", nil, testLogger).LoadAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCollectionStore_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewCollectionStore(client, "leads:collection", nil, testLogger)
	mr.Close()

	_, err := store.LoadAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, store.SaveAll(context.Background(), testLeads()), domain.ErrStoreUnavailable)
}

func TestEventPublisherAndReader(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	publisher := NewEventPublisher(client, "lead_events", 100, pii.NewRedactor([]string{"email"}), testLogger)
	reader := NewEventReader(client, "lead_events", testLogger)

	events := []domain.LeadEvent{
		{ID: "e1", Type: domain.EventLeadCreated, LeadID: "1", Status: domain.StatusPending, OccurredAt: time.Now().UTC(), Payload: map[string]any{"email": "jorge@example.com", "firstName": "Jorge"}},
		{ID: "e2", Type: domain.EventLeadStatusChanged, LeadID: "1", Status: domain.StatusReachedOut, OccurredAt: time.Now().UTC()},
	}
	for _, e := range events {
		require.NoError(t, publisher.Publish(ctx, e))
	}
	assert.Equal(t, "jorge@example.com", events[0].Payload["email"], "caller's payload is not redacted in place")

	n, err := reader.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recent, err := reader.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].Event.ID, "newest first")
	assert.NotEmpty(t, recent[0].MessageID)

	created := recent[1].Event
	assert.Equal(t, domain.EventLeadCreated, created.Type)
	assert.True(t, created.Redacted)
	assert.Equal(t, pii.RedactedPlaceholder, created.Payload["email"])
	assert.Equal(t, "Jorge", created.Payload["firstName"])
}

func TestEventPublisher_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	publisher := NewEventPublisher(client, "", 0, nil, testLogger)
	mr.Close()

	err := publisher.Publish(context.Background(), domain.LeadEvent{ID: "e1", Type: domain.EventCollectionReset})
	assert.Error(t, err)
}

func TestEventReader_EmptyStream(t *testing.T) {
	_, client := setupRedis(t)
	reader := NewEventReader(client, "", testLogger)

	recent, err := reader.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

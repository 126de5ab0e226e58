package sqlstore

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/lead-intake/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testLeads() []domain.Lead {
	created := time.Date(2024, 2, 2, 14, 45, 0, 0, time.UTC)
	return []domain.Lead{
		{ID: "1", FirstName: "Jorge", LastName: "Ruiz", Email: "jorge@example.com", InterestedVisas: []string{"O-1"}, Status: domain.StatusPending, CreatedAt: created, UpdatedAt: created},
		{ID: "2", FirstName: "Mary", LastName: "Lopez", Email: "mary@example.com", InterestedVisas: []string{}, Status: domain.StatusReachedOut, CreatedAt: created, UpdatedAt: created.Add(time.Hour)},
	}
}

func newSQLiteStore(t *testing.T, seed []domain.Lead) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "leads.db")
	store, err := NewSQLiteStore(context.Background(), path, seed, testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, store *Store) {
	ctx := context.Background()

	leads, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testLeads(), leads, "first load returns the seed")

	leads = append(leads, domain.Lead{ID: "3", FirstName: "Li", Status: domain.StatusPending})
	require.NoError(t, store.SaveAll(ctx, leads))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[2].ID)
	assert.NotNil(t, got[1].InterestedVisas)
	assert.Nil(t, got[2].InterestedVisas)

	require.NoError(t, store.SaveAll(ctx, nil))
	got, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got, "an emptied collection is not re-seeded")
}

func TestSQLiteStore(t *testing.T) {
	store, _ := newSQLiteStore(t, testLeads())
	exerciseStore(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	store, path := newSQLiteStore(t, nil)
	ctx := context.Background()
	require.NoError(t, store.SaveAll(ctx, testLeads()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, path, nil, testLogger)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testLeads(), got)
}

func TestSQLiteStore_CorruptPayload(t *testing.T) {
	store, _ := newSQLiteStore(t, nil)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `INSERT INTO lead_collection (name, payload, updated_at) VALUES (?, ?, ?)`, collectionName, "{not json", time.Now())
	require.NoError(t, err)

	_, err = store.LoadAll(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestSQLiteStore_ClosedHandle(t *testing.T) {
	store, _ := newSQLiteStore(t, nil)
	require.NoError(t, store.Close())

	_, err := store.LoadAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, store.SaveAll(context.Background(), testLeads()), domain.ErrStoreUnavailable)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("LEADS_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("LEADS_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	db, err := sql.Open(Postgres.DriverName, url)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS `+tableName)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := NewPostgresStore(ctx, url, testLeads(), testLogger)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

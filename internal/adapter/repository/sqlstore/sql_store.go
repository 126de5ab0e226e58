// Package sqlstore persists the lead collection as one JSON document in a
// single row of a SQL table. PostgreSQL (lib/pq) and SQLite (modernc) are
// supported.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/V4T54L/lead-intake/internal/domain"
)

const (
	tableName      = "lead_collection"
	collectionName = "leads"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name        string
	DriverName  string
	Placeholder squirrel.PlaceholderFormat
	CreateTable string
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		DriverName:  "postgres",
		Placeholder: squirrel.Dollar,
		CreateTable: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			name TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	SQLite = Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		Placeholder: squirrel.Question,
		CreateTable: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
)

// Store implements domain.LeadStore on a database/sql handle.
type Store struct {
	db      *sql.DB
	dialect Dialect
	builder squirrel.StatementBuilderType
	seed    []domain.Lead
	logger  *slog.Logger
}

// NewPostgresStore connects to url and prepares the collection table.
func NewPostgresStore(ctx context.Context, url string, seed []domain.Lead, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open(Postgres.DriverName, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return New(ctx, db, Postgres, seed, logger)
}

// NewSQLiteStore opens (creating if needed) the database file at path.
func NewSQLiteStore(ctx context.Context, path string, seed []domain.Lead, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory for %s: %w", path, err)
	}
	db, err := sql.Open(SQLite.DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)
	return New(ctx, db, SQLite, seed, logger)
}

// New wraps an open handle and creates the collection table if missing.
// The Store takes ownership of db.
func New(ctx context.Context, db *sql.DB, dialect Dialect, seed []domain.Lead, logger *slog.Logger) (*Store, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", tableName, err)
	}
	return &Store{
		db:      db,
		dialect: dialect,
		builder: squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		seed:    domain.CloneLeads(seed),
		logger:  logger.With("component", "sql_store", "dialect", dialect.Name),
	}, nil
}

// LoadAll reads the collection row. A missing row is initialized with the seed.
func (s *Store) LoadAll(ctx context.Context) ([]domain.Lead, error) {
	query, args, err := s.builder.
		Select("payload").
		From(tableName).
		Where(squirrel.Eq{"name": collectionName}).
		ToSql()
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}

	var payload []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info("Lead collection row not found, initializing with seed", "count", len(s.seed))
		if err := s.upsert(ctx, s.seed); err != nil {
			return nil, domain.NewStoreError("seed", err)
		}
		return normalize(domain.CloneLeads(s.seed)), nil
	}
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}

	var leads []domain.Lead
	if err := json.Unmarshal(payload, &leads); err != nil {
		s.logger.Error("Lead collection payload is corrupt", "error", err)
		return nil, domain.NewStoreError("decode", err)
	}
	return normalize(leads), nil
}

// SaveAll replaces the collection row inside a transaction.
func (s *Store) SaveAll(ctx context.Context, leads []domain.Lead) error {
	if err := s.upsert(ctx, leads); err != nil {
		s.logger.Error("Failed to save lead collection", "error", err)
		return domain.NewStoreError("save", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) upsert(ctx context.Context, leads []domain.Lead) error {
	payload, err := json.Marshal(normalize(leads))
	if err != nil {
		return fmt.Errorf("failed to encode leads: %w", err)
	}

	query, args, err := s.builder.
		Insert(tableName).
		Columns("name", "payload", "updated_at").
		Values(collectionName, string(payload), time.Now().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback is a no-op if Commit() is called

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", tableName, err)
	}
	return tx.Commit()
}

func normalize(leads []domain.Lead) []domain.Lead {
	if leads == nil {
		return []domain.Lead{}
	}
	return leads
}

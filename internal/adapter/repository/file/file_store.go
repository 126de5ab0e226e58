package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/V4T54L/lead-intake/internal/domain"
)

const filePerm = 0644

// FileStore keeps the collection as a single indented JSON document.
// Saves replace the document with a temp-file-and-rename so readers never
// observe a half-written file.
type FileStore struct {
	path   string
	seed   []domain.Lead
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The parent directory is
// created if needed; the document itself is written lazily with seed on the
// first LoadAll that finds no file.
func NewFileStore(path string, seed []domain.Lead, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory for %s: %w", path, err)
	}

	return &FileStore{
		path:   path,
		seed:   domain.CloneLeads(seed),
		logger: logger.With("component", "file_store", "path", path),
	}, nil
}

// LoadAll reads the whole document. A missing file is initialized with the seed.
func (s *FileStore) LoadAll(ctx context.Context) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("Lead data file not found, initializing with seed", "count", len(s.seed))
		if err := s.write(s.seed); err != nil {
			return nil, domain.NewStoreError("seed", err)
		}
		return s.normalize(domain.CloneLeads(s.seed)), nil
	}
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}

	var leads []domain.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		s.logger.Error("Lead data file is corrupt", "error", err)
		return nil, domain.NewStoreError("decode", err)
	}
	return s.normalize(leads), nil
}

// SaveAll atomically replaces the document.
func (s *FileStore) SaveAll(ctx context.Context, leads []domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(leads); err != nil {
		s.logger.Error("Failed to save lead data file", "error", err)
		return domain.NewStoreError("save", err)
	}
	return nil
}

// Path returns the backing document path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) write(leads []domain.Lead) error {
	if leads == nil {
		leads = []domain.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode leads: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".leads-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// normalize turns a JSON null document into an empty collection.
func (s *FileStore) normalize(leads []domain.Lead) []domain.Lead {
	if leads == nil {
		return []domain.Lead{}
	}
	return leads
}

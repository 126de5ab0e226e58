package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStorage writes resumes into a local directory served under urlPrefix.
type FSStorage struct {
	dir       string
	urlPrefix string
	logger    *slog.Logger
}

// NewFSStorage creates dir if needed.
func NewFSStorage(dir, urlPrefix string, logger *slog.Logger) (*FSStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &FSStorage{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		logger:    logger.With("component", "fs_resume_storage"),
	}, nil
}

// Dir returns the upload directory.
func (s *FSStorage) Dir() string { return s.dir }

// URLPrefix returns the path the upload directory is served under.
func (s *FSStorage) URLPrefix() string { return s.urlPrefix }

// Store copies r into a new file and returns its public path.
func (s *FSStorage) Store(ctx context.Context, prefix, filename, contentType string, r io.Reader) (string, error) {
	name, err := objectName(prefix, filename)
	if err != nil {
		return "", err
	}

	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", full, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to write %s: %w", full, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to close %s: %w", full, err)
	}

	s.logger.Info("Stored resume", "name", name, "content_type", contentType)
	return path.Join(s.urlPrefix, name), nil
}

// Delete removes a file previously returned by Store. A missing file is not
// an error.
func (s *FSStorage) Delete(ctx context.Context, rawURL string) error {
	name, err := nameFromURL(s.urlPrefix+"/", rawURL)
	if err != nil {
		return err
	}
	full := filepath.Join(s.dir, name)
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", full, err)
	}
	s.logger.Info("Deleted resume", "name", name)
	return nil
}

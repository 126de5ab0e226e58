// Package resume stores uploaded resume files and returns the URL they are
// served from.
package resume

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AllowedExtensions lists the accepted resume file types.
var AllowedExtensions = []string{".pdf", ".doc", ".docx"}

// ErrUnsupportedType is returned for files whose extension is not allowed.
var ErrUnsupportedType = errors.New("unsupported resume file type")

// ErrForeignURL is returned when asked to delete a URL this storage did not issue.
var ErrForeignURL = errors.New("resume url not issued by this storage")

// nameFromURL strips base from a URL returned by Store and yields the object
// name it refers to.
func nameFromURL(base, rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, base) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}
	name, err := url.PathUnescape(strings.TrimPrefix(rawURL, base))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}
	return name, nil
}

// objectName returns "<prefix>-<uuid><ext>" with the extension lower-cased.
func objectName(prefix, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !IsAllowed(filename) {
		return "", ErrUnsupportedType
	}
	return sanitizePrefix(prefix) + "-" + uuid.NewString() + ext, nil
}

// IsAllowed reports whether filename has an accepted extension.
func IsAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func sanitizePrefix(prefix string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(prefix) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

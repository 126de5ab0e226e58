// Package seed provides the collection a store starts from on first use.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/V4T54L/lead-intake/internal/domain"
)

//go:embed leads.json
var defaultLeads []byte

// Default returns the embedded sample collection.
func Default() []domain.Lead {
	leads, err := Parse(defaultLeads)
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}
	return leads
}

// Load returns the collection stored at path, or the embedded one when path
// is empty.
func Load(path string) ([]domain.Lead, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	leads, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return leads, nil
}

// Parse decodes a JSON array of leads and rejects duplicate ids.
func Parse(data []byte) ([]domain.Lead, error) {
	var leads []domain.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	seen := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lead id %q in seed", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/lead-intake/internal/domain"
)

func TestDefault(t *testing.T) {
	leads := Default()
	require.NotEmpty(t, leads)
	for _, l := range leads {
		assert.NotEmpty(t, l.ID)
		assert.True(t, l.Status.Valid(), "lead %s has status %q", l.ID, l.Status)
		assert.False(t, l.UpdatedAt.Before(l.CreatedAt), "lead %s", l.ID)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path uses embedded seed", func(t *testing.T) {
		leads, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), leads)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(dir, "custom.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a","firstName":"A","status":"PENDING"}]`), 0o644))

		leads, err := Load(path)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, domain.StatusPending, leads[0].Status)
	})

	t.Run("empty array", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

		leads, err := Load(path)
		require.NoError(t, err)
		assert.NotNil(t, leads)
		assert.Empty(t, leads)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := Parse([]byte(`[{"id":"a"},{"id":"a"}]`))
		assert.ErrorContains(t, err, "duplicate")
	})
}

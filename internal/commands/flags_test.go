package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandImageGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	t.Run("plain paths pass through untouched", func(t *testing.T) {
		paths, err := expandImageGlobs([]string{"photos/item.jpg"})
		require.NoError(t, err)
		assert.Equal(t, []string{"photos/item.jpg"}, paths)
	})

	t.Run("glob expands to matches", func(t *testing.T) {
		paths, err := expandImageGlobs([]string{filepath.Join(dir, "*.jpg")})
		require.NoError(t, err)
		assert.Len(t, paths, 2)
	})

	t.Run("mixed plain and glob", func(t *testing.T) {
		paths, err := expandImageGlobs([]string{
			filepath.Join(dir, "c.png"),
			filepath.Join(dir, "*.jpg"),
		})
		require.NoError(t, err)
		assert.Len(t, paths, 3)
	})

	t.Run("empty input", func(t *testing.T) {
		paths, err := expandImageGlobs(nil)
		require.NoError(t, err)
		assert.Empty(t, paths)
	})
}

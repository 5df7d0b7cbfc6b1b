package pathutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kelmin/ugit/internal/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoRootFromPath(t *testing.T) {
	t.Run("subdir should be found", func(t *testing.T) {
		path := t.TempDir()

		require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0o755))

		finalPath := filepath.Join(path, "a", "b", "c")
		require.NoError(t, os.MkdirAll(finalPath, 0o755))

		p, err := pathutil.RepoRootFromPath(finalPath)
		require.NoError(t, err)
		assert.Equal(t, path, p)
	})

	t.Run("no repo should return an error", func(t *testing.T) {
		path := t.TempDir()

		finalPath := filepath.Join(path, "a", "b", "c")
		require.NoError(t, os.MkdirAll(finalPath, 0o755))

		_, err := pathutil.RepoRootFromPath(finalPath)
		require.Error(t, err)
		assert.ErrorIs(t, err, pathutil.ErrNoRepo)
	})
}

func TestRepoRoot(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		_, err := pathutil.RepoRoot()
		require.NoError(t, err)
	})
}

func TestDotGitFromPath(t *testing.T) {
	path := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0o755))

	p, err := pathutil.DotGitFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(path, ".git"), p)
}

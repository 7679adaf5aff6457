package project

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	// go-git reports the worktree root with symlinks resolved
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func TestFindRoot(t *testing.T) {
	root := initRepo(t)

	nested := filepath.Join(root, "ios", "App")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	tests := []struct {
		name  string
		start string
	}{
		{"from root", root},
		{"from nested dir", nested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			require.NoError(t, err)
			assert.Equal(t, root, got)
		})
	}
}

func TestFindRootOutsideRepo(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	require.ErrorIs(t, err, ErrNoRepository)
}

func TestStagingDir(t *testing.T) {
	root := initRepo(t)

	// missing staging dir
	_, err := StagingDir(root)
	require.ErrorIs(t, err, ErrNoStagingDir)

	// staging path exists but is a file
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "webview"), 0o755))
	stagingPath := filepath.Join(root, "src", "webview", "static")
	require.NoError(t, os.WriteFile(stagingPath, []byte("nope"), 0o644))
	_, err = StagingDir(root)
	require.ErrorIs(t, err, ErrNoStagingDir)

	// proper staging dir
	require.NoError(t, os.Remove(stagingPath))
	require.NoError(t, os.MkdirAll(stagingPath, 0o755))

	got, err := StagingDir(root)
	require.NoError(t, err)
	assert.Equal(t, stagingPath, got)
}

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/embedkit/webviewsync/internal/platform"
	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	flagDestination = ""
	flagNoSanityChecks = false
	flagDryRun = false
	if args == nil {
		// keep cobra from falling back to os.Args
		args = []string{}
	}
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// initProject creates a git repo with a populated staging directory and
// chdirs into it so the project root is discoverable.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	root, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	staging := filepath.Join(root, "src", "webview", "static")
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "index.html"), []byte("<html/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "js", "app.js"), []byte("app"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "README.md"), []byte("docs"), 0o644))

	chdir(t, root)
	return root
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{}},
		{"unknown platform", []string{"windows", "--destination", "/tmp/webview"}},
		{"case sensitive platform", []string{"iOS", "--destination", "/tmp/webview"}},
		{"missing destination", []string{"android"}},
		{"unknown flag", []string{"android", "--destination", "/tmp/webview", "--bogus"}},
		{"extra arguments", []string{"android", "ios", "--destination", "/tmp/webview"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			require.Error(t, err)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr), "expected a usage error, got %v", err)
		})
	}
}

func TestSyncAndroid(t *testing.T) {
	root := initProject(t)
	dest := filepath.Join(root, "android", "app", "build", "intermediates", "webview")

	require.NoError(t, runCLI(t, "android", "--destination", dest))

	assert.FileExists(t, filepath.Join(dest, "index.html"))
	assert.FileExists(t, filepath.Join(dest, "js", "app.js"))
	assert.NoFileExists(t, filepath.Join(dest, "README.md"))
}

func TestSyncIOSHostCheck(t *testing.T) {
	root := initProject(t)
	dest := filepath.Join(root, "ios", "App", "webview")

	err := runCLI(t, "ios", "--destination", dest)
	if runtime.GOOS == "darwin" {
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dest, "index.html"))
		return
	}

	require.ErrorIs(t, err, platform.ErrWrongHost)
	var usageErr *UsageError
	assert.False(t, errors.As(err, &usageErr), "host mismatch is a runtime error, not a usage error")
}

func TestSyncRejectsBadDestinationShape(t *testing.T) {
	root := initProject(t)

	tests := []struct {
		name    string
		dest    string
		wantErr error
	}{
		{
			name:    "wrong basename",
			dest:    filepath.Join(root, "android", "app", "build", "assets"),
			wantErr: platform.ErrBadDestName,
		},
		{
			name:    "outside build dir",
			dest:    filepath.Join(root, "android", "app", "src", "webview"),
			wantErr: platform.ErrOutsideBuildDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, "android", "--destination", tt.dest)
			require.ErrorIs(t, err, tt.wantErr)
			assert.NoDirExists(t, tt.dest)
		})
	}
}

func TestSyncNoSanityChecks(t *testing.T) {
	initProject(t)
	dest := filepath.Join(t.TempDir(), "anything")

	require.NoError(t, runCLI(t, "android", "--destination", dest, "--no-sanity-checks"))
	assert.FileExists(t, filepath.Join(dest, "index.html"))
}

func TestSyncDryRun(t *testing.T) {
	root := initProject(t)
	dest := filepath.Join(root, "android", "app", "build", "webview")

	require.NoError(t, runCLI(t, "android", "--destination", dest, "--dry-run"))
	assert.NoDirExists(t, dest)
}

func TestSyncOutsideRepository(t *testing.T) {
	outside := t.TempDir()
	chdir(t, outside)

	err := runCLI(t, "android", "--destination", filepath.Join(outside, "webview"), "--no-sanity-checks")
	require.Error(t, err)
}

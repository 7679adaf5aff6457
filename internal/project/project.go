package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/embedkit/webviewsync/internal/utils"
	git "github.com/go-git/go-git/v5"
)

// Relative path of the platform-agnostic WebView assets inside the project.
const stagingRelPath = "src/webview/static"

var (
	ErrNoRepository   = errors.New("not inside a git repository")
	ErrNoStagingDir   = errors.New("webview staging directory not found")
	ErrBareRepository = errors.New("repository has no worktree")
)

// FindRoot walks up from dir to the root of the enclosing git repository.
func FindRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNoRepository, dir)
		}
		return "", fmt.Errorf("open repository at %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return "", fmt.Errorf("%w: %s", ErrBareRepository, dir)
		}
		return "", err
	}

	return worktree.Filesystem.Root(), nil
}

// Locate resolves the project root, trying the binary's own location first
// and falling back to the working directory. The tool is expected to be
// invoked from within the project checkout by the platform build system.
func Locate() (string, error) {
	if exe, err := os.Executable(); err == nil {
		if root, err := FindRoot(filepath.Dir(exe)); err == nil {
			return root, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRoot(cwd)
}

// StagingDir returns the absolute path of the checked-in WebView assets and
// verifies it exists.
func StagingDir(projectRoot string) (string, error) {
	staging := filepath.Join(projectRoot, filepath.FromSlash(stagingRelPath))
	if !utils.DirExists(staging) {
		return "", fmt.Errorf("%w: %s", ErrNoStagingDir, staging)
	}
	return staging, nil
}

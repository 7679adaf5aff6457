package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Platform selects which destination-shape invariant applies.
type Platform uint8

const (
	IOS Platform = iota
	Android
)

var platformNames = []string{
	"ios",
	"android",
}

// DestDirName is the required basename of every sync destination.
const DestDirName = "webview"

var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrWrongHost       = errors.New("platform not supported on this host")
	ErrOutsideBuildDir = errors.New("destination outside expected build directory")
	ErrBadDestName     = errors.New("destination must be named " + DestDirName)
)

func (p Platform) String() string {
	return platformNames[p]
}

// Parse maps a CLI platform token to a Platform. Matching is exact and
// case-sensitive.
func Parse(token string) (Platform, error) {
	switch token {
	case "ios":
		return IOS, nil
	case "android":
		return Android, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlatform, token)
	}
}

// buildDir returns the platform's expected build-output directory relative
// to the project root.
func (p Platform) buildDir() string {
	switch p {
	case IOS:
		return "ios"
	case Android:
		return filepath.Join("android", "app", "build")
	default:
		return ""
	}
}

// CheckDestination enforces the platform's destination-shape invariants:
// the host kernel (iOS builds only run on Darwin), the destination lying
// under the platform's build directory, and the fixed basename. dest and
// projectRoot must both be absolute, normalized paths. hostOS is the
// runtime.GOOS value of the running host.
func CheckDestination(p Platform, dest, projectRoot, hostOS string) error {
	if p == IOS && hostOS != "darwin" {
		return fmt.Errorf("%w: ios builds require a darwin host, got %s", ErrWrongHost, hostOS)
	}

	buildDir := filepath.Join(projectRoot, p.buildDir())
	if !isUnder(dest, buildDir) {
		return fmt.Errorf("%w: %s is not under %s", ErrOutsideBuildDir, dest, buildDir)
	}

	if filepath.Base(dest) != DestDirName {
		return fmt.Errorf("%w: got %s", ErrBadDestName, dest)
	}

	return nil
}

// isUnder reports whether path is a strict descendant of dir.
func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/embedkit/webviewsync/internal/platform"
	"github.com/embedkit/webviewsync/internal/project"
	"github.com/embedkit/webviewsync/internal/sync"
	"github.com/embedkit/webviewsync/internal/utils"
	"github.com/embedkit/webviewsync/internal/version"
	"github.com/spf13/cobra"
)

// UsageError marks a malformed invocation so main can exit with the usage
// status instead of the generic failure status.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

var (
	flagDestination    string
	flagNoSanityChecks bool
	flagDryRun         bool
)

var rootCmd = &cobra.Command{
	Use:   "webviewsync <ios|android> --destination <path>",
	Short: "Mirror WebView static assets into a platform build directory",
	Long: `webviewsync copies the project's WebView static assets into a
platform-specific build destination (an iOS app bundle staging dir or an
Android Gradle asset dir). It only touches files that actually changed and
removes anything that no longer belongs there, so it is safe to run on
every build.`,
	Version:       version.Detailed(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return usageErrorf("unexpected arguments: %v", args[1:])
		}
		return nil
	},
	RunE: runSync,
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringVarP(&flagDestination, "destination", "d", "", "Build directory to mirror the assets into (required)")
	rootCmd.Flags().BoolVar(&flagNoSanityChecks, "no-sanity-checks", false, "Skip platform/destination shape checks")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Log the sync plan without applying it")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	// usage and help go to stderr, keeping stdout clean for build tooling
	rootCmd.SetOut(os.Stderr)
}

func runSync(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing platform argument (ios or android)")
	}
	plat, err := platform.Parse(args[0])
	if err != nil {
		return &UsageError{Err: err}
	}
	if flagDestination == "" {
		return usageErrorf("missing required flag --destination")
	}

	dest, err := utils.ResolvePath(flagDestination)
	if err != nil {
		return fmt.Errorf("resolve destination %s: %w", flagDestination, err)
	}

	projectRoot, err := project.Locate()
	if err != nil {
		return err
	}

	if !flagNoSanityChecks {
		if err := platform.CheckDestination(plat, dest, projectRoot, runtime.GOOS); err != nil {
			return err
		}
	}

	staging, err := project.StagingDir(projectRoot)
	if err != nil {
		return err
	}

	slog.Info("webviewsync",
		"version", version.Short(),
		"platform", plat.String(),
		"staging", staging,
		"destination", dest,
	)

	engine, err := sync.NewEngine(staging, dest, sync.DefaultExcludes(), sync.WithDryRun(flagDryRun))
	if err != nil {
		return err
	}

	_, err = engine.Sync(cmd.Context())
	return err
}

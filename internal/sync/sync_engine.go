package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/embedkit/webviewsync/internal/utils"
)

var ErrSourceMissing = errors.New("source directory does not exist")

// Engine mirrors one directory tree into another: create, update and delete
// until the destination's file set equals the source's, minus exclusions.
// The source tree is never written to.
type Engine struct {
	source   string
	dest     string
	excludes *ExcludeList
	steps    []BuildStep
	dryRun   bool
}

type Option func(*Engine)

// WithBuildSteps sets the pre-sync pipeline, run before the diff.
func WithBuildSteps(steps ...BuildStep) Option {
	return func(e *Engine) {
		e.steps = steps
	}
}

// WithDryRun makes Sync compute and log the plan without applying it.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

func NewEngine(source, dest string, excludes *ExcludeList, opts ...Option) (*Engine, error) {
	if !utils.DirExists(source) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, source)
	}

	e := &Engine{
		source:   source,
		dest:     dest,
		excludes: excludes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type Result struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int

	BytesCopied int64
	Took        time.Duration
	DryRun      bool
}

// Sync runs the build steps, diffs source against dest and applies the plan.
// It returns on the first I/O error; a partially-updated destination is
// repaired by the next run's diff.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	tstart := time.Now()

	for _, step := range e.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slog.Debug("build step", "name", step.Name())
		if err := step.Run(ctx); err != nil {
			return nil, fmt.Errorf("build step %s: %w", step.Name(), err)
		}
	}

	srcState, err := walkTree(e.source, e.excludes)
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", e.source, err)
	}
	dstState, err := walkTree(e.dest, nil)
	if err != nil {
		return nil, fmt.Errorf("scan destination %s: %w", e.dest, err)
	}

	plan, err := BuildPlan(srcState, dstState)
	if err != nil {
		return nil, fmt.Errorf("build sync plan: %w", err)
	}

	if e.dryRun {
		e.logPlan(plan)
		return &Result{
			Created:   len(plan.Creates),
			Updated:   len(plan.Updates),
			Deleted:   len(plan.Deletes),
			Unchanged: plan.Unchanged,
			Took:      time.Since(tstart),
			DryRun:    true,
		}, nil
	}

	result, err := e.apply(ctx, plan)
	if err != nil {
		return nil, err
	}

	result.Took = time.Since(tstart)
	slog.Info("sync complete",
		"took", result.Took,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"unchanged", result.Unchanged,
		"copied", humanize.Bytes(uint64(result.BytesCopied)),
	)
	return result, nil
}

func (e *Engine) apply(ctx context.Context, plan *Plan) (*Result, error) {
	result := &Result{Unchanged: plan.Unchanged}

	if err := utils.EnsureDir(e.dest); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", e.dest, err)
	}

	// Deletions run first. A path whose type changed between source and
	// destination (file to directory or back) must have the old entry
	// cleared before its replacement can be written.
	for _, op := range plan.Deletes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := os.Remove(e.destAbs(op.RelPath)); err != nil {
			return nil, fmt.Errorf("delete %s: %w", op.RelPath, err)
		}
		result.Deleted++
		slog.Info("sync", "op", OpDelete, "path", op.RelPath)
	}

	// StaleDirs is ordered deepest first, so every directory is empty by
	// the time its own removal comes up.
	for _, dir := range plan.StaleDirs {
		if err := os.Remove(e.destAbs(dir)); err != nil {
			return nil, fmt.Errorf("delete directory %s: %w", dir, err)
		}
		slog.Info("sync", "op", OpDelete, "path", dir+"/")
	}

	for _, dir := range plan.MissingDirs {
		if err := utils.EnsureDir(e.destAbs(dir)); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	for _, op := range append(plan.Creates, plan.Updates...) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := utils.CopyFile(op.Source.AbsPath, e.destAbs(op.RelPath)); err != nil {
			return nil, fmt.Errorf("copy %s: %w", op.RelPath, err)
		}
		if op.Op == OpCreate {
			result.Created++
		} else {
			result.Updated++
		}
		result.BytesCopied += op.Source.Size
		slog.Info("sync", "op", op.Op, "path", op.RelPath, "size", humanize.Bytes(uint64(op.Source.Size)))
	}

	return result, nil
}

func (e *Engine) logPlan(plan *Plan) {
	if plan.Empty() {
		slog.Info("dry run: destination already up to date", "unchanged", plan.Unchanged)
		return
	}
	for _, op := range plan.Deletes {
		slog.Info("dry run", "op", OpDelete, "path", op.RelPath)
	}
	for _, dir := range plan.StaleDirs {
		slog.Info("dry run", "op", OpDelete, "path", dir+"/")
	}
	for _, dir := range plan.MissingDirs {
		slog.Info("dry run", "op", OpCreate, "path", dir+"/")
	}
	for _, op := range append(plan.Creates, plan.Updates...) {
		slog.Info("dry run", "op", op.Op, "path", op.RelPath, "size", humanize.Bytes(uint64(op.Source.Size)))
	}
}

func (e *Engine) destAbs(relPath string) string {
	return filepath.Join(e.dest, filepath.FromSlash(relPath))
}

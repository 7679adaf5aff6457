package sync

import "context"

// BuildStep is a pre-sync hook, run in order before the tree diff is
// computed. The default pipeline is empty; platform builds can plug asset
// generation or preprocessing in here without touching the engine.
type BuildStep interface {
	Name() string
	Run(ctx context.Context) error
}

package harvest

import (
	"context"
	"time"
)

// DocumentRootSelector is the whole-document extraction scope, the
// structural fallback that always resolves.
const DocumentRootSelector = "html"

// NodeInfo is the structural metadata of one element in an ancestry
// chain, enough for the region heuristics to judge it.
type NodeInfo struct {
	Tag   string
	Id    string
	Class string
	Style string
}

// Adapter is the target application collaborator. Everything is
// addressed by selector and positional index, never by retained node
// handle: the rendered tree is commonly rebuilt between interactions,
// so references must be re-derived on every use.
//
// All waits are bounded. A wait that expires returns an error of kind
// KindAffordanceTimeout instead of blocking.
type Adapter interface {
	Navigate(ctx context.Context, url string) error

	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	WaitHidden(ctx context.Context, sel string, timeout time.Duration) error
	IsVisible(ctx context.Context, sel string) (bool, error)

	Click(ctx context.Context, sel string) error
	ClickNth(ctx context.Context, sel string, index int) error

	Count(ctx context.Context, sel string) (int, error)
	TextNth(ctx context.Context, sel string, index int) (string, error)

	// AncestorChain reports the containment hierarchy above the first
	// match of sel, nearest ancestor first, at most max entries.
	AncestorChain(ctx context.Context, sel string, max int) ([]NodeInfo, error)

	// MarkRegion pins the ancestor `level` steps above the first match
	// of sel and returns a selector that keeps resolving to it for the
	// rest of the run. A negative level pins the document root.
	MarkRegion(ctx context.Context, sel string, level int) (string, error)

	// Snapshot returns the subtree of the first match of sel as HTML in
	// one read-only round trip, with the current state of form controls
	// materialized into the markup (input values as value attributes,
	// chosen options carrying a selected attribute).
	Snapshot(ctx context.Context, sel string) (string, error)

	// SnapshotNth is Snapshot against the index-th match of sel.
	SnapshotNth(ctx context.Context, sel string, index int) (string, error)
}

// sleepCtx is a context-aware settle delay.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

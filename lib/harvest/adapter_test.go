package harvest

import (
	"context"
	"fmt"
	"time"
)

type fakeCandidate struct {
	display string
	// region snapshot after this candidate is selected; also the
	// element's own snapshot in flat mode
	html string
}

// fakeAdapter scripts a target application: an anchor that reveals a
// surface, candidates behind it, and a subject region that reflects
// the last selection.
type fakeAdapter struct {
	anchorSel  string
	surfaceSel string

	anchorMissing  bool
	surfaceAppears bool
	hideOnSelect   bool

	candidates []fakeCandidate
	ancestry   []NodeInfo

	// when non-empty, successive Count calls pop from here instead of
	// reporting len(candidates)
	countQueue []int

	visible  bool
	selected int

	clicks     int
	navigated  string
	markLevels []int
}

func newFakeAdapter(candidates ...fakeCandidate) *fakeAdapter {
	return &fakeAdapter{
		anchorSel:      "#anchor",
		surfaceSel:     ".surface",
		surfaceAppears: true,
		hideOnSelect:   true,
		candidates:     candidates,
		selected:       -1,
	}
}

func (f *fakeAdapter) config() Config {
	return Config{
		Output:            "",
		AnchorSelector:    f.anchorSel,
		SurfaceSelector:   f.surfaceSel,
		CandidateSelector: ".candidate",
		OpTimeoutMs:       20,
		SettleDelayMs:     1,
		GracePeriodMs:     1,
	}.WithDefaults()
}

func (f *fakeAdapter) Navigate(ctx context.Context, url string) error {
	f.navigated = url
	return nil
}

func (f *fakeAdapter) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	if sel == f.surfaceSel && f.visible {
		return nil
	}
	return Errorf(KindAffordanceTimeout, "%q did not become visible", sel)
}

func (f *fakeAdapter) WaitHidden(ctx context.Context, sel string, timeout time.Duration) error {
	if sel == f.surfaceSel && f.visible {
		return Errorf(KindAffordanceTimeout, "%q did not become hidden", sel)
	}
	return nil
}

func (f *fakeAdapter) IsVisible(ctx context.Context, sel string) (bool, error) {
	if sel == f.surfaceSel {
		return f.visible, nil
	}
	return true, nil
}

func (f *fakeAdapter) Click(ctx context.Context, sel string) error {
	if sel == "" {
		return fmt.Errorf("empty selector")
	}
	if sel == f.anchorSel {
		if f.anchorMissing {
			return fmt.Errorf("no element matches %q", sel)
		}
		f.clicks++
		if f.surfaceAppears {
			f.visible = true
		}
		return nil
	}
	return nil
}

func (f *fakeAdapter) ClickNth(ctx context.Context, sel string, index int) error {
	if index >= len(f.candidates) {
		return fmt.Errorf("no element at index %d of %q", index, sel)
	}
	f.selected = index
	if f.hideOnSelect {
		f.visible = false
	}
	return nil
}

func (f *fakeAdapter) Count(ctx context.Context, sel string) (int, error) {
	if len(f.countQueue) > 0 {
		n := f.countQueue[0]
		f.countQueue = f.countQueue[1:]
		return n, nil
	}
	return len(f.candidates), nil
}

func (f *fakeAdapter) TextNth(ctx context.Context, sel string, index int) (string, error) {
	if index >= len(f.candidates) {
		return "", fmt.Errorf("no element at index %d of %q", index, sel)
	}
	return f.candidates[index].display, nil
}

func (f *fakeAdapter) AncestorChain(ctx context.Context, sel string, max int) ([]NodeInfo, error) {
	if f.anchorMissing {
		return nil, fmt.Errorf("no element matches %q", sel)
	}
	if len(f.ancestry) > max {
		return f.ancestry[:max], nil
	}
	return f.ancestry, nil
}

func (f *fakeAdapter) MarkRegion(ctx context.Context, sel string, level int) (string, error) {
	f.markLevels = append(f.markLevels, level)
	if level < 0 {
		return DocumentRootSelector, nil
	}
	return fmt.Sprintf("[data-region-level=\"%d\"]", level), nil
}

func (f *fakeAdapter) Snapshot(ctx context.Context, sel string) (string, error) {
	if f.selected < 0 || f.selected >= len(f.candidates) {
		return "<div></div>", nil
	}
	return f.candidates[f.selected].html, nil
}

func (f *fakeAdapter) SnapshotNth(ctx context.Context, sel string, index int) (string, error) {
	if index >= len(f.candidates) {
		return "", fmt.Errorf("no element at index %d of %q", index, sel)
	}
	return f.candidates[index].html, nil
}

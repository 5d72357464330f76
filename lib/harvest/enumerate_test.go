package harvest

import (
	"context"
	"testing"
	"uiharvest/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestRevealSurfaceGraceRetry(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:harvest")
	defer cleanup()

	f := newFakeAdapter(
		fakeCandidate{display: "a"},
		fakeCandidate{display: "b"},
		fakeCandidate{display: "c"},
	)
	// zero on the first probe, the real count on the single retry
	f.countQueue = []int{0, 3}

	surface, err := RevealSurface(context.Background(), f, f.config())
	require.NoError(t, err)
	require.True(t, surface.Present)
	require.Equal(t, 3, surface.Count)
}

func TestRevealSurfaceNeverAppears(t *testing.T) {
	f := newFakeAdapter(fakeCandidate{display: "a"})
	f.surfaceAppears = false

	surface, err := RevealSurface(context.Background(), f, f.config())
	require.NoError(t, err)
	require.False(t, surface.Present)
	require.Equal(t, DocumentRootSelector, surface.Scope)
}

func TestRevealSurfaceAnchorMissing(t *testing.T) {
	f := newFakeAdapter()
	f.anchorMissing = true

	_, err := RevealSurface(context.Background(), f, f.config())
	require.Error(t, err)
	require.Equal(t, KindAnchorNotFound, KindOf(err))
}

func TestCandidateSelectorScoping(t *testing.T) {
	f := newFakeAdapter()
	cfg := f.config()

	within := Surface{Present: true, Scope: ".surface"}
	require.Equal(t, ".surface .candidate", within.CandidateSelector(cfg))

	document := Surface{Present: false, Scope: DocumentRootSelector}
	require.Equal(t, ".candidate", document.CandidateSelector(cfg))
}

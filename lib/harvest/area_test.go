package harvest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRegionClassPattern(t *testing.T) {
	f := newFakeAdapter()
	f.ancestry = []NodeInfo{
		{Tag: "div", Class: "wrapper"},
		{Tag: "div", Class: "inner"},
		{Tag: "div", Class: "MemberCard highlight"},
		{Tag: "body"},
	}

	region, err := ResolveRegion(context.Background(), f, f.config(),
		DefaultRegionPredicates(f.config().RegionTags, f.config().RegionPatterns))
	require.NoError(t, err)
	require.Equal(t, `[data-region-level="3"]`, region)
}

func TestResolveRegionSemanticTagBeatsDepth(t *testing.T) {
	f := newFakeAdapter()
	f.ancestry = []NodeInfo{
		{Tag: "div"},
		{Tag: "section"},
		{Tag: "div", Class: "panel"},
	}

	region, err := ResolveRegion(context.Background(), f, f.config(),
		DefaultRegionPredicates(f.config().RegionTags, f.config().RegionPatterns))
	require.NoError(t, err)
	// the nearer section wins over the deeper class match
	require.Equal(t, `[data-region-level="2"]`, region)
}

func TestResolveRegionStylePattern(t *testing.T) {
	f := newFakeAdapter()
	f.ancestry = []NodeInfo{
		{Tag: "div", Style: "display:flex; grid-area: detail"},
	}

	region, err := ResolveRegion(context.Background(), f, f.config(),
		DefaultRegionPredicates(f.config().RegionTags, f.config().RegionPatterns))
	require.NoError(t, err)
	require.Equal(t, `[data-region-level="1"]`, region)
}

func TestResolveRegionRootFallback(t *testing.T) {
	f := newFakeAdapter()
	f.ancestry = []NodeInfo{
		{Tag: "div"}, {Tag: "div"}, {Tag: "span"},
	}

	region, err := ResolveRegion(context.Background(), f, f.config(),
		DefaultRegionPredicates(f.config().RegionTags, f.config().RegionPatterns))
	require.NoError(t, err)
	require.Equal(t, DocumentRootSelector, region)
	require.Equal(t, []int{-1}, f.markLevels)
}

func TestResolveRegionAnchorMissing(t *testing.T) {
	f := newFakeAdapter()
	f.anchorMissing = true

	_, err := ResolveRegion(context.Background(), f, f.config(),
		DefaultRegionPredicates(nil, nil))
	require.Error(t, err)
	require.Equal(t, KindAnchorNotFound, KindOf(err))
}

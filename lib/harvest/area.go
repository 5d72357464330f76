package harvest

import (
	"log/slog"
	"slices"
	"strings"

	"context"
	"uiharvest/lib/textutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RegionPredicate is one heuristic for recognizing a section-like
// container. Predicates are ordered data so target-specific tuning
// never touches the resolver.
type RegionPredicate struct {
	Name  string
	Match func(NodeInfo) bool
}

func DefaultRegionPredicates(tags, patterns []string) []RegionPredicate {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	return []RegionPredicate{
		{
			Name: "semantic-section",
			Match: func(n NodeInfo) bool {
				return slices.Contains(lowered, strings.ToLower(n.Tag))
			},
		},
		{
			Name: "class-pattern",
			Match: func(n NodeInfo) bool {
				return textutil.MatchAny(n.Class, patterns) ||
					textutil.MatchAny(n.Style, patterns)
			},
		},
	}
}

// ResolveRegion fixes the subject region for the run: the first
// ancestor of the anchor accepted by a predicate, bounded by
// cfg.MaxAncestors, else the document root. The root fallback always
// succeeds structurally, even when it is semantically wrong, so the
// only failure here is a missing anchor.
func ResolveRegion(ctx context.Context, a Adapter, cfg Config, preds []RegionPredicate) (string, error) {
	ctx, span := tracer.Start(ctx, "ResolveRegion")
	defer span.End()

	chain, err := a.AncestorChain(ctx, cfg.AnchorSelector, cfg.MaxAncestors)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "anchor not found")
		return "", NewError(KindAnchorNotFound, err)
	}

	for i, node := range chain {
		for _, p := range preds {
			if !p.Match(node) {
				continue
			}
			span.SetAttributes(
				attribute.String("predicate", p.Name),
				attribute.Int("level", i+1),
				attribute.String("tag", node.Tag),
			)
			region, err := a.MarkRegion(ctx, cfg.AnchorSelector, i+1)
			if err != nil {
				span.RecordError(err)
				return "", NewError(KindAnchorNotFound, err)
			}
			slog.DebugContext(ctx, "subject region resolved",
				"predicate", p.Name, "level", i+1, "selector", region)
			return region, nil
		}
	}

	span.AddEvent("no section-like ancestor, falling back to document root")
	region, err := a.MarkRegion(ctx, cfg.AnchorSelector, -1)
	if err != nil {
		span.RecordError(err)
		return "", NewError(KindAnchorNotFound, err)
	}
	return region, nil
}

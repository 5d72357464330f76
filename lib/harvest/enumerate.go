package harvest

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Surface describes the selection surface after one reveal attempt.
// When the surface never became visible the whole document is the
// extraction scope.
type Surface struct {
	Present bool
	Scope   string
	Count   int
}

// CandidateSelector returns the selector candidates are counted and
// addressed under. Positions into it are only meaningful immediately
// after a fresh Count, never across interactions.
func (s Surface) CandidateSelector(cfg Config) string {
	if s.Present {
		return s.Scope + " " + cfg.CandidateSelector
	}
	return cfg.CandidateSelector
}

// RevealSurface triggers the anchor, waits (bounded) for the surface
// and counts candidates. A zero count is re-probed exactly once after
// one grace period, tolerating late rendering; there are no further
// retries. An unclickable anchor surfaces as KindAnchorNotFound and
// the caller decides whether that is fatal or a whole-document
// degrade.
func RevealSurface(ctx context.Context, a Adapter, cfg Config) (Surface, error) {
	ctx, span := tracer.Start(ctx, "RevealSurface")
	defer span.End()

	// no anchor configured means the surface is expected to already be
	// on screen, no reveal interaction needed
	if cfg.AnchorSelector != "" {
		if err := a.Click(ctx, cfg.AnchorSelector); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to trigger anchor")
			return Surface{Scope: DocumentRootSelector}, NewError(KindAnchorNotFound, err)
		}
	}

	if err := a.WaitVisible(ctx, cfg.SurfaceSelector, cfg.OpTimeout()); err != nil {
		span.AddEvent("surface never became visible, using document scope")
		slog.InfoContext(ctx, "no selection surface, degrading to whole-document scope",
			"surface", cfg.SurfaceSelector)
		return Surface{Present: false, Scope: DocumentRootSelector}, nil
	}

	surface := Surface{Present: true, Scope: cfg.SurfaceSelector}
	count, err := a.Count(ctx, surface.CandidateSelector(cfg))
	if err != nil {
		span.RecordError(err)
		return surface, err
	}

	if count == 0 {
		span.AddEvent("zero candidates on first probe, waiting one grace period")
		if err := sleepCtx(ctx, cfg.GracePeriod()); err != nil {
			return surface, err
		}
		count, err = a.Count(ctx, surface.CandidateSelector(cfg))
		if err != nil {
			span.RecordError(err)
			return surface, err
		}
	}

	surface.Count = count
	span.SetAttributes(attribute.Int("candidates", count))
	slog.InfoContext(ctx, "selection surface revealed", "candidates", count)
	return surface, nil
}

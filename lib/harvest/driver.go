package harvest

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SnapshotObserver sees every region snapshot the driver harvests,
// before extraction. Used to record snapshots for offline replay.
type SnapshotObserver func(ctx context.Context, position int, display, html string)

// DriveSelections iterates candidate positions in strict order,
// selecting each one and harvesting the subject region after its
// state reflects the selection. Candidates are re-enumerated fresh
// before every interaction because the surface is commonly rebuilt
// after a choice.
//
// One candidate failing extraction is logged and skipped; only
// IndexOutOfRange and adapter-fatal failures abort the run.
func DriveSelections(
	ctx context.Context,
	a Adapter,
	cfg Config,
	region string,
	observe SnapshotObserver,
) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "DriveSelections")
	defer span.End()

	policy := DefaultPolicy()

	surface, err := RevealSurface(ctx, a, cfg)
	if err != nil {
		// before enumeration a missing anchor is fatal
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reveal selection surface")
		return nil, err
	}
	if !surface.Present {
		slog.InfoContext(ctx, "no selection surface to drive, nothing to select")
		return nil, nil
	}

	bound := surface.Count
	if cfg.MaxCandidates < bound {
		bound = cfg.MaxCandidates
	}
	if cfg.DebugLimit > 0 && cfg.DebugLimit < bound {
		slog.InfoContext(ctx, "debug limit active", "limit", cfg.DebugLimit)
		bound = cfg.DebugLimit
	}
	span.SetAttributes(
		attribute.Int("observed", surface.Count),
		attribute.Int("bound", bound),
	)

	candSel := surface.CandidateSelector(cfg)
	var records []Record

	for i := 0; i < bound; i++ {
		rec, err := driveOne(ctx, a, cfg, region, candSel, i, observe)
		if err != nil {
			kind := KindOf(err)
			if policy[kind] == ActionAbortRun {
				span.RecordError(err)
				span.SetStatus(codes.Error, "run aborted")
				return records, err
			}
			slog.WarnContext(ctx, "candidate skipped",
				"position", i, "kind", kind.String(), "err", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func driveOne(
	ctx context.Context,
	a Adapter,
	cfg Config,
	region string,
	candSel string,
	position int,
	observe SnapshotObserver,
) (Record, error) {
	ctx, span := tracer.Start(ctx, "driveOne")
	defer span.End()
	span.SetAttributes(attribute.Int("position", position))

	visible, err := a.IsVisible(ctx, cfg.SurfaceSelector)
	if err != nil {
		return Record{}, err
	}
	if !visible {
		// with no anchor configured there is nothing to re-trigger; the
		// fresh count below decides whether the surface is still usable
		if cfg.AnchorSelector != "" {
			if err := a.Click(ctx, cfg.AnchorSelector); err != nil {
				return Record{}, NewError(KindAnchorNotFound, err)
			}
		}
		if err := a.WaitVisible(ctx, cfg.SurfaceSelector, cfg.OpTimeout()); err != nil {
			// proceed best-effort, the count below decides
			span.AddEvent("surface did not reappear within timeout")
		}
	}

	// positions are only valid against a fresh count
	count, err := a.Count(ctx, candSel)
	if err != nil {
		return Record{}, err
	}
	if position >= count {
		return Record{}, Errorf(KindIndexOutOfRange,
			"selection index %d out of range against freshly observed count %d", position, count)
	}

	display, err := a.TextNth(ctx, candSel, position)
	if err != nil {
		span.AddEvent("failed to read candidate display text")
		display = ""
	}

	if err := a.ClickNth(ctx, candSel, position); err != nil {
		return Record{}, err
	}

	// some surfaces stay open by design
	if err := a.WaitHidden(ctx, cfg.SurfaceSelector, cfg.OpTimeout()); err != nil {
		span.AddEvent("surface still visible after selection, proceeding")
	}

	// let the subject region finish re-rendering asynchronously
	if err := sleepCtx(ctx, cfg.SettleDelay()); err != nil {
		return Record{}, err
	}

	html, err := a.Snapshot(ctx, region)
	if err != nil {
		return Record{}, err
	}
	if observe != nil {
		observe(ctx, position, display, html)
	}

	fields, err := ExtractFields(ctx, html, cfg.extractOptions())
	if err != nil {
		return Record{}, err
	}
	if len(fields) == 0 {
		// recoverable: the record survives with empty fields
		slog.WarnContext(ctx, "no fields harvested for candidate",
			"position", position, "display", display)
		span.SetAttributes(attribute.Bool("extraction_empty", true))
		fields = map[string]string{}
	}

	rec := Record{Position: position, Display: display, Fields: fields}
	if cfg.DisplayField != "" && display != "" && rec.Field(cfg.DisplayField) == "" {
		rec.Fields[cfg.DisplayField] = display
	}
	return NormalizeRecord(rec), nil
}

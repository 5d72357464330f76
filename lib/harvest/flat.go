package harvest

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
)

// HarvestFlat is the single-pass variant: no per-candidate selection,
// every candidate element is harvested in place and the result is
// cleaned into a deduplicated, sorted catalog. When the selection
// surface never appears the whole document becomes the extraction
// scope.
func HarvestFlat(ctx context.Context, a Adapter, cfg Config) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "HarvestFlat")
	defer span.End()

	surface, err := RevealSurface(ctx, a, cfg)
	if err != nil {
		if KindOf(err) != KindAnchorNotFound {
			return nil, err
		}
		// a missing anchor degrades to whole-document scope here
		slog.InfoContext(ctx, "anchor unavailable, harvesting whole document")
		surface = Surface{Present: false, Scope: DocumentRootSelector}
	}

	candSel := surface.CandidateSelector(cfg)
	count, err := a.Count(ctx, candSel)
	if err != nil {
		return nil, err
	}
	if surface.Present && surface.Count < count {
		count = surface.Count
	}
	if cfg.MaxCandidates < count {
		count = cfg.MaxCandidates
	}
	if cfg.DebugLimit > 0 && cfg.DebugLimit < count {
		count = cfg.DebugLimit
	}
	span.SetAttributes(attribute.Int("candidates", count))

	var raw []Record
	for i := 0; i < count; i++ {
		html, err := a.SnapshotNth(ctx, candSel, i)
		if err != nil {
			slog.WarnContext(ctx, "candidate skipped", "position", i, "err", err)
			continue
		}
		fields, err := ExtractFields(ctx, html, cfg.extractOptions())
		if err != nil {
			slog.WarnContext(ctx, "candidate skipped", "position", i, "err", err)
			continue
		}

		display, err := a.TextNth(ctx, candSel, i)
		if err != nil {
			display = ""
		}
		rec := Record{Position: i, Display: display, Fields: fields}
		// the element's own text backs the primary field so entries
		// without an inner name structure still carry a dedup key
		if rec.Field(cfg.PrimaryField) == "" && display != "" {
			rec.Fields[cfg.PrimaryField] = display
		}
		raw = append(raw, rec)
	}

	catalog := DedupCatalog(raw, cfg.PrimaryField, cfg.IdentifierField)
	span.SetAttributes(attribute.Int("catalog", len(catalog)))
	return catalog, nil
}

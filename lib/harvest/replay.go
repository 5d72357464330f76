package harvest

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
)

// Snapshot is one previously captured region subtree, ready to be run
// through extraction again without the target application.
type Snapshot struct {
	Position int
	Display  string
	Html     string
}

// ReplaySnapshots re-runs the extraction and emission pipeline over
// captured snapshots. The artifact contract is identical to a live
// run: whatever happens, a file exists at cfg.Output afterwards.
func ReplaySnapshots(ctx context.Context, cfg Config, snapshots []Snapshot) (Result, error) {
	ctx, span := tracer.Start(ctx, "ReplaySnapshots")
	defer span.End()
	span.SetAttributes(attribute.Int("snapshots", len(snapshots)))

	cfg = cfg.WithDefaults()
	guard := NewOutputGuard(cfg.Output, cfg.fallbackHeader())
	defer guard.Ensure()

	var records []Record
	for _, snap := range snapshots {
		fields, err := ExtractFields(ctx, snap.Html, cfg.extractOptions())
		if err != nil {
			slog.WarnContext(ctx, "snapshot skipped",
				"position", snap.Position, "err", err)
			continue
		}
		if len(fields) == 0 {
			slog.WarnContext(ctx, "no fields harvested from snapshot",
				"position", snap.Position, "display", snap.Display)
			fields = map[string]string{}
		}

		rec := Record{Position: snap.Position, Display: snap.Display, Fields: fields}
		if cfg.DisplayField != "" && snap.Display != "" && rec.Field(cfg.DisplayField) == "" {
			rec.Fields[cfg.DisplayField] = snap.Display
		}
		records = append(records, NormalizeRecord(rec))
	}

	if len(records) == 0 {
		status := StatusCompletedEmpty
		if cfg.EmptyPolicy == EmptyIsDegraded {
			status = StatusDegraded
		}
		return Result{Status: status}, nil
	}

	schema := BuildSchema(records, cfg.effectivePreferred())
	if len(schema) == 0 {
		schema = cfg.fallbackHeader()
	}
	if err := guard.Commit(schema, records); err != nil {
		span.RecordError(err)
		return Result{Records: records, Schema: schema, Status: StatusAborted}, err
	}
	return Result{Records: records, Schema: schema, Status: StatusCompleted}, nil
}

package harvest

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mode int

const (
	// select every candidate in turn and harvest the subject region
	// after each selection
	ModeSelections Mode = iota
	// harvest candidate elements in place, once, into a deduplicated
	// catalog
	ModeFlat
)

type Status int

const (
	StatusCompleted Status = iota
	StatusCompletedEmpty
	StatusDegraded
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCompletedEmpty:
		return "completed-empty"
	case StatusDegraded:
		return "degraded"
	}
	return "aborted"
}

type Result struct {
	Records []Record
	Schema  []string
	Status  Status
}

// Execute runs the whole pipeline against one target. Whatever
// happens, a minimal artifact exists at cfg.Output afterwards; an
// error return means the run aborted, not that the artifact is
// missing.
func Execute(ctx context.Context, a Adapter, cfg Config, mode Mode, observe SnapshotObserver) (Result, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()

	cfg = cfg.WithDefaults()
	guard := NewOutputGuard(cfg.Output, cfg.fallbackHeader())
	defer guard.Ensure()

	if cfg.BaseUrl != "" {
		if err := a.Navigate(ctx, cfg.BaseUrl); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "navigation failed")
			return Result{Status: StatusAborted}, NewError(KindNavigationFailure, err)
		}
	}

	var records []Record
	var err error
	switch mode {
	case ModeFlat:
		records, err = HarvestFlat(ctx, a, cfg)
	default:
		var region string
		region, err = ResolveRegion(ctx, a, cfg, DefaultRegionPredicates(cfg.RegionTags, cfg.RegionPatterns))
		if err == nil {
			slog.InfoContext(ctx, "harvesting", "region", region)
			records, err = DriveSelections(ctx, a, cfg, region, observe)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run aborted")
		return Result{Records: records, Status: StatusAborted}, err
	}

	if len(records) == 0 {
		status := StatusCompletedEmpty
		if cfg.EmptyPolicy == EmptyIsDegraded {
			status = StatusDegraded
		}
		slog.InfoContext(ctx, "run produced no records", "status", status.String())
		// header-only artifact via the guard, same shape as a crash
		return Result{Status: status}, nil
	}

	schema := BuildSchema(records, cfg.effectivePreferred())
	if len(schema) == 0 {
		// every harvest came back empty; the artifact still needs a
		// header row for the rows to sit under
		schema = cfg.fallbackHeader()
	}
	if err := guard.Commit(schema, records); err != nil {
		span.RecordError(err)
		return Result{Records: records, Schema: schema, Status: StatusAborted}, err
	}

	span.SetAttributes(
		attribute.Int("records", len(records)),
		attribute.Int("schema", len(schema)),
	)
	return Result{Records: records, Schema: schema, Status: StatusCompleted}, nil
}

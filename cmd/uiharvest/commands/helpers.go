package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"uiharvest/lib/catalogstore"
	"uiharvest/lib/cliutil"
	"uiharvest/lib/configutil"
	"uiharvest/lib/harvest"
	"uiharvest/lib/snapcache"

	"github.com/jedib0t/go-pretty/v6/table"
)

const snapshotTtl = time.Hour * 24 * 7

func loadConfig() harvest.Config {
	cfg, err := configutil.ReadConfig[harvest.Config](*configPath)
	if err != nil {
		cliutil.Fatal("failed to read config", err)
	}
	return cfg
}

func defaultRunId() string {
	return time.Now().Format("20060102-150405")
}

// snapshotObserver records every harvested region snapshot for offline
// replay. A nil observer (no cache configured) is valid.
func snapshotObserver(cachePath, runId string) (harvest.SnapshotObserver, func()) {
	if cachePath == "" {
		return nil, func() {}
	}

	cache, err := snapcache.Open(cachePath, snapshotTtl)
	if err != nil {
		cliutil.Fatal("failed to open snapshot cache", err)
	}

	observe := func(ctx context.Context, position int, display, html string) {
		err := cache.Put(ctx, runId, snapcache.Entry{
			Position: position,
			Display:  display,
			Html:     html,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to cache snapshot",
				"run_id", runId, "position", position, "err", err)
		}
	}
	return observe, func() { cache.Close() }
}

// archiveResult pushes a finished run into the sqlite archive. Archive
// trouble is reported but never fails the run: the CSV artifact on
// disk is the deliverable.
func archiveResult(ctx context.Context, dbPath, name, mode string, startedAt time.Time, result harvest.Result) {
	if dbPath == "" {
		return
	}

	store, err := catalogstore.Open(dbPath)
	if err != nil {
		slog.WarnContext(ctx, "failed to open catalog archive", "db", dbPath, "err", err)
		return
	}
	defer store.Close()

	runId, err := store.CreateRun(ctx, name, mode, startedAt)
	if err != nil {
		slog.WarnContext(ctx, "failed to create archive run", "err", err)
		return
	}
	if err := store.Push(ctx, runId, result); err != nil {
		slog.WarnContext(ctx, "failed to archive catalog", "run_id", runId, "err", err)
	}
}

func printSummary(result harvest.Result, output string, elapsed time.Duration) {
	t := cliutil.NewTable()
	t.AppendHeader(table.Row{"Status", "Records", "Schema", "Output", "Seconds"})
	t.AppendRow(table.Row{
		result.Status.String(),
		len(result.Records),
		strings.Join(result.Schema, ", "),
		output,
		fmt.Sprintf("%.1f", elapsed.Seconds()),
	})
	t.Render()
}

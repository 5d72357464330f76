package commands

import (
	"fmt"
	"log/slog"
	"time"
	"uiharvest/lib/cliutil"
	"uiharvest/lib/harvest"
	"uiharvest/lib/snapcache"

	"github.com/spf13/cobra"
)

var (
	replayDb     *string
	replayCache  *string
	replayOutput *string
)

func init() {
	replayDb = replayCmd.Flags().String("db", "", "Optional sqlite archive to record the run into.")
	replayCache = replayCmd.Flags().String("cache", "snapshots", "The badger cache holding the run's snapshots.")
	replayOutput = replayCmd.Flags().String("output", "", "Overrides the configured output path.")
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay <run-id> [--cache <snapshots>]",
	Short: "Re-runs extraction over a cached run's snapshots, without the target application.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		runId := args[0]

		cfg := loadConfig().WithDefaults()
		if *replayOutput != "" {
			cfg.Output = *replayOutput
		}

		cache, err := snapcache.Open(*replayCache, snapshotTtl)
		if err != nil {
			cliutil.Fatal("failed to open snapshot cache", err)
		}
		defer cache.Close()

		entries, err := cache.List(ctx, runId)
		if err != nil {
			cliutil.Fatal("failed to list cached snapshots", err)
		}
		if len(entries) == 0 {
			cliutil.Fatal("nothing to replay", fmt.Errorf("no cached snapshots for run %q", runId))
		}

		snapshots := make([]harvest.Snapshot, len(entries))
		for i, entry := range entries {
			snapshots[i] = harvest.Snapshot{
				Position: entry.Position,
				Display:  entry.Display,
				Html:     entry.Html,
			}
		}

		slog.Info("replaying cached run", "run_id", runId, "snapshots", len(snapshots))

		t1 := time.Now()
		result, err := harvest.ReplaySnapshots(ctx, cfg, snapshots)
		t2 := time.Now()

		archiveResult(ctx, *replayDb, runId, "replay", t1, result)
		if err != nil {
			cliutil.Fatal("replay aborted", err)
		}

		printSummary(result, cfg.Output, t2.Sub(t1))
	},
}

package commands

import (
	"log/slog"
	"time"
	"uiharvest/lib/browser"
	"uiharvest/lib/cliutil"
	"uiharvest/lib/harvest"

	"github.com/spf13/cobra"
)

var (
	harvestDb     *string
	harvestCache  *string
	harvestRunId  *string
	harvestOutput *string
	harvestLimit  *int
)

func init() {
	harvestDb = harvestCmd.Flags().String("db", "", "Optional sqlite archive to record the run into.")
	harvestCache = harvestCmd.Flags().String("cache", "", "Optional badger cache to record snapshots into for replay.")
	harvestRunId = harvestCmd.Flags().String("run-id", "", "Identifier for cached snapshots, defaults to a timestamp.")
	harvestOutput = harvestCmd.Flags().String("output", "", "Overrides the configured output path.")
	harvestLimit = harvestCmd.Flags().Int("limit", 0, "Only process the first N candidates.")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest [--db <archive.db>] [--cache <snapshots>]",
	Short: "Selects every candidate in turn and harvests the subject region into CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg := loadConfig().WithDefaults()
		if *harvestOutput != "" {
			cfg.Output = *harvestOutput
		}
		if *harvestLimit > 0 {
			cfg.DebugLimit = *harvestLimit
		}

		runId := *harvestRunId
		if runId == "" {
			runId = defaultRunId()
		}
		observe, closeCache := snapshotObserver(*harvestCache, runId)
		defer closeCache()

		session, err := browser.NewSession(ctx, browser.Options{
			Headless:   cfg.Headless,
			NavTimeout: cfg.NavTimeout(),
			OpTimeout:  cfg.OpTimeout(),
		})
		if err != nil {
			cliutil.Fatal("failed to start browser", err)
		}
		defer session.Close()

		slog.Info("harvesting", "target", cfg.BaseUrl, "run_id", runId)

		t1 := time.Now()
		result, err := harvest.Execute(ctx, session, cfg, harvest.ModeSelections, observe)
		t2 := time.Now()

		archiveResult(ctx, *harvestDb, runId, "selections", t1, result)
		if err != nil {
			// the output guard has already left a fallback artifact
			cliutil.Fatal("run aborted", err)
		}

		printSummary(result, cfg.Output, t2.Sub(t1))
	},
}

package commands

import (
	"log/slog"
	"time"
	"uiharvest/lib/browser"
	"uiharvest/lib/cliutil"
	"uiharvest/lib/harvest"
	"uiharvest/lib/staticdom"

	"github.com/spf13/cobra"
)

var (
	flatDb     *string
	flatOutput *string
	flatStatic *bool
)

func init() {
	flatDb = flatCmd.Flags().String("db", "", "Optional sqlite archive to record the run into.")
	flatOutput = flatCmd.Flags().String("output", "", "Overrides the configured output path.")
	flatStatic = flatCmd.Flags().Bool("static", false, "Fetch the page over plain HTTP instead of driving a browser.")
	rootCmd.AddCommand(flatCmd)
}

var flatCmd = &cobra.Command{
	Use:   "flat [--static] [--db <archive.db>]",
	Short: "Harvests every candidate in place, once, into a deduplicated catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg := loadConfig().WithDefaults()
		if *flatOutput != "" {
			cfg.Output = *flatOutput
		}

		var adapter harvest.Adapter
		if *flatStatic {
			client, err := staticdom.NewClient(staticdom.Options{
				BaseUrl: cfg.BaseUrl,
				Timeout: cfg.NavTimeout(),
			})
			if err != nil {
				cliutil.Fatal("failed to initialize http client", err)
			}
			adapter = client
		} else {
			session, err := browser.NewSession(ctx, browser.Options{
				Headless:   cfg.Headless,
				NavTimeout: cfg.NavTimeout(),
				OpTimeout:  cfg.OpTimeout(),
			})
			if err != nil {
				cliutil.Fatal("failed to start browser", err)
			}
			defer session.Close()
			adapter = session
		}

		slog.Info("harvesting flat catalog", "target", cfg.BaseUrl, "static", *flatStatic)

		t1 := time.Now()
		result, err := harvest.Execute(ctx, adapter, cfg, harvest.ModeFlat, nil)
		t2 := time.Now()

		archiveResult(ctx, *flatDb, defaultRunId(), "flat", t1, result)
		if err != nil {
			cliutil.Fatal("run aborted", err)
		}

		printSummary(result, cfg.Output, t2.Sub(t1))
	},
}

package commands

import (
	"strings"
	"uiharvest/lib/catalogstore"
	"uiharvest/lib/cliutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsDb *string

func init() {
	runsDb = runsCmd.Flags().String("db", "catalog.db", "The sqlite archive to list runs from.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--db <archive.db>]",
	Short: "Lists archived runs, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store, err := catalogstore.Open(*runsDb)
		if err != nil {
			cliutil.Fatal("failed to open catalog archive", err)
		}
		defer store.Close()

		runs, err := store.Runs(ctx)
		if err != nil {
			cliutil.Fatal("failed to list runs", err)
		}

		t := cliutil.NewTable()
		t.AppendHeader(table.Row{"Id", "Name", "Mode", "Status", "Started", "Records", "Schema"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.Id,
				run.Name,
				run.Mode,
				run.Status,
				run.StartedAt.Format("2006-01-02 15:04"),
				run.Records,
				strings.Join(run.Schema, ", "),
			})
		}
		t.Render()
	},
}

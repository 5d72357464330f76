package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "uiharvest",
	Short: "uiharvest drives a target application's UI and harvests its catalog into CSV.",
}

var configPath *string

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "harvest.json5", "Path to the harvest config.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent synchronisations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if services == nil || services.History == nil {
		return errors.New("history service not configured")
	}
	runs, err := services.History.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No synchronisations recorded.")
		return nil
	}

	cmd.Println(titleStyle.Render("Recent synchronisations"))
	for _, run := range runs {
		status := successStyle.Render("written")
		switch {
		case !run.Succeeded():
			status = errorStyle.Render("failed: " + run.Error)
		case !run.Written:
			status = mutedStyle.Render("nothing written")
		}
		cmd.Printf("%4d  %s  %-9s  %s -> %s  %s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Direction,
			filepath.Base(run.SourcePath),
			filepath.Base(run.TargetPath),
			status,
		)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moonphaseCmd = &cobra.Command{
	Use:   "moonphase <project.novx>",
	Short: "Add the moon phase to the events of a timeline",
	Long: `Rewrites the timeline of the given novel project, setting the moon phase
property on every event that corresponds to a section.`,
	Args: cobra.ExactArgs(1),
	RunE: runMoonphase,
}

func init() {
	rootCmd.AddCommand(moonphaseCmd)
}

func runMoonphase(cmd *cobra.Command, args []string) error {
	svc, err := syncService()
	if err != nil {
		return err
	}
	result, err := svc.AddMoonPhase(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("moon phase update failed: %w", err)
	}
	printResult(cmd, result)
	return nil
}

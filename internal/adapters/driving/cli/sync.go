package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

var syncSilent bool

var syncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Synchronise a timeline with its novel project",
	Long: `Synchronises the given file with its counterpart in the same directory.

  demo.aeonzip  updates demo.novx, creating it if it does not exist
  demo.novx     updates demo.aeonzip

When run in a terminal, sync asks before overwriting an existing file.
Use --silent to skip the question.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncSilent, "silent", "s", false, "do not ask before overwriting")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, err := syncService()
	if err != nil {
		return err
	}

	plan, err := svc.Plan(args[0])
	if err != nil {
		return err
	}
	if !syncSilent && plan.Direction != domain.DirectionCreate && isTerminal() {
		if _, statErr := os.Stat(plan.TargetPath); statErr == nil {
			if !confirm(cmd, fmt.Sprintf("Update %q?", plan.TargetPath)) {
				cmd.Println(mutedStyle.Render("Action canceled by user."))
				return nil
			}
		}
	}

	result, err := svc.Synchronize(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	printResult(cmd, result)
	return nil
}

// printResult prints the status line and, when anything changed, the counts.
func printResult(cmd *cobra.Command, result *domain.SyncResult) {
	switch {
	case result.NarrativeMissing:
		cmd.Println(warningStyle.Render(result.Message()))
		return
	case result.Written:
		cmd.Println(successStyle.Render(result.Message()))
	default:
		cmd.Println(mutedStyle.Render(result.Message()))
		return
	}

	switch result.Plan.Direction {
	case domain.DirectionExport, domain.DirectionMoonPhase:
		cmd.Println(mutedStyle.Render(fmt.Sprintf("  events: %d created, %d updated, %d deleted; entities: %d created",
			result.EventsCreated, result.SectionsUpdated, result.EventsDeleted, result.EntitiesCreated)))
	default:
		cmd.Println(mutedStyle.Render(fmt.Sprintf("  sections: %d created, %d updated, %d demoted; elements: %d created",
			result.SectionsCreated, result.SectionsUpdated, result.SectionsDemoted, result.EntitiesCreated)))
	}
	if result.SchemaHealed {
		cmd.Println(mutedStyle.Render("  the timeline template was completed"))
	}
}

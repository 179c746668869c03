package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <project.novx>",
	Short: "Show whether the timeline is newer than the project",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	svc, err := syncService()
	if err != nil {
		return err
	}
	info, err := svc.Info(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("info failed: %w", err)
	}

	if !info.TimelineExists {
		cmd.Println(mutedStyle.Render(fmt.Sprintf("No timeline found for %q.", info.NovelPath)))
		return nil
	}
	cmd.Printf("Timeline: %s\n", info.TimelinePath)
	cmd.Printf("Modified: %s\n", info.TimelineModified.Local().Format(time.DateTime))
	if info.TimelineNewer {
		cmd.Println(warningStyle.Render("The timeline is newer than the project."))
	} else {
		cmd.Println(successStyle.Render("The timeline is older than the project."))
	}
	return nil
}

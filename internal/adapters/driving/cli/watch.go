package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch <timeline.aeonzip>",
	Short: "Update the novel project whenever the timeline is saved",
	Long: `Watches a timeline archive and synchronises its novel project each time
the archive is saved. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if services == nil || services.Watch == nil {
		return errors.New("watch service not configured")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println(mutedStyle.Render("Watching " + args[0] + ". Press Ctrl+C to stop."))
	return services.Watch.Watch(ctx, args[0], func(result *domain.SyncResult, err error) {
		if err != nil {
			cmd.PrintErrln(errorStyle.Render("Error: " + err.Error()))
			return
		}
		printResult(cmd, result)
	})
}

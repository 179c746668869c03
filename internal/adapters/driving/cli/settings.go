package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage sync settings",
	Long: `View and change the names aeonsync uses for timeline types, roles,
properties and colours, and its options.

Global settings are stored in config.toml in the configuration directory.
An aeonsync.toml file next to a project overrides them for that project.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a global setting",
	Long: `Change a global setting, for example:

  aeonsync settings set names.narrative_arc "Main plot"
  aeonsync settings set options.lock_on_export false
  aeonsync settings set options.watch_interval 5`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

var errSettingsNotConfigured = errors.New("settings service not configured")

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Settings == nil {
		return errSettingsNotConfigured
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println()
	for _, entry := range services.Settings.Entries() {
		line := fmt.Sprintf("  %-28s %s", entry.Key, entry.Value)
		if entry.IsDefault {
			line += mutedStyle.Render(" (default)")
		}
		cmd.Println(line)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if services == nil || services.Settings == nil {
		return errSettingsNotConfigured
	}
	if err := services.Settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("%s set to %q.", args[0], args[1])))
	return nil
}

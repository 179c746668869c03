// Package cli provides the command line interface of aeonsync.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aeonsync/internal/core/ports/driving"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Sync     driving.SyncService
	Watch    driving.WatchService
	History  driving.HistoryService
	Settings driving.SettingsService
}

// Bootstrap builds the services for a configuration directory. The
// returned cleanup function releases them.
type Bootstrap func(configDir string) (*Services, func(), error)

var (
	services  *Services
	bootstrap Bootstrap
	cleanup   func()

	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "aeonsync",
	Short: "Synchronise timelines with novel projects",
	Long: `aeonsync keeps a timeline archive (.aeonzip) and a novel project (.novx)
with the same base name in step.

Synchronising a timeline updates the novel project, creating it if needed.
Synchronising a novel project updates its timeline.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.aeonsync)")
}

// SetServices sets the services used by the commands.
func SetServices(s *Services) {
	services = s
}

// SetBootstrap sets the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(*cobra.Command, []string) error {
	logger.SetVerbose(verbose)
	if services != nil || bootstrap == nil {
		return nil
	}
	s, release, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	services = s
	cleanup = release
	return nil
}

var errNotConfigured = errors.New("service not configured")

func syncService() (driving.SyncService, error) {
	if services == nil || services.Sync == nil {
		return nil, errNotConfigured
	}
	return services.Sync, nil
}

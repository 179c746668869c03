// Command aeonsync synchronises timeline archives with novel projects.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/aeonsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/aeonsync/internal/adapters/driven/storage/aeonzip"
	"github.com/custodia-labs/aeonsync/internal/adapters/driven/storage/novx"
	"github.com/custodia-labs/aeonsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/aeonsync/internal/adapters/driven/watcher"
	"github.com/custodia-labs/aeonsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/aeonsync/internal/core/services"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// version is set by the linker.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the services.
func bootstrap(configDir string) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	logger.Debug("Journal at %s", store.Path())
	journal := store.JournalStore()

	settingsService := services.NewSettingsService(configStore)
	syncService := services.NewSyncService(
		aeonzip.NewStore(),
		novx.NewStore(),
		novx.NewLocker(),
		journal,
		settingsService,
	)

	interval := time.Duration(configStore.GetInt(services.WatchIntervalKey)) * time.Second

	release := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close journal: %v", err)
		}
	}
	return &cli.Services{
		Sync:     syncService,
		Watch:    services.NewWatchService(syncService, watcher.New(), interval),
		History:  services.NewHistoryService(journal),
		Settings: settingsService,
	}, release, nil
}

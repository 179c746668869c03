package driving

import "github.com/custodia-labs/aeonsync/internal/core/domain"

// SettingEntry is one configurable key with its effective value.
type SettingEntry struct {
	Key       string
	Value     string
	IsDefault bool
}

// SettingsService manages sync settings.
type SettingsService interface {
	// Resolve returns the settings for a project directory: defaults,
	// overridden by global configuration, overridden by the project's file.
	Resolve(projectDir string) (*domain.SyncSettings, error)

	// Defaults returns the built-in settings.
	Defaults() domain.SyncSettings

	// Entries lists every known key with its global value.
	Entries() []SettingEntry

	// Set validates and stores a global value.
	Set(key, value string) error
}

package services

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// ProjectConfigFile is the per-project configuration file, looked up next
// to the synchronised files.
const ProjectConfigFile = "aeonsync.toml"

// WatchIntervalKey is the global setting read when the watch service is built.
const WatchIntervalKey = "options.watch_interval"

// settingField binds a config key to a field of SyncSettings.
// Exactly one of text, flag and number is set.
type settingField struct {
	key    string
	text   *string
	flag   *bool
	number *int
}

func settingFields(s *domain.SyncSettings) []settingField {
	return []settingField{
		{key: "names.narrative_arc", text: &s.NarrativeArc},
		{key: "names.property_description", text: &s.PropertyDescription},
		{key: "names.property_notes", text: &s.PropertyNotes},
		{key: "names.property_moonphase", text: &s.PropertyMoonPhase},
		{key: "names.type_arc", text: &s.TypeArc},
		{key: "names.type_character", text: &s.TypeCharacter},
		{key: "names.type_location", text: &s.TypeLocation},
		{key: "names.type_item", text: &s.TypeItem},
		{key: "names.role_arc", text: &s.RoleArc},
		{key: "names.role_plotline", text: &s.RolePlotLine},
		{key: "names.role_character", text: &s.RoleCharacter},
		{key: "names.role_location", text: &s.RoleLocation},
		{key: "names.role_item", text: &s.RoleItem},
		{key: "names.color_section", text: &s.ColorSection},
		{key: "names.color_event", text: &s.ColorEvent},
		{key: "options.add_moonphase", flag: &s.AddMoonPhase},
		{key: "options.lock_on_export", flag: &s.LockOnExport},
		{key: WatchIntervalKey, number: &s.WatchSeconds},
	}
}

func (f settingField) String() string {
	switch {
	case f.flag != nil:
		return strconv.FormatBool(*f.flag)
	case f.number != nil:
		return strconv.Itoa(*f.number)
	}
	return *f.text
}

// apply copies a stored value into the field. Values of the wrong type,
// empty names and non-positive numbers are ignored.
func (f settingField) apply(v any) {
	switch {
	case f.flag != nil:
		if b, ok := v.(bool); ok {
			*f.flag = b
		}
	case f.number != nil:
		var n int
		switch x := v.(type) {
		case int:
			n = x
		case int64:
			n = int(x)
		}
		if n > 0 {
			*f.number = n
		}
	default:
		if str, ok := v.(string); ok && str != "" {
			*f.text = str
		}
	}
}

// SettingsService resolves sync settings from layered configuration.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Resolve returns the defaults overridden by the global configuration,
// overridden in turn by the project's configuration file.
func (s *SettingsService) Resolve(projectDir string) (*domain.SyncSettings, error) {
	settings := domain.DefaultSyncSettings()
	if s.configStore == nil {
		return &settings, nil
	}
	store, err := s.configStore.WithOverlay(filepath.Join(projectDir, ProjectConfigFile))
	if err != nil {
		return nil, fmt.Errorf("read project settings: %w", err)
	}
	for _, f := range settingFields(&settings) {
		if v, ok := store.Get(f.key); ok {
			f.apply(v)
		}
	}
	return &settings, nil
}

// Defaults returns the built-in settings.
func (s *SettingsService) Defaults() domain.SyncSettings {
	return domain.DefaultSyncSettings()
}

// Entries lists every key with its global value.
func (s *SettingsService) Entries() []driving.SettingEntry {
	settings := domain.DefaultSyncSettings()
	fields := settingFields(&settings)
	entries := make([]driving.SettingEntry, 0, len(fields))
	for _, f := range fields {
		isDefault := true
		if s.configStore != nil {
			if v, ok := s.configStore.Get(f.key); ok {
				f.apply(v)
				isDefault = false
			}
		}
		entries = append(entries, driving.SettingEntry{
			Key:       f.key,
			Value:     f.String(),
			IsDefault: isDefault,
		})
	}
	return entries
}

// Set validates and stores a global value.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("%w: no configuration store", domain.ErrInvalidInput)
	}
	var defaults domain.SyncSettings
	for _, f := range settingFields(&defaults) {
		if f.key != key {
			continue
		}
		if f.flag != nil {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
			}
			return s.configStore.Set(key, b)
		}
		if f.number != nil {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
			}
			return s.configStore.Set(key, n)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, value)
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

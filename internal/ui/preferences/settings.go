package preferences

import (
	"strings"

	"obscount/internal/config"
)

// Backends lists the storage backends offered in the form.
var Backends = []string{config.BackendFile, config.BackendPreferences, config.BackendMemory}

// LogLevels lists the log levels offered in the form.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Settings defines the editable part of the config file.
type Settings struct {
	Backend     string
	DataDir     string
	ExportDir   string
	LogLevel    string
	RestOverlay bool
}

// FromConfig extracts editable settings.
func FromConfig(cfg config.Config) Settings {
	return Settings{
		Backend:     cfg.Storage.Backend,
		DataDir:     cfg.Storage.Dir,
		ExportDir:   cfg.Export.Dir,
		LogLevel:    cfg.LogLevel,
		RestOverlay: cfg.RestOverlay,
	}
}

// Apply writes settings into cfg. Blank directories keep the current value.
func (settings Settings) Apply(cfg config.Config) config.Config {
	for _, backend := range Backends {
		if settings.Backend == backend {
			cfg.Storage.Backend = backend
		}
	}
	if dir := strings.TrimSpace(settings.DataDir); dir != "" {
		cfg.Storage.Dir = dir
	}
	if dir := strings.TrimSpace(settings.ExportDir); dir != "" {
		cfg.Export.Dir = dir
	}
	if settings.LogLevel != "" {
		cfg.LogLevel = settings.LogLevel
	}
	cfg.RestOverlay = settings.RestOverlay
	return cfg
}

// RequiresRestart reports whether moving from before to after changes
// where records are stored.
func RequiresRestart(before, after config.Config) bool {
	return before.Storage != after.Storage
}

// Package config loads the application configuration file.
//
// The file lives in the user config directory as config.yaml or
// config.toml. A missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"obscount/internal/core/model"
	"obscount/internal/storage"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppName names the config and data directories.
const AppName = "obscount"

// Storage backends.
const (
	BackendFile        = "file"
	BackendPreferences = "preferences"
	BackendMemory      = "memory"
)

var configFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// StorageConfig selects where records are kept.
type StorageConfig struct {
	Backend   string `yaml:"backend" toml:"backend"`
	Dir       string `yaml:"dir" toml:"dir"`
	KeyPrefix string `yaml:"key_prefix" toml:"key_prefix"`
}

// TimerConfig holds the phase lengths used until stored settings load.
type TimerConfig struct {
	RecordSeconds int `yaml:"record_seconds" toml:"record_seconds"`
	RestSeconds   int `yaml:"rest_seconds" toml:"rest_seconds"`
}

// ExportConfig holds CSV export options.
type ExportConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// Config is the application configuration.
type Config struct {
	Storage     StorageConfig `yaml:"storage" toml:"storage"`
	Timer       TimerConfig   `yaml:"timer" toml:"timer"`
	Export      ExportConfig  `yaml:"export" toml:"export"`
	LogLevel    string        `yaml:"log_level" toml:"log_level"`
	RestOverlay bool          `yaml:"rest_overlay" toml:"rest_overlay"`
}

// Default returns the built-in configuration.
func Default() Config {
	defaults := model.DefaultTimerSettings()
	configDir, err := Dir()
	if err != nil {
		configDir = "."
	}
	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}
	return Config{
		Storage: StorageConfig{
			Backend:   BackendFile,
			Dir:       filepath.Join(configDir, "data"),
			KeyPrefix: storage.DefaultKeyPrefix,
		},
		Timer: TimerConfig{
			RecordSeconds: defaults.RecordTime,
			RestSeconds:   defaults.RestTime,
		},
		Export: ExportConfig{
			Dir: exportDir,
		},
		LogLevel:    "info",
		RestOverlay: true,
	}
}

// Dir returns the application config directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, AppName), nil
}

// Path returns the first existing config file, or the default YAML path
// when none exists.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(configDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return filepath.Join(configDir, configFileNames[0]), nil
}

// Load reads the config file at path. An empty path resolves the default
// location. Missing files return the defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		resolved, err := Path()
		if err != nil {
			return config, err
		}
		path = resolved
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read config file: %w", err)
	}

	var fileData Config
	if isTOML(path) {
		if err := toml.Unmarshal(rawData, &fileData); err != nil {
			return config, fmt.Errorf("parse config toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(rawData, &fileData); err != nil {
			return config, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	applyFileConfig(&config, fileData, rawData, path)
	return config, nil
}

// Save writes config to path, creating its directory.
func Save(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var (
		serialized []byte
		err        error
	)
	if isTOML(path) {
		serialized, err = toml.Marshal(config)
	} else {
		serialized, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// TimerSettings returns the configured phase lengths.
func (config Config) TimerSettings() model.TimerSettings {
	return model.TimerSettings{
		RecordTime: config.Timer.RecordSeconds,
		RestTime:   config.Timer.RestSeconds,
	}.Clamp()
}

// Level parses LogLevel, defaulting to info.
func (config Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func applyFileConfig(config *Config, fileData Config, rawData []byte, path string) {
	switch fileData.Storage.Backend {
	case BackendFile, BackendPreferences, BackendMemory:
		config.Storage.Backend = fileData.Storage.Backend
	}
	if fileData.Storage.Dir != "" {
		config.Storage.Dir = expandHome(fileData.Storage.Dir)
	}
	if fileData.Storage.KeyPrefix != "" {
		config.Storage.KeyPrefix = fileData.Storage.KeyPrefix
	}

	if fileData.Timer.RecordSeconds > 0 {
		config.Timer.RecordSeconds = fileData.Timer.RecordSeconds
	}
	if fileData.Timer.RestSeconds > 0 {
		config.Timer.RestSeconds = fileData.Timer.RestSeconds
	}

	if fileData.Export.Dir != "" {
		config.Export.Dir = expandHome(fileData.Export.Dir)
	}
	if fileData.LogLevel != "" {
		config.LogLevel = fileData.LogLevel
	}
	if hasKey(rawData, path, "rest_overlay") {
		config.RestOverlay = fileData.RestOverlay
	}
}

// hasKey reports whether a top-level key is present so that an explicit
// false is not mistaken for an omitted field.
func hasKey(rawData []byte, path, key string) bool {
	fields := map[string]any{}
	if isTOML(path) {
		if err := toml.Unmarshal(rawData, &fields); err != nil {
			return false
		}
	} else if err := yaml.Unmarshal(rawData, &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}

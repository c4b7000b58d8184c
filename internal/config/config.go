// Package config handles loading and saving application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppName is the directory name used under the config and data roots.
const AppName = "nightlist"

// Storage backends
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	// Theme is the palette name (midnight, nord, dracula, gruvbox, catppuccin)
	Theme string `yaml:"theme"`

	// TasksFile is the JSON task file. Relative paths resolve against DataDir.
	TasksFile string `yaml:"tasks_file"`

	// Storage selects the backend: "json" or "sqlite"
	Storage string `yaml:"storage"`

	// DataDir overrides the data directory
	DataDir string `yaml:"data_dir,omitempty"`

	// Journal enables the activity journal
	Journal bool `yaml:"journal"`

	// Notifications sends desktop notifications for save and load failures
	Notifications bool `yaml:"notifications"`

	// LogLevel is a zerolog level name
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Theme:     "midnight",
		TasksFile: "nightlist_tasks.json",
		Storage:   StorageJSON,
		Journal:   true,
		LogLevel:  "info",
	}
}

// ConfigDir returns the configuration directory.
// XDG_CONFIG_HOME wins over ~/.config.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DataDir returns the default data directory.
// XDG_DATA_HOME wins over ~/.local/share.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// DefaultPath returns the full path to the configuration file.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads the configuration from path.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %q or %q)", c.Storage, StorageJSON, StorageSQLite)
	}
	if c.TasksFile == "" {
		return errors.New("tasks_file must not be empty")
	}
	return nil
}

// TasksPath resolves TasksFile against dataDir.
func (c *Config) TasksPath(dataDir string) string {
	if filepath.IsAbs(c.TasksFile) {
		return c.TasksFile
	}
	return filepath.Join(dataDir, c.TasksFile)
}

// Copyright (c) 2026 ToeiRei
// ClipVault - encrypted clipboard history
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the layered ClipVault configuration: defaults,
// YAML config file, environment, CLI flags. Components receive an
// immutable snapshot at construction; a changed file takes effect on the
// next start, never by mutating shared state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full application configuration snapshot.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Capture  CaptureConfig  `mapstructure:"capture" yaml:"capture"`
	Filter   FilterConfig   `mapstructure:"filter" yaml:"filter"`
	Keystore KeystoreConfig `mapstructure:"keystore" yaml:"keystore"`
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

// HistoryConfig bounds retention.
type HistoryConfig struct {
	MaxUnpinnedItems int `mapstructure:"max_unpinned_items" yaml:"max_unpinned_items"`
}

// CaptureConfig controls which representations are captured and how often
// the clipboard is observed.
type CaptureConfig struct {
	Rich       bool `mapstructure:"rich" yaml:"rich"`
	Plain      bool `mapstructure:"plain" yaml:"plain"`
	IntervalMS int  `mapstructure:"interval_ms" yaml:"interval_ms"`
}

// FilterConfig controls the sensitivity filter and the exclusion gate.
type FilterConfig struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	ExcludedAppIDs []string `mapstructure:"excluded_app_ids" yaml:"excluded_app_ids"`
}

// KeystoreConfig locates the encryption key file.
type KeystoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Defaults are the baseline settings applied below file, env and flags.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":              "sqlite",
		"database.dsn":               "./clipvault.db",
		"history.max_unpinned_items": 500,
		"capture.rich":               true,
		"capture.plain":              true,
		"capture.interval_ms":        300,
		"filter.enabled":             true,
		"filter.excluded_app_ids":    []string{},
		"keystore.path":              "",
		"debug":                      false,
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "ClipVault")
		default: // Linux, macOS, etc.
			configDir = "/etc/clipvault"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "clipvault")
	}

	return filepath.Join(configDir, "clipvault.yaml"), nil
}

// Load builds the configuration from defaults, clipvault.yaml (explicit
// path, user dir, system dir, then CWD), CLIPVAULT_* environment
// variables, and the command's flags, in ascending precedence.
// The second result reports whether a config file was found; a first run
// returns found=false with a usable defaults-based config, and the caller
// decides whether to persist one.
func Load(cmd *cobra.Command, explicitFile string) (Config, bool, error) {
	var c Config
	found := true
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("clipvault")
	v.SetConfigType("yaml")
	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	}
	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, false, err
		}
		found = false
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("clipvault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, found, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, found, err
	}
	return c, found, nil
}

// WriteFile persists the configuration as YAML, creating the directory
// as needed. Written 0600 as it may name sensitive paths.
func WriteFile(c *Config, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Package config resolves duperscooper's configuration via
// github.com/spf13/viper: flags override a per-user config file, which
// overrides built-in defaults.
//
// Grounded on zfogg-sidechain/cli/pkg/config (platform-specific config dir
// resolution, viper init order).
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Configuration keys. The CLI reads only the two cache keys; the worker,
// threshold, rules-path and staging-root keys get defaults here but no
// command reads them.
const (
	KeyCacheBackend       = "cache.backend" // "sqlite" | "legacy"
	KeyCachePath          = "cache.path"
	KeyDefaultWorkers      = "scan.default_workers"
	KeyDefaultThreshold    = "scan.default_threshold"
	KeyRulesConfigPath     = "rules.config_path"
	KeyStagingRootName     = "staging.root_name"
)

// Dir returns the platform-specific configuration directory.
func Dir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "duperscooper"), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "duperscooper"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "duperscooper"), nil
}

// CacheDir returns the platform-specific cache directory, distinct from the
// config directory per the teacher's os.UserCacheDir convention.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "duperscooper"), nil
}

// Init resolves configuration from configPath (if non-empty) or the
// platform default location, layering built-in defaults underneath.
func Init(configPath string) error {
	setDefaults()

	if configPath == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, "config.toml")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	viper.SetConfigType("toml")
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absent config file is not an error; defaults apply

	return nil
}

func setDefaults() {
	viper.SetDefault(KeyCacheBackend, "sqlite")
	viper.SetDefault(KeyDefaultWorkers, 8)
	viper.SetDefault(KeyDefaultThreshold, 97.0)
	viper.SetDefault(KeyRulesConfigPath, "")
	viper.SetDefault(KeyStagingRootName, ".deletedByDuperscooper")

	cacheDir, err := CacheDir()
	if err == nil {
		viper.SetDefault(KeyCachePath, filepath.Join(cacheDir, "fingerprints.sqlite3"))
	}
}

// GetString is a thin passthrough, kept so callers don't import viper
// directly throughout the codebase.
func GetString(key string) string { return viper.GetString(key) }

// GetInt is a thin passthrough.
func GetInt(key string) int { return viper.GetInt(key) }

// GetFloat64 is a thin passthrough.
func GetFloat64(key string) float64 { return viper.GetFloat64(key) }

// Package config loads the CLI configuration file and its environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// History configures where executed requests are recorded.
type History struct {
	Path     string
	Disabled bool
}

type Config struct {
	DefaultTarget string
	ServerAddr    string
	TimeoutMillis int64
	History       History
	Vars          map[string]any
}

// DefaultPath returns the config file location honoring XDG_CONFIG_HOME.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "reqforge", "config.yaml")
}

// DefaultHistoryPath returns the history database location honoring
// XDG_DATA_HOME.
func DefaultHistoryPath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "reqforge", "history.db")
}

// Load reads the config file at path, or the default location when path is
// empty. A missing default file is not an error; a missing explicit path is.
// Every key can be overridden through REQFORGE_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("default_target", "curl")
	v.SetDefault("server.addr", ":8090")
	v.SetDefault("timeout_ms", 0)
	v.SetDefault("history.path", DefaultHistoryPath())
	v.SetDefault("history.disabled", false)

	v.SetEnvPrefix("REQFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if explicit {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	cfg := Config{
		DefaultTarget: v.GetString("default_target"),
		ServerAddr:    v.GetString("server.addr"),
		TimeoutMillis: v.GetInt64("timeout_ms"),
		History: History{
			Path:     v.GetString("history.path"),
			Disabled: v.GetBool("history.disabled"),
		},
		Vars: v.GetStringMap("vars"),
	}
	return cfg, nil
}

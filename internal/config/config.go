// Package config loads workbench-level settings from the environment
// and an optional .workbench.yaml file.
package config

import (
	"github.com/spf13/viper"
)

// Config is the workbench-level configuration. Per-case state lives in
// the case directory; this only covers where cases go and how to reach
// the database backend.
type Config struct {
	// CasesDir is the root directory holding one subdirectory per case.
	CasesDir string `mapstructure:"cases_dir"`

	// Driver selects the database backend: "sqlite" (default) or
	// "postgres".
	Driver string `mapstructure:"driver"`

	// PostgresDSN is the connection string used when Driver is
	// "postgres". Ignored for sqlite, which stores one database file
	// per case.
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// LogLevel selects logger verbosity: "debug", "info", "warn",
	// "error".
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from viper's merged sources (config file,
// environment, flags) and applies defaults.
func Load() (*Config, error) {
	viper.SetDefault("cases_dir", "cases")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("log_level", "info")

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package cmd implements the workbench command surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/prose66/InvestigationWorkbench/internal/casefile"
	"github.com/prose66/InvestigationWorkbench/internal/config"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Investigation workbench for normalized security-log timelines",
	Long: `Workbench registers security-log exports against a case, normalizes
every record into one unified event schema, and persists the results into a
per-case database for timeline analysis.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .workbench.yaml)")
	rootCmd.PersistentFlags().String("cases-dir", "", "root directory for case folders")
	rootCmd.PersistentFlags().String("driver", "", "database backend: sqlite, postgres")
	rootCmd.PersistentFlags().String("postgres-dsn", "", "connection string for the postgres backend")
	rootCmd.PersistentFlags().String("log-level", "", "log verbosity: debug, info, warn, error")

	_ = viper.BindPFlag("cases_dir", rootCmd.PersistentFlags().Lookup("cases-dir"))
	_ = viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("postgres_dsn", rootCmd.PersistentFlags().Lookup("postgres-dsn"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".workbench")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("workbench")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// loadConfig resolves the merged configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func layoutFor(cfg *config.Config) casefile.Layout {
	return casefile.Layout{CasesRoot: cfg.CasesDir}
}

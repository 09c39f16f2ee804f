// Package cmd implements the CLI commands for SitemapGen using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/sitemapgen/config"
	"github.com/gaurav-prasanna/sitemapgen/logging"
)

// Persistent flag variables.
var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "sitemapgen",
	Short: "SitemapGen: crawl a website and write its sitemap.xml",
	Long: `SitemapGen walks the internal links of a website up to a depth limit
and writes a sitemap.xml following the sitemaps.org 0.9 protocol.

Usage:
  sitemapgen generate <url> [flags]
  sitemapgen check <url> [flags]`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (or SITEMAPGEN_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log_level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log_json", false, "Emit logs as JSON")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the layered configuration: defaults, YAML file,
// .env files and SITEMAPGEN_* variables, then the persistent flags the
// user set. The returned logger writes to the command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	bootstrap := logging.NewLogger(cmd.ErrOrStderr(), flagLogLevel, flagLogJSON)
	config.LoadEnv(bootstrap)

	path := flagConfig
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, fmt.Errorf("environment overrides: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log_level") {
		cfg.Logging.Level = flagLogLevel
	}
	if flags.Changed("log_json") {
		cfg.Logging.Structured = flagLogJSON
	}

	logger := logging.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Structured)
	if path != "" {
		logger.WithField("path", path).Debug("loaded config file")
	}
	return cfg, logger, nil
}

// Package cmd provides the command-line interface for assetcat with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --minify, etc.) - highest priority
//	2. ASSETCAT_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (ASSETCAT_OUTPUT_DIR, etc.)
//	4. Configuration files (.assetcat.yml) - lowest priority
//
// Environment Variables:
//
//	ASSETCAT_CONFIG_FILE: Path to custom configuration file
//	ASSETCAT_OUTPUT_DIR: Override the output directory
//	ASSETCAT_MINIFY_DEFAULT: Minify without passing --minify
//	And every other key following the ASSETCAT_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/assetcat/internal/config"
	asseterrors "github.com/conneroisu/assetcat/internal/errors"
	"github.com/conneroisu/assetcat/internal/logging"
)

var (
	cfgFile string
	// configErr holds a problem reading an explicitly requested config file.
	// It surfaces when a command loads the configuration.
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assetcat",
	Short: "Concatenate ordered CSS and JS sources into theme bundles",
	Long: `assetcat builds the stylesheet and script bundles of a site theme from
modular sources. Sources are concatenated in the exact order listed in
.assetcat.yml, each under a section header, behind a generated banner.
Scripts are wrapped in a namespacing closure that registers a Drupal behavior.

Quick Start:
  assetcat init --discover        Write .assetcat.yml listing existing sources
  assetcat build                  Build development bundles
  assetcat build --minify         Build production bundles
  assetcat watch                  Rebuild on every change
  assetcat compare                Compare development and production sizes
  assetcat package                Zip the output directory for upload

Command Aliases (for faster typing):
  build (b), watch (w)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by main. A failing command is logged and followed by a hint
// on stderr before the error is returned.
func ExecuteContext(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		reportError(ctx, cmd, err)
	}
	return err
}

// reportError logs err through the command's logger and prints a hint for
// the failures a user can fix.
func reportError(ctx context.Context, cmd *cobra.Command, err error) {
	stderr := cmd.ErrOrStderr()

	logger, logErr := newLogger(cmd)
	if logErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	} else {
		asseterrors.NewErrorHandler(logger).Handle(ctx, err)
	}

	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(stderr, "💡 %s\n", hint)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, asseterrors.ErrSourceDirMissing("")):
		return "Check the folder structure: the source directories must exist (see sources.css_dir and sources.js_dir)"
	case asseterrors.IsConfigError(err):
		return "Run 'assetcat config validate' to check the configuration"
	case asseterrors.IsBuildError(err):
		return "Build interrupted; bundles written before the interrupt are complete"
	case errors.Is(err, asseterrors.ErrWriteFailed("", nil)):
		return "Check that the output directory is writable"
	case asseterrors.IsIOError(err):
		return "Check that the source directories are readable"
	}
	return ""
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .assetcat.yml, can also use ASSETCAT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. ASSETCAT_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .assetcat.yml in current directory
//
// Every configuration key is also bound to an ASSETCAT_ environment variable
// (e.g., ASSETCAT_OUTPUT_DIR=./build).
func initConfig() {
	configErr = nil
	explicit := true

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("ASSETCAT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultFileName, filepath.Ext(config.DefaultFileName)))
	}

	if err := config.BindEnv(); err != nil {
		configErr = err
		return
	}

	// A missing default file means defaults apply. A file the user pointed at
	// must exist and parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("failed to read config file: %w", err)
		}
	}
}

// loadConfig returns the validated configuration for a command.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command's logger from the persistent log flags.
func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, err
	}

	format := viper.GetString("log.format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unsupported log format: %s (supported: text, json)", format)
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    cmd.ErrOrStderr(),
		Component: "assetcat",
	}), nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

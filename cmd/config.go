package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/assetcat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the assetcat configuration",
	Long: `Inspect the resolved assetcat configuration.

Examples:
  assetcat config show                 # Show the resolved configuration
  assetcat config validate             # Validate the configuration and sources
  assetcat config validate --strict    # Treat missing sources as errors`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and the listed sources",
	Long: `Validate the configuration and check that every listed source exists.

A missing source is only a warning, since build skips it; use --strict to
fail instead.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Display the configuration after loading the file, applying ASSETCAT_
environment overrides and filling in defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configStrict bool

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	warnings := missingSources(cfg)
	if len(warnings) == 0 {
		fmt.Fprintln(out, "✅ Configuration is valid!")
		fmt.Fprintf(out, "%d CSS and %d JS sources listed, all present.\n", len(cfg.CSS.Files), len(cfg.JS.Files))
		return nil
	}

	for _, w := range warnings {
		fmt.Fprintf(out, "⚠️  %s\n", w)
	}
	if configStrict {
		return fmt.Errorf("configuration validation failed in strict mode with %d warnings", len(warnings))
	}
	fmt.Fprintf(out, "✅ Configuration is valid with %d warnings. Use --strict to treat warnings as errors.\n", len(warnings))
	return nil
}

// missingSources describes every listed source, or source directory, that
// does not exist on disk.
func missingSources(cfg *config.Config) []string {
	var warnings []string
	check := func(dir string, files []string) {
		if _, err := os.Stat(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("source directory %s: %v", dir, err))
			return
		}
		root := os.DirFS(dir)
		for _, f := range files {
			name := path.Clean(filepath.ToSlash(f))
			if !fs.ValidPath(name) {
				warnings = append(warnings, fmt.Sprintf("source %s escapes %s", f, dir))
				continue
			}
			if _, err := fs.Stat(root, name); err != nil {
				warnings = append(warnings, fmt.Sprintf("missing source %s", filepath.Join(dir, filepath.FromSlash(name))))
			}
		}
	}
	check(cfg.Sources.CSSDir, cfg.CSS.Files)
	check(cfg.Sources.JSDir, cfg.JS.Files)
	return warnings
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

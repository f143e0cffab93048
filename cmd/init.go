package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/assetcat/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a starter .assetcat.yml",
	Long: `Write .assetcat.yml in the current directory with every default filled in.

With --discover the CSS and JS file lists are populated from the source
directories in lexical order. Concatenation order matters, so review the
lists before building.

Examples:
  assetcat init                   # Defaults with empty file lists
  assetcat init --discover        # List the sources found on disk
  assetcat init --force           # Overwrite an existing .assetcat.yml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initDiscover bool
	initForce    bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initDiscover, "discover", false, "Populate the file lists from the source directories")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.DefaultFileName); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.DefaultFileName)
	}

	cfg := config.Default()
	out := cmd.OutOrStdout()

	if initDiscover {
		css, err := config.Discover(cfg.Sources.CSSDir, ".css")
		if err != nil {
			return err
		}
		js, err := config.Discover(cfg.Sources.JSDir, ".js")
		if err != nil {
			return err
		}
		cfg.CSS.Files, cfg.JS.Files = css, js
		fmt.Fprintf(out, "🔍 Found %d CSS and %d JS sources\n", len(css), len(js))
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := cfg.Write(config.DefaultFileName); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Wrote %s\n", config.DefaultFileName)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Review the css.files and js.files order")
	fmt.Fprintln(out, "  2. assetcat build")
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conneroisu/assetcat/internal/build"
	"github.com/conneroisu/assetcat/internal/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare development and minified bundle sizes",
	Long: `Assemble both the development and the minified bundles in memory and print
their sizes side by side. Nothing is written to the output directory.

Examples:
  assetcat compare`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cmp, err := build.NewPipeline(cfg, logger).Compare(commandContext(cmd))
	if err != nil {
		return err
	}

	return report.Comparison(cmd.OutOrStdout(), cmp, report.Options{Locale: cfg.Banner.Locale})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/assetcat/internal/build"
	"github.com/conneroisu/assetcat/internal/report"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Concatenate sources into the CSS and JS bundles",
	Long: `Concatenate the configured CSS and JS sources, in order, into the output
bundles. Missing or empty sources are skipped with a warning; a missing
source directory aborts the build.

Examples:
  assetcat build                  # Development bundles with banners and headers
  assetcat build --minify         # Production bundles (also --min, -m)
  assetcat build --css-only       # Only the stylesheet bundle
  assetcat build --js-only -m     # Only the script bundle, minified
  assetcat build --format json    # Machine-readable report`,
	RunE: runBuild,
}

var (
	buildMinify  bool
	buildCSSOnly bool
	buildJSOnly  bool
	buildFormat  string
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVarP(&buildMinify, "minify", "m", false, "Minify the bundles (alias --min)")
	buildCmd.Flags().BoolVar(&buildCSSOnly, "css-only", false, "Build only the CSS bundle")
	buildCmd.Flags().BoolVar(&buildJSOnly, "js-only", false, "Build only the JS bundle")
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "text", "Report format (text, json)")
	buildCmd.MarkFlagsMutuallyExclusive("css-only", "js-only")
	buildCmd.Flags().SetNormalizeFunc(minifyAlias)
}

// minifyAlias accepts --min as a spelling of --minify.
func minifyAlias(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "min" {
		name = "minify"
	}
	return pflag.NormalizedName(name)
}

// resolveMinify lets an explicit flag override minify.default from config.
func resolveMinify(cmd *cobra.Command, flag, configDefault bool) bool {
	if f := cmd.Flags().Lookup("minify"); f != nil && f.Changed {
		return flag
	}
	return configDefault
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildFormat != "text" && buildFormat != "json" {
		return fmt.Errorf("unsupported format: %s (supported: text, json)", buildFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	mode := build.Mode{
		Minify:  resolveMinify(cmd, buildMinify, cfg.Minify.Default),
		CSSOnly: buildCSSOnly,
		JSOnly:  buildJSOnly,
	}
	if err := mode.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var opts []build.Option
	if buildFormat == "text" {
		report.Header(out, cfg.Project.Name, mode)
		opts = append(opts, build.WithProgress(report.Progress(out, cfg.Banner.Locale)))
	}

	pipeline := build.NewPipeline(cfg, logger, opts...)
	result, err := pipeline.Run(commandContext(cmd), mode)
	if err != nil {
		return err
	}

	if buildFormat == "json" {
		return report.JSON(out, result)
	}
	return report.Text(out, result, report.Options{Locale: cfg.Banner.Locale, NextSteps: true})
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/assetcat/internal/build"
	"github.com/conneroisu/assetcat/internal/report"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Zip the output directory for upload",
	Long: `Archive the output directory into a zip file that can be uploaded to the
site as a theme asset bundle.

Examples:
  assetcat package                # Zip ./dist into dist.zip
  assetcat package --build        # Build minified bundles first
  assetcat package --out theme.zip`,
	Args: cobra.NoArgs,
	RunE: runPackage,
}

var (
	packageOut   string
	packageBuild bool
)

func init() {
	rootCmd.AddCommand(packageCmd)

	packageCmd.Flags().StringVarP(&packageOut, "out", "o", "", "Archive path (default: <output dir>.zip)")
	packageCmd.Flags().BoolVar(&packageBuild, "build", false, "Run a minified build before packaging")
}

func runPackage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if packageBuild {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		r, err := build.NewPipeline(cfg, logger).Run(commandContext(cmd), build.Mode{Minify: true})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Minified build finished in %s\n", report.Elapsed(r.Duration))
	}

	zipPath := packageOut
	if zipPath == "" {
		zipPath = filepath.Clean(cfg.Output.Dir) + ".zip"
	}

	n, err := build.Package(cfg.Output.Dir, zipPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "📦 Packaged %d files into %s\n", n, zipPath)
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/assetcat/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for assetcat: version, git commit, build
time, Go version and target platform.

Examples:
  assetcat version                # Show version info
  assetcat version --short        # Show short version only
  assetcat version --format json  # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		info := version.GetBuildInfo()
		jsonInfo := map[string]interface{}{
			"version":    info.Version,
			"git_commit": info.GitCommit,
			"build_time": info.BuildTime,
			"go_version": info.GoVersion,
			"platform":   info.Platform,
			"is_release": version.IsRelease(),
			"is_dirty":   info.Dirty,
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jsonInfo)
	case "text":
		if versionShort {
			_, err := fmt.Fprintln(out, version.GetShortVersion())
			return err
		}
		_, err := fmt.Fprintf(out, "assetcat\n%s\n", version.GetBuildInfo())
		return err
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}

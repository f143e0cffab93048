package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/assetcat/internal/build"
	"github.com/conneroisu/assetcat/internal/config"
	"github.com/conneroisu/assetcat/internal/logging"
	"github.com/conneroisu/assetcat/internal/report"
	"github.com/conneroisu/assetcat/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rebuild the bundles whenever a source changes",
	Long: `Build once, then watch the CSS and JS source directories and rebuild
after every batch of changes. Bursts of saves are coalesced into one build.

Examples:
  assetcat watch                  # Rebuild development bundles on change
  assetcat watch --minify         # Rebuild production bundles on change
  assetcat watch --verbose        # List the changed files before each build`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchMinify   bool
	watchVerbose  bool
	watchDebounce time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchMinify, "minify", "m", false, "Minify the bundles (alias --min)")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Quiet period before a rebuild")
	watchCmd.Flags().SetNormalizeFunc(minifyAlias)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	mode := build.Mode{Minify: resolveMinify(cmd, watchMinify, cfg.Minify.Default)}

	pipeline := build.NewPipeline(cfg, logger)
	pipeline.AddCallback(func(r *build.Report, err error) {
		printRebuild(out, r, err)
	})

	report.Header(out, cfg.Project.Name, mode)
	if _, err := pipeline.Run(ctx, mode); err != nil {
		// A broken source tree at startup is fatal; later failures are reported
		// and the watch continues.
		return err
	}

	fileWatcher, err := newSourceWatcher(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "🔍 Watching:")
	for _, dir := range []string{cfg.Sources.CSSDir, cfg.Sources.JSDir} {
		if err := fileWatcher.AddRecursive(dir); err != nil {
			logger.Warn(ctx, err, "Source directory not watched", "path", dir)
			continue
		}
		fmt.Fprintf(out, "   - %s\n", dir)
	}

	// Requests coalesce: a batch arriving during a build queues one more build.
	rebuild := make(chan struct{}, 1)
	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		if watchVerbose {
			for _, event := range events {
				fmt.Fprintf(out, "📁 %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(out, "📁 %d file(s) changed\n", len(events))
		}
		select {
		case rebuild <- struct{}{}:
		default:
		}
		return nil
	})

	fmt.Fprintln(out, "👀 Watching for changes... (Press Ctrl+C to stop)")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := fileWatcher.Start(gctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
		<-gctx.Done()
		return fileWatcher.Stop()
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-rebuild:
				// Errors reach printRebuild through the callback.
				_, _ = pipeline.Run(gctx, mode)
			}
		}
	})

	err = g.Wait()
	fmt.Fprintln(out, "\n🛑 Stopped watching.")
	printWatchMetrics(out, pipeline.GetMetrics())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newSourceWatcher watches stylesheets and scripts, ignoring editor temp
// files and anything under the output directory.
func newSourceWatcher(cfg *config.Config, logger logging.Logger) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(watchDebounce, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.AssetFilter)
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoNodeModulesFilter)
	fw.AddFilter(outsideDir(cfg.Output.Dir))
	return fw, nil
}

// outsideDir rejects paths inside dir so that writing a bundle never
// triggers another build.
func outsideDir(dir string) watcher.FileFilter {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return true
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return true
		}
		return rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator))
	}
}

func printRebuild(w io.Writer, r *build.Report, err error) {
	stamp := time.Now().Format("15:04:05")
	if err != nil {
		fmt.Fprintf(w, "❌ [%s] Build failed: %v\n", stamp, err)
		return
	}
	var parts []string
	for _, out := range r.Outputs {
		parts = append(parts, fmt.Sprintf("%s %d/%d files", out.Kind, out.Bundle.Processed, out.Bundle.Total))
	}
	fmt.Fprintf(w, "✅ [%s] Rebuilt %s in %s\n", stamp, strings.Join(parts, ", "), report.Elapsed(r.Duration))
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "   ⚠️  %v\n", warning)
	}
	if skipped := r.Skipped(); len(skipped) > 0 {
		fmt.Fprintf(w, "   ⏭️  %d source(s) skipped\n", len(skipped))
	}
}

func printWatchMetrics(w io.Writer, m build.MetricsSnapshot) {
	if m.TotalBuilds == 0 {
		return
	}
	fmt.Fprintf(w, "Builds: %d (%d ok, %d failed, %.0f%% success), average %s\n",
		m.TotalBuilds, m.SuccessfulBuilds, m.FailedBuilds, m.SuccessRate(), report.Elapsed(m.AverageDuration))
}

// Package build drives a complete asset build: it checks the source roots,
// produces the CSS and JS bundles for the requested mode and writes them to
// the output directory.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/assetcat/internal/bundle"
	"github.com/conneroisu/assetcat/internal/config"
	asseterrors "github.com/conneroisu/assetcat/internal/errors"
	"github.com/conneroisu/assetcat/internal/logging"
)

// Mode selects which bundles are built and whether they are minified.
type Mode struct {
	Minify  bool
	CSSOnly bool
	JSOnly  bool
}

// Validate rejects contradictory modes.
func (m Mode) Validate() error {
	if m.CSSOnly && m.JSOnly {
		return asseterrors.NewValidationError(asseterrors.ErrCodeInvalidMode,
			"css-only and js-only cannot be combined")
	}
	return nil
}

// String returns the string representation of the Mode
func (m Mode) String() string {
	s := "full"
	switch {
	case m.CSSOnly:
		s = "css-only"
	case m.JSOnly:
		s = "js-only"
	}
	if m.Minify {
		s += ", minified"
	}
	return s
}

func (m Mode) buildsCSS() bool { return !m.JSOnly }
func (m Mode) buildsJS() bool  { return !m.CSSOnly }

// Output is one bundle written (or, for comparisons, only assembled).
type Output struct {
	Kind   bundle.Kind
	Path   string
	Bundle *bundle.Result
}

// Report is the outcome of one pipeline run.
type Report struct {
	Mode      Mode
	Project   string
	OutputDir string
	Outputs   []Output
	// Warnings are problems that did not stop the build, such as a missing
	// JS source root in full mode.
	Warnings []error
	// SkipCounts tallies skipped sources by error code. Nil when nothing
	// was skipped or the report comes from Compare.
	SkipCounts map[string]int
	StartedAt  time.Time
	Duration   time.Duration
}

// Output returns the output of the given kind, or nil.
func (r *Report) Output(kind bundle.Kind) *Output {
	for i := range r.Outputs {
		if r.Outputs[i].Kind == kind {
			return &r.Outputs[i]
		}
	}
	return nil
}

// Skipped returns every skipped source across all bundles.
func (r *Report) Skipped() []bundle.Source {
	var out []bundle.Source
	for _, o := range r.Outputs {
		out = append(out, o.Bundle.Skipped()...)
	}
	return out
}

// BuildCallback is called when a run completes
type BuildCallback func(report *Report, err error)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress receives one event per listed source during Run.
func WithProgress(fn func(bundle.Progress)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithClock replaces the clock used for timing and banners.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline builds the bundles described by a configuration.
type Pipeline struct {
	cfg       *config.Config
	logger    logging.Logger
	collector *asseterrors.Collector
	metrics   *BuildMetrics
	progress  func(bundle.Progress)
	now       func() time.Time
	location  *time.Location

	mu        sync.Mutex
	callbacks []BuildCallback
}

// NewPipeline creates a pipeline for cfg. cfg must already be validated.
func NewPipeline(cfg *config.Config, logger logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		logger:    logger.WithComponent("build"),
		collector: asseterrors.NewCollector(),
		metrics:   NewBuildMetrics(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	loc, err := time.LoadLocation(cfg.Banner.TimeZone)
	if err != nil {
		loc = time.Local
	}
	p.location = loc

	return p
}

// AddCallback registers fn to be called after every Run.
func (p *Pipeline) AddCallback(fn BuildCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, fn)
}

// GetMetrics returns a snapshot of the pipeline's build metrics.
func (p *Pipeline) GetMetrics() MetricsSnapshot {
	return p.metrics.GetSnapshot()
}

// skipReasons is the order in which skip causes are tallied.
var skipReasons = []string{
	asseterrors.ErrCodeSourceMissing,
	asseterrors.ErrCodeSourceEmpty,
	asseterrors.ErrCodeReadFailed,
	asseterrors.ErrCodePathTraversal,
}

// skipCounts tallies the problems collected during the last run by error
// code. It returns nil when nothing was skipped.
func (p *Pipeline) skipCounts() map[string]int {
	if !p.collector.HasErrors() {
		return nil
	}
	counts := make(map[string]int)
	for _, code := range skipReasons {
		if n := len(p.collector.ByCode(code)); n > 0 {
			counts[code] = n
		}
	}
	return counts
}

// CheckDirectories verifies the source roots the mode needs. A missing CSS
// root is fatal whenever CSS is built. A missing JS root is fatal in js-only
// mode; otherwise it is returned as a warning and JS is left out.
func (p *Pipeline) CheckDirectories(mode Mode) (kinds []bundle.Kind, warnings []error, err error) {
	if err := mode.Validate(); err != nil {
		return nil, nil, err
	}

	if mode.buildsCSS() {
		if err := checkDir(p.cfg.Sources.CSSDir); err != nil {
			return nil, nil, err
		}
		kinds = append(kinds, bundle.KindCSS)
	}

	if mode.buildsJS() {
		switch err := checkDir(p.cfg.Sources.JSDir); {
		case err == nil:
			kinds = append(kinds, bundle.KindJS)
		case mode.JSOnly:
			return nil, nil, err
		default:
			warnings = append(warnings, err)
		}
	}

	return kinds, warnings, nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return asseterrors.ErrSourceDirMissing(dir)
		}
		return asseterrors.NewIOError(asseterrors.ErrCodeReadFailed, "cannot access source directory", err).WithPath(dir)
	}
	if !info.IsDir() {
		return asseterrors.NewIOError(asseterrors.ErrCodeSourceDirMissing, "source path is not a directory", nil).WithPath(dir)
	}
	return nil
}

// Run builds and writes the bundles for mode.
func (p *Pipeline) Run(ctx context.Context, mode Mode) (*Report, error) {
	report, err := p.run(ctx, mode)

	p.metrics.RecordBuild(report, err)

	p.mu.Lock()
	callbacks := append([]BuildCallback(nil), p.callbacks...)
	p.mu.Unlock()
	for _, cb := range callbacks {
		cb(report, err)
	}

	return report, err
}

func (p *Pipeline) run(ctx context.Context, mode Mode) (*Report, error) {
	start := p.now()
	log := p.logger.With("mode", mode.String())

	kinds, warnings, err := p.CheckDirectories(mode)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn(ctx, w, "JS source directory missing, skipping JS bundle")
	}

	p.collector.Clear()
	bundler := bundle.NewBundler(p.logger, bundle.WithClock(p.now), bundle.WithCollector(p.collector))

	report := &Report{
		Mode:      mode,
		Project:   p.cfg.Project.Name,
		OutputDir: p.cfg.Output.Dir,
		Warnings:  warnings,
		StartedAt: start,
	}

	for _, kind := range kinds {
		spec := p.spec(kind, mode)
		spec.Progress = p.progress

		res, err := bundler.Bundle(ctx, spec)
		if err != nil {
			return nil, err
		}

		out := p.outputPath(kind)
		if err := writeFile(out, []byte(res.Content)); err != nil {
			return nil, err
		}
		log.Info(ctx, "Bundle written", "kind", kind.String(), "path", out, "bytes", res.Size)

		report.Outputs = append(report.Outputs, Output{Kind: kind, Path: out, Bundle: res})
	}

	report.SkipCounts = p.skipCounts()
	if report.SkipCounts != nil {
		log.Warn(ctx, nil, "Sources skipped", "reasons", report.SkipCounts)
	}

	report.Duration = p.now().Sub(start)
	return report, nil
}

// Comparison holds the development and minified builds of the same sources.
type Comparison struct {
	Development *Report
	Production  *Report
}

// Compare assembles both the development and minified bundles in memory.
// Nothing is written.
func (p *Pipeline) Compare(ctx context.Context) (*Comparison, error) {
	kinds, warnings, err := p.CheckDirectories(Mode{})
	if err != nil {
		return nil, err
	}

	bundler := bundle.NewBundler(p.logger, bundle.WithClock(p.now))
	cmp := &Comparison{}

	assemble := func(ctx context.Context, mode Mode) (*Report, error) {
		start := p.now()
		report := &Report{
			Mode:      mode,
			Project:   p.cfg.Project.Name,
			OutputDir: p.cfg.Output.Dir,
			Warnings:  warnings,
			StartedAt: start,
		}
		for _, kind := range kinds {
			res, err := bundler.Bundle(ctx, p.spec(kind, mode))
			if err != nil {
				return nil, err
			}
			report.Outputs = append(report.Outputs, Output{Kind: kind, Path: p.outputPath(kind), Bundle: res})
		}
		report.Duration = p.now().Sub(start)
		return report, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cmp.Development, err = assemble(gctx, Mode{})
		return err
	})
	g.Go(func() (err error) {
		cmp.Production, err = assemble(gctx, Mode{Minify: true})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return cmp, nil
}

func (p *Pipeline) spec(kind bundle.Kind, mode Mode) bundle.Spec {
	cfg := p.cfg
	spec := bundle.Spec{
		Kind:       kind,
		Minify:     mode.Minify,
		KeepBanner: cfg.Minify.KeepBanner,
		Banner: bundle.BannerOptions{
			Project:    cfg.Project.Name,
			TimeFormat: cfg.Banner.TimeFormat,
			Location:   p.location,
		},
	}

	switch kind {
	case bundle.KindCSS:
		spec.Source = os.DirFS(cfg.Sources.CSSDir)
		spec.SourceDir = cfg.Sources.CSSDir
		spec.Files = cfg.CSS.Files
		spec.OutputName = filepath.Base(cfg.Output.CSSFile)
	case bundle.KindJS:
		spec.Source = os.DirFS(cfg.Sources.JSDir)
		spec.SourceDir = cfg.Sources.JSDir
		spec.Files = cfg.JS.Files
		spec.OutputName = filepath.Base(cfg.Output.JSFile)
		spec.Wrapper = bundle.NewWrapper(cfg.Wrapper, cfg.Project.Name)
	}

	return spec
}

func (p *Pipeline) outputPath(kind bundle.Kind) string {
	if kind == bundle.KindJS {
		return p.cfg.JSOutputPath()
	}
	return p.cfg.CSSOutputPath()
}

// writeFile replaces path atomically so a concurrent reader, such as a dev
// server, never observes a half-written bundle.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return asseterrors.ErrWriteFailed(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return asseterrors.ErrWriteFailed(path, err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return asseterrors.ErrWriteFailed(path, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return asseterrors.ErrWriteFailed(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return asseterrors.ErrWriteFailed(path, fmt.Errorf("rename: %w", err))
	}
	return nil
}

// Package bundle concatenates ordered CSS and JS sources into a single
// bundle with a generated banner, per-source section headers and, for JS,
// an optional namespacing closure.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	asseterrors "github.com/conneroisu/assetcat/internal/errors"
	"github.com/conneroisu/assetcat/internal/logging"
	"github.com/conneroisu/assetcat/internal/minify"
)

// Spec describes one bundle to produce.
type Spec struct {
	Kind Kind
	// Source is the source root; Files are resolved inside it.
	Source    fs.FS
	SourceDir string
	Files     []string
	// OutputName is the bundle's file name as shown in the banner.
	OutputName string
	Minify     bool
	KeepBanner bool
	// Wrapper is only honoured for JS bundles. Nil means no wrapper.
	Wrapper *Wrapper
	// Banner supplies the project name, clock format and location. The
	// remaining banner fields are filled in by the bundler.
	Banner BannerOptions
	// Progress, when set, is called once per listed source.
	Progress func(Progress)
}

// Progress reports the outcome of one listed source.
type Progress struct {
	Kind  Kind
	Index int
	Total int
	Path  string
	Lines int
	// Err is set when the source was skipped.
	Err error
}

// Source is the outcome for one listed file.
type Source struct {
	Path  string
	Lines int
	Size  int
	Err   error
}

// Skipped reports whether the source was left out of the bundle.
func (s Source) Skipped() bool { return s.Err != nil }

// Result is a finished bundle and its statistics. Lines is the sum of the
// line counts of the processed sources, not of the assembled bundle.
type Result struct {
	Kind      Kind
	Content   string
	Sources   []Source
	Total     int
	Processed int
	Lines     int
	// OriginalSize counts the banner, wrapper and raw source bytes.
	OriginalSize int
	Size         int
	GzipSize     int
	BrotliSize   int
	Minified     bool
	Duration     time.Duration
}

// Skipped returns the sources that were left out, in list order.
func (r *Result) Skipped() []Source {
	var out []Source
	for _, s := range r.Sources {
		if s.Skipped() {
			out = append(out, s)
		}
	}
	return out
}

// Reduction is the percentage saved relative to OriginalSize.
func (r *Result) Reduction() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return (1 - float64(r.Size)/float64(r.OriginalSize)) * 100
}

// Option configures a Bundler.
type Option func(*Bundler)

// WithClock replaces the clock used for banner timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bundler) { b.now = now }
}

// WithCollector records every skipped source in c.
func WithCollector(c *asseterrors.Collector) Option {
	return func(b *Bundler) { b.collector = c }
}

// Bundler builds bundles from Specs.
type Bundler struct {
	logger    logging.Logger
	now       func() time.Time
	collector *asseterrors.Collector
}

// NewBundler creates a bundler logging through logger.
func NewBundler(logger logging.Logger, opts ...Option) *Bundler {
	b := &Bundler{
		logger: logger.WithComponent("bundle"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bundle reads every listed source in order and assembles the bundle.
// Missing, empty and unreadable sources are skipped with a warning and the
// remaining sources keep their relative order.
func (b *Bundler) Bundle(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Source == nil {
		return nil, asseterrors.NewInternalError(asseterrors.ErrCodeInternal, "bundle spec has no source root", nil)
	}
	start := b.now()
	op := b.logger.StartOperation("bundle_" + strings.ToLower(spec.Kind.String()))

	result := &Result{
		Kind:     spec.Kind,
		Total:    len(spec.Files),
		Sources:  make([]Source, 0, len(spec.Files)),
		Minified: spec.Minify,
	}

	var body strings.Builder
	rawSize := 0

	for i, file := range spec.Files {
		if err := ctx.Err(); err != nil {
			canceled := asseterrors.NewBuildError(asseterrors.ErrCodeCanceled,
				fmt.Sprintf("%s bundle canceled", spec.Kind), err)
			op.EndWithError(ctx, canceled)
			return nil, canceled
		}

		src := b.read(spec.Source, file)
		if src.Skipped() {
			// Paths escaping the source root are configuration mistakes,
			// not absent files.
			if asseterrors.IsRecoverable(src.Err) {
				b.logger.Warn(ctx, src.Err, "Skipping source", "kind", spec.Kind.String(), "path", file)
			} else {
				b.logger.Error(ctx, src.Err, "Rejected source", "kind", spec.Kind.String(), "path", file)
			}
			if b.collector != nil {
				b.collector.Add(src.Err)
			}
		} else {
			b.logger.Debug(ctx, "Added source", "kind", spec.Kind.String(), "path", file, "lines", src.Lines)
			result.Processed++
			result.Lines += src.Lines
			rawSize += src.Size
		}
		result.Sources = append(result.Sources, src.Source)

		if spec.Progress != nil {
			spec.Progress(Progress{
				Kind:  spec.Kind,
				Index: i + 1,
				Total: len(spec.Files),
				Path:  file,
				Lines: src.Lines,
				Err:   src.Err,
			})
		}

		if src.Skipped() {
			continue
		}
		body.WriteString(SectionHeader(file, spec.Minify))
		body.WriteString(src.content)
		body.WriteString("\n\n")
	}

	opts := spec.Banner
	opts.OutputName = spec.OutputName
	opts.SourceDir = spec.SourceDir
	opts.FileCount = len(spec.Files)
	opts.Minified = spec.Minify
	opts.Time = start
	banner := Banner(spec.Kind, opts)

	var wrapper *Wrapper
	if spec.Kind == KindJS {
		wrapper = spec.Wrapper
	}
	open, closing := wrapper.Open(), wrapper.Close()

	content := banner + open + body.String() + closing
	if spec.Minify {
		fn := minify.CSS
		if spec.Kind == KindJS {
			fn = minify.JS
		}
		if spec.KeepBanner {
			content = banner + fn(open+body.String()+closing)
		} else {
			content = fn(content)
		}
	}

	gz, br, err := compressedSizes(content)
	if err != nil {
		internal := asseterrors.NewInternalError(asseterrors.ErrCodeInternal, "failed to measure compressed size", err)
		op.EndWithError(ctx, internal)
		return nil, internal
	}

	result.Content = content
	result.OriginalSize = len(banner) + len(open) + len(closing) + rawSize
	result.Size = len(content)
	result.GzipSize = gz
	result.BrotliSize = br
	result.Duration = b.now().Sub(start)
	op.End(ctx)

	b.logger.Info(ctx, "Bundle assembled",
		"kind", spec.Kind.String(),
		"processed", result.Processed,
		"total", result.Total,
		"size", result.Size)

	return result, nil
}

type readSource struct {
	Source
	content string
}

func (b *Bundler) read(fsys fs.FS, file string) readSource {
	name := path.Clean(filepath.ToSlash(file))
	src := readSource{Source: Source{Path: file}}

	if !fs.ValidPath(name) {
		src.Err = asseterrors.ErrPathTraversal(file)
		return src
	}

	data, err := fs.ReadFile(fsys, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		src.Err = asseterrors.ErrSourceMissing(file)
	case err != nil:
		src.Err = asseterrors.ErrReadFailed(file, err)
	case len(data) == 0:
		src.Err = asseterrors.ErrSourceEmpty(file)
	default:
		src.content = string(data)
		src.Size = len(data)
		src.Lines = strings.Count(src.content, "\n") + 1
	}
	return src
}

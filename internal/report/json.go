package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/conneroisu/assetcat/internal/build"
)

type jsonSource struct {
	Path    string `json:"path"`
	Lines   int    `json:"lines,omitempty"`
	Bytes   int    `json:"bytes,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type jsonBundle struct {
	Kind         string       `json:"kind"`
	Path         string       `json:"path"`
	Processed    int          `json:"processed"`
	Total        int          `json:"total"`
	Lines        int          `json:"lines"`
	Bytes        int          `json:"bytes"`
	OriginalSize int          `json:"original_bytes"`
	GzipSize     int          `json:"gzip_bytes"`
	BrotliSize   int          `json:"brotli_bytes"`
	Minified     bool         `json:"minified"`
	Reduction    float64      `json:"reduction_percent,omitempty"`
	Sources      []jsonSource `json:"sources"`
}

type jsonReport struct {
	Project    string         `json:"project"`
	Mode       string         `json:"mode"`
	OutputDir  string         `json:"output_dir"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Warnings   []string       `json:"warnings,omitempty"`
	SkipCounts map[string]int `json:"skip_reasons,omitempty"`
	Bundles    []jsonBundle   `json:"bundles"`
}

// JSON writes a machine-readable report.
func JSON(w io.Writer, r *build.Report) error {
	out := jsonReport{
		Project:    r.Project,
		Mode:       r.Mode.String(),
		OutputDir:  r.OutputDir,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		SkipCounts: r.SkipCounts,
		Bundles:    make([]jsonBundle, 0, len(r.Outputs)),
	}
	for _, warn := range r.Warnings {
		out.Warnings = append(out.Warnings, warn.Error())
	}

	for _, o := range r.Outputs {
		res := o.Bundle
		jb := jsonBundle{
			Kind:         o.Kind.String(),
			Path:         o.Path,
			Processed:    res.Processed,
			Total:        res.Total,
			Lines:        res.Lines,
			Bytes:        res.Size,
			OriginalSize: res.OriginalSize,
			GzipSize:     res.GzipSize,
			BrotliSize:   res.BrotliSize,
			Minified:     res.Minified,
			Sources:      make([]jsonSource, 0, len(res.Sources)),
		}
		if res.Minified {
			jb.Reduction = res.Reduction()
		}
		for _, s := range res.Sources {
			js := jsonSource{Path: s.Path, Lines: s.Lines, Bytes: s.Size}
			if s.Err != nil {
				js.Skipped = true
				js.Reason = s.Err.Error()
			}
			jb.Sources = append(jb.Sources, js)
		}
		out.Bundles = append(out.Bundles, jb)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

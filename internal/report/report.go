// Package report renders build results for people (Text, Comparison,
// Progress) and for tools (JSON).
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/conneroisu/assetcat/internal/build"
	"github.com/conneroisu/assetcat/internal/bundle"
	asseterrors "github.com/conneroisu/assetcat/internal/errors"
)

const boxWidth = 60

// Options controls the human-readable report.
type Options struct {
	// Locale is a BCP 47 tag used for digit grouping and decimals.
	Locale string
	// NextSteps appends the deployment checklist.
	NextSteps bool
}

func printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

func box(w io.Writer, title string) {
	line := strings.Repeat("═", boxWidth)
	pad := boxWidth - 2 - len([]rune(title))
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(w, "╔%s╗\n", line)
	fmt.Fprintf(w, "║  %s%s║\n", title, strings.Repeat(" ", pad))
	fmt.Fprintf(w, "╚%s╝\n", line)
}

// Header prints the banner shown before a build starts.
func Header(w io.Writer, project string, mode build.Mode) {
	box(w, strings.ToUpper(project)+" - BUILD SYSTEM")
	fmt.Fprintf(w, "Mode: %s\n", mode)
}

// kb formats a byte count as kilobytes with two decimals.
func kb(p *message.Printer, n int) string {
	return p.Sprintf("%.2f KB", float64(n)/1024)
}

func kindLabel(k bundle.Kind) string {
	if k == bundle.KindJS {
		return "🔧 JavaScript"
	}
	return "📝 CSS"
}

// Text writes the human-readable summary of a finished build.
func Text(w io.Writer, r *build.Report, opts Options) error {
	p := printer(opts.Locale)
	var b strings.Builder

	b.WriteString("\n")
	box(&b, "✨ BUILD COMPLETED SUCCESSFULLY")

	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "\n⚠️  %v\n", warn)
	}

	b.WriteString("\n📊 Build statistics:\n")
	for _, out := range r.Outputs {
		res := out.Bundle
		fmt.Fprintf(&b, "\n  %s (%s):\n", kindLabel(out.Kind), filepath.Base(out.Path))
		p.Fprintf(&b, "     ├─ Files processed: %d/%d\n", res.Processed, res.Total)
		p.Fprintf(&b, "     ├─ Total lines: %d\n", res.Lines)
		if res.Minified {
			fmt.Fprintf(&b, "     ├─ Original size: %s\n", kb(p, res.OriginalSize))
			fmt.Fprintf(&b, "     ├─ Minified size: %s\n", kb(p, res.Size))
			p.Fprintf(&b, "     ├─ Reduction: %.1f%%\n", res.Reduction())
		} else {
			fmt.Fprintf(&b, "     ├─ Size: %s\n", kb(p, res.Size))
		}
		fmt.Fprintf(&b, "     ├─ Compressed: %s gzip, %s brotli\n",
			humanize.Bytes(uint64(res.GzipSize)), humanize.Bytes(uint64(res.BrotliSize)))
		fmt.Fprintf(&b, "     └─ Location: %s\n", out.Path)
	}

	if skipped := r.Skipped(); len(skipped) > 0 {
		b.WriteString("\n⏭️  Skipped sources:\n")
		for _, s := range skipped {
			fmt.Fprintf(&b, "   - %s: %v\n", s.Path, s.Err)
		}
		if reasons := skipSummary(p, r.SkipCounts); reasons != "" {
			fmt.Fprintf(&b, "   (%s)\n", reasons)
		}
	}

	p.Fprintf(&b, "\n  ⏱️  Build time: %.2fs\n", r.Duration.Seconds())

	if opts.NextSteps {
		writeNextSteps(&b, r, p)
	}

	if !r.Mode.Minify {
		b.WriteString("💡 Tip: run 'assetcat build --minify' for production bundles\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var skipLabels = []struct {
	code  string
	label string
}{
	{asseterrors.ErrCodeSourceMissing, "missing"},
	{asseterrors.ErrCodeSourceEmpty, "empty"},
	{asseterrors.ErrCodeReadFailed, "unreadable"},
	{asseterrors.ErrCodePathTraversal, "outside source root"},
}

// skipSummary renders skip counts as "2 missing, 1 empty".
func skipSummary(p *message.Printer, counts map[string]int) string {
	var parts []string
	for _, l := range skipLabels {
		if n := counts[l.code]; n > 0 {
			parts = append(parts, p.Sprintf("%d %s", n, l.label))
		}
	}
	return strings.Join(parts, ", ")
}

func writeNextSteps(b *strings.Builder, r *build.Report, p *message.Printer) {
	dir := filepath.Base(r.OutputDir)

	b.WriteString("\n🚀 Next steps:\n\n")
	b.WriteString("  1. Review the generated files\n")
	fmt.Fprintf(b, "  2. Run: assetcat package --out %s.zip\n", strings.ToLower(dir))
	b.WriteString("  3. Upload the archive to the portal\n")
	b.WriteString("  4. Clear the Drupal cache\n\n")

	b.WriteString("📦 Files ready for deployment:\n")
	fmt.Fprintf(b, "   └─ %s/\n", dir)
	for i, out := range r.Outputs {
		branch := "├─"
		if i == len(r.Outputs)-1 {
			branch = "└─"
		}
		rel, err := filepath.Rel(r.OutputDir, out.Path)
		if err != nil {
			rel = out.Path
		}
		fmt.Fprintf(b, "      %s %s (%s)\n", branch, filepath.ToSlash(rel), kb(p, out.Bundle.Size))
	}
	b.WriteString("\n")
}

// Elapsed formats a duration the way the report does.
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

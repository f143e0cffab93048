package report

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/conneroisu/assetcat/internal/build"
)

// Comparison writes a development versus production size table.
func Comparison(w io.Writer, c *build.Comparison, opts Options) error {
	p := printer(opts.Locale)

	for _, warn := range c.Development.Warnings {
		fmt.Fprintf(w, "⚠️  %v\n", warn)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUNDLE\tDEVELOPMENT\tPRODUCTION\tREDUCTION\tGZIP\tBROTLI")
	fmt.Fprintln(tw, "------\t-----------\t----------\t---------\t----\t------")

	for _, dev := range c.Development.Outputs {
		prod := c.Production.Output(dev.Kind)
		if prod == nil {
			continue
		}
		reduction := 0.0
		if dev.Bundle.Size > 0 {
			reduction = (1 - float64(prod.Bundle.Size)/float64(dev.Bundle.Size)) * 100
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			filepath.Base(dev.Path),
			kb(p, dev.Bundle.Size),
			kb(p, prod.Bundle.Size),
			p.Sprintf("%.1f%%", reduction),
			humanize.Bytes(uint64(prod.Bundle.GzipSize)),
			humanize.Bytes(uint64(prod.Bundle.BrotliSize)),
		)
	}

	return tw.Flush()
}

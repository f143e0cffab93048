package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/conneroisu/assetcat/internal/bundle"
)

// Progress returns a callback printing one line per listed source, plus a
// section heading before the first source of each bundle.
func Progress(w io.Writer, locale string) func(bundle.Progress) {
	p := printer(locale)
	var mu sync.Mutex

	return func(e bundle.Progress) {
		mu.Lock()
		defer mu.Unlock()

		if e.Index == 1 {
			if e.Kind == bundle.KindJS {
				fmt.Fprint(w, "\n🔧 Processing JavaScript files...\n\n")
			} else {
				fmt.Fprint(w, "\n📝 Processing CSS files...\n\n")
			}
		}

		width := len(fmt.Sprint(e.Total))
		fmt.Fprintf(w, "📄 %-3s [%0*d/%d] %s\n", e.Kind, width, e.Index, e.Total, e.Path)
		if e.Err != nil {
			fmt.Fprint(w, "   ⏭️  Skipped\n")
			return
		}
		p.Fprintf(w, "   ✅ %d lines\n", e.Lines)
	}
}

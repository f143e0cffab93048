//go:build property
// +build property

package bundle

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestBundleOrderingProperties tests ordering and skip properties
func TestBundleOrderingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// present[i] decides whether the i-th listed file exists.
	layout := func(present []bool) (fstest.MapFS, []string) {
		fsys := fstest.MapFS{}
		files := make([]string, len(present))
		for i, ok := range present {
			files[i] = fmt.Sprintf("part%03d.css", i)
			if ok {
				fsys[files[i]] = &fstest.MapFile{Data: []byte(fmt.Sprintf(".marker-%03d { order: %d; }", i, i))}
			}
		}
		return fsys, files
	}

	// Property: Present sources appear once each, in list order
	properties.Property("present sources keep list order", prop.ForAll(
		func(present []bool, minified bool) bool {
			fsys, files := layout(present)
			spec := cssSpec(fsys, files...)
			spec.Minify = minified

			res, err := newTestBundler().Bundle(context.Background(), spec)
			if err != nil {
				return false
			}

			last := -1
			processed := 0
			for i, ok := range present {
				marker := fmt.Sprintf(".marker-%03d", i)
				idx := strings.Index(res.Content, marker)
				if !ok {
					if idx >= 0 {
						return false
					}
					continue
				}
				processed++
				if idx <= last || strings.Count(res.Content, marker) != 1 {
					return false
				}
				last = idx
			}
			return res.Processed == processed && res.Total == len(present)
		},
		gen.SliceOf(gen.Bool()),
		gen.Bool(),
	))

	// Property: Skipped sources are reported in list order
	properties.Property("skipped sources are reported in order", prop.ForAll(
		func(present []bool) bool {
			fsys, files := layout(present)
			res, err := newTestBundler().Bundle(context.Background(), cssSpec(fsys, files...))
			if err != nil {
				return false
			}

			var want []string
			for i, ok := range present {
				if !ok {
					want = append(want, files[i])
				}
			}
			skipped := res.Skipped()
			if len(skipped) != len(want) {
				return false
			}
			for i := range want {
				if skipped[i].Path != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

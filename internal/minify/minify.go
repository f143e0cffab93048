// Package minify strips comments and redundant whitespace from CSS and JS
// bundles with chained regular-expression passes.
//
// It is not a parser. Before the passes run, a small scanner drops comments
// and lifts string literals out of the text (plus template and
// regular-expression literals in JS, and unquoted url() arguments in CSS), so
// the passes never see a "//" inside a URL or whitespace inside a string.
//
// Limitations: statements separated only by newlines are joined, so sources
// must terminate statements with semicolons; a regular-expression literal
// following ")" is treated as division. A space between two "+" or two "-"
// signs is kept so that "a - -b" does not become a decrement.
package minify

import (
	"regexp"
	"strings"
)

type pass struct {
	re   *regexp.Regexp
	repl string
}

func (p pass) apply(s string) string {
	return p.re.ReplaceAllString(s, p.repl)
}

var whitespace = pass{regexp.MustCompile(`\s+`), " "}

var cssPasses = []pass{
	whitespace,
	{regexp.MustCompile(`\s*([{}:;,>+~)])\s*`), "$1"},
	// Space before "(" is kept: "and (max-width:...)" needs it.
	{regexp.MustCompile(`\(\s+`), "("},
	{regexp.MustCompile(`;}`), "}"},
}

// signGap marks the space between two equal signs. It is not matched by \s,
// so the operator pass leaves it alone.
const signGap = "\x02"

var jsPasses = []pass{
	whitespace,
	{regexp.MustCompile(`\+ \+`), "+" + signGap + "+"},
	{regexp.MustCompile(`\+ \+`), "+" + signGap + "+"},
	{regexp.MustCompile(`- -`), "-" + signGap + "-"},
	{regexp.MustCompile(`- -`), "-" + signGap + "-"},
	{regexp.MustCompile(`\s*([{}:;,()\[\]<>!=+\-*/%&|?.])\s*`), "$1"},
	{regexp.MustCompile(`}([a-zA-Z])`), "} $1"},
	{regexp.MustCompile(`([a-zA-Z]){`), "$1 {"},
	{regexp.MustCompile(`\breturn\b([^;\s])`), "return $1"},
	{regexp.MustCompile(`\bvar\b`), " var "},
	{regexp.MustCompile(`\bconst\b`), " const "},
	{regexp.MustCompile(`\blet\b`), " let "},
	{regexp.MustCompile(`\bfunction\b`), " function "},
	{regexp.MustCompile(`\bif\b`), " if "},
	{regexp.MustCompile(`\belse\b`), " else "},
	{regexp.MustCompile(`\bfor\b`), " for "},
	{regexp.MustCompile(`\bwhile\b`), " while "},
	whitespace,
}

// CSS minifies a stylesheet.
func CSS(src string) string {
	masked, lits := mask(src, false)
	for _, p := range cssPasses {
		masked = p.apply(masked)
	}
	return restore(strings.TrimSpace(masked), lits)
}

// JS minifies a script.
func JS(src string) string {
	masked, lits := mask(src, true)
	for _, p := range jsPasses {
		masked = p.apply(masked)
	}
	masked = strings.ReplaceAll(masked, signGap, " ")
	return restore(strings.TrimSpace(masked), lits)
}

// Func returns the minifier for a file extension, or nil when there is none.
func Func(ext string) func(string) string {
	switch strings.ToLower(ext) {
	case ".css":
		return CSS
	case ".js", ".mjs":
		return JS
	default:
		return nil
	}
}

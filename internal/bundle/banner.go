package bundle

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// separatorWidth matches the 80-column banners the bundles have always had.
const separatorWidth = 76

var (
	separator = strings.Repeat("=", separatorWidth)
	upper     = cases.Upper(language.Und)
)

// Kind identifies the asset type of a bundle.
type Kind int

const (
	KindCSS Kind = iota
	KindJS
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindCSS:
		return "CSS"
	case KindJS:
		return "JS"
	default:
		return "unknown"
	}
}

// BannerOptions carries what the generated header needs to say.
type BannerOptions struct {
	Project    string
	OutputName string
	SourceDir  string
	FileCount  int
	Minified   bool
	Time       time.Time
	TimeFormat string
	Location   *time.Location
}

func (o BannerOptions) timestamp() string {
	t := o.Time
	if t.IsZero() {
		t = time.Now()
	}
	if o.Location != nil {
		t = t.In(o.Location)
	}
	layout := o.TimeFormat
	if layout == "" {
		layout = "02/01/2006 15:04"
	}
	return t.Format(layout)
}

// Banner builds the comment block prefixed to a bundle. Minified bundles get
// a single line.
func Banner(kind Kind, o BannerOptions) string {
	project := upper.String(o.Project)
	now := o.timestamp()

	if o.Minified {
		return fmt.Sprintf("/* %s %s - Generated: %s - DO NOT EDIT */\n", project, kind, now)
	}

	var b strings.Builder
	b.WriteString("/**\n")
	fmt.Fprintf(&b, " * %s\n", separator)
	fmt.Fprintf(&b, " * %s - %s\n", project, upper.String(o.OutputName))
	fmt.Fprintf(&b, " * Auto-generated: %s\n", now)
	b.WriteString(" *\n")
	b.WriteString(" * IMPORTANT: DO NOT EDIT THIS FILE DIRECTLY\n")
	b.WriteString(" *\n")
	b.WriteString(" * This file is generated from modular source files.\n")
	b.WriteString(" * To make changes:\n")
	fmt.Fprintf(&b, " *   1. Edit the files in /%s/\n", filepath.ToSlash(filepath.Base(o.SourceDir)))
	b.WriteString(" *   2. Run: assetcat build\n")
	b.WriteString(" *   3. Package and upload the template\n")
	b.WriteString(" *\n")
	fmt.Fprintf(&b, " * Concatenated files: %d\n", o.FileCount)
	b.WriteString(" * Mode: DEVELOPMENT\n")
	fmt.Fprintf(&b, " * %s\n", separator)
	b.WriteString(" */\n\n")
	return b.String()
}

// SectionHeader separates one source from the next inside a bundle. Minified
// bundles carry no section headers.
func SectionHeader(path string, minified bool) string {
	if minified {
		return ""
	}
	return fmt.Sprintf("\n/* %s\n   %s\n   %s */\n\n", separator, upper.String(filepath.ToSlash(path)), separator)
}

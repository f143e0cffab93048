package bundle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conneroisu/assetcat/internal/config"
)

// Wrapper encloses the JS bundle in a closure that declares the site
// namespace and registers a Drupal behavior initialising the listed modules.
type Wrapper struct {
	project string
	root    string
	cfg     config.WrapperConfig
}

// NewWrapper returns nil when the wrapper is disabled.
func NewWrapper(cfg config.WrapperConfig, project string) *Wrapper {
	if !cfg.Enabled {
		return nil
	}
	return &Wrapper{
		project: project,
		root:    strings.SplitN(cfg.Namespace, ".", 2)[0],
		cfg:     cfg,
	}
}

// Open is emitted after the banner and before the first source.
func (w *Wrapper) Open() string {
	if w == nil {
		return ""
	}
	ns := w.cfg.Namespace

	var b strings.Builder
	b.WriteString("/**\n")
	fmt.Fprintf(&b, " * Wrapper for %s - Namespace: %s\n", w.root, ns)
	b.WriteString(" */\n")
	fmt.Fprintf(&b, "(function (%s) {\n", strings.Join(w.cfg.Globals, ", "))
	b.WriteString("  'use strict';\n\n")
	b.WriteString("  // Global namespace\n")
	fmt.Fprintf(&b, "  %s = %s || {};\n\n", ns, ns)
	return b.String()
}

// Close is emitted after the last source.
func (w *Wrapper) Close() string {
	if w == nil {
		return ""
	}
	ns := w.cfg.Namespace

	var b strings.Builder
	b.WriteString("\n  // Global initialisation\n")
	fmt.Fprintf(&b, "  %s.behaviors.%s = {\n", w.root, w.cfg.Behavior)
	b.WriteString("    attach: function (context, settings) {\n")
	fmt.Fprintf(&b, "      once('%s', 'body', context).forEach(function () {\n", w.cfg.OnceID)
	fmt.Fprintf(&b, "        console.log(%s);\n", strconv.Quote(w.project+" initialized"))
	for _, m := range w.cfg.InitModules {
		fmt.Fprintf(&b, "        if (%s.%s) {\n", ns, m)
		fmt.Fprintf(&b, "          %s.%s.init();\n", ns, m)
		b.WriteString("        }\n")
	}
	b.WriteString("      });\n")
	b.WriteString("    }\n")
	b.WriteString("  };\n\n")
	fmt.Fprintf(&b, "})(%s);\n", strings.Join(w.cfg.Globals, ", "))
	return b.String()
}

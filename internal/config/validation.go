package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	asseterrors "github.com/conneroisu/assetcat/internal/errors"
	"golang.org/x/text/language"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	namespacePattern  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)
)

// Validate checks every section and returns all problems joined together.
func Validate(config *Config) error {
	var errs []error

	errs = append(errs, validateSources(&config.Sources)...)
	errs = append(errs, validateOutput(&config.Output)...)
	errs = append(errs, validateFiles("css.files", config.CSS.Files)...)
	errs = append(errs, validateFiles("js.files", config.JS.Files)...)
	errs = append(errs, validateBanner(&config.Banner)...)
	if config.Wrapper.Enabled {
		errs = append(errs, validateWrapper(&config.Wrapper)...)
	}

	return errors.Join(errs...)
}

func validateSources(config *SourcesConfig) []error {
	var errs []error
	if strings.TrimSpace(config.CSSDir) == "" {
		errs = append(errs, asseterrors.ErrConfigInvalid("sources.css_dir", "must not be empty"))
	}
	if strings.TrimSpace(config.JSDir) == "" {
		errs = append(errs, asseterrors.ErrConfigInvalid("sources.js_dir", "must not be empty"))
	}
	return errs
}

func validateOutput(config *OutputConfig) []error {
	var errs []error
	if strings.TrimSpace(config.Dir) == "" {
		errs = append(errs, asseterrors.ErrConfigInvalid("output.dir", "must not be empty"))
	}
	for field, p := range map[string]string{"output.css_file": config.CSSFile, "output.js_file": config.JSFile} {
		if err := validateRelativePath(p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	if config.CSSFile != "" && path.Clean(config.CSSFile) == path.Clean(config.JSFile) {
		errs = append(errs, asseterrors.ErrConfigInvalid("output", "css_file and js_file point to the same file"))
	}
	return errs
}

func validateFiles(field string, files []string) []error {
	var errs []error
	seen := make(map[string]int, len(files))
	for i, f := range files {
		if err := validateRelativePath(f); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", field, i, err))
			continue
		}
		key := path.Clean(filepath.ToSlash(f))
		if prev, ok := seen[key]; ok {
			errs = append(errs, asseterrors.ErrConfigInvalid(field,
				fmt.Sprintf("%q listed twice (entries %d and %d)", f, prev, i)))
			continue
		}
		seen[key] = i
	}
	return errs
}

// validateRelativePath accepts only paths that stay inside their root.
func validateRelativePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return asseterrors.NewConfigError(asseterrors.ErrCodeConfigInvalid, "empty path")
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return asseterrors.NewConfigError(asseterrors.ErrCodeConfigInvalid, "path must be relative").WithPath(p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return asseterrors.ErrPathTraversal(p)
	}
	return nil
}

func validateBanner(config *BannerConfig) []error {
	var errs []error
	if strings.TrimSpace(config.TimeFormat) == "" {
		errs = append(errs, asseterrors.ErrConfigInvalid("banner.time_format", "must not be empty"))
	}
	if _, err := time.LoadLocation(config.TimeZone); err != nil {
		errs = append(errs, asseterrors.ErrConfigInvalid("banner.time_zone",
			fmt.Sprintf("unknown time zone %q", config.TimeZone)))
	}
	if _, err := language.Parse(config.Locale); err != nil {
		errs = append(errs, asseterrors.ErrConfigInvalid("banner.locale",
			fmt.Sprintf("unparsable locale %q", config.Locale)))
	}
	return errs
}

func validateWrapper(config *WrapperConfig) []error {
	var errs []error
	if !namespacePattern.MatchString(config.Namespace) {
		errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.namespace",
			fmt.Sprintf("%q is not a dotted JS identifier", config.Namespace)))
	}
	if len(config.Globals) == 0 {
		errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.globals", "must list at least one global"))
	}
	for _, g := range config.Globals {
		if !identifierPattern.MatchString(g) {
			errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.globals",
				fmt.Sprintf("%q is not a JS identifier", g)))
		}
	}
	root := strings.SplitN(config.Namespace, ".", 2)[0]
	if namespacePattern.MatchString(config.Namespace) && !contains(config.Globals, root) {
		errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.namespace",
			fmt.Sprintf("namespace root %q is not one of the wrapper globals", root)))
	}
	if !contains(config.Globals, "once") {
		errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.globals",
			"must include once, the behavior guard calls it"))
	}
	if !identifierPattern.MatchString(config.Behavior) {
		errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.behavior",
			fmt.Sprintf("%q is not a JS identifier", config.Behavior)))
	}
	if config.OnceID == "" || strings.ContainsAny(config.OnceID, "'\"\\\n") {
		errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.once_id",
			"must be non-empty and free of quotes"))
	}
	for _, m := range config.InitModules {
		if !identifierPattern.MatchString(m) {
			errs = append(errs, asseterrors.ErrConfigInvalid("wrapper.init_modules",
				fmt.Sprintf("%q is not a JS identifier", m)))
		}
	}
	return errs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

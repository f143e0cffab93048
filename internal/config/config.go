// Package config provides configuration management for assetcat using Viper
// for flexible loading from files, environment variables, and command-line
// flags.
//
// The configuration describes where CSS and JS sources live, the exact order
// in which they are concatenated, where the bundles are written, and how the
// generated banner and JS wrapper look.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".assetcat.yml"

type Config struct {
	Project ProjectConfig `mapstructure:"project" yaml:"project"`
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	CSS     BundleConfig  `mapstructure:"css" yaml:"css"`
	JS      BundleConfig  `mapstructure:"js" yaml:"js"`
	Banner  BannerConfig  `mapstructure:"banner" yaml:"banner"`
	Wrapper WrapperConfig `mapstructure:"wrapper" yaml:"wrapper"`
	Minify  MinifyConfig  `mapstructure:"minify" yaml:"minify"`
}

type ProjectConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

type SourcesConfig struct {
	CSSDir string `mapstructure:"css_dir" yaml:"css_dir"`
	JSDir  string `mapstructure:"js_dir" yaml:"js_dir"`
}

type OutputConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	CSSFile string `mapstructure:"css_file" yaml:"css_file"`
	JSFile  string `mapstructure:"js_file" yaml:"js_file"`
}

// BundleConfig lists the sources of one bundle, relative to its source root,
// in concatenation order.
type BundleConfig struct {
	Files []string `mapstructure:"files" yaml:"files"`
}

type BannerConfig struct {
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
	TimeZone   string `mapstructure:"time_zone" yaml:"time_zone"`
	Locale     string `mapstructure:"locale" yaml:"locale"`
}

// WrapperConfig shapes the closure the JS bundle is wrapped in.
type WrapperConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled"`
	Namespace   string   `mapstructure:"namespace" yaml:"namespace"`
	Globals     []string `mapstructure:"globals" yaml:"globals"`
	Behavior    string   `mapstructure:"behavior" yaml:"behavior"`
	OnceID      string   `mapstructure:"once_id" yaml:"once_id"`
	InitModules []string `mapstructure:"init_modules" yaml:"init_modules"`
}

type MinifyConfig struct {
	Default bool `mapstructure:"default" yaml:"default"`
	// KeepBanner leaves the one-line banner comment in front of minified
	// bundles.
	KeepBanner bool `mapstructure:"keep_banner" yaml:"keep_banner"`
}

// EnvPrefix prefixes every environment override, e.g. ASSETCAT_OUTPUT_DIR.
const EnvPrefix = "ASSETCAT"

// Keys lists every leaf configuration key.
var Keys = []string{
	"project.name",
	"sources.css_dir", "sources.js_dir",
	"output.dir", "output.css_file", "output.js_file",
	"css.files", "js.files",
	"banner.time_format", "banner.time_zone", "banner.locale",
	"wrapper.enabled", "wrapper.namespace", "wrapper.globals",
	"wrapper.behavior", "wrapper.once_id", "wrapper.init_modules",
	"minify.default", "minify.keep_banner",
}

// BindEnv binds an environment variable to every key so that Unmarshal sees
// overrides for keys absent from the config file.
func BindEnv() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range Keys {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Default returns a configuration with every default applied and no sources.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, func(string) bool { return false })
	return cfg
}

// Load reads the configuration from viper, applies defaults, and validates.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Viper does not always decode slices set through Set or env vars.
	if viper.IsSet("css.files") && len(config.CSS.Files) == 0 {
		config.CSS.Files = viper.GetStringSlice("css.files")
	}
	if viper.IsSet("js.files") && len(config.JS.Files) == 0 {
		config.JS.Files = viper.GetStringSlice("js.files")
	}
	if viper.IsSet("wrapper.enabled") {
		config.Wrapper.Enabled = viper.GetBool("wrapper.enabled")
	}
	if viper.IsSet("minify.default") {
		config.Minify.Default = viper.GetBool("minify.default")
	}
	if viper.IsSet("minify.keep_banner") {
		config.Minify.KeepBanner = viper.GetBool("minify.keep_banner")
	}

	applyDefaults(&config, viper.IsSet)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config, isSet func(string) bool) {
	if config.Project.Name == "" {
		config.Project.Name = "Site"
	}

	if config.Sources.CSSDir == "" {
		config.Sources.CSSDir = "./css-source"
	}
	if config.Sources.JSDir == "" {
		config.Sources.JSDir = "./js-source"
	}

	if config.Output.Dir == "" {
		config.Output.Dir = "./dist"
	}
	if config.Output.CSSFile == "" {
		config.Output.CSSFile = "css/overrides.css"
	}
	if config.Output.JSFile == "" {
		config.Output.JSFile = "js/main.js"
	}

	if config.Banner.TimeFormat == "" {
		config.Banner.TimeFormat = "02/01/2006 15:04"
	}
	if config.Banner.TimeZone == "" {
		config.Banner.TimeZone = "Local"
	}
	if config.Banner.Locale == "" {
		config.Banner.Locale = "es-PE"
	}

	if !isSet("wrapper.enabled") {
		config.Wrapper.Enabled = true
	}
	if config.Wrapper.Namespace == "" {
		config.Wrapper.Namespace = "Drupal.site"
	}
	if len(config.Wrapper.Globals) == 0 {
		config.Wrapper.Globals = []string{"Drupal", "drupalSettings", "once"}
	}
	if config.Wrapper.Behavior == "" {
		config.Wrapper.Behavior = "siteInit"
	}
	if config.Wrapper.OnceID == "" {
		config.Wrapper.OnceID = "site-init"
	}
	if config.Wrapper.InitModules == nil && !isSet("wrapper.init_modules") {
		config.Wrapper.InitModules = []string{"navigation", "scrollReveal"}
	}
}

// CSSOutputPath is the full path of the CSS bundle.
func (c *Config) CSSOutputPath() string {
	return filepath.Join(c.Output.Dir, filepath.FromSlash(c.Output.CSSFile))
}

// JSOutputPath is the full path of the JS bundle.
func (c *Config) JSOutputPath() string {
	return filepath.Join(c.Output.Dir, filepath.FromSlash(c.Output.JSFile))
}

// Write serialises the configuration as YAML to path.
func (c *Config) Write(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// YAML renders the configuration with two-space indentation.
func (c *Config) YAML() ([]byte, error) {
	node := &yaml.Node{}
	if err := node.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	node.HeadComment = "assetcat configuration. Files are concatenated in the order listed."

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	asseterrors "github.com/conneroisu/assetcat/internal/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "defaults only",
			setup: func() { viper.Reset() },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "./css-source", cfg.Sources.CSSDir)
				assert.Equal(t, "./js-source", cfg.Sources.JSDir)
				assert.Equal(t, "./dist", cfg.Output.Dir)
				assert.Equal(t, "css/overrides.css", cfg.Output.CSSFile)
				assert.Equal(t, "js/main.js", cfg.Output.JSFile)
				assert.True(t, cfg.Wrapper.Enabled)
				assert.Equal(t, []string{"navigation", "scrollReveal"}, cfg.Wrapper.InitModules)
				assert.Empty(t, cfg.CSS.Files)
			},
		},
		{
			name: "ordered file lists",
			setup: func() {
				viper.Reset()
				viper.Set("css.files", []string{"base/variables.css", "base/reset.css", "pages/home.css"})
				viper.Set("js.files", []string{"utils/helpers.js", "pages/home.js"})
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"base/variables.css", "base/reset.css", "pages/home.css"}, cfg.CSS.Files)
				assert.Equal(t, []string{"utils/helpers.js", "pages/home.js"}, cfg.JS.Files)
			},
		},
		{
			name: "wrapper disabled explicitly",
			setup: func() {
				viper.Reset()
				viper.Set("wrapper.enabled", false)
				viper.Set("wrapper.namespace", "not valid!")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Wrapper.Enabled)
			},
		},
		{
			name: "empty init modules are kept empty",
			setup: func() {
				viper.Reset()
				viper.Set("wrapper.init_modules", []string{})
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Wrapper.InitModules)
			},
		},
		{
			name: "traversal in file list",
			setup: func() {
				viper.Reset()
				viper.Set("css.files", []string{"../secret.css"})
			},
			expectError: true,
		},
		{
			name: "duplicate file entry",
			setup: func() {
				viper.Reset()
				viper.Set("js.files", []string{"a.js", "./a.js"})
			},
			expectError: true,
		},
		{
			name: "unknown time zone",
			setup: func() {
				viper.Reset()
				viper.Set("banner.time_zone", "Mars/Olympus")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			cfg, err := Load()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				assert.True(t, asseterrors.IsConfigError(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	content := `project:
  name: Efectiva Portal
sources:
  css_dir: ./styles
css:
  files:
    - base/variables.css
    - components/buttons.css
wrapper:
  namespace: Drupal.efectivaportal
  once_id: efectivaportal-init
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Efectiva Portal", cfg.Project.Name)
	assert.Equal(t, "./styles", cfg.Sources.CSSDir)
	assert.Equal(t, "./js-source", cfg.Sources.JSDir)
	assert.Equal(t, []string{"base/variables.css", "components/buttons.css"}, cfg.CSS.Files)
	assert.Equal(t, "Drupal.efectivaportal", cfg.Wrapper.Namespace)
	assert.Equal(t, "efectivaportal-init", cfg.Wrapper.OnceID)
}

func TestLoadWithEnvironment(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("ASSETCAT_OUTPUT_DIR", "./build")
	t.Setenv("ASSETCAT_PROJECT_NAME", "Env Project")
	t.Setenv("ASSETCAT_MINIFY_DEFAULT", "true")
	t.Setenv("ASSETCAT_MINIFY_KEEP_BANNER", "true")

	require.NoError(t, BindEnv())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./build", cfg.Output.Dir)
	assert.Equal(t, "Env Project", cfg.Project.Name)
	assert.True(t, cfg.Minify.Default)
	assert.True(t, cfg.Minify.KeepBanner)
}

func TestOutputPaths(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "out"

	assert.Equal(t, filepath.Join("out", "css", "overrides.css"), cfg.CSSOutputPath())
	assert.Equal(t, filepath.Join("out", "js", "main.js"), cfg.JSOutputPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty css dir", func(c *Config) { c.Sources.CSSDir = " " }, "sources.css_dir"},
		{"absolute output file", func(c *Config) { c.Output.JSFile = "/etc/main.js" }, "output.js_file"},
		{"same output file", func(c *Config) { c.Output.JSFile = c.Output.CSSFile }, "output"},
		{"absolute source", func(c *Config) { c.CSS.Files = []string{"/abs.css"} }, "css.files"},
		{"bad namespace", func(c *Config) { c.Wrapper.Namespace = "Drupal..x" }, "wrapper.namespace"},
		{"namespace root not global", func(c *Config) { c.Wrapper.Namespace = "Backdrop.site" }, "wrapper.namespace"},
		{"missing once", func(c *Config) { c.Wrapper.Globals = []string{"Drupal"} }, "wrapper.globals"},
		{"bad behavior", func(c *Config) { c.Wrapper.Behavior = "site-init" }, "wrapper.behavior"},
		{"quoted once id", func(c *Config) { c.Wrapper.OnceID = "a'b" }, "wrapper.once_id"},
		{"bad init module", func(c *Config) { c.Wrapper.InitModules = []string{"nav bar"} }, "wrapper.init_modules"},
		{"bad locale", func(c *Config) { c.Banner.Locale = "!!" }, "banner.locale"},
	}

	require.NoError(t, Validate(Default()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Sources.CSSDir = ""
	cfg.Sources.JSDir = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources.css_dir")
	assert.Contains(t, err.Error(), "sources.js_dir")
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.CSS.Files = []string{"base/reset.css", "pages/home.css"}
	cfg.JS.Files = []string{"pages/home.js"}

	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, cfg.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# assetcat configuration")
	assert.Contains(t, string(data), "css_dir: ./css-source")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *cfg, decoded)
}

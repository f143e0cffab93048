package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/assetcat/internal/build"
	"github.com/conneroisu/assetcat/internal/bundle"
	"github.com/conneroisu/assetcat/internal/config"
)

const testConfig = `project:
  name: Test Site
banner:
  time_zone: UTC
css:
  files:
    - base/variables.css
    - components/buttons.css
    - missing.css
js:
  files:
    - utils/helpers.js
`

// setupProject lays out a project in a temp dir and makes it the working
// directory for the rest of the test.
func setupProject(t *testing.T, withConfig bool) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"css-source/base/variables.css":     ":root {\n  --brand: #c00;\n}\n",
		"css-source/components/buttons.css": ".btn {\n  color: var(--brand);\n}\n",
		"js-source/utils/helpers.js":        "Drupal.site.helpers = {\n  ready: true\n};\n",
	}
	if withConfig {
		files[config.DefaultFileName] = testConfig
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return root
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with fresh flags and configuration and
// returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeTo(t, io.Discard, args...)
}

// executeTo is execute with stderr captured in errOut.
func executeTo(t *testing.T, errOut io.Writer, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := ExecuteContext(context.Background())
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuildCommand(t *testing.T) {
	setupProject(t, true)

	out, err := execute(t, "build")
	require.NoError(t, err)

	assert.Contains(t, out, "BUILD COMPLETED SUCCESSFULLY")
	assert.Contains(t, out, "base/variables.css")
	assert.Contains(t, out, "Skipped")

	css := readFile(t, "dist/css/overrides.css")
	assert.Contains(t, css, "TEST SITE - OVERRIDES.CSS")
	assert.Contains(t, css, "BASE/VARIABLES.CSS")
	assert.Less(t, bytes.Index([]byte(css), []byte("--brand: #c00")), bytes.Index([]byte(css), []byte(".btn")))
	assert.NotContains(t, css, "MISSING.CSS")

	js := readFile(t, "dist/js/main.js")
	assert.Contains(t, js, "(function (Drupal, drupalSettings, once) {")
	assert.Contains(t, js, "Drupal.site.helpers")
}

func TestBuildCommandModes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCSS  bool
		wantJS   bool
		minified bool
	}{
		{name: "css only", args: []string{"build", "--css-only"}, wantCSS: true},
		{name: "js only", args: []string{"b", "--js-only"}, wantJS: true},
		{name: "minified", args: []string{"build", "--minify"}, wantCSS: true, wantJS: true, minified: true},
		{name: "min alias", args: []string{"build", "--min", "--css-only"}, wantCSS: true, minified: true},
		{name: "short flag", args: []string{"build", "-m", "--js-only"}, wantJS: true, minified: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, true)

			_, err := execute(t, tt.args...)
			require.NoError(t, err)

			if tt.wantCSS {
				css := readFile(t, "dist/css/overrides.css")
				if tt.minified {
					assert.NotContains(t, css, "\n/* ====")
					assert.Contains(t, css, ".btn{color:var(--brand)}")
				} else {
					assert.Contains(t, css, "BASE/VARIABLES.CSS")
				}
			} else {
				assert.NoFileExists(t, "dist/css/overrides.css")
			}

			if tt.wantJS {
				assert.FileExists(t, "dist/js/main.js")
			} else {
				assert.NoFileExists(t, "dist/js/main.js")
			}
		})
	}
}

func TestBuildCommandMinifyFromConfig(t *testing.T) {
	setupProject(t, true)
	t.Setenv("ASSETCAT_MINIFY_DEFAULT", "true")

	_, err := execute(t, "build", "--css-only")
	require.NoError(t, err)
	assert.NotContains(t, readFile(t, "dist/css/overrides.css"), "BASE/VARIABLES.CSS")

	// An explicit flag wins over the configured default.
	_, err = execute(t, "build", "--css-only", "--minify=false")
	require.NoError(t, err)
	assert.Contains(t, readFile(t, "dist/css/overrides.css"), "BASE/VARIABLES.CSS")
}

func TestBuildCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		args  []string
	}{
		{
			name: "exclusive flags",
			args: []string{"build", "--css-only", "--js-only"},
		},
		{
			name: "missing css directory",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.RemoveAll(filepath.Join(root, "css-source")))
			},
			args: []string{"build"},
		},
		{
			name: "missing js directory in js-only mode",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.RemoveAll(filepath.Join(root, "js-source")))
			},
			args: []string{"build", "--js-only"},
		},
		{
			name: "unknown format",
			args: []string{"build", "--format", "xml"},
		},
		{
			name: "missing explicit config file",
			args: []string{"build", "--config", "absent.yml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupProject(t, true)
			if tt.setup != nil {
				tt.setup(t, root)
			}
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCommandErrorHints(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		args  []string
		want  []string
	}{
		{
			name: "missing css directory",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.RemoveAll(filepath.Join(root, "css-source")))
			},
			args: []string{"build"},
			want: []string{"source directory does not exist", "💡 Check the folder structure"},
		},
		{
			name: "invalid configuration",
			setup: func(t *testing.T, root string) {
				cfg := testConfig + "output:\n  css_file: main.js\n  js_file: main.js\n"
				require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultFileName), []byte(cfg), 0o644))
			},
			args: []string{"build"},
			want: []string{"💡 Run 'assetcat config validate'"},
		},
		{
			name: "usage error",
			args: []string{"build", "--css-only", "--js-only"},
			want: []string{"level=ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupProject(t, true)
			if tt.setup != nil {
				tt.setup(t, root)
			}
			var stderr bytes.Buffer
			_, err := executeTo(t, &stderr, tt.args...)
			require.Error(t, err)
			for _, s := range tt.want {
				assert.Contains(t, stderr.String(), s)
			}
		})
	}
}

func TestBuildCommandMissingJSDirectoryWarns(t *testing.T) {
	root := setupProject(t, true)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "js-source")))

	out, err := execute(t, "build")
	require.NoError(t, err)
	assert.FileExists(t, "dist/css/overrides.css")
	assert.NoFileExists(t, "dist/js/main.js")
	assert.Contains(t, out, "js-source")
}

func TestBuildCommandJSON(t *testing.T) {
	setupProject(t, true)

	out, err := execute(t, "build", "--format", "json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(out)), out)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Test Site", doc["project"])
}

func TestCompareCommand(t *testing.T) {
	setupProject(t, true)

	out, err := execute(t, "compare")
	require.NoError(t, err)
	assert.Contains(t, out, "BUNDLE")
	assert.Contains(t, out, "DEVELOPMENT")
	assert.NoDirExists(t, "dist")
}

func TestInitCommand(t *testing.T) {
	setupProject(t, false)

	out, err := execute(t, "init", "--discover")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 CSS and 1 JS sources")

	cfg := readFile(t, config.DefaultFileName)
	assert.Contains(t, cfg, "base/variables.css")
	assert.Contains(t, cfg, "utils/helpers.js")

	_, err = execute(t, "init")
	assert.Error(t, err, "existing config must not be overwritten")

	_, err = execute(t, "init", "--force")
	require.NoError(t, err)

	// The written file drives a build.
	_, err = execute(t, "build")
	require.NoError(t, err)
	assert.FileExists(t, "dist/css/overrides.css")
}

func TestConfigCommands(t *testing.T) {
	setupProject(t, true)

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Test Site")
	assert.Contains(t, out, "missing.css")

	out, err = execute(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "missing source")

	_, err = execute(t, "config", "validate", "--strict")
	assert.Error(t, err)
}

func TestMissingSourcesCleansPaths(t *testing.T) {
	setupProject(t, false)
	cfg := config.Default()
	cfg.CSS.Files = []string{"./base/variables.css", "base/../components/buttons.css", "../outside.css", "base/gone.css"}
	cfg.JS.Files = []string{"utils/./helpers.js"}

	warnings := missingSources(cfg)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "../outside.css escapes")
	assert.Contains(t, warnings[1], "missing source "+filepath.Join("css-source", "base", "gone.css"))
}

func TestPackageCommand(t *testing.T) {
	setupProject(t, true)

	out, err := execute(t, "package", "--build", "--out", "theme.zip")
	require.NoError(t, err)
	assert.Contains(t, out, "Packaged 2 files into theme.zip")

	zr, err := zip.OpenReader("theme.zip")
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"css/overrides.css", "js/main.js"}, names)
}

func TestVersionCommand(t *testing.T) {
	setupProject(t, false)

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestOutsideDir(t *testing.T) {
	root := t.TempDir()
	filter := outsideDir(filepath.Join(root, "dist"))

	assert.False(t, filter(filepath.Join(root, "dist", "css", "overrides.css")))
	assert.True(t, filter(filepath.Join(root, "css-source", "a.css")))
	assert.True(t, filter(filepath.Join(root, "distant", "a.css")))
}

func TestPrintRebuild(t *testing.T) {
	var buf bytes.Buffer
	printRebuild(&buf, nil, errors.New("boom"))
	assert.Contains(t, buf.String(), "Build failed: boom")

	buf.Reset()
	r := &build.Report{
		Outputs: []build.Output{{
			Kind: bundle.KindCSS,
			Bundle: &bundle.Result{
				Kind:      bundle.KindCSS,
				Total:     3,
				Processed: 2,
				Sources:   []bundle.Source{{Path: "a.css"}, {Path: "b.css"}, {Path: "gone.css", Err: os.ErrNotExist}},
			},
		}},
		Duration: 1500 * time.Millisecond,
	}
	printRebuild(&buf, r, nil)
	assert.Contains(t, buf.String(), "Rebuilt CSS 2/3 files in 1.50s")
	assert.Contains(t, buf.String(), "1 source(s) skipped")
}

func TestPrintWatchMetrics(t *testing.T) {
	var buf bytes.Buffer
	printWatchMetrics(&buf, build.MetricsSnapshot{})
	assert.Empty(t, buf.String())

	printWatchMetrics(&buf, build.MetricsSnapshot{
		TotalBuilds:      4,
		SuccessfulBuilds: 3,
		FailedBuilds:     1,
		AverageDuration:  250 * time.Millisecond,
	})
	assert.Equal(t, "Builds: 4 (3 ok, 1 failed, 75% success), average 0.25s\n", buf.String())
}

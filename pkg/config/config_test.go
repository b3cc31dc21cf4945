package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/resolve"
)

// inDir runs the test from dir so the default config and .env are read there.
func inDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testFlags() *pflag.FlagSet {
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("config", "", "")
	f.String("format", "text", "")
	f.Int("large-file-threshold", 500, "")
	f.Bool("orphaned", true, "")
	f.Bool("no-gitignore", false, "")
	f.CountP("verbose", "v", "")
	return f
}

func TestLoad_Defaults(t *testing.T) {
	inDir(t, t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project != "." || cfg.Graph != "codewarn-graph.json" || cfg.Format != "text" {
		t.Errorf("Unexpected top-level defaults: %+v", cfg)
	}
	if !cfg.Detect.FileCircular || cfg.Detect.FunctionCircular || !cfg.Detect.Orphaned {
		t.Errorf("Unexpected detector defaults: %+v", cfg.Detect)
	}
	if cfg.Detect.LargeFileThreshold != 500 || cfg.Detect.CycleKey != "members" {
		t.Errorf("Unexpected detect defaults: %+v", cfg.Detect)
	}
	if !cfg.Scan.Gitignore || len(cfg.Scan.TestPatterns) != 2 {
		t.Errorf("Unexpected scan defaults: %+v", cfg.Scan)
	}
	if cfg.Watch.QuietMs != 300 || cfg.Watch.MaxWaitMs != 2000 {
		t.Errorf("Unexpected watch defaults: %+v", cfg.Watch)
	}
}

func TestLoad_Priority(t *testing.T) {
	dir := t.TempDir()
	inDir(t, dir)
	writeFile(t, filepath.Join(dir, DefaultFile), `
format = "json"

[detect]
large-file-threshold = 800
orphaned = false
function-circular = true

[[aliases]]
pattern = "@/*"
targets = ["src/*"]
`)
	t.Setenv("CODEWARN_DETECT__LARGE_FILE_THRESHOLD", "900")

	f := testFlags()
	if err := f.Parse([]string{"--orphaned=true"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Format != "json" {
		t.Errorf("Expected file to override default format, got %s", cfg.Format)
	}
	if cfg.Detect.LargeFileThreshold != 900 {
		t.Errorf("Expected env to override file, got %d", cfg.Detect.LargeFileThreshold)
	}
	if !cfg.Detect.Orphaned {
		t.Error("Expected flag to override file")
	}
	if !cfg.Detect.FunctionCircular {
		t.Error("Expected file value to survive unchanged flags")
	}
	want := []resolve.Alias{{Pattern: "@/*", Targets: []string{"src/*"}}}
	if !reflect.DeepEqual(cfg.Aliases, want) {
		t.Errorf("Expected aliases %v, got %v", want, cfg.Aliases)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	inDir(t, dir)
	writeFile(t, filepath.Join(dir, ".env"), "CODEWARN_DETECT__CYCLE_KEY=edges\n")
	t.Cleanup(func() { _ = os.Unsetenv("CODEWARN_DETECT__CYCLE_KEY") })

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Detect.CycleKey != "edges" {
		t.Errorf("Expected .env to set cycle-key, got %q", cfg.Detect.CycleKey)
	}
}

func TestLoad_NoGitignoreFlag(t *testing.T) {
	inDir(t, t.TempDir())

	f := testFlags()
	if err := f.Parse([]string{"--no-gitignore"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.Gitignore {
		t.Error("Expected --no-gitignore to disable gitignore")
	}
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	inDir(t, t.TempDir())

	f := testFlags()
	if err := f.Parse([]string{"--config", "missing.toml"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(f); err == nil {
		t.Error("Expected error for missing explicit config")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"format":    "format = \"xml\"\n",
		"fail-on":   "fail-on = \"sometimes\"\n",
		"cycle-key": "[detect]\ncycle-key = \"paths\"\n",
		"threshold": "[detect]\nlarge-file-threshold = 0\n",
		"verbosity": "verbosity = \"loud\"\n",
		"alias":     "[[aliases]]\npattern = \"@/*\"\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			inDir(t, dir)
			writeFile(t, filepath.Join(dir, DefaultFile), content)

			if _, err := Load(nil); err == nil {
				t.Errorf("Expected validation error for %s", name)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		count     int
		want      slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 3, logging.LevelTrace},
		{"warn", 2, slog.LevelWarn},
	}
	for _, tt := range tests {
		cfg := Config{Verbosity: tt.verbosity, VerboseCnt: tt.count}
		if got := cfg.LogLevel(); got != tt.want {
			t.Errorf("LogLevel(%q, %d) = %v, want %v", tt.verbosity, tt.count, got, tt.want)
		}
	}
}

func TestResolveAliases_TSConfigFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tsconfig.json"), `{
  // comments are tolerated
  "compilerOptions": {"paths": {"~/*": ["lib/*"],}},
}`)

	cfg := Config{Project: dir, TSConfig: "tsconfig.json"}
	aliases, err := cfg.ResolveAliases()
	if err != nil {
		t.Fatalf("ResolveAliases() error = %v", err)
	}
	want := []resolve.Alias{{Pattern: "~/*", Targets: []string{"lib/*"}}}
	if !reflect.DeepEqual(aliases, want) {
		t.Errorf("Expected %v, got %v", want, aliases)
	}

	cfg.TSConfig = "missing.json"
	if aliases, err := cfg.ResolveAliases(); err != nil || aliases != nil {
		t.Errorf("Expected no aliases for missing tsconfig, got %v, %v", aliases, err)
	}
}

func TestRuleSet(t *testing.T) {
	cfg := Config{}
	cfg.Conventions.EntryPoints = []string{"worker"}
	rules := cfg.RuleSet()
	if rules.EntryPoints[len(rules.EntryPoints)-1] != "worker" || len(rules.Hooks) == 0 {
		t.Errorf("Expected defaults extended with worker, got %+v", rules.EntryPoints)
	}

	cfg.Conventions.Replace = true
	rules = cfg.RuleSet()
	if !reflect.DeepEqual(rules.EntryPoints, []string{"worker"}) || len(rules.Hooks) != 0 {
		t.Errorf("Expected defaults replaced, got %+v", rules)
	}
}

func TestAnalysisOptions(t *testing.T) {
	inDir(t, t.TempDir())
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Project = t.TempDir()

	opts, err := cfg.AnalysisOptions()
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}
	if !opts.DetectFileCircular || opts.LargeFileThreshold != 500 || opts.Conventions == nil || opts.CycleKey == nil {
		t.Errorf("Unexpected options: %+v", opts)
	}
	if opts.ProjectRoot != cfg.Project {
		t.Errorf("Expected project root %s, got %s", cfg.Project, opts.ProjectRoot)
	}
}

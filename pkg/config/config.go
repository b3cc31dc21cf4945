package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/codewarn/pkg/analysis"
	"github.com/ritzau/codewarn/pkg/conventions"
	"github.com/ritzau/codewarn/pkg/cycles"
	"github.com/ritzau/codewarn/pkg/detect"
	"github.com/ritzau/codewarn/pkg/finder"
	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/output"
	"github.com/ritzau/codewarn/pkg/resolve"
	"github.com/ritzau/codewarn/pkg/scan"
)

const (
	// DefaultFile is read from the working directory when --config is not given.
	DefaultFile = "codewarn.toml"
	// EnvPrefix prefixes environment overrides, e.g. CODEWARN_DETECT__ORPHANED=false.
	EnvPrefix = "CODEWARN_"
)

// Config holds all configuration for the application
type Config struct {
	Project    string `koanf:"project"`
	Graph      string `koanf:"graph"`
	TSConfig   string `koanf:"tsconfig"`
	Format     string `koanf:"format"`
	FailOn     string `koanf:"fail-on"`
	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`
	LogJSON    bool   `koanf:"log-json"`

	Detect      DetectConfig      `koanf:"detect"`
	Scan        ScanConfig        `koanf:"scan"`
	Watch       WatchConfig       `koanf:"watch"`
	Aliases     []resolve.Alias   `koanf:"aliases"`
	Conventions ConventionsConfig `koanf:"conventions"`
}

// DetectConfig selects detectors.
type DetectConfig struct {
	FileCircular         bool   `koanf:"file-circular"`
	FunctionCircular     bool   `koanf:"function-circular"`
	Orphaned             bool   `koanf:"orphaned"`
	UnusedExports        bool   `koanf:"unused-exports"`
	LargeFiles           bool   `koanf:"large-files"`
	LargeFileThreshold   int    `koanf:"large-file-threshold"`
	FrameworkConventions bool   `koanf:"framework-conventions"`
	IncludeTestImports   bool   `koanf:"include-test-imports"`
	CycleKey             string `koanf:"cycle-key"`
}

// ScanConfig configures the ancillary scanners.
type ScanConfig struct {
	TestPatterns        []string `koanf:"test-patterns"`
	FrameworkExtensions []string `koanf:"framework-extensions"`
	CacheSize           int      `koanf:"cache-size"`
	Gitignore           bool     `koanf:"gitignore"`
}

// WatchConfig holds debounce timings in milliseconds.
type WatchConfig struct {
	QuietMs   int `koanf:"quiet-ms"`
	MaxWaitMs int `koanf:"max-wait-ms"`
}

// ConventionsConfig extends the built-in convention table, or replaces it
// when Replace is set.
type ConventionsConfig struct {
	Replace             bool `koanf:"replace"`
	conventions.RuleSet `koanf:",squash"`
}

// flagKeys maps flag names to their config keys. Flags not listed use
// their own name.
var flagKeys = map[string]string{
	"file-circular":         "detect.file-circular",
	"function-circular":     "detect.function-circular",
	"orphaned":              "detect.orphaned",
	"unused-exports":        "detect.unused-exports",
	"large-files":           "detect.large-files",
	"large-file-threshold":  "detect.large-file-threshold",
	"framework-conventions": "detect.framework-conventions",
	"include-test-imports":  "detect.include-test-imports",
	"cycle-key":             "detect.cycle-key",
	"no-gitignore":          "scan.gitignore",
	"quiet-ms":              "watch.quiet-ms",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"project":   ".",
		"graph":     "codewarn-graph.json",
		"tsconfig":  "tsconfig.json",
		"format":    "text",
		"fail-on":   "",
		"verbosity": "",
		"verbose":   0,
		"log-json":  false,
		"detect": map[string]interface{}{
			"file-circular":         true,
			"function-circular":     false,
			"orphaned":              true,
			"unused-exports":        true,
			"large-files":           true,
			"large-file-threshold":  detect.DefaultLargeFileThreshold,
			"framework-conventions": true,
			"include-test-imports":  true,
			"cycle-key":             "members",
		},
		"scan": map[string]interface{}{
			"test-patterns":        scan.DefaultTestPatterns,
			"framework-extensions": scan.DefaultFrameworkExtensions,
			"cache-size":           scan.DefaultCacheSize,
			"gitignore":            true,
		},
		"watch": map[string]interface{}{
			"quiet-ms":    300,
			"max-wait-ms": 2000,
		},
	}
}

// Load loads configuration from defaults, .env, config file, environment
// variables, and flags.
// Priority: Flags > Env (including .env) > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file, required only when named explicitly
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. .env only fills variables the process does not already have
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 4. Environment Variables
	// Prefix: CODEWARN_, "__" nests (CODEWARN_DETECT__LARGE_FILE_THRESHOLD=800)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f != nil {
		if flag := f.Lookup("config"); flag != nil && flag.Value.String() != "" {
			return flag.Value.String(), true
		}
	}
	return DefaultFile, false
}

// envKey turns CODEWARN_DETECT__LARGE_FILE_THRESHOLD into
// detect.large-file-threshold.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	return strings.ReplaceAll(key, "_", "-")
}

func flagKey(f *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(flag *pflag.Flag) (string, interface{}) {
		switch flag.Name {
		case "config":
			// Consumed by Load itself
			return "", nil
		case "no-gitignore":
			if !flag.Changed {
				return "", nil
			}
			return flagKeys[flag.Name], flag.Value.String() != "true"
		}

		key := flag.Name
		if mapped, ok := flagKeys[flag.Name]; ok {
			key = mapped
		}
		return key, posflag.FlagVal(f, flag)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: want text or json", c.Format)
	}

	if _, err := output.ParseFailOn(c.FailOn); err != nil {
		return err
	}
	if _, err := cycles.KeyByName(c.Detect.CycleKey); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Verbosity); err != nil {
		return err
	}
	if c.Detect.LargeFileThreshold <= 0 {
		return fmt.Errorf("invalid large-file-threshold %d: must be positive", c.Detect.LargeFileThreshold)
	}
	if c.Watch.QuietMs < 0 || c.Watch.MaxWaitMs < 0 {
		return fmt.Errorf("invalid watch timings: quiet-ms=%d max-wait-ms=%d", c.Watch.QuietMs, c.Watch.MaxWaitMs)
	}
	for i, a := range c.Aliases {
		if a.Pattern == "" || len(a.Targets) == 0 {
			return fmt.Errorf("alias %d: pattern and targets are required", i)
		}
	}
	return nil
}

// LogLevel returns the effective log level. Each -v lowers it one step from
// info; an explicit verbosity wins.
func (c *Config) LogLevel() slog.Level {
	if c.Verbosity != "" {
		level, _ := logging.ParseLevel(c.Verbosity)
		return level
	}
	switch {
	case c.VerboseCnt >= 2:
		return logging.LevelTrace
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ProjectPath resolves a project-relative path from the config.
func (c *Config) ProjectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Project, p)
}

// ResolveAliases returns the configured aliases, falling back to the
// tsconfig paths. A missing tsconfig yields no aliases.
func (c *Config) ResolveAliases() ([]resolve.Alias, error) {
	if len(c.Aliases) > 0 {
		return c.Aliases, nil
	}

	path := c.ProjectPath(c.TSConfig)
	if !finder.Exists(path) {
		return nil, nil
	}
	aliases, err := resolve.LoadTSConfig(path, c.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to load tsconfig paths: %w", err)
	}
	return aliases, nil
}

// RuleSet returns the convention table in effect.
func (c *Config) RuleSet() conventions.RuleSet {
	if c.Conventions.Replace {
		return c.Conventions.RuleSet
	}

	rules := conventions.DefaultRuleSet()
	rules.EntryPoints = append(rules.EntryPoints, c.Conventions.EntryPoints...)
	rules.Hooks = append(rules.Hooks, c.Conventions.Hooks...)
	rules.ConfigFiles = append(rules.ConfigFiles, c.Conventions.ConfigFiles...)
	return rules
}

// AnalysisOptions builds engine options from the config.
func (c *Config) AnalysisOptions() (analysis.Options, error) {
	aliases, err := c.ResolveAliases()
	if err != nil {
		return analysis.Options{}, err
	}

	matcher, err := conventions.Compile(c.RuleSet())
	if err != nil {
		return analysis.Options{}, fmt.Errorf("invalid conventions: %w", err)
	}

	key, err := cycles.KeyByName(c.Detect.CycleKey)
	if err != nil {
		return analysis.Options{}, err
	}

	return analysis.Options{
		DetectFileCircular:     c.Detect.FileCircular,
		DetectFunctionCircular: c.Detect.FunctionCircular,
		DetectOrphaned:         c.Detect.Orphaned,
		DetectUnusedExports:    c.Detect.UnusedExports,
		DetectLargeFiles:       c.Detect.LargeFiles,
		LargeFileThreshold:     c.Detect.LargeFileThreshold,
		FrameworkConventions:   c.Detect.FrameworkConventions,
		IncludeTestImports:     c.Detect.IncludeTestImports,
		Aliases:                aliases,
		Conventions:            matcher,
		CycleKey:               key,
		ProjectRoot:            c.Project,
	}, nil
}

// ScannerConfig builds the ancillary scanner configuration around cache.
func (c *Config) ScannerConfig(cache *scan.Cache) scan.Config {
	return scan.Config{
		Extensions:   c.Scan.FrameworkExtensions,
		TestPatterns: c.Scan.TestPatterns,
		Gitignore:    c.Scan.Gitignore,
		Cache:        cache,
	}
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

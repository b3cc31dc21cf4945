package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ritzau/codewarn/pkg/analysis"
	"github.com/ritzau/codewarn/pkg/config"
	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/output"
	"github.com/ritzau/codewarn/pkg/scan"
)

// errFindings signals that --fail-on matched. The report already explains it.
var errFindings = errors.New("warnings at or above the fail-on level")

var rootCmd = &cobra.Command{
	Use:   "codewarn",
	Short: "Code health warnings for TypeScript and JavaScript projects",
	Long: `codewarn reads the code graph produced by the structural parser and reports
circular dependencies, orphaned code, unused exports and oversized files.

Configuration is read from codewarn.toml, CODEWARN_* environment variables
(also from .env) and flags, in increasing priority.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default: codewarn.toml if present)")
	f.StringP("project", "p", ".", "Project root")
	f.StringP("graph", "g", "codewarn-graph.json", "Code graph JSON, relative to the project")
	f.String("tsconfig", "tsconfig.json", "tsconfig.json for path aliases when none are configured")
	f.StringP("format", "f", "text", "Report format (text, json)")
	f.String("fail-on", "", "Exit non-zero on warnings at this level or above (info, warning, error)")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.String("verbosity", "", "Log level (trace, debug, info, warn, error)")
	f.Bool("log-json", false, "Write logs as JSON")

	f.Bool("file-circular", true, "Detect circular file imports")
	f.Bool("function-circular", false, "Detect circular function calls")
	f.Bool("orphaned", true, "Detect orphaned functions and classes")
	f.Bool("unused-exports", true, "Detect unused exports")
	f.Bool("large-files", true, "Detect large files")
	f.Int("large-file-threshold", 500, "Line count above which a file is large")
	f.Bool("framework-conventions", true, "Treat framework hooks as used")
	f.Bool("include-test-imports", true, "Count imports from test files as usage")
	f.String("cycle-key", "members", "Cycle deduplication key (members, edges)")
	f.Bool("no-gitignore", false, "Do not apply .gitignore when scanning")
}

// loadConfig loads the configuration and applies its logging settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel()
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
	return cfg, nil
}

// buildEngine wires the detectors and ancillary scanners for cfg. cache may
// be nil.
func buildEngine(cfg *config.Config, cache *scan.Cache) (*analysis.Engine, error) {
	opts, err := cfg.AnalysisOptions()
	if err != nil {
		return nil, err
	}

	scanCfg := cfg.ScannerConfig(cache)
	tests, err := scan.NewTestScanner(scanCfg)
	if err != nil {
		return nil, err
	}

	return analysis.NewEngine(opts, analysis.Scanners{
		Framework: scan.NewFrameworkScanner(scanCfg),
		Tests:     tests,
	}), nil
}

func newRunner(cfg *config.Config, cache *scan.Cache) (*analysis.Runner, error) {
	engine, err := buildEngine(cfg, cache)
	if err != nil {
		return nil, err
	}
	return analysis.NewRunner(engine, analysis.FileLoader(cfg.ProjectPath(cfg.Graph))), nil
}

// report writes result and applies the fail-on policy.
func report(w io.Writer, cfg *config.Config, result *model.Result) error {
	if err := output.Write(w, cfg.Format, cfg.Project, result); err != nil {
		return err
	}

	failOn, err := output.ParseFailOn(cfg.FailOn)
	if err != nil {
		return err
	}
	if failOn.Fails(result) {
		return fmt.Errorf("%w (%s)", errFindings, failOn)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

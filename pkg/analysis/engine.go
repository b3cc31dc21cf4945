// Package analysis runs the detectors over a code graph and aggregates
// their warnings.
package analysis

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/codewarn/pkg/conventions"
	"github.com/ritzau/codewarn/pkg/cycles"
	"github.com/ritzau/codewarn/pkg/detect"
	"github.com/ritzau/codewarn/pkg/graph"
	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/reexport"
	"github.com/ritzau/codewarn/pkg/resolve"
	"github.com/ritzau/codewarn/pkg/usage"
)

var log = logging.New("analysis")

// Options select the detectors of a run.
type Options struct {
	DetectFileCircular     bool
	DetectFunctionCircular bool
	DetectOrphaned         bool
	DetectUnusedExports    bool
	DetectLargeFiles       bool
	LargeFileThreshold     int
	FrameworkConventions   bool
	IncludeTestImports     bool

	Aliases     []resolve.Alias
	Conventions *conventions.Matcher // Defaults to the built-in rule set
	CycleKey    cycles.KeyFunc       // Defaults to cycles.MemberSetKey

	// ProjectRoot is where ancillary scanners look for files. Defaults to
	// the graph's project root.
	ProjectRoot string
}

// DefaultOptions enables every detector except function-level cycles.
func DefaultOptions() Options {
	return Options{
		DetectFileCircular:   true,
		DetectOrphaned:       true,
		DetectUnusedExports:  true,
		DetectLargeFiles:     true,
		LargeFileThreshold:   detect.DefaultLargeFileThreshold,
		FrameworkConventions: true,
		IncludeTestImports:   true,
	}
}

// Scanners are the ancillary import scanners. Either may be nil.
type Scanners struct {
	Framework usage.Scanner
	Tests     usage.Scanner
}

// Engine runs the detectors. It is safe for concurrent use; every run
// compiles its own alias table and shares nothing with other runs.
type Engine struct {
	opts     Options
	scanners Scanners
	now      func() time.Time
}

// NewEngine creates an engine.
func NewEngine(opts Options, scanners Scanners) *Engine {
	if opts.Conventions == nil {
		opts.Conventions = conventions.MustCompile(conventions.DefaultRuleSet())
	}
	if opts.CycleKey == nil {
		opts.CycleKey = cycles.MemberSetKey
	}
	return &Engine{opts: opts, scanners: scanners, now: time.Now}
}

// WithClock replaces the clock used for detection timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Analyze runs every enabled detector over g. Cancellation is only checked
// before the run starts. Detector failures are logged and contribute no
// warnings, so the only error is a context that is already done.
func (e *Engine) Analyze(ctx context.Context, g *model.Graph) (*model.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis not started: %w", err)
	}

	start := time.Now()
	now := e.now()
	p := g.Partition()
	resolver := resolve.NewResolver(resolve.CompileAliases(e.opts.Aliases))

	var frameworks detect.ConventionMatcher
	if e.opts.FrameworkConventions {
		frameworks = e.opts.Conventions
	}

	var fileCycles, functionCycles, orphans, unused, large []model.Warning

	var eg errgroup.Group
	run := func(name string, enabled bool, fn func()) {
		if !enabled {
			return
		}
		eg.Go(func() error {
			safeRun(ctx, name, fn)
			return nil
		})
	}

	run("file-circular", e.opts.DetectFileCircular, func() {
		fileCycles = detect.Circular(p.Files, graph.BuildFileGraph(p.Files, resolver), e.opts.CycleKey, now)
	})
	run("function-circular", e.opts.DetectFunctionCircular, func() {
		calls := graph.BuildCallGraph(p.Files, p.Functions, resolver)
		functionCycles = detect.FunctionCircular(p.Functions, calls, now)
	})
	run("orphans", e.opts.DetectOrphaned, func() {
		orphans = detect.Orphans(p, detect.OrphanOptions{
			EntryPoints: e.opts.Conventions,
			Frameworks:  frameworks,
		}, now)
	})
	run("unused-exports", e.opts.DetectUnusedExports, func() {
		collector := usage.NewCollector(resolver, reexport.Build(p.Files, resolver), e.activeScanners()...)
		used := collector.Collect(ctx, e.projectRoot(g), p.Files)
		unused = detect.UnusedExports(p.Files, used, frameworks, now)
	})
	run("large-files", e.opts.DetectLargeFiles, func() {
		large = detect.LargeFiles(p.Files, e.opts.LargeFileThreshold, now)
	})

	_ = eg.Wait()

	result := &model.Result{}
	Aggregate(result, fileCycles, functionCycles, orphans, unused, large)

	log.InfoContext(ctx, "analysis complete",
		"files", len(p.Files),
		"functions", len(p.Functions),
		"warnings", result.Stats.TotalWarnings,
		"durationMs", time.Since(start).Milliseconds())
	return result, nil
}

func (e *Engine) activeScanners() []usage.Scanner {
	var scanners []usage.Scanner
	if e.scanners.Framework != nil {
		scanners = append(scanners, e.scanners.Framework)
	}
	if e.opts.IncludeTestImports && e.scanners.Tests != nil {
		scanners = append(scanners, e.scanners.Tests)
	}
	return scanners
}

func (e *Engine) projectRoot(g *model.Graph) string {
	if e.opts.ProjectRoot != "" {
		return e.opts.ProjectRoot
	}
	if g.ProjectRoot != "" {
		return g.ProjectRoot
	}
	return "."
}

// safeRun runs fn and turns a panic into a logged failure.
func safeRun(ctx context.Context, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "detector failed", "detector", name, "error", fmt.Sprint(r))
			log.DebugContext(ctx, "detector stack", "detector", name, "stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	fn()
	log.DebugContext(ctx, "detector finished", "detector", name, "durationMs", time.Since(start).Milliseconds())
}

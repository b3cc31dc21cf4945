package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/model"
)

// GraphLoader reads the code graph of a run.
type GraphLoader func(ctx context.Context) (*model.Graph, error)

// FileLoader loads the graph from a JSON file on every run.
func FileLoader(path string) GraphLoader {
	return func(ctx context.Context) (*model.Graph, error) {
		return model.LoadGraph(path)
	}
}

// Runner orchestrates repeated analysis runs, e.g. from watch mode
type Runner struct {
	engine *Engine
	load   GraphLoader
	mu     sync.Mutex // Prevent concurrent analysis runs
}

// NewRunner creates a new analysis runner
func NewRunner(engine *Engine, load GraphLoader) *Runner {
	return &Runner{
		engine: engine,
		load:   load,
	}
}

// Run loads the graph and analyzes it. reason is logged, e.g.
// "initial analysis" or "graph changed".
func (r *Runner) Run(ctx context.Context, reason string) (*model.Result, error) {
	// Lock to prevent concurrent analysis
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx = logging.WithRunID(ctx, uuid.NewString())
	logging.InfoContext(ctx, "starting analysis", "reason", reason)

	g, err := r.load(ctx)
	if err != nil {
		logging.ErrorContext(ctx, "could not load graph", "error", err)
		return nil, fmt.Errorf("load graph: %w", err)
	}
	logging.DebugContext(ctx, "graph loaded", "nodes", len(g.Nodes))

	result, err := r.engine.Analyze(ctx, g)
	if err != nil {
		return nil, err
	}

	logging.InfoContext(ctx, "analysis finished", "reason", reason, "warnings", result.Stats.TotalWarnings)
	return result, nil
}

package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/ritzau/codewarn/pkg/cycles"
	"github.com/ritzau/codewarn/pkg/graph"
	"github.com/ritzau/codewarn/pkg/model"
)

// Circular emits one warning per import cycle among files.
func Circular(files []*model.FileNode, imports *graph.Directed, key cycles.KeyFunc, now time.Time) []model.Warning {
	if key == nil {
		key = cycles.MemberSetKey
	}

	names := make(map[string]string, len(files))
	paths := make(map[string]string, len(files))
	for _, f := range files {
		names[f.ID] = f.Name
		paths[f.ID] = f.FilePath
	}

	var warnings []model.Warning
	for _, c := range cycles.FindCycles(imports, key) {
		labels := labelsOf(c.Members, names)
		chain := labelsOf(c.Members, paths)
		chain = append(chain, chain[0])

		warnings = append(warnings, model.Warning{
			ID:       WarningID(model.CategoryCircularDependency, key(c.Members)),
			Category: model.CategoryCircularDependency,
			Level:    model.LevelWarning,
			Title:    fmt.Sprintf("Circular dependency: %s", strings.Join(labels, " → ")),
			Description: fmt.Sprintf("%d files import each other in a cycle: %s. Cycles make module "+
				"initialization order fragile and the files impossible to reuse separately.", len(c.Members), strings.Join(chain, " → ")),
			AffectedNodes: c.Members,
			Suggestion: model.Suggestion{
				Summary:   "Break the cycle by extracting the shared code into a separate module",
				Reasoning: "Moving what both sides need into a third module, or inverting one import through a parameter or interface, removes the mutual dependency.",
			},
			DetectedAt: now,
		})
	}
	return warnings
}

// FunctionCircular emits one warning per group of mutually recursive
// functions.
func FunctionCircular(functions []*model.FunctionNode, calls *graph.Directed, now time.Time) []model.Warning {
	names := make(map[string]string, len(functions))
	for _, fn := range functions {
		names[fn.ID] = fn.Name
	}

	var warnings []model.Warning
	for _, group := range cycles.StronglyConnected(calls) {
		labels := labelsOf(group, names)

		warnings = append(warnings, model.Warning{
			ID:       WarningID(model.CategoryCircularDependency, append([]string{"function"}, group...)...),
			Category: model.CategoryCircularDependency,
			Level:    model.LevelWarning,
			Title:    fmt.Sprintf("Mutually recursive functions: %s", strings.Join(labels, ", ")),
			Description: fmt.Sprintf("%d functions call each other in a cycle. Unless the recursion is "+
				"intentional, this usually means responsibilities are tangled.", len(group)),
			AffectedNodes: group,
			Suggestion: model.Suggestion{
				Summary:   "Check that the recursion is intentional and has a clear base case",
				Reasoning: "Indirect recursion across functions is hard to follow. Merging the functions or passing a callback makes the control flow explicit.",
			},
			DetectedAt: now,
		})
	}
	return warnings
}

func labelsOf(ids []string, names map[string]string) []string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := names[id]; ok && name != "" {
			labels[i] = name
		} else {
			labels[i] = id
		}
	}
	return labels
}

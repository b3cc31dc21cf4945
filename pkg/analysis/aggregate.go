package analysis

import "github.com/ritzau/codewarn/pkg/model"

// Aggregate concatenates the warning groups in the given order and writes
// them with their statistics onto result. Every level is present in the
// per-level counts, zero included.
func Aggregate(result *model.Result, groups ...[]model.Warning) {
	total := 0
	for _, g := range groups {
		total += len(g)
	}

	warnings := make([]model.Warning, 0, total)
	for _, g := range groups {
		warnings = append(warnings, g...)
	}

	byLevel := make(map[model.Level]int, len(model.Levels))
	for _, level := range model.Levels {
		byLevel[level] = 0
	}
	for _, w := range warnings {
		byLevel[w.Level]++
	}

	result.Warnings = warnings
	result.Stats = model.Stats{
		TotalWarnings:   len(warnings),
		WarningsByLevel: byLevel,
	}
}

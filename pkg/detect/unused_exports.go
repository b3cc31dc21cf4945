package detect

import (
	"fmt"
	"time"

	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/resolve"
	"github.com/ritzau/codewarn/pkg/usage"
)

// UnusedExports flags exports that appear nowhere in the usage index.
// conventions is nil when framework conventions are disabled.
func UnusedExports(files []*model.FileNode, used usage.Index, conventions ConventionMatcher, now time.Time) []model.Warning {
	var warnings []model.Warning

	for _, file := range files {
		if resolve.IsIndexFile(file.FilePath) {
			continue
		}

		module := resolve.ModulePath(file.FilePath)
		if used.Uses(module, usage.Namespace) {
			continue
		}

		for _, exp := range file.Exports {
			if exp.Kind == model.ExportReexport || exp.IsTypeExport() {
				continue
			}
			if exp.ExportedName() == "" && !exp.IsDefault {
				continue
			}
			if conventions != nil && isConventionExport(conventions, exp, file.FilePath) {
				continue
			}

			if exp.IsDefault {
				if used.Uses(module, usage.Default) {
					continue
				}
			} else if used.Uses(module, exp.ExportedName()) {
				continue
			}

			warnings = append(warnings, unusedExportWarning(file, exp, now))
		}
	}
	return warnings
}

func isConventionExport(conventions ConventionMatcher, exp model.ExportInfo, filePath string) bool {
	if exp.IsDefault && conventions.IsConvention(usage.Default, filePath) {
		return true
	}
	return conventions.IsConvention(exp.ExportedName(), filePath)
}

func unusedExportWarning(file *model.FileNode, exp model.ExportInfo, now time.Time) model.Warning {
	name := exp.ExportedName()
	if exp.IsDefault {
		name = "default"
	}

	return model.Warning{
		ID:       WarningID(model.CategoryUnusedExport, file.ID, name),
		Category: model.CategoryUnusedExport,
		Level:    model.LevelInfo,
		Title:    fmt.Sprintf("Unused export: %s", exp.ExportedName()),
		Description: fmt.Sprintf("%s exports %s but no file in the project imports it.",
			file.FilePath, exp.ExportedName()),
		AffectedNodes: []string{file.ID},
		Suggestion: model.Suggestion{
			Summary:   "Remove the export keyword, or the declaration if it is unused locally too",
			Reasoning: "An export nobody imports widens the module's public surface for no benefit and hides dead code from local analysis.",
		},
		DetectedAt: now,
	}
}

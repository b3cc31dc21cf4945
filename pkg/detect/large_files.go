package detect

import (
	"fmt"
	"time"

	"github.com/ritzau/codewarn/pkg/model"
)

// DefaultLargeFileThreshold is the line count above which a file is flagged.
const DefaultLargeFileThreshold = 500

// LargeFiles flags files longer than threshold lines. Files longer than
// twice the threshold are warnings, the rest are info.
func LargeFiles(files []*model.FileNode, threshold int, now time.Time) []model.Warning {
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}

	var warnings []model.Warning
	for _, file := range files {
		if file.EndLine <= threshold {
			continue
		}

		level := model.LevelInfo
		if file.EndLine > 2*threshold {
			level = model.LevelWarning
		}

		warnings = append(warnings, model.Warning{
			ID:       WarningID(model.CategoryLargeFile, file.ID),
			Category: model.CategoryLargeFile,
			Level:    level,
			Title:    fmt.Sprintf("Large file: %s (%d lines)", file.Name, file.EndLine),
			Description: fmt.Sprintf("%s has %d lines, above the threshold of %d.",
				file.FilePath, file.EndLine, threshold),
			AffectedNodes: []string{file.ID},
			Suggestion: model.Suggestion{
				Summary:   "Split the file into smaller modules by responsibility",
				Reasoning: "Long files tend to mix concerns, are harder to review and produce more merge conflicts.",
			},
			DetectedAt: now,
		})
	}
	return warnings
}

package model

import "time"

// Category groups warnings by the detector that produced them.
type Category string

const (
	CategoryCircularDependency Category = "circular-dependency"
	CategoryOrphanedCode       Category = "orphaned-code"
	CategoryUnusedExport       Category = "unused-export"
	CategoryLargeFile          Category = "large-file"
)

// Level is the severity of a warning.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Levels lists every level from least to most severe.
var Levels = []Level{LevelInfo, LevelWarning, LevelError}

// Severity returns the rank of the level, or -1 for unknown levels.
func (l Level) Severity() int {
	for i, lvl := range Levels {
		if lvl == l {
			return i
		}
	}
	return -1
}

// Suggestion tells the user how to address a warning.
type Suggestion struct {
	Summary     string `json:"summary"`
	Reasoning   string `json:"reasoning"`
	CodeExample string `json:"codeExample,omitempty"`
	AutoFixable bool   `json:"autoFixable"`
}

// Warning is a single actionable finding.
type Warning struct {
	ID            string     `json:"id"`
	Category      Category   `json:"category"`
	Level         Level      `json:"level"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AffectedNodes []string   `json:"affectedNodes"`
	Suggestion    Suggestion `json:"suggestion"`
	DetectedAt    time.Time  `json:"detectedAt"`
}

// Stats summarizes a warning list.
type Stats struct {
	TotalWarnings   int           `json:"totalWarnings"`
	WarningsByLevel map[Level]int `json:"warningsByLevel"`
}

// Result is the container an analysis run writes its output into.
type Result struct {
	Warnings []Warning `json:"warnings"`
	Stats    Stats     `json:"stats"`
}

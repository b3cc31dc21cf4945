package watcher

import "strings"

// ChangeAnalysis describes what changed and what a rerun has to reload
type ChangeAnalysis struct {
	ReloadConfig bool // Options, aliases or conventions may differ
	ReloadGraph  bool
	Rescan       bool // Ancillary scans see different files
	ChangedFiles []string
}

// AnalyzeChanges determines what needs to be reloaded based on what changed
func AnalyzeChanges(batch Batch) *ChangeAnalysis {
	analysis := &ChangeAnalysis{}

	for _, event := range batch.Events {
		analysis.ChangedFiles = append(analysis.ChangedFiles, event.Paths...)

		switch event.Type {
		case ChangeTypeConfig:
			// Config changes can touch every detector and the alias table
			analysis.ReloadConfig = true
			analysis.ReloadGraph = true
			analysis.Rescan = true

		case ChangeTypeGraph:
			analysis.ReloadGraph = true

		case ChangeTypeSource:
			// The graph may not be regenerated yet, but tests and
			// components are scanned directly
			analysis.Rescan = true
		}
	}

	return analysis
}

// Reason summarizes the analysis for logs.
func (a *ChangeAnalysis) Reason() string {
	var parts []string
	if a.ReloadConfig {
		parts = append(parts, "config")
	}
	if a.ReloadGraph && !a.ReloadConfig {
		parts = append(parts, "graph")
	}
	if a.Rescan && !a.ReloadConfig {
		parts = append(parts, "sources")
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, "+") + " changed"
}

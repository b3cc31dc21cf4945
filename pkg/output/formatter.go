package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/codewarn/pkg/model"
)

var categoryTitles = map[model.Category]string{
	model.CategoryCircularDependency: "CIRCULAR DEPENDENCIES",
	model.CategoryOrphanedCode:       "ORPHANED CODE",
	model.CategoryUnusedExport:       "UNUSED EXPORTS",
	model.CategoryLargeFile:          "LARGE FILES",
}

var categoryOrder = []model.Category{
	model.CategoryCircularDependency,
	model.CategoryOrphanedCode,
	model.CategoryUnusedExport,
	model.CategoryLargeFile,
}

func levelColor(level model.Level) *color.Color {
	switch level {
	case model.LevelError:
		return color.New(color.FgRed, color.Bold)
	case model.LevelWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// PrintReport writes a colored, human readable report grouped by category
func PrintReport(w io.Writer, project string, result *model.Result) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	// Header
	bold.Fprintln(w, "codewarn - Code Health Report")
	bold.Fprintln(w, "=============================")
	fmt.Fprintf(w, "Project: %s\n", project)
	fmt.Fprintln(w)

	if len(result.Warnings) == 0 {
		green.Fprintln(w, "✓ No warnings found")
		return
	}

	byCategory := make(map[model.Category][]model.Warning)
	for _, warning := range result.Warnings {
		byCategory[warning.Category] = append(byCategory[warning.Category], warning)
	}

	for _, category := range categories(byCategory) {
		warnings := byCategory[category]
		bold.Fprintf(w, "%s (%d)\n", title(category), len(warnings))
		for _, warning := range warnings {
			c := levelColor(warning.Level)
			c.Fprintf(w, "  [%s] ", strings.ToUpper(string(warning.Level)))
			fmt.Fprintln(w, warning.Title)
			if warning.Description != "" {
				fmt.Fprintf(w, "    %s\n", warning.Description)
			}
			if warning.Suggestion.Summary != "" {
				faint.Fprintf(w, "    Suggestion: %s\n", warning.Suggestion.Summary)
			}
		}
		fmt.Fprintln(w)
	}

	printSummary(w, result.Stats)
}

func printSummary(w io.Writer, stats model.Stats) {
	summaryColor := levelColor(model.LevelInfo)
	parts := make([]string, 0, len(model.Levels))
	for _, level := range model.Levels {
		n := stats.WarningsByLevel[level]
		parts = append(parts, fmt.Sprintf("%d %s", n, level))
		if n > 0 {
			summaryColor = levelColor(level)
		}
	}
	summaryColor.Fprintf(w, "Summary: %d warning(s) (%s)\n", stats.TotalWarnings, strings.Join(parts, ", "))
}

// categories returns the known categories in report order, then any others
// sorted by name.
func categories(byCategory map[model.Category][]model.Warning) []model.Category {
	var out []model.Category
	known := make(map[model.Category]bool, len(categoryOrder))
	for _, c := range categoryOrder {
		known[c] = true
		if len(byCategory[c]) > 0 {
			out = append(out, c)
		}
	}

	var extra []model.Category
	for c := range byCategory {
		if !known[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func title(c model.Category) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return strings.ToUpper(string(c))
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// Write renders result in the named format, "text" or "json".
func Write(w io.Writer, format, project string, result *model.Result) error {
	switch format {
	case "json":
		return WriteJSON(w, result)
	case "text", "":
		PrintReport(w, project, result)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

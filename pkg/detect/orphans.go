package detect

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ritzau/codewarn/pkg/model"
)

// EntryPointMatcher tells which function names are called from outside the
// code graph. *conventions.Matcher implements it.
type EntryPointMatcher interface {
	IsEntryPoint(name string) bool
}

// ConventionMatcher additionally knows framework hooks and config files.
type ConventionMatcher interface {
	EntryPointMatcher
	IsFrameworkHook(name, filePath string) bool
	IsConfigFile(filePath string) bool
	IsConvention(name, filePath string) bool
}

// OrphanOptions configure the orphan detector.
type OrphanOptions struct {
	EntryPoints EntryPointMatcher
	// Frameworks is nil when framework conventions are disabled.
	Frameworks ConventionMatcher
}

// Orphans flags unexported top-level functions that nothing appears to
// reference. Clearance is by bare name across files, so two functions that
// share a name clear each other.
func Orphans(p model.Partition, opts OrphanOptions, now time.Time) []model.Warning {
	imported, exported := projectNames(p.Files)

	filesByID := make(map[string]*model.FileNode, len(p.Files))
	filesByPath := make(map[string]*model.FileNode, len(p.Files))
	for _, f := range p.Files {
		filesByID[f.ID] = f
		filesByPath[f.FilePath] = f
	}

	siblings := make(map[string][]*model.FunctionNode)
	for _, fn := range p.Functions {
		key := fileKey(fn)
		siblings[key] = append(siblings[key], fn)
	}

	var warnings []model.Warning
	for _, fn := range p.Functions {
		if !isOrphanCandidate(fn, opts) {
			continue
		}

		if _, ok := imported[fn.Name]; ok {
			continue
		}
		if _, ok := exported[fn.Name]; ok {
			continue
		}

		file := filesByID[fn.ParentFileID]
		if file == nil {
			file = filesByPath[fn.FilePath]
		}
		if file != nil && slices.Contains(file.TopLevelReferences, fn.Name) {
			continue
		}
		if referencedBySibling(fn, siblings[fileKey(fn)]) {
			continue
		}

		warnings = append(warnings, orphanWarning(fn, now))
	}
	return warnings
}

func isOrphanCandidate(fn *model.FunctionNode, opts OrphanOptions) bool {
	switch {
	case fn.IsExported, fn.ParentClassID != "":
		return false
	case fn.Name == "", strings.HasPrefix(fn.Name, "_"):
		return false
	case opts.EntryPoints != nil && opts.EntryPoints.IsEntryPoint(fn.Name):
		return false
	}

	if opts.Frameworks != nil {
		if opts.Frameworks.IsFrameworkHook(fn.Name, fn.FilePath) || opts.Frameworks.IsConfigFile(fn.FilePath) {
			return false
		}
	}
	return true
}

func referencedBySibling(fn *model.FunctionNode, siblings []*model.FunctionNode) bool {
	for _, other := range siblings {
		if other.ID == fn.ID {
			continue
		}
		if slices.Contains(other.References, fn.Name) {
			return true
		}
	}
	return false
}

// projectNames collects every imported and every exported name in the
// project.
func projectNames(files []*model.FileNode) (imported, exported map[string]struct{}) {
	imported = make(map[string]struct{})
	exported = make(map[string]struct{})

	for _, f := range files {
		for _, imp := range f.Imports {
			for _, item := range imp.Items {
				imported[item.Name] = struct{}{}
			}
		}
		for _, exp := range f.Exports {
			exported[exp.Name] = struct{}{}
			exported[exp.ExportedName()] = struct{}{}
		}
	}
	return imported, exported
}

func fileKey(fn *model.FunctionNode) string {
	if fn.ParentFileID != "" {
		return fn.ParentFileID
	}
	return "path:" + fn.FilePath
}

func orphanWarning(fn *model.FunctionNode, now time.Time) model.Warning {
	return model.Warning{
		ID:       WarningID(model.CategoryOrphanedCode, fn.ID),
		Category: model.CategoryOrphanedCode,
		Level:    model.LevelInfo,
		Title:    fmt.Sprintf("Possibly unused function: %s", fn.Name),
		Description: fmt.Sprintf("%s in %s is not exported and no code in the project refers to it.",
			fn.Name, fn.FilePath),
		AffectedNodes: []string{fn.ID},
		Suggestion: model.Suggestion{
			Summary:     "Export it if it is needed elsewhere, otherwise delete it",
			Reasoning:   "Unreferenced private functions are dead code. If something outside the analyzed graph calls it, exporting it makes that dependency visible.",
			CodeExample: fmt.Sprintf("export function %s(...) { ... }", fn.Name),
		},
		DetectedAt: now,
	}
}

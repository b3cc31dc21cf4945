// Package reexport derives the barrel re-export tables of a file graph.
package reexport

import (
	"sort"

	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/resolve"
)

// Star is the name of a star re-export, and of a namespace import.
const Star = "*"

// Entry is a named re-export as seen from the barrel.
type Entry struct {
	Source       string // Resolved module path of the target
	OriginalName string // Name the target module defines
}

// Maps holds the re-export tables. Both are keyed by barrel module path.
// Barrels named index are also keyed by their directory.
type Maps struct {
	Named map[string]map[string]Entry // barrel -> exportedName -> entry
	Star  map[string][]string         // barrel -> target modules
}

// Build scans every re-export of every file. The maps are read-only once
// built.
func Build(files []*model.FileNode, resolver *resolve.Resolver) *Maps {
	m := &Maps{
		Named: make(map[string]map[string]Entry),
		Star:  make(map[string][]string),
	}

	for _, file := range files {
		keys := barrelKeys(file.FilePath)

		for _, exp := range file.Exports {
			if exp.Kind != model.ExportReexport || exp.Source == "" || exp.Name == "" {
				continue
			}

			source, local := resolver.Resolve(exp.Source, file.FilePath)
			if !local {
				continue
			}

			if exp.Name == Star && exp.Alias == "" {
				for _, key := range keys {
					m.addStar(key, source)
				}
				continue
			}

			entry := Entry{Source: source, OriginalName: exp.Name}
			for _, key := range keys {
				m.addNamed(key, exp.ExportedName(), entry)
			}
		}
	}

	for key := range m.Star {
		sort.Strings(m.Star[key])
	}
	return m
}

// Lookup returns the named entry re-exported by barrel under exportedName.
func (m *Maps) Lookup(barrel, exportedName string) (Entry, bool) {
	entry, ok := m.Named[barrel][exportedName]
	return entry, ok
}

// NamedEntries returns every named entry of a barrel ordered by exported name.
func (m *Maps) NamedEntries(barrel string) []Entry {
	names := make([]string, 0, len(m.Named[barrel]))
	for name := range m.Named[barrel] {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, m.Named[barrel][name])
	}
	return entries
}

// StarSources returns the star re-export targets of a barrel.
func (m *Maps) StarSources(barrel string) []string {
	return m.Star[barrel]
}

func (m *Maps) addNamed(barrel, exportedName string, entry Entry) {
	named, ok := m.Named[barrel]
	if !ok {
		named = make(map[string]Entry)
		m.Named[barrel] = named
	}
	// First declaration wins
	if _, exists := named[exportedName]; !exists {
		named[exportedName] = entry
	}
}

func (m *Maps) addStar(barrel, source string) {
	for _, s := range m.Star[barrel] {
		if s == source {
			return
		}
	}
	m.Star[barrel] = append(m.Star[barrel], source)
}

func barrelKeys(filePath string) []string {
	keys := []string{resolve.ModulePath(filePath)}
	if dir, ok := resolve.IndexDir(filePath); ok {
		keys = append(keys, dir)
	}
	return keys
}

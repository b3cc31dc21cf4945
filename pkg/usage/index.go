// Package usage builds the import usage index: which names of which module
// are imported anywhere in the project.
package usage

import "sort"

// Markers recorded instead of a concrete name.
const (
	Default   = "default"
	Namespace = "*"
)

// Index maps a resolved module path to the set of names imported from it.
// "default" stands for the default export and "*" for the whole module.
type Index map[string]map[string]struct{}

// Add records name as used from module.
func (idx Index) Add(module, name string) {
	names, ok := idx[module]
	if !ok {
		names = make(map[string]struct{})
		idx[module] = names
	}
	names[name] = struct{}{}
}

// Merge adds every entry of other to idx. Merging is a set union, so it is
// idempotent and independent of order.
func (idx Index) Merge(other Index) {
	for module, names := range other {
		for name := range names {
			idx.Add(module, name)
		}
	}
}

// Uses reports whether name was recorded for module.
func (idx Index) Uses(module, name string) bool {
	_, ok := idx[module][name]
	return ok
}

// Names returns the sorted names recorded for module.
func (idx Index) Names(module string) []string {
	names := make([]string, 0, len(idx[module]))
	for name := range idx[module] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImportedNames returns the union of all names across modules, excluding the
// "default" and "*" markers.
func (idx Index) ImportedNames() map[string]struct{} {
	all := make(map[string]struct{})
	for _, names := range idx {
		for name := range names {
			if name == Default || name == Namespace {
				continue
			}
			all[name] = struct{}{}
		}
	}
	return all
}

package graph

import (
	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/resolve"
)

// ModuleIndex maps normalized module paths to file node ids.
type ModuleIndex map[string]string

// NewModuleIndex indexes files by module path and, for index files, by
// directory. A literal module path wins over an index directory.
func NewModuleIndex(files []*model.FileNode) ModuleIndex {
	idx := make(ModuleIndex, len(files))
	for _, file := range files {
		if dir, ok := resolve.IndexDir(file.FilePath); ok {
			if _, taken := idx[dir]; !taken {
				idx[dir] = file.ID
			}
		}
	}
	for _, file := range files {
		idx[resolve.ModulePath(file.FilePath)] = file.ID
	}
	return idx
}

// Lookup returns the file node id for a module path
func (m ModuleIndex) Lookup(module string) (string, bool) {
	id, ok := m[module]
	return id, ok
}

// BuildFileGraph builds the import graph between files. Imports that do not
// resolve to a file of the graph are dropped, as are self-imports.
func BuildFileGraph(files []*model.FileNode, resolver *resolve.Resolver) *Directed {
	d := NewDirected()
	modules := NewModuleIndex(files)

	for _, file := range files {
		d.AddNode(file.ID)

		for _, imp := range file.Imports {
			module, local := resolver.Resolve(imp.Source, file.FilePath)
			if !local {
				continue
			}
			if target, ok := modules.Lookup(module); ok {
				d.AddEdge(file.ID, target)
			}
		}
	}

	return d
}

// BuildCallGraph connects functions to the functions they reference. A
// reference resolves to a top-level function of the same file, or through
// the file's imports to an exported function of the imported file.
// Recursion on a single function is not an edge.
func BuildCallGraph(files []*model.FileNode, functions []*model.FunctionNode, resolver *resolve.Resolver) *Directed {
	d := NewDirected()
	modules := NewModuleIndex(files)

	fileByID := make(map[string]*model.FileNode, len(files))
	fileByPath := make(map[string]*model.FileNode, len(files))
	for _, file := range files {
		fileByID[file.ID] = file
		fileByPath[file.FilePath] = file
	}

	// file id -> function name -> function id, top-level functions only
	byFile := make(map[string]map[string]*model.FunctionNode)
	for _, fn := range functions {
		if fn.ParentClassID != "" || fn.Name == "" {
			continue
		}
		fileID := owningFile(fn, fileByPath)
		if byFile[fileID] == nil {
			byFile[fileID] = make(map[string]*model.FunctionNode)
		}
		if _, exists := byFile[fileID][fn.Name]; !exists {
			byFile[fileID][fn.Name] = fn
		}
	}

	for _, fn := range functions {
		d.AddNode(fn.ID)

		fileID := owningFile(fn, fileByPath)
		imports := importedBindings(fileByID[fileID], resolver, modules)

		for _, ref := range fn.References {
			if sibling, ok := byFile[fileID][ref]; ok {
				d.AddEdge(fn.ID, sibling.ID)
				continue
			}

			binding, ok := imports[ref]
			if !ok {
				continue
			}
			if target, ok := byFile[binding.fileID][binding.name]; ok && target.IsExported {
				d.AddEdge(fn.ID, target.ID)
			}
		}
	}

	return d
}

type binding struct {
	fileID string
	name   string // Name in the imported file
}

// importedBindings maps the local names of a file's named imports to the
// file and name they bind. Default and namespace imports are not followed.
func importedBindings(file *model.FileNode, resolver *resolve.Resolver, modules ModuleIndex) map[string]binding {
	bindings := make(map[string]binding)
	if file == nil {
		return bindings
	}

	for _, imp := range file.Imports {
		module, local := resolver.Resolve(imp.Source, file.FilePath)
		if !local {
			continue
		}
		target, ok := modules.Lookup(module)
		if !ok {
			continue
		}
		for _, item := range imp.Items {
			if item.IsDefault || item.IsNamespace {
				continue
			}
			bindings[item.LocalName()] = binding{fileID: target, name: item.Name}
		}
	}
	return bindings
}

func owningFile(fn *model.FunctionNode, fileByPath map[string]*model.FileNode) string {
	if fn.ParentFileID != "" {
		return fn.ParentFileID
	}
	if file, ok := fileByPath[fn.FilePath]; ok {
		return file.ID
	}
	return ""
}

package model

// ExportKind classifies an export statement.
type ExportKind string

const (
	ExportValue     ExportKind = "value"
	ExportType      ExportKind = "type"
	ExportInterface ExportKind = "interface"
	ExportReexport  ExportKind = "reexport"
)

// ExportInfo describes one exported symbol of a file.
type ExportInfo struct {
	Name       string     `json:"name"`
	Alias      string     `json:"alias,omitempty"`
	Kind       ExportKind `json:"kind"`
	IsDefault  bool       `json:"isDefault,omitempty"`
	IsTypeOnly bool       `json:"isTypeOnly,omitempty"`
	Source     string     `json:"source,omitempty"` // Only set for re-exports
}

// ExportedName returns the name importers have to write.
func (e ExportInfo) ExportedName() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// IsTypeExport reports whether the export only exists at type level.
func (e ExportInfo) IsTypeExport() bool {
	return e.IsTypeOnly || e.Kind == ExportType || e.Kind == ExportInterface
}

// ImportItem is a single binding of an import statement.
type ImportItem struct {
	Name        string `json:"name"`
	Alias       string `json:"alias,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
	IsNamespace bool   `json:"isNamespace,omitempty"`
}

// UsedName returns the name this item consumes from the imported module:
// "*" for namespace imports, "default" for default imports, the
// imported name otherwise.
func (i ImportItem) UsedName() string {
	switch {
	case i.IsNamespace:
		return "*"
	case i.IsDefault:
		return "default"
	default:
		return i.Name
	}
}

// LocalName returns the identifier the item is bound to in the importing file.
func (i ImportItem) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

// ImportInfo is one import statement as written in the source.
type ImportInfo struct {
	Source string       `json:"source"` // Raw specifier, e.g. "./utils" or "@/lib/db"
	Items  []ImportItem `json:"items,omitempty"`
}

// FileNode represents a source file.
type FileNode struct {
	ID                 string       `json:"id"`
	FilePath           string       `json:"filePath"` // Project-relative
	Name               string       `json:"name"`
	EndLine            int          `json:"endLine"`
	Exports            []ExportInfo `json:"exports,omitempty"`
	Imports            []ImportInfo `json:"imports,omitempty"`
	TopLevelReferences []string     `json:"topLevelReferences,omitempty"`
}

func (f *FileNode) NodeID() string { return f.ID }
func (f *FileNode) Kind() NodeKind { return KindFile }
func (f *FileNode) sealed()        {}

// FunctionNode represents a function or a class method.
type FunctionNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	FilePath      string   `json:"filePath"`
	ParentFileID  string   `json:"parentFileId,omitempty"`
	ParentClassID string   `json:"parentClassId,omitempty"` // Set for methods
	IsExported    bool     `json:"isExported,omitempty"`
	References    []string `json:"references,omitempty"`
}

func (f *FunctionNode) NodeID() string { return f.ID }
func (f *FunctionNode) Kind() NodeKind { return KindFunction }
func (f *FunctionNode) sealed()        {}

// ClassNode represents a class declaration.
type ClassNode struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	FilePath string   `json:"filePath"`
	Methods  []string `json:"methods,omitempty"` // FunctionNode IDs
}

func (c *ClassNode) NodeID() string { return c.ID }
func (c *ClassNode) Kind() NodeKind { return KindClass }
func (c *ClassNode) sealed()        {}

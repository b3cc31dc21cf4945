// Package scan finds imports in files the structural parser skips: test
// files and framework single-file components.
package scan

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported is returned for files no grammar applies to.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrSyntax is returned for sources the grammar cannot parse cleanly.
	ErrSyntax = errors.New("syntax error")
	// ErrNoCGO is returned when import scanning is unavailable due to missing CGO.
	ErrNoCGO = errors.New("import scanning requires CGO (tree-sitter)")
)

// Language is a grammar the scanners parse with.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
)

// LanguageFromExtension maps a script file extension to its grammar.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	default:
		return "", false
	}
}

// LanguageFromPath is LanguageFromExtension for a file path.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// Import is one runtime import of a file.
type Import struct {
	Source string   // Specifier as written
	Names  []string // Imported names, "default" or "*"
}

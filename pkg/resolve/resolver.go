package resolve

import (
	"path"
	"path/filepath"
	"strings"
)

// SourceExtensions are stripped from resolved module paths.
var SourceExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Resolver resolves import specifiers relative to the importing file.
type Resolver struct {
	aliases *Aliases
}

// NewResolver creates a resolver over a compiled alias table. A nil table is
// treated as empty.
func NewResolver(aliases *Aliases) *Resolver {
	return &Resolver{aliases: aliases}
}

// Resolve returns the normalized module path for specifier as seen from
// importerPath. The second result is false for bare specifiers (external
// packages), which are returned unchanged.
func (r *Resolver) Resolve(specifier, importerPath string) (string, bool) {
	spec := filepath.ToSlash(specifier)

	if target, ok := r.aliases.Match(spec); ok {
		// Alias targets are project-relative
		return StripExtension(resolveSegments(target)), true
	}

	if isRelative(spec) {
		dir := path.Dir(filepath.ToSlash(importerPath))
		return StripExtension(resolveSegments(dir, spec)), true
	}

	return specifier, false
}

// ModulePath returns the normalized module path of a project file,
// e.g. "src/utils/math.ts" -> "src/utils/math".
func ModulePath(filePath string) string {
	return StripExtension(resolveSegments(filepath.ToSlash(filePath)))
}

// IndexDir returns the directory module path for index files,
// e.g. "src/feature/index.ts" -> "src/feature".
func IndexDir(filePath string) (string, bool) {
	mp := ModulePath(filePath)
	if path.Base(mp) != "index" {
		return "", false
	}
	dir := path.Dir(mp)
	if dir == "." {
		dir = ""
	}
	return dir, true
}

// IsIndexFile reports whether filePath is an index module with a known
// source extension.
func IsIndexFile(filePath string) bool {
	base := path.Base(filepath.ToSlash(filePath))
	for _, ext := range SourceExtensions {
		if base == "index"+ext {
			return true
		}
	}
	return false
}

// StripExtension removes a known source extension.
func StripExtension(p string) string {
	for _, ext := range SourceExtensions {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// resolveSegments joins the parts and resolves "." and ".." token-wise.
// ".." at the project root is dropped.
func resolveSegments(parts ...string) string {
	var stack []string
	for _, part := range parts {
		for _, seg := range strings.Split(part, "/") {
			switch seg {
			case "", ".":
			case "..":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			default:
				stack = append(stack, seg)
			}
		}
	}
	return strings.Join(stack, "/")
}

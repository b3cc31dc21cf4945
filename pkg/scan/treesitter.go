//go:build cgo

package scan

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: language %q", ErrUnsupported, lang)
	}
}

// ExtractImports parses source and returns its runtime imports. Type-only
// imports are left out. A source with syntax errors yields ErrSyntax.
func ExtractImports(ctx context.Context, source []byte, lang Language) ([]Import, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	// Parsers are not safe for concurrent use, so each call gets its own
	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrSyntax
	}

	var imports []Import
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			if imp, ok := importStatement(n, source); ok {
				imports = append(imports, imp)
			}
			return false
		case "export_statement":
			if imp, ok := reexportStatement(n, source); ok {
				imports = append(imports, imp)
			}
		case "call_expression":
			if imp, ok := dynamicImport(n, source); ok {
				imports = append(imports, imp)
			}
		}
		return true
	})
	return imports, nil
}

// walk visits n and its descendants depth first. Returning false from visit
// skips the children of that node.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

// importStatement handles "import ... from 'x'".
func importStatement(n *sitter.Node, source []byte) (Import, bool) {
	var imp Import
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "type", "typeof":
			// import type { ... } from 'x'
			return Import{}, false
		case "import_clause":
			imp.Names = importClause(child, source)
		case "string":
			imp.Source = stringContent(child, source)
		}
	}
	return imp, imp.Source != "" && len(imp.Names) > 0
}

func importClause(n *sitter.Node, source []byte) []string {
	var names []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			// import foo from 'bar'
			names = append(names, "default")
		case "namespace_import":
			// import * as foo from 'bar'
			names = append(names, "*")
		case "named_imports":
			// import { a, type B, c as d } from 'bar'
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" || hasTypeModifier(spec) {
					continue
				}
				if name := spec.ChildByFieldName("name"); name != nil {
					names = append(names, unquote(name.Content(source)))
				}
			}
		}
	}
	return names
}

// reexportStatement handles "export { a } from 'x'" and "export * from 'x'".
func reexportStatement(n *sitter.Node, source []byte) (Import, bool) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return Import{}, false
	}

	imp := Import{Source: stringContent(src, source)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "type":
			return Import{}, false
		case "*", "namespace_export":
			imp.Names = append(imp.Names, "*")
		case "export_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "export_specifier" || hasTypeModifier(spec) {
					continue
				}
				if name := spec.ChildByFieldName("name"); name != nil {
					imp.Names = append(imp.Names, unquote(name.Content(source)))
				}
			}
		}
	}
	return imp, imp.Source != "" && len(imp.Names) > 0
}

// dynamicImport handles import('x') and require('x'), which take the whole
// module.
func dynamicImport(n *sitter.Node, source []byte) (Import, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return Import{}, false
	}
	if fn.Type() != "import" && !(fn.Type() == "identifier" && fn.Content(source) == "require") {
		return Import{}, false
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return Import{}, false
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return Import{}, false
	}
	return Import{Source: stringContent(arg, source), Names: []string{"*"}}, true
}

func hasTypeModifier(spec *sitter.Node) bool {
	for i := 0; i < int(spec.ChildCount()); i++ {
		switch spec.Child(i).Type() {
		case "type", "typeof":
			return true
		}
	}
	return false
}

func stringContent(n *sitter.Node, source []byte) string {
	return unquote(n.Content(source))
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}

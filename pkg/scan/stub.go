//go:build !cgo

package scan

import "context"

// ExtractImports always fails in non-CGO builds, so every file is skipped.
func ExtractImports(ctx context.Context, source []byte, lang Language) ([]Import, error) {
	return nil, ErrNoCGO
}

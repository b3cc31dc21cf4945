package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/codewarn/pkg/finder"
	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/resolve"
	"github.com/ritzau/codewarn/pkg/usage"
)

var log = logging.New("scan")

var (
	DefaultTestPatterns        = []string{"**/*.test.*", "**/*.spec.*"}
	DefaultFrameworkExtensions = []string{".vue", ".svelte", ".astro"}
)

// Config controls the ancillary scanners.
type Config struct {
	Extensions   []string // Framework component extensions
	TestPatterns []string // Globs over project-relative paths
	Gitignore    bool
	Cache        *Cache
	// Concurrency bounds parallel file parses, 0 means GOMAXPROCS
	Concurrency int
}

// DefaultConfig returns the default scanner configuration without a cache.
func DefaultConfig() Config {
	return Config{
		Extensions:   DefaultFrameworkExtensions,
		TestPatterns: DefaultTestPatterns,
		Gitignore:    true,
	}
}

type extractFunc func(ctx context.Context, relPath string, content []byte) ([]Import, error)

// FileScanner discovers project files and records their imports.
type FileScanner struct {
	name    string
	cfg     Config
	match   func(relPath string) bool
	extract extractFunc
}

var _ usage.Scanner = (*FileScanner)(nil)

// NewFrameworkScanner scans .vue, .svelte and .astro components.
func NewFrameworkScanner(cfg Config) *FileScanner {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultFrameworkExtensions
	}
	return &FileScanner{
		name:    "framework",
		cfg:     cfg,
		match:   finder.HasExtension(exts...),
		extract: extractComponent,
	}
}

// NewTestScanner scans test files matching cfg.TestPatterns.
func NewTestScanner(cfg Config) (*FileScanner, error) {
	patterns := cfg.TestPatterns
	if len(patterns) == 0 {
		patterns = DefaultTestPatterns
	}
	match, err := compileTestPatterns(patterns)
	if err != nil {
		return nil, err
	}
	return &FileScanner{
		name:    "tests",
		cfg:     cfg,
		match:   match,
		extract: extractScript,
	}, nil
}

// compileTestPatterns compiles each glob as written and, for "**/" prefixed
// globs, once more without the prefix so files at the root match too.
func compileTestPatterns(patterns []string) (func(string) bool, error) {
	var globs []glob.Glob
	for _, p := range patterns {
		variants := []string{p}
		if trimmed, ok := strings.CutPrefix(p, "**/"); ok {
			variants = append(variants, trimmed)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid test pattern %q: %w", p, err)
			}
			globs = append(globs, g)
		}
	}
	return func(relPath string) bool {
		for _, g := range globs {
			if g.Match(relPath) {
				return true
			}
		}
		return false
	}, nil
}

// Name implements usage.Scanner.
func (s *FileScanner) Name() string {
	return s.name
}

// Scan implements usage.Scanner. Files that cannot be read or parsed are
// skipped and only logged.
func (s *FileScanner) Scan(ctx context.Context, projectRoot string, resolver *resolve.Resolver) (usage.Index, error) {
	files, err := finder.FindFiles(projectRoot, finder.Options{Gitignore: s.cfg.Gitignore}, s.match)
	if err != nil {
		return nil, fmt.Errorf("discovering %s files: %w", s.name, err)
	}

	limit := s.cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([][]Import, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			imports, err := s.scanFile(gctx, projectRoot, rel)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.DebugContext(gctx, "skipping file", "scanner", s.name, "path", rel, "error", err)
				return nil
			}
			results[i] = imports
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := make(usage.Index)
	for i, rel := range files {
		for _, imp := range results[i] {
			source, _ := resolver.Resolve(imp.Source, rel)
			for _, name := range imp.Names {
				idx.Add(source, name)
			}
		}
	}

	log.DebugContext(ctx, "scanned files", "scanner", s.name, "files", len(files), "cached", s.cfg.Cache.Len())
	return idx, nil
}

func (s *FileScanner) scanFile(ctx context.Context, projectRoot, rel string) ([]Import, error) {
	content, err := os.ReadFile(filepath.Join(projectRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	key := s.name + ":" + rel
	if imports, ok := s.cfg.Cache.Get(key, content); ok {
		return imports, nil
	}

	imports, err := s.extract(ctx, rel, content)
	if err != nil {
		return nil, err
	}
	s.cfg.Cache.Put(key, content, imports)
	return imports, nil
}

// extractScript parses a whole file with the grammar its extension implies.
func extractScript(ctx context.Context, relPath string, content []byte) ([]Import, error) {
	lang, ok := LanguageFromPath(relPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, relPath)
	}
	return ExtractImports(ctx, content, lang)
}

// extractComponent parses every script block of a component. A block that
// fails to parse drops the whole file.
func extractComponent(ctx context.Context, relPath string, content []byte) ([]Import, error) {
	var imports []Import
	for _, block := range ExtractBlocks(relPath, content) {
		found, err := ExtractImports(ctx, block.Source, block.Lang)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", relPath, err)
		}
		imports = append(imports, found...)
	}
	return imports, nil
}

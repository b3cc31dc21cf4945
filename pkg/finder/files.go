// Package finder discovers project files for the ancillary scanners.
package finder

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// SkipDirs are never descended into.
var SkipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	".svelte-kit":  true,
	".astro":       true,
	".turbo":       true,
}

// Options configure a walk.
type Options struct {
	// Gitignore applies the project root's .gitignore.
	Gitignore bool
}

// FindFiles walks projectRoot and returns the project-relative,
// slash-separated paths accepted by match, sorted. Build output and
// dependency directories are skipped.
func FindFiles(projectRoot string, opts Options, match func(relPath string) bool) ([]string, error) {
	var ignored *ignore.GitIgnore
	if opts.Gitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(projectRoot, ".gitignore"))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		ignored = gi
	}

	var files []string
	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if SkipDirs[d.Name()] || (ignored != nil && ignored.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignored != nil && ignored.MatchesPath(rel) {
			return nil
		}
		if match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// HasExtension returns a matcher accepting files with one of exts.
func HasExtension(exts ...string) func(string) bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = true
	}
	return func(relPath string) bool {
		return set[strings.ToLower(filepath.Ext(relPath))]
	}
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package conventions holds the name and file conventions that make code
// look unused when a framework or build tool actually calls it.
package conventions

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// HookRule matches functions a framework calls by name in specific files.
// A function matches when its name matches one of Names and its file
// matches one of Files.
type HookRule struct {
	Framework string   `koanf:"framework"`
	Names     []string `koanf:"names"`
	Files     []string `koanf:"files"`
}

// RuleSet is the caller-supplied convention table. Patterns are globs;
// file patterns without a "/" match the base name.
type RuleSet struct {
	EntryPoints []string   `koanf:"entry-points"` // Case-insensitive name globs
	Hooks       []HookRule `koanf:"hooks"`
	ConfigFiles []string   `koanf:"config-files"`
}

var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// DefaultRuleSet returns the built-in conventions.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		EntryPoints: []string{
			"main", "index", "app", "init*", "setup*", "bootstrap*",
			"handler", "middleware", "router",
		},
		Hooks: []HookRule{
			{
				Framework: "next",
				Names:     httpMethods,
				Files:     []string{"route.{ts,js}"},
			},
			{
				Framework: "next",
				Names: []string{
					"default", "generateMetadata", "generateStaticParams", "generateViewport",
					"metadata", "viewport", "revalidate", "dynamic", "dynamicParams",
				},
				Files: []string{"{page,layout,template,loading,error,not-found}.{ts,tsx,js,jsx}"},
			},
			{
				Framework: "next",
				Names:     []string{"default", "getServerSideProps", "getStaticProps", "getStaticPaths"},
				Files:     []string{"pages/**", "**/pages/**"},
			},
			{
				Framework: "next",
				Names:     []string{"middleware", "config"},
				Files:     []string{"middleware.{ts,js}"},
			},
			{
				Framework: "remix",
				Names:     []string{"default", "loader", "action", "meta", "links", "headers", "handle", "ErrorBoundary", "shouldRevalidate"},
				Files:     []string{"**/routes/**", "**/root.{tsx,jsx}"},
			},
			{
				Framework: "sveltekit",
				Names:     []string{"load", "actions", "prerender", "ssr", "csr", "trailingSlash", "entries"},
				Files:     []string{"+page.{ts,js}", "+page.server.{ts,js}", "+layout.{ts,js}", "+layout.server.{ts,js}"},
			},
			{
				Framework: "sveltekit",
				Names:     append([]string{"fallback"}, httpMethods...),
				Files:     []string{"+server.{ts,js}"},
			},
			{
				Framework: "sveltekit",
				Names:     []string{"handle", "handleError", "handleFetch", "reroute"},
				Files:     []string{"hooks.{server,client}.{ts,js}"},
			},
			{
				Framework: "astro",
				Names:     append([]string{"getStaticPaths", "prerender", "ALL"}, httpMethods...),
				Files:     []string{"**/pages/**"},
			},
		},
		ConfigFiles: []string{
			"*.config.*", "*.config", ".eslintrc*", ".prettierrc*", "babel.config*",
		},
	}
}

type hook struct {
	names []glob.Glob
	files []fileGlob
}

type fileGlob struct {
	glob     glob.Glob
	baseOnly bool
}

// Matcher is a compiled, immutable RuleSet.
type Matcher struct {
	entryPoints []glob.Glob
	hooks       []hook
	configFiles []fileGlob
}

// Compile compiles every pattern of rules.
func Compile(rules RuleSet) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range rules.EntryPoints {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid entry point pattern %q: %w", p, err)
		}
		m.entryPoints = append(m.entryPoints, g)
	}

	for _, rule := range rules.Hooks {
		var h hook
		for _, p := range rule.Names {
			g, err := glob.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("invalid %s hook name %q: %w", rule.Framework, p, err)
			}
			h.names = append(h.names, g)
		}
		files, err := compileFiles(rule.Files)
		if err != nil {
			return nil, fmt.Errorf("invalid %s hook file: %w", rule.Framework, err)
		}
		h.files = files
		m.hooks = append(m.hooks, h)
	}

	configFiles, err := compileFiles(rules.ConfigFiles)
	if err != nil {
		return nil, fmt.Errorf("invalid config file pattern: %w", err)
	}
	m.configFiles = configFiles

	return m, nil
}

// MustCompile is like Compile but panics on invalid patterns.
func MustCompile(rules RuleSet) *Matcher {
	m, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return m
}

func compileFiles(patterns []string) ([]fileGlob, error) {
	var out []fileGlob
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, fileGlob{glob: g, baseOnly: !strings.Contains(p, "/")})
	}
	return out, nil
}

func (f fileGlob) match(filePath string) bool {
	if f.baseOnly {
		return f.glob.Match(path.Base(filePath))
	}
	return f.glob.Match(filePath)
}

// IsEntryPoint reports whether name is an entry point, ignoring case.
func (m *Matcher) IsEntryPoint(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range m.entryPoints {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// IsFrameworkHook reports whether a framework calls name when defined in
// filePath.
func (m *Matcher) IsFrameworkHook(name, filePath string) bool {
	for _, h := range m.hooks {
		if matchAny(h.names, name) && matchFile(h.files, filePath) {
			return true
		}
	}
	return false
}

// IsConfigFile reports whether filePath is a build-tool config file.
func (m *Matcher) IsConfigFile(filePath string) bool {
	return matchFile(m.configFiles, filePath)
}

// IsConvention reports whether name in filePath is used by convention.
func (m *Matcher) IsConvention(name, filePath string) bool {
	return m.IsFrameworkHook(name, filePath) || m.IsConfigFile(filePath)
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

func matchFile(globs []fileGlob, filePath string) bool {
	for _, g := range globs {
		if g.match(filePath) {
			return true
		}
	}
	return false
}

// Package resolve turns import specifiers into normalized, project-relative
// module paths.
package resolve

import (
	"regexp"
	"strings"
)

// Alias is one entry of a path alias table, e.g. "@/*" -> ["src/*"].
// A "*" in the pattern and in each target is a wildcard.
type Alias struct {
	Pattern string   `koanf:"pattern" json:"pattern"`
	Targets []string `koanf:"targets" json:"targets"`
}

type compiledAlias struct {
	pattern string
	re      *regexp.Regexp
	target  string
}

// Aliases is an alias table compiled into reusable matchers.
// Entries keep table order and the first matching entry wins.
type Aliases struct {
	entries []compiledAlias
}

// CompileAliases compiles the alias table once for an analysis run.
// Entries with an empty pattern or no targets are dropped; they never match.
func CompileAliases(table []Alias) *Aliases {
	a := &Aliases{}
	for _, alias := range table {
		if alias.Pattern == "" || len(alias.Targets) == 0 {
			continue
		}

		parts := strings.Split(alias.Pattern, "*")
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		re, err := regexp.Compile("^" + strings.Join(parts, "(.*)") + "$")
		if err != nil {
			continue
		}

		a.entries = append(a.entries, compiledAlias{
			pattern: alias.Pattern,
			re:      re,
			target:  alias.Targets[0],
		})
	}
	return a
}

// Len returns the number of usable entries.
func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Match resolves specifier against the table. The captured wildcard is
// substituted into the first target of the first matching entry and a
// leading "./" is stripped.
func (a *Aliases) Match(specifier string) (string, bool) {
	if a == nil {
		return "", false
	}

	for _, entry := range a.entries {
		m := entry.re.FindStringSubmatch(specifier)
		if m == nil {
			continue
		}

		target := entry.target
		if len(m) > 1 {
			target = strings.ReplaceAll(target, "*", m[1])
		}
		return strings.TrimPrefix(target, "./"), true
	}
	return "", false
}

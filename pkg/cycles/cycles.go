// Package cycles finds circular dependencies in directed graphs.
package cycles

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ritzau/codewarn/pkg/graph"
)

// Cycle is a closed chain of nodes in traversal order. The last member has
// an edge back to the first.
type Cycle struct {
	Members []string
}

// KeyFunc computes the deduplication key of a cycle.
type KeyFunc func(members []string) string

// MemberSetKey identifies a cycle by its sorted members. Two cycles over the
// same nodes collapse into one regardless of edge order.
func MemberSetKey(members []string) string {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	return strings.Join(sorted, "\x00")
}

// EdgeSequenceKey identifies a cycle by its ordered members, rotated to start
// at the smallest id. Distinct cycles over the same nodes stay distinct.
func EdgeSequenceKey(members []string) string {
	if len(members) == 0 {
		return ""
	}
	start := 0
	for i, m := range members {
		if m < members[start] {
			start = i
		}
	}
	rotated := append(slices.Clone(members[start:]), members[:start]...)
	return strings.Join(rotated, "\x00")
}

// KeyByName returns the key function for a configured name.
func KeyByName(name string) (KeyFunc, error) {
	switch name {
	case "", "members":
		return MemberSetKey, nil
	case "edges":
		return EdgeSequenceKey, nil
	default:
		return nil, fmt.Errorf("unknown cycle key %q (want members or edges)", name)
	}
}

// FindCycles walks g depth first from every unvisited node in id order. A
// back edge to a node on the recursion stack closes a cycle: the suffix of
// the current path starting at that node. Cycles with equal keys are
// reported once, in discovery order.
func FindCycles(g *graph.Directed, key KeyFunc) []Cycle {
	if key == nil {
		key = MemberSetKey
	}

	f := &finder{
		graph:   g,
		key:     key,
		visited: make(map[string]bool),
		onStack: make(map[string]int),
		seen:    make(map[string]bool),
	}

	for _, id := range g.NodeIDs() {
		if !f.visited[id] {
			f.visit(id)
		}
	}
	return f.cycles
}

type finder struct {
	graph   *graph.Directed
	key     KeyFunc
	visited map[string]bool
	onStack map[string]int // node -> position in path
	path    []string
	seen    map[string]bool
	cycles  []Cycle
}

func (f *finder) visit(id string) {
	f.visited[id] = true
	f.onStack[id] = len(f.path)
	f.path = append(f.path, id)

	for _, next := range f.graph.Successors(id) {
		if pos, ok := f.onStack[next]; ok {
			f.record(slices.Clone(f.path[pos:]))
			continue
		}
		if !f.visited[next] {
			f.visit(next)
		}
	}

	f.path = f.path[:len(f.path)-1]
	delete(f.onStack, id)
}

func (f *finder) record(members []string) {
	k := f.key(members)
	if f.seen[k] {
		return
	}
	f.seen[k] = true
	f.cycles = append(f.cycles, Cycle{Members: members})
}

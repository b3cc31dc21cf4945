package cycles

import (
	"slices"

	"github.com/ritzau/codewarn/pkg/graph"
)

// TarjanSCC finds all strongly connected components using Tarjan's algorithm
type TarjanSCC struct {
	graph   *graph.Directed
	index   int
	stack   []string
	onStack map[string]bool
	indices map[string]int
	lowLink map[string]int
	sccs    [][]string
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g *graph.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph:   g,
		onStack: make(map[string]bool),
		indices: make(map[string]int),
		lowLink: make(map[string]int),
	}
}

// FindSCCs finds all strongly connected components with more than one node
func (t *TarjanSCC) FindSCCs() [][]string {
	for _, id := range t.graph.NodeIDs() {
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

// strongConnect performs the recursive Tarjan's algorithm
func (t *TarjanSCC) strongConnect(id string) {
	// Set the depth index for this node
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++

	// Push node onto stack
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	// Consider successors of node
	for _, successor := range t.graph.Successors(id) {
		if _, visited := t.indices[successor]; !visited {
			// Successor has not yet been visited; recurse on it
			t.strongConnect(successor)
			t.lowLink[id] = min(t.lowLink[id], t.lowLink[successor])
		} else if t.onStack[successor] {
			// Successor is on stack and hence in the current SCC
			t.lowLink[id] = min(t.lowLink[id], t.indices[successor])
		}
	}

	// If id is a root node, pop the stack and create an SCC
	if t.lowLink[id] == t.indices[id] {
		var scc []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == id {
				break
			}
		}
		// Only add SCCs with more than one node (cycles)
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}

// StronglyConnected returns the groups of mutually reachable nodes, each
// sorted, ordered by their first member.
func StronglyConnected(g *graph.Directed) [][]string {
	sccs := NewTarjanSCC(g).FindSCCs()
	for _, scc := range sccs {
		slices.Sort(scc)
	}
	slices.SortFunc(sccs, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return sccs
}

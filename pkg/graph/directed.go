// Package graph builds the directed graphs the cycle detectors walk.
package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Directed is a directed graph keyed by node id strings.
type Directed struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // Map from node id to graph ID
	keys   map[int64]string // Map from graph ID to node id
	nextID int64
}

// NewDirected creates an empty graph
func NewDirected() *Directed {
	return &Directed{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		keys:  make(map[int64]string),
	}
}

// AddNode adds a node to the graph
func (d *Directed) AddNode(id string) {
	if _, exists := d.ids[id]; exists {
		return
	}

	d.ids[id] = d.nextID
	d.keys[d.nextID] = id
	d.graph.AddNode(simple.Node(d.nextID))
	d.nextID++
}

// AddEdge adds an edge from source to target, adding missing nodes.
// Self edges are ignored.
func (d *Directed) AddEdge(source, target string) {
	if source == target {
		return
	}

	d.AddNode(source)
	d.AddNode(target)

	sourceID := d.ids[source]
	targetID := d.ids[target]

	// Add edge if it doesn't already exist
	if !d.graph.HasEdgeFromTo(sourceID, targetID) {
		d.graph.SetEdge(d.graph.NewEdge(d.graph.Node(sourceID), d.graph.Node(targetID)))
	}
}

// Has reports whether id is a node of the graph
func (d *Directed) Has(id string) bool {
	_, ok := d.ids[id]
	return ok
}

// Len returns the number of nodes
func (d *Directed) Len() int {
	return len(d.ids)
}

// NodeIDs returns all node ids, sorted
func (d *Directed) NodeIDs() []string {
	ids := make([]string, 0, len(d.ids))
	for id := range d.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Successors returns the sorted targets of id's outgoing edges
func (d *Directed) Successors(id string) []string {
	gid, exists := d.ids[id]
	if !exists {
		return nil
	}

	var out []string
	iter := d.graph.From(gid)
	for iter.Next() {
		out = append(out, d.keys[iter.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// Edges returns all edges as [source, target] pairs, sorted
func (d *Directed) Edges() [][2]string {
	var edges [][2]string
	for _, source := range d.NodeIDs() {
		for _, target := range d.Successors(source) {
			edges = append(edges, [2]string{source, target})
		}
	}
	return edges
}

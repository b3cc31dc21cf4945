package model

import (
	"sort"
)

// NodeKind discriminates the node variants stored in a Graph.
type NodeKind string

const (
	KindFile     NodeKind = "file"
	KindFunction NodeKind = "function"
	KindClass    NodeKind = "class"
)

// Node is a vertex of the upstream code graph.
// The interface is sealed: the only implementations are *FileNode,
// *FunctionNode and *ClassNode.
type Node interface {
	NodeID() string
	Kind() NodeKind
	sealed()
}

// Graph is the node graph produced by the structural parser.
// It is read-only for the whole analysis run.
type Graph struct {
	ProjectRoot string          `json:"projectRoot,omitempty"`
	Nodes       map[string]Node `json:"nodes"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]Node),
	}
}

// AddNode adds a node to the graph. If a node with the same ID exists, it is replaced.
func (g *Graph) AddNode(node Node) {
	if g.Nodes == nil {
		g.Nodes = make(map[string]Node)
	}
	g.Nodes[node.NodeID()] = node
}

// Partition groups the graph's nodes by kind.
type Partition struct {
	Files     []*FileNode
	Functions []*FunctionNode
	Classes   []*ClassNode
}

// Partition splits the nodes by kind. Every slice is ordered by node ID so
// that detectors traverse the graph deterministically.
func (g *Graph) Partition() Partition {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var p Partition
	for _, id := range ids {
		switch n := g.Nodes[id].(type) {
		case *FileNode:
			p.Files = append(p.Files, n)
		case *FunctionNode:
			p.Functions = append(p.Functions, n)
		case *ClassNode:
			p.Classes = append(p.Classes, n)
		case nil:
		}
	}
	return p
}

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnknownNodeType is returned when a serialized node carries an unknown type tag.
var ErrUnknownNodeType = errors.New("unknown node type")

type nodeHeader struct {
	Type NodeKind `json:"type"`
}

// UnmarshalJSON decodes the tagged node map.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProjectRoot string                     `json:"projectRoot"`
		Nodes       map[string]json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	g.ProjectRoot = raw.ProjectRoot
	g.Nodes = make(map[string]Node, len(raw.Nodes))
	for id, msg := range raw.Nodes {
		node, err := decodeNode(id, msg)
		if err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}
		g.Nodes[id] = node
	}
	return nil
}

// MarshalJSON encodes the nodes with their type tag.
func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := make(map[string]any, len(g.Nodes))
	for id, n := range g.Nodes {
		switch v := n.(type) {
		case *FileNode:
			nodes[id] = struct {
				Type NodeKind `json:"type"`
				*FileNode
			}{KindFile, v}
		case *FunctionNode:
			nodes[id] = struct {
				Type NodeKind `json:"type"`
				*FunctionNode
			}{KindFunction, v}
		case *ClassNode:
			nodes[id] = struct {
				Type NodeKind `json:"type"`
				*ClassNode
			}{KindClass, v}
		}
	}
	return json.Marshal(struct {
		ProjectRoot string         `json:"projectRoot,omitempty"`
		Nodes       map[string]any `json:"nodes"`
	}{g.ProjectRoot, nodes})
}

func decodeNode(id string, msg json.RawMessage) (Node, error) {
	var hdr nodeHeader
	if err := json.Unmarshal(msg, &hdr); err != nil {
		return nil, err
	}

	var node Node
	switch hdr.Type {
	case KindFile:
		f := &FileNode{}
		if err := json.Unmarshal(msg, f); err != nil {
			return nil, err
		}
		if f.ID == "" {
			f.ID = id
		}
		node = f
	case KindFunction:
		f := &FunctionNode{}
		if err := json.Unmarshal(msg, f); err != nil {
			return nil, err
		}
		if f.ID == "" {
			f.ID = id
		}
		node = f
	case KindClass:
		c := &ClassNode{}
		if err := json.Unmarshal(msg, c); err != nil {
			return nil, err
		}
		if c.ID == "" {
			c.ID = id
		}
		node = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, hdr.Type)
	}

	if node.NodeID() != id {
		return nil, fmt.Errorf("id %q does not match map key", node.NodeID())
	}
	return node, nil
}

// LoadGraph reads a graph from a JSON file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}

	g := NewGraph()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("failed to decode graph %s: %w", path, err)
	}
	return g, nil
}

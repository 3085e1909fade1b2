package graphio

import (
	"encoding/json"
	"fmt"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

// =============================================================================
// Graph - Node Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for ROS node graphs.
// Used for API responses, storage, caching, and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// import → transform → export → re-import produces identical results.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is the unified node type for all serialization contexts.
type Node struct {
	Name           string                   `json:"name" bson:"name"`
	Group          string                   `json:"group,omitempty" bson:"group,omitempty"`
	Pos            [2]float64               `json:"pos" bson:"pos"`
	Color          [3]uint8                 `json:"color" bson:"color"`
	CallbackGroups []rosgraph.CallbackGroup `json:"callback_groups,omitempty" bson:"callback_groups,omitempty"`
}

// Edge represents one pub/sub relation over a topic.
type Edge struct {
	From  string `json:"from" bson:"from"`
	To    string `json:"to" bson:"to"`
	Topic string `json:"topic,omitempty" bson:"topic,omitempty"`
}

// =============================================================================
// rosgraph.Graph ↔ Graph Conversion
// =============================================================================

// FromGraph converts a graph to its serialization format.
// Nodes are sorted by name for deterministic output.
func FromGraph(g *rosgraph.Graph) Graph {
	nodes := g.Nodes()

	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}

	for i, n := range nodes {
		out.Nodes[i] = FromNode(n)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Topic: e.Topic})
	}
	return out
}

// FromNode converts a single node to its serialization format.
func FromNode(n *rosgraph.Node) Node {
	return Node{
		Name:           n.Name,
		Group:          n.Group,
		Pos:            n.Pos,
		Color:          n.Color,
		CallbackGroups: n.CallbackGroups,
	}
}

// ToGraph converts a serialized Graph back into the in-memory form.
// Edges referencing nodes absent from the node list are an error: a
// serialized graph is always self-contained.
func ToGraph(gj Graph) (*rosgraph.Graph, error) {
	g := rosgraph.New()

	for _, nj := range gj.Nodes {
		err := g.AddNode(rosgraph.Node{
			Name:           nj.Name,
			Group:          nj.Group,
			Pos:            nj.Pos,
			Color:          nj.Color,
			CallbackGroups: nj.CallbackGroups,
		})
		if err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.Name, err)
		}
	}

	for _, ej := range gj.Edges {
		if !g.HasNode(ej.From) || !g.HasNode(ej.To) {
			return nil, fmt.Errorf("edge %s→%s: %w", ej.From, ej.To, rosgraph.ErrDanglingEdge)
		}
		_ = g.AddEdge(rosgraph.Edge{From: ej.From, To: ej.To, Topic: ej.Topic})
	}
	return g, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

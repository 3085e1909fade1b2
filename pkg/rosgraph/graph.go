package rosgraph

import (
	"errors"
	"slices"
	"sort"
)

var (
	// ErrEmptyNodeName is returned by [Graph.AddNode] and [Graph.AddEdge] when
	// a node name is empty. All nodes must have non-empty names.
	ErrEmptyNodeName = errors.New("node name must not be empty")

	// ErrDuplicateNode is returned by [Graph.AddNode] and [Graph.Rename] when
	// a node with the same name already exists. Node names must be unique.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrUnknownNode is returned by [Graph.Rename] when the old name is not
	// present in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDanglingEdge is returned by [Graph.Validate] when an edge references
	// a node that doesn't exist. This indicates graph corruption.
	ErrDanglingEdge = errors.New("edge references unknown node")
)

// Node represents a ROS node in the graph. Name is the fully qualified node
// name (e.g. "/sensing/lidar/driver"). Group, Pos and Color are assigned by
// the layout stage; CallbackGroups is filled by the CARET importer when
// executor information is available.
//
// The zero value is not usable - Name must be set before adding to a Graph.
type Node struct {
	Name           string
	Group          string
	Pos            [2]float64
	Color          [3]uint8
	CallbackGroups []CallbackGroup
}

// Edge represents a directed publish/subscribe link between two nodes.
// Topic is the topic name carried by the link. Multiple edges between the
// same node pair with different topics are allowed (directed multigraph).
type Edge struct {
	From  string
	To    string
	Topic string
}

// Graph is a directed multigraph of ROS nodes and topic edges.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // node name -> successor names (one entry per edge)
	incoming map[string][]string // node name -> predecessor names (one entry per edge)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrEmptyNodeName if the node name is empty, or ErrDuplicateNode if
// a node with the same name already exists.
func (g *Graph) AddNode(n Node) error {
	if n.Name == "" {
		return ErrEmptyNodeName
	}
	if _, exists := g.nodes[n.Name]; exists {
		return ErrDuplicateNode
	}
	node := n
	g.nodes[node.Name] = &node
	return nil
}

// EnsureNode returns the node with the given name, creating it if necessary.
// Returns nil for an empty name.
func (g *Graph) EnsureNode(name string) *Node {
	if name == "" {
		return nil
	}
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name}
	g.nodes[name] = n
	return n
}

// AddEdge adds a directed edge between two nodes. Endpoints that don't exist
// yet are created, so importers can add edges without registering nodes
// first. Parallel edges between the same pair are allowed.
// Returns ErrEmptyNodeName if either endpoint is empty.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == "" || e.To == "" {
		return ErrEmptyNodeName
	}
	g.EnsureNode(e.From)
	g.EnsureNode(e.To)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given name and true, or nil and false if
// not found. The returned pointer refers to the actual node in the graph,
// so modifications affect the graph (except for name changes - use Rename).
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// HasNode reports whether a node with the given name exists.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Nodes returns all nodes sorted by name. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

// NodeNames returns all node names in sorted order.
func (g *Graph) NodeNames() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the names of nodes this node publishes to, one entry per
// edge. The returned slice should not be modified.
func (g *Graph) Children(name string) []string { return g.outgoing[name] }

// Parents returns the names of nodes publishing to this node, one entry per
// edge. The returned slice should not be modified.
func (g *Graph) Parents(name string) []string { return g.incoming[name] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(name string) int { return len(g.outgoing[name]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(name string) int { return len(g.incoming[name]) }

// Isolated returns the names of nodes with no edges, sorted.
func (g *Graph) Isolated() []string {
	var isolated []string
	for name := range g.nodes {
		if len(g.outgoing[name]) == 0 && len(g.incoming[name]) == 0 {
			isolated = append(isolated, name)
		}
	}
	sort.Strings(isolated)
	return isolated
}

// RemoveNode removes a node and all edges touching it.
// Removing a node that doesn't exist is a no-op.
func (g *Graph) RemoveNode(name string) {
	if _, ok := g.nodes[name]; !ok {
		return
	}
	delete(g.nodes, name)
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == name || e.To == name })
	for _, succ := range g.outgoing[name] {
		g.incoming[succ] = slices.DeleteFunc(g.incoming[succ], func(s string) bool { return s == name })
	}
	for _, pred := range g.incoming[name] {
		g.outgoing[pred] = slices.DeleteFunc(g.outgoing[pred], func(s string) bool { return s == name })
	}
	delete(g.outgoing, name)
	delete(g.incoming, name)
}

// RemoveNodes removes all listed nodes and their edges.
func (g *Graph) RemoveNodes(names []string) {
	for _, name := range names {
		g.RemoveNode(name)
	}
}

// RemoveEdges removes every edge for which match returns true and returns
// the number of edges removed. Endpoint nodes are kept.
func (g *Graph) RemoveEdges(match func(Edge) bool) int {
	removed := 0
	kept := g.edges[:0]
	for _, e := range g.edges {
		if match(e) {
			g.outgoing[e.From] = removeFirst(g.outgoing[e.From], e.To)
			g.incoming[e.To] = removeFirst(g.incoming[e.To], e.From)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	return removed
}

func removeFirst(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Rename relabels nodes according to mapping (old name -> new name), updating
// all edges and adjacency indices. Names not present in the mapping are kept.
// Returns ErrUnknownNode if an old name doesn't exist, ErrEmptyNodeName if a
// new name is empty, or ErrDuplicateNode if a new name collides with an
// existing node outside the mapping.
func (g *Graph) Rename(mapping map[string]string) error {
	for oldName, newName := range mapping {
		if newName == "" {
			return ErrEmptyNodeName
		}
		if _, ok := g.nodes[oldName]; !ok {
			return ErrUnknownNode
		}
		if _, taken := g.nodes[newName]; taken && newName != oldName {
			if _, remapped := mapping[newName]; !remapped {
				return ErrDuplicateNode
			}
		}
	}

	rename := func(name string) string {
		if newName, ok := mapping[name]; ok {
			return newName
		}
		return name
	}

	nodes := make(map[string]*Node, len(g.nodes))
	for name, n := range g.nodes {
		n.Name = rename(name)
		nodes[n.Name] = n
	}
	g.nodes = nodes

	for i := range g.edges {
		g.edges[i].From = rename(g.edges[i].From)
		g.edges[i].To = rename(g.edges[i].To)
	}

	outgoing := make(map[string][]string, len(g.outgoing))
	for name, succs := range g.outgoing {
		renamed := make([]string, len(succs))
		for i, s := range succs {
			renamed[i] = rename(s)
		}
		outgoing[rename(name)] = renamed
	}
	g.outgoing = outgoing

	incoming := make(map[string][]string, len(g.incoming))
	for name, preds := range g.incoming {
		renamed := make([]string, len(preds))
		for i, p := range preds {
			renamed[i] = rename(p)
		}
		incoming[rename(name)] = renamed
	}
	g.incoming = incoming

	return nil
}

// Validate checks graph integrity and returns ErrDanglingEdge if any edge
// references a node that doesn't exist.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return ErrDanglingEdge
		}
		if _, ok := g.nodes[e.To]; !ok {
			return ErrDanglingEdge
		}
	}
	return nil
}

// FromTopicAssociation builds a graph from topic association maps: publishers
// maps a topic to the nodes publishing it, subscribers maps a topic to the
// nodes subscribing to it. One edge is added per (publisher, subscriber) pair
// of every topic present in both maps, labeled with the topic.
//
// Topics are processed in sorted order so the edge list is deterministic.
func FromTopicAssociation(publishers, subscribers map[string][]string) *Graph {
	g := New()
	topics := make([]string, 0, len(publishers))
	for topic := range publishers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		subs, ok := subscribers[topic]
		if !ok {
			continue
		}
		for _, pub := range publishers[topic] {
			for _, sub := range subs {
				_ = g.AddEdge(Edge{From: pub, To: sub, Topic: topic})
			}
		}
	}
	return g
}

package dot

import (
	"fmt"
	"os"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

// Options controls how a rosgraph.dot export is converted into a graph.
type Options struct {
	// KeepUnconnected retains nodes that have no pub/sub relation to any
	// other node. By default such nodes are left out of the graph.
	KeepUnconnected bool
}

// Load reads a rosgraph.dot file (as exported by rqt_graph) and converts it
// into a directed multigraph.
func Load(path string, opts Options) (*rosgraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, opts)
}

// Parse converts rosgraph.dot bytes into a directed multigraph.
//
// rqt_graph exports two dialects. In the nodes-only dialect every DOT node is
// a ROS node and edges carry the topic as their label. In the nodes/topics
// dialect topics appear as their own box-shaped DOT nodes between the
// ellipse-shaped ROS nodes; Parse collapses them back into labeled edges.
// The dialect is detected from the presence of box-shaped nodes.
func Parse(data []byte, opts Options) (*rosgraph.Graph, error) {
	doc, err := canonicalize(data)
	if err != nil {
		return nil, err
	}
	if hasTopicBoxes(doc) {
		return fromNodesAndTopics(doc, opts), nil
	}
	return fromNodesOnly(doc, opts)
}

func hasTopicBoxes(doc *document) bool {
	for _, attrs := range doc.nodes {
		if attrs["shape"] == "box" {
			return true
		}
	}
	return false
}

// fromNodesOnly handles the dialect where edges connect ROS nodes directly.
// DOT identifiers are rqt_graph-mangled; the display name lives in the label
// attribute, so unlabeled statements are skipped. The graph is assembled
// under the DOT identifiers and relabeled to display names in one pass.
func fromNodesOnly(doc *document, opts Options) (*rosgraph.Graph, error) {
	g := rosgraph.New()

	labels := make(map[string]string, len(doc.nodes))
	for _, id := range doc.nodeOrder {
		label := doc.nodes[id]["label"]
		if label == "" {
			continue
		}
		labels[id] = label
		if opts.KeepUnconnected {
			g.EnsureNode(id)
		}
	}

	for _, e := range doc.edges {
		topic := e.attrs["label"]
		_, okFrom := labels[e.from]
		_, okTo := labels[e.to]
		if !okFrom || !okTo || topic == "" {
			continue
		}
		_ = g.AddEdge(rosgraph.Edge{From: e.from, To: e.to, Topic: topic})
	}

	mapping := make(map[string]string, g.NodeCount())
	for _, id := range g.NodeNames() {
		mapping[id] = labels[id]
	}
	if err := g.Rename(mapping); err != nil {
		return nil, err
	}
	return g, nil
}

// fromNodesAndTopics handles the dialect where topics are box-shaped DOT
// nodes. Each node->topic edge records a publisher and each topic->node edge
// a subscriber; the pub/sub association then yields the same edge set the
// nodes-only dialect would produce.
func fromNodesAndTopics(doc *document, opts Options) *rosgraph.Graph {
	publishers := make(map[string][]string)
	subscribers := make(map[string][]string)

	for _, e := range doc.edges {
		src, okSrc := doc.nodes[e.from]
		dst, okDst := doc.nodes[e.to]
		if !okSrc || !okDst || src["label"] == "" || dst["label"] == "" {
			continue
		}
		switch {
		case src["shape"] != "box" && dst["shape"] == "box":
			topic := dst["label"]
			publishers[topic] = append(publishers[topic], src["label"])
		case src["shape"] == "box" && dst["shape"] != "box":
			topic := src["label"]
			subscribers[topic] = append(subscribers[topic], dst["label"])
		}
	}

	g := rosgraph.FromTopicAssociation(publishers, subscribers)
	if opts.KeepUnconnected {
		for _, id := range doc.nodeOrder {
			attrs := doc.nodes[id]
			if attrs["shape"] != "box" && attrs["label"] != "" {
				g.EnsureNode(attrs["label"])
			}
		}
	}
	return g
}

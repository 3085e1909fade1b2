package caret

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

// AllGraph selects every node in the architecture instead of a single named path.
const AllGraph = "all_graph"

// Options configures the CARET import.
type Options struct {
	// TargetPath restricts the graph to the nodes of one named path.
	// The default (empty or AllGraph) keeps the whole architecture.
	TargetPath string

	// KeepUnconnected keeps nodes that publish or subscribe nothing that is
	// consumed elsewhere. By default only connected nodes appear.
	KeepUnconnected bool
}

// Load reads a CARET architecture YAML file and converts it to a graph.
// Callback group annotations are attached to every node present in the
// architecture (see [Extend]).
func Load(path string, opts Options) (*rosgraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, opts)
}

// Parse converts CARET architecture YAML bytes to a graph.
func Parse(data []byte, opts Options) (*rosgraph.Graph, error) {
	var arch architecture
	if err := yaml.Unmarshal(data, &arch); err != nil {
		return nil, fmt.Errorf("decode architecture yaml: %w", err)
	}

	g, err := convert(&arch, opts)
	if err != nil {
		return nil, err
	}
	extend(&arch, g)
	return g, nil
}

// convert builds the pub/sub multigraph from the architecture node list.
func convert(arch *architecture, opts Options) (*rosgraph.Graph, error) {
	publishers := make(map[string][]string)
	subscribers := make(map[string][]string)
	var nodeNames []string

	for _, node := range arch.Nodes {
		if node.NodeName == "" {
			continue
		}
		nodeNames = append(nodeNames, node.NodeName)
		for _, pub := range node.Publishes {
			publishers[pub.TopicName] = append(publishers[pub.TopicName], node.NodeName)
		}
		for _, sub := range node.Subscribes {
			subscribers[sub.TopicName] = append(subscribers[sub.TopicName], node.NodeName)
		}
	}

	g := rosgraph.FromTopicAssociation(publishers, subscribers)

	if opts.KeepUnconnected {
		for _, name := range nodeNames {
			g.EnsureNode(name)
		}
	}

	if opts.TargetPath != "" && opts.TargetPath != AllGraph {
		if err := restrictToPath(g, arch, opts.TargetPath); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// restrictToPath removes every node outside the named path's node chain.
func restrictToPath(g *rosgraph.Graph, arch *architecture, pathName string) error {
	chain := chainNodes(arch, pathName)
	if chain == nil {
		return fmt.Errorf("named path %q not found in architecture", pathName)
	}

	keep := make(map[string]bool, len(chain))
	for _, name := range chain {
		keep[name] = true
	}
	var drop []string
	for _, name := range g.NodeNames() {
		if !keep[name] {
			drop = append(drop, name)
		}
	}
	g.RemoveNodes(drop)
	return nil
}

func chainNodes(arch *architecture, pathName string) []string {
	for _, p := range arch.NamedPaths {
		if p.PathName != pathName {
			continue
		}
		chain := make([]string, 0, len(p.NodeChain))
		for _, n := range p.NodeChain {
			chain = append(chain, n.NodeName)
		}
		return chain
	}
	return nil
}

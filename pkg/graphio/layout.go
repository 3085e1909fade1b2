package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

// Layout is a position overlay: node name to canvas coordinates. Saving a
// layout separately from the graph lets a hand-tuned placement survive graph
// re-imports.
type Layout map[string][2]float64

// LayoutFromGraph captures the current node positions of a graph.
func LayoutFromGraph(g *rosgraph.Graph) Layout {
	l := make(Layout, g.NodeCount())
	for _, n := range g.Nodes() {
		l[n.Name] = n.Pos
	}
	return l
}

// Apply writes the layout's positions onto matching graph nodes. Nodes
// missing from the layout keep their position; layout entries for unknown
// nodes are ignored and their names returned, so callers can warn about a
// stale overlay.
func (l Layout) Apply(g *rosgraph.Graph) (stale []string) {
	for _, name := range sortedKeys(l) {
		node, ok := g.Node(name)
		if !ok {
			stale = append(stale, name)
			continue
		}
		node.Pos = l[name]
	}
	return stale
}

// WriteLayout writes a layout as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteLayoutFile writes a layout to a JSON file with 0644 permissions.
func WriteLayoutFile(l Layout, path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadLayoutFile reads a layout overlay from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return l, nil
}

func sortedKeys(l Layout) []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	// Deterministic apply order keeps the stale list stable.
	sort.Strings(keys)
	return keys
}

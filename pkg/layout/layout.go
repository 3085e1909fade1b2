package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/okanda/rosviz/pkg/dot"
	"github.com/okanda/rosviz/pkg/rosgraph"
)

// OthersGroup is the fallback group collecting nodes no configured group
// name matches.
const OthersGroup = "__others__"

// Direction selects how a group's internal flow is oriented inside its
// offset box.
type Direction string

const (
	// DirectionVertical keeps the Graphviz rank order top to bottom.
	DirectionVertical Direction = "vertical"
	// DirectionHorizontal rotates the rank order to run left to right.
	DirectionHorizontal Direction = "horizontal"
)

var (
	// ErrNoGroups indicates a settings map without a fallback group.
	ErrNoGroups = errors.New("group settings must include the __others__ group")
	// ErrBadDirection indicates a direction other than horizontal/vertical.
	ErrBadDirection = errors.New("direction must be horizontal or vertical")
)

// GroupSetting describes one logical container on the canvas.
type GroupSetting struct {
	// Direction orients the group's internal flow.
	Direction Direction
	// Offset is the target box [x, y, width, height] in canvas coordinates
	// that the group's normalized layout is mapped into.
	Offset [4]float64
	// Color is the display color shared by all nodes of the group.
	Color [3]uint8
}

// PositionFunc computes node coordinates for a DOT source. It exists so
// tests can place nodes without invoking Graphviz; production code uses
// [dot.Positions].
type PositionFunc func(src string) (map[string][2]float64, error)

// Layouter places graph nodes on a 2D canvas, one Graphviz layout per group.
type Layouter struct {
	// Settings maps group names to their placement. Must contain OthersGroup.
	Settings map[string]GroupSetting
	// Position overrides the Graphviz-backed position engine.
	Position PositionFunc
}

// Validate checks the group settings for structural problems.
func (l *Layouter) Validate() error {
	if _, ok := l.Settings[OthersGroup]; !ok {
		return ErrNoGroups
	}
	for name, gs := range l.Settings {
		switch gs.Direction {
		case DirectionHorizontal, DirectionVertical:
		default:
			return fmt.Errorf("group %s: %w", name, ErrBadDirection)
		}
	}
	return nil
}

// AssignGroups sets each node's group and color. A node joins the first
// group (in sorted name order) whose name occurs as a substring of the node
// name; nodes matching no group fall into OthersGroup.
func (l *Layouter) AssignGroups(g *rosgraph.Graph) error {
	if err := l.Validate(); err != nil {
		return err
	}

	names := l.groupNames()
	for _, node := range g.Nodes() {
		node.Group = OthersGroup
		for _, name := range names {
			if strings.Contains(node.Name, name) {
				node.Group = name
				break
			}
		}
		node.Color = l.Settings[node.Group].Color
	}
	return nil
}

// Place computes a position for every node. Each group is laid out with
// Graphviz in isolation (only edges internal to the group participate),
// normalized to the unit square and mapped into the group's offset box.
// AssignGroups must have run first; ungrouped nodes land in OthersGroup.
func (l *Layouter) Place(g *rosgraph.Graph) error {
	if err := l.Validate(); err != nil {
		return err
	}

	position := l.Position
	if position == nil {
		position = dot.Positions
	}

	for _, group := range l.groupNamesWithOthers() {
		members := groupMembers(g, group)
		if len(members) == 0 {
			continue
		}
		src := groupDOT(g, members)
		positions, err := position(src)
		if err != nil {
			return fmt.Errorf("layout group %s: %w", group, err)
		}
		applyPositions(g, members, positions, l.Settings[group])
	}
	return nil
}

// groupNames returns the configured group names sorted, without the
// fallback group: matching against __others__ would swallow every node.
func (l *Layouter) groupNames() []string {
	names := make([]string, 0, len(l.Settings))
	for name := range l.Settings {
		if name == OthersGroup {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Layouter) groupNamesWithOthers() []string {
	return append(l.groupNames(), OthersGroup)
}

func groupMembers(g *rosgraph.Graph, group string) []string {
	var members []string
	for _, node := range g.Nodes() {
		if node.Group == group {
			members = append(members, node.Name)
		}
	}
	return members
}

// groupDOT renders the subgraph induced by members as a DOT source for the
// position engine. Inter-group edges are dropped so each group's shape only
// depends on its own topology.
func groupDOT(g *rosgraph.Graph, members []string) string {
	inGroup := make(map[string]bool, len(members))
	for _, name := range members {
		inGroup[name] = true
	}

	var b strings.Builder
	b.WriteString("digraph G {\n")
	for _, name := range members {
		fmt.Fprintf(&b, "\t%s;\n", quoteID(name))
	}
	for _, e := range g.Edges() {
		if inGroup[e.From] && inGroup[e.To] {
			fmt.Fprintf(&b, "\t%s -> %s;\n", quoteID(e.From), quoteID(e.To))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func quoteID(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	name = strings.ReplaceAll(name, `"`, `\"`)
	return `"` + name + `"`
}

// applyPositions maps raw Graphviz coordinates into the group's offset box.
// Coordinates are normalized to [0,1] per axis with y flipped (Graphviz
// grows upward, the canvas grows downward); a horizontal group additionally
// swaps the axes so ranks run left to right.
func applyPositions(g *rosgraph.Graph, members []string, positions map[string][2]float64, gs GroupSetting) {
	minX, maxX, minY, maxY := bounds(members, positions)

	for _, name := range members {
		raw, ok := positions[name]
		if !ok {
			continue
		}
		x := normalize(raw[0], minX, maxX)
		y := 0.0
		if maxY > minY {
			y = 1 - normalize(raw[1], minY, maxY)
		}
		if gs.Direction == DirectionHorizontal {
			x, y = y, x
		}
		node, _ := g.Node(name)
		node.Pos = [2]float64{
			gs.Offset[0] + x*gs.Offset[2],
			gs.Offset[1] + y*gs.Offset[3],
		}
	}
}

func bounds(members []string, positions map[string][2]float64) (minX, maxX, minY, maxY float64) {
	first := true
	for _, name := range members {
		p, ok := positions[name]
		if !ok {
			continue
		}
		if first {
			minX, maxX, minY, maxY = p[0], p[0], p[1], p[1]
			first = false
			continue
		}
		minX = min(minX, p[0])
		maxX = max(maxX, p[0])
		minY = min(minY, p[1])
		maxY = max(maxY, p[1])
	}
	return minX, maxX, minY, maxY
}

// normalize maps v from [lo,hi] to [0,1]. An empty span collapses to 0, so
// a single-node group lands at its box origin.
func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// Align shifts all node positions so the midpoint of their bounding box
// becomes the origin. Consumers that zoom around (0,0) get symmetric zoom
// this way. No-op for empty graphs.
func Align(g *rosgraph.Graph) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}

	minX, maxX := nodes[0].Pos[0], nodes[0].Pos[0]
	minY, maxY := nodes[0].Pos[1], nodes[0].Pos[1]
	for _, node := range nodes[1:] {
		minX = min(minX, node.Pos[0])
		maxX = max(maxX, node.Pos[0])
		minY = min(minY, node.Pos[1])
		maxY = max(maxY, node.Pos[1])
	}

	cx := (maxX + minX) / 2
	cy := (maxY + minY) / 2
	for _, node := range nodes {
		node.Pos[0] -= cx
		node.Pos[1] -= cy
	}
}

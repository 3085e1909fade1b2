package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

func testSettings() map[string]GroupSetting {
	return map[string]GroupSetting{
		"/ns1": {
			Direction: DirectionVertical,
			Offset:    [4]float64{0, 0, 0.5, 1},
			Color:     [3]uint8{0, 0, 255},
		},
		"/ns2": {
			Direction: DirectionVertical,
			Offset:    [4]float64{0.5, 0, 0.5, 1},
			Color:     [3]uint8{0, 255, 0},
		},
		OthersGroup: {
			Direction: DirectionVertical,
			Offset:    [4]float64{-0.5, -0.5, 1, 1},
			Color:     [3]uint8{16, 64, 96},
		},
	}
}

// fixedPositions is a stand-in position engine: it assigns the listed
// coordinates to whichever of its names appear in the DOT source.
func fixedPositions(coords map[string][2]float64) PositionFunc {
	return func(src string) (map[string][2]float64, error) {
		out := make(map[string][2]float64)
		for name, p := range coords {
			if strings.Contains(src, `"`+name+`"`) {
				out[name] = p
			}
		}
		return out, nil
	}
}

func TestValidate(t *testing.T) {
	l := &Layouter{Settings: map[string]GroupSetting{
		"/ns1": {Direction: DirectionVertical},
	}}
	if err := l.Validate(); !errors.Is(err, ErrNoGroups) {
		t.Errorf("Validate = %v, want ErrNoGroups", err)
	}

	l = &Layouter{Settings: map[string]GroupSetting{
		OthersGroup: {Direction: "diagonal"},
	}}
	if err := l.Validate(); !errors.Is(err, ErrBadDirection) {
		t.Errorf("Validate = %v, want ErrBadDirection", err)
	}
}

func TestAssignGroups(t *testing.T) {
	g := rosgraph.New()
	_ = g.AddEdge(rosgraph.Edge{From: "/ns1/talker", To: "/ns2/listener", Topic: "/chatter"})
	g.EnsureNode("/rosbag")

	l := &Layouter{Settings: testSettings()}
	if err := l.AssignGroups(g); err != nil {
		t.Fatalf("AssignGroups error: %v", err)
	}

	tests := []struct {
		node  string
		group string
		color [3]uint8
	}{
		{"/ns1/talker", "/ns1", [3]uint8{0, 0, 255}},
		{"/ns2/listener", "/ns2", [3]uint8{0, 255, 0}},
		{"/rosbag", OthersGroup, [3]uint8{16, 64, 96}},
	}
	for _, tt := range tests {
		node, _ := g.Node(tt.node)
		if node.Group != tt.group {
			t.Errorf("%s: Group = %q, want %q", tt.node, node.Group, tt.group)
		}
		if node.Color != tt.color {
			t.Errorf("%s: Color = %v, want %v", tt.node, node.Color, tt.color)
		}
	}
}

func TestPlaceVertical(t *testing.T) {
	g := rosgraph.New()
	_ = g.AddEdge(rosgraph.Edge{From: "/ns1/a", To: "/ns1/b", Topic: "/t"})

	l := &Layouter{
		Settings: map[string]GroupSetting{
			OthersGroup: {
				Direction: DirectionVertical,
				Offset:    [4]float64{10, 20, 2, 4},
			},
		},
		Position: fixedPositions(map[string][2]float64{
			"/ns1/a": {0, 100},
			"/ns1/b": {0, 0},
		}),
	}
	if err := l.AssignGroups(g); err != nil {
		t.Fatalf("AssignGroups error: %v", err)
	}
	if err := l.Place(g); err != nil {
		t.Fatalf("Place error: %v", err)
	}

	// A zero x span collapses to the box edge; y is flipped so the rank
	// source lands at the top of the box.
	a, _ := g.Node("/ns1/a")
	if a.Pos != [2]float64{10, 20} {
		t.Errorf("a.Pos = %v, want [10 20]", a.Pos)
	}
	b, _ := g.Node("/ns1/b")
	if b.Pos != [2]float64{10, 24} {
		t.Errorf("b.Pos = %v, want [10 24]", b.Pos)
	}
}

func TestPlaceHorizontal(t *testing.T) {
	g := rosgraph.New()
	_ = g.AddEdge(rosgraph.Edge{From: "/ns1/a", To: "/ns1/b", Topic: "/t"})

	l := &Layouter{
		Settings: map[string]GroupSetting{
			OthersGroup: {
				Direction: DirectionHorizontal,
				Offset:    [4]float64{10, 20, 2, 4},
			},
		},
		Position: fixedPositions(map[string][2]float64{
			"/ns1/a": {0, 100},
			"/ns1/b": {0, 0},
		}),
	}
	if err := l.AssignGroups(g); err != nil {
		t.Fatalf("AssignGroups error: %v", err)
	}
	if err := l.Place(g); err != nil {
		t.Fatalf("Place error: %v", err)
	}

	// Horizontal groups swap axes: the flow runs left to right.
	a, _ := g.Node("/ns1/a")
	if a.Pos != [2]float64{10, 20} {
		t.Errorf("a.Pos = %v, want [10 20]", a.Pos)
	}
	b, _ := g.Node("/ns1/b")
	if b.Pos != [2]float64{12, 20} {
		t.Errorf("b.Pos = %v, want [12 20]", b.Pos)
	}
}

func TestPlaceSingleNodeGroup(t *testing.T) {
	g := rosgraph.New()
	g.EnsureNode("/ns1/only")

	l := &Layouter{
		Settings: map[string]GroupSetting{
			OthersGroup: {
				Direction: DirectionVertical,
				Offset:    [4]float64{10, 20, 2, 4},
			},
		},
		Position: fixedPositions(map[string][2]float64{
			"/ns1/only": {37, 54},
		}),
	}
	if err := l.AssignGroups(g); err != nil {
		t.Fatalf("AssignGroups error: %v", err)
	}
	if err := l.Place(g); err != nil {
		t.Fatalf("Place error: %v", err)
	}

	// Both spans are degenerate, so the lone node sits at the box origin.
	node, _ := g.Node("/ns1/only")
	if node.Pos != [2]float64{10, 20} {
		t.Errorf("Pos = %v, want [10 20]", node.Pos)
	}
}

func TestPlaceIsolatesGroups(t *testing.T) {
	g := rosgraph.New()
	_ = g.AddEdge(rosgraph.Edge{From: "/ns1/a", To: "/ns2/b", Topic: "/t"})

	var srcs []string
	l := &Layouter{
		Settings: testSettings(),
		Position: func(src string) (map[string][2]float64, error) {
			srcs = append(srcs, src)
			return map[string][2]float64{"/ns1/a": {0, 0}, "/ns2/b": {0, 0}}, nil
		},
	}
	if err := l.AssignGroups(g); err != nil {
		t.Fatalf("AssignGroups error: %v", err)
	}
	if err := l.Place(g); err != nil {
		t.Fatalf("Place error: %v", err)
	}

	if len(srcs) != 2 {
		t.Fatalf("position engine ran %d times, want 2 (one per non-empty group)", len(srcs))
	}
	for _, src := range srcs {
		if strings.Contains(src, "->") {
			t.Errorf("inter-group edge leaked into sub-layout:\n%s", src)
		}
	}
}

func TestAlign(t *testing.T) {
	g := rosgraph.New()
	for name, pos := range map[string][2]float64{
		"/a": {10, 2},
		"/b": {20, 10},
		"/c": {30, 6},
	} {
		g.EnsureNode(name)
		node, _ := g.Node(name)
		node.Pos = pos
	}

	Align(g)

	want := map[string][2]float64{
		"/a": {-10, -4},
		"/b": {0, 4},
		"/c": {10, 0},
	}
	for name, pos := range want {
		node, _ := g.Node(name)
		if node.Pos != pos {
			t.Errorf("%s: Pos = %v, want %v", name, node.Pos, pos)
		}
	}
}

func TestAlignSingleNode(t *testing.T) {
	g := rosgraph.New()
	g.EnsureNode("/only")
	node, _ := g.Node("/only")
	node.Pos = [2]float64{42, -7}

	Align(g)
	if node.Pos != [2]float64{0, 0} {
		t.Errorf("Pos = %v, want [0 0]", node.Pos)
	}
}

package pipeline

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/layout"
	"github.com/okanda/rosviz/pkg/rosgraph"
	"github.com/okanda/rosviz/pkg/settings"
)

const testArchitecture = `
nodes:
- node_name: /sensing/driver
  publishes:
  - topic_name: /points_raw
- node_name: /perception/detector
  subscribes:
  - topic_name: /points_raw
  publishes:
  - topic_name: /objects
- node_name: /planning/planner
  subscribes:
  - topic_name: /objects
- node_name: /rviz2
  subscribes:
  - topic_name: /objects
`

func writeArchitecture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "architecture.yaml")
	if err := os.WriteFile(path, []byte(testArchitecture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// gridPositions fakes the Graphviz engine with fixed per-name coordinates.
func gridPositions(src string) (map[string][2]float64, error) {
	coords := map[string][2]float64{
		"/sensing/driver":      {0, 200},
		"/perception/detector": {0, 100},
		"/planning/planner":    {0, 0},
		"/rviz2":               {50, 50},
	}
	out := make(map[string][2]float64)
	for name, p := range coords {
		out[name] = p
	}
	return out, nil
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"architecture.yaml", FormatCARET, false},
		{"arch.yml", FormatCARET, false},
		{"ARCH.YAML", FormatCARET, false},
		{"rosgraph.dot", FormatDOT, false},
		{"graph.json", "", true},
		{"noextension", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestValidateForLoad(t *testing.T) {
	var opts Options
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("missing source should be an error")
	}

	opts = Options{Source: "graph.dot", TargetPath: "path_0"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("target path with a DOT source should be an error")
	}

	opts = Options{Source: "file.yaml", Format: "xml"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("unknown format should be an error")
	}

	opts = Options{Source: "file.yaml"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("ValidateForLoad error: %v", err)
	}
	if opts.Format != FormatCARET {
		t.Errorf("Format = %q, want %q", opts.Format, FormatCARET)
	}
}

func TestValidateAndSetDefaultsDisplace(t *testing.T) {
	s := settings.Default()
	before := s.Groups[layout.OthersGroup].Offset

	opts := Options{Source: "file.yaml", Settings: s, Displace: true, Logger: testLogger()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}

	after := opts.Settings.Groups[layout.OthersGroup].Offset
	if after[0] != before[0]-20 || after[1] != before[1]-20 {
		t.Errorf("offset = %v, want %v shifted by (-20,-20)", after, before)
	}
	if after[2] != before[2] || after[3] != before[3] {
		t.Errorf("box size changed: %v -> %v", before, after)
	}

	// Idempotent: a second validation must not shift again.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("revalidate error: %v", err)
	}
	if got := opts.Settings.Groups[layout.OthersGroup].Offset; got[0] != after[0] {
		t.Errorf("offset shifted twice: %v", got)
	}
}

func TestApplyFilters(t *testing.T) {
	g := rosgraph.New()
	_ = g.AddEdge(rosgraph.Edge{From: "/talker", To: "/listener", Topic: "/chatter"})
	_ = g.AddEdge(rosgraph.Edge{From: "/talker", To: "/rosout_collector", Topic: "/rosout"})
	_ = g.AddEdge(rosgraph.Edge{From: "/rviz2", To: "/listener", Topic: "/chatter"})

	stats, err := ApplyFilters(g, settings.App{
		IgnoreUnconnectedNodes: true,
		IgnoreNodeList:         []string{`/rviz.*`},
		IgnoreTopicList:        []string{`/rosout`},
	})
	if err != nil {
		t.Fatalf("ApplyFilters error: %v", err)
	}

	if stats.DroppedTopics != 1 {
		t.Errorf("DroppedTopics = %d, want 1", stats.DroppedTopics)
	}
	// /rviz2 by name filter, /rosout_collector as unconnected once its only
	// edge is gone.
	if stats.DroppedNodes != 2 {
		t.Errorf("DroppedNodes = %d, want 2", stats.DroppedNodes)
	}
	if g.HasNode("/rviz2") || g.HasNode("/rosout_collector") {
		t.Errorf("filtered nodes survived: %v", g.NodeNames())
	}
	if !g.HasNode("/talker") || !g.HasNode("/listener") {
		t.Errorf("wrong nodes removed: %v", g.NodeNames())
	}
}

func TestApplyFiltersInvalidPattern(t *testing.T) {
	g := rosgraph.New()
	if _, err := ApplyFilters(g, settings.App{IgnoreNodeList: []string{`[`}}); err == nil {
		t.Error("invalid pattern should be an error")
	}
}

func TestRunnerExecute(t *testing.T) {
	src := writeArchitecture(t)
	s := settings.Default()
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Source:   src,
		Settings: s,
		Position: gridPositions,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	// Default filters drop /rviz2.
	if result.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", result.Stats.NodeCount)
	}
	if result.Graph.HasNode("/rviz2") {
		t.Error("default filters should drop /rviz2")
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}
	if result.CacheInfo.LoadHit || result.CacheInfo.LayoutHit {
		t.Error("first run with a null cache should miss")
	}

	// Every surviving node is grouped and placed.
	for _, node := range result.Graph.Nodes() {
		if node.Group == "" {
			t.Errorf("%s has no group", node.Name)
		}
	}
	driver, _ := result.Graph.Node("/sensing/driver")
	planner, _ := result.Graph.Node("/planning/planner")
	if driver.Pos == planner.Pos {
		t.Error("nodes should not share a position")
	}
}

func TestRunnerExecuteCaching(t *testing.T) {
	src := writeArchitecture(t)
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fileCache, nil, testLogger())
	defer runner.Close()

	opts := Options{
		Source:   src,
		Settings: settings.Default(),
		Position: gridPositions,
		Logger:   testLogger(),
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if first.CacheInfo.LoadHit || first.CacheInfo.LayoutHit {
		t.Error("first run should miss the cache")
	}

	opts.Settings = settings.Default()
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheInfo.LoadHit || !second.CacheInfo.LayoutHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if second.GraphHash != first.GraphHash {
		t.Error("cached run should produce the identical graph")
	}

	// Refresh bypasses the cache.
	opts.Settings = settings.Default()
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute error: %v", err)
	}
	if third.CacheInfo.LoadHit {
		t.Error("refresh run should not hit the cache")
	}
}

func TestRunnerExecuteTargetPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "architecture.yaml")
	arch := testArchitecture + `
named_paths:
- path_name: sensing_to_perception
  node_chain:
  - node_name: /sensing/driver
  - node_name: /perception/detector
`
	if err := os.WriteFile(path, []byte(arch), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Source:     path,
		TargetPath: "sensing_to_perception",
		Settings:   settings.Default(),
		Position:   gridPositions,
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Graph.HasNode("/planning/planner") {
		t.Error("nodes outside the target path should be removed")
	}
	if len(result.Paths) != 1 {
		t.Errorf("Paths = %v", result.Paths)
	}
}

func TestRunnerLayoutAlign(t *testing.T) {
	src := writeArchitecture(t)
	s := settings.Default()
	// Default offsets sit off-center; Align must recenter the bounding box.
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Source:   src,
		Settings: s,
		Align:    true,
		Position: gridPositions,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	nodes := result.Graph.Nodes()
	minX, maxX := nodes[0].Pos[0], nodes[0].Pos[0]
	minY, maxY := nodes[0].Pos[1], nodes[0].Pos[1]
	for _, node := range nodes[1:] {
		minX = min(minX, node.Pos[0])
		maxX = max(maxX, node.Pos[0])
		minY = min(minY, node.Pos[1])
		maxY = max(maxY, node.Pos[1])
	}
	if cx := (maxX + minX) / 2; math.Abs(cx) > 1e-9 {
		t.Errorf("x midpoint = %v, want 0", cx)
	}
	if cy := (maxY + minY) / 2; math.Abs(cy) > 1e-9 {
		t.Errorf("y midpoint = %v, want 0", cy)
	}

	// A layouter built from the same settings must validate.
	l := &layout.Layouter{Settings: s.GroupSettings()}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestRunnerMissingFile(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		Source:   filepath.Join(t.TempDir(), "missing.yaml"),
		Settings: settings.Default(),
		Logger:   testLogger(),
	})
	if err == nil {
		t.Error("missing source file should be an error")
	}
}

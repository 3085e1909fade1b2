package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okanda/rosviz/pkg/graphio"
)

const testArchitecture = `
nodes:
- node_name: /sensing/driver
  publishes:
  - topic_name: /points_raw
- node_name: /perception/detector
  subscribes:
  - topic_name: /points_raw
`

func writeArchitecture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "architecture.yaml")
	if err := os.WriteFile(path, []byte(testArchitecture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestLoadCommand(t *testing.T) {
	src := writeArchitecture(t)
	out := filepath.Join(t.TempDir(), "graph.json")

	if err := runCommand(t, "load", src, "--no-cache", "-o", out); err != nil {
		t.Fatalf("load: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graphio.UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("graph = %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestLayoutCommand(t *testing.T) {
	src := writeArchitecture(t)
	out := filepath.Join(t.TempDir(), "graph.json")

	if err := runCommand(t, "layout", src, "--no-cache", "--align", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graphio.UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, n := range g.Nodes {
		if n.Group == "" {
			t.Errorf("%s has no group", n.Name)
		}
	}
}

func TestLayoutCommandPositionsOnly(t *testing.T) {
	src := writeArchitecture(t)
	out := filepath.Join(t.TempDir(), "layout.json")

	if err := runCommand(t, "layout", src, "--no-cache", "--positions-only", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var l map[string][2]float64
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := l["/sensing/driver"]; !ok {
		t.Errorf("layout missing node: %v", l)
	}
}

func TestExportCommandDOT(t *testing.T) {
	src := writeArchitecture(t)
	out := filepath.Join(t.TempDir(), "graph.dot")

	if err := runCommand(t, "export", src, "--no-cache", "-T", "dot", "-o", out); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"/sensing/driver"`) {
		t.Errorf("DOT missing node:\n%s", data)
	}
}

func TestExportCommandBadFormat(t *testing.T) {
	src := writeArchitecture(t)
	if err := runCommand(t, "export", src, "--no-cache", "-T", "png"); err == nil {
		t.Error("unknown export format should be an error")
	}
}

func TestLoadCommandMissingFile(t *testing.T) {
	if err := runCommand(t, "load", filepath.Join(t.TempDir(), "missing.yaml"), "--no-cache"); err == nil {
		t.Error("missing file should be an error")
	}
}

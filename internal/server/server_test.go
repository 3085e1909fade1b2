package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/pipeline"
	"github.com/okanda/rosviz/pkg/store"
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
`

func testServer(t *testing.T) *Server {
	t.Helper()
	src := filepath.Join(t.TempDir(), "architecture.yaml")
	if err := os.WriteFile(src, []byte(testArchitecture), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(Config{Source: src, Addr: ":0"}, runner, store.NewMemoryStore(), logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	rec := get(t, testServer(t), "/api/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp graphResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Graph.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(resp.Graph.Nodes))
	}
	if resp.Hash == "" {
		t.Error("hash should be set")
	}
	for _, n := range resp.Graph.Nodes {
		if n.Group == "" {
			t.Errorf("%s has no group", n.Name)
		}
	}
}

func TestLayoutEndpoint(t *testing.T) {
	rec := get(t, testServer(t), "/api/layout")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var l map[string][2]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := l["/sensing/driver"]; !ok {
		t.Errorf("layout missing node: %v", l)
	}
}

func TestNodeEndpoint(t *testing.T) {
	rec := get(t, testServer(t), "/api/nodes/perception/detector")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp nodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Node.Name != "/perception/detector" {
		t.Errorf("name = %q", resp.Node.Name)
	}
	if len(resp.Subscribes) != 1 || resp.Subscribes[0] != "/points_raw" {
		t.Errorf("subscribes = %v", resp.Subscribes)
	}
	if len(resp.Publishes) != 1 || resp.Publishes[0] != "/objects" {
		t.Errorf("publishes = %v", resp.Publishes)
	}
}

func TestNodeEndpointNotFound(t *testing.T) {
	rec := get(t, testServer(t), "/api/nodes/missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "NODE_NOT_FOUND" {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestPathsEndpoint(t *testing.T) {
	rec := get(t, testServer(t), "/api/paths")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"paths"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestExportDOTEndpoint(t *testing.T) {
	rec := get(t, testServer(t), "/api/export/dot")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"/sensing/driver"`) {
		t.Errorf("DOT missing node:\n%s", rec.Body)
	}
}

func TestExportSVGCached(t *testing.T) {
	src := filepath.Join(t.TempDir(), "architecture.yaml")
	if err := os.WriteFile(src, []byte(testArchitecture), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(Config{Source: src, Addr: ":0"}, pipeline.NewRunner(fc, nil, logger), nil, logger)

	for i := 0; i < 2; i++ {
		rec := get(t, s, "/api/export/svg")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, body %s", i, rec.Code, rec.Body)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("request %d: Content-Type = %q", i, ct)
		}
	}

	// First render misses, the repeat is served from cache.
	rec := get(t, s, "/metrics")
	if !strings.Contains(rec.Body.String(), `rosviz_cache_operations_total{op="hit",stage="export"} 1`) {
		t.Errorf("expected one export cache hit in metrics:\n%s", rec.Body)
	}
}

func TestSnapshotFlow(t *testing.T) {
	s := testServer(t)

	body, _ := json.Marshal(snapshotCreateRequest{Name: "baseline"})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/snapshots/", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var info store.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Name != "baseline" || info.NodeCount != 3 {
		t.Errorf("info = %+v", info)
	}

	rec = get(t, s, "/api/snapshots/")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var infos []store.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("list = %+v", infos)
	}

	rec = get(t, s, "/api/snapshots/"+info.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Graph.Nodes) != 3 {
		t.Errorf("snapshot graph nodes = %d", len(snap.Graph.Nodes))
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/snapshots/"+info.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = get(t, s, "/api/snapshots/"+info.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestSnapshotCreateRejectsBadName(t *testing.T) {
	s := testServer(t)
	body, _ := json.Marshal(snapshotCreateRequest{Name: ".bad"})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/snapshots/", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)
	// Generate some traffic first so counters exist.
	get(t, s, "/healthz")

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rosviz_http_requests_total") {
		t.Error("metrics output missing request counter")
	}
}

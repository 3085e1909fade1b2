package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/caret"
	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/export"
	"github.com/okanda/rosviz/pkg/graphio"
	"github.com/okanda/rosviz/pkg/observability"
	"github.com/okanda/rosviz/pkg/pipeline"
	"github.com/okanda/rosviz/pkg/store"
)

// graphResponse is the JSON payload for GET /api/graph.
type graphResponse struct {
	Graph graphio.Graph      `json:"graph"`
	Hash  string             `json:"hash"`
	Stats pipeline.Stats     `json:"stats"`
	Cache pipeline.CacheInfo `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Execute(r.Context(), s.pipelineOptions(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, graphResponse{
		Graph: graphio.FromGraph(result.Graph),
		Hash:  result.GraphHash,
		Stats: result.Stats,
		Cache: result.CacheInfo,
	})
}

// handleLayout serves just the node position map, the same shape as the
// layout.json artifact written by the CLI.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Execute(r.Context(), s.pipelineOptions(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, graphio.LayoutFromGraph(result.Graph))
}

// pathsResponse lists CARET named paths. DOT sources have none.
type pathsResponse struct {
	Paths caret.NamedPaths `json:"paths"`
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	_, paths, err := s.runner.Load(r.Context(), s.pipelineOptions(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if paths == nil {
		paths = caret.NamedPaths{}
	}
	s.writeJSON(w, http.StatusOK, pathsResponse{Paths: paths})
}

// nodeResponse is the detail payload for a single node.
type nodeResponse struct {
	Node       graphio.Node `json:"node"`
	Publishes  []string     `json:"publishes"`
	Subscribes []string     `json:"subscribes"`
}

// handleNode serves node detail. Node names contain slashes ("/sensing/lidar"),
// so the route uses a wildcard and the name is the full trailing path.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	name := "/" + chi.URLParam(r, "*")

	if err := errors.ValidateNodeName(name); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), s.pipelineOptions(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	n, ok := result.Graph.Node(name)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", name))
		return
	}

	resp := nodeResponse{Node: graphio.FromNode(n)}
	for _, e := range result.Graph.Edges() {
		switch name {
		case e.From:
			resp.Publishes = append(resp.Publishes, e.Topic)
		case e.To:
			resp.Subscribes = append(resp.Subscribes, e.Topic)
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.export(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// handleExportSVG renders the graph to SVG. Rendering runs the Graphviz
// engine, so the result is cached keyed by the DOT text it was rendered
// from: any change to the graph or the export options changes the key.
func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dot, err := s.export(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	eopts := s.exportOptions(r)
	key := s.runner.Keyer.ExportKey(cache.Hash([]byte(dot)), cache.ExportKeyOpts{
		Format:      "svg",
		Clusters:    eopts.Clusters,
		TopicLabels: eopts.TopicLabels,
	})
	if svg, hit, err := s.runner.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "export")
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "export")

	start := time.Now()
	observability.Pipeline().OnExportStart(ctx, "svg")
	svg, err := export.RenderSVG(dot)
	observability.Pipeline().OnExportComplete(ctx, "svg", time.Since(start), err)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render SVG"))
		return
	}

	if err := s.runner.Cache.Set(ctx, key, svg, cache.DefaultExportTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "export", len(svg))
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) exportOptions(r *http.Request) export.Options {
	q := r.URL.Query()
	return export.Options{
		Clusters:    q.Get("clusters") != "false",
		TopicLabels: q.Get("topic_labels") == "true",
	}
}

func (s *Server) export(r *http.Request) (string, error) {
	result, err := s.runner.Execute(r.Context(), s.pipelineOptions(r))
	if err != nil {
		return "", err
	}
	return export.ToDOT(result.Graph, s.exportOptions(r)), nil
}

// ===== Snapshots =====

type snapshotCreateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	var req snapshotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), s.pipelineOptions(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := store.NewSnapshot(req.Name, s.cfg.Source, result.Graph)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap.Info())
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

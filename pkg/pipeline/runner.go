package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/caret"
	"github.com/okanda/rosviz/pkg/dot"
	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/graphio"
	"github.com/okanda/rosviz/pkg/layout"
	"github.com/okanda/rosviz/pkg/observability"
	"github.com/okanda/rosviz/pkg/rosgraph"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → filter → layout pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{Settings: opts.Settings}

	// Stage 1: Load
	loadStart := time.Now()
	g, paths, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Paths = paths
	result.CacheInfo.LoadHit = loadHit

	// Stage 2: Filter. Filters are cheap regex sweeps, so they run on every
	// execution and the cache only ever holds the raw import.
	filterStats, err := ApplyFilters(g, opts.Settings.App)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.DroppedNodes = filterStats.DroppedNodes
	result.Stats.DroppedTopics = filterStats.DroppedTopics

	// Compute graph hash for cache keys and API responses
	if graphData, err := graphio.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("loaded graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"dropped_nodes", filterStats.DroppedNodes,
		"dropped_topics", filterStats.DroppedTopics,
		"duration", result.Stats.LoadTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"groups", len(opts.Settings.Groups),
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// loadPayload is the cache envelope for the load stage: the raw imported
// graph plus the CARET named paths that belong to it.
type loadPayload struct {
	Graph graphio.Graph    `json:"graph"`
	Paths caret.NamedPaths `json:"paths,omitempty"`
}

// LoadWithCacheInfo imports the source file with caching and returns cache hit info.
// The returned graph is unfiltered; callers apply [ApplyFilters] themselves.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*rosgraph.Graph, caret.NamedPaths, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	data, err := opts.ReadSource()
	if err != nil {
		return nil, nil, false, err
	}

	sourceHash := cache.Hash(data)
	cacheKey := r.Keyer.GraphKey(sourceHash, opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var payload loadPayload
			if err := json.Unmarshal(cached, &payload); err == nil {
				if g, err := graphio.ToGraph(payload.Graph); err == nil {
					observability.Cache().OnCacheHit(ctx, "graph")
					return g, payload.Paths, true, nil // Cache hit
				}
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	// Import
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Format, opts.Source)
	g, paths, err := importSource(data, opts)
	observability.Pipeline().OnLoadComplete(ctx, opts.Format, opts.Source, nodeCount(g), time.Since(start), err)
	if err != nil {
		return nil, nil, false, err
	}

	// Cache the result
	if payload, err := json.Marshal(loadPayload{Graph: graphio.FromGraph(g), Paths: paths}); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, payload, cache.DefaultGraphTTL)
		observability.Cache().OnCacheSet(ctx, "graph", len(payload))
	}

	return g, paths, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*rosgraph.Graph, caret.NamedPaths, error) {
	g, paths, _, err := r.LoadWithCacheInfo(ctx, opts)
	return g, paths, err
}

// importSource dispatches on the source format.
func importSource(data []byte, opts Options) (*rosgraph.Graph, caret.NamedPaths, error) {
	switch opts.Format {
	case FormatCARET:
		g, err := caret.Parse(data, caret.Options{
			TargetPath:      opts.TargetPath,
			KeepUnconnected: opts.KeepUnconnected(),
		})
		if err != nil {
			return nil, nil, err
		}
		paths, err := caret.ParsePaths(data)
		if err != nil {
			return nil, nil, err
		}
		return g, paths, nil
	case FormatDOT:
		g, err := dot.Parse(data, dot.Options{KeepUnconnected: opts.KeepUnconnected()})
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", opts.Format)
}

func nodeCount(g *rosgraph.Graph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}

// ComputeLayoutWithCacheInfo assigns groups and positions with caching and
// returns cache hit info. Group and color assignment always runs (it is a
// cheap deterministic pass); only the Graphviz placement is cached.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *rosgraph.Graph, opts Options) (bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return false, err
	}
	r.applyLogger(&opts)

	layouter := &layout.Layouter{
		Settings: opts.Settings.GroupSettings(),
		Position: opts.Position,
	}
	if err := layouter.AssignGroups(g); err != nil {
		return false, err
	}

	// Compute cache key
	graphData, err := graphio.MarshalGraph(g)
	if err != nil {
		return false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	keyOpts, err := opts.LayoutKeyOpts()
	if err != nil {
		return false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), keyOpts)

	// Try cache first
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var positions graphio.Layout
			if err := json.Unmarshal(data, &positions); err == nil {
				positions.Apply(g)
				observability.Cache().OnCacheHit(ctx, "layout")
				return true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	// Compute layout
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(opts.Settings.Groups), g.NodeCount())
	err = layouter.Place(g)
	if err == nil && opts.Align {
		layout.Align(g)
	}
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return false, err
	}

	// Cache the result
	if data, err := json.Marshal(graphio.LayoutFromGraph(g)); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultLayoutTTL)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *rosgraph.Graph, opts Options) error {
	_, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

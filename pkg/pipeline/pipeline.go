// Package pipeline provides the core graph pipeline for rosviz.
//
// This package implements the complete load → filter → layout pipeline that
// can be used by CLI, server, and TUI components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Import a CARET architecture YAML or rosgraph.dot file
//  2. Filter: Remove ignored nodes, topics, and unconnected nodes
//  3. Layout: Assign groups and compute 2D positions per group
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source: "architecture.yaml",
//	    Align:  true,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	graph := result.Graph
//
// Run individual stages:
//
//	// Load only
//	g, paths, err := runner.Load(ctx, opts)
//
//	// Layout with existing graph
//	err = runner.ComputeLayout(ctx, g, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/caret"
	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/layout"
	"github.com/okanda/rosviz/pkg/rosgraph"
	"github.com/okanda/rosviz/pkg/settings"
)

// =============================================================================
// Format Constants - Single Source of Truth for CLI and Server
// =============================================================================

// Graph source formats.
const (
	FormatCARET = "caret"
	FormatDOT   = "dot"
)

// ValidFormats is the set of supported source formats.
var ValidFormats = map[string]bool{
	FormatCARET: true,
	FormatDOT:   true,
}

// DetectFormat determines the source format from a file extension:
// .yaml/.yml is a CARET architecture file, .dot an rqt_graph export.
func DetectFormat(path string) (string, error) {
	switch {
	case hasSuffix(path, ".yaml"), hasSuffix(path, ".yml"):
		return FormatCARET, nil
	case hasSuffix(path, ".dot"):
		return FormatDOT, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot detect graph format of %q (expected .yaml, .yml or .dot)", path)
}

func hasSuffix(s, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(s), suffix)
}

// settingsFingerprint serializes the group configuration for cache keying.
// encoding/json sorts map keys, so the fingerprint is deterministic.
func settingsFingerprint(s *settings.Settings) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s.Groups)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the graph pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source     string `json:"source"`                // Path to the architecture YAML or DOT file
	Format     string `json:"format,omitempty"`      // "caret" or "dot"; empty means detect from extension
	TargetPath string `json:"target_path,omitempty"` // Restrict the graph to one CARET named path
	NoFilter   bool   `json:"no_filter,omitempty"`   // Skip node/topic filtering
	Displace   bool   `json:"displace,omitempty"`    // Shift every group offset by (-20,-20)
	Refresh    bool   `json:"refresh,omitempty"`     // Bypass the cache and re-import

	// Layout options
	Align bool `json:"align,omitempty"` // Recenter the final layout around the origin

	// Runtime options (not serialized)
	Settings *settings.Settings  `json:"-"` // nil discovers rosviz.toml next to Source
	Position layout.PositionFunc `json:"-"` // Overrides the Graphviz position engine
	Logger   *log.Logger         `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the filtered, laid-out node graph.
	Graph *rosgraph.Graph

	// GraphHash is the content hash of the filtered graph before layout.
	GraphHash string

	// Paths holds the CARET named paths (empty for DOT sources).
	Paths caret.NamedPaths

	// Settings are the effective settings used by the run.
	Settings *settings.Settings

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	DroppedNodes  int
	DroppedTopics int
	LoadTime      time.Duration
	LayoutTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the imported graph came from cache
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if o.Settings == nil {
		s, err := settings.Discover(o.Source)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSettings, err, "load settings for %s", o.Source)
		}
		o.Settings = s
	}
	if o.NoFilter {
		o.Settings.DisableFilters()
	}
	if o.Displace {
		// Shifting the boxes makes nodes that appeared since the last run
		// stand out from a saved layout.
		o.Settings.DisplaceGroups(-20, -20)
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for the load stage.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source file is required")
	}
	if o.Format == "" {
		format, err := DetectFormat(o.Source)
		if err != nil {
			return err
		}
		o.Format = format
	}
	if !ValidFormats[o.Format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: caret, dot)", o.Format)
	}
	if o.TargetPath != "" && o.Format != FormatCARET {
		return errors.New(errors.ErrCodeInvalidInput, "target path selection requires a CARET source")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// KeepUnconnected reports whether unconnected nodes survive the import.
func (o *Options) KeepUnconnected() bool {
	return o.Settings != nil && !o.Settings.App.IgnoreUnconnectedNodes
}

// GraphKeyOpts returns cache key options for the load stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		TargetPath:      o.TargetPath,
		KeepUnconnected: o.KeepUnconnected(),
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
// The settings hash covers the group configuration, so edited offsets or
// directions invalidate cached layouts.
func (o *Options) LayoutKeyOpts() (cache.LayoutKeyOpts, error) {
	data, err := settingsFingerprint(o.Settings)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	return cache.LayoutKeyOpts{
		SettingsHash: cache.Hash(data),
		Align:        o.Align,
	}, nil
}

// ReadSource reads the source file bytes.
func (o *Options) ReadSource() ([]byte, error) {
	data, err := os.ReadFile(o.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", o.Source)
		}
		return nil, err
	}
	return data, nil
}

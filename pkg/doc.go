// Package pkg provides the core libraries for rosviz node graph visualization.
//
// # Overview
//
// rosviz turns ROS 2 node graphs into deterministic 2D layouts: nodes are
// imported from CARET architecture files or rqt_graph DOT exports, filtered,
// grouped into logical containers, and placed per group with Graphviz. The
// pkg directory is organized into these areas:
//
//  1. [rosgraph] - The directed multigraph of nodes and topic edges
//  2. [caret], [dot] - Graph importers for the two source formats
//  3. [layout] - Group assignment and per-group 2D placement
//  4. [settings] - TOML configuration (filters, groups, offsets, colors)
//  5. [graphio] - Serialization for graphs and position overlays
//  6. [export] - DOT and SVG rendering of laid-out graphs
//  7. [pipeline] - Orchestration (load → filter → layout) with caching
//  8. [cache], [store], [errors], [observability] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through rosviz:
//
//	CARET YAML / rosgraph.dot
//	         ↓
//	    [caret] or [dot] package (import to a multigraph)
//	         ↓
//	    [pipeline] package (filters, caching)
//	         ↓
//	    [layout] package (groups + Graphviz placement)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
// Run the full pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "architecture.yaml"})
package pkg

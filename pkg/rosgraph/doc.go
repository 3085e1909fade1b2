// Package rosgraph provides the directed multigraph model that represents a
// ROS 2 node graph: nodes are ROS processes/components, edges are
// publish/subscribe links labeled with topic names.
//
// # Overview
//
// rosviz converts heterogeneous graph descriptions (CARET architecture YAML,
// rosgraph.dot exports from rqt_graph) into this unified model, then filters,
// annotates and lays it out. Unlike a dependency DAG, a ROS graph may contain
// cycles (feedback loops are common) and parallel edges between the same node
// pair carrying different topics, so the model is a true multigraph with no
// acyclicity constraint.
//
// # Basic Usage
//
// Create a graph with [New], add edges with [Graph.AddEdge] (endpoints are
// created on demand, so importers never need to pre-register nodes):
//
//	g := rosgraph.New()
//	g.AddEdge(rosgraph.Edge{From: "/sensor", To: "/filter", Topic: "/points_raw"})
//	g.AddEdge(rosgraph.Edge{From: "/filter", To: "/planner", Topic: "/points"})
//
// Query structure with [Graph.Children], [Graph.Parents] and [Graph.Isolated];
// prune with [Graph.RemoveNodes] and [Graph.RemoveEdges]; relabel in bulk with
// [Graph.Rename].
//
// # Determinism
//
// All enumeration methods ([Graph.Nodes], [Graph.NodeNames], [Graph.Isolated])
// return sorted results, and [FromTopicAssociation] processes topics in sorted
// order, so two imports of the same description yield byte-identical
// serializations and layouts.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package rosgraph

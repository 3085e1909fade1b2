// Package layout places ROS node graphs on a 2D canvas.
//
// Nodes are grouped into logical containers by substring-matching group
// names against node names, with __others__ catching the rest. Each group is
// laid out independently with Graphviz dot, normalized to the unit square
// and mapped into the group's configured offset box, optionally rotated so
// the flow runs left to right. [Align] recenters the combined result
// around the origin.
//
// Given the same graph and settings the produced positions are identical
// across runs: groups and nodes are visited in sorted order and the position
// engine is deterministic.
package layout

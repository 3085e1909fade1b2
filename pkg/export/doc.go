// Package export renders laid-out node graphs to DOT and SVG.
//
// [ToDOT] serializes a grouped graph to Graphviz DOT, optionally wrapping
// each group in a cluster subgraph. [RenderSVG] runs the result through
// Graphviz for a standalone vector image.
package export

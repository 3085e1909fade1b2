// Package dot imports rqt_graph DOT exports and runs Graphviz layout.
//
// Arbitrary rosgraph.dot files are first pushed through Graphviz itself,
// which normalizes them into the canonical statement grammar, and then
// scanned back into nodes and edges. This keeps the importer independent of
// the quoting and formatting quirks of whichever tool produced the file.
//
// The same canonicalization pass powers [Positions], which extracts the node
// coordinates Graphviz computed for a DOT source. The layout package builds
// its per-group placement on top of it.
package dot

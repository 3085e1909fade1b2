package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/okanda/rosviz/pkg/layout"
	"github.com/okanda/rosviz/pkg/rosgraph"
)

// Options configures DOT export.
type Options struct {
	// Clusters wraps each group in a cluster subgraph so Graphviz draws a
	// labeled border around it. Nodes in the fallback group stay at the
	// top level.
	Clusters bool

	// TopicLabels puts the topic name on each edge.
	TopicLabels bool
}

// ToDOT converts a grouped graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Nodes carry their group color as fill; groups are emitted in sorted
// order so the output is deterministic for a given graph.
func ToDOT(g *rosgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if opts.Clusters {
		writeClusters(&buf, g)
	} else {
		for _, n := range g.Nodes() {
			fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(nodeAttrs(g, n), ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.TopicLabels && e.Topic != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Topic)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeClusters emits one cluster subgraph per group. Cluster names must be
// unique identifiers, so groups are numbered in sorted order.
func writeClusters(buf *bytes.Buffer, g *rosgraph.Graph) {
	members := map[string][]*rosgraph.Node{}
	for _, n := range g.Nodes() {
		members[n.Group] = append(members[n.Group], n)
	}

	groups := make([]string, 0, len(members))
	for group := range members {
		if group != layout.OthersGroup {
			groups = append(groups, group)
		}
	}
	sort.Strings(groups)

	for i, group := range groups {
		fmt.Fprintf(buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(buf, "    label=%q;\n", group)
		buf.WriteString("    style=rounded;\n")
		for _, n := range members[group] {
			fmt.Fprintf(buf, "    %q [%s];\n", n.Name, strings.Join(nodeAttrs(g, n), ", "))
		}
		buf.WriteString("  }\n")
	}

	for _, n := range members[layout.OthersGroup] {
		fmt.Fprintf(buf, "  %q [%s];\n", n.Name, strings.Join(nodeAttrs(g, n), ", "))
	}
}

func nodeAttrs(g *rosgraph.Graph, n *rosgraph.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Name)}
	if n.Color != [3]uint8{} {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hexColor(n.Color)), "fontcolor=white")
	}
	// Pure sinks publish nothing; a dashed border marks them as endpoints
	// of the data flow.
	if g.OutDegree(n.Name) == 0 && g.InDegree(n.Name) > 0 {
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	}
	return attrs
}

func hexColor(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

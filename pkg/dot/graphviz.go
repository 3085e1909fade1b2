package dot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// canonicalize runs a DOT source through Graphviz and returns the laid-out
// graph in xdot form. This normalizes every input quirk (quoting styles,
// comments, multi-edge statements, subgraphs) into the regular statement
// grammar the scanner expects, and attaches a pos attribute to every node.
func canonicalize(data []byte) (*document, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return scan(buf.String())
}

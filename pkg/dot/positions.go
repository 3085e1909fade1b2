package dot

import (
	"fmt"
	"strconv"
	"strings"
)

// Positions runs Graphviz layout on a DOT source and returns the resulting
// node center coordinates in points, keyed by node name. Graphviz places the
// origin at the bottom-left with y growing upwards.
func Positions(src string) (map[string][2]float64, error) {
	doc, err := canonicalize([]byte(src))
	if err != nil {
		return nil, err
	}

	positions := make(map[string][2]float64, len(doc.nodes))
	for name, attrs := range doc.nodes {
		pos, ok := attrs["pos"]
		if !ok {
			continue
		}
		x, y, err := parsePoint(pos)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		positions[name] = [2]float64{x, y}
	}
	return positions, nil
}

// parsePoint parses a Graphviz point attribute ("x,y", with an optional
// trailing "!" pin marker).
func parsePoint(s string) (x, y float64, err error) {
	s = strings.TrimSuffix(s, "!")
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed pos %q", s)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
		return 0, 0, fmt.Errorf("malformed pos %q", s)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
		return 0, 0, fmt.Errorf("malformed pos %q", s)
	}
	return x, y, nil
}

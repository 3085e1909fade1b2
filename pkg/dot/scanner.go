package dot

import (
	"fmt"
	"strings"
)

// document is the scanned form of a canonical DOT graph: node statements with
// their attributes in declaration order, and edge statements.
type document struct {
	nodeOrder []string
	nodes     map[string]map[string]string
	edges     []edgeStmt
}

type edgeStmt struct {
	from  string
	to    string
	attrs map[string]string
}

// scan parses canonical DOT text (as emitted by Graphviz) into a document.
// It understands the subset Graphviz itself produces: one graph body with
// node statements (`id [k=v, ...]`), edge statements (`a -> b [k=v, ...]`)
// and attribute defaults, with quoted identifiers and backslash-newline
// line continuations. Subgraph braces are treated as statement separators,
// which flattens clusters into their parent graph.
func scan(src string) (*document, error) {
	doc := &document{nodes: make(map[string]map[string]string)}

	// Graphviz wraps long lines with a backslash before the newline.
	src = strings.ReplaceAll(src, "\\\r\n", "")
	src = strings.ReplaceAll(src, "\\\n", "")

	for _, stmt := range splitStatements(src) {
		if err := doc.addStatement(stmt); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// splitStatements cuts the source into statements at top-level ';', '{' and
// '}' boundaries, ignoring separators inside quoted strings and attribute
// brackets.
func splitStatements(src string) []string {
	var (
		stmts   []string
		current strings.Builder
		inQuote bool
		escaped bool
		depth   int
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for _, r := range src {
		if inQuote {
			current.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			continue
		}
		switch r {
		case '"':
			inQuote = true
			current.WriteRune(r)
		case '[':
			depth++
			current.WriteRune(r)
		case ']':
			depth--
			current.WriteRune(r)
		case ';', '{', '}':
			if depth == 0 {
				flush()
			} else {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return stmts
}

// addStatement classifies one statement and records it. Graph headers,
// attribute defaults and bare attribute assignments are skipped.
func (d *document) addStatement(stmt string) error {
	head, attrText := splitAttrList(stmt)
	head = strings.TrimSpace(head)
	if head == "" {
		return nil
	}

	lower := strings.ToLower(head)
	switch {
	case strings.HasPrefix(lower, "digraph"), strings.HasPrefix(lower, "graph "),
		lower == "graph", strings.HasPrefix(lower, "strict"),
		strings.HasPrefix(lower, "subgraph"), lower == "node", lower == "edge":
		return nil
	}
	if strings.Contains(head, "=") && !strings.Contains(head, "->") {
		// Bare graph attribute assignment (rankdir=TB and friends).
		return nil
	}

	attrs, err := parseAttrs(attrText)
	if err != nil {
		return err
	}

	if from, to, ok := strings.Cut(head, "->"); ok {
		d.edges = append(d.edges, edgeStmt{
			from:  unquote(strings.TrimSpace(from)),
			to:    unquote(strings.TrimSpace(to)),
			attrs: attrs,
		})
		return nil
	}

	name := unquote(head)
	if existing, ok := d.nodes[name]; ok {
		// Later statements about the same node merge their attributes.
		for k, v := range attrs {
			existing[k] = v
		}
		return nil
	}
	d.nodeOrder = append(d.nodeOrder, name)
	d.nodes[name] = attrs
	return nil
}

// splitAttrList separates `head [attrs]` into its parts. Statements without
// an attribute list return an empty attrs string.
func splitAttrList(stmt string) (head, attrs string) {
	open := indexOutsideQuotes(stmt, '[')
	if open < 0 {
		return stmt, ""
	}
	close := strings.LastIndexByte(stmt, ']')
	if close < open {
		return stmt, ""
	}
	return stmt[:open], stmt[open+1 : close]
}

func indexOutsideQuotes(s string, c byte) int {
	inQuote := false
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == c && !inQuote:
			return i
		}
	}
	return -1
}

// parseAttrs parses a comma-separated attribute list into a map.
func parseAttrs(text string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, item := range splitTopLevel(text, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("malformed attribute %q", item)
		}
		attrs[unquote(strings.TrimSpace(key))] = unquote(strings.TrimSpace(value))
	}
	return attrs, nil
}

// splitTopLevel splits on sep outside quoted strings.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts   []string
		current strings.Builder
		inQuote bool
		escaped bool
	)
	for _, r := range s {
		if inQuote {
			current.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			continue
		}
		switch r {
		case '"':
			inQuote = true
			current.WriteRune(r)
		case sep:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())
	return parts
}

// unquote strips surrounding double quotes and resolves backslash escapes.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package pipeline

import (
	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/rosgraph"
	"github.com/okanda/rosviz/pkg/settings"
)

// FilterStats reports what ApplyFilters removed.
type FilterStats struct {
	DroppedNodes  int // nodes removed by name filters or as unconnected
	DroppedTopics int // edges removed by topic filters
}

// ApplyFilters removes ignored topics and nodes from the graph in place.
//
// Topic filters run first: removing a node's last edge may leave it
// unconnected, and the unconnected sweep at the end has to see that. All
// patterns use full-match semantics.
func ApplyFilters(g *rosgraph.Graph, app settings.App) (FilterStats, error) {
	var stats FilterStats

	topicPatterns, err := errors.CompilePatterns(app.IgnoreTopicList)
	if err != nil {
		return stats, err
	}
	nodePatterns, err := errors.CompilePatterns(app.IgnoreNodeList)
	if err != nil {
		return stats, err
	}

	stats.DroppedTopics = g.RemoveEdges(func(e rosgraph.Edge) bool {
		return errors.MatchAny(topicPatterns, e.Topic)
	})

	var drop []string
	for _, name := range g.NodeNames() {
		if errors.MatchAny(nodePatterns, name) {
			drop = append(drop, name)
		}
	}
	g.RemoveNodes(drop)
	stats.DroppedNodes = len(drop)

	if app.IgnoreUnconnectedNodes {
		isolated := g.Isolated()
		g.RemoveNodes(isolated)
		stats.DroppedNodes += len(isolated)
	}
	return stats, nil
}

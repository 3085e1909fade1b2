package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/okanda/rosviz/pkg/layout"
)

// FileName is the settings file rosviz looks for next to a graph file.
const FileName = "rosviz.toml"

var (
	// ErrBadOffset indicates a group offset that is not [x, y, width, height].
	ErrBadOffset = errors.New("group offset must have four elements")
	// ErrBadColor indicates a group color that is not [r, g, b].
	ErrBadColor = errors.New("group color must have three elements")
)

// App holds application-level graph filtering settings.
type App struct {
	// IgnoreUnconnectedNodes drops nodes without any edge after filtering.
	IgnoreUnconnectedNodes bool `toml:"ignore_unconnected_nodes"`
	// IgnoreNodeList removes nodes whose full name matches any pattern.
	IgnoreNodeList []string `toml:"ignore_node_list"`
	// IgnoreTopicList removes edges whose topic matches any pattern.
	IgnoreTopicList []string `toml:"ignore_topic_list"`
}

// Group configures the placement of one logical node container.
type Group struct {
	Direction string    `toml:"direction"`
	Offset    []float64 `toml:"offset"`
	Color     []uint8   `toml:"color"`
}

// Settings is the full rosviz.toml document.
type Settings struct {
	App    App              `toml:"app"`
	Groups map[string]Group `toml:"group"`
}

// Default returns the settings used when no rosviz.toml exists: drop
// unconnected nodes, hide common infrastructure nodes and place everything
// in a single horizontal container.
func Default() *Settings {
	return &Settings{
		App: App{
			IgnoreUnconnectedNodes: true,
			IgnoreNodeList:         []string{`/rviz.*`, `/rqt.*`, `/rosbag.*`, `/transform_listener_impl.*`},
			IgnoreTopicList:        []string{`/parameter_events`, `/rosout`, `/clock`, `/tf`, `/tf_static`},
		},
		Groups: map[string]Group{
			layout.OthersGroup: {
				Direction: string(layout.DirectionHorizontal),
				Offset:    []float64{-0.5, -0.5, 1.0, 1.0},
				Color:     []uint8{16, 64, 96},
			},
		},
	}
}

// Load reads and validates a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings from TOML bytes. A missing fallback group is filled
// in from [Default], so a settings file only has to list its own groups.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if s.Groups == nil {
		s.Groups = make(map[string]Group)
	}
	if _, ok := s.Groups[layout.OthersGroup]; !ok {
		s.Groups[layout.OthersGroup] = Default().Groups[layout.OthersGroup]
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Discover looks for a settings file in the directory of graphPath and loads
// it. When none exists the defaults are returned.
func Discover(graphPath string) (*Settings, error) {
	path := filepath.Join(filepath.Dir(graphPath), FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return Load(path)
}

// Validate checks group shapes and directions.
func (s *Settings) Validate() error {
	for name, g := range s.Groups {
		if len(g.Offset) != 4 {
			return fmt.Errorf("group %s: %w", name, ErrBadOffset)
		}
		if len(g.Color) != 3 {
			return fmt.Errorf("group %s: %w", name, ErrBadColor)
		}
		switch layout.Direction(g.Direction) {
		case layout.DirectionHorizontal, layout.DirectionVertical:
		default:
			return fmt.Errorf("group %s: %w", name, layout.ErrBadDirection)
		}
	}
	return nil
}

// DisableFilters clears all node and topic filters and keeps unconnected
// nodes, so the raw graph passes through untouched.
func (s *Settings) DisableFilters() {
	s.App.IgnoreUnconnectedNodes = false
	s.App.IgnoreNodeList = nil
	s.App.IgnoreTopicList = nil
}

// DisplaceGroups shifts every group's offset box by (dx, dy), so a run
// against a saved layout places fresh nodes visibly apart from it.
func (s *Settings) DisplaceGroups(dx, dy float64) {
	for name, g := range s.Groups {
		g.Offset = []float64{g.Offset[0] + dx, g.Offset[1] + dy, g.Offset[2], g.Offset[3]}
		s.Groups[name] = g
	}
}

// GroupSettings converts the TOML groups into the layout engine's form.
// Call Validate first; malformed groups make the conversion panic on index.
func (s *Settings) GroupSettings() map[string]layout.GroupSetting {
	out := make(map[string]layout.GroupSetting, len(s.Groups))
	for name, g := range s.Groups {
		out[name] = layout.GroupSetting{
			Direction: layout.Direction(g.Direction),
			Offset:    [4]float64{g.Offset[0], g.Offset[1], g.Offset[2], g.Offset[3]},
			Color:     [3]uint8{g.Color[0], g.Color[1], g.Color[2]},
		}
	}
	return out
}

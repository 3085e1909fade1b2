package caret

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// NamedPaths maps a CARET path name to its ordered node chain. Presentation
// layers use these chains to highlight end-to-end message paths.
type NamedPaths map[string][]string

// Names returns the path names in sorted order.
func (p NamedPaths) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPaths reads the named path definitions from a CARET architecture file.
func LoadPaths(path string) (NamedPaths, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParsePaths(data)
}

// ParsePaths extracts named paths from CARET architecture YAML bytes.
// Architectures without a named_paths section yield an empty map.
func ParsePaths(data []byte) (NamedPaths, error) {
	var arch architecture
	if err := yaml.Unmarshal(data, &arch); err != nil {
		return nil, fmt.Errorf("decode architecture yaml: %w", err)
	}

	paths := make(NamedPaths, len(arch.NamedPaths))
	for _, p := range arch.NamedPaths {
		paths[p.PathName] = chainNodes(&arch, p.PathName)
	}
	return paths, nil
}

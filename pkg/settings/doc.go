// Package settings loads rosviz.toml files: graph filters and the group
// placement configuration consumed by the layout engine.
package settings

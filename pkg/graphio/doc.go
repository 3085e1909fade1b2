// Package graphio serializes node graphs and layout overlays as JSON.
// The format is stable and self-contained, used for caching, snapshot
// storage and the HTTP API.
package graphio

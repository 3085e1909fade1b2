// Package store provides snapshot persistence for node graphs.
//
// A snapshot is a named, laid-out graph captured at a point in time, so a
// team can compare how a running system's node graph evolves across
// releases. Backends:
//   - memory: in-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
//
// # Usage
//
// Save a pipeline result:
//
//	snap, err := store.NewSnapshot("release-1.2", "architecture.yaml", g)
//	if err != nil {
//	    return err
//	}
//	if err := st.Save(ctx, snap); err != nil {
//	    return err
//	}
//
// List without pulling graph payloads:
//
//	infos, err := st.List(ctx)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/graphio"
	"github.com/okanda/rosviz/pkg/rosgraph"
)

// Snapshot is a stored graph with identifying metadata.
type Snapshot struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Source    string        `json:"source" bson:"source"`
	TakenAt   time.Time     `json:"taken_at" bson:"taken_at"`
	NodeCount int           `json:"node_count" bson:"node_count"`
	EdgeCount int           `json:"edge_count" bson:"edge_count"`
	Graph     graphio.Graph `json:"graph" bson:"graph"`
}

// Info is snapshot metadata without the graph payload. List results use
// Info so a large snapshot collection can be browsed cheaply.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Source    string    `json:"source" bson:"source"`
	TakenAt   time.Time `json:"taken_at" bson:"taken_at"`
	NodeCount int       `json:"node_count" bson:"node_count"`
	EdgeCount int       `json:"edge_count" bson:"edge_count"`
}

// Info returns the snapshot's metadata view.
func (s *Snapshot) Info() Info {
	return Info{
		ID:        s.ID,
		Name:      s.Name,
		Source:    s.Source,
		TakenAt:   s.TakenAt,
		NodeCount: s.NodeCount,
		EdgeCount: s.EdgeCount,
	}
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores a snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by ID, including its graph.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns metadata for all snapshots, newest first.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewSnapshot captures the given graph under a new random ID.
// The name must satisfy [errors.ValidateSnapshotName].
func NewSnapshot(name, source string, g *rosgraph.Graph) (*Snapshot, error) {
	if err := errors.ValidateSnapshotName(name); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "snapshot graph is nil")
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		TakenAt:   time.Now().UTC(),
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Graph:     graphio.FromGraph(g),
	}, nil
}

// notFound builds the standard missing-snapshot error.
func notFound(id string) error {
	return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id)
}

package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory snapshot store for development and testing.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

// Save stores a snapshot.
func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *snap
	s.snaps[snap.ID] = &copied
	return nil
}

// Get retrieves a snapshot by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	if !ok {
		return nil, notFound(id)
	}
	copied := *snap
	return &copied, nil
}

// List returns metadata for all snapshots, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]Info, 0, len(s.snaps))
	for _, snap := range s.snaps {
		infos = append(infos, snap.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].TakenAt.Equal(infos[j].TakenAt) {
			return infos[i].TakenAt.After(infos[j].TakenAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}

// Delete removes a snapshot. Deleting a missing ID is an error so callers
// can distinguish a typo from a successful removal.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[id]; !ok {
		return notFound(id)
	}
	delete(s.snaps, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

package store

import (
	"context"
	"testing"
	"time"

	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/rosgraph"
)

func sampleGraph(t *testing.T) *rosgraph.Graph {
	t.Helper()
	g := rosgraph.New()
	if err := g.AddEdge(rosgraph.Edge{From: "/a", To: "/b", Topic: "/t"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g
}

func TestNewSnapshot(t *testing.T) {
	snap, err := NewSnapshot("release-1.2", "architecture.yaml", sampleGraph(t))
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected generated ID")
	}
	if snap.NodeCount != 2 || snap.EdgeCount != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", snap.NodeCount, snap.EdgeCount)
	}
	if len(snap.Graph.Nodes) != 2 {
		t.Errorf("expected serialized graph, got %d nodes", len(snap.Graph.Nodes))
	}
}

func TestNewSnapshotRejectsBadName(t *testing.T) {
	for _, name := range []string{"", ".hidden", "semi;colon"} {
		if _, err := NewSnapshot(name, "a.yaml", sampleGraph(t)); err == nil {
			t.Errorf("NewSnapshot(%q) should fail", name)
		}
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	snap, err := NewSnapshot("trip", "a.yaml", sampleGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "trip" || len(got.Graph.Edges) != 1 {
		t.Errorf("unexpected snapshot: %+v", got)
	}

	// Mutating the returned copy must not affect the store.
	got.Name = "mutated"
	again, err := st.Get(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "trip" {
		t.Error("Get should return an independent copy")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeSnapshotNotFound {
		t.Errorf("GetCode = %v, want %v", code, errors.ErrCodeSnapshotNotFound)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "mid", "new"} {
		snap, err := NewSnapshot(name, "a.yaml", sampleGraph(t))
		if err != nil {
			t.Fatal(err)
		}
		snap.TakenAt = base.Add(time.Duration(i) * time.Hour)
		if err := st.Save(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("len = %d, want 3", len(infos))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if infos[i].Name != want {
			t.Errorf("infos[%d].Name = %q, want %q", i, infos[i].Name, want)
		}
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	snap, err := NewSnapshot("gone", "a.yaml", sampleGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, snap.ID); err == nil {
		t.Error("second delete should fail")
	}
}

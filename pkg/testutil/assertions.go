package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/constellation/pkg/graph"
)

// AssertNoDuplicateIDs verifies all scene node ids are unique.
func AssertNoDuplicateIDs(t *testing.T, s *graph.Scene) {
	t.Helper()
	seen := make(map[string]bool)
	for _, n := range s.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node id: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertAnchorAtCenter verifies the anchor is pinned exactly at the
// viewport center.
func AssertAnchorAtCenter(t *testing.T, s *graph.Scene) {
	t.Helper()
	a := s.Anchor()
	if a == nil {
		t.Fatal("scene has no anchor")
	}
	if !a.Pinned {
		t.Error("anchor is not pinned")
	}
	if a.Pos != s.Center {
		t.Errorf("anchor at %v, want center %v", a.Pos, s.Center)
	}
}

// AssertAllFinite verifies no node position is NaN or Inf.
func AssertAllFinite(t *testing.T, s *graph.Scene) {
	t.Helper()
	for _, n := range s.Nodes {
		if math.IsNaN(n.Pos.X) || math.IsInf(n.Pos.X, 0) ||
			math.IsNaN(n.Pos.Y) || math.IsInf(n.Pos.Y, 0) {
			t.Errorf("node %s has non-finite position %v", n.ID, n.Pos)
		}
	}
}

// AssertOnRing verifies the node sits within tolerance (a fraction, e.g.
// 0.1 for ±10%) of its ring's target radius from the center.
func AssertOnRing(t *testing.T, s *graph.Scene, id string, tolerance float64) {
	t.Helper()
	n := s.NodeByID(id)
	if n == nil {
		t.Fatalf("node %s not in scene", id)
	}
	target := s.Rings.RadiusFor(n.Ring, s.Width, s.Height)
	d := math.Hypot(n.Pos.X-s.Center.X, n.Pos.Y-s.Center.Y)
	if math.Abs(d-target) > target*tolerance {
		t.Errorf("node %s at radius %.2f, want %.2f ±%.0f%%", id, d, target, tolerance*100)
	}
}

// AssertStoreCovers verifies every free node has a committed position.
func AssertStoreCovers(t *testing.T, s *graph.Scene, store *graph.PositionStore) {
	t.Helper()
	for _, n := range s.Nodes {
		if n.Kind == graph.KindAnchor {
			continue
		}
		if _, ok := store.Get(n.ID); !ok {
			t.Errorf("node %s has no stored position", n.ID)
		}
	}
}

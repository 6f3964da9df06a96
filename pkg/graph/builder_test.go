package graph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
)

// stubEntity is a minimal payload for engine tests.
type stubEntity struct {
	id   string
	size float64
}

func (e stubEntity) EntityID() string { return e.id }
func (e stubEntity) Label() string    { return e.id }
func (e stubEntity) ColorKey() string { return "test" }
func (e stubEntity) SizeHint() float64 {
	if e.size == 0 {
		return 1
	}
	return e.size
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func member(id string, ring int, parent string) Member {
	return Member{Entity: stubEntity{id: id}, Ring: ring, ParentID: parent}
}

func starParams(n int) BuildParams {
	members := make([]Member, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, member(fmt.Sprintf("c%d", i), 1, ""))
	}
	return BuildParams{
		Anchor:  stubEntity{id: "you"},
		Members: members,
		Store:   NewPositionStore(),
		Width:   800,
		Height:  600,
		Rand:    testRand(),
	}
}

func TestBuildStarLinks(t *testing.T) {
	s := Build(starParams(5))

	if len(s.Nodes) != 6 {
		t.Fatalf("expected 6 nodes, got %d", len(s.Nodes))
	}
	if len(s.Links) != 5 {
		t.Fatalf("expected 5 links, got %d", len(s.Links))
	}
	for _, l := range s.Links {
		if !l.ToAnchor {
			t.Errorf("link %s-%s should be an anchor spoke", l.Source, l.Target)
		}
		if l.Source != "you" && l.Target != "you" {
			t.Errorf("link %s-%s does not touch the anchor", l.Source, l.Target)
		}
	}
}

func TestBuildAnchorPinnedAtCenter(t *testing.T) {
	s := Build(starParams(3))
	a := s.Anchor()
	if a == nil {
		t.Fatal("no anchor in scene")
	}
	if !a.Pinned {
		t.Fatal("anchor must be pinned")
	}
	if a.Pos != s.Center || a.Pin != s.Center {
		t.Fatalf("anchor at %v (pin %v), want center %v", a.Pos, a.Pin, s.Center)
	}
}

func TestBuildRingOneAnglesEvenlySpaced(t *testing.T) {
	n := 8
	s := Build(starParams(n))

	r := Rings{}
	radius := r.RadiusFor(1, 800, 600)
	for i := 0; i < n; i++ {
		node := s.NodeByID(fmt.Sprintf("c%d", i))
		if node == nil {
			t.Fatalf("missing node c%d", i)
		}
		angle := 2 * math.Pi * float64(i) / float64(n)
		want := Vec{
			X: s.Center.X + math.Cos(angle)*radius,
			Y: s.Center.Y + math.Sin(angle)*radius,
		}
		if math.Hypot(node.Pos.X-want.X, node.Pos.Y-want.Y) > 1e-9 {
			t.Errorf("c%d seeded at %v, want %v", i, node.Pos, want)
		}
	}
}

func TestBuildChildSeedsNearParentAngle(t *testing.T) {
	p := starParams(4)
	p.Members = append(p.Members,
		member("k1", 2, "c0"),
		member("k2", 3, "k1"),
	)
	s := Build(p)

	parentAngle := func(id string) float64 {
		n := s.NodeByID(id)
		return math.Atan2(n.Pos.Y-s.Center.Y, n.Pos.X-s.Center.X)
	}
	angleDiff := func(a, b float64) float64 {
		d := math.Abs(a - b)
		if d > math.Pi {
			d = 2*math.Pi - d
		}
		return d
	}

	if d := angleDiff(parentAngle("k1"), parentAngle("c0")); d > ring2Jitter+1e-9 {
		t.Errorf("ring-2 child %f rad from parent, bound %f", d, ring2Jitter)
	}
	// The ring-3 angle chains through its ring-2 parent, so both jitters
	// can accumulate relative to the ring-1 ancestor.
	if d := angleDiff(parentAngle("k2"), parentAngle("c0")); d > ring2Jitter+ring3Jitter+1e-9 {
		t.Errorf("ring-3 grandchild %f rad from ancestor, bound %f", d, ring2Jitter+ring3Jitter)
	}
}

func TestBuildReusesStoredPositions(t *testing.T) {
	p := starParams(6)
	stored := Vec{X: 123.5, Y: 456.25}
	p.Store.Set("c2", stored)

	s := Build(p)
	if got := s.NodeByID("c2").Pos; got != stored {
		t.Fatalf("stored position not reused exactly: got %v, want %v", got, stored)
	}
}

func TestBuildIdempotentRebuild(t *testing.T) {
	p := starParams(10)
	s := Build(p)
	sim := NewSim(s, p.Store)
	sim.Settle(DefaultSettleTicks)

	// Same entities, same store, same viewport: every node must come back
	// at its stored position, with no reseeding.
	p2 := starParams(10)
	p2.Store = p.Store
	rebuilt := Build(p2)
	for _, n := range rebuilt.Members() {
		want, ok := p.Store.Get(n.ID)
		if !ok {
			t.Fatalf("no stored position for %s", n.ID)
		}
		if n.Pos != want {
			t.Errorf("%s rebuilt at %v, want stored %v", n.ID, n.Pos, want)
		}
	}
}

func TestBuildDropsEdgesWithMissingEndpoints(t *testing.T) {
	p := starParams(3)
	p.Edges = []Edge{
		{SourceID: "c0", TargetID: "c1"},
		{SourceID: "c1", TargetID: "ghost"},
		{SourceID: "ghost", TargetID: "c2"},
	}
	s := Build(p)

	// 3 spokes plus the one valid explicit edge.
	if len(s.Links) != 4 {
		t.Fatalf("expected 4 links, got %d", len(s.Links))
	}
	for _, l := range s.Links {
		if l.Source == "ghost" || l.Target == "ghost" {
			t.Fatalf("edge to missing node survived: %+v", l)
		}
	}
}

func TestBuildDeduplicatesEdges(t *testing.T) {
	p := starParams(3)
	p.Edges = []Edge{
		{SourceID: "c0", TargetID: "c1"},
		{SourceID: "c1", TargetID: "c0"},
		{SourceID: "c0", TargetID: "c0"},
		{SourceID: "c0", TargetID: "you"}, // already a spoke
	}
	s := Build(p)
	if len(s.Links) != 4 {
		t.Fatalf("expected 3 spokes + 1 explicit link, got %d", len(s.Links))
	}
}

func TestBuildUnknownRingTreatedAsRingTwo(t *testing.T) {
	p := starParams(1)
	p.Members = append(p.Members, member("odd", 7, ""))
	s := Build(p)

	n := s.NodeByID("odd")
	if n.Ring != 2 {
		t.Fatalf("unknown ring normalized to %d, want 2", n.Ring)
	}
	r := Rings{}
	want := r.RadiusFor(2, 800, 600)
	got := math.Hypot(n.Pos.X-s.Center.X, n.Pos.Y-s.Center.Y)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("unknown ring seeded at radius %f, want fallback %f", got, want)
	}
}

func TestBuildSkipsDuplicateIDs(t *testing.T) {
	p := starParams(2)
	p.Members = append(p.Members, member("c0", 2, ""))
	s := Build(p)
	if len(s.Nodes) != 3 {
		t.Fatalf("duplicate id produced %d nodes, want 3", len(s.Nodes))
	}
	if s.NodeByID("c0").Ring != 1 {
		t.Fatal("first occurrence should win")
	}
}

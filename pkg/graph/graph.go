// Package graph implements the radial force-directed layout engine behind the
// constellation views: ring geometry, deterministic angle seeding, a persistent
// position store, and a temperature-driven simulation with drag pinning.
//
// The engine is domain-agnostic. Contacts, categories and messages reach it
// through the Entity capability interface; it never inspects domain fields.
package graph

import "gonum.org/v1/gonum/spatial/r2"

// Vec is a 2D position, displacement or force.
type Vec = r2.Vec

// Entity is the capability surface a payload exposes to the engine and the
// renderer. The engine itself only uses EntityID and SizeHint; Label and
// ColorKey exist for whoever draws the scene.
type Entity interface {
	EntityID() string
	Label() string
	ColorKey() string
	SizeHint() float64
}

// NodeKind discriminates the anchor from ring members.
type NodeKind int

const (
	// KindAnchor is the single fixed center node of a view
	KindAnchor NodeKind = iota
	// KindMember is a leaf node on one of the rings
	KindMember
)

// Node is one laid-out node. Position is owned by whoever wrote it last, the
// simulation or a drag in progress; nothing else mutates it.
type Node struct {
	Kind NodeKind
	ID   string
	// Ring is the ring level, meaningful only for KindMember
	Ring int
	// Payload is the externally owned entity, never mutated here
	Payload Entity
	// Pos is the current layout position
	Pos Vec
	// Pinned overrides the simulation: the node stays at Pin. The anchor is
	// always pinned at the view center; members are pinned during drag.
	Pinned bool
	Pin    Vec
	// Scale is the rendered size multiplier, raised by hover/selection.
	// It feeds collision clearance so enlarged nodes reserve more room.
	Scale float64
}

// CollisionRadius is the clearance the node reserves against its neighbors.
func (n *Node) CollisionRadius() float64 {
	hint := 1.0
	if n.Payload != nil {
		hint = n.Payload.SizeHint()
	}
	scale := n.Scale
	if scale <= 0 {
		scale = 1
	}
	if n.Kind == KindAnchor {
		return anchorCollisionRadius * hint * scale
	}
	return memberCollisionRadius * hint * scale
}

// Link joins two nodes by id. Links are derived from the current node set on
// every rebuild and never persisted.
type Link struct {
	Source string
	Target string
	// ToAnchor marks the implicit spokes from ring-1 members to the anchor,
	// which use a longer rest length than member-to-member links
	ToAnchor bool
	// RestLength is the separation the link force pulls toward
	RestLength float64
}

// Edge is one explicit relation supplied by the caller, independent of the
// parent hierarchy. Edges referencing ids absent from the node set are
// dropped during the build.
type Edge struct {
	SourceID string
	TargetID string
}

// Scene is the node/link model one view renders. It is rebuilt whenever the
// entity collection, the view state or the viewport changes; only the
// PositionStore carries state across rebuilds.
type Scene struct {
	Nodes  []*Node
	Links  []Link
	Center Vec
	Width  float64
	Height float64
	Rings  Rings
	Tuning Tuning

	byID map[string]*Node
}

// NodeByID returns the node with the given id, or nil.
func (s *Scene) NodeByID(id string) *Node {
	return s.byID[id]
}

// Anchor returns the scene's anchor node.
func (s *Scene) Anchor() *Node {
	for _, n := range s.Nodes {
		if n.Kind == KindAnchor {
			return n
		}
	}
	return nil
}

// Members returns all non-anchor nodes in build order.
func (s *Scene) Members() []*Node {
	out := make([]*Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Kind == KindMember {
			out = append(out, n)
		}
	}
	return out
}

// IncidentLinks returns the indexes of links touching the given node id.
func (s *Scene) IncidentLinks(id string) []int {
	var out []int
	for i, l := range s.Links {
		if l.Source == id || l.Target == id {
			out = append(out, i)
		}
	}
	return out
}

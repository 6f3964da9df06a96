package graph

import (
	"math"
	"math/rand/v2"
)

// Jitter bounds for seed angles inherited from a parent. Ring 3 spreads
// wider because its parent angle was itself jittered from a grandparent.
const (
	ring2Jitter = 0.5
	ring3Jitter = 0.9
)

// memberRestLength is the target separation for member-to-member links.
// Anchor spokes use the ring-1 radius instead so the link force and the
// radial force agree on where ring-1 nodes belong.
const memberRestLength = 60.0

// Member is one entity to place on a ring.
type Member struct {
	Entity Entity
	// Ring is the declared ring level; unrecognized levels are treated as
	// ring 2 with the fallback radius
	Ring int
	// ParentID names the member this one is reached through, used only for
	// seed-angle inheritance. Empty or unresolvable parents seed at a
	// uniform random angle.
	ParentID string
}

// BuildParams collects everything one build needs. Rand drives the seed
// jitter for first-seen nodes; nil uses the shared source.
type BuildParams struct {
	Anchor  Entity
	Members []Member
	Edges   []Edge
	Store   *PositionStore
	Rings   Rings
	Width   float64
	Height  float64
	// Tuning overrides the default force gains; zero fields keep defaults
	Tuning Tuning
	Rand   *rand.Rand
}

// Build produces the scene for one view: the pinned anchor at the viewport
// center, one node per member, anchor spokes for every ring-1 member, and
// the explicit edges whose endpoints both exist. Members already present in
// the store keep their stored positions exactly; only first-seen members go
// through angle seeding.
func Build(p BuildParams) *Scene {
	center := Vec{X: p.Width / 2, Y: p.Height / 2}
	randFloat := rand.Float64
	if p.Rand != nil {
		randFloat = p.Rand.Float64
	}

	s := &Scene{
		Center: center,
		Width:  p.Width,
		Height: p.Height,
		Rings:  p.Rings,
		Tuning: p.Tuning.withDefaults(),
		byID:   make(map[string]*Node, len(p.Members)+1),
	}

	anchor := &Node{
		Kind:    KindAnchor,
		ID:      p.Anchor.EntityID(),
		Payload: p.Anchor,
		Pos:     center,
		Pinned:  true,
		Pin:     center,
		Scale:   1,
	}
	s.Nodes = append(s.Nodes, anchor)
	s.byID[anchor.ID] = anchor

	angles := seedAngles(p.Members, randFloat)

	for _, m := range p.Members {
		id := m.Entity.EntityID()
		if id == "" || id == anchor.ID {
			continue
		}
		if _, dup := s.byID[id]; dup {
			continue
		}
		ring := m.Ring
		if _, known := ringFractions[ring]; !known {
			ring = fallbackRing
		}

		n := &Node{
			Kind:    KindMember,
			ID:      id,
			Ring:    ring,
			Payload: m.Entity,
			Scale:   1,
		}
		if pos, ok := p.Store.Get(id); ok {
			n.Pos = pos
		} else {
			radius := p.Rings.RadiusFor(ring, p.Width, p.Height)
			angle := angles[id]
			n.Pos = Vec{
				X: center.X + math.Cos(angle)*radius,
				Y: center.Y + math.Sin(angle)*radius,
			}
		}
		s.Nodes = append(s.Nodes, n)
		s.byID[id] = n
	}

	spokeRest := p.Rings.RadiusFor(1, p.Width, p.Height)
	seen := make(map[[2]string]bool)
	addLink := func(a, b string, toAnchor bool, rest float64) {
		if a == b {
			return
		}
		key := [2]string{a, b}
		if b < a {
			key = [2]string{b, a}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		s.Links = append(s.Links, Link{Source: a, Target: b, ToAnchor: toAnchor, RestLength: rest})
	}

	for _, n := range s.Nodes {
		if n.Kind == KindMember && n.Ring == 1 {
			addLink(anchor.ID, n.ID, true, spokeRest)
		}
	}
	for _, e := range p.Edges {
		// Edges referencing ids outside the current node set are dropped,
		// not an error: filtering may have removed the node.
		if s.byID[e.SourceID] == nil || s.byID[e.TargetID] == nil {
			continue
		}
		toAnchor := e.SourceID == anchor.ID || e.TargetID == anchor.ID
		rest := memberRestLength
		if toAnchor {
			rest = spokeRest
		}
		addLink(e.SourceID, e.TargetID, toAnchor, rest)
	}

	return s
}

// seedAngles assigns every member a seed angle in one bottom-up pass:
// ring-1 members are spread evenly in input order, deeper rings inherit
// their parent's memoized angle plus a bounded jitter, and members with no
// resolvable parent get a uniform random angle. Only consulted for members
// the store has never seen.
func seedAngles(members []Member, randFloat func() float64) map[string]float64 {
	angles := make(map[string]float64, len(members))
	byID := make(map[string]Member, len(members))
	for _, m := range members {
		byID[m.Entity.EntityID()] = m
	}

	var ring1 []string
	for _, m := range members {
		if m.Ring == 1 {
			ring1 = append(ring1, m.Entity.EntityID())
		}
	}
	for i, id := range ring1 {
		angles[id] = 2 * math.Pi * float64(i) / float64(len(ring1))
	}

	jitterFor := func(ring int) float64 {
		if ring >= 3 {
			return ring3Jitter
		}
		return ring2Jitter
	}

	// Two passes cover the deepest configured ring: ring 2 resolves against
	// ring 1, then ring 3 against the now-assigned ring 2 angles.
	for pass := 0; pass < 2; pass++ {
		for _, m := range members {
			id := m.Entity.EntityID()
			if _, done := angles[id]; done {
				continue
			}
			if _, exists := byID[m.ParentID]; !exists {
				continue
			}
			base, ok := angles[m.ParentID]
			if !ok {
				continue
			}
			j := jitterFor(m.Ring)
			angles[id] = base + (randFloat()*2-1)*j
		}
	}

	for _, m := range members {
		id := m.Entity.EntityID()
		if _, done := angles[id]; !done {
			angles[id] = randFloat() * 2 * math.Pi
		}
	}
	return angles
}

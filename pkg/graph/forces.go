package graph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Force computes the contribution of one force to node i, given the whole
// scene and the current temperature. Forces are pure so each one can be
// tested in isolation; the simulation composes them in a fixed order.
type Force func(i int, s *Scene, temp float64) Vec

const (
	collidePush  = 0.5
	minForceDist = 1.0

	anchorCollisionRadius = 18.0
	memberCollisionRadius = 12.0
)

// Tuning carries the force gains. Hand-tuned defaults hold a ring-1 star
// within a few percent of its target radius; the config file may override
// individual values.
type Tuning struct {
	// RadialGain scales the pull toward the ring radius
	RadialGain float64
	// LinkGain scales link spring strength
	LinkGain float64
	// RepelRange bounds the pairwise repulsion interaction distance
	RepelRange float64
	// RepelMember is the repulsion constant between members
	RepelMember float64
	// RepelAnchor is the stronger repulsion the anchor exerts
	RepelAnchor float64
}

// DefaultTuning returns the hand-tuned gains.
func DefaultTuning() Tuning {
	return Tuning{
		RadialGain:  0.5,
		LinkGain:    0.05,
		RepelRange:  160,
		RepelMember: 2000,
		RepelAnchor: 8000,
	}
}

// withDefaults fills zero fields from DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.RadialGain == 0 {
		t.RadialGain = d.RadialGain
	}
	if t.LinkGain == 0 {
		t.LinkGain = d.LinkGain
	}
	if t.RepelRange == 0 {
		t.RepelRange = d.RepelRange
	}
	if t.RepelMember == 0 {
		t.RepelMember = d.RepelMember
	}
	if t.RepelAnchor == 0 {
		t.RepelAnchor = d.RepelAnchor
	}
	return t
}

// defaultForces is the fixed composition order. Collision runs last and is
// applied unclamped so settled layouts stay overlap-free.
var defaultForces = []Force{radialForce, linkForce, repelForce}

// radialForce pulls a member toward its ring's target radius, along the
// center-to-node direction.
func radialForce(i int, s *Scene, temp float64) Vec {
	n := s.Nodes[i]
	if n.Kind == KindAnchor {
		return Vec{}
	}
	d := r2.Sub(n.Pos, s.Center)
	dist := vecLen(d)
	if dist < minForceDist {
		dist = minForceDist
		d = Vec{X: minForceDist, Y: 0}
	}
	target := s.Rings.RadiusFor(n.Ring, s.Width, s.Height)
	mag := (target - dist) * temp * s.Tuning.RadialGain
	return r2.Scale(mag/dist, d)
}

// linkForce is a spring pulling each linked pair toward the link's rest
// length. Anchor spokes carry a longer rest length than member links.
func linkForce(i int, s *Scene, temp float64) Vec {
	n := s.Nodes[i]
	var out Vec
	for _, l := range s.Links {
		var other *Node
		switch n.ID {
		case l.Source:
			other = s.NodeByID(l.Target)
		case l.Target:
			other = s.NodeByID(l.Source)
		default:
			continue
		}
		if other == nil {
			continue
		}
		d := r2.Sub(other.Pos, n.Pos)
		dist := vecLen(d)
		if dist < minForceDist {
			dist = minForceDist
			d = Vec{X: minForceDist, Y: 0}
		}
		mag := (dist - l.RestLength) * temp * s.Tuning.LinkGain
		out = r2.Add(out, r2.Scale(mag/dist, d))
	}
	return out
}

// repelForce pushes nearby nodes apart with an inverse-square falloff,
// ignoring pairs beyond repelRange. The anchor repels harder so ring-1
// members never collapse onto the center.
func repelForce(i int, s *Scene, temp float64) Vec {
	n := s.Nodes[i]
	if n.Kind == KindAnchor {
		return Vec{}
	}
	var out Vec
	for j, other := range s.Nodes {
		if j == i {
			continue
		}
		d := r2.Sub(n.Pos, other.Pos)
		dist := vecLen(d)
		if dist > s.Tuning.RepelRange {
			continue
		}
		if dist < minForceDist {
			dist = minForceDist
			d = Vec{X: minForceDist, Y: 0}
		}
		k := s.Tuning.RepelMember
		if other.Kind == KindAnchor {
			k = s.Tuning.RepelAnchor
		}
		mag := k / (dist * dist) * temp
		out = r2.Add(out, r2.Scale(mag/dist, d))
	}
	return out
}

// collideForce enforces the minimum separation between node pairs, pushing
// the node half the overlap away from each intruding neighbor. Not scaled
// by temperature: overlap is resolved even in a cold layout.
func collideForce(i int, s *Scene, temp float64) Vec {
	n := s.Nodes[i]
	if n.Kind == KindAnchor {
		return Vec{}
	}
	var out Vec
	for j, other := range s.Nodes {
		if j == i {
			continue
		}
		minSep := n.CollisionRadius() + other.CollisionRadius()
		d := r2.Sub(n.Pos, other.Pos)
		dist := vecLen(d)
		if dist >= minSep {
			continue
		}
		if dist < minForceDist {
			dist = minForceDist
			d = Vec{X: minForceDist, Y: 0}
		}
		overlap := minSep - dist
		out = r2.Add(out, r2.Scale(overlap*collidePush/dist, d))
	}
	return out
}

func vecLen(v Vec) float64 {
	return math.Hypot(v.X, v.Y)
}

func isFinite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

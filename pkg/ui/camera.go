package ui

import "github.com/vanderheijden86/constellation/pkg/graph"

// Default zoom bounds, overridable from config.
const (
	DefaultMinZoom = 0.25
	DefaultMaxZoom = 4.0
)

// Camera is a purely presentational affine transform applied when the
// layout is projected onto the terminal grid. Model coordinates, the
// position store, and the forces never see it.
type Camera struct {
	Zoom    float64
	Pan     graph.Vec // view-space offset in layout units
	Pivot   graph.Vec // zoom pivot, normally the layout center
	MinZoom float64
	MaxZoom float64

	// maxPan bounds panning so the layout cannot be pushed entirely
	// off-screen. Updated on resize.
	maxPan graph.Vec
}

// NewCamera returns an identity camera with the given zoom bounds. Invalid
// bounds fall back to the defaults.
func NewCamera(minZoom, maxZoom float64) Camera {
	if minZoom <= 0 || maxZoom <= minZoom {
		minZoom = DefaultMinZoom
		maxZoom = DefaultMaxZoom
	}
	return Camera{Zoom: 1, MinZoom: minZoom, MaxZoom: maxZoom}
}

// SetViewport re-centers the zoom pivot and recomputes the pan bound for a
// layout of the given extent.
func (c *Camera) SetViewport(width, height float64) {
	c.Pivot = graph.Vec{X: width / 2, Y: height / 2}
	c.maxPan = graph.Vec{X: width, Y: height}
	c.Pan = c.clampPan(c.Pan)
}

// ToView maps a model-space point to view space.
func (c Camera) ToView(m graph.Vec) graph.Vec {
	return graph.Vec{
		X: (m.X-c.Pivot.X)*c.Zoom + c.Pivot.X + c.Pan.X,
		Y: (m.Y-c.Pivot.Y)*c.Zoom + c.Pivot.Y + c.Pan.Y,
	}
}

// ToModel maps a view-space point back to model space.
func (c Camera) ToModel(v graph.Vec) graph.Vec {
	return graph.Vec{
		X: (v.X-c.Pan.X-c.Pivot.X)/c.Zoom + c.Pivot.X,
		Y: (v.Y-c.Pan.Y-c.Pivot.Y)/c.Zoom + c.Pivot.Y,
	}
}

// PanBy shifts the view by the given delta, bounded so the layout stays
// reachable.
func (c *Camera) PanBy(d graph.Vec) {
	c.Pan = c.clampPan(graph.Vec{X: c.Pan.X + d.X, Y: c.Pan.Y + d.Y})
}

// ZoomAt scales the zoom by factor, keeping the model point under the given
// view-space cursor fixed on screen.
func (c *Camera) ZoomAt(factor float64, cursor graph.Vec) {
	if factor <= 0 {
		return
	}
	anchor := c.ToModel(cursor)
	zoom := c.Zoom * factor
	if zoom < c.MinZoom {
		zoom = c.MinZoom
	}
	if zoom > c.MaxZoom {
		zoom = c.MaxZoom
	}
	c.Zoom = zoom
	// Solve Pan so that ToView(anchor) == cursor again.
	c.Pan = c.clampPan(graph.Vec{
		X: cursor.X - (anchor.X-c.Pivot.X)*c.Zoom - c.Pivot.X,
		Y: cursor.Y - (anchor.Y-c.Pivot.Y)*c.Zoom - c.Pivot.Y,
	})
}

// Reset restores the identity transform.
func (c *Camera) Reset() {
	c.Zoom = 1
	c.Pan = graph.Vec{}
}

func (c Camera) clampPan(p graph.Vec) graph.Vec {
	if c.maxPan.X > 0 {
		if p.X > c.maxPan.X {
			p.X = c.maxPan.X
		}
		if p.X < -c.maxPan.X {
			p.X = -c.maxPan.X
		}
	}
	if c.maxPan.Y > 0 {
		if p.Y > c.maxPan.Y {
			p.Y = c.maxPan.Y
		}
		if p.Y < -c.maxPan.Y {
			p.Y = -c.maxPan.Y
		}
	}
	return p
}

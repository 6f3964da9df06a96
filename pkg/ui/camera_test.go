package ui

import (
	"math"
	"testing"

	"github.com/vanderheijden86/constellation/pkg/graph"
)

func TestNewCameraInvalidBoundsFallBack(t *testing.T) {
	c := NewCamera(0, 0)
	if c.MinZoom != DefaultMinZoom || c.MaxZoom != DefaultMaxZoom {
		t.Errorf("bounds %f..%f, want defaults", c.MinZoom, c.MaxZoom)
	}
	c = NewCamera(2, 1)
	if c.MinZoom != DefaultMinZoom || c.MaxZoom != DefaultMaxZoom {
		t.Error("inverted bounds not replaced with defaults")
	}
}

func TestCameraRoundTrip(t *testing.T) {
	c := NewCamera(0.25, 4)
	c.SetViewport(800, 600)
	c.PanBy(graph.Vec{X: 30, Y: -12})
	c.ZoomAt(1.7, graph.Vec{X: 100, Y: 200})

	pts := []graph.Vec{{X: 0, Y: 0}, {X: 400, Y: 300}, {X: 799, Y: 1}}
	for _, m := range pts {
		back := c.ToModel(c.ToView(m))
		if math.Abs(back.X-m.X) > 1e-9 || math.Abs(back.Y-m.Y) > 1e-9 {
			t.Errorf("round trip of %v gave %v", m, back)
		}
	}
}

func TestCameraIdentityByDefault(t *testing.T) {
	c := NewCamera(0.25, 4)
	c.SetViewport(800, 600)
	v := c.ToView(graph.Vec{X: 123, Y: 456})
	if v.X != 123 || v.Y != 456 {
		t.Errorf("identity camera moved the point to %v", v)
	}
}

func TestZoomAtKeepsCursorFixed(t *testing.T) {
	c := NewCamera(0.25, 4)
	c.SetViewport(800, 600)
	cursor := graph.Vec{X: 150, Y: 450}
	anchor := c.ToModel(cursor)

	c.ZoomAt(1.5, cursor)
	got := c.ToView(anchor)
	if math.Abs(got.X-cursor.X) > 1e-9 || math.Abs(got.Y-cursor.Y) > 1e-9 {
		t.Errorf("model point under the cursor moved to %v", got)
	}
}

func TestZoomClampedToBounds(t *testing.T) {
	c := NewCamera(0.25, 4)
	c.SetViewport(800, 600)
	for i := 0; i < 40; i++ {
		c.ZoomAt(1.5, graph.Vec{X: 400, Y: 300})
	}
	if c.Zoom != 4 {
		t.Errorf("zoom %f after zooming in, want max 4", c.Zoom)
	}
	for i := 0; i < 40; i++ {
		c.ZoomAt(1/1.5, graph.Vec{X: 400, Y: 300})
	}
	if c.Zoom != 0.25 {
		t.Errorf("zoom %f after zooming out, want min 0.25", c.Zoom)
	}
}

func TestPanClampedToViewport(t *testing.T) {
	c := NewCamera(0.25, 4)
	c.SetViewport(800, 600)
	c.PanBy(graph.Vec{X: 1e6, Y: -1e6})
	if c.Pan.X != 800 || c.Pan.Y != -600 {
		t.Errorf("pan %v, want clamped to viewport extent", c.Pan)
	}
}

func TestCameraReset(t *testing.T) {
	c := NewCamera(0.25, 4)
	c.SetViewport(800, 600)
	c.PanBy(graph.Vec{X: 50, Y: 50})
	c.ZoomAt(2, graph.Vec{X: 10, Y: 10})
	c.Reset()
	if c.Zoom != 1 || c.Pan.X != 0 || c.Pan.Y != 0 {
		t.Errorf("Reset left zoom=%f pan=%v", c.Zoom, c.Pan)
	}
}

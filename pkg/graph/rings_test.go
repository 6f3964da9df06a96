package graph

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestRadiusForIncreasesWithRing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.Float64Range(200, 4000).Draw(t, "width")
		h := rapid.Float64Range(200, 4000).Draw(t, "height")
		r := Rings{}

		r1 := r.RadiusFor(1, w, h)
		r2 := r.RadiusFor(2, w, h)
		r3 := r.RadiusFor(3, w, h)

		if !(r1 < r2 && r2 < r3) {
			t.Fatalf("radii not strictly increasing: %f, %f, %f", r1, r2, r3)
		}

		limit := math.Min(w, h)/2 - DefaultRingMargin
		if r3 > limit+1e-9 {
			t.Fatalf("outer ring %f exceeds limit %f", r3, limit)
		}
	})
}

func TestRadiusForUnknownRingFallsBack(t *testing.T) {
	r := Rings{}
	want := r.RadiusFor(2, 800, 600)
	for _, ring := range []int{0, -1, 4, 99} {
		if got := r.RadiusFor(ring, 800, 600); got != want {
			t.Errorf("RadiusFor(%d) = %f, want ring-2 fallback %f", ring, got, want)
		}
	}
}

func TestRadiusForIsPure(t *testing.T) {
	r := Rings{}
	a := r.RadiusFor(1, 1024, 768)
	b := r.RadiusFor(1, 1024, 768)
	if a != b {
		t.Fatalf("RadiusFor not reproducible: %f vs %f", a, b)
	}
}

func TestRadiusForCustomMargin(t *testing.T) {
	tight := Rings{Margin: 8}
	loose := Rings{Margin: 64}
	if tight.RadiusFor(3, 800, 600) <= loose.RadiusFor(3, 800, 600) {
		t.Fatal("smaller margin should leave a larger usable radius")
	}
}

func TestRadiusForTinyViewportStaysPositive(t *testing.T) {
	r := Rings{}
	for _, ring := range []int{1, 2, 3} {
		if got := r.RadiusFor(ring, 10, 10); got <= 0 {
			t.Errorf("RadiusFor(%d) on tiny viewport = %f, want > 0", ring, got)
		}
	}
}

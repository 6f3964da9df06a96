package graph

import "math"

// DefaultRingMargin keeps the outermost ring clear of the viewport edge.
const DefaultRingMargin = 24.0

// ringFractions maps ring level to its share of the usable radius. Strictly
// increasing so outer rings always sit outside inner ones.
var ringFractions = map[int]float64{
	1: 0.30,
	2: 0.55,
	3: 0.80,
}

// fallbackRing is the level an unrecognized classification resolves to.
const fallbackRing = 2

// Rings resolves ring levels to target radii for the current viewport. The
// zero value uses DefaultRingMargin.
type Rings struct {
	Margin float64
}

// RadiusFor returns the target radius for a ring level at the given viewport
// size. Pure: the same inputs always produce the same radius. Unknown levels
// fall back to the ring-2 radius.
func (r Rings) RadiusFor(ring int, width, height float64) float64 {
	margin := r.Margin
	if margin == 0 {
		margin = DefaultRingMargin
	}
	max := math.Min(width, height)/2 - margin
	if max < 1 {
		max = 1
	}
	frac, ok := ringFractions[ring]
	if !ok {
		frac = ringFractions[fallbackRing]
	}
	return max * frac
}

// MaxRing is the highest ring level with its own configured radius.
func (r Rings) MaxRing() int {
	max := 0
	for ring := range ringFractions {
		if ring > max {
			max = ring
		}
	}
	return max
}

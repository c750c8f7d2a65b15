package scoremap

import (
	"math"

	"property-explorer/internal/property"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultMaxHeight is the scene height of a property with a perfect match score.
// The ground plane is at Y=0.
const DefaultMaxHeight = 20

// Placement is the derived position of one property. It is recomputed whenever
// scores or weights change and is never persisted.
type Placement struct {
	Score  float64 // composite match score, 0–100
	Height float32 // anchor height above the ground plane, 0–MaxHeight
	X, Z   float32 // ground position from Layout
}

// Mapper turns properties and weights into placements. It holds only constants, so
// one Mapper can be shared and ComputePlacement is a pure function of its inputs.
type Mapper struct {
	MaxHeight float32
}

// New returns a Mapper with the given maximum height. maxHeight <= 0 uses DefaultMaxHeight.
func New(maxHeight float32) Mapper {
	if maxHeight <= 0 || math.IsNaN(float64(maxHeight)) {
		maxHeight = DefaultMaxHeight
	}
	return Mapper{MaxHeight: maxHeight}
}

// Score returns the weighted composite score of p in [0,100].
//
// A nil weight set means "no weighting configured" and the feed's MatchScore is used as-is.
// A non-nil empty set (or one whose weights are all zero) yields 0. Attributes missing
// from the property contribute 0; negative weights are ignored.
func Score(p property.Property, weights property.Weights) float64 {
	if weights == nil {
		return property.Clamp100(p.MatchScore)
	}
	var sum, total float64
	for _, name := range weights.Names() {
		w := weights[name]
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		total += w
		if v, ok := p.Attribute(name); ok {
			sum += w * v
		}
	}
	if total == 0 {
		return 0
	}
	return property.Clamp100(sum / total)
}

// ComputePlacement returns the placement height for p. X and Z are left at zero; the
// scene fills them from Layout, which needs the whole property set.
func (m Mapper) ComputePlacement(p property.Property, weights property.Weights) Placement {
	s := Score(p, weights)
	return Placement{Score: s, Height: m.HeightFor(s)}
}

// HeightFor maps a score in [0,100] to [0,MaxHeight]. Out-of-range scores are clamped.
func (m Mapper) HeightFor(score float64) float32 {
	h := float32(property.Clamp100(score)/100) * m.MaxHeight
	if h > m.MaxHeight {
		h = m.MaxHeight
	}
	return h
}

// Ramp stops: red for poor matches, yellow in the middle, green for excellent.
var (
	rampLow  = rl.NewColor(239, 68, 68, 255)
	rampMid  = rl.NewColor(250, 204, 21, 255)
	rampHigh = rl.NewColor(34, 197, 94, 255)
)

// ColorFor returns the rod color for a score on a continuous red→yellow→green ramp.
func ColorFor(score float64) rl.Color {
	t := float32(property.Clamp100(score) / 100)
	if t < 0.5 {
		return lerpColor(rampLow, rampMid, t*2)
	}
	return lerpColor(rampMid, rampHigh, (t-0.5)*2)
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5)
	}
	return rl.NewColor(mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255)
}

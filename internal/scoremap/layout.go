package scoremap

import (
	"math"

	"property-explorer/internal/property"

	"github.com/chewxy/math32"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// DefaultLayoutRadius is the ground radius that located properties are fitted into.
const DefaultLayoutRadius = 40

// unknownRingScale places properties without a coordinate on a ring just outside the
// located ones, so they are visible but clearly apart.
const unknownRingScale = 1.25

// XZ is a ground-plane position.
type XZ struct {
	X, Z float32
}

// Layout assigns ground positions to properties. Known coordinates are projected to Web
// Mercator, centered on their bounding-box center, and scaled so the farthest property
// sits at radius. North maps to -Z so the default camera sees the map the right way up.
// Properties without a coordinate are spread evenly on an outer ring in input order.
// The result depends only on the input slice, so rebuilding with the same input yields
// the same layout.
func Layout(props []property.Property, radius float32) map[string]XZ {
	if radius <= 0 {
		radius = DefaultLayoutRadius
	}
	out := make(map[string]XZ, len(props))

	var located orb.MultiPoint
	var locatedIDs []string
	var unknownIDs []string
	for _, p := range props {
		if p.HasCoordinate() {
			located = append(located, project.Point(p.Coordinate, project.WGS84.ToMercator))
			locatedIDs = append(locatedIDs, p.ID)
		} else {
			unknownIDs = append(unknownIDs, p.ID)
		}
	}

	if len(located) > 0 {
		center := located.Bound().Center()
		var maxDist float64
		for _, pt := range located {
			d := math.Hypot(pt.X()-center.X(), pt.Y()-center.Y())
			if d > maxDist {
				maxDist = d
			}
		}
		scale := 0.0
		if maxDist > 0 {
			scale = float64(radius) / maxDist
		}
		for i, pt := range located {
			out[locatedIDs[i]] = XZ{
				X: float32((pt.X() - center.X()) * scale),
				Z: float32(-(pt.Y() - center.Y()) * scale),
			}
		}
	}

	ring := radius
	if len(located) > 0 {
		ring = radius * unknownRingScale
	}
	for i, id := range unknownIDs {
		angle := float32(i) / float32(len(unknownIDs)) * 2 * math32.Pi
		out[id] = XZ{X: math32.Cos(angle) * ring, Z: math32.Sin(angle) * ring}
	}
	return out
}

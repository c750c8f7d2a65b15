package scene

import (
	"property-explorer/internal/visual"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HitKind says which part of a visual a pick ray hit.
type HitKind int

const (
	HitVisual HitKind = iota
	HitLabel
)

func (k HitKind) String() string {
	if k == HitLabel {
		return "label"
	}
	return "visual"
}

// Hit is the result of Pick.
type Hit struct {
	Handle   Handle
	ID       string
	Kind     HitKind
	Distance float32
	Point    rl.Vector3
}

// Pick casts ray through the scene. A hit on any visual's box beats every label hit;
// within a kind the nearest hit wins.
func (c *Controller) Pick(ray rl.Ray) (Hit, bool) {
	var best, bestLabel Hit
	var found, foundLabel bool
	c.Each(func(h Handle, v *visual.Visual) {
		if col := rl.GetRayCollisionBox(ray, v.Bounds()); col.Hit {
			if !found || col.Distance < best.Distance {
				best = Hit{Handle: h, ID: v.ID(), Kind: HitVisual, Distance: col.Distance, Point: col.Point}
				found = true
			}
		}
		if col := rl.GetRayCollisionBox(ray, v.LabelBounds()); col.Hit {
			if !foundLabel || col.Distance < bestLabel.Distance {
				bestLabel = Hit{Handle: h, ID: v.ID(), Kind: HitLabel, Distance: col.Distance, Point: col.Point}
				foundLabel = true
			}
		}
	})
	if found {
		return best, true
	}
	return bestLabel, foundLabel
}

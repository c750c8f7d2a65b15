package visual

import (
	"property-explorer/internal/imagery"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultOverheadPitchDeg is the camera pitch below which overhead imagery is shown.
const DefaultOverheadPitchDeg = -30

// Switcher picks which imagery the boxes show from the camera pitch. SelectFace is
// evaluated once per frame for the whole scene and Apply is run on every visual.
type Switcher struct {
	// Threshold is the pitch in radians below which OVERHEAD is selected.
	Threshold float32
	// Hysteresis in radians: once overhead is selected, the pitch must rise to
	// Threshold+Hysteresis before ground-level is selected again. 0 gives the exact
	// threshold rule.
	Hysteresis float32

	current imagery.Slot
}

// NewSwitcher returns a switcher with thresholds in degrees.
func NewSwitcher(thresholdDeg, hysteresisDeg float32) *Switcher {
	if hysteresisDeg < 0 {
		hysteresisDeg = 0
	}
	return &Switcher{
		Threshold:  thresholdDeg * math32.Pi / 180,
		Hysteresis: hysteresisDeg * math32.Pi / 180,
		current:    imagery.SlotGroundLevel,
	}
}

// Pitch returns the elevation angle of the camera's view direction in radians:
// asin of the normalized forward vector's Y component.
func Pitch(cam rl.Camera3D) float32 {
	fwd := rl.Vector3Subtract(cam.Target, cam.Position)
	l := rl.Vector3Length(fwd)
	if l == 0 {
		return 0
	}
	y := fwd.Y / l
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}
	return math32.Asin(y)
}

// SelectFace returns the slot the scene should display for cam.
func (s *Switcher) SelectFace(cam rl.Camera3D) imagery.Slot {
	p := Pitch(cam)
	limit := s.Threshold
	if s.current == imagery.SlotOverhead {
		limit += s.Hysteresis
	}
	if p < limit {
		s.current = imagery.SlotOverhead
	} else {
		s.current = imagery.SlotGroundLevel
	}
	return s.current
}

// Apply makes v display want when that texture is ready. Otherwise v keeps what it has;
// a visual showing nothing takes the other slot if that one is ready, so a box never
// stays blank while any of its imagery has loaded.
func (s *Switcher) Apply(v *Visual, want imagery.Slot) {
	if v.Disposed() {
		return
	}
	shown, ok := v.Displayed()
	if ok && shown == want {
		return
	}
	if v.Texture(want).Ready() {
		v.display(want)
		return
	}
	if !ok {
		other := imagery.SlotGroundLevel
		if want == imagery.SlotGroundLevel {
			other = imagery.SlotOverhead
		}
		if v.Texture(other).Ready() {
			v.display(other)
		}
	}
}

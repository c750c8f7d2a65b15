package interaction

import (
	"time"

	"property-explorer/internal/property"
	"property-explorer/internal/scene"
	"property-explorer/internal/visual"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// State is the click-to-inspect state.
type State int

const (
	StateIdle State = iota
	// StateSelected runs the explode/zoom animation toward the selected property.
	StateSelected
	// StateInspecting shows the detail view for the selected property.
	StateInspecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateInspecting:
		return "inspecting"
	}
	return "unknown"
}

// DetailView shows one property's details. Show is called once the zoom animation
// finishes, with MatchScore set to the composite score that placed the visual; Hide
// when the inspection ends or moves to another property.
type DetailView interface {
	Show(p property.Property)
	Hide()
}

// Scene is what the controller needs from the scene: picking and handle lookup.
type Scene interface {
	Pick(ray rl.Ray) (scene.Hit, bool)
	Visual(h scene.Handle) *visual.Visual
}

// Options tune the explode/zoom animation.
type Options struct {
	Duration time.Duration
	// CameraOffset is where the camera ends up relative to the visual's anchor.
	CameraOffset rl.Vector3
	// ExplodeLift raises the selected box while it grows from ExplodeStartScale to 1.
	ExplodeLift       float32
	ExplodeStartScale float32
	// TargetLift raises the camera target above the anchor.
	TargetLift float32
}

// DefaultOptions returns the explorer's animation settings.
func DefaultOptions() Options {
	return Options{
		Duration:          400 * time.Millisecond,
		CameraOffset:      rl.NewVector3(30, 20, 30),
		ExplodeLift:       10,
		ExplodeStartScale: 0.1,
		TargetLift:        5,
	}
}

// Controller intercepts clicks on the scene. A click on a property selects it and runs
// the explode/zoom animation; when the animation ends the detail view is shown. Time is
// advanced only by Update, so the animation is deterministic for a given dt sequence.
type Controller struct {
	scene  Scene
	camera *rl.Camera3D
	view   DetailView
	opts   Options
	log    *zap.Logger

	state    State
	target   scene.Handle
	targetID string
	elapsed  float32

	fromPosition rl.Vector3
	fromTarget   rl.Vector3
}

// New returns an idle controller that moves camera and reports to view. view may be nil.
func New(s Scene, camera *rl.Camera3D, view DetailView, opts Options, log *zap.Logger) *Controller {
	if opts.Duration <= 0 {
		opts.Duration = DefaultOptions().Duration
	}
	if opts.ExplodeStartScale <= 0 || opts.ExplodeStartScale > 1 {
		opts.ExplodeStartScale = DefaultOptions().ExplodeStartScale
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{scene: s, camera: camera, view: view, opts: opts, log: log.Named("interaction")}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Selected returns the selected visual's handle and property ID when not idle.
func (c *Controller) Selected() (scene.Handle, string, bool) {
	if c.state == StateIdle {
		return scene.Handle{}, "", false
	}
	return c.target, c.targetID, true
}

// Click handles a click along ray. It reports whether the ray hit a property. A miss
// changes nothing. Clicking the property already selected is ignored; clicking another
// cancels the current animation or inspection and starts over for the new one.
func (c *Controller) Click(ray rl.Ray) bool {
	hit, ok := c.scene.Pick(ray)
	if !ok {
		return false
	}
	if c.state != StateIdle && hit.Handle == c.target {
		return true
	}
	v := c.scene.Visual(hit.Handle)
	if v == nil {
		return false
	}
	c.reset()
	c.state = StateSelected
	c.target = hit.Handle
	c.targetID = hit.ID
	c.elapsed = 0
	if c.camera != nil {
		c.fromPosition = c.camera.Position
		c.fromTarget = c.camera.Target
	}
	v.SetPresentation(c.opts.ExplodeStartScale, 0)
	c.log.Debug("property selected", zap.String("id", hit.ID), zap.Stringer("kind", hit.Kind))
	return true
}

// Update advances the animation by dt seconds.
func (c *Controller) Update(dt float32) {
	if c.state == StateIdle {
		return
	}
	v := c.scene.Visual(c.target)
	if v == nil {
		c.log.Debug("selected property left the scene", zap.String("id", c.targetID))
		c.Close()
		return
	}
	if c.state != StateSelected {
		return
	}

	c.elapsed += dt
	t := c.elapsed / float32(c.opts.Duration.Seconds())
	if t > 1 {
		t = 1
	}
	e := easeOutCubic(t)
	start := c.opts.ExplodeStartScale
	v.SetPresentation(start+(1-start)*e, c.opts.ExplodeLift*e)

	if c.camera != nil {
		a := v.Anchor()
		pos := rl.Vector3Add(a, c.opts.CameraOffset)
		tgt := rl.NewVector3(a.X, a.Y+c.opts.TargetLift, a.Z)
		c.camera.Position = rl.Vector3Lerp(c.fromPosition, pos, e)
		c.camera.Target = rl.Vector3Lerp(c.fromTarget, tgt, e)
	}

	if t >= 1 {
		c.state = StateInspecting
		if c.view != nil {
			p := v.Property()
			p.MatchScore = v.Placement().Score
			c.view.Show(p)
		}
		c.log.Info("inspecting property", zap.String("id", c.targetID))
	}
}

// Close ends the selection or inspection and returns to idle. The camera stays where
// the animation left it.
func (c *Controller) Close() {
	if c.state == StateIdle {
		return
	}
	c.reset()
	c.state = StateIdle
	c.target = scene.Handle{}
	c.targetID = ""
}

// reset undoes the current selection's effects on the scene and the detail view.
func (c *Controller) reset() {
	if c.state == StateIdle {
		return
	}
	if v := c.scene.Visual(c.target); v != nil {
		v.SetPresentation(1, 0)
	}
	if c.state == StateInspecting && c.view != nil {
		c.view.Hide()
	}
}

func easeOutCubic(t float32) float32 {
	u := 1 - t
	return 1 - u*u*u
}

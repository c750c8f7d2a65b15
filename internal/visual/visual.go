package visual

import (
	"errors"
	"fmt"

	"property-explorer/internal/imagery"
	"property-explorer/internal/property"
	"property-explorer/internal/scoremap"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Face indexes the six faces of a visual's box. The order is fixed: materials are
// stored and drawn in this order.
type Face int

const (
	FaceRight Face = iota
	FaceLeft
	FaceTop
	FaceBottom
	FaceFront
	FaceBack
	FaceCount
)

var faceNames = [FaceCount]string{"right", "left", "top", "bottom", "front", "back"}

func (f Face) String() string {
	if f < 0 || f >= FaceCount {
		return fmt.Sprintf("face(%d)", int(f))
	}
	return faceNames[f]
}

// ImageryFace returns the face that displays slot: ground-level imagery goes on the
// front face, overhead imagery on the top face.
func ImageryFace(slot imagery.Slot) Face {
	if slot == imagery.SlotOverhead {
		return FaceTop
	}
	return FaceFront
}

// ErrDisposed is returned when a disposed visual is mutated. Built with -tags debug the
// same misuse panics instead.
var ErrDisposed = errors.New("visual: disposed")

const (
	// Ground-level mode tips the front face up toward the camera.
	groundTilt = float32(-0.3)
	// Overhead imagery is on the top face, so the box lies level.
	overheadTilt = float32(0)
)

var (
	bottomTint  = rl.NewColor(2, 6, 23, 255)
	labelTint   = rl.NewColor(15, 23, 42, 220)
	textureTint = rl.White
)

// Options are the fixed geometric parameters shared by all visuals in a scene.
type Options struct {
	// Size is the box width, thickness and depth. The score never changes it.
	Size        rl.Vector3
	RodRadius   float32
	LabelOffset float32 // gap between the top of the box and the label plate
	LabelSize   rl.Vector2
}

// DefaultOptions returns the house footprint and rod/label sizes used by the explorer.
func DefaultOptions() Options {
	return Options{
		Size:        rl.NewVector3(5.6, 0.8, 4.0),
		RodRadius:   0.25,
		LabelOffset: 1.5,
		LabelSize:   rl.NewVector2(6, 1.2),
	}
}

// FaceMaterial is what one face draws: a tint, and a texture when imagery is displayed
// on it. A nil Texture means neutral fill.
type FaceMaterial struct {
	Tint    rl.Color
	Texture *imagery.Texture
}

// Rod is the vertical cylinder from the ground to the anchor. Its length is baked into
// the rendered geometry, so Revision increments on every length change and the render
// layer rebuilds the mesh when it sees a new revision.
type Rod struct {
	Length   float32
	Radius   float32
	Color    rl.Color
	Revision uint64
}

// Label is the name plate floating above the box.
type Label struct {
	Text     string
	Position rl.Vector3 // plate center
	Size     rl.Vector2
}

// Orientation is the billboard rotation: Yaw around Y toward the camera, then Tilt
// around X.
type Orientation struct {
	Yaw, Tilt float32
}

// Visual is the scene representation of one property: a textured box at its placement,
// the rod below it and the label above it.
type Visual struct {
	prop      property.Property
	placement scoremap.Placement
	opts      Options

	faces     [FaceCount]FaceMaterial
	slots     [2]*imagery.Texture
	displayed imagery.Slot
	showing   bool

	rod    Rod
	label  Label
	orient Orientation

	// Explode animation presentation; scale 1 and lift 0 at rest.
	scale float32
	lift  float32
	// Levitation offset of the box above its anchor. The rod does not follow it.
	bob float32

	disposed bool
}

// New creates a visual for p at placement with neutral materials. The visual keeps a
// copy of p and never modifies it. Imagery is not requested here.
func New(p property.Property, placement scoremap.Placement, opts Options) *Visual {
	if opts.Size.X <= 0 || opts.Size.Y <= 0 || opts.Size.Z <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.LabelSize.X <= 0 || opts.LabelSize.Y <= 0 {
		opts.LabelSize = DefaultOptions().LabelSize
	}
	text := p.Name
	if text == "" {
		text = p.ID
	}
	v := &Visual{
		prop:      p,
		placement: placement,
		opts:      opts,
		rod:       Rod{Radius: opts.RodRadius},
		label:     Label{Text: text, Size: opts.LabelSize},
		orient:    Orientation{Tilt: groundTilt},
		scale:     1,
	}
	v.resetFaces()
	v.SyncRod()
	v.syncLabel()
	return v
}

// UpdatePlacement moves the visual to placement in place. Bound textures and the
// displayed slot are kept. The rod catches up on the next SyncRod.
func (v *Visual) UpdatePlacement(placement scoremap.Placement) error {
	if err := v.checkLive("UpdatePlacement"); err != nil {
		return err
	}
	v.placement = placement
	v.tintNeutralFaces()
	v.syncLabel()
	return nil
}

// UpdateProperty replaces the visual's copy of its property and moves it to placement.
// Used when a rebuild brings a newer record for the same ID.
func (v *Visual) UpdateProperty(p property.Property, placement scoremap.Placement) error {
	if err := v.checkLive("UpdateProperty"); err != nil {
		return err
	}
	v.prop = p
	v.label.Text = p.Name
	if v.label.Text == "" {
		v.label.Text = p.ID
	}
	return v.UpdatePlacement(placement)
}

// BindGroundLevel attaches a ground-level texture. See Bind.
func (v *Visual) BindGroundLevel(tex *imagery.Texture) error {
	return v.Bind(imagery.SlotGroundLevel, tex)
}

// BindOverhead attaches an overhead texture. See Bind.
func (v *Visual) BindOverhead(tex *imagery.Texture) error {
	return v.Bind(imagery.SlotOverhead, tex)
}

// Bind attaches tex to slot. Textures that are not ready are ignored. If no imagery is
// displayed yet, or slot is the one already displayed, tex is displayed immediately.
func (v *Visual) Bind(slot imagery.Slot, tex *imagery.Texture) error {
	if err := v.checkLive("Bind"); err != nil {
		return err
	}
	if !tex.Ready() {
		return nil
	}
	if old := v.slots[slot]; old != nil && old != tex {
		old.Release()
	}
	v.slots[slot] = tex
	if !v.showing || v.displayed == slot {
		v.display(slot)
	}
	return nil
}

// display puts slot's texture on its face and clears the other imagery face, so at most
// one kind of imagery is on the box at any time.
func (v *Visual) display(slot imagery.Slot) {
	other := imagery.SlotOverhead
	if slot == imagery.SlotOverhead {
		other = imagery.SlotGroundLevel
	}
	of := ImageryFace(other)
	v.faces[of] = FaceMaterial{Tint: v.neutralTint(of)}
	v.faces[ImageryFace(slot)] = FaceMaterial{Tint: textureTint, Texture: v.slots[slot]}
	v.displayed = slot
	v.showing = true
	v.orient.Tilt = tiltFor(slot)
}

// Dispose releases textures and marks the visual disposed. Calling it again is a no-op.
func (v *Visual) Dispose() {
	if v.disposed {
		return
	}
	for i, tex := range v.slots {
		tex.Release()
		v.slots[i] = nil
	}
	for i := range v.faces {
		v.faces[i] = FaceMaterial{}
	}
	v.showing = false
	v.disposed = true
}

// Disposed reports whether Dispose has been called.
func (v *Visual) Disposed() bool { return v.disposed }

// SyncRod brings the rod up to date with the placement: length equals the anchor height
// and color follows the score ramp. It reports whether the geometry changed.
func (v *Visual) SyncRod() bool {
	if v.disposed {
		return false
	}
	v.rod.Color = scoremap.ColorFor(v.placement.Score)
	v.tintNeutralFaces()
	if v.rod.Length == v.placement.Height && v.rod.Revision > 0 {
		return false
	}
	v.rod.Length = v.placement.Height
	v.rod.Revision++
	return true
}

// FaceCamera turns the visual toward camPos around Y and applies the tilt for the
// displayed imagery.
func (v *Visual) FaceCamera(camPos rl.Vector3) {
	if v.disposed {
		return
	}
	a := v.Anchor()
	dx, dz := camPos.X-a.X, camPos.Z-a.Z
	if dx != 0 || dz != 0 {
		v.orient.Yaw = math32.Atan2(dx, dz)
	}
	if v.showing {
		v.orient.Tilt = tiltFor(v.displayed)
	}
}

// SetPresentation sets the explode animation state: scale multiplies the box size and
// lift raises it above its anchor.
func (v *Visual) SetPresentation(scale, lift float32) {
	if v.disposed {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	v.scale = scale
	v.lift = lift
	v.syncLabel()
}

// SetBob sets the levitation offset. Negative offsets are treated as 0 so the box
// never sinks onto its rod.
func (v *Visual) SetBob(offset float32) {
	if v.disposed {
		return
	}
	if offset < 0 || offset != offset {
		offset = 0
	}
	v.bob = offset
	v.syncLabel()
}

// Bob returns the levitation offset.
func (v *Visual) Bob() float32 { return v.bob }

// Property returns the visual's copy of its property.
func (v *Visual) Property() property.Property { return v.prop }

// ID returns the property ID.
func (v *Visual) ID() string { return v.prop.ID }

func (v *Visual) Placement() scoremap.Placement { return v.placement }
func (v *Visual) Options() Options              { return v.opts }
func (v *Visual) Rod() Rod                      { return v.rod }
func (v *Visual) Label() Label                  { return v.label }
func (v *Visual) Orientation() Orientation      { return v.orient }

// Presentation returns the explode scale and lift.
func (v *Visual) Presentation() (scale, lift float32) { return v.scale, v.lift }

// Face returns the material of face f.
func (v *Visual) Face(f Face) FaceMaterial { return v.faces[f] }

// Texture returns the texture attached to slot, or nil.
func (v *Visual) Texture(slot imagery.Slot) *imagery.Texture { return v.slots[slot] }

// Displayed returns the imagery slot on the box, if any.
func (v *Visual) Displayed() (imagery.Slot, bool) { return v.displayed, v.showing }

// Anchor is the point at the placement height where the rod meets the bottom of the box.
func (v *Visual) Anchor() rl.Vector3 {
	return rl.NewVector3(v.placement.X, v.placement.Height, v.placement.Z)
}

// Center returns the box center, including explode lift and levitation.
func (v *Visual) Center() rl.Vector3 {
	a := v.Anchor()
	a.Y += v.opts.Size.Y*v.scale/2 + v.lift + v.bob
	return a
}

// Transform maps the unit-centered box space (scaled by Size) to world space.
func (v *Visual) Transform() rl.Matrix {
	c := v.Center()
	m := rl.MatrixScale(v.scale, v.scale, v.scale)
	m = rl.MatrixMultiply(m, rl.MatrixRotateX(v.orient.Tilt))
	m = rl.MatrixMultiply(m, rl.MatrixRotateY(v.orient.Yaw))
	return rl.MatrixMultiply(m, rl.MatrixTranslate(c.X, c.Y, c.Z))
}

// Bounds returns the world-space axis-aligned box around the rotated visual.
func (v *Visual) Bounds() rl.BoundingBox {
	h := rl.Vector3Scale(v.opts.Size, 0.5)
	return transformedBounds(h, v.Transform())
}

// LabelBounds returns the world-space box around the label plate.
func (v *Visual) LabelBounds() rl.BoundingBox {
	h := rl.NewVector3(v.label.Size.X/2, v.label.Size.Y/2, 0.05)
	p := v.label.Position
	m := rl.MatrixMultiply(rl.MatrixRotateY(v.orient.Yaw), rl.MatrixTranslate(p.X, p.Y, p.Z))
	return transformedBounds(h, m)
}

func transformedBounds(half rl.Vector3, m rl.Matrix) rl.BoundingBox {
	var b rl.BoundingBox
	first := true
	for _, sx := range []float32{-1, 1} {
		for _, sy := range []float32{-1, 1} {
			for _, sz := range []float32{-1, 1} {
				p := rl.Vector3Transform(rl.NewVector3(half.X*sx, half.Y*sy, half.Z*sz), m)
				if first {
					b.Min, b.Max = p, p
					first = false
					continue
				}
				b.Min = rl.NewVector3(math32.Min(b.Min.X, p.X), math32.Min(b.Min.Y, p.Y), math32.Min(b.Min.Z, p.Z))
				b.Max = rl.NewVector3(math32.Max(b.Max.X, p.X), math32.Max(b.Max.Y, p.Y), math32.Max(b.Max.Z, p.Z))
			}
		}
	}
	return b
}

func (v *Visual) syncLabel() {
	c := v.Center()
	c.Y += v.opts.Size.Y*v.scale/2 + v.opts.LabelOffset + v.label.Size.Y/2
	v.label.Position = c
}

func (v *Visual) resetFaces() {
	for f := Face(0); f < FaceCount; f++ {
		v.faces[f] = FaceMaterial{Tint: v.neutralTint(f)}
	}
}

// tintNeutralFaces recolors untextured faces after a score change.
func (v *Visual) tintNeutralFaces() {
	for f := Face(0); f < FaceCount; f++ {
		if v.faces[f].Texture == nil {
			v.faces[f].Tint = v.neutralTint(f)
		}
	}
}

func (v *Visual) neutralTint(f Face) rl.Color {
	if f == FaceBottom {
		return bottomTint
	}
	c := scoremap.ColorFor(v.placement.Score)
	c.A = 200
	return c
}

func (v *Visual) checkLive(op string) error {
	if !v.disposed {
		return nil
	}
	assertf(false, "visual %s: %s after Dispose", v.prop.ID, op)
	return fmt.Errorf("visual %s: %s: %w", v.prop.ID, op, ErrDisposed)
}

func tiltFor(slot imagery.Slot) float32 {
	if slot == imagery.SlotOverhead {
		return overheadTilt
	}
	return groundTilt
}

// LabelTint is the label plate background color.
func LabelTint() rl.Color { return labelTint }

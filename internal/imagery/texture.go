package imagery

import (
	"errors"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Slot names which of a property's two imagery kinds a texture belongs to.
type Slot int

const (
	// SlotGroundLevel is the street-level photograph shown on a visual's front face.
	SlotGroundLevel Slot = iota
	// SlotOverhead is the aerial image shown on a visual's top face.
	SlotOverhead
)

func (s Slot) String() string {
	switch s {
	case SlotGroundLevel:
		return "ground_level"
	case SlotOverhead:
		return "overhead"
	}
	return "unknown"
}

// Status is the state of one imagery fetch.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
	// StatusUnavailable means no fetch was attempted because the property has no location.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// ErrUnavailable is recorded on textures for properties without a coordinate.
var ErrUnavailable = errors.New("imagery: no coordinate")

// Texture is the result of an imagery fetch: a decoded image when ready, or a failure
// marker. The GPU copy is created lazily by the render layer on first draw, after the
// window and OpenGL context exist, and released by Release.
type Texture struct {
	Slot   Slot
	Status Status
	Image  *image.RGBA
	Err    error

	gpu      rl.Texture2D
	uploaded bool
}

// Ready reports whether the texture can be bound to a face.
func (t *Texture) Ready() bool {
	return t != nil && t.Status == StatusReady && t.Image != nil
}

// Unavailable returns a texture for a slot that will never load.
func Unavailable(slot Slot) *Texture {
	return &Texture{Slot: slot, Status: StatusUnavailable, Err: ErrUnavailable}
}

// Failed returns a failure marker for slot carrying err.
func Failed(slot Slot, err error) *Texture {
	return &Texture{Slot: slot, Status: StatusFailed, Err: err}
}

// FromImage returns a ready texture holding img.
func FromImage(slot Slot, img *image.RGBA) *Texture {
	return &Texture{Slot: slot, Status: StatusReady, Image: img}
}

// GPU returns the uploaded texture, uploading the image on first use. Must be called on
// the render thread after the window exists.
func (t *Texture) GPU() (rl.Texture2D, bool) {
	if !t.Ready() {
		return rl.Texture2D{}, false
	}
	if !t.uploaded {
		img := rl.NewImageFromImage(t.Image)
		t.gpu = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		t.uploaded = true
		if rl.IsTextureValid(t.gpu) {
			rl.SetTextureFilter(t.gpu, rl.FilterBilinear)
		}
	}
	return t.gpu, rl.IsTextureValid(t.gpu)
}

// Release frees the GPU copy if one was uploaded. The decoded image is kept so the
// texture can be uploaded again if it is re-bound later in the session. Safe to call
// more than once.
func (t *Texture) Release() {
	if t == nil || !t.uploaded {
		return
	}
	rl.UnloadTexture(t.gpu)
	t.gpu = rl.Texture2D{}
	t.uploaded = false
}

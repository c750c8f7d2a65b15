package scene

import (
	"context"
	"image"
	"sync/atomic"
	"testing"

	"property-explorer/internal/imagery"
	"property-explorer/internal/property"
	"property-explorer/internal/visual"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeProvider returns ready textures. With a gate, fetches block until it is closed.
type fakeProvider struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeProvider) fetch(ctx context.Context, slot imagery.Slot) *imagery.Texture {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return imagery.Failed(slot, ctx.Err())
		}
	}
	return imagery.FromImage(slot, image.NewRGBA(image.Rect(0, 0, 2, 2)))
}

func (f *fakeProvider) FetchGroundLevel(ctx context.Context, _ orb.Point) *imagery.Texture {
	return f.fetch(ctx, imagery.SlotGroundLevel)
}

func (f *fakeProvider) FetchOverhead(ctx context.Context, _ orb.Point) *imagery.Texture {
	return f.fetch(ctx, imagery.SlotOverhead)
}

var (
	elm  = property.Property{ID: "elm", Name: "12 Elm St", Coordinate: orb.Point{-97.33, 32.75}, MatchScore: 80}
	oak  = property.Property{ID: "oak", Name: "4 Oak Ave", Coordinate: orb.Point{-97.30, 32.76}, MatchScore: 40}
	pine = property.Property{ID: "pine", Name: "9 Pine Rd", Coordinate: orb.Point{-97.35, 32.70}, MatchScore: 10}
)

// cameraPitched returns a camera looking at the origin from the given pitch in degrees.
func cameraPitched(deg float32) rl.Camera3D {
	r := deg * math32.Pi / 180
	dist := float32(80)
	pos := rl.NewVector3(0, -math32.Sin(r)*dist, math32.Cos(r)*dist)
	return rl.Camera3D{Position: pos, Target: rl.NewVector3(0, 0, 0), Up: rl.NewVector3(0, 1, 0), Fovy: 45}
}

func newController(t *testing.T, p imagery.Provider) *Controller {
	t.Helper()
	return New(p, DefaultOptions(), nil)
}

func settle(c *Controller) {
	c.WaitImagery()
	c.Tick(cameraPitched(-10), 1.0/60)
}

func TestRebuild_IsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &fakeProvider{}
	c := newController(t, p)
	defer c.Close()
	props := []property.Property{elm, oak, pine}

	c.Rebuild(props, nil)
	first := map[string]Handle{}
	for _, pr := range props {
		h, ok := c.Lookup(pr.ID)
		require.True(t, ok)
		first[pr.ID] = h
	}
	settle(c)

	c.Rebuild(props, nil)
	settle(c)
	assert.Equal(t, 3, c.Len())
	for id, h := range first {
		got, ok := c.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, h, got, "visual for %s recreated", id)
	}
	assert.Equal(t, int32(6), p.calls.Load(), "imagery fetched once per property")
}

func TestRebuild_RemovesVisualsNotInInput(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	c.Rebuild([]property.Property{elm, oak}, nil)
	hOak, _ := c.Lookup("oak")
	vOak := c.Visual(hOak)
	require.NotNil(t, vOak)

	c.Rebuild([]property.Property{elm}, nil)
	assert.Nil(t, c.Visual(hOak), "handle to removed visual is stale")
	assert.True(t, vOak.Disposed())
	_, ok := c.Lookup("oak")
	assert.False(t, ok)

	var ids []string
	c.Each(func(_ Handle, v *visual.Visual) { ids = append(ids, v.ID()) })
	assert.Equal(t, []string{"elm"}, ids)
}

func TestRebuild_ReusesFreedSlotsWithNewGeneration(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	old, _ := c.Lookup("elm")
	c.Rebuild(nil, nil)
	c.Rebuild([]property.Property{oak}, nil)

	h, _ := c.Lookup("oak")
	assert.Equal(t, old.index, h.index)
	assert.NotEqual(t, old.gen, h.gen)
	assert.Nil(t, c.Visual(old))
	assert.Nil(t, c.Visual(Handle{}))
}

func TestRebuild_SkipsEmptyAndDuplicateIDs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	dup := oak
	dup.ID = "elm"
	c.Rebuild([]property.Property{elm, {Name: "no id"}, dup}, nil)
	require.Equal(t, 1, c.Len())
	h, _ := c.Lookup("elm")
	assert.Equal(t, "12 Elm St", c.Visual(h).Property().Name)
}

func TestTick_StaleCompletionIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &fakeProvider{gate: make(chan struct{})}
	c := newController(t, p)
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	h, _ := c.Lookup("elm")
	v := c.Visual(h)
	c.Rebuild(nil, nil)

	close(p.gate)
	c.WaitImagery()
	require.NotPanics(t, func() { c.Tick(cameraPitched(-10), 1.0/60) })

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2, c.Stats().Stale)
	assert.Nil(t, v.Texture(imagery.SlotGroundLevel), "disposed visual untouched")
	assert.Nil(t, v.Texture(imagery.SlotOverhead))
}

func TestTick_ReaddedPropertyGetsSessionImagery(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &fakeProvider{}
	c := newController(t, p)
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	settle(c)
	c.Rebuild(nil, nil)
	c.Rebuild([]property.Property{elm}, nil)

	h, _ := c.Lookup("elm")
	v := c.Visual(h)
	assert.True(t, v.Texture(imagery.SlotGroundLevel).Ready())
	assert.True(t, v.Texture(imagery.SlotOverhead).Ready())
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestTick_CompletionForReaddedPropertyFindsNewVisual(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &fakeProvider{gate: make(chan struct{})}
	c := newController(t, p)
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	c.Rebuild(nil, nil)
	c.Rebuild([]property.Property{elm}, nil)

	close(p.gate)
	settle(c)
	h, _ := c.Lookup("elm")
	_, showing := c.Visual(h).Displayed()
	assert.True(t, showing)
	assert.Zero(t, c.Stats().Stale)
}

func TestTick_RodLengthMatchesHeight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	a, b := elm, oak
	a.Attributes = map[string]float64{"walk": 90, "schools": 10}
	b.Attributes = map[string]float64{"walk": 20, "schools": 70}
	props := []property.Property{a, b}

	for _, w := range []property.Weights{nil, {"walk": 1}, {"schools": 3, "walk": 1}, {}} {
		c.Rebuild(props, w)
		c.Tick(cameraPitched(-10), 1.0/60)
		c.Each(func(_ Handle, v *visual.Visual) {
			assert.Equal(t, v.Placement().Height, v.Rod().Length, "%s weights %v", v.ID(), w)
			assert.Equal(t, v.Anchor().Y, v.Rod().Length)
		})
	}
}

func TestTick_ScoreUpdateKeepsVisualAndTextures(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	settle(c)
	h, _ := c.Lookup("elm")
	v := c.Visual(h)
	gl := v.Texture(imagery.SlotGroundLevel)
	require.True(t, gl.Ready())

	better := elm
	better.MatchScore = 100
	c.Rebuild([]property.Property{better}, nil)
	c.Tick(cameraPitched(-10), 1.0/60)

	assert.Same(t, v, c.Visual(h))
	assert.Same(t, gl, v.Texture(imagery.SlotGroundLevel))
	assert.Equal(t, float32(20), v.Rod().Length)
}

func TestTick_PitchSelectsImagery(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	c.Rebuild([]property.Property{elm, oak}, nil)
	c.WaitImagery()

	cases := []struct {
		pitch float32
		want  imagery.Slot
	}{
		{-45, imagery.SlotOverhead},
		{-10, imagery.SlotGroundLevel},
		{-60, imagery.SlotOverhead},
	}
	for _, tc := range cases {
		c.Tick(cameraPitched(tc.pitch), 1.0/60)
		c.Each(func(_ Handle, v *visual.Visual) {
			slot, showing := v.Displayed()
			require.True(t, showing)
			assert.Equal(t, tc.want, slot, "pitch %v", tc.pitch)
			front := v.Face(visual.FaceFront).Texture != nil
			top := v.Face(visual.FaceTop).Texture != nil
			assert.True(t, front != top, "exactly one imagery face bound")
		})
	}
}

func TestRebuild_UnknownCoordinateNeverFetches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &fakeProvider{}
	c := newController(t, p)
	defer c.Close()
	c.Rebuild([]property.Property{{ID: "nowhere", Name: "Unknown", MatchScore: 50}}, nil)
	settle(c)

	assert.Zero(t, p.calls.Load())
	h, _ := c.Lookup("nowhere")
	_, showing := c.Visual(h).Displayed()
	assert.False(t, showing)
	assert.Equal(t, 2, c.Stats().Failed)
}

func TestClose_DisposesEverything(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := New(&fakeProvider{gate: make(chan struct{})}, DefaultOptions(), nil)
	c.Rebuild([]property.Property{elm, oak}, nil)
	h, _ := c.Lookup("elm")
	v := c.Visual(h)

	c.Close()
	assert.True(t, v.Disposed())
	assert.Zero(t, c.Len())
	assert.Nil(t, c.Visual(h))
}

func TestNew_ZeroOverheadPitchIsHonored(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := DefaultOptions()
	opts.OverheadPitchDeg = 0
	c := New(&fakeProvider{}, opts, nil)
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	settle(c)

	// -10° is below a 0° threshold, so the overhead slot is selected.
	h, _ := c.Lookup("elm")
	slot, showing := c.Visual(h).Displayed()
	require.True(t, showing)
	assert.Equal(t, imagery.SlotOverhead, slot)
}

func TestTick_TexturedBoxesLevitate(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := newController(t, &fakeProvider{})
	defer c.Close()
	c.Rebuild([]property.Property{elm, {ID: "nowhere", MatchScore: 50}}, nil)
	c.WaitImagery()

	hElm, _ := c.Lookup("elm")
	hNowhere, _ := c.Lookup("nowhere")
	vElm, vNowhere := c.Visual(hElm), c.Visual(hNowhere)

	var moved bool
	first := float32(-1)
	for i := 0; i < 60; i++ {
		c.Tick(cameraPitched(-10), 1.0/30)
		bob := vElm.Bob()
		assert.GreaterOrEqual(t, bob, float32(0))
		assert.LessOrEqual(t, bob, float32(DefaultBobAmplitude))
		if first < 0 {
			first = bob
		} else if bob != first {
			moved = true
		}
		assert.Equal(t, vElm.Anchor().Y, vElm.Rod().Length, "rod stays on the anchor")
		assert.InDelta(t, vElm.Anchor().Y+vElm.Options().Size.Y/2+bob, vElm.Center().Y, 1e-5)
		assert.Zero(t, vNowhere.Bob(), "boxes without imagery do not float")
	}
	assert.True(t, moved)
}

func TestTick_ZeroBobAmplitudeDisablesLevitation(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := DefaultOptions()
	opts.BobAmplitude = 0
	c := New(&fakeProvider{}, opts, nil)
	defer c.Close()
	c.Rebuild([]property.Property{elm}, nil)
	c.WaitImagery()
	for i := 0; i < 10; i++ {
		c.Tick(cameraPitched(-10), 0.1)
	}
	h, _ := c.Lookup("elm")
	assert.Zero(t, c.Visual(h).Bob())
}

func TestBobOffset(t *testing.T) {
	assert.Zero(t, bobOffset(0.15, 1, 0, false))
	assert.Zero(t, bobOffset(0, 1, 0, true))
	assert.InDelta(t, 0.075, bobOffset(0.15, 0, 0, true), 1e-6)
	assert.NotEqual(t, bobOffset(0.15, 1, 0, true), bobOffset(0.15, 1, 1, true), "neighbors are out of phase")
}

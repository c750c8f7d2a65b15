package scene

import (
	"property-explorer/internal/imagery"
	"property-explorer/internal/property"
	"property-explorer/internal/scoremap"
	"property-explorer/internal/visual"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// Handle refers to a visual in the controller's arena. A handle goes stale when its
// visual is disposed; the slot's generation moves on and lookups with the old handle
// return nil. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

type arenaSlot struct {
	gen uint32
	v   *visual.Visual
}

// owner tags fetch requests so completions can find their visual again.
type owner struct {
	handle Handle
	id     string
}

// Options configures a Controller.
type Options struct {
	Visual           visual.Options
	MaxHeight        float32
	LayoutRadius     float32
	OverheadPitchDeg float32
	HysteresisDeg    float32
	// BobAmplitude is how far textured boxes float above their anchors; 0 disables it.
	BobAmplitude float32
}

// DefaultBobAmplitude is the levitation height of textured boxes.
const DefaultBobAmplitude = 0.15

const (
	bobRate  = 2.1 // radians per second
	bobPhase = 0.3 // seconds of offset between neighboring slots
)

// DefaultOptions returns the explorer's scene defaults.
func DefaultOptions() Options {
	return Options{
		Visual:           visual.DefaultOptions(),
		MaxHeight:        scoremap.DefaultMaxHeight,
		LayoutRadius:     scoremap.DefaultLayoutRadius,
		OverheadPitchDeg: visual.DefaultOverheadPitchDeg,
		BobAmplitude:     DefaultBobAmplitude,
	}
}

// Stats are per-session counters for the debug overlay.
type Stats struct {
	Visuals     int
	InFlight    int
	Requested   int // imagery fetches started this session
	Ready       int // imagery textures received ready
	Failed      int // failed or unavailable imagery
	Stale       int // completions that arrived after their visual was gone
	Displayed   imagery.Slot
	ElapsedSecs float32
}

// Controller owns the visuals for the current property set. All methods must be called
// from the frame thread; only the fetcher's goroutines run elsewhere, and they never
// touch the arena.
type Controller struct {
	opts     Options
	mapper   scoremap.Mapper
	switcher *visual.Switcher
	fetcher  *imagery.Fetcher[owner]
	log      *zap.Logger

	slots []arenaSlot
	free  []uint32
	index map[string]Handle

	// Imagery received this session, kept by property ID so a property that leaves
	// and re-enters the set is not fetched twice.
	textures  map[string]*[2]*imagery.Texture
	requested map[string]bool

	stats Stats
}

// New returns a controller fetching imagery from p. log may be nil.
func New(p imagery.Provider, opts Options, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.LayoutRadius <= 0 {
		opts.LayoutRadius = def.LayoutRadius
	}
	log = log.Named("scene")
	return &Controller{
		opts:      opts,
		mapper:    scoremap.New(opts.MaxHeight),
		switcher:  visual.NewSwitcher(opts.OverheadPitchDeg, opts.HysteresisDeg),
		fetcher:   imagery.NewFetcher[owner](p, log),
		log:       log,
		index:     make(map[string]Handle),
		textures:  make(map[string]*[2]*imagery.Texture),
		requested: make(map[string]bool),
	}
}

// Rebuild makes the scene match props. New IDs get a visual and an imagery request,
// existing IDs are updated in place with their textures kept, and visuals whose ID is
// no longer present are disposed. Properties with an empty ID are skipped; for a
// repeated ID the first record wins.
func (c *Controller) Rebuild(props []property.Property, weights property.Weights) {
	seen := make(map[string]bool, len(props))
	unique := make([]property.Property, 0, len(props))
	for _, p := range props {
		if p.ID == "" {
			c.log.Warn("property without id skipped", zap.String("name", p.Name))
			continue
		}
		if seen[p.ID] {
			c.log.Warn("duplicate property id ignored", zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
	}

	layout := scoremap.Layout(unique, c.opts.LayoutRadius)
	var created, updated, removed int
	for _, p := range unique {
		pl := c.mapper.ComputePlacement(p, weights)
		xz := layout[p.ID]
		pl.X, pl.Z = xz.X, xz.Z

		if v := c.Visual(c.index[p.ID]); v != nil {
			if err := v.UpdateProperty(p, pl); err != nil {
				c.log.Error("update visual", zap.String("id", p.ID), zap.Error(err))
			}
			updated++
			continue
		}
		h := c.insert(visual.New(p, pl, c.opts.Visual))
		c.index[p.ID] = h
		c.attachImagery(h, p)
		created++
	}

	for id, h := range c.index {
		if seen[id] {
			continue
		}
		c.remove(h)
		delete(c.index, id)
		removed++
	}
	c.stats.Visuals = len(c.index)
	c.log.Info("scene rebuilt",
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("removed", removed),
		zap.Int("visuals", len(c.index)))
}

// attachImagery binds imagery already received for p, or requests it on first sight.
func (c *Controller) attachImagery(h Handle, p property.Property) {
	if tex := c.textures[p.ID]; tex != nil {
		v := c.Visual(h)
		for slot, t := range tex {
			if err := v.Bind(imagery.Slot(slot), t); err != nil {
				c.log.Error("bind cached imagery", zap.String("id", p.ID), zap.Error(err))
			}
		}
	}
	if c.requested[p.ID] {
		return
	}
	c.requested[p.ID] = true
	o := owner{handle: h, id: p.ID}
	c.fetcher.Request(o, imagery.SlotGroundLevel, p.Coordinate)
	c.fetcher.Request(o, imagery.SlotOverhead, p.Coordinate)
	c.stats.Requested += 2
}

// Tick advances the scene one frame: apply finished fetches, sync rods and tints to
// placements, switch imagery for the camera pitch, turn every visual toward the
// camera, and float the boxes that show imagery.
func (c *Controller) Tick(cam rl.Camera3D, dt float32) {
	c.stats.ElapsedSecs += dt
	c.applyCompletions()

	want := c.switcher.SelectFace(cam)
	c.stats.Displayed = want
	c.Each(func(h Handle, v *visual.Visual) {
		v.SyncRod()
		c.switcher.Apply(v, want)
		v.FaceCamera(cam.Position)
		_, showing := v.Displayed()
		v.SetBob(bobOffset(c.opts.BobAmplitude, c.stats.ElapsedSecs, h.index, showing))
	})
	c.stats.InFlight = c.fetcher.InFlight()
}

func (c *Controller) applyCompletions() {
	for _, done := range c.fetcher.Drain() {
		id := done.Owner.id
		tex := c.textures[id]
		if tex == nil {
			tex = new([2]*imagery.Texture)
			c.textures[id] = tex
		}
		tex[done.Slot] = done.Texture
		if done.Texture.Ready() {
			c.stats.Ready++
		} else {
			c.stats.Failed++
		}

		v := c.Visual(done.Owner.handle)
		if v == nil {
			// The visual was removed; a later rebuild may have re-added the property.
			v = c.Visual(c.index[id])
		}
		if v == nil {
			c.stats.Stale++
			c.log.Debug("dropped completion for removed visual",
				zap.String("id", id), zap.Stringer("slot", done.Slot))
			continue
		}
		if err := v.Bind(done.Slot, done.Texture); err != nil {
			c.log.Error("bind imagery", zap.String("id", id), zap.Error(err))
		}
	}
}

// Visual returns the live visual for h, or nil if h is zero or stale.
func (c *Controller) Visual(h Handle) *visual.Visual {
	if h.IsZero() || int(h.index) >= len(c.slots) {
		return nil
	}
	s := c.slots[h.index]
	if s.gen != h.gen || s.v == nil {
		return nil
	}
	return s.v
}

// Lookup returns the handle of the visual for property id.
func (c *Controller) Lookup(id string) (Handle, bool) {
	h, ok := c.index[id]
	return h, ok
}

// Each calls fn for every live visual in arena order.
func (c *Controller) Each(fn func(Handle, *visual.Visual)) {
	for i, s := range c.slots {
		if s.v == nil {
			continue
		}
		fn(Handle{index: uint32(i), gen: s.gen}, s.v)
	}
}

// Len returns the number of live visuals.
func (c *Controller) Len() int { return len(c.index) }

// Stats returns the current counters.
func (c *Controller) Stats() Stats { return c.stats }

// WaitImagery blocks until every imagery fetch started so far has finished. The results
// are applied on the next Tick. Used by headless commands and tests.
func (c *Controller) WaitImagery() { c.fetcher.Wait() }

// Close disposes every visual and stops the fetcher, waiting for in-flight fetches.
func (c *Controller) Close() {
	c.fetcher.Close()
	for id, h := range c.index {
		c.remove(h)
		delete(c.index, id)
	}
	for id, tex := range c.textures {
		for _, t := range tex {
			t.Release()
		}
		delete(c.textures, id)
	}
	c.stats.Visuals = 0
}

func (c *Controller) insert(v *visual.Visual) Handle {
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		c.slots[i].v = v
		return Handle{index: i, gen: c.slots[i].gen}
	}
	c.slots = append(c.slots, arenaSlot{gen: 1, v: v})
	return Handle{index: uint32(len(c.slots) - 1), gen: 1}
}

func (c *Controller) remove(h Handle) {
	v := c.Visual(h)
	if v == nil {
		return
	}
	v.Dispose()
	s := &c.slots[h.index]
	s.v = nil
	s.gen++
	c.free = append(c.free, h.index)
}

// bobOffset is the levitation of the box in arena slot i at t seconds: a sine wave
// between 0 and amp, phase-shifted per slot. Boxes without imagery stay put.
func bobOffset(amp, t float32, i uint32, showing bool) float32 {
	if amp <= 0 || !showing {
		return 0
	}
	return amp * (1 + math32.Sin((t+float32(i)*bobPhase)*bobRate)) / 2
}

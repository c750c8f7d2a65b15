package imagery

import (
	"context"
	"sync"

	"property-explorer/internal/property"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Completion is a finished fetch waiting to be applied on the frame thread. Owner is
// whatever the requester passed to Request; the fetcher never inspects it.
type Completion[K any] struct {
	Owner   K
	Slot    Slot
	Texture *Texture
}

// Fetcher runs Provider fetches in the background. Each Request gets its own goroutine;
// finished textures are queued until the owner calls Drain, so the goroutines never touch
// scene state. Fetches are not cancelled individually. Close cancels the shared context
// and waits for all of them.
type Fetcher[K any] struct {
	provider Provider
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	done     []Completion[K]
	inFlight int
	closed   bool
}

// NewFetcher returns a Fetcher over p. log may be nil.
func NewFetcher[K any](p Provider, log *zap.Logger) *Fetcher[K] {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Fetcher[K]{
		provider: p,
		log:      log.Named("fetcher"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Request starts fetching slot for coord on behalf of owner. A coordinate without a known
// location completes immediately as Unavailable without calling the provider. Requests
// after Close are dropped.
func (f *Fetcher[K]) Request(owner K, slot Slot, coord orb.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if !property.KnownCoordinate(coord) {
		f.done = append(f.done, Completion[K]{Owner: owner, Slot: slot, Texture: Unavailable(slot)})
		return
	}
	f.inFlight++
	f.wg.Add(1)
	go f.run(owner, slot, coord)
}

func (f *Fetcher[K]) run(owner K, slot Slot, coord orb.Point) {
	defer f.wg.Done()
	var tex *Texture
	switch slot {
	case SlotOverhead:
		tex = f.provider.FetchOverhead(f.ctx, coord)
	default:
		tex = f.provider.FetchGroundLevel(f.ctx, coord)
	}
	if tex == nil {
		tex = Failed(slot, nil)
	}
	f.mu.Lock()
	f.inFlight--
	f.done = append(f.done, Completion[K]{Owner: owner, Slot: slot, Texture: tex})
	f.mu.Unlock()
}

// Drain returns and clears the queued completions without blocking.
func (f *Fetcher[K]) Drain() []Completion[K] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.done) == 0 {
		return nil
	}
	out := f.done
	f.done = nil
	return out
}

// InFlight returns the number of fetches still running.
func (f *Fetcher[K]) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Wait blocks until every fetch started so far has completed.
func (f *Fetcher[K]) Wait() {
	f.wg.Wait()
}

// Close stops accepting requests, cancels outstanding fetches and waits for their
// goroutines to exit. Safe to call more than once.
func (f *Fetcher[K]) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()
	f.cancel()
	f.wg.Wait()
	f.log.Debug("fetcher closed")
}

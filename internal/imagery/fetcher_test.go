package imagery

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// stubProvider returns a ready 1x1 texture. If gate is set, every fetch waits on it or on
// context cancellation.
type stubProvider struct {
	calls atomic.Int32
	gate  chan struct{}
	// started receives once per fetch after it begins.
	started chan struct{}
}

func (s *stubProvider) fetch(ctx context.Context, slot Slot) *Texture {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return Failed(slot, ctx.Err())
		}
	}
	return FromImage(slot, image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func (s *stubProvider) FetchGroundLevel(ctx context.Context, _ orb.Point) *Texture {
	return s.fetch(ctx, SlotGroundLevel)
}

func (s *stubProvider) FetchOverhead(ctx context.Context, _ orb.Point) *Texture {
	return s.fetch(ctx, SlotOverhead)
}

func TestFetcher_DeliversCompletionsThroughDrain(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &stubProvider{}
	f := NewFetcher[string](p, nil)
	defer f.Close()

	f.Request("a", SlotGroundLevel, fortWorth)
	f.Request("a", SlotOverhead, fortWorth)
	f.Request("b", SlotOverhead, fortWorth)
	f.Wait()

	got := f.Drain()
	require.Len(t, got, 3)
	bySlot := map[string]int{}
	for _, c := range got {
		assert.True(t, c.Texture.Ready())
		assert.Equal(t, c.Slot, c.Texture.Slot)
		bySlot[c.Owner+"/"+c.Slot.String()]++
	}
	assert.Equal(t, map[string]int{"a/ground_level": 1, "a/overhead": 1, "b/overhead": 1}, bySlot)
	assert.Nil(t, f.Drain(), "drain clears the queue")
	assert.Zero(t, f.InFlight())
}

func TestFetcher_UnknownCoordinateCompletesWithoutProvider(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &stubProvider{}
	f := NewFetcher[int](p, nil)
	defer f.Close()

	f.Request(7, SlotGroundLevel, orb.Point{})
	got := f.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Owner)
	assert.Equal(t, StatusUnavailable, got[0].Texture.Status)
	assert.Zero(t, p.calls.Load())
}

func TestFetcher_FetchesRunConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &stubProvider{gate: make(chan struct{}), started: make(chan struct{}, 8)}
	f := NewFetcher[int](p, nil)
	defer f.Close()

	for i := 0; i < 4; i++ {
		f.Request(i, SlotOverhead, fortWorth)
	}
	// All four must be running at once before any is allowed to finish.
	for i := 0; i < 4; i++ {
		select {
		case <-p.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d fetches started concurrently", i)
		}
	}
	assert.Equal(t, 4, f.InFlight())
	assert.Nil(t, f.Drain(), "nothing completes while gated")

	close(p.gate)
	f.Wait()
	assert.Len(t, f.Drain(), 4)
}

func TestFetcher_CloseCancelsAndWaits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &stubProvider{gate: make(chan struct{}), started: make(chan struct{}, 2)}
	f := NewFetcher[int](p, nil)
	f.Request(1, SlotGroundLevel, fortWorth)
	<-p.started

	f.Close()
	got := f.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, StatusFailed, got[0].Texture.Status)

	f.Request(2, SlotGroundLevel, fortWorth)
	assert.Nil(t, f.Drain(), "requests after close are dropped")
	f.Close()
}

func TestFetcher_DrainIsSafeDuringFetches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &stubProvider{}
	f := NewFetcher[int](p, nil)
	defer f.Close()

	var wg sync.WaitGroup
	var drained atomic.Int32
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			drained.Add(int32(len(f.Drain())))
			select {
			case <-stop:
				return
			default:
			}
		}
	}()
	for i := 0; i < 50; i++ {
		f.Request(i, Slot(i%2), fortWorth)
	}
	f.Wait()
	close(stop)
	wg.Wait()
	drained.Add(int32(len(f.Drain())))
	assert.Equal(t, int32(50), drained.Load())
}

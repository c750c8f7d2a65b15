package imagery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"property-explorer/internal/download"
	"property-explorer/internal/property"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// Provider fetches imagery for a coordinate. Implementations block until the image is
// decoded or the fetch fails and never return nil. A coordinate without a known location
// yields an Unavailable texture without any network call; failures yield a Failed
// texture. Callers that need asynchrony wrap a Provider in a Fetcher.
type Provider interface {
	FetchGroundLevel(ctx context.Context, coord orb.Point) *Texture
	FetchOverhead(ctx context.Context, coord orb.Point) *Texture
}

const (
	DefaultStreetViewURL  = "https://maps.googleapis.com/maps/api/streetview"
	DefaultStaticMapURL   = "https://maps.googleapis.com/maps/api/staticmap"
	DefaultMaxTextureSize = 1024
)

// ErrNoAPIKey is recorded on textures when the Google provider has no key configured.
var ErrNoAPIKey = errors.New("imagery: no API key")

// GoogleOptions configures GoogleProvider. Zero fields take the defaults from
// DefaultGoogleOptions.
type GoogleOptions struct {
	APIKey        string
	StreetViewURL string
	StaticMapURL  string

	// Requested image size in pixels for both services.
	Width, Height int

	// Street View camera.
	FOV, Heading, Pitch float64

	// Static Maps zoom level; 19 frames a single lot.
	Zoom int

	Timeout        time.Duration
	MaxTextureSize int
	CacheDir       string
}

// DefaultGoogleOptions returns the parameters the explorer has always requested.
func DefaultGoogleOptions() GoogleOptions {
	return GoogleOptions{
		StreetViewURL:  DefaultStreetViewURL,
		StaticMapURL:   DefaultStaticMapURL,
		Width:          1600,
		Height:         1200,
		FOV:            90,
		Heading:        0,
		Pitch:          10,
		Zoom:           19,
		Timeout:        15 * time.Second,
		MaxTextureSize: DefaultMaxTextureSize,
	}
}

// GoogleProvider fetches ground-level imagery from the Street View Static API and
// overhead imagery from the Static Maps API in satellite mode.
type GoogleProvider struct {
	opts       GoogleOptions
	httpClient *http.Client
	cache      download.Cache
	log        *zap.Logger
}

// NewGoogleProvider returns a provider using opts. log may be nil.
func NewGoogleProvider(opts GoogleOptions, log *zap.Logger) *GoogleProvider {
	def := DefaultGoogleOptions()
	if opts.StreetViewURL == "" {
		opts.StreetViewURL = def.StreetViewURL
	}
	if opts.StaticMapURL == "" {
		opts.StaticMapURL = def.StaticMapURL
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.FOV <= 0 {
		opts.FOV = def.FOV
	}
	if opts.Zoom <= 0 {
		opts.Zoom = def.Zoom
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = def.MaxTextureSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleProvider{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		cache:      download.Cache{Dir: opts.CacheDir},
		log:        log.Named("imagery"),
	}
}

// FetchGroundLevel fetches the street-level photograph at coord.
func (g *GoogleProvider) FetchGroundLevel(ctx context.Context, coord orb.Point) *Texture {
	return g.fetch(ctx, SlotGroundLevel, coord)
}

// FetchOverhead fetches the satellite image centered on coord.
func (g *GoogleProvider) FetchOverhead(ctx context.Context, coord orb.Point) *Texture {
	return g.fetch(ctx, SlotOverhead, coord)
}

func (g *GoogleProvider) fetch(ctx context.Context, slot Slot, coord orb.Point) *Texture {
	if !property.KnownCoordinate(coord) {
		return Unavailable(slot)
	}
	reqID := uuid.NewString()
	log := g.log.With(
		zap.String("request_id", reqID),
		zap.Stringer("slot", slot),
		zap.String("location", latLng(coord)),
	)

	key := cacheKey(slot, coord)
	body, hit := g.cache.Load(key)
	if hit {
		log.Debug("imagery cache hit")
	} else {
		if g.opts.APIKey == "" {
			log.Warn("imagery fetch skipped", zap.Error(ErrNoAPIKey))
			return Failed(slot, ErrNoAPIKey)
		}
		start := time.Now()
		var ct string
		var err error
		body, ct, err = download.Fetch(ctx, g.httpClient, g.URL(slot, coord))
		if err != nil {
			log.Warn("imagery fetch failed", zap.Error(err))
			return Failed(slot, err)
		}
		log.Debug("imagery fetched", zap.Int("bytes", len(body)), zap.Duration("elapsed", time.Since(start)))
		if _, err := g.cache.Store(key, ct, body); err != nil {
			log.Warn("imagery cache store failed", zap.Error(err))
		}
	}

	img, err := Decode(body, g.opts.MaxTextureSize)
	if err != nil {
		log.Warn("imagery decode failed", zap.Error(err))
		return Failed(slot, err)
	}
	return FromImage(slot, img)
}

// URL returns the request URL for slot at coord, API key included.
func (g *GoogleProvider) URL(slot Slot, coord orb.Point) string {
	params := url.Values{}
	params.Set("size", fmt.Sprintf("%dx%d", g.opts.Width, g.opts.Height))
	base := g.opts.StreetViewURL
	switch slot {
	case SlotGroundLevel:
		params.Set("location", latLng(coord))
		params.Set("fov", strconv.FormatFloat(g.opts.FOV, 'f', -1, 64))
		params.Set("pitch", strconv.FormatFloat(g.opts.Pitch, 'f', -1, 64))
		params.Set("heading", strconv.FormatFloat(g.opts.Heading, 'f', -1, 64))
	case SlotOverhead:
		base = g.opts.StaticMapURL
		params.Set("center", latLng(coord))
		params.Set("zoom", strconv.Itoa(g.opts.Zoom))
		params.Set("maptype", "satellite")
	}
	params.Set("key", g.opts.APIKey)
	return fmt.Sprintf("%s?%s", base, params.Encode())
}

// Decode decodes a JPEG, PNG or WebP body and downscales it so neither side exceeds
// maxSize, keeping the aspect ratio.
func Decode(body []byte, maxSize int) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagery: decode: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("imagery: decode: empty image")
	}
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return clone.AsRGBA(src), nil
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	return transform.Resize(src, w, h, transform.Linear), nil
}

// latLng formats coord the way both Google services expect: "lat,lng".
func latLng(coord orb.Point) string {
	return strconv.FormatFloat(coord.Lat(), 'f', 6, 64) + "," + strconv.FormatFloat(coord.Lon(), 'f', 6, 64)
}

func cacheKey(slot Slot, coord orb.Point) string {
	return slot.String() + "_" + latLng(coord)
}

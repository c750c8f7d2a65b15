package property

import (
	"sort"

	"github.com/paulmach/orb"
)

// Property is one listing as supplied by the data layer. The renderer treats it as
// immutable for a visualization pass: visuals keep a copy and never write to it.
// Coordinate uses orb's [lon, lat] order; the zero point means "location unknown".
type Property struct {
	ID         string             `yaml:"id" json:"id"`
	Name       string             `yaml:"name" json:"name"`
	Address    string             `yaml:"address,omitempty" json:"address,omitempty"`
	Coordinate orb.Point          `yaml:"coordinate,flow" json:"coordinate"`
	Attributes map[string]float64 `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	MatchScore float64            `yaml:"match_score" json:"match_score"`
	Meta       map[string]string  `yaml:"meta,omitempty" json:"meta,omitempty"`
}

// HasCoordinate reports whether the property has a usable location. Both the zero point
// and non-finite or out-of-range values count as unknown.
func (p Property) HasCoordinate() bool {
	return KnownCoordinate(p.Coordinate)
}

// MaxMercatorLat is the latitude limit of Web Mercator. Beyond it the projection
// runs off to infinity.
const MaxMercatorLat = 85.05112878

// KnownCoordinate reports whether c is a WGS84 location the ground layout can project.
// Latitudes past MaxMercatorLat count as unknown.
func KnownCoordinate(c orb.Point) bool {
	if c.Lon() == 0 && c.Lat() == 0 {
		return false
	}
	if c.Lat() < -MaxMercatorLat || c.Lat() > MaxMercatorLat || c.Lon() < -180 || c.Lon() > 180 {
		return false
	}
	return c.Lat() == c.Lat() && c.Lon() == c.Lon() // NaN check
}

// Attribute returns the named attribute score clamped to [0,100]. Missing attributes
// return 0 and ok=false.
func (p Property) Attribute(name string) (score float64, ok bool) {
	v, ok := p.Attributes[name]
	if !ok {
		return 0, false
	}
	return Clamp100(v), true
}

// Weights maps attribute name to weight. Weights need not sum to 1.
type Weights map[string]float64

// Names returns the weighted attribute names in sorted order so callers that sum
// over weights get the same floating-point result on every run.
func (w Weights) Names() []string {
	names := make([]string, 0, len(w))
	for k := range w {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clamp100 clamps v to [0,100]; NaN becomes 0.
func Clamp100(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

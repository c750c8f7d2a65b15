package scoremap

import (
	"math"
	"testing"

	"property-explorer/internal/property"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlacement_ScenarioHeights(t *testing.T) {
	m := New(20)
	var got []float32
	for _, s := range []float64{0, 50, 100} {
		got = append(got, m.ComputePlacement(property.Property{MatchScore: s}, nil).Height)
	}
	assert.Equal(t, []float32{0, 10, 20}, got)
}

func TestComputePlacement_BoundedAndMonotonic(t *testing.T) {
	m := New(20)
	prev := float32(-1)
	for s := 0; s <= 100; s++ {
		h := m.ComputePlacement(property.Property{MatchScore: float64(s)}, nil).Height
		require.GreaterOrEqual(t, h, float32(0))
		require.LessOrEqual(t, h, m.MaxHeight)
		require.Greater(t, h, prev, "height must strictly increase at score %d", s)
		prev = h
	}
}

func TestComputePlacement_ClampsOutOfRangeScores(t *testing.T) {
	m := New(20)
	assert.Equal(t, float32(0), m.ComputePlacement(property.Property{MatchScore: -5}, nil).Height)
	assert.Equal(t, float32(20), m.ComputePlacement(property.Property{MatchScore: 250}, nil).Height)
}

func TestScore_Weighted(t *testing.T) {
	p := property.Property{Attributes: map[string]float64{"walk": 80, "schools": 40}}

	// Weights are normalized: 3:1 weighting of 80 and 40.
	s := Score(p, property.Weights{"walk": 3, "schools": 1})
	assert.InDelta(t, 70, s, 1e-9)

	// Same ratio, different scale.
	assert.InDelta(t, s, Score(p, property.Weights{"walk": 0.75, "schools": 0.25}), 1e-9)
}

func TestScore_MissingAttributeContributesZero(t *testing.T) {
	p := property.Property{Attributes: map[string]float64{"walk": 100}}
	assert.InDelta(t, 50, Score(p, property.Weights{"walk": 1, "crime": 1}), 1e-9)
}

func TestScore_EmptyWeightsYieldZero(t *testing.T) {
	p := property.Property{MatchScore: 90, Attributes: map[string]float64{"walk": 100}}
	assert.Equal(t, 0.0, Score(p, property.Weights{}))
	assert.Equal(t, 0.0, Score(p, property.Weights{"walk": 0}))
	assert.Equal(t, 0.0, Score(p, property.Weights{"walk": -2}))
}

func TestScore_NilWeightsUseFeedScore(t *testing.T) {
	assert.Equal(t, 42.0, Score(property.Property{MatchScore: 42}, nil))
}

func TestComputePlacement_Deterministic(t *testing.T) {
	m := New(20)
	p := property.Property{Attributes: map[string]float64{"a": 13.7, "b": 91.1, "c": 55.5}}
	w := property.Weights{"a": 0.1, "b": 0.7, "c": 0.2}
	first := m.ComputePlacement(p, w)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, m.ComputePlacement(p, w))
	}
}

func TestNew_DefaultsInvalidHeight(t *testing.T) {
	assert.Equal(t, float32(DefaultMaxHeight), New(0).MaxHeight)
	assert.Equal(t, float32(DefaultMaxHeight), New(-3).MaxHeight)
}

func TestColorFor_Ramp(t *testing.T) {
	low, mid, high := ColorFor(0), ColorFor(50), ColorFor(100)
	assert.Equal(t, rampLow, low)
	assert.Equal(t, rampMid, mid)
	assert.Equal(t, rampHigh, high)

	// Green channel rises from the red end toward yellow.
	assert.Greater(t, ColorFor(25).G, low.G)
	// Red channel falls from yellow toward green.
	assert.Less(t, ColorFor(75).R, mid.R)
}

func TestLayout_FitsRadiusAndIsDeterministic(t *testing.T) {
	props := []property.Property{
		{ID: "a", Coordinate: orb.Point{-97.33, 32.75}},
		{ID: "b", Coordinate: orb.Point{-97.30, 32.76}},
		{ID: "c", Coordinate: orb.Point{-97.35, 32.70}},
		{ID: "nowhere"},
	}
	first := Layout(props, 40)
	require.Len(t, first, 4)
	assert.Equal(t, first, Layout(props, 40))

	for _, id := range []string{"a", "b", "c"} {
		xz := first[id]
		d := xz.X*xz.X + xz.Z*xz.Z
		assert.LessOrEqual(t, d, float32(40*40)+0.01, id)
	}

	// North of the others maps to smaller Z.
	assert.Less(t, first["b"].Z, first["c"].Z)

	// Unknown coordinates go on the outer ring.
	u := first["nowhere"]
	assert.InDelta(t, 40*unknownRingScale, hypot(u.X, u.Z), 1e-3)
}

func TestLayout_SingleLocatedPropertySitsAtOrigin(t *testing.T) {
	got := Layout([]property.Property{{ID: "solo", Coordinate: orb.Point{-97.3, 32.7}}}, 40)
	assert.Equal(t, XZ{}, got["solo"])
}

func hypot(x, z float32) float64 {
	return math.Hypot(float64(x), float64(z))
}

func TestLayout_PolarRecordGoesToRing(t *testing.T) {
	props := []property.Property{
		{ID: "elm", Coordinate: orb.Point{-97.33, 32.75}},
		{ID: "oak", Coordinate: orb.Point{-97.30, 32.76}},
		{ID: "pole", Coordinate: orb.Point{0, -90}},
	}
	got := Layout(props, 40)
	for id, xz := range got {
		assert.False(t, math.IsNaN(float64(xz.X)) || math.IsNaN(float64(xz.Z)), id)
		assert.False(t, math.IsInf(float64(xz.X), 0) || math.IsInf(float64(xz.Z), 0), id)
	}
	// Two located properties straddle the center; the polar one joins the unknown ring.
	assert.InDelta(t, 40, math.Hypot(float64(got["elm"].X), float64(got["elm"].Z)), 1e-3)
	assert.InDelta(t, 50, math.Hypot(float64(got["pole"].X), float64(got["pole"].Z)), 1e-3)
}

package scene

import (
	"testing"

	"property-explorer/internal/property"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A lone property without a coordinate sits on the layout ring at (radius, 0).
func loneVisualController(t *testing.T) (*Controller, Handle) {
	t.Helper()
	c := New(&fakeProvider{}, DefaultOptions(), nil)
	c.Rebuild([]property.Property{{ID: "lone", Name: "Lone", MatchScore: 0}}, nil)
	h, ok := c.Lookup("lone")
	require.True(t, ok)
	v := c.Visual(h)
	require.InDelta(t, DefaultOptions().LayoutRadius, v.Anchor().X, 1e-4)
	return c, h
}

func TestPick_VisualBeatsNearerLabel(t *testing.T) {
	c, h := loneVisualController(t)
	defer c.Close()
	a := c.Visual(h).Anchor()

	// Straight down: the label is above the box, so it is hit first.
	ray := rl.Ray{Position: rl.NewVector3(a.X, 100, a.Z), Direction: rl.NewVector3(0, -1, 0)}
	hit, ok := c.Pick(ray)
	require.True(t, ok)
	assert.Equal(t, HitVisual, hit.Kind)
	assert.Equal(t, "lone", hit.ID)
	assert.Equal(t, h, hit.Handle)
}

func TestPick_LabelOnly(t *testing.T) {
	c, h := loneVisualController(t)
	defer c.Close()
	l := c.Visual(h).Label().Position

	ray := rl.Ray{Position: rl.NewVector3(l.X, l.Y, 50), Direction: rl.NewVector3(0, 0, -1)}
	hit, ok := c.Pick(ray)
	require.True(t, ok)
	assert.Equal(t, HitLabel, hit.Kind)
	assert.Equal(t, "label", hit.Kind.String())
}

func TestPick_Miss(t *testing.T) {
	c, _ := loneVisualController(t)
	defer c.Close()

	_, ok := c.Pick(rl.Ray{Position: rl.NewVector3(-200, 5, -200), Direction: rl.NewVector3(0, 1, 0)})
	assert.False(t, ok)
}

func TestPick_NearestVisualWins(t *testing.T) {
	c := New(&fakeProvider{}, DefaultOptions(), nil)
	defer c.Close()
	// Two unlocated properties land on opposite sides of the ring at (±radius, 0).
	c.Rebuild([]property.Property{{ID: "east", MatchScore: 0}, {ID: "west", MatchScore: 0}}, nil)
	hEast, _ := c.Lookup("east")
	y := c.Visual(hEast).Center().Y

	hit, ok := c.Pick(rl.Ray{Position: rl.NewVector3(100, y, 0), Direction: rl.NewVector3(-1, 0, 0)})
	require.True(t, ok)
	assert.Equal(t, "east", hit.ID)

	hit, ok = c.Pick(rl.Ray{Position: rl.NewVector3(-100, y, 0), Direction: rl.NewVector3(1, 0, 0)})
	require.True(t, ok)
	assert.Equal(t, "west", hit.ID)
}

package grid

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoops(t *testing.T) {
	t.Run("two loops", func(t *testing.T) {
		pd := &PolyData{Lines: []int{3, 0, 1, 2, 4, 3, 4, 5, 6}}
		loops, err := pd.Loops()
		require.NoError(t, err)
		assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5, 6}}, loops)
	})

	t.Run("truncated run", func(t *testing.T) {
		pd := &PolyData{Lines: []int{4, 0, 1, 2}}
		_, err := pd.Loops()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "truncated")
	})

	t.Run("zero count", func(t *testing.T) {
		pd := &PolyData{Lines: []int{0, 1, 2}}
		_, err := pd.Loops()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "count 0")
	})

	t.Run("empty topology", func(t *testing.T) {
		pd := &PolyData{}
		loops, err := pd.Loops()
		require.NoError(t, err)
		assert.Empty(t, loops)
	})
}

func TestNumEdges(t *testing.T) {
	pd := &PolyData{Lines: []int{3, 0, 1, 2, 4, 3, 4, 5, 6}}
	assert.Equal(t, 7, pd.NumEdges())

	broken := &PolyData{Lines: []int{5, 0, 1}}
	assert.Equal(t, 0, broken.NumEdges())
}

func TestBounds(t *testing.T) {
	pd := &PolyData{Points: []v3.Vec{
		{X: -1, Y: 2, Z: 0},
		{X: 3, Y: -4, Z: 1},
		{X: 0, Y: 0, Z: 5},
	}}
	b := pd.Bounds()
	assert.Equal(t, v3.Vec{X: -1, Y: -4, Z: 0}, b.Min)
	assert.Equal(t, v3.Vec{X: 3, Y: 2, Z: 5}, b.Max)
	assert.Equal(t, v3.Vec{X: 4, Y: 6, Z: 5}, b.Extent())
	assert.Equal(t, 6.0, b.MaxExtent())

	empty := &PolyData{}
	assert.Equal(t, Bounds{}, empty.Bounds())
}

func TestNewPolygon(t *testing.T) {
	pd := NewPolygon(6, 2)
	require.Len(t, pd.Points, 6)
	assert.Equal(t, []int{6, 0, 1, 2, 3, 4, 5}, pd.Lines)

	// First vertex on the +x axis, all vertices on the circle.
	assert.InDelta(t, 2, pd.Points[0].X, 1e-12)
	assert.InDelta(t, 0, pd.Points[0].Y, 1e-12)
	for _, p := range pd.Points {
		assert.InDelta(t, 2, math.Hypot(p.X, p.Y), 1e-12)
		assert.Zero(t, p.Z)
	}
}

func TestRotateZ(t *testing.T) {
	pd := &PolyData{
		Points: []v3.Vec{{X: 1, Y: 0, Z: 3}},
		Lines:  []int{1, 0},
	}
	rot := pd.RotateZ(90)
	assert.InDelta(t, 0, rot.Points[0].X, 1e-12)
	assert.InDelta(t, 1, rot.Points[0].Y, 1e-12)
	assert.Equal(t, 3.0, rot.Points[0].Z)

	// Original untouched.
	assert.Equal(t, v3.Vec{X: 1, Y: 0, Z: 3}, pd.Points[0])
}

func TestNewCube(t *testing.T) {
	pd := NewCube(2)
	assert.Len(t, pd.Points, 8)

	loops, err := pd.Loops()
	require.NoError(t, err)
	require.Len(t, loops, 6)

	b := pd.Bounds()
	assert.Equal(t, v3.Vec{}, b.Min)
	assert.Equal(t, v3.Vec{X: 2, Y: 2, Z: 2}, b.Max)

	// A closed solid names every geometric edge in exactly two faces, with
	// opposite traversal directions.
	type edge struct{ a, b int }
	dirs := map[edge]int{}
	for _, loop := range loops {
		require.Len(t, loop, 4)
		for i := range loop {
			dirs[edge{loop[i], loop[(i+1)%len(loop)]}]++
		}
	}
	assert.Len(t, dirs, 24)
	for e, n := range dirs {
		assert.Equal(t, 1, n, "edge %d-%d traversed twice in the same direction", e.a, e.b)
		assert.Equal(t, 1, dirs[edge{e.b, e.a}], "edge %d-%d has no reversed twin", e.a, e.b)
	}
}

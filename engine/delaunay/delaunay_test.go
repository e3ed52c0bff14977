package delaunay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircumcircle(t *testing.T) {
	t.Run("right triangle", func(t *testing.T) {
		// The hypotenuse is the diameter.
		center, radius := Circumcircle(Vec2{0, 0}, Vec2{2, 0}, Vec2{0, 2})
		assert.InDelta(t, 1, center.X, 1e-12)
		assert.InDelta(t, 1, center.Y, 1e-12)
		assert.InDelta(t, math.Sqrt2, radius, 1e-12)
	})

	t.Run("collinear points", func(t *testing.T) {
		_, radius := Circumcircle(Vec2{0, 0}, Vec2{1, 0}, Vec2{2, 0})
		assert.True(t, math.IsInf(radius, 1))
	})
}

func TestTriangulationSquare(t *testing.T) {
	tri := New(Vec2{0, 0}, Vec2{1, 1})
	for _, p := range []Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		tri.Insert(p)
	}

	tris := tri.Triangles()
	require.Len(t, tris, 2)

	// Counterclockwise winding and full coverage of the square.
	area := 0.0
	for _, tr := range tris {
		a, b, c := tri.Point(tr[0]), tri.Point(tr[1]), tri.Point(tr[2])
		signed := cross(a, b, c) / 2
		assert.Greater(t, signed, 0.0)
		area += signed
	}
	assert.InDelta(t, 1.0, area, 1e-12)
}

func TestTriangulationInteriorInsert(t *testing.T) {
	tri := New(Vec2{0, 0}, Vec2{2, 2})
	for _, p := range []Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}} {
		tri.Insert(p)
	}
	tri.Insert(Vec2{1, 1})

	// The center point is on both diagonal circumcircles, so the square
	// retriangulates into a fan of four.
	tris := tri.Triangles()
	assert.Len(t, tris, 4)
	assert.Equal(t, 5, tri.NumPoints())
}

func TestInsertCoincidentPointReturnsExistingIndex(t *testing.T) {
	tri := New(Vec2{0, 0}, Vec2{1, 1})
	first := tri.Insert(Vec2{0.5, 0.5})
	second := tri.Insert(Vec2{0.5, 0.5})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, tri.NumPoints())
}

func TestTriangulationManyPointsStaysDelaunay(t *testing.T) {
	tri := New(Vec2{0, 0}, Vec2{10, 10})
	// Deterministic scatter, no two points co-located.
	var pts []Vec2
	for i := 0; i < 60; i++ {
		x := math.Mod(float64(i)*2.2360679, 10)
		y := math.Mod(float64(i)*3.1415926, 10)
		p := Vec2{x, y}
		pts = append(pts, p)
		tri.Insert(p)
	}

	// Delaunay invariant: no point strictly inside any triangle's
	// circumcircle.
	for _, tr := range tri.Triangles() {
		a, b, c := tri.Point(tr[0]), tri.Point(tr[1]), tri.Point(tr[2])
		center, radius := Circumcircle(a, b, c)
		for _, p := range pts {
			assert.GreaterOrEqual(t, math.Sqrt(dist2(p, center)), radius*(1-1e-9),
				"point (%g, %g) violates the circumcircle of a triangle", p.X, p.Y)
		}
	}
}

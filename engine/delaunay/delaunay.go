package delaunay

import (
	"math"

	"github.com/pkg/errors"
)

// Triangulation is an incremental 2D Delaunay triangulation. It starts
// from a super-triangle enclosing the working box; triangles touching the
// super-triangle's corners are hidden from the output. Failures panic with
// an error value, which the engine's recover boundary converts.
type Triangulation struct {
	points []Vec2
	tris   [][3]int
	eps2   float64
}

// superVerts is the number of synthetic corner points at the front of the
// point list. Insert return values never reference them.
const superVerts = 3

// New starts a triangulation whose super-triangle comfortably encloses the
// box [lo, hi]. Every inserted point must lie inside that box.
func New(lo, hi Vec2) *Triangulation {
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	d := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if d <= 0 {
		d = 1
	}
	t := &Triangulation{
		points: []Vec2{
			{cx - 20*d, cy - 10*d},
			{cx + 20*d, cy - 10*d},
			{cx, cy + 20*d},
		},
		eps2: d * d * Tolerance * Tolerance,
	}
	t.tris = [][3]int{{0, 1, 2}}
	return t
}

// NumPoints returns the number of inserted points (super-triangle corners
// excluded).
func (t *Triangulation) NumPoints() int {
	return len(t.points) - superVerts
}

// Point returns the coordinates of an inserted point by its Insert index.
func (t *Triangulation) Point(i int) Vec2 {
	return t.points[i+superVerts]
}

// Insert adds a point and restores the Delaunay property around it,
// returning the point's index. Inserting a point coincident with an
// earlier one returns the earlier index without changing the mesh.
func (t *Triangulation) Insert(p Vec2) int {
	for i := superVerts; i < len(t.points); i++ {
		if dist2(p, t.points[i]) <= t.eps2 {
			return i - superVerts
		}
	}

	// Cavity: all triangles whose circumcircle contains p. The strict
	// containment test can miss a point lying exactly on several circles,
	// in which case the relaxed test settles it.
	bad := t.badTriangles(p, false)
	if len(bad) == 0 {
		bad = t.badTriangles(p, true)
	}
	if len(bad) == 0 {
		panic(errors.Errorf("delaunay: point (%g, %g) is outside the working box", p.X, p.Y))
	}

	// The cavity boundary is every directed edge of a bad triangle whose
	// reverse is not itself a bad-triangle edge. Directed edges keep the
	// counterclockwise winding through the rebuild.
	edgeSet := make(map[[2]int]bool, len(bad)*3)
	for _, ti := range bad {
		tri := t.tris[ti]
		edgeSet[[2]int{tri[0], tri[1]}] = true
		edgeSet[[2]int{tri[1], tri[2]}] = true
		edgeSet[[2]int{tri[2], tri[0]}] = true
	}
	var boundary [][2]int
	for _, ti := range bad {
		tri := t.tris[ti]
		for _, e := range [][2]int{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}} {
			if !edgeSet[[2]int{e[1], e[0]}] {
				boundary = append(boundary, e)
			}
		}
	}

	// Drop the cavity, highest index first so removals don't shift.
	for i := len(bad) - 1; i >= 0; i-- {
		ti := bad[i]
		t.tris[ti] = t.tris[len(t.tris)-1]
		t.tris = t.tris[:len(t.tris)-1]
	}

	idx := len(t.points)
	t.points = append(t.points, p)
	for _, e := range boundary {
		t.tris = append(t.tris, [3]int{e[0], e[1], idx})
	}
	return idx - superVerts
}

// badTriangles returns indices into t.tris, ascending.
func (t *Triangulation) badTriangles(p Vec2, relax bool) []int {
	var bad []int
	for i, tri := range t.tris {
		if inCircumcircle(p, t.points[tri[0]], t.points[tri[1]], t.points[tri[2]], relax) {
			bad = append(bad, i)
		}
	}
	return bad
}

// Triangles returns the current triangles as Insert-index triples,
// excluding any triangle touching the super-triangle. Winding is
// counterclockwise.
func (t *Triangulation) Triangles() [][3]int {
	var out [][3]int
	for _, tri := range t.tris {
		if tri[0] < superVerts || tri[1] < superVerts || tri[2] < superVerts {
			continue
		}
		out = append(out, [3]int{tri[0] - superVerts, tri[1] - superVerts, tri[2] - superVerts})
	}
	return out
}

package delaunay

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Tetrahedralization is the 3D counterpart of Triangulation: incremental
// Bowyer-Watson insertion inside a super-tetrahedron, with tetrahedra
// touching the synthetic corners hidden from the output.
type Tetrahedralization struct {
	points []v3.Vec
	tets   [][4]int
	eps2   float64
}

const superVerts3 = 4

// NewTet starts a tetrahedralization whose super-tetrahedron encloses the
// box [lo, hi].
func NewTet(lo, hi v3.Vec) *Tetrahedralization {
	c := lo.Add(hi).MulScalar(0.5)
	e := hi.Sub(lo)
	d := math.Max(e.X, math.Max(e.Y, e.Z))
	if d <= 0 {
		d = 1
	}
	t := &Tetrahedralization{
		points: []v3.Vec{
			{X: c.X - 30*d, Y: c.Y - 10*d, Z: c.Z - 10*d},
			{X: c.X + 30*d, Y: c.Y - 10*d, Z: c.Z - 10*d},
			{X: c.X, Y: c.Y + 30*d, Z: c.Z - 10*d},
			{X: c.X, Y: c.Y, Z: c.Z + 30*d},
		},
		eps2: d * d * Tolerance * Tolerance,
	}
	t.tets = [][4]int{{0, 1, 2, 3}}
	return t
}

// NumPoints returns the number of inserted points.
func (t *Tetrahedralization) NumPoints() int {
	return len(t.points) - superVerts3
}

// Point returns the coordinates of an inserted point by its Insert index.
func (t *Tetrahedralization) Point(i int) v3.Vec {
	return t.points[i+superVerts3]
}

// Insert adds a point and restores the Delaunay property around it,
// returning the point's index. Coincident points return the earlier index.
func (t *Tetrahedralization) Insert(p v3.Vec) int {
	for i := superVerts3; i < len(t.points); i++ {
		d := p.Sub(t.points[i])
		if d.Dot(d) <= t.eps2 {
			return i - superVerts3
		}
	}

	bad := t.badTets(p, false)
	if len(bad) == 0 {
		bad = t.badTets(p, true)
	}
	if len(bad) == 0 {
		panic(errors.Errorf("delaunay: point (%g, %g, %g) is outside the working box", p.X, p.Y, p.Z))
	}

	// Cavity boundary: faces of bad tets that are not shared between two
	// bad tets. Faces are keyed by sorted vertex triple; the unsorted
	// triple is kept so the new tet can be oriented afterwards.
	type face struct {
		verts [3]int
		count int
	}
	faces := make(map[[3]int]*face, len(bad)*4)
	for _, ti := range bad {
		tet := t.tets[ti]
		for _, f := range tetFaces(tet) {
			key := sortedTriple(f)
			if e, ok := faces[key]; ok {
				e.count++
			} else {
				faces[key] = &face{verts: f, count: 1}
			}
		}
	}

	for i := len(bad) - 1; i >= 0; i-- {
		ti := bad[i]
		t.tets[ti] = t.tets[len(t.tets)-1]
		t.tets = t.tets[:len(t.tets)-1]
	}

	idx := len(t.points)
	t.points = append(t.points, p)
	// Map iteration order is random; rebuild deterministically by sorted
	// key. The mesh itself is order-independent, but downstream output
	// ordering should not wobble between runs.
	for _, key := range sortedFaceKeys(faces) {
		f := faces[key]
		if f.count != 1 {
			continue
		}
		tet := [4]int{f.verts[0], f.verts[1], f.verts[2], idx}
		if orient3(t.points[tet[0]], t.points[tet[1]], t.points[tet[2]], t.points[tet[3]]) < 0 {
			tet[0], tet[1] = tet[1], tet[0]
		}
		t.tets = append(t.tets, tet)
	}
	return idx - superVerts3
}

func (t *Tetrahedralization) badTets(p v3.Vec, relax bool) []int {
	var bad []int
	for i, tet := range t.tets {
		if inCircumsphere(p, t.points[tet[0]], t.points[tet[1]], t.points[tet[2]], t.points[tet[3]], relax) {
			bad = append(bad, i)
		}
	}
	return bad
}

// Tetrahedra returns the current tetrahedra as Insert-index quadruples,
// excluding any tetrahedron touching the super-tetrahedron. All output
// tetrahedra have positive orientation.
func (t *Tetrahedralization) Tetrahedra() [][4]int {
	var out [][4]int
	for _, tet := range t.tets {
		if tet[0] < superVerts3 || tet[1] < superVerts3 || tet[2] < superVerts3 || tet[3] < superVerts3 {
			continue
		}
		out = append(out, [4]int{
			tet[0] - superVerts3,
			tet[1] - superVerts3,
			tet[2] - superVerts3,
			tet[3] - superVerts3,
		})
	}
	return out
}

func tetFaces(tet [4]int) [4][3]int {
	return [4][3]int{
		{tet[0], tet[1], tet[2]},
		{tet[0], tet[3], tet[1]},
		{tet[1], tet[3], tet[2]},
		{tet[2], tet[3], tet[0]},
	}
}

func sortedTriple(f [3]int) [3]int {
	a, b, c := f[0], f[1], f[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]int{a, b, c}
}

func sortedFaceKeys[V any](m map[[3]int]V) [][3]int {
	keys := make([][3]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && lessTriple(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func lessTriple(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// orient3 is positive when d lies on the positive side of the plane abc.
func orient3(a, b, c, d v3.Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Dot(d.Sub(a))
}

// Circumsphere returns the circumcenter and circumradius of the
// tetrahedron. A degenerate (near-coplanar) tetrahedron reports an
// infinite radius.
func Circumsphere(a, b, c, d v3.Vec) (center v3.Vec, radius float64) {
	// Solve 2(x-a)·c = |x|^2-|a|^2 for x in {b, c, d} by Cramer's rule.
	r1, r2, r3 := b.Sub(a).MulScalar(2), c.Sub(a).MulScalar(2), d.Sub(a).MulScalar(2)
	k1 := b.Dot(b) - a.Dot(a)
	k2 := c.Dot(c) - a.Dot(a)
	k3 := d.Dot(d) - a.Dot(a)

	det := r1.Dot(r2.Cross(r3))
	scale := r1.Length() + r2.Length() + r3.Length()
	if math.Abs(det) < Tolerance*scale*scale*scale {
		return v3.Vec{}, math.Inf(1)
	}
	center = v3.Vec{
		X: v3.Vec{X: k1, Y: k2, Z: k3}.Dot(v3.Vec{X: r2.Y*r3.Z - r2.Z*r3.Y, Y: r3.Y*r1.Z - r3.Z*r1.Y, Z: r1.Y*r2.Z - r1.Z*r2.Y}) / det,
		Y: v3.Vec{X: k1, Y: k2, Z: k3}.Dot(v3.Vec{X: r2.Z*r3.X - r2.X*r3.Z, Y: r3.Z*r1.X - r3.X*r1.Z, Z: r1.Z*r2.X - r1.X*r2.Z}) / det,
		Z: v3.Vec{X: k1, Y: k2, Z: k3}.Dot(v3.Vec{X: r2.X*r3.Y - r2.Y*r3.X, Y: r3.X*r1.Y - r3.Y*r1.X, Z: r1.X*r2.Y - r1.Y*r2.X}) / det,
	}
	return center, center.Sub(a).Length()
}

func inCircumsphere(p, a, b, c, d v3.Vec, relax bool) bool {
	center, radius := Circumsphere(a, b, c, d)
	if math.IsInf(radius, 1) {
		return false
	}
	r2 := radius * radius
	pc := p.Sub(center)
	if relax {
		return pc.Dot(pc) <= r2*(1+Tolerance)
	}
	return pc.Dot(pc) < r2*(1-Tolerance)
}

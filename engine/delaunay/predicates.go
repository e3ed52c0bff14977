// Package delaunay provides incremental Bowyer-Watson point insertion in
// two and three dimensions. It knows nothing about boundaries or sizing;
// the engine drives insertion and filters the output against its geometry.
package delaunay

import "math"

// Tolerance for the geometric predicates. Circumcircle/circumsphere
// containment is compared with a relative slack of this size so that
// points sitting exactly on a circle (co-circular grids are common in
// meshing) land deterministically on one side.
const Tolerance = 1e-9

// Vec2 is a point in the meshing plane.
type Vec2 struct {
	X, Y float64
}

func dist2(a, b Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// cross of (b-a) x (c-a); positive when abc winds counterclockwise.
func cross(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Circumcircle returns the circumcenter and circumradius of the triangle
// abc. A degenerate (collinear) triangle reports an infinite radius.
func Circumcircle(a, b, c Vec2) (center Vec2, radius float64) {
	d := 2 * ((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
	if math.Abs(d) < Tolerance*Tolerance {
		return Vec2{}, math.Inf(1)
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	center = Vec2{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return center, math.Sqrt(dist2(center, a))
}

// inCircumcircle reports whether p lies inside the circumcircle of abc.
// With relax set, points on the circle count as inside; the strict form is
// tried first so that co-circular lattices resolve deterministically.
func inCircumcircle(p, a, b, c Vec2, relax bool) bool {
	center, radius := Circumcircle(a, b, c)
	if math.IsInf(radius, 1) {
		return false
	}
	r2 := radius * radius
	if relax {
		return dist2(p, center) <= r2*(1+Tolerance)
	}
	return dist2(p, center) < r2*(1-Tolerance)
}

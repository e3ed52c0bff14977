package engine

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/osanai/frontmesh/engine/delaunay"
)

// planeFrame maps between a planar boundary ring's 3D coordinates and the
// 2D meshing plane. The frame is right-handed: u cross v equals the ring
// normal.
type planeFrame struct {
	origin  v3.Vec
	u, v, n v3.Vec
}

// newellNormal accumulates the classic Newell sum over the ring. Unlike a
// single cross product it tolerates collinear consecutive edges.
func newellNormal(ring []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

func newPlaneFrame(ring []v3.Vec) planeFrame {
	n := newellNormal(ring)
	if n.Length() == 0 {
		fatalf("boundary ring is degenerate: all points collinear or coincident")
	}
	n = n.Normalize()

	// Any reference direction not parallel to n will do for the basis.
	ref := v3.Vec{X: 1}
	if n.X > 0.9 || n.X < -0.9 {
		ref = v3.Vec{Y: 1}
	}
	u := n.Cross(ref).Normalize()
	v := n.Cross(u)
	return planeFrame{origin: ring[0], u: u, v: v, n: n}
}

func (f planeFrame) project(p v3.Vec) delaunay.Vec2 {
	d := p.Sub(f.origin)
	return delaunay.Vec2{X: d.Dot(f.u), Y: d.Dot(f.v)}
}

func (f planeFrame) lift(q delaunay.Vec2) v3.Vec {
	return f.origin.Add(f.u.MulScalar(q.X)).Add(f.v.MulScalar(q.Y))
}

// distance is the signed offset of p from the plane.
func (f planeFrame) distance(p v3.Vec) float64 {
	return p.Sub(f.origin).Dot(f.n)
}

package grid

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// PolyData is an edge source: an ordered point set plus a flat topology
// array encoding one or more closed loops. Each loop is stored as a run
// [count, i0, i1, ..., i_{count-1}] where the indices reference Points by
// position and the loop closes implicitly from the last index back to the
// first.
type PolyData struct {
	Points []v3.Vec
	Lines  []int
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min v3.Vec
	Max v3.Vec
}

// Extent returns the box size along each axis.
func (b Bounds) Extent() v3.Vec {
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest axis-aligned extent. This is the coarsest
// length scale of the shape, used as the default target mesh size.
func (b Bounds) MaxExtent() float64 {
	e := b.Extent()
	return math.Max(e.X, math.Max(e.Y, e.Z))
}

// Bounds returns the bounding box of the point set. An empty point set
// yields a zero box.
func (pd *PolyData) Bounds() Bounds {
	if len(pd.Points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: pd.Points[0], Max: pd.Points[0]}
	for _, p := range pd.Points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Loops decodes the flat topology runs into one index slice per loop. It
// validates only the run structure itself; whether the indices reference
// valid points is the meshing engine's concern.
func (pd *PolyData) Loops() ([][]int, error) {
	var loops [][]int
	for i := 0; i < len(pd.Lines); {
		count := pd.Lines[i]
		if count < 1 {
			return nil, errors.Errorf("loop run at offset %d has count %d", i, count)
		}
		if i+1+count > len(pd.Lines) {
			return nil, errors.Errorf("loop run at offset %d is truncated: count %d exceeds remaining %d entries", i, count, len(pd.Lines)-i-1)
		}
		loop := make([]int, count)
		copy(loop, pd.Lines[i+1:i+1+count])
		loops = append(loops, loop)
		i += 1 + count
	}
	return loops, nil
}

// NumEdges returns the total edge count across all loops, counting the
// implicit closing edge of each loop. Malformed runs count as zero.
func (pd *PolyData) NumEdges() int {
	loops, err := pd.Loops()
	if err != nil {
		return 0
	}
	n := 0
	for _, loop := range loops {
		n += len(loop)
	}
	return n
}

// NewPolygon builds a regular polygon edge source in the z=0 plane,
// centered at the origin, with vertices on a circle of the given radius.
// The first vertex sits on the +x axis.
func NewPolygon(nSides int, radius float64) *PolyData {
	pd := &PolyData{}
	pd.Lines = append(pd.Lines, nSides)
	for i := 0; i < nSides; i++ {
		theta := 2 * math.Pi * float64(i) / float64(nSides)
		pd.Points = append(pd.Points, v3.Vec{
			X: radius * math.Cos(theta),
			Y: radius * math.Sin(theta),
		})
		pd.Lines = append(pd.Lines, i)
	}
	return pd
}

// RotateZ returns a copy of the edge source rotated by the given angle
// (degrees) about the z axis. The topology is shared, not copied, since
// rotation does not touch it.
func (pd *PolyData) RotateZ(deg float64) *PolyData {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	out := &PolyData{
		Points: make([]v3.Vec, len(pd.Points)),
		Lines:  pd.Lines,
	}
	for i, p := range pd.Points {
		out.Points[i] = v3.Vec{
			X: p.X*cos - p.Y*sin,
			Y: p.X*sin + p.Y*cos,
			Z: p.Z,
		}
	}
	return out
}

// NewCube builds the edge source of an axis-aligned cube spanning
// [0,side]^3, with one quad loop per face. Adjacent faces name the same
// point pairs, so each geometric edge appears in exactly two loops with
// opposite orientation. This is the manually specified solid topology
// accepted by the 3D generation path: every loop bounds one plane surface
// and the six surfaces close one volume.
func NewCube(side float64) *PolyData {
	s := side
	points := []v3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: s, Y: 0, Z: 0},
		{X: s, Y: s, Z: 0},
		{X: 0, Y: s, Z: 0},
		{X: 0, Y: 0, Z: s},
		{X: s, Y: 0, Z: s},
		{X: s, Y: s, Z: s},
		{X: 0, Y: s, Z: s},
	}
	// Faces wound so that shared edges traverse in opposite directions.
	faces := [][]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // back
		{3, 0, 4, 7}, // left
	}
	pd := &PolyData{Points: points}
	for _, f := range faces {
		pd.Lines = append(pd.Lines, len(f))
		pd.Lines = append(pd.Lines, f...)
	}
	return pd
}

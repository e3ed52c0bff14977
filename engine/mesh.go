package engine

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/osanai/frontmesh/engine/delaunay"
	"github.com/osanai/frontmesh/grid"
)

// Mesh sizing and refinement knobs. Element edges come out near the local
// size hint h: curves split into ~length/h segments, interior lattices use
// h spacing, and triangles keep being split while their circumradius
// exceeds refineFactor*h.
const (
	refineFactor    = 0.75
	maxRefinePasses = 8
	// Lattice candidates closer than this (in units of h) to a boundary
	// node would make sliver elements; they are dropped.
	boundaryClearance = 0.6
)

type meshNode struct {
	pos  v3.Vec
	size float64
}

// meshModel is the synchronized side of the session: the geometry
// snapshot the mesher works from, plus the generated mesh. Entity slices
// are sorted by tag so generation and extraction order is reproducible.
type meshModel struct {
	points       []*geoPoint
	curves       []*geoCurve
	curveLoops   map[int]*geoCurveLoop
	surfaces     []*geoSurface
	surfaceLoops map[int]*geoSurfaceLoop
	volumes      []*geoVolume

	nodes      []meshNode
	pointNode  map[int]int   // point tag -> node id
	curveNodes map[int][]int // curve tag -> ordered node chain, endpoints included
	surfTris   map[int][][3]int
	volTets    map[int][][4]int

	generatedDim int
}

func newMeshModel() *meshModel {
	return &meshModel{}
}

// publish snapshots the staged geometry. Entities are immutable once
// staged, so a shallow copy of the slices is a true snapshot. Any
// previously generated mesh is invalidated.
func (m *meshModel) publish(g *geoModel) {
	m.points = append([]*geoPoint(nil), g.points...)
	m.curves = append([]*geoCurve(nil), g.curves...)
	m.surfaces = append([]*geoSurface(nil), g.surfaces...)
	m.volumes = append([]*geoVolume(nil), g.volumes...)
	sort.Slice(m.points, func(i, j int) bool { return m.points[i].tag < m.points[j].tag })
	sort.Slice(m.curves, func(i, j int) bool { return m.curves[i].tag < m.curves[j].tag })
	sort.Slice(m.surfaces, func(i, j int) bool { return m.surfaces[i].tag < m.surfaces[j].tag })
	sort.Slice(m.volumes, func(i, j int) bool { return m.volumes[i].tag < m.volumes[j].tag })

	m.curveLoops = make(map[int]*geoCurveLoop, len(g.curveLoops))
	for _, l := range g.curveLoops {
		m.curveLoops[l.tag] = l
	}
	m.surfaceLoops = make(map[int]*geoSurfaceLoop, len(g.surfaceLoops))
	for _, l := range g.surfaceLoops {
		m.surfaceLoops[l.tag] = l
	}

	m.resetMesh()
}

func (m *meshModel) resetMesh() {
	m.nodes = nil
	m.pointNode = map[int]int{}
	m.curveNodes = map[int][]int{}
	m.surfTris = map[int][][3]int{}
	m.volTets = map[int][][4]int{}
	m.generatedDim = 0
}

// Generate meshes the synchronized model up to the given dimension. Lower
// dimensions mesh first so shared curves and surfaces conform across the
// entities built on them.
func (s *Session) Generate(dim int) {
	s.checkLive()
	if dim < 1 || dim > 3 {
		fatalf("generate: dimension must be 1, 2 or 3, got %d", dim)
	}
	alg := s.options[OptMeshAlgorithm]
	if alg != AlgDelaunay && alg != AlgFrontalDelaunay {
		fatalf("unsupported Mesh.Algorithm %g", alg)
	}
	m := s.mesh
	m.resetMesh()
	m.meshPoints()
	m.meshCurves()
	if dim >= 2 {
		m.meshSurfaces(int(alg))
	}
	if dim >= 3 {
		m.meshVolumes()
	}
	m.generatedDim = dim
}

func (m *meshModel) addNode(pos v3.Vec, size float64) int {
	m.nodes = append(m.nodes, meshNode{pos: pos, size: size})
	return len(m.nodes) - 1
}

func (m *meshModel) meshPoints() {
	for _, p := range m.points {
		m.pointNode[p.tag] = m.addNode(v3.Vec{X: p.x, Y: p.y, Z: p.z}, p.size)
	}
}

// meshCurves subdivides every curve into segments no longer than the mean
// of its endpoint size hints. Interior nodes lie exactly on the segment,
// with sizes interpolated between the endpoints.
func (m *meshModel) meshCurves() {
	for _, c := range m.curves {
		na, nb := m.pointNode[c.a], m.pointNode[c.b]
		a, b := m.nodes[na], m.nodes[nb]
		length := b.pos.Sub(a.pos).Length()
		if length == 0 {
			fatalf("line %d has zero length", c.tag)
		}
		h := (a.size + b.size) / 2
		n := int(math.Round(length / h))
		if n < 1 {
			n = 1
		}
		chain := make([]int, 0, n+1)
		chain = append(chain, na)
		for i := 1; i < n; i++ {
			t := float64(i) / float64(n)
			pos := a.pos.MulScalar(1 - t).Add(b.pos.MulScalar(t))
			size := a.size*(1-t) + b.size*t
			chain = append(chain, m.addNode(pos, size))
		}
		chain = append(chain, nb)
		m.curveNodes[c.tag] = chain
	}
}

// loopRing resolves a curve loop into its closed node ring. The trailing
// node of each curve is the leading node of the next, so it is dropped;
// the ring wraps implicitly.
func (m *meshModel) loopRing(loopTag int) []int {
	l, ok := m.curveLoops[loopTag]
	if !ok {
		fatalf("unknown curve loop %d", loopTag)
	}
	var ring []int
	for _, signed := range l.curves {
		tag := signed
		if tag < 0 {
			tag = -tag
		}
		chain := m.curveNodes[tag]
		if signed < 0 {
			rev := make([]int, len(chain))
			for i, id := range chain {
				rev[len(chain)-1-i] = id
			}
			chain = rev
		}
		ring = append(ring, chain[:len(chain)-1]...)
	}
	return ring
}

func (m *meshModel) meshSurfaces(alg int) {
	for _, srf := range m.surfaces {
		m.meshSurface(srf, alg)
	}
}

func (m *meshModel) meshSurface(srf *geoSurface, alg int) {
	// The first loop is the outer boundary, the rest bound holes. The
	// even-odd inside test below treats them uniformly.
	rings := make([][]int, len(srf.loops))
	for i, lt := range srf.loops {
		rings[i] = m.loopRing(lt)
		if len(rings[i]) < 3 {
			fatalf("plane surface %d: loop %d has fewer than 3 nodes", srf.tag, lt)
		}
	}

	outer3 := m.ringCoords(rings[0])
	frame := newPlaneFrame(outer3)

	// Planarity gate: every boundary node of every ring must sit on the
	// fitted plane.
	scale := ringScale(outer3)
	var rings2 [][]delaunay.Vec2
	var boundary2 []delaunay.Vec2
	h := math.Inf(1)
	for _, ring := range rings {
		ring2 := make([]delaunay.Vec2, len(ring))
		for i, id := range ring {
			node := m.nodes[id]
			if math.Abs(frame.distance(node.pos)) > 1e-6*scale {
				fatalf("plane surface %d: boundary is not planar", srf.tag)
			}
			ring2[i] = frame.project(node.pos)
			if node.size < h {
				h = node.size
			}
		}
		rings2 = append(rings2, ring2)
		boundary2 = append(boundary2, ring2...)
	}

	lo, hi := bounds2(rings2[0])
	kernel := delaunay.New(lo, hi)

	// Kernel index -> global node id. Boundary nodes first, then interior.
	var kmap []int
	insertNode := func(id int) {
		k := kernel.Insert(frame.project(m.nodes[id].pos))
		if k == len(kmap) {
			kmap = append(kmap, id)
		}
	}
	insertInterior := func(p delaunay.Vec2) {
		k := kernel.Insert(p)
		if k == len(kmap) {
			kmap = append(kmap, m.addNode(frame.lift(p), h))
		}
	}

	for _, ring := range rings {
		for _, id := range ring {
			insertNode(id)
		}
	}

	interior := interiorLattice(rings2, boundary2, lo, hi, h, alg)
	if len(interior) == 0 {
		// Front collapse seed: any loop that is not already a single
		// triangle gets at least one interior vertex.
		if c, ok := ringCentroidInside(rings2); ok {
			interior = []delaunay.Vec2{c}
		}
	}
	for _, p := range interior {
		insertInterior(p)
	}

	// Size-driven refinement: split every triangle whose circumradius
	// exceeds the local target until the mesh settles or the pass budget
	// runs out.
	for pass := 0; pass < maxRefinePasses; pass++ {
		inserted := false
		for _, tri := range kernel.Triangles() {
			a, b, c := kernel.Point(tri[0]), kernel.Point(tri[1]), kernel.Point(tri[2])
			if !insideRings(rings2, triCentroid(a, b, c)) {
				continue
			}
			center, radius := delaunay.Circumcircle(a, b, c)
			if radius <= refineFactor*h || !insideRings(rings2, center) {
				continue
			}
			insertInterior(center)
			inserted = true
		}
		if !inserted {
			break
		}
	}

	var tris [][3]int
	for _, tri := range kernel.Triangles() {
		a, b, c := kernel.Point(tri[0]), kernel.Point(tri[1]), kernel.Point(tri[2])
		if !insideRings(rings2, triCentroid(a, b, c)) {
			continue
		}
		tris = append(tris, [3]int{kmap[tri[0]], kmap[tri[1]], kmap[tri[2]]})
	}
	if len(tris) == 0 {
		fatalf("plane surface %d: no interior triangles generated (self-intersecting or inverted boundary?)", srf.tag)
	}
	m.surfTris[srf.tag] = tris
}

func (m *meshModel) ringCoords(ring []int) []v3.Vec {
	coords := make([]v3.Vec, len(ring))
	for i, id := range ring {
		coords[i] = m.nodes[id].pos
	}
	return coords
}

func ringScale(ring []v3.Vec) float64 {
	lo, hi := ring[0], ring[0]
	for _, p := range ring[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return hi.Sub(lo).Length()
}

func bounds2(ring []delaunay.Vec2) (lo, hi delaunay.Vec2) {
	lo, hi = ring[0], ring[0]
	for _, p := range ring[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

func triCentroid(a, b, c delaunay.Vec2) delaunay.Vec2 {
	return delaunay.Vec2{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
}

// insideRings is the even-odd crossing test over every bounding ring, so
// holes punch out of the outer loop.
func insideRings(rings [][]delaunay.Vec2, p delaunay.Vec2) bool {
	crossings := 0
	for _, ring := range rings {
		for i, a := range ring {
			b := ring[(i+1)%len(ring)]
			if (a.Y > p.Y) == (b.Y > p.Y) {
				continue
			}
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if x > p.X {
				crossings++
			}
		}
	}
	return crossings%2 == 1
}

// interiorLattice generates candidate interior points on an h-spaced
// lattice: staggered rows (near-hexagonal packing) for Frontal-Delaunay,
// a square lattice for plain Delaunay. Candidates outside the rings or
// crowding a boundary node are dropped.
func interiorLattice(rings [][]delaunay.Vec2, boundary []delaunay.Vec2, lo, hi delaunay.Vec2, h float64, alg int) []delaunay.Vec2 {
	dy := h
	if alg == AlgFrontalDelaunay {
		dy = h * math.Sqrt(3) / 2
	}
	clear2 := boundaryClearance * boundaryClearance * h * h

	var out []delaunay.Vec2
	row := 0
	for y := lo.Y + dy/2; y < hi.Y; y += dy {
		xOffset := 0.0
		if alg == AlgFrontalDelaunay && row%2 == 1 {
			xOffset = h / 2
		}
		for x := lo.X + h/2 + xOffset; x < hi.X; x += h {
			p := delaunay.Vec2{X: x, Y: y}
			if !insideRings(rings, p) {
				continue
			}
			crowded := false
			for _, q := range boundary {
				if dist2v(p, q) < clear2 {
					crowded = true
					break
				}
			}
			if !crowded {
				out = append(out, p)
			}
		}
		row++
	}
	return out
}

func dist2v(a, b delaunay.Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// ringCentroidInside returns the outer ring's vertex centroid if it lies
// inside the bounded region.
func ringCentroidInside(rings [][]delaunay.Vec2) (delaunay.Vec2, bool) {
	var c delaunay.Vec2
	for _, p := range rings[0] {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(rings[0]))
	c.Y /= float64(len(rings[0]))
	if insideRings(rings, c) {
		return c, true
	}
	return delaunay.Vec2{}, false
}

func (m *meshModel) meshVolumes() {
	for _, vol := range m.volumes {
		m.meshVolume(vol)
	}
}

func (m *meshModel) meshVolume(vol *geoVolume) {
	// Only the outer shell bounds the meshed region; volumes with cavity
	// shells are not supported.
	if len(vol.shells) > 1 {
		fatalf("volume %d: cavity shells are not supported", vol.tag)
	}
	shell := m.surfaceLoops[vol.shells[0]]

	// The shell triangles, ordered by surface tag, give both the inside
	// test and the boundary nodes of the volume mesh.
	var shellTris [][3]int
	surfTags := append([]int(nil), shell.surfaces...)
	sort.Ints(surfTags)
	for _, st := range surfTags {
		tris, ok := m.surfTris[st]
		if !ok {
			fatalf("volume %d: surface %d has no mesh (generate dimension 2 first)", vol.tag, st)
		}
		shellTris = append(shellTris, tris...)
	}

	var shellNodes []int
	seen := map[int]bool{}
	for _, tri := range shellTris {
		for _, id := range tri {
			if !seen[id] {
				seen[id] = true
				shellNodes = append(shellNodes, id)
			}
		}
	}

	lo, hi := m.nodes[shellNodes[0]].pos, m.nodes[shellNodes[0]].pos
	h := math.Inf(1)
	for _, id := range shellNodes {
		n := m.nodes[id]
		lo = lo.Min(n.pos)
		hi = hi.Max(n.pos)
		if n.size < h {
			h = n.size
		}
	}

	inside := func(p v3.Vec) bool {
		return m.insideShell(shellTris, p)
	}

	kernel := delaunay.NewTet(lo, hi)
	var kmap []int
	insertNode := func(id int) {
		k := kernel.Insert(m.nodes[id].pos)
		if k == len(kmap) {
			kmap = append(kmap, id)
		}
	}
	insertInterior := func(p v3.Vec) {
		k := kernel.Insert(p)
		if k == len(kmap) {
			kmap = append(kmap, m.addNode(p, h))
		}
	}

	for _, id := range shellNodes {
		insertNode(id)
	}

	interior := m.volumeLattice(shellTris, shellNodes, lo, hi, h)
	if len(interior) == 0 {
		c := lo.Add(hi).MulScalar(0.5)
		if inside(c) {
			interior = []v3.Vec{c}
		}
	}
	for _, p := range interior {
		insertInterior(p)
	}

	for pass := 0; pass < maxRefinePasses; pass++ {
		inserted := false
		for _, tet := range kernel.Tetrahedra() {
			a, b, c, d := kernel.Point(tet[0]), kernel.Point(tet[1]), kernel.Point(tet[2]), kernel.Point(tet[3])
			if !inside(tetCentroid(a, b, c, d)) {
				continue
			}
			center, radius := delaunay.Circumsphere(a, b, c, d)
			if radius <= refineFactor*h || !inside(center) {
				continue
			}
			insertInterior(center)
			inserted = true
		}
		if !inserted {
			break
		}
	}

	var tets [][4]int
	for _, tet := range kernel.Tetrahedra() {
		a, b, c, d := kernel.Point(tet[0]), kernel.Point(tet[1]), kernel.Point(tet[2]), kernel.Point(tet[3])
		if !inside(tetCentroid(a, b, c, d)) {
			continue
		}
		tets = append(tets, [4]int{kmap[tet[0]], kmap[tet[1]], kmap[tet[2]], kmap[tet[3]]})
	}
	if len(tets) == 0 {
		fatalf("volume %d: no interior tetrahedra generated (open or inverted shell?)", vol.tag)
	}
	m.volTets[vol.tag] = tets
}

func tetCentroid(a, b, c, d v3.Vec) v3.Vec {
	return a.Add(b).Add(c).Add(d).MulScalar(0.25)
}

// insideShell counts ray crossings against the shell triangles. The ray
// direction is a fixed oblique vector so lattice points never shoot rays
// through shell edges of axis-aligned shapes.
func (m *meshModel) insideShell(shellTris [][3]int, p v3.Vec) bool {
	dir := v3.Vec{X: 0.577350269, Y: 0.267261242, Z: 0.771516750}.Normalize()
	crossings := 0
	for _, tri := range shellTris {
		if rayHitsTriangle(p, dir, m.nodes[tri[0]].pos, m.nodes[tri[1]].pos, m.nodes[tri[2]].pos) {
			crossings++
		}
	}
	return crossings%2 == 1
}

// rayHitsTriangle is the Moller-Trumbore intersection test, forward hits
// only.
func rayHitsTriangle(orig, dir, a, b, c v3.Vec) bool {
	e1, e2 := b.Sub(a), c.Sub(a)
	pv := dir.Cross(e2)
	det := e1.Dot(pv)
	if math.Abs(det) < 1e-12 {
		return false
	}
	inv := 1 / det
	tv := orig.Sub(a)
	u := tv.Dot(pv) * inv
	if u < 0 || u > 1 {
		return false
	}
	qv := tv.Cross(e1)
	v := dir.Dot(qv) * inv
	if v < 0 || u+v > 1 {
		return false
	}
	return e2.Dot(qv)*inv > 1e-12
}

// volumeLattice generates h-spaced interior candidates, dropping points
// outside the shell or crowding a shell node.
func (m *meshModel) volumeLattice(shellTris [][3]int, shellNodes []int, lo, hi v3.Vec, h float64) []v3.Vec {
	clear2 := boundaryClearance * boundaryClearance * h * h
	var out []v3.Vec
	for z := lo.Z + h/2; z < hi.Z; z += h {
		for y := lo.Y + h/2; y < hi.Y; y += h {
			for x := lo.X + h/2; x < hi.X; x += h {
				p := v3.Vec{X: x, Y: y, Z: z}
				if !m.insideShell(shellTris, p) {
					continue
				}
				crowded := false
				for _, id := range shellNodes {
					d := p.Sub(m.nodes[id].pos)
					if d.Dot(d) < clear2 {
						crowded = true
						break
					}
				}
				if !crowded {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// Mesh extracts the generated mesh in memory: one line cell per curve
// segment, the surface triangles, and (dimension 3) the volume tetrahedra.
// Auxiliary arrays carry the per-node size hints and per-cell owning
// entity tags.
func (s *Session) Mesh() *grid.UnstructuredGrid {
	s.checkLive()
	m := s.mesh

	g := &grid.UnstructuredGrid{
		Points: make([]v3.Vec, len(m.nodes)),
	}
	sizes := make([]float64, len(m.nodes))
	for i, n := range m.nodes {
		g.Points[i] = n.pos
		sizes[i] = n.size
	}

	var tags []float64
	addCell := func(t grid.CellType, nodes []int, entityTag int) {
		g.Cells = append(g.Cells, grid.Cell{Type: t, Nodes: nodes})
		tags = append(tags, float64(entityTag))
	}

	for _, c := range m.curves {
		chain := m.curveNodes[c.tag]
		for i := 0; i+1 < len(chain); i++ {
			addCell(grid.CellLine, []int{chain[i], chain[i+1]}, c.tag)
		}
	}
	for _, srf := range m.surfaces {
		for _, tri := range m.surfTris[srf.tag] {
			addCell(grid.CellTriangle, []int{tri[0], tri[1], tri[2]}, srf.tag)
		}
	}
	for _, vol := range m.volumes {
		for _, tet := range m.volTets[vol.tag] {
			addCell(grid.CellTetra, []int{tet[0], tet[1], tet[2], tet[3]}, vol.tag)
		}
	}

	g.PointData = map[string][]float64{"node-size": sizes}
	g.CellData = map[string][]float64{"entity-tag": tags}
	return g
}

// WriteMesh is the file-based extraction bridge: the current mesh written
// as MSH 2.2 ASCII.
func (s *Session) WriteMesh(path string) {
	if err := grid.WriteMSH(path, s.Mesh()); err != nil {
		fatalf("write mesh: %v", err)
	}
}

package engine

// Staged geometry. Entities added here are invisible to the mesher until
// Synchronize publishes them. Tags are positive and unique per entity
// kind; a tag < 1 asks the engine to pick the next free one. Referential
// integrity (does this line's endpoint exist, does this loop close) is
// checked at synchronize time, not at add time, matching the deferred
// validation of the mirrored API.

type geoPoint struct {
	tag     int
	x, y, z float64
	size    float64
}

// geoCurve is a straight line between two point tags.
type geoCurve struct {
	tag  int
	a, b int
}

// geoCurveLoop is a closed chain of curve tags. A negative entry traverses
// that curve from end to start.
type geoCurveLoop struct {
	tag    int
	curves []int
}

// geoSurface is a plane surface bounded by curve loops: the first loop is
// the outer boundary, any further loops are holes.
type geoSurface struct {
	tag   int
	loops []int
}

// geoSurfaceLoop is a closed shell of surface tags.
type geoSurfaceLoop struct {
	tag      int
	surfaces []int
}

// geoVolume is bounded by surface loops; only the first (outer) shell is
// meshed, holes are not supported.
type geoVolume struct {
	tag    int
	shells []int
}

type geoModel struct {
	points       []*geoPoint
	curves       []*geoCurve
	curveLoops   []*geoCurveLoop
	surfaces     []*geoSurface
	surfaceLoops []*geoSurfaceLoop
	volumes      []*geoVolume

	pointTags       map[int]*geoPoint
	curveTags       map[int]*geoCurve
	curveLoopTags   map[int]*geoCurveLoop
	surfaceTags     map[int]*geoSurface
	surfaceLoopTags map[int]*geoSurfaceLoop
	volumeTags      map[int]*geoVolume

	// Highest tag seen per entity kind, for auto-tagging.
	maxTag [6]int
}

// Entity kinds, indexing geoModel.maxTag.
const (
	kindPoint = iota
	kindCurve
	kindCurveLoop
	kindSurface
	kindSurfaceLoop
	kindVolume
)

func newGeoModel() *geoModel {
	return &geoModel{
		pointTags:       map[int]*geoPoint{},
		curveTags:       map[int]*geoCurve{},
		curveLoopTags:   map[int]*geoCurveLoop{},
		surfaceTags:     map[int]*geoSurface{},
		surfaceLoopTags: map[int]*geoSurfaceLoop{},
		volumeTags:      map[int]*geoVolume{},
	}
}

// resolveTag picks the next free tag for the entity kind when the caller
// passed tag < 1, and records the tag as used either way.
func (g *geoModel) resolveTag(kind, tag int) int {
	if tag < 1 {
		tag = g.maxTag[kind] + 1
	}
	if tag > g.maxTag[kind] {
		g.maxTag[kind] = tag
	}
	return tag
}

// AddPoint stages a point entity with a local mesh size hint. Returns the
// tag actually used.
func (s *Session) AddPoint(x, y, z, size float64, tag int) int {
	s.checkLive()
	if size <= 0 {
		fatalf("point tag %d: mesh size must be positive, got %g", tag, size)
	}
	g := s.geo
	tag = g.resolveTag(kindPoint, tag)
	if _, ok := g.pointTags[tag]; ok {
		fatalf("point tag %d already in use", tag)
	}
	p := &geoPoint{tag: tag, x: x, y: y, z: z, size: size}
	g.points = append(g.points, p)
	g.pointTags[tag] = p
	return tag
}

// AddLine stages a straight line between two point tags.
func (s *Session) AddLine(a, b, tag int) int {
	s.checkLive()
	if a == b {
		fatalf("line tag %d: endpoints are the same point %d", tag, a)
	}
	g := s.geo
	tag = g.resolveTag(kindCurve, tag)
	if _, ok := g.curveTags[tag]; ok {
		fatalf("line tag %d already in use", tag)
	}
	c := &geoCurve{tag: tag, a: a, b: b}
	g.curves = append(g.curves, c)
	g.curveTags[tag] = c
	return tag
}

// AddCurveLoop stages a closed chain of signed curve tags.
func (s *Session) AddCurveLoop(curves []int, tag int) int {
	s.checkLive()
	if len(curves) < 1 {
		fatalf("curve loop tag %d: empty loop", tag)
	}
	g := s.geo
	tag = g.resolveTag(kindCurveLoop, tag)
	if _, ok := g.curveLoopTags[tag]; ok {
		fatalf("curve loop tag %d already in use", tag)
	}
	l := &geoCurveLoop{tag: tag, curves: append([]int(nil), curves...)}
	g.curveLoops = append(g.curveLoops, l)
	g.curveLoopTags[tag] = l
	return tag
}

// AddPlaneSurface stages a plane surface bounded by curve loop tags.
func (s *Session) AddPlaneSurface(loops []int, tag int) int {
	s.checkLive()
	if len(loops) < 1 {
		fatalf("plane surface tag %d: no bounding loop", tag)
	}
	g := s.geo
	tag = g.resolveTag(kindSurface, tag)
	if _, ok := g.surfaceTags[tag]; ok {
		fatalf("plane surface tag %d already in use", tag)
	}
	srf := &geoSurface{tag: tag, loops: append([]int(nil), loops...)}
	g.surfaces = append(g.surfaces, srf)
	g.surfaceTags[tag] = srf
	return tag
}

// AddSurfaceLoop stages a closed shell of surface tags.
func (s *Session) AddSurfaceLoop(surfaces []int, tag int) int {
	s.checkLive()
	if len(surfaces) < 1 {
		fatalf("surface loop tag %d: empty shell", tag)
	}
	g := s.geo
	tag = g.resolveTag(kindSurfaceLoop, tag)
	if _, ok := g.surfaceLoopTags[tag]; ok {
		fatalf("surface loop tag %d already in use", tag)
	}
	l := &geoSurfaceLoop{tag: tag, surfaces: append([]int(nil), surfaces...)}
	g.surfaceLoops = append(g.surfaceLoops, l)
	g.surfaceLoopTags[tag] = l
	return tag
}

// AddVolume stages a volume bounded by surface loop tags.
func (s *Session) AddVolume(shells []int, tag int) int {
	s.checkLive()
	if len(shells) < 1 {
		fatalf("volume tag %d: no bounding shell", tag)
	}
	g := s.geo
	tag = g.resolveTag(kindVolume, tag)
	if _, ok := g.volumeTags[tag]; ok {
		fatalf("volume tag %d already in use", tag)
	}
	v := &geoVolume{tag: tag, shells: append([]int(nil), shells...)}
	g.volumes = append(g.volumes, v)
	g.volumeTags[tag] = v
	return tag
}

// Synchronize validates the staged geometry and publishes it to the
// mesher. A model that fails validation is left unpublished.
func (s *Session) Synchronize() {
	s.checkLive()
	g := s.geo
	for _, c := range g.curves {
		if _, ok := g.pointTags[c.a]; !ok {
			fatalf("line %d references unknown point %d", c.tag, c.a)
		}
		if _, ok := g.pointTags[c.b]; !ok {
			fatalf("line %d references unknown point %d", c.tag, c.b)
		}
	}
	for _, l := range g.curveLoops {
		g.validateCurveLoop(l)
	}
	for _, srf := range g.surfaces {
		for _, lt := range srf.loops {
			if _, ok := g.curveLoopTags[lt]; !ok {
				fatalf("plane surface %d references unknown curve loop %d", srf.tag, lt)
			}
		}
	}
	for _, sl := range g.surfaceLoops {
		for _, st := range sl.surfaces {
			if _, ok := g.surfaceTags[st]; !ok {
				fatalf("surface loop %d references unknown surface %d", sl.tag, st)
			}
		}
	}
	for _, v := range g.volumes {
		for _, sh := range v.shells {
			if _, ok := g.surfaceLoopTags[sh]; !ok {
				fatalf("volume %d references unknown surface loop %d", v.tag, sh)
			}
		}
	}
	s.mesh.publish(g)
}

// validateCurveLoop walks the signed chain and checks that consecutive
// curves connect end to start and that the chain closes.
func (g *geoModel) validateCurveLoop(l *geoCurveLoop) {
	ends := func(signed int) (from, to int) {
		tag := signed
		if tag < 0 {
			tag = -tag
		}
		c, ok := g.curveTags[tag]
		if !ok {
			fatalf("curve loop %d references unknown curve %d", l.tag, tag)
		}
		if signed < 0 {
			return c.b, c.a
		}
		return c.a, c.b
	}
	first, prev := 0, 0
	for i, signed := range l.curves {
		if signed == 0 {
			fatalf("curve loop %d has a zero curve tag", l.tag)
		}
		from, to := ends(signed)
		if i == 0 {
			first = from
		} else if from != prev {
			fatalf("curve loop %d is not a chain: curve %d starts at point %d, want %d", l.tag, signed, from, prev)
		}
		prev = to
	}
	if prev != first {
		fatalf("curve loop %d does not close: ends at point %d, started at %d", l.tag, prev, first)
	}
}

package engine

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/osanai/frontmesh/dbg"
)

// Debug dumps of the staged model. Not used by generation itself.

func (p *geoPoint) String() string {
	return fmt.Sprintf("%s point %d (%g, %g, %g) h=%g", dbg.Name(p), p.tag, p.x, p.y, p.z, p.size)
}

func (c *geoCurve) String() string {
	return fmt.Sprintf("%s line %d: %d -> %d", dbg.Name(c), c.tag, c.a, c.b)
}

func (l *geoCurveLoop) String() string {
	return fmt.Sprintf("%s loop %d %v", dbg.Name(l), l.tag, l.curves)
}

func (srf *geoSurface) DbgName() string {
	// Surfaces with holes are the interesting ones when a mesh comes out
	// wrong; color them red.
	name := dbg.Name(srf)
	if len(srf.loops) > 1 {
		return aurora.Red(name).String()
	}
	return aurora.Green(name).String()
}

// DbgDump renders the staged model, one entity per line.
func (s *Session) DbgDump() string {
	s.checkLive()
	g := s.geo
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", aurora.Cyan("geo model").String())
	for _, p := range g.points {
		fmt.Fprintf(&b, "  %v\n", p)
	}
	for _, c := range g.curves {
		fmt.Fprintf(&b, "  %v\n", c)
	}
	for _, l := range g.curveLoops {
		fmt.Fprintf(&b, "  %v\n", l)
	}
	for _, srf := range g.surfaces {
		fmt.Fprintf(&b, "  %s surface %d loops %v\n", srf.DbgName(), srf.tag, srf.loops)
	}
	for _, sl := range g.surfaceLoops {
		fmt.Fprintf(&b, "  %s shell %d surfaces %v\n", dbg.Name(sl), sl.tag, sl.surfaces)
	}
	for _, v := range g.volumes {
		fmt.Fprintf(&b, "  %s volume %d shells %v\n", dbg.Name(v), v.tag, v.shells)
	}
	return b.String()
}

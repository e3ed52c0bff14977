// Package frontmesh converts boundary edge sources into unstructured
// meshes.
//
// An edge source is an ordered point set plus closed loops of connecting
// segments (grid.PolyData). The package marshals it into the meshing
// engine's entity model, asks the engine to generate, and hands the
// result back as a grid.UnstructuredGrid. There is no meshing logic here:
// the engine does the triangulation, this package does the bookkeeping
// around one engine session per call.
package frontmesh

import (
	"os"

	"github.com/pkg/errors"

	"github.com/osanai/frontmesh/engine"
	"github.com/osanai/frontmesh/grid"
)

// Mesh.Algorithm identifiers accepted by the engine.
const (
	AlgDelaunay        = engine.AlgDelaunay
	AlgFrontalDelaunay = engine.AlgFrontalDelaunay
)

// Config selects how GenerateMesh drives the engine.
type Config struct {
	// TargetSize is the desired local edge length. Values <= 0 resolve to
	// the largest axis-aligned extent of the edge source's bounding box,
	// giving element sizes proportional to the overall shape scale.
	TargetSize float64

	// Algorithm is the engine's Mesh.Algorithm option; 0 means
	// AlgFrontalDelaunay.
	Algorithm int

	// Dimension is 2 for a surface mesh or 3 for a volume mesh; 0 means 2.
	Dimension int

	// FileBridge extracts the mesh through a call-scoped temporary file
	// instead of the in-memory bridge. The result is identical; this path
	// exists for environments that can only observe the engine's file
	// output.
	FileBridge bool
}

// FrontalDelaunay2D meshes the region bounded by the edge source's loops
// with the Frontal-Delaunay algorithm. The loops must be closed and
// non-self-intersecting; the first loop bounds the surface and any
// further loops cut holes. A targetSize <= 0 selects the default (see
// Config.TargetSize).
func FrontalDelaunay2D(edgeSource *grid.PolyData, targetSize float64) (*grid.UnstructuredGrid, error) {
	return GenerateMesh(edgeSource, Config{
		TargetSize: targetSize,
		Algorithm:  AlgFrontalDelaunay,
		Dimension:  2,
	})
}

// Delaunay3D meshes the solid bounded by the edge source's loops. Every
// loop bounds one plane surface and the surfaces together must close a
// single volume; supplying that composite topology is the caller's
// responsibility (see grid.NewCube for the canonical example). The
// adapter does not infer solid topology from an arbitrary point cloud.
func Delaunay3D(edgeSource *grid.PolyData, targetSize float64) (*grid.UnstructuredGrid, error) {
	return GenerateMesh(edgeSource, Config{
		TargetSize: targetSize,
		Algorithm:  AlgFrontalDelaunay,
		Dimension:  3,
	})
}

// GenerateMesh translates the edge source into engine entities, generates
// a mesh of the configured dimension, and extracts it. The engine session
// is call-scoped: it starts fresh on entry and is cleared and finalized on
// every exit path, so no engine state leaks between calls.
func GenerateMesh(edgeSource *grid.PolyData, cfg Config) (mesh *grid.UnstructuredGrid, err error) {
	if edgeSource == nil || len(edgeSource.Points) == 0 {
		return nil, errors.New("edge source has no points")
	}
	loops, err := edgeSource.Loops()
	if err != nil {
		return nil, errors.Wrap(err, "decode edge source topology")
	}
	if len(loops) == 0 {
		return nil, errors.New("edge source has no loops")
	}

	dim := cfg.Dimension
	if dim == 0 {
		dim = 2
	}
	if dim != 2 && dim != 3 {
		return nil, errors.Errorf("dimension must be 2 or 3, got %d", dim)
	}
	alg := cfg.Algorithm
	if alg == 0 {
		alg = AlgFrontalDelaunay
	}
	size := resolveTargetSize(edgeSource, cfg.TargetSize)
	if size <= 0 {
		return nil, errors.New("edge source bounding box is degenerate; pass an explicit target size")
	}

	ses := engine.Initialize()
	defer func() {
		ses.Clear()
		ses.Finalize()
	}()
	defer func() {
		if recoveredErr := engine.HandlePanicRecover(recover()); recoveredErr != nil {
			mesh, err = nil, recoveredErr
		}
	}()

	ses.SetNumber(engine.OptMeshAlgorithm, float64(alg))

	for i, p := range edgeSource.Points {
		ses.AddPoint(p.X, p.Y, p.Z, size, engineTag(i))
	}
	switch dim {
	case 2:
		buildPlanar(ses, loops)
	case 3:
		buildSolid(ses, loops)
	}

	ses.Synchronize()
	ses.Generate(dim)

	if cfg.FileBridge {
		mesh, err = extractViaFile(ses)
		if err != nil {
			return nil, err
		}
	} else {
		mesh = ses.Mesh()
	}
	mesh.ClearData()
	return mesh, nil
}

// resolveTargetSize applies the default-size rule: the largest bounding
// box extent of the edge source.
func resolveTargetSize(edgeSource *grid.PolyData, targetSize float64) float64 {
	if targetSize > 0 {
		return targetSize
	}
	return edgeSource.Bounds().MaxExtent()
}

// buildPlanar registers one line per consecutive loop pair, line tags
// 1..edgeCount in traversal order, then one curve loop per input loop and
// a single plane surface bounded by all of them.
func buildPlanar(ses *engine.Session, loops [][]int) {
	lineTag := 0
	var loopTags []int
	for li, loop := range loops {
		var lineTags []int
		for i := range loop {
			a, b := loop[i], loop[(i+1)%len(loop)]
			lineTag++
			lineTags = append(lineTags, ses.AddLine(engineTag(a), engineTag(b), lineTag))
		}
		loopTags = append(loopTags, ses.AddCurveLoop(lineTags, li+1))
	}
	ses.AddPlaneSurface(loopTags, 1)
}

// buildSolid registers one plane surface per loop and closes them all
// into a single volume. Geometric edges shared between two loops become
// one line entity, reused with negative orientation by the second loop,
// so the meshed boundary conforms across faces.
func buildSolid(ses *engine.Session, loops [][]int) {
	type edgeKey struct{ lo, hi int }
	lineTags := map[edgeKey]int{}
	lineDir := map[edgeKey][2]int{}
	nextLine := 0

	var surfaceTags []int
	for li, loop := range loops {
		var chain []int
		for i := range loop {
			a, b := loop[i], loop[(i+1)%len(loop)]
			key := edgeKey{a, b}
			if a > b {
				key = edgeKey{b, a}
			}
			tag, ok := lineTags[key]
			if !ok {
				nextLine++
				tag = ses.AddLine(engineTag(a), engineTag(b), nextLine)
				lineTags[key] = tag
				lineDir[key] = [2]int{a, b}
			}
			if lineDir[key] == [2]int{a, b} {
				chain = append(chain, tag)
			} else {
				chain = append(chain, -tag)
			}
		}
		loopTag := ses.AddCurveLoop(chain, li+1)
		surfaceTags = append(surfaceTags, ses.AddPlaneSurface([]int{loopTag}, li+1))
	}
	shell := ses.AddSurfaceLoop(surfaceTags, 1)
	ses.AddVolume([]int{shell}, 1)
}

// extractViaFile is the temporary-file bridge: the engine writes its mesh
// to a scoped file which is read back and removed before returning.
func extractViaFile(ses *engine.Session) (*grid.UnstructuredGrid, error) {
	f, err := os.CreateTemp("", "frontmesh-*.msh")
	if err != nil {
		return nil, errors.Wrap(err, "create bridge file")
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	ses.WriteMesh(path)
	return grid.ReadMSH(path)
}

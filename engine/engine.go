// Package engine is a constrained Delaunay meshing engine with a
// session-scoped model. Callers stage geometric entities (points, lines,
// curve loops, plane surfaces, surface loops, volumes), synchronize them
// into the meshable model, generate a mesh up to a requested dimension,
// and extract the result either in memory or through a mesh file.
//
// The engine keeps one current model per process, like the external
// meshers whose API it mirrors. Initialize acquires a process-wide lock
// that Finalize releases, so at most one session is ever live; a second
// Initialize blocks instead of clobbering the in-flight model.
package engine

import "sync"

var modelMu sync.Mutex

// Option names understood by SetNumber.
const OptMeshAlgorithm = "Mesh.Algorithm"

// Mesh.Algorithm values.
const (
	AlgDelaunay        = 5
	AlgFrontalDelaunay = 6
)

// Session is the engine's transient model state for one generation call.
// It is not safe for concurrent use; the package lock already forces
// callers to serialize whole sessions.
type Session struct {
	finalized bool
	options   map[string]float64
	geo       *geoModel
	mesh      *meshModel
}

// Initialize starts a fresh session, blocking until any live session
// finalizes.
func Initialize() *Session {
	modelMu.Lock()
	return &Session{
		options: map[string]float64{OptMeshAlgorithm: AlgFrontalDelaunay},
		geo:     newGeoModel(),
		mesh:    newMeshModel(),
	}
}

func (s *Session) checkLive() {
	if s.finalized {
		fatalf("session used after finalize")
	}
}

// SetNumber sets a numeric option. Unknown option names are rejected.
func (s *Session) SetNumber(name string, value float64) {
	s.checkLive()
	if name != OptMeshAlgorithm {
		fatalf("unknown option %q", name)
	}
	s.options[name] = value
}

// Clear resets the model to its just-initialized state. The session stays
// live.
func (s *Session) Clear() {
	if s.finalized {
		return
	}
	s.geo = newGeoModel()
	s.mesh = newMeshModel()
}

// Finalize ends the session and releases the process-wide model lock.
// Calling it twice is harmless; every other use after finalize is an
// error.
func (s *Session) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true
	s.geo = nil
	s.mesh = nil
	modelMu.Unlock()
}

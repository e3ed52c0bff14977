package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catchEngine runs fn and converts an engine panic into an error, the way
// the adapter boundary does.
func catchEngine(fn func()) (err error) {
	defer func() {
		if recoveredErr := HandlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	fn()
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	ses := Initialize()
	ses.AddPoint(0, 0, 0, 1, 1)
	ses.Clear()
	ses.Finalize()

	// Finalize twice is harmless.
	ses.Finalize()

	err := catchEngine(func() { ses.AddPoint(0, 0, 0, 1, 1) })
	assert.EqualError(t, err, "session used after finalize")
}

func TestSessionLockSerializesCalls(t *testing.T) {
	ses := Initialize()

	second := make(chan *Session)
	go func() {
		second <- Initialize()
	}()

	select {
	case <-second:
		t.Fatal("second Initialize did not block on the live session")
	case <-time.After(50 * time.Millisecond):
	}

	ses.Finalize()
	other := <-second
	other.Finalize()
}

func TestSetNumber(t *testing.T) {
	ses := Initialize()
	defer ses.Finalize()

	ses.SetNumber(OptMeshAlgorithm, AlgDelaunay)

	err := catchEngine(func() { ses.SetNumber("Mesh.Bogus", 1) })
	assert.EqualError(t, err, `unknown option "Mesh.Bogus"`)
}

func TestClearResetsModel(t *testing.T) {
	ses := Initialize()
	defer ses.Finalize()

	buildUnitSquare(ses)
	ses.Synchronize()
	ses.Generate(2)
	require.Greater(t, ses.Mesh().NumPoints(), 0)

	ses.Clear()
	assert.Equal(t, 0, ses.Mesh().NumPoints())
	assert.Equal(t, 0, ses.Mesh().NumCells())

	// The cleared session accepts the same tags again.
	buildUnitSquare(ses)
	ses.Synchronize()
	ses.Generate(2)
	assert.Greater(t, ses.Mesh().NumCells(), 0)
}

func TestGenerateValidatesArguments(t *testing.T) {
	ses := Initialize()
	defer ses.Finalize()

	err := catchEngine(func() { ses.Generate(4) })
	assert.Error(t, err)

	ses.SetNumber(OptMeshAlgorithm, 99)
	err = catchEngine(func() { ses.Generate(2) })
	assert.Error(t, err)
}

func TestDbgDump(t *testing.T) {
	ses := Initialize()
	defer ses.Finalize()

	buildUnitSquare(ses)
	dump := ses.DbgDump()
	assert.Contains(t, dump, "point 1")
	assert.Contains(t, dump, "surface 1")
}

package grid

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSTL(t *testing.T) {
	g := &UnstructuredGrid{
		Points: []v3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Cells: []Cell{
			{Type: CellLine, Nodes: []int{0, 1}},
			{Type: CellTriangle, Nodes: []int{0, 1, 2}},
			{Type: CellTriangle, Nodes: []int{0, 2, 3}},
		},
	}

	path := filepath.Join(t.TempDir(), "mesh.stl")
	require.NoError(t, SaveSTL(path, g))

	// Binary STL: 80-byte header, then the triangle count. Line cells
	// must not be exported.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 84)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[80:84]))
}

func TestSaveSTLRejectsLineOnlyGrid(t *testing.T) {
	g := &UnstructuredGrid{
		Points: []v3.Vec{{}, {X: 1}},
		Cells:  []Cell{{Type: CellLine, Nodes: []int{0, 1}}},
	}
	err := SaveSTL(filepath.Join(t.TempDir(), "empty.stl"), g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no triangle cells")
}

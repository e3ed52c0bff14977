package grid

import (
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSHRoundTrip(t *testing.T) {
	g := &UnstructuredGrid{
		Points: []v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1.5, Y: 0, Z: 0},
			{X: 0, Y: 2.25, Z: 0},
			{X: 0, Y: 0, Z: 0.125},
		},
		Cells: []Cell{
			{Type: CellLine, Nodes: []int{0, 1}},
			{Type: CellTriangle, Nodes: []int{0, 1, 2}},
			{Type: CellTetra, Nodes: []int{0, 1, 2, 3}},
		},
		CellData: map[string][]float64{
			"entity-tag": {3, 1, 1},
		},
	}

	path := filepath.Join(t.TempDir(), "mesh.msh")
	require.NoError(t, WriteMSH(path, g))

	back, err := ReadMSH(path)
	require.NoError(t, err)

	assert.Equal(t, g.Points, back.Points)
	assert.Equal(t, g.Cells, back.Cells)
	assert.Equal(t, g.CellData["entity-tag"], back.CellData["entity-tag"])
}

func TestWriteMSHWithoutTags(t *testing.T) {
	g := &UnstructuredGrid{
		Points: []v3.Vec{{}, {X: 1}},
		Cells:  []Cell{{Type: CellLine, Nodes: []int{0, 1}}},
	}
	path := filepath.Join(t.TempDir(), "plain.msh")
	require.NoError(t, WriteMSH(path, g))

	back, err := ReadMSH(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, back.CellData["entity-tag"])
}

func TestReadMSHErrors(t *testing.T) {
	write := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), "bad.msh")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadMSH(filepath.Join(t.TempDir(), "nope.msh"))
		assert.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := ReadMSH(write(t, "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported msh version")
	})

	t.Run("bad node reference", func(t *testing.T) {
		content := "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n" +
			"$Nodes\n1\n1 0 0 0\n$EndNodes\n" +
			"$Elements\n1\n1 1 2 0 1 1 9\n$EndElements\n"
		_, err := ReadMSH(write(t, content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad node reference")
	})

	t.Run("unsupported element type", func(t *testing.T) {
		content := "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n" +
			"$Nodes\n1\n1 0 0 0\n$EndNodes\n" +
			"$Elements\n1\n1 15 2 0 1 1\n$EndElements\n"
		_, err := ReadMSH(write(t, content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported element type")
	})

	t.Run("truncated nodes", func(t *testing.T) {
		content := "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n3\n1 0 0 0\n"
		_, err := ReadMSH(write(t, content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected end")
	})
}

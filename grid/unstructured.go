package grid

import v3 "github.com/deadsy/sdfx/vec/v3"

// CellType identifies the connectivity of one mesh cell.
type CellType int

const (
	CellLine     CellType = 1
	CellTriangle CellType = 2
	CellTetra    CellType = 4
)

// NumNodes returns the node count of the cell type, or 0 for an unknown
// type.
func (t CellType) NumNodes() int {
	switch t {
	case CellLine:
		return 2
	case CellTriangle:
		return 3
	case CellTetra:
		return 4
	}
	return 0
}

func (t CellType) String() string {
	switch t {
	case CellLine:
		return "line"
	case CellTriangle:
		return "triangle"
	case CellTetra:
		return "tetra"
	}
	return "unknown"
}

// Cell is one mesh cell. Nodes index the grid's point array.
type Cell struct {
	Type  CellType
	Nodes []int
}

// UnstructuredGrid holds a generated mesh: every vertex the mesher
// produced (boundary and interior) plus the cells connecting them.
// PointData and CellData carry auxiliary per-point/per-cell attributes;
// raw geometry consumers strip them with ClearData.
type UnstructuredGrid struct {
	Points []v3.Vec
	Cells  []Cell

	PointData map[string][]float64
	CellData  map[string][]float64
}

func (g *UnstructuredGrid) NumPoints() int { return len(g.Points) }

func (g *UnstructuredGrid) NumCells() int { return len(g.Cells) }

// NumCellsOfType counts the cells with the given type.
func (g *UnstructuredGrid) NumCellsOfType(t CellType) int {
	n := 0
	for _, c := range g.Cells {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box of the mesh points.
func (g *UnstructuredGrid) Bounds() Bounds {
	pd := PolyData{Points: g.Points}
	return pd.Bounds()
}

// ClearData drops all auxiliary point and cell attributes, leaving only
// raw geometry and connectivity.
func (g *UnstructuredGrid) ClearData() {
	g.PointData = nil
	g.CellData = nil
}

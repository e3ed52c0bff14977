package grid

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// SaveSTL exports the grid's triangle cells as an STL file. Line cells are
// skipped; tetrahedra are not expanded into faces (export a dimension-2
// generation result, or the surface cells of a dimension-3 one).
func SaveSTL(path string, g *UnstructuredGrid) error {
	var mesh []*sdf.Triangle3
	for _, c := range g.Cells {
		if c.Type != CellTriangle {
			continue
		}
		mesh = append(mesh, &sdf.Triangle3{
			g.Points[c.Nodes[0]],
			g.Points[c.Nodes[1]],
			g.Points[c.Nodes[2]],
		})
	}
	if len(mesh) == 0 {
		return errors.New("grid has no triangle cells")
	}
	return render.SaveSTL(path, mesh)
}

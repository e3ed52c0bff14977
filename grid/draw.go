package grid

import (
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
)

// This is for debugging purposes only

const dbgDrawPadding = 20

// DrawPNG renders the xy projection of the mesh: filled triangles with
// stroked edges, line cells on top. Scale is pixels per model unit.
func DrawPNG(path string, g *UnstructuredGrid, scale float64) error {
	b := g.Bounds()
	width := int(scale*(b.Max.X-b.Min.X)) + dbgDrawPadding*2
	height := int(scale*(b.Max.Y-b.Min.Y)) + dbgDrawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(dbgDrawPadding, dbgDrawPadding)
	c.Scale(scale, scale)
	c.Translate(-b.Min.X, -b.Min.Y)

	c.SetLineWidth(math.Max(1/scale, 0.02))
	for _, cell := range g.Cells {
		if cell.Type != CellTriangle {
			continue
		}
		p0, p1, p2 := g.Points[cell.Nodes[0]], g.Points[cell.Nodes[1]], g.Points[cell.Nodes[2]]
		c.MoveTo(p0.X, p0.Y)
		c.LineTo(p1.X, p1.Y)
		c.LineTo(p2.X, p2.Y)
		c.ClosePath()
	}
	c.SetRGB(0, 0.5, 0)
	c.FillPreserve()
	c.SetRGB(0, 1, 1)
	c.Stroke()

	for _, cell := range g.Cells {
		if cell.Type != CellLine {
			continue
		}
		p0, p1 := g.Points[cell.Nodes[0]], g.Points[cell.Nodes[1]]
		c.MoveTo(p0.X, p0.Y)
		c.LineTo(p1.X, p1.Y)
	}
	c.SetRGB(1, 1, 0)
	c.Stroke()

	return c.SavePNG(path)
}

// dbgDraw renders to a scratch file and cats it to the terminal.
func (g *UnstructuredGrid) dbgDraw(scale float64) {
	if err := DrawPNG("/tmp/frontmesh.png", g, scale); err != nil {
		return
	}
	imgcat.CatFile("/tmp/frontmesh.png", os.Stdout)
}

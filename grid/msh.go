package grid

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// MSH 2.2 ASCII read/write. This is the file-based bridge between the
// meshing engine and the containers: the engine can write its current mesh
// to a scoped file and the caller reads it back. Only the node and element
// sections are handled; element types are the line/triangle/tetra subset
// this library generates.

const mshEntityTagField = "entity-tag"

// WriteMSH writes the grid as a Gmsh MSH 2.2 ASCII file. Each element
// carries two integer tags (physical, geometrical); the geometrical tag is
// taken from CellData["entity-tag"] when present, otherwise zero.
func WriteMSH(path string, g *UnstructuredGrid) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create msh file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")

	fmt.Fprintf(w, "$Nodes\n%d\n", len(g.Points))
	for i, p := range g.Points {
		fmt.Fprintf(w, "%d %.16g %.16g %.16g\n", i+1, p.X, p.Y, p.Z)
	}
	fmt.Fprintf(w, "$EndNodes\n")

	tags := g.CellData[mshEntityTagField]
	fmt.Fprintf(w, "$Elements\n%d\n", len(g.Cells))
	for i, c := range g.Cells {
		geomTag := 0
		if i < len(tags) {
			geomTag = int(tags[i])
		}
		fmt.Fprintf(w, "%d %d 2 0 %d", i+1, int(c.Type), geomTag)
		for _, n := range c.Nodes {
			fmt.Fprintf(w, " %d", n+1)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "$EndElements\n")

	return errors.Wrap(w.Flush(), "write msh file")
}

// ReadMSH parses an MSH 2.2 ASCII file back into a grid. Node ids must be
// the contiguous 1..N the writer produces. Geometrical element tags come
// back as CellData["entity-tag"].
func ReadMSH(path string) (*UnstructuredGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open msh file")
	}
	defer f.Close()

	g := &UnstructuredGrid{}
	var tags []float64

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	nextLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("unexpected end of msh file")
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	for scanner.Scan() {
		section := strings.TrimSpace(scanner.Text())
		switch section {
		case "$MeshFormat":
			line, err := nextLine()
			if err != nil {
				return nil, err
			}
			if !strings.HasPrefix(line, "2.2") {
				return nil, errors.Errorf("unsupported msh version %q", line)
			}
		case "$Nodes":
			line, err := nextLine()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(line)
			if err != nil {
				return nil, errors.Wrap(err, "node count")
			}
			g.Points = make([]v3.Vec, n)
			for i := 0; i < n; i++ {
				line, err := nextLine()
				if err != nil {
					return nil, err
				}
				fields := strings.Fields(line)
				if len(fields) != 4 {
					return nil, errors.Errorf("malformed node line %q", line)
				}
				id, err := strconv.Atoi(fields[0])
				if err != nil || id != i+1 {
					return nil, errors.Errorf("non-contiguous node id in %q", line)
				}
				var p v3.Vec
				if p.X, err = strconv.ParseFloat(fields[1], 64); err != nil {
					return nil, errors.Wrapf(err, "node %d", id)
				}
				if p.Y, err = strconv.ParseFloat(fields[2], 64); err != nil {
					return nil, errors.Wrapf(err, "node %d", id)
				}
				if p.Z, err = strconv.ParseFloat(fields[3], 64); err != nil {
					return nil, errors.Wrapf(err, "node %d", id)
				}
				g.Points[i] = p
			}
		case "$Elements":
			line, err := nextLine()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(line)
			if err != nil {
				return nil, errors.Wrap(err, "element count")
			}
			for i := 0; i < n; i++ {
				line, err := nextLine()
				if err != nil {
					return nil, err
				}
				cell, tag, err := parseMSHElement(line, len(g.Points))
				if err != nil {
					return nil, err
				}
				g.Cells = append(g.Cells, cell)
				tags = append(tags, float64(tag))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read msh file")
	}

	if len(tags) > 0 {
		g.CellData = map[string][]float64{mshEntityTagField: tags}
	}
	return g, nil
}

func parseMSHElement(line string, numNodes int) (Cell, int, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Cell{}, 0, errors.Errorf("malformed element line %q", line)
	}
	elType, err := strconv.Atoi(fields[1])
	if err != nil {
		return Cell{}, 0, errors.Errorf("malformed element type in %q", line)
	}
	cellType := CellType(elType)
	nodeCount := cellType.NumNodes()
	if nodeCount == 0 {
		return Cell{}, 0, errors.Errorf("unsupported element type %d", elType)
	}
	nTags, err := strconv.Atoi(fields[2])
	if err != nil {
		return Cell{}, 0, errors.Errorf("malformed tag count in %q", line)
	}
	if len(fields) != 3+nTags+nodeCount {
		return Cell{}, 0, errors.Errorf("element line %q has %d fields, want %d", line, len(fields), 3+nTags+nodeCount)
	}
	geomTag := 0
	if nTags >= 2 {
		if geomTag, err = strconv.Atoi(fields[4]); err != nil {
			return Cell{}, 0, errors.Errorf("malformed geometrical tag in %q", line)
		}
	}
	nodes := make([]int, nodeCount)
	for j := 0; j < nodeCount; j++ {
		id, err := strconv.Atoi(fields[3+nTags+j])
		if err != nil || id < 1 || id > numNodes {
			return Cell{}, 0, errors.Errorf("bad node reference in %q", line)
		}
		nodes[j] = id - 1
	}
	return Cell{Type: cellType, Nodes: nodes}, geomTag, nil
}

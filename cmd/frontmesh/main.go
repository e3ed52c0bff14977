package main

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/logrusorgru/aurora"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/osanai/frontmesh"
	"github.com/osanai/frontmesh/grid"
)

// Command line mesher. Input is newline separated points in the form
// "x y" or "x y z", with each loop separated by an extra newline. Loops
// should be simple and wind counterclockwise; after the first loop, further
// loops cut holes. For 3D the loops must together close a single volume.
var (
	configPath = kingpin.Flag("config", "TOML config file.").String()
	size       = kingpin.Flag("size", "Target element size (0 = auto).").Float64()
	algorithm  = kingpin.Flag("algorithm", "Meshing algorithm.").Enum("delaunay", "frontal")
	dimension  = kingpin.Flag("dimension", "Mesh dimension (2 or 3).").Int()
	outPath    = kingpin.Flag("out", "Output file (.msh, .stl or .png).").String()
	show       = kingpin.Flag("show", "Render the mesh inline (iTerm2).").Bool()
	inputPath  = kingpin.Arg("input", "Loop file (default stdin).").String()
)

func main() {
	kingpin.Parse()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg := defaultToolConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadToolConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		log.Info().Str("path", *configPath).Msg("loaded config")
	}
	// Flags override the config file.
	if *size > 0 {
		cfg.Size = *size
	}
	if *algorithm != "" {
		cfg.Algorithm = *algorithm
	}
	if *dimension != 0 {
		cfg.Dimension = *dimension
	}
	if *outPath != "" {
		cfg.Out = *outPath
	}
	if err := validateToolConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	in := os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open input")
		}
		defer f.Close()
		in = f
	}
	edgeSource, err := readLoops(in)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read loops")
	}
	log.Info().
		Int("points", len(edgeSource.Points)).
		Int("edges", edgeSource.NumEdges()).
		Msg("read edge source")

	alg := frontmesh.AlgFrontalDelaunay
	if cfg.Algorithm == "delaunay" {
		alg = frontmesh.AlgDelaunay
	}
	mesh, err := frontmesh.GenerateMesh(edgeSource, frontmesh.Config{
		TargetSize: cfg.Size,
		Algorithm:  alg,
		Dimension:  cfg.Dimension,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mesh generation failed")
	}

	printSummary(mesh)

	if cfg.Out != "" {
		if err := writeOutput(cfg.Out, mesh); err != nil {
			log.Fatal().Err(err).Msg("failed to write output")
		}
		log.Info().Str("path", cfg.Out).Msg("wrote mesh")
	}
	if *show {
		showMesh(mesh)
	}
}

// readLoops reads blank-line-separated loops of "x y [z]" points and packs
// them into a single edge source. Point indices are global across loops.
func readLoops(in io.Reader) (*grid.PolyData, error) {
	pd := &grid.PolyData{}
	var loop []int

	flush := func() {
		if len(loop) > 0 {
			pd.Lines = append(pd.Lines, len(loop))
			pd.Lines = append(pd.Lines, loop...)
			loop = nil
		}
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			return nil, err
		}
		loop = append(loop, len(pd.Points))
		pd.Points = append(pd.Points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read loops")
	}
	flush()
	return pd, nil
}

func parsePoint(line string) (p v3.Vec, err error) {
	parts := strings.Fields(line)
	if len(parts) != 2 && len(parts) != 3 {
		return p, errors.Errorf("invalid point line %q", line)
	}
	coords := make([]float64, len(parts))
	for i, s := range parts {
		if coords[i], err = strconv.ParseFloat(s, 64); err != nil {
			return p, errors.Errorf("invalid point line %q", line)
		}
	}
	p.X, p.Y = coords[0], coords[1]
	if len(coords) == 3 {
		p.Z = coords[2]
	}
	return p, nil
}

func printSummary(mesh *grid.UnstructuredGrid) {
	b := mesh.Bounds()
	log.Info().
		Int("points", mesh.NumPoints()).
		Int("lines", mesh.NumCellsOfType(grid.CellLine)).
		Int("triangles", mesh.NumCellsOfType(grid.CellTriangle)).
		Int("tetrahedra", mesh.NumCellsOfType(grid.CellTetra)).
		Float64("extent", b.MaxExtent()).
		Msgf("%s", aurora.Green("mesh generated"))
}

func writeOutput(path string, mesh *grid.UnstructuredGrid) error {
	switch {
	case strings.HasSuffix(path, ".msh"):
		return grid.WriteMSH(path, mesh)
	case strings.HasSuffix(path, ".stl"):
		return grid.SaveSTL(path, mesh)
	case strings.HasSuffix(path, ".png"):
		return grid.DrawPNG(path, mesh, 30)
	}
	return errors.Errorf("output %q must end in .msh, .stl or .png", path)
}

func showMesh(mesh *grid.UnstructuredGrid) {
	path := "/tmp/frontmesh.png"
	if err := grid.DrawPNG(path, mesh, 30); err != nil {
		log.Error().Err(err).Msg("failed to render mesh")
		return
	}
	imgcat.CatFile(path, os.Stdout)
}

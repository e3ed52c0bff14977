package grid

import (
	"embed"
	"log"
	"strconv"
	"strings"
	"testing"

	"github.com/JoshVarga/svgparser"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This file parses the svg fixtures into edge sources. It is not a full svg
// parser: it finds the single polygon element in the file and converts its
// points into a CCW single-loop PolyData. If anything goes wrong, it panics.
//
// Fixtures are available by name in this fixtures/ directory, sans extension.

//go:embed fixtures
var fixtures embed.FS

func loadFixture(name string) *PolyData {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}

	defer fixture.Close()
	rootEl, err := svgparser.Parse(fixture, true)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}

	polygons := rootEl.FindAll("polygon")
	if len(polygons) != 1 {
		log.Fatalf("Fixture %q has %d polygons, want exactly one", name, len(polygons))
	}

	pd := &PolyData{}
	for _, pointString := range strings.Fields(polygons[0].Attributes["points"]) {
		coords := strings.Split(pointString, ",")
		if len(coords) != 2 {
			log.Fatalf("Invalid point string %q in fixture %q", pointString, name)
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			log.Fatalf("Invalid x value %q: %v", coords[0], err)
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			log.Fatalf("Invalid y value %q: %v", coords[1], err)
		}
		// SVG y grows downward; flip so CCW in svg space stays CCW here.
		pd.Points = append(pd.Points, v3.Vec{X: x, Y: -y})
	}

	if signedArea(pd.Points) < 0 {
		for i, j := 0, len(pd.Points)-1; i < j; i, j = i+1, j-1 {
			pd.Points[i], pd.Points[j] = pd.Points[j], pd.Points[i]
		}
	}
	pd.Lines = append(pd.Lines, len(pd.Points))
	for i := range pd.Points {
		pd.Lines = append(pd.Lines, i)
	}
	return pd
}

func signedArea(points []v3.Vec) float64 {
	area := 0.0
	for i, p := range points {
		q := points[(i+1)%len(points)]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

func TestLoadFixture(t *testing.T) {
	t.Run("square", func(t *testing.T) {
		pd := loadFixture("square")
		require.Len(t, pd.Points, 4)
		assert.Equal(t, 4, pd.NumEdges())
		assert.Greater(t, signedArea(pd.Points), 0.0)

		b := pd.Bounds()
		assert.Equal(t, 16.0, b.MaxExtent())
	})

	t.Run("staircase", func(t *testing.T) {
		pd := loadFixture("staircase")
		require.Len(t, pd.Points, 8)
		assert.Greater(t, signedArea(pd.Points), 0.0)

		loops, err := pd.Loops()
		require.NoError(t, err)
		require.Len(t, loops, 1)
		assert.Len(t, loops[0], 8)
	})
}

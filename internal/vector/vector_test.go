package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, s float64) Contour {
	return Contour{{x, y}, {x + s, y}, {x + s, y + s}, {x, y + s}}
}

func triangleArea(pts []Point, tris [][3]int, signed bool) float64 {
	var sum float64
	for _, t := range tris {
		a := orient(pts[t[0]], pts[t[1]], pts[t[2]]) / 2
		if !signed {
			a = math.Abs(a)
		}
		sum += a
	}
	return sum
}

func TestParseOutlinesRectAndFill(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg"><rect x="0" y="0" width="10" height="20" fill="#ff0000"/></svg>`
	outlines, err := ParseOutlinesBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, outlines, 1)
	assert.Equal(t, uint8(255), outlines[0].Fill.R)
	assert.Equal(t, uint8(0), outlines[0].Fill.G)

	contours := Contours(outlines[0].Path)
	require.Len(t, contours, 1)
	assert.Len(t, contours[0], 4)
	assert.InDelta(t, 200, math.Abs(contours[0].Area()), 1e-6)
}

func TestParseOutlinesSkipsUnfilled(t *testing.T) {
	doc := `<svg><g fill="none"><rect width="4" height="4"/></g><circle cx="0" cy="0" r="5"/></svg>`
	outlines, err := ParseOutlinesBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, outlines, 1)
	assert.Equal(t, defaultFill, outlines[0].Fill)

	contours := Contours(outlines[0].Path)
	require.Len(t, contours, 1)
	assert.InDelta(t, math.Pi*25, math.Abs(contours[0].Area()), 1.0)
}

func TestParseOutlinesStyleOverridesAttribute(t *testing.T) {
	doc := `<svg><rect width="4" height="4" fill="#ff0000" style="fill: none"/></svg>`
	outlines, err := ParseOutlinesBytes([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, outlines)
}

func TestParseOutlinesRejectsNonSVG(t *testing.T) {
	_, err := ParseOutlinesBytes([]byte(`<html><body></body></html>`))
	assert.Error(t, err)
}

func TestShapesNesting(t *testing.T) {
	shapes := Shapes([]Contour{
		square(0, 0, 10),
		square(2, 2, 6),
		square(4, 4, 2),
		square(20, 0, 3),
	})
	require.Len(t, shapes, 3)
	holes := 0
	for _, s := range shapes {
		assert.Greater(t, s.Outer.Area(), 0.0, "outer is counter-clockwise")
		for _, h := range s.Holes {
			assert.Less(t, h.Area(), 0.0, "hole is clockwise")
			holes++
		}
	}
	assert.Equal(t, 1, holes)
}

func TestTriangulateSquare(t *testing.T) {
	pts, tris := Triangulate(square(0, 0, 10), nil)
	require.Len(t, tris, 2)
	assert.InDelta(t, 100, triangleArea(pts, tris, false), 1e-9)
}

func TestTriangulateWithHole(t *testing.T) {
	pts, tris := Triangulate(square(0, 0, 10), []Contour{square(3, 3, 4)})
	require.NotEmpty(t, tris)
	assert.InDelta(t, 84, triangleArea(pts, tris, true), 1e-9)
	assert.InDelta(t, 84, triangleArea(pts, tris, false), 1e-9)
}

func TestTriangulateConcave(t *testing.T) {
	// L shape
	l := Contour{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}}
	pts, tris := Triangulate(l, nil)
	assert.Len(t, tris, 4)
	assert.InDelta(t, 7, triangleArea(pts, tris, false), 1e-9)
}

func TestExtrudeSquare(t *testing.T) {
	g := Extrude(Shape{Outer: square(0, 0, 10)}, 5)
	// two caps of two triangles plus four walls of two triangles
	assert.Equal(t, 12, g.TriangleCount())
	box := g.Bounds()
	assert.InDelta(t, 0, box.Min[2], 1e-9)
	assert.InDelta(t, 5, box.Max[2], 1e-9)
	assert.InDelta(t, 10, box.Max[0], 1e-9)
}

func TestDecodeCentersEachMesh(t *testing.T) {
	doc := `<svg>
		<rect x="0" y="0" width="10" height="20"/>
		<g transform="translate(100, 0)"><rect x="0" y="0" width="2" height="2"/></g>
	</svg>`
	meshes, err := DecodeBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, meshes, 2)

	assert.InDelta(t, 5, meshes[0].Position[0], 1e-6)
	assert.InDelta(t, 10, meshes[0].Position[1], 1e-6)
	assert.InDelta(t, ExtrudeDepth/2, meshes[0].Position[2], 1e-6)
	assert.InDelta(t, 101, meshes[1].Position[0], 1e-6)

	for _, m := range meshes {
		c := m.Geometry.Bounds().Center()
		assert.InDelta(t, 0, c[0], 1e-6)
		assert.InDelta(t, 0, c[1], 1e-6)
		assert.False(t, m.Glow)
	}
}

func TestDecodeNoShapes(t *testing.T) {
	_, err := DecodeBytes([]byte(`<svg><rect width="0" height="3"/></svg>`))
	assert.ErrorIs(t, err, ErrNoShapes)
}

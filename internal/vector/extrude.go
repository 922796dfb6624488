package vector

import (
	"glowview/internal/mathutil"
	"glowview/internal/scene"
)

// ExtrudeDepth is the thickness, in SVG units, given to every shape.
const ExtrudeDepth = 2.0

// Extrude turns a shape into a closed solid: a cap at z=0, a cap at
// z=depth and one quad per contour edge joining them.
func Extrude(s Shape, depth float64) *scene.Geometry {
	pts, tris := Triangulate(s.Outer, s.Holes)
	g := &scene.Geometry{}
	if len(tris) == 0 {
		return g
	}

	n := uint32(len(pts))
	for _, p := range pts {
		g.Positions = append(g.Positions, mathutil.Vec3{p.X, p.Y, depth})
	}
	for _, p := range pts {
		g.Positions = append(g.Positions, mathutil.Vec3{p.X, p.Y, 0})
	}
	for _, t := range tris {
		g.Indices = append(g.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	for _, t := range tris {
		g.Indices = append(g.Indices, n+uint32(t[0]), n+uint32(t[2]), n+uint32(t[1]))
	}

	walls := append([]Contour{s.Outer}, s.Holes...)
	for _, c := range walls {
		for i := range c {
			a, b := c[i], c[(i+1)%len(c)]
			base := uint32(len(g.Positions))
			g.Positions = append(g.Positions,
				mathutil.Vec3{a.X, a.Y, 0},
				mathutil.Vec3{b.X, b.Y, 0},
				mathutil.Vec3{b.X, b.Y, depth},
				mathutil.Vec3{a.X, a.Y, depth},
			)
			g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return g
}

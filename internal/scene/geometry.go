package scene

import "glowview/internal/mathutil"

// Geometry is an indexed triangle list.
type Geometry struct {
	Positions []mathutil.Vec3
	UVs       [][2]float64 // optional, parallel to Positions
	Indices   []uint32     // optional; nil means sequential triples

	disposed bool
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c int) {
	if g.Indices != nil {
		return int(g.Indices[i*3]), int(g.Indices[i*3+1]), int(g.Indices[i*3+2])
	}
	return i * 3, i*3 + 1, i*3 + 2
}

// Bounds returns the local bounding box.
func (g *Geometry) Bounds() mathutil.Box3 {
	box := mathutil.EmptyBox()
	for _, p := range g.Positions {
		box = box.ExpandByPoint(p)
	}
	return box
}

// Center translates the positions so the bounding box center sits at the
// origin and returns the removed offset.
func (g *Geometry) Center() mathutil.Vec3 {
	box := g.Bounds()
	if box.IsEmpty() {
		return mathutil.Vec3{}
	}
	c := box.Center()
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].Sub(c)
	}
	return c
}

// Dispose releases vertex data.
func (g *Geometry) Dispose() {
	g.Positions = nil
	g.UVs = nil
	g.Indices = nil
	g.disposed = true
}

// Disposed reports whether Dispose was called.
func (g *Geometry) Disposed() bool { return g.disposed }

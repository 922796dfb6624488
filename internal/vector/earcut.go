package vector

import (
	"math"
	"sort"
)

// Triangulate returns the vertices of the shape with its holes bridged in,
// and triangles as index triples into that list. outer must be
// counter-clockwise and holes clockwise, as Shapes produces them.
func Triangulate(outer Contour, holes []Contour) ([]Point, [][3]int) {
	poly := append(Contour(nil), outer...)
	if poly.Area() < 0 {
		poly = poly.Reversed()
	}
	sorted := make([]Contour, 0, len(holes))
	for _, h := range holes {
		if len(h) < 3 {
			continue
		}
		if h.Area() > 0 {
			h = h.Reversed()
		}
		sorted = append(sorted, h)
	}
	sort.Slice(sorted, func(i, j int) bool { return maxX(sorted[i]) > maxX(sorted[j]) })
	for _, h := range sorted {
		poly = bridge(poly, h, sorted)
	}
	return poly, earClip(poly)
}

func maxX(c Contour) float64 {
	m := math.Inf(-1)
	for _, p := range c {
		m = math.Max(m, p.X)
	}
	return m
}

// bridge splices hole into poly through the shortest segment from the
// hole's rightmost vertex to a poly vertex that crosses no edge.
func bridge(poly, hole Contour, holes []Contour) Contour {
	hi := 0
	for i, p := range hole {
		if p.X > hole[hi].X {
			hi = i
		}
	}
	m := hole[hi]

	best, bestDist := -1, math.Inf(1)
	for i, p := range poly {
		d := math.Hypot(p.X-m.X, p.Y-m.Y)
		if d >= bestDist {
			continue
		}
		if crossesAny(m, p, poly) || crossesAny(m, p, hole) {
			continue
		}
		blocked := false
		for _, o := range holes {
			if crossesAny(m, p, o) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		best, bestDist = i, d
	}
	if best < 0 {
		best = 0
		for i, p := range poly {
			if math.Hypot(p.X-m.X, p.Y-m.Y) < math.Hypot(poly[best].X-m.X, poly[best].Y-m.Y) {
				best = i
			}
		}
	}

	out := make(Contour, 0, len(poly)+len(hole)+2)
	out = append(out, poly[:best+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(hi+k)%len(hole)])
	}
	out = append(out, poly[best])
	out = append(out, poly[best+1:]...)
	return out
}

// crossesAny reports whether segment ab properly crosses an edge of c.
// Edges sharing an endpoint with ab do not count.
func crossesAny(a, b Point, c Contour) bool {
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		if samePoint(p, a) || samePoint(p, b) || samePoint(q, a) || samePoint(q, b) {
			continue
		}
		if segmentsCross(a, b, p, q) {
			return true
		}
	}
	return false
}

func segmentsCross(a, b, c, d Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > 0) != (d2 > 0)) && ((d3 > 0) != (d4 > 0)) &&
		d1 != 0 && d2 != 0 && d3 != 0 && d4 != 0
}

func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// earClip triangulates a counter-clockwise simple (or bridged) polygon.
func earClip(poly Contour) [][3]int {
	n := len(poly)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	tris := make([][3]int, 0, n-2)
	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isEar(poly, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate remainder: clip the flattest corner to make progress.
			i := flattest(poly, idx)
			prev := idx[(i+len(idx)-1)%len(idx)]
			next := idx[(i+1)%len(idx)]
			tris = append(tris, [3]int{prev, idx[i], next})
			idx = append(idx[:i], idx[i+1:]...)
		}
	}
	if len(idx) == 3 && orient(poly[idx[0]], poly[idx[1]], poly[idx[2]]) != 0 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

func isEar(poly Contour, idx []int, prev, cur, next int) bool {
	a, b, c := poly[prev], poly[cur], poly[next]
	if orient(a, b, c) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == prev || k == cur || k == next {
			continue
		}
		p := poly[k]
		if samePoint(p, a) || samePoint(p, b) || samePoint(p, c) {
			continue
		}
		if orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0 {
			return false
		}
	}
	return true
}

func flattest(poly Contour, idx []int) int {
	best, bestArea := 0, math.Inf(1)
	for i := range idx {
		a := poly[idx[(i+len(idx)-1)%len(idx)]]
		b := poly[idx[i]]
		c := poly[idx[(i+1)%len(idx)]]
		if ar := math.Abs(orient(a, b, c)); ar < bestArea {
			best, bestArea = i, ar
		}
	}
	return best
}

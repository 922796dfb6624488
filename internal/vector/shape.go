package vector

import (
	"math"
	"sort"

	"cogentcore.org/core/paint/ppath"
	"cogentcore.org/core/paint/ppath/intersect"
)

// FlattenTolerance is the maximum deviation, in SVG units, between a curve
// and its line approximation.
const FlattenTolerance = 0.25

// Point is a 2D vertex in document coordinates.
type Point struct{ X, Y float64 }

// Contour is a closed polygon without the repeated closing vertex.
type Contour []Point

// Area returns the signed shoelace area; positive means counter-clockwise
// in a y-up frame.
func (c Contour) Area() float64 {
	var a float64
	for i := range c {
		j := (i + 1) % len(c)
		a += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return a / 2
}

// Reversed returns the contour with opposite winding.
func (c Contour) Reversed() Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[len(c)-1-i] = p
	}
	return out
}

// Contains reports whether p is inside c by the crossing rule.
func (c Contour) Contains(p Point) bool {
	in := false
	for i, j := 0, len(c)-1; i < len(c); j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// Shape is one outer contour with the holes cut out of it.
type Shape struct {
	Outer Contour
	Holes []Contour
}

// Contours flattens a path and returns one contour per subpath, dropping
// degenerate ones.
func Contours(p ppath.Path) []Contour {
	flat := intersect.Flatten(p, FlattenTolerance)
	var out []Contour
	for _, sub := range flat.Split() {
		coords := sub.Coords()
		c := make(Contour, 0, len(coords))
		for _, v := range coords {
			pt := Point{float64(v.X), float64(v.Y)}
			if n := len(c); n > 0 && samePoint(c[n-1], pt) {
				continue
			}
			c = append(c, pt)
		}
		for len(c) > 1 && samePoint(c[0], c[len(c)-1]) {
			c = c[:len(c)-1]
		}
		if len(c) < 3 || math.Abs(c.Area()) < 1e-9 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Shapes groups contours into outers and holes by nesting depth: a contour
// inside an even number of others is an outer, an odd number makes it a
// hole of its tightest enclosing outer.
func Shapes(contours []Contour) []Shape {
	n := len(contours)
	areas := make([]float64, n)
	for i, c := range contours {
		areas[i] = math.Abs(c.Area())
	}
	parent := make([]int, n)
	depth := make([]int, n)
	for i, c := range contours {
		parent[i] = -1
		inside := interiorPoint(c)
		for j, o := range contours {
			if i == j || areas[j] <= areas[i] || !o.Contains(inside) {
				continue
			}
			depth[i]++
			if parent[i] < 0 || areas[j] < areas[parent[i]] {
				parent[i] = j
			}
		}
	}

	index := map[int]int{}
	var shapes []Shape
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return depth[order[a]] < depth[order[b]] })
	for _, i := range order {
		c := contours[i]
		if depth[i]%2 == 0 {
			if c.Area() < 0 {
				c = c.Reversed()
			}
			index[i] = len(shapes)
			shapes = append(shapes, Shape{Outer: c})
			continue
		}
		si, ok := index[parent[i]]
		if !ok {
			continue
		}
		if c.Area() > 0 {
			c = c.Reversed()
		}
		shapes[si].Holes = append(shapes[si].Holes, c)
	}
	return shapes
}

// interiorPoint returns a point just inside the contour near its first edge,
// so vertices shared with another contour do not skew the nesting test.
func interiorPoint(c Contour) Point {
	a, b := c[0], c[1]
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return a
	}
	// Left normal points inward for a counter-clockwise contour.
	nx, ny := -dy/l, dx/l
	if c.Area() < 0 {
		nx, ny = -nx, -ny
	}
	const eps = 1e-4
	return Point{mx + nx*eps, my + ny*eps}
}

func samePoint(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

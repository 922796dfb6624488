package mathutil

import "math"

// World axes. The renderer is Y-up, right-handed, camera looking down -Z.
var (
	Up      = Vec3{0, 1, 0}
	Forward = Vec3{0, 0, -1}
	Zero    = Vec3{}
	One     = Vec3{1, 1, 1}
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual(a, b, eps float64) bool {
	d := a - b
	return d <= eps && d >= -eps
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

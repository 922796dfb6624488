package mathutil

// Mat3 is a row-major 3×3 matrix holding the rotation and scale part of a
// transform.
type Mat3 [9]float64

func Mat3Identity() Mat3 { return Mat3Diag(1, 1, 1) }

// Mat3Diag returns a scale matrix.
func Mat3Diag(x, y, z float64) Mat3 { return Mat3{0: x, 4: y, 8: z} }

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for i := range m {
		r, c := i/3*3, i%3
		m[i] = a[r]*b[c] + a[r+1]*b[c+3] + a[r+2]*b[c+6]
	}
	return m
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{m.row(0).Dot(v), m.row(1).Dot(v), m.row(2).Dot(v)}
}

// Det is negative for mirroring transforms such as the vector flip.
func (m Mat3) Det() float64 {
	return m.row(0).Dot(m.row(1).Cross(m.row(2)))
}

func (m Mat3) row(i int) Vec3 { return Vec3{m[i*3], m[i*3+1], m[i*3+2]} }

package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major. Used for node, view and projection transforms.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix, ignoring the projective row.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulVec4 transforms a homogeneous point (w=1) and returns clip-space x, y, z, w.
func (m Mat4) MulVec4(v Vec3) (x, y, z, w float64) {
	x = m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]
	y = m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]
	z = m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]
	w = m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]
	return
}

// Linear returns the upper-left 3×3 block.
func (m Mat4) Linear() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Compose builds T × R × S.
func Compose(t Vec3, r Mat3, s Vec3) Mat4 {
	rs := Mat3Mul(r, Mat3Diag(s[0], s[1], s[2]))
	return FromMat3Translation(rs, t)
}

// FromColumnMajor converts a column-major array (glTF, GL convention) to Mat4.
func FromColumnMajor(a [16]float64) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[c*4+r]
		}
	}
	return m
}

// Perspective returns a right-handed perspective projection mapping view-space
// depth [-near, -far] to NDC z in [-1, 1]. fovY is in radians.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovY/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}

// LookAt returns the view matrix of an eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	if zAxis == (Vec3{}) {
		zAxis = Vec3{0, 0, 1}
	}
	xAxis := up.Cross(zAxis).Normalize()
	if xAxis == (Vec3{}) {
		// up parallel to view direction
		xAxis = Vec3{1, 0, 0}
	}
	yAxis := zAxis.Cross(xAxis)
	return Mat4{
		xAxis[0], xAxis[1], xAxis[2], -xAxis.Dot(eye),
		yAxis[0], yAxis[1], yAxis[2], -yAxis.Dot(eye),
		zAxis[0], zAxis[1], zAxis[2], -zAxis.Dot(eye),
		0, 0, 0, 1,
	}
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}

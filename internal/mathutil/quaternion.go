package mathutil

import "math"

// Quat represents a quaternion (x, y, z, w), the layout glTF stores node rotations in.
type Quat [4]float64

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quat{0, 0, 0, 1}

// EulerToQuat converts Euler XYZ (radians) to a quaternion.
func EulerToQuat(rx, ry, rz float64) Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return Quat{
		sx*cy*cz + cx*sy*sz, // x
		cx*sy*cz - sx*cy*sz, // y
		cx*cy*sz + sx*sy*cz, // z
		cx*cy*cz - sx*sy*sz, // w
	}
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
// Non-unit quaternions are normalized first.
func QuatToMat3(q Quat) Mat3 {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n < 1e-12 {
		return Mat3Identity()
	}
	x, y, z, w := q[0]/n, q[1]/n, q[2]/n, q[3]/n
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// AxisAngle returns the rotation of a radians about axis.
func AxisAngle(axis Vec3, a float64) Quat {
	n := axis.Normalize()
	s := math.Sin(a / 2)
	return Quat{n[0] * s, n[1] * s, n[2] * s, math.Cos(a / 2)}
}

// RotX, RotY and RotZ rotate about the world axes, right-handed.
func RotX(a float64) Mat3 { return QuatToMat3(AxisAngle(Vec3{1, 0, 0}, a)) }
func RotY(a float64) Mat3 { return QuatToMat3(AxisAngle(Up, a)) }
func RotZ(a float64) Mat3 { return QuatToMat3(AxisAngle(Vec3{0, 0, 1}, a)) }

// EulerXYZ returns Rx(e[0]) × Ry(e[1]) × Rz(e[2]), the intrinsic order
// object rotation uses.
func EulerXYZ(e Vec3) Mat3 {
	return QuatToMat3(EulerToQuat(e[0], e[1], e[2]))
}

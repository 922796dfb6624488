package camera

import (
	"math"

	"glowview/internal/mathutil"
)

// polarEpsilon keeps the orbit off the poles where the up vector degenerates.
const polarEpsilon = 1e-4

// Orbit rotates a camera around its target on drag. It is disabled by
// default; when disabled every call is a no-op and no change is reported.
type Orbit struct {
	Enabled     bool
	RotateSpeed float64

	cam      *Camera
	onChange func()
}

// NewOrbit returns disabled orbit controls for cam.
func NewOrbit(cam *Camera) *Orbit {
	return &Orbit{cam: cam, RotateSpeed: 1}
}

// OnChange registers the callback fired after every applied camera change.
func (o *Orbit) OnChange(fn func()) { o.onChange = fn }

// Rotate moves the camera by azimuth and polar deltas in radians.
// It reports whether the camera moved.
func (o *Orbit) Rotate(dAzimuth, dPolar float64) bool {
	if !o.Enabled || (dAzimuth == 0 && dPolar == 0) {
		return false
	}
	offset := o.cam.Position.Sub(o.cam.Target)
	r := offset.Length()
	if r < 1e-12 {
		return false
	}
	theta := math.Atan2(offset[0], offset[2])
	phi := math.Acos(mathutil.Clamp(offset[1]/r, -1, 1))

	theta -= dAzimuth * o.RotateSpeed
	phi = mathutil.Clamp(phi-dPolar*o.RotateSpeed, polarEpsilon, math.Pi-polarEpsilon)

	sinPhi := math.Sin(phi)
	o.cam.Position = o.cam.Target.Add(mathutil.Vec3{
		r * sinPhi * math.Sin(theta),
		r * math.Cos(phi),
		r * sinPhi * math.Cos(theta),
	})
	o.changed()
	return true
}

// Dolly scales the camera-to-target distance. It reports whether the camera moved.
func (o *Orbit) Dolly(scale float64) bool {
	if !o.Enabled || scale <= 0 || scale == 1 {
		return false
	}
	o.cam.SetDistance(o.cam.Distance() * scale)
	o.changed()
	return true
}

func (o *Orbit) changed() {
	if o.onChange != nil {
		o.onChange()
	}
}

package viewer

import (
	"math"

	"glowview/internal/classify"
	"glowview/internal/ingest"
	"glowview/internal/logx"
	"glowview/internal/mathutil"
	"glowview/internal/scene"
)

// The live control surface. Every mutator runs as one turn and requests
// exactly one redraw; values outside their range are clamped.

// SetBloomEnabled moves glow-eligible meshes onto or off the bloom layer.
func (v *Viewer) SetBloomEnabled(enabled bool) error {
	return v.do(func() {
		v.params.BloomEnabled = enabled
		classify.Apply(v.scene.Object(), enabled)
	})
}

// SetEmissiveColor overrides the emissive color of every loaded mesh and of
// meshes loaded later.
func (v *Viewer) SetEmissiveColor(c scene.Color) error {
	return v.do(func() {
		v.params.Emissive = &c
		v.loader.SetEmissive(&c)
		ingest.OverrideEmissive(v.scene.Object(), c)
	})
}

// SetBloomThreshold sets the luminance threshold, clamped to [0, 1].
func (v *Viewer) SetBloomThreshold(t float64) error {
	return v.do(func() {
		t = clampLogged("bloomThreshold", t, MinThreshold, MaxThreshold)
		v.params.BloomThreshold = t
		v.pipe.SetThreshold(t)
	})
}

// SetBloomStrength sets the glow intensity, clamped to [0, 5].
func (v *Viewer) SetBloomStrength(s float64) error {
	return v.do(func() {
		s = clampLogged("bloomStrength", s, MinStrength, MaxStrength)
		v.params.BloomStrength = s
		v.pipe.SetStrength(s)
	})
}

// SetBloomRadius sets the blur spread, clamped to [0, 1] in steps of 0.01.
func (v *Viewer) SetBloomRadius(r float64) error {
	return v.do(func() {
		r = clampStep(clampLogged("bloomRadius", r, MinRadius, MaxRadius), MinRadius, MaxRadius, RadiusStep)
		v.params.BloomRadius = r
		v.pipe.SetRadius(r)
	})
}

// SetExposure sets the exposure control value, clamped to [0.1, 2]. The
// tone mapper receives its fourth power.
func (v *Viewer) SetExposure(e float64) error {
	return v.do(func() {
		e = clampLogged("exposure", e, MinExposure, MaxExposure)
		v.params.Exposure = e
		v.pipe.SetExposure(toneExposure(e))
	})
}

// SetCameraDistance moves the camera to d units from the object, clamped to
// [1, 100] in steps of 0.01.
func (v *Viewer) SetCameraDistance(d float64) error {
	return v.do(func() {
		d = clampStep(clampLogged("cameraDistance", d, MinDistance, MaxDistance), MinDistance, MaxDistance, DistanceStep)
		v.params.CameraDistance = d
		v.cam.SetDistance(d)
	})
}

// SetOrbitEnabled turns camera orbit controls on or off. While enabled,
// drags orbit the camera instead of rotating the object.
func (v *Viewer) SetOrbitEnabled(enabled bool) error {
	return v.do(func() {
		v.orbit.Enabled = enabled
	})
}

// Zoom scales the camera distance through the orbit controls. It does
// nothing while orbit controls are disabled.
func (v *Viewer) Zoom(scale float64) error {
	if v.closed {
		return ErrClosed
	}
	return v.sched.Turn(func() {
		if v.orbit.Dolly(scale) {
			v.params.CameraDistance = v.cam.Distance()
		}
	})
}

// PointerDown starts a drag at client pixel coordinates.
func (v *Viewer) PointerDown(clientX, clientY float64) {
	x, y := Normalize(clientX, clientY, v.width, v.height)
	v.controller.Down(x, y)
}

// PointerMove handles a move at client pixel coordinates. While dragging,
// small moves rotate the object by delta·π radians (x delta about the y
// axis, y delta about the x axis) and redraw once. A move that does not
// change the position renders nothing.
func (v *Viewer) PointerMove(clientX, clientY float64) error {
	if v.closed {
		return ErrClosed
	}
	x, y := Normalize(clientX, clientY, v.width, v.height)
	dx, dy, ok := v.controller.Move(x, y)
	if !ok || (dx == 0 && dy == 0) {
		return nil
	}
	return v.sched.Turn(func() {
		if v.orbit.Enabled {
			v.orbit.Rotate(dx*math.Pi, dy*math.Pi)
			return
		}
		obj := v.scene.Object()
		if obj == nil {
			return
		}
		obj.Rotation[1] += dx * math.Pi
		obj.Rotation[0] += dy * math.Pi
		v.sched.Request()
	})
}

// PointerUp ends the drag.
func (v *Viewer) PointerUp() { v.controller.Up() }

// PointerLeave ends the drag when the pointer leaves the surface.
func (v *Viewer) PointerLeave() { v.controller.Up() }

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return mathutil.Clamp(x, lo, hi)
}

func clampLogged(name string, x, lo, hi float64) float64 {
	c := clamp(x, lo, hi)
	if c != x {
		logx.Logger().Debug("parameter clamped", "param", name, "value", x, "clamped", c)
	}
	return c
}

// clampStep clamps x and rounds it to the nearest multiple of step above lo.
func clampStep(x, lo, hi, step float64) float64 {
	x = clamp(x, lo, hi)
	q := lo + math.Round((x-lo)/step)*step
	return clamp(q, lo, hi)
}

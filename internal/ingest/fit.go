package ingest

import (
	"glowview/internal/camera"
	"glowview/internal/mathutil"
	"glowview/internal/scene"
)

// Placement describes where an asset sits relative to the camera and the
// background plane.
type Placement struct {
	FOV                float64 // vertical, degrees
	Aspect             float64
	CameraToObject     float64
	ObjectToBackground float64
}

// Depth returns the camera-to-background distance.
func (p Placement) Depth() float64 { return p.CameraToObject + p.ObjectToBackground }

// VisibleSize returns the visible width and height at depth for a vertical
// fov in degrees.
func VisibleSize(fov, aspect, depth float64) (width, height float64) {
	height = camera.VisibleHeight(fov, depth)
	return height * aspect, height
}

// Fit is the uniform scale and vertical flip applied to a vector asset.
type Fit struct {
	Scale  float64       // uniform magnitude; Y is applied negated
	Center mathutil.Vec3 // aggregate center removed from the meshes, pre-scale
}

// FitScale returns the scale that makes a box of the given size a third of
// the height visible at the background plane. Flat boxes with no height
// fall back to a third of the visible width.
func FitScale(size mathutil.Vec3, p Placement) float64 {
	visW, visH := VisibleSize(p.FOV, p.Aspect, p.Depth())
	w, h := size[0], size[1]
	switch {
	case h > 0:
		return visH / (3 * h)
	case w > 0:
		return visW / (3 * w)
	}
	return 1
}

// FitVector centers the meshes under root on their aggregate bounding box
// and scales root by (s, -s, s) so the asset takes a third of the view.
// It is computed once per load.
func FitVector(root *scene.Node, p Placement) Fit {
	box := root.Bounds()
	if box.IsEmpty() {
		return Fit{Scale: 1}
	}
	center := box.Center()
	for _, c := range root.Children {
		c.Position = c.Position.Sub(center)
	}
	s := FitScale(box.Size(), p)
	root.Scale = mathutil.Vec3{s, -s, s}
	return Fit{Scale: s, Center: center}
}

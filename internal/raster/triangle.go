package raster

import (
	"image"

	"glowview/internal/scene"
)

// vertex is a projected vertex: screen position, 1/w for depth and
// perspective correction, and UV pre-divided by w.
type vertex struct {
	x, y   float64
	iw     float64
	uw, vw float64
}

// surface is the per-triangle shading input resolved by the renderer.
type surface struct {
	base     scene.Color
	emissive scene.Color
	shade    float64 // lighting scalar; 1 for unlit
	tex      *image.NRGBA
}

// rasterizeTriangle fills one triangle into fb with a depth test on 1/w.
//
// This is the HOT PATH, designed for zero allocation in the inner loop.
// Lighting is flat-shaded (per-face, not per-pixel).
func rasterizeTriangle(fb *FrameBuffer, v0, v1, v2 vertex, s *surface) {
	x0, y0 := v0.x, v0.y
	x1, y1 := v1.x, v1.y
	x2, y2 := v2.x, v2.y

	// Bounding box
	minX := int(min(x0, x1, x2))
	maxX := int(max(x0, x1, x2)) + 1
	minY := int(min(y0, y1, y2))
	maxY := int(max(y0, y1, y2)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Flat terms that do not vary per pixel
	litR := s.base.R * s.shade
	litG := s.base.G * s.shade
	litB := s.base.B * s.shade
	emR, emG, emB := s.emissive.R, s.emissive.G, s.emissive.B

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			iw := w0*v0.iw + w1*v1.iw + w2*v2.iw
			zIdx := rowOff + sx
			if iw <= fb.ZBuf[zIdx] {
				continue
			}

			r, g, b := litR, litG, litB
			if s.tex != nil {
				pw := 1 / iw
				u := (w0*v0.uw + w1*v1.uw + w2*v2.uw) * pw
				v := (w0*v0.vw + w1*v1.vw + w2*v2.vw) * pw
				tr, tg, tb, ta := SampleTexture(s.tex, u, v)
				// Skip transparent texels
				if ta < 8.0/255 {
					continue
				}
				r, g, b = r*tr, g*tg, b*tb
			}
			fb.ZBuf[zIdx] = iw

			px := zIdx * 4
			fb.Color[px] = float32(r + emR)
			fb.Color[px+1] = float32(g + emG)
			fb.Color[px+2] = float32(b + emB)
			fb.Color[px+3] = 1
		}
	}
}

package raster

import (
	"math"

	"glowview/internal/scene"
)

// FrameBuffer is an HDR render target held as flat slices for cache locality.
// Color is linear light and is not clamped; tone mapping happens on output.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []float32 // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // interpolated 1/w per pixel, larger is closer; -inf when empty
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]float32, n*4),
		ZBuf:   zbuf,
	}
}

// Clear fills the color buffer with c at the given alpha and resets depth.
func (fb *FrameBuffer) Clear(c scene.Color, alpha float64) {
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(alpha)
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = a
	}
	inf := math.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}

// At returns the RGBA value at (x, y).
func (fb *FrameBuffer) At(x, y int) [4]float32 {
	i := (y*fb.Width + x) * 4
	return [4]float32{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

// Set stores an RGBA value at (x, y).
func (fb *FrameBuffer) Set(x, y int, c [4]float32) {
	i := (y*fb.Width + x) * 4
	fb.Color[i] = c[0]
	fb.Color[i+1] = c[1]
	fb.Color[i+2] = c[2]
	fb.Color[i+3] = c[3]
}

// SameSize reports whether o has the dimensions of fb.
func (fb *FrameBuffer) SameSize(o *FrameBuffer) bool {
	return o != nil && fb.Width == o.Width && fb.Height == o.Height
}

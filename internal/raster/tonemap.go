package raster

import (
	"image"
	"math"
)

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// ToneMapper converts HDR linear buffers to displayable 8-bit sRGB.
type ToneMapper struct {
	Exposure float64 // multiplier applied before the filmic curve
	InvGamma float64
}

// NewToneMapper returns an ACES mapper with sRGB-ish 2.2 gamma encoding.
func NewToneMapper(exposure float64) ToneMapper {
	return ToneMapper{Exposure: exposure, InvGamma: 1.0 / 2.2}
}

// Encode tone maps fb into a new NRGBA image. Alpha is clamped to [0, 1].
func (tm ToneMapper) Encode(fb *FrameBuffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	tm.EncodeInto(fb, img)
	return img
}

// EncodeInto tone maps fb into dst, which must have fb's dimensions.
func (tm ToneMapper) EncodeInto(fb *FrameBuffer, dst *image.NRGBA) {
	exposure := tm.Exposure
	invGamma := tm.InvGamma
	for y := 0; y < fb.Height; y++ {
		src := y * fb.Width * 4
		row := y * dst.Stride
		for x := 0; x < fb.Width; x++ {
			i := src + x*4
			o := row + x*4
			dst.Pix[o] = clamp255(math.Pow(ACESTonemap(float64(fb.Color[i])*exposure), invGamma) * 255)
			dst.Pix[o+1] = clamp255(math.Pow(ACESTonemap(float64(fb.Color[i+1])*exposure), invGamma) * 255)
			dst.Pix[o+2] = clamp255(math.Pow(ACESTonemap(float64(fb.Color[i+2])*exposure), invGamma) * 255)
			dst.Pix[o+3] = clamp255(float64(fb.Color[i+3]) * 255)
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

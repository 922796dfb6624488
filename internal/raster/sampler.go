package raster

import (
	"image"

	"glowview/internal/scene"
)

// SampleTexture performs bilinear filtering with UV wrapping and returns the
// texel decoded to linear light, plus alpha in [0, 1].
// Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a float64) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 1, 1, 1, 1
	}

	// Wrap UVs
	u = u - float64(int(u))
	if u < 0 {
		u += 1.0
	}
	v = v - float64(int(v))
	if v < 0 {
		v += 1.0
	}

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix

	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	lin := scene.SRGBToLinear
	r = lin(pix[i00])*w00 + lin(pix[i10])*w10 + lin(pix[i01])*w01 + lin(pix[i11])*w11
	g = lin(pix[i00+1])*w00 + lin(pix[i10+1])*w10 + lin(pix[i01+1])*w01 + lin(pix[i11+1])*w11
	b = lin(pix[i00+2])*w00 + lin(pix[i10+2])*w10 + lin(pix[i01+2])*w01 + lin(pix[i11+2])*w11
	a = (float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11) / 255

	return r, g, b, a
}

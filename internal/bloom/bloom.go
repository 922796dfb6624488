// Package bloom implements the glow post-filter: a luminosity high-pass,
// a chain of progressively downsampled separable Gaussian blurs, and a
// radius-weighted recombination scaled by strength.
package bloom

import (
	"math"

	"glowview/internal/raster"
)

// NumMips is the number of blur levels.
const NumMips = 5

// smoothWidth is the soft knee above the threshold.
const smoothWidth = 0.01

var (
	kernelRadii  = [NumMips]int{3, 5, 7, 9, 11}
	bloomFactors = [NumMips]float64{1.0, 0.8, 0.6, 0.4, 0.2}
)

// Params are the live filter controls.
type Params struct {
	Strength  float64 // overall glow intensity multiplier
	Radius    float64 // 0 favours tight mips, 1 favours wide mips
	Threshold float64 // luminance a pixel must exceed to contribute
}

type mip struct {
	w, h    int
	kernel  []float64 // normalized half-kernel, kernel[0] is the center weight
	scratch *raster.FrameBuffer
	blurred *raster.FrameBuffer
}

// Filter owns the intermediate targets for one output size.
type Filter struct {
	Params

	width, height int
	bright        *raster.FrameBuffer
	mips          [NumMips]mip
	out           *raster.FrameBuffer
}

// New returns a filter sized for w×h inputs.
func New(w, h int, p Params) *Filter {
	f := &Filter{Params: p}
	f.Resize(w, h)
	return f
}

// Resize reallocates the intermediate targets.
func (f *Filter) Resize(w, h int) {
	f.width, f.height = w, h
	f.bright = raster.NewFrameBuffer(w, h)
	f.out = raster.NewFrameBuffer(w, h)
	mw, mh := w, h
	for i := range f.mips {
		mw = max(1, int(math.Round(float64(mw)/2)))
		mh = max(1, int(math.Round(float64(mh)/2)))
		f.mips[i] = mip{
			w:       mw,
			h:       mh,
			kernel:  gaussianKernel(kernelRadii[i]),
			scratch: raster.NewFrameBuffer(mw, mh),
			blurred: raster.NewFrameBuffer(mw, mh),
		}
	}
}

// Release drops all intermediate targets.
func (f *Filter) Release() {
	f.bright = nil
	f.out = nil
	for i := range f.mips {
		f.mips[i] = mip{}
	}
}

// Size returns the input size the filter is allocated for.
func (f *Filter) Size() (int, int) { return f.width, f.height }

// Apply runs the filter over src and returns src plus the blurred glow.
// The returned buffer is owned by the filter and reused on the next call.
func (f *Filter) Apply(src *raster.FrameBuffer) *raster.FrameBuffer {
	if !src.SameSize(f.out) {
		f.Resize(src.Width, src.Height)
	}

	HighPass(src, f.bright, f.Threshold)

	input := f.bright
	for i := range f.mips {
		m := &f.mips[i]
		blurPass(input, m.scratch, m.kernel, 1, 0)
		blurPass(m.scratch, m.blurred, m.kernel, 0, 1)
		input = m.blurred
	}

	var weights [NumMips]float64
	for i := range weights {
		weights[i] = f.Strength * lerpBloomFactor(bloomFactors[i], f.Radius)
	}

	w, h := f.width, f.height
	for y := 0; y < h; y++ {
		v := (float64(y) + 0.5) / float64(h)
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(w)
			var gr, gg, gb float64
			for i := range f.mips {
				s := sampleBilinear(f.mips[i].blurred, u, v)
				gr += weights[i] * float64(s[0])
				gg += weights[i] * float64(s[1])
				gb += weights[i] * float64(s[2])
			}
			in := src.At(x, y)
			lum := luminance(gr, gg, gb)
			f.out.Set(x, y, [4]float32{
				in[0] + float32(gr),
				in[1] + float32(gg),
				in[2] + float32(gb),
				float32(math.Min(1, float64(in[3])+lum)),
			})
		}
	}
	return f.out
}

// HighPass copies pixels of src whose luminance clears threshold into dst and
// zeroes the rest, with a narrow smoothstep knee.
func HighPass(src, dst *raster.FrameBuffer, threshold float64) {
	for i := 0; i < len(src.Color); i += 4 {
		r, g, b := float64(src.Color[i]), float64(src.Color[i+1]), float64(src.Color[i+2])
		a := float32(smoothstep(threshold, threshold+smoothWidth, luminance(r, g, b)))
		dst.Color[i] = src.Color[i] * a
		dst.Color[i+1] = src.Color[i+1] * a
		dst.Color[i+2] = src.Color[i+2] * a
		dst.Color[i+3] = src.Color[i+3] * a
	}
}

// blurPass writes a 1D Gaussian blur of src along (dx, dy) into dst,
// sampling src bilinearly at dst's resolution.
func blurPass(src, dst *raster.FrameBuffer, kernel []float64, dx, dy float64) {
	invW := 1 / float64(dst.Width)
	invH := 1 / float64(dst.Height)
	stepU, stepV := dx*invW, dy*invH
	weightSum := kernel[0]
	for i := 1; i < len(kernel); i++ {
		weightSum += 2 * kernel[i]
	}
	for y := 0; y < dst.Height; y++ {
		v := (float64(y) + 0.5) * invH
		for x := 0; x < dst.Width; x++ {
			u := (float64(x) + 0.5) * invW
			c := sampleBilinear(src, u, v)
			r := float64(c[0]) * kernel[0]
			g := float64(c[1]) * kernel[0]
			b := float64(c[2]) * kernel[0]
			for i := 1; i < len(kernel); i++ {
				fi := float64(i)
				s1 := sampleBilinear(src, u+stepU*fi, v+stepV*fi)
				s2 := sampleBilinear(src, u-stepU*fi, v-stepV*fi)
				k := kernel[i]
				r += float64(s1[0]+s2[0]) * k
				g += float64(s1[1]+s2[1]) * k
				b += float64(s1[2]+s2[2]) * k
			}
			dst.Set(x, y, [4]float32{
				float32(r / weightSum),
				float32(g / weightSum),
				float32(b / weightSum),
				1,
			})
		}
	}
}

// gaussianKernel returns the half-kernel for sigma = radius.
func gaussianKernel(radius int) []float64 {
	sigma := float64(radius)
	k := make([]float64, radius)
	for i := range k {
		fi := float64(i)
		k[i] = 0.39894 * math.Exp(-0.5*fi*fi/(sigma*sigma)) / sigma
	}
	return k
}

// lerpBloomFactor mixes a mip's factor toward its mirror as radius grows.
func lerpBloomFactor(factor, radius float64) float64 {
	mirror := 1.2 - factor
	return factor + (mirror-factor)*radius
}

// sampleBilinear reads fb at normalized coordinates with clamp-to-edge.
func sampleBilinear(fb *raster.FrameBuffer, u, v float64) [4]float32 {
	fx := u*float64(fb.Width) - 0.5
	fy := v*float64(fb.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	c00 := fb.At(clampInt(x0, fb.Width), clampInt(y0, fb.Height))
	c10 := fb.At(clampInt(x0+1, fb.Width), clampInt(y0, fb.Height))
	c01 := fb.At(clampInt(x0, fb.Width), clampInt(y0+1, fb.Height))
	c11 := fb.At(clampInt(x0+1, fb.Width), clampInt(y0+1, fb.Height))

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*tx
		bot := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

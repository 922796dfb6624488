package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestDownsampleSize(t *testing.T) {
	out := Downsample(solid(40, 20, color.NRGBA{200, 100, 50, 255}), 20, 10)
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	c := out.NRGBAAt(10, 5)
	assert.InDelta(t, 200, int(c.R), 1)
	assert.InDelta(t, 100, int(c.G), 1)
	assert.Equal(t, uint8(255), c.A)
}

func TestDownsampleKeepsColorUnderTransparency(t *testing.T) {
	src := solid(8, 8, color.NRGBA{0, 0, 0, 0})
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Downsample(src, 4, 4)
	// Edge pixels blend with transparency but stay white rather than grey.
	c := out.NRGBAAt(0, 2)
	assert.Greater(t, c.A, uint8(0))
	assert.GreaterOrEqual(t, c.R, uint8(250))
}

func TestDownsampleNoop(t *testing.T) {
	src := solid(4, 4, color.NRGBA{1, 2, 3, 4})
	assert.Same(t, src, Downsample(src, 4, 4))
}

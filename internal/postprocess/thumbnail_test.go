package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCropAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 2; y < 5; y++ {
		for x := 3; x < 9; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	c := CropAlpha(img)
	assert.Equal(t, image.Rect(0, 0, 6, 3), c.Bounds())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, c.NRGBAAt(0, 0))

	empty := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, empty, CropAlpha(empty))
}

func TestThumbnailCentersContent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 5; y < 15; y++ {
		for x := 0; x < 20; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 255, 0, 255})
		}
	}
	th := Thumbnail(img, 32, 0.5)
	assert.Equal(t, image.Rect(0, 0, 32, 32), th.Bounds())
	// 20x10 content scaled to 16x8, centered.
	assert.Equal(t, uint8(255), th.NRGBAAt(16, 16).A)
	assert.Zero(t, th.NRGBAAt(16, 8).A)
	assert.Zero(t, th.NRGBAAt(4, 16).A)
}

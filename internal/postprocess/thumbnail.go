package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Thumbnail crops img to its non-transparent pixels, scales the crop to
// fill fillRatio of a size×size canvas and centers it. Opaque frames have
// nothing to crop and are scaled whole.
func Thumbnail(img *image.NRGBA, size int, fillRatio float64) *image.NRGBA {
	if fillRatio <= 0 || fillRatio > 1 {
		fillRatio = 1
	}
	return scaleAndCenter(CropAlpha(img), size, fillRatio)
}

// CropAlpha returns the sub-image bounding every pixel with non-zero alpha.
// It returns img when nothing is transparent or nothing is visible.
func CropAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[row+(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return img
	}
	crop := image.Rect(minX, minY, maxX+1, maxY+1)
	if crop == b {
		return img
	}
	out := image.NewNRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Bounds(), img, crop.Min, draw.Src)
	return out
}

func scaleAndCenter(img *image.NRGBA, canvasSize int, fillRatio float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 || canvasSize <= 0 {
		return canvas
	}

	maxDim := float64(canvasSize) * fillRatio
	scale := maxDim / math.Max(float64(srcW), float64(srcH))
	newW := max(1, int(float64(srcW)*scale+0.5))
	newH := max(1, int(float64(srcH)*scale+0.5))

	offX := (canvasSize - newW) / 2
	offY := (canvasSize - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)
	draw.CatmullRom.Scale(canvas, dst, img, b, draw.Src, nil)
	return canvas
}

package scene

import (
	"image"
	"image/color"
	"math"
)

// Color is a linear-light RGB triple. Components may exceed 1.
type Color struct {
	R, G, B float64
}

// Black is the zero color.
var Black = Color{}

// White is unit linear white.
var White = Color{1, 1, 1}

// srgbToLinear is the decode table shared with the rasterizer's texture path.
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// SRGBToLinear decodes one 8-bit sRGB channel.
func SRGBToLinear(v uint8) float64 { return srgbToLinear[v] }

// ColorFromRGBA converts an 8-bit sRGB color to linear light.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{srgbToLinear[c.R], srgbToLinear[c.G], srgbToLinear[c.B]}
}

// RGBA encodes c back to 8-bit sRGB with alpha a.
func (c Color) RGBA(a uint8) color.RGBA {
	enc := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(math.Pow(v, 1/2.2)*255 + 0.5)
	}
	return color.RGBA{enc(c.R), enc(c.G), enc(c.B), a}
}

func (c Color) IsBlack() bool { return c.R == 0 && c.G == 0 && c.B == 0 }

func (c Color) Scale(s float64) Color { return Color{c.R * s, c.G * s, c.B * s} }

func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }

// Material describes how a mesh surface is shaded.
type Material struct {
	Name string

	// Color is the linear base color; multiplied by Map when present.
	Color Color
	Map   *image.NRGBA

	Emissive          Color
	EmissiveIntensity float64

	// Unlit materials ignore scene lighting and output Color directly.
	Unlit bool

	disposed bool
}

// NewMaterial returns a lit material with the given base color.
func NewMaterial(name string, c Color) *Material {
	return &Material{Name: name, Color: c, EmissiveIntensity: 1}
}

// NewBasicMaterial returns an unlit material.
func NewBasicMaterial(name string, c Color) *Material {
	return &Material{Name: name, Color: c, EmissiveIntensity: 1, Unlit: true}
}

// EmissiveRadiance returns Emissive scaled by EmissiveIntensity.
func (m *Material) EmissiveRadiance() Color {
	return m.Emissive.Scale(m.EmissiveIntensity)
}

// Dispose drops the texture reference. Disposing twice is harmless.
func (m *Material) Dispose() {
	m.Map = nil
	m.disposed = true
}

// Disposed reports whether Dispose was called.
func (m *Material) Disposed() bool { return m.disposed }

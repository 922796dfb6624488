package viewer

import (
	"glowview/internal/camera"
	"glowview/internal/ingest"
	"glowview/internal/pipeline"
	"glowview/internal/scene"
	"glowview/internal/texture"
)

// Control ranges. Out-of-range values are clamped, never rejected.
const (
	MinStrength, MaxStrength   = 0.0, 5.0
	MinRadius, MaxRadius       = 0.0, 1.0
	RadiusStep                 = 0.01
	MinThreshold, MaxThreshold = 0.0, 1.0
	MinExposure, MaxExposure   = 0.1, 2.0
	MinDistance, MaxDistance   = 1.0, 100.0
	DistanceStep               = 0.01
	MaxSupersample             = 4
)

// Options are a viewer's construction parameters.
type Options struct {
	Kind    ingest.Kind
	Locator string // loaded by New when set

	Background  scene.Color
	Transparent bool

	CameraToObject     float64
	ObjectToBackground float64
	FOV                float64 // vertical, degrees

	BloomStrength  float64
	BloomRadius    float64
	BloomThreshold float64
	// Exposure is the control value v; tone mapping uses v⁴.
	Exposure float64
	// Emissive overrides mesh emissive colors when non-nil.
	Emissive *scene.Color

	// Supersample renders at N times the surface size and downsamples.
	Supersample int

	Fetcher  ingest.Fetcher
	Textures texture.Resolver
	// Renderer replaces the CPU rasterizer; used by tests.
	Renderer pipeline.SceneRenderer

	// OnLoad, when set, receives every applied or failed load on the
	// viewer's goroutine. Stale loads are not reported.
	OnLoad func(ingest.LoadResult)
}

// DefaultOptions returns the stock construction parameters.
func DefaultOptions() Options {
	return Options{
		Kind:               ingest.KindAuto,
		Background:         scene.Black,
		CameraToObject:     5,
		ObjectToBackground: 5,
		FOV:                camera.DefaultFOV,
		BloomStrength:      1.5,
		BloomRadius:        0.4,
		BloomThreshold:     0,
		Exposure:           1,
		Supersample:        1,
	}
}

// normalize clamps every numeric option into its valid range.
func (o Options) normalize() Options {
	if o.FOV <= 0 {
		o.FOV = camera.DefaultFOV
	}
	if o.ObjectToBackground < 0 {
		o.ObjectToBackground = 0
	}
	o.CameraToObject = clampStep(o.CameraToObject, MinDistance, MaxDistance, DistanceStep)
	o.BloomStrength = clamp(o.BloomStrength, MinStrength, MaxStrength)
	o.BloomRadius = clampStep(o.BloomRadius, MinRadius, MaxRadius, RadiusStep)
	o.BloomThreshold = clamp(o.BloomThreshold, MinThreshold, MaxThreshold)
	o.Exposure = clamp(o.Exposure, MinExposure, MaxExposure)
	o.Supersample = max(1, min(MaxSupersample, o.Supersample))
	return o
}

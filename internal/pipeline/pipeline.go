// Package pipeline renders a scene with selective bloom: glow-eligible
// meshes are blurred in an offscreen pass with everything else painted
// black, then the blurred image is added onto a normal render of the scene.
package pipeline

import (
	"errors"
	"image"
	"time"

	"glowview/internal/bloom"
	"glowview/internal/camera"
	"glowview/internal/classify"
	"glowview/internal/logx"
	"glowview/internal/raster"
	"glowview/internal/scene"
)

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("pipeline: closed")

// SceneRenderer draws a scene into a render target. The target is cleared
// by the caller. It returns the number of triangles drawn.
type SceneRenderer interface {
	Render(s *scene.Scene, cam *camera.Camera, fb *raster.FrameBuffer) int
}

// Config holds the pipeline's construction-time state.
type Config struct {
	Width, Height int
	Bloom         bloom.Params
	Exposure      float64 // tone-mapping exposure multiplier
	Background    scene.Color
	Transparent   bool
}

// Pipeline owns the two render targets, the bloom filter and the material
// substitution map of one viewer. It is not safe for concurrent use.
type Pipeline struct {
	renderer SceneRenderer

	background  scene.Color
	transparent bool

	dark  *scene.Material
	saved map[*scene.Node]*scene.Material

	bloomTarget *raster.FrameBuffer
	finalTarget *raster.FrameBuffer
	composite   *raster.FrameBuffer
	filter      *bloom.Filter
	tone        raster.ToneMapper

	frames int
	closed bool
}

// New allocates targets for cfg.Width×cfg.Height. A nil renderer selects the
// CPU rasterizer.
func New(cfg Config, r SceneRenderer) *Pipeline {
	if r == nil {
		r = raster.NewRenderer()
	}
	w, h := max(1, cfg.Width), max(1, cfg.Height)
	return &Pipeline{
		renderer:    r,
		background:  cfg.Background,
		transparent: cfg.Transparent,
		dark:        scene.NewBasicMaterial("bloom-dark", scene.Black),
		saved:       make(map[*scene.Node]*scene.Material),
		bloomTarget: raster.NewFrameBuffer(w, h),
		finalTarget: raster.NewFrameBuffer(w, h),
		composite:   raster.NewFrameBuffer(w, h),
		filter:      bloom.New(w, h, cfg.Bloom),
		tone:        raster.NewToneMapper(cfg.Exposure),
	}
}

// SetStrength, SetRadius and SetThreshold update the live bloom controls.
func (p *Pipeline) SetStrength(v float64)  { p.filter.Strength = v }
func (p *Pipeline) SetRadius(v float64)    { p.filter.Radius = v }
func (p *Pipeline) SetThreshold(v float64) { p.filter.Threshold = v }

// Bloom returns the current bloom controls.
func (p *Pipeline) Bloom() bloom.Params { return p.filter.Params }

// SetExposure sets the tone-mapping exposure multiplier.
func (p *Pipeline) SetExposure(v float64) { p.tone.Exposure = v }

// Exposure returns the tone-mapping exposure multiplier.
func (p *Pipeline) Exposure() float64 { return p.tone.Exposure }

// SetBackground sets the final pass clear color and transparency.
func (p *Pipeline) SetBackground(c scene.Color, transparent bool) {
	p.background = c
	p.transparent = transparent
}

// Resize reallocates all targets.
func (p *Pipeline) Resize(w, h int) {
	w, h = max(1, w), max(1, h)
	p.bloomTarget = raster.NewFrameBuffer(w, h)
	p.finalTarget = raster.NewFrameBuffer(w, h)
	p.composite = raster.NewFrameBuffer(w, h)
	p.filter.Resize(w, h)
}

// Size returns the render target size.
func (p *Pipeline) Size() (int, int) { return p.finalTarget.Width, p.finalTarget.Height }

// DarkMaterial returns the shared material non-bloom meshes wear during the bloom pass.
func (p *Pipeline) DarkMaterial() *scene.Material { return p.dark }

// Pending returns the number of substituted materials not yet restored.
// It is zero between frames.
func (p *Pipeline) Pending() int { return len(p.saved) }

// Frames returns the number of completed renders.
func (p *Pipeline) Frames() int { return p.frames }

// Render runs one full cycle: darken, bloom render, restore, final render,
// composite, tone map. It returns the tone-mapped frame.
func (p *Pipeline) Render(s *scene.Scene, cam *camera.Camera) (*image.NRGBA, error) {
	hdr, err := p.RenderHDR(s, cam)
	if err != nil {
		return nil, err
	}
	return p.tone.Encode(hdr), nil
}

// RenderHDR is Render without tone mapping. The returned buffer is owned by
// the pipeline and overwritten by the next frame.
func (p *Pipeline) RenderHDR(s *scene.Scene, cam *camera.Camera) (*raster.FrameBuffer, error) {
	if p.closed {
		return nil, ErrClosed
	}
	start := time.Now()

	p.darken(s)
	// Background never bleeds into the glow buffer.
	p.bloomTarget.Clear(scene.Black, 0)
	p.renderer.Render(s, cam, p.bloomTarget)
	glow := p.filter.Apply(p.bloomTarget)
	p.restore(s)

	alpha := 1.0
	if p.transparent {
		alpha = 0
	}
	p.finalTarget.Clear(p.background, alpha)
	tris := p.renderer.Render(s, cam, p.finalTarget)

	Composite(p.finalTarget, glow, p.composite)
	p.frames++

	logx.Logger().Debug("frame rendered",
		"frame", p.frames,
		"triangles", tris,
		"elapsed", time.Since(start))
	return p.composite, nil
}

// darken swaps the material of every mesh outside the bloom layer for the
// shared black material, remembering the original.
func (p *Pipeline) darken(s *scene.Scene) int {
	n := 0
	s.TraverseMeshes(func(node *scene.Node) {
		if classify.IsBloom(node) {
			return
		}
		if _, done := p.saved[node]; done {
			return
		}
		p.saved[node] = node.Material
		node.Material = p.dark
		n++
	})
	return n
}

// restore puts back every material darken saved and drains the map.
func (p *Pipeline) restore(s *scene.Scene) int {
	n := 0
	s.Traverse(func(node *scene.Node) {
		if m, ok := p.saved[node]; ok {
			node.Material = m
			delete(p.saved, node)
			n++
		}
	})
	// Nodes detached mid-frame are restored too so nothing leaks.
	for node, m := range p.saved {
		node.Material = m
		delete(p.saved, node)
		n++
	}
	return n
}

// Close releases the render targets. Render fails afterwards.
func (p *Pipeline) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.bloomTarget = nil
	p.finalTarget = nil
	p.composite = nil
	p.filter.Release()
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowview/internal/bloom"
	"glowview/internal/camera"
	"glowview/internal/classify"
	"glowview/internal/mathutil"
	"glowview/internal/raster"
	"glowview/internal/scene"
)

type recordingRenderer struct {
	calls      []map[*scene.Node]*scene.Material
	clearColor [][4]float32
}

func (r *recordingRenderer) Render(s *scene.Scene, _ *camera.Camera, fb *raster.FrameBuffer) int {
	snap := make(map[*scene.Node]*scene.Material)
	s.TraverseMeshes(func(n *scene.Node) { snap[n] = n.Material })
	r.calls = append(r.calls, snap)
	r.clearColor = append(r.clearColor, fb.At(0, 0))
	return 0
}

func quad(size float64) *scene.Geometry {
	h := size / 2
	return &scene.Geometry{
		Positions: []mathutil.Vec3{{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

// glowScene returns a scene with one bloom-layer mesh and one plain background mesh.
func glowScene() (s *scene.Scene, glow, plain *scene.Node) {
	s = scene.New()
	plain = scene.NewMesh("plane", quad(10), scene.NewBasicMaterial("bg", scene.Color{R: 0.2, G: 0.2, B: 0.2}))
	plain.Position = mathutil.Vec3{0, 0, -5}
	s.SetBackground(plain)

	m := scene.NewMaterial("glow", scene.White)
	m.Emissive = scene.Color{R: 4, G: 2, B: 1}
	glow = scene.NewMesh("glow", quad(1), m)
	root := scene.NewGroup("object")
	root.Add(glow)
	classify.MarkGlow(root)
	classify.Apply(root, true)
	s.SetObject(root)
	return s, glow, plain
}

func newTestPipeline(r SceneRenderer, transparent bool) *Pipeline {
	return New(Config{
		Width:       16,
		Height:      16,
		Bloom:       bloom.Params{Strength: 1.5, Radius: 0.4},
		Exposure:    1,
		Background:  scene.Color{R: 0.1, G: 0.2, B: 0.3},
		Transparent: transparent,
	}, r)
}

func TestRenderDarkensOnlyNonBloomMeshes(t *testing.T) {
	rec := &recordingRenderer{}
	p := newTestPipeline(rec, false)
	s, glow, plain := glowScene()
	glowMat, plainMat := glow.Material, plain.Material

	_, err := p.Render(s, camera.New(45, 1, 5))
	require.NoError(t, err)
	require.Len(t, rec.calls, 2)

	bloomPass, finalPass := rec.calls[0], rec.calls[1]
	assert.Same(t, p.DarkMaterial(), bloomPass[plain])
	assert.Same(t, glowMat, bloomPass[glow])
	assert.Same(t, plainMat, finalPass[plain])
	assert.Same(t, glowMat, finalPass[glow])

	assert.Same(t, plainMat, plain.Material)
	assert.Zero(t, p.Pending())
}

func TestSubstitutionMapEmptyAcrossFrames(t *testing.T) {
	rec := &recordingRenderer{}
	p := newTestPipeline(rec, false)
	s, _, plain := glowScene()
	plainMat := plain.Material
	cam := camera.New(45, 1, 5)

	for i := 0; i < 3; i++ {
		assert.Zero(t, p.Pending(), "before frame %d", i)
		_, err := p.Render(s, cam)
		require.NoError(t, err)
		assert.Zero(t, p.Pending(), "after frame %d", i)
		assert.Same(t, plainMat, plain.Material)
	}
	assert.Equal(t, 3, p.Frames())
	assert.Len(t, rec.calls, 6)
}

func TestBloomDisabledDarkensEverything(t *testing.T) {
	rec := &recordingRenderer{}
	p := newTestPipeline(rec, false)
	s, glow, _ := glowScene()
	classify.Apply(s.Object(), false)

	_, err := p.Render(s, camera.New(45, 1, 5))
	require.NoError(t, err)
	assert.Same(t, p.DarkMaterial(), rec.calls[0][glow])
	assert.NotSame(t, p.DarkMaterial(), rec.calls[1][glow])
}

func TestClearColors(t *testing.T) {
	for _, transparent := range []bool{false, true} {
		rec := &recordingRenderer{}
		p := newTestPipeline(rec, transparent)
		s, _, _ := glowScene()
		_, err := p.Render(s, camera.New(45, 1, 5))
		require.NoError(t, err)

		assert.Equal(t, [4]float32{0, 0, 0, 0}, rec.clearColor[0], "bloom pass clear")
		wantAlpha := float32(1)
		if transparent {
			wantAlpha = 0
		}
		assert.Equal(t, [4]float32{0.1, 0.2, 0.3, wantAlpha}, rec.clearColor[1], "final pass clear")
	}
}

func TestCompositeIsAdditiveAndUnclamped(t *testing.T) {
	base := raster.NewFrameBuffer(1, 1)
	glow := raster.NewFrameBuffer(1, 1)
	dst := raster.NewFrameBuffer(1, 1)
	base.Set(0, 0, [4]float32{0.8, 0.1, 0, 1})
	glow.Set(0, 0, [4]float32{0.7, 0.2, 0.5, 0.5})

	Composite(base, glow, dst)
	got := dst.At(0, 0)
	assert.InDelta(t, 1.5, got[0], 1e-6)
	assert.InDelta(t, 0.3, got[1], 1e-6)
	assert.InDelta(t, 0.5, got[2], 1e-6)
	assert.InDelta(t, 1.5, got[3], 1e-6)
}

func TestRenderAfterClose(t *testing.T) {
	p := newTestPipeline(&recordingRenderer{}, false)
	p.Close()
	p.Close()
	_, err := p.Render(scene.New(), camera.New(45, 1, 5))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestGlowSpreadsPastObjectEdge(t *testing.T) {
	render := func(strength float64) *raster.FrameBuffer {
		s := scene.New()
		m := scene.NewBasicMaterial("glow", scene.Black)
		m.Emissive = scene.Color{R: 3, G: 3, B: 3}
		n := scene.NewMesh("glow", quad(1), m)
		classify.MarkGlow(n)
		classify.Apply(n, true)
		s.SetObject(n)

		p := New(Config{
			Width:    64,
			Height:   64,
			Bloom:    bloom.Params{Strength: strength, Radius: 0.4},
			Exposure: 1,
		}, nil)
		hdr, err := p.RenderHDR(s, camera.New(45, 1, 5))
		require.NoError(t, err)
		return hdr
	}

	lit := render(1.5)
	dark := render(0)

	center := lit.At(32, 32)
	assert.Greater(t, center[0], float32(3), "emissive plus glow at the center")

	outside := lit.At(32+14, 32)
	assert.Greater(t, outside[0], float32(0), "glow reaches past the quad")
	assert.Zero(t, dark.At(32+14, 32)[0], "no glow without strength")
}

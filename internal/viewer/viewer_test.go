package viewer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowview/internal/classify"
	"glowview/internal/ingest"
	"glowview/internal/scene"
	"glowview/internal/surface"
)

const squareSVG = `<svg><rect x="0" y="0" width="10" height="10" fill="#ffcc00"/></svg>`

func svgFetcher() ingest.Fetcher {
	return ingest.FetcherFunc(func(ctx context.Context, locator string) ([]byte, error) {
		if locator == "missing.svg" {
			return nil, errors.New("no such file")
		}
		return []byte(squareSVG), nil
	})
}

func newTestViewer(t *testing.T, w, h int, mutate func(*Options)) (*Viewer, *surface.Memory) {
	t.Helper()
	opts := DefaultOptions()
	opts.Fetcher = svgFetcher()
	if mutate != nil {
		mutate(&opts)
	}
	surf := surface.NewMemory(w, h)
	v, err := New(surf, opts)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v, surf
}

func loadSquare(t *testing.T, v *Viewer) *scene.Node {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, v.Await(ctx, v.Load(ingest.KindVector, "square.svg")))
	require.NotNil(t, v.Object())
	return v.Object()
}

func TestControllerRotationThreshold(t *testing.T) {
	var c Controller
	c.Down(0.10, 0.10)
	dx, dy, ok := c.Move(0.15, 0.12)
	assert.True(t, ok)
	assert.InDelta(t, 0.05, dx, 1e-12)
	assert.InDelta(t, 0.02, dy, 1e-12)

	c.Down(0.10, 0.10)
	_, _, ok = c.Move(0.50, 0.10)
	assert.False(t, ok)
	// the reference moved even though the jump was rejected
	dx, _, ok = c.Move(0.52, 0.10)
	assert.True(t, ok)
	assert.InDelta(t, 0.02, dx, 1e-12)

	c.Up()
	_, _, ok = c.Move(0.53, 0.10)
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	x, y := Normalize(0, 200, 400, 200)
	assert.InDelta(t, -1, x, 1e-12)
	assert.InDelta(t, 1, y, 1e-12)
	x, y = Normalize(200, 100, 400, 200)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
}

func TestSchedulerCoalesces(t *testing.T) {
	renders := 0
	s := NewScheduler(func() error { renders++; return nil })

	require.NoError(t, s.Flush())
	assert.Equal(t, 0, renders, "no render without a request")

	require.NoError(t, s.Turn(func() {
		s.Request()
		s.Request()
		require.NoError(t, s.Turn(func() { s.Request() }))
		assert.Equal(t, 0, renders, "nested turns defer to the outermost")
	}))
	assert.Equal(t, 1, renders)
	assert.Equal(t, 1, s.Frames())
	assert.False(t, s.Dirty())
}

func TestPointerDragRotatesObject(t *testing.T) {
	v, _ := newTestViewer(t, 200, 200, nil)
	obj := loadSquare(t, v)
	frames := v.Frames()

	// (0.10, 0.10) -> (0.15, 0.12) in normalized units
	v.PointerDown(110, 110)
	require.NoError(t, v.PointerMove(115, 112))
	assert.InDelta(t, 0.05*math.Pi, obj.Rotation[1], 1e-9)
	assert.InDelta(t, 0.02*math.Pi, obj.Rotation[0], 1e-9)
	assert.Equal(t, frames+1, v.Frames())
	v.PointerUp()

	// (0.10, 0.10) -> (0.50, 0.10) is a stale jump
	before := obj.Rotation
	v.PointerDown(110, 110)
	require.NoError(t, v.PointerMove(150, 110))
	assert.Equal(t, before, obj.Rotation)
	assert.Equal(t, frames+1, v.Frames())

	v.PointerLeave()
	require.NoError(t, v.PointerMove(151, 110))
	assert.Equal(t, before, obj.Rotation)
}

func TestPointerDragWithoutObject(t *testing.T) {
	v, _ := newTestViewer(t, 100, 100, nil)
	v.PointerDown(50, 50)
	require.NoError(t, v.PointerMove(51, 51))
	assert.Equal(t, 0, v.Frames())
}

func TestOrbitConsumesDrag(t *testing.T) {
	v, _ := newTestViewer(t, 200, 200, nil)
	obj := loadSquare(t, v)
	require.NoError(t, v.SetOrbitEnabled(true))
	pos := v.Camera().Position

	v.PointerDown(100, 100)
	require.NoError(t, v.PointerMove(105, 100))
	assert.Equal(t, 0.0, obj.Rotation[1])
	assert.NotEqual(t, pos, v.Camera().Position)
	assert.InDelta(t, 5, v.Camera().Distance(), 1e-9)
}

func TestStationaryPointerMoveRendersNothing(t *testing.T) {
	v, _ := newTestViewer(t, 40, 30, nil)
	obj := loadSquare(t, v)
	before := obj.Rotation

	v.PointerDown(20, 15)
	frames := v.Frames()
	for i := 0; i < 5; i++ {
		require.NoError(t, v.PointerMove(20, 15))
	}
	assert.Equal(t, frames, v.Frames())
	assert.Equal(t, before, obj.Rotation)
}

func TestZoomNeedsOrbit(t *testing.T) {
	v, _ := newTestViewer(t, 40, 30, nil)
	frames := v.Frames()
	require.NoError(t, v.Zoom(2))
	assert.InDelta(t, 5, v.Camera().Distance(), 1e-9)
	assert.Equal(t, frames, v.Frames())

	require.NoError(t, v.SetOrbitEnabled(true))
	require.NoError(t, v.Zoom(2))
	assert.InDelta(t, 10, v.Camera().Distance(), 1e-9)
	assert.InDelta(t, 10, v.Params().CameraDistance, 1e-9)
}

func TestBloomToggleRoundTrip(t *testing.T) {
	v, _ := newTestViewer(t, 40, 30, nil)
	obj := loadSquare(t, v)

	var meshes []*scene.Node
	obj.TraverseMeshes(func(n *scene.Node) { meshes = append(meshes, n) })
	require.NotEmpty(t, meshes)
	for _, n := range meshes {
		assert.True(t, classify.IsBloom(n))
	}

	require.NoError(t, v.SetBloomEnabled(false))
	for _, n := range meshes {
		assert.False(t, classify.IsBloom(n))
		assert.True(t, n.Layers.Has(scene.DefaultLayer))
	}
	require.NoError(t, v.SetBloomEnabled(true))
	for _, n := range meshes {
		assert.True(t, classify.IsBloom(n))
	}
	assert.False(t, classify.IsBloom(v.Scene().Background()))
}

func TestMutatorsClampAndRedrawOnce(t *testing.T) {
	v, _ := newTestViewer(t, 40, 30, nil)
	loadSquare(t, v)

	steps := []struct {
		name  string
		apply func() error
		check func()
	}{
		{"threshold", func() error { return v.SetBloomThreshold(1.5) }, func() {
			assert.Equal(t, 1.0, v.Params().BloomThreshold)
		}},
		{"distance", func() error { return v.SetCameraDistance(0) }, func() {
			assert.InDelta(t, 1.0, v.Camera().Distance(), 1e-12)
		}},
		{"distance step", func() error { return v.SetCameraDistance(7.123) }, func() {
			assert.InDelta(t, 7.12, v.Params().CameraDistance, 1e-9)
		}},
		{"strength", func() error { return v.SetBloomStrength(9) }, func() {
			assert.Equal(t, 5.0, v.Params().BloomStrength)
		}},
		{"radius", func() error { return v.SetBloomRadius(0.456) }, func() {
			assert.InDelta(t, 0.46, v.Params().BloomRadius, 1e-9)
		}},
		{"exposure", func() error { return v.SetExposure(0.5) }, func() {
			assert.InDelta(t, 0.0625, v.ToneExposure(), 1e-12)
		}},
		{"exposure low", func() error { return v.SetExposure(0) }, func() {
			assert.InDelta(t, 0.1, v.Params().Exposure, 1e-12)
		}},
		{"emissive", func() error { return v.SetEmissiveColor(scene.Color{R: 1}) }, func() {
			v.Object().TraverseMeshes(func(n *scene.Node) {
				assert.Equal(t, scene.Color{R: 1}, n.Material.Emissive)
			})
		}},
		{"bloom off", func() error { return v.SetBloomEnabled(false) }, func() {}},
	}
	for _, s := range steps {
		before := v.Frames()
		require.NoError(t, s.apply(), s.name)
		s.check()
		assert.Equal(t, before+1, v.Frames(), s.name)
	}
}

func TestExposureIsFourthPower(t *testing.T) {
	v, _ := newTestViewer(t, 8, 8, nil)
	require.NoError(t, v.SetExposure(1))
	assert.InDelta(t, 1.0, v.ToneExposure(), 1e-12)
	require.NoError(t, v.SetExposure(0.5))
	assert.InDelta(t, 0.0625, v.ToneExposure(), 1e-12)
}

func TestLastLoadWins(t *testing.T) {
	release := make(chan struct{})
	fetch := ingest.FetcherFunc(func(ctx context.Context, locator string) ([]byte, error) {
		if locator == "slow.svg" {
			<-release
		}
		return []byte(squareSVG), nil
	})
	v, _ := newTestViewer(t, 40, 30, func(o *Options) { o.Fetcher = fetch })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first := v.Load(ingest.KindVector, "slow.svg")
	second := v.Load(ingest.KindVector, "fast.svg")
	require.NoError(t, v.Await(ctx, second))
	obj := v.Object()
	require.NotNil(t, obj)

	close(release)
	first.Result()
	processed := 0
	require.Eventually(t, func() bool {
		n, _ := v.Poll()
		processed += n
		return processed >= 1
	}, 5*time.Second, 5*time.Millisecond)

	assert.Same(t, obj, v.Object())
	assert.ErrorIs(t, v.Await(ctx, first), ingest.ErrStaleLoad)
}

func TestEmissiveSetDuringLoadApplies(t *testing.T) {
	release := make(chan struct{})
	fetch := ingest.FetcherFunc(func(ctx context.Context, locator string) ([]byte, error) {
		<-release
		return []byte(squareSVG), nil
	})
	v, _ := newTestViewer(t, 40, 30, func(o *Options) { o.Fetcher = fetch })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ticket := v.Load(ingest.KindVector, "slow.svg")
	require.NoError(t, v.SetEmissiveColor(scene.White))
	close(release)
	require.NoError(t, v.Await(ctx, ticket))

	require.NotNil(t, v.Params().Emissive)
	assert.Equal(t, scene.White, *v.Params().Emissive)
	meshes := 0
	v.Object().TraverseMeshes(func(n *scene.Node) {
		meshes++
		assert.Equal(t, scene.White, n.Material.Emissive)
	})
	assert.Positive(t, meshes)
}

func TestLoadErrorClearedBySuccess(t *testing.T) {
	v, _ := newTestViewer(t, 40, 30, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	failed := v.Load(ingest.KindVector, "missing.svg")
	assert.ErrorIs(t, v.Await(ctx, failed), ingest.ErrIO)

	ok := v.Load(ingest.KindVector, "square.svg")
	require.NoError(t, v.Await(ctx, ok))
	assert.NoError(t, v.loadErr)
	assert.ErrorIs(t, v.Await(ctx, failed), ingest.ErrStaleLoad)
	assert.NoError(t, v.Await(ctx, ok))
}

func TestResizeRebuildsBackground(t *testing.T) {
	v, _ := newTestViewer(t, 40, 30, nil)
	before := v.Scene().Background()
	require.NotNil(t, before)
	oldW := planeWidth(before)

	require.NoError(t, v.Resize(80, 30))
	after := v.Scene().Background()
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.InDelta(t, 2*oldW, planeWidth(after), 1e-9)
}

func planeWidth(n *scene.Node) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range n.Geometry.Positions {
		lo = math.Min(lo, p[0])
		hi = math.Max(hi, p[0])
	}
	return hi - lo
}

func TestFailedLoadKeepsScene(t *testing.T) {
	var reported []ingest.LoadResult
	v, _ := newTestViewer(t, 40, 30, func(o *Options) {
		o.OnLoad = func(r ingest.LoadResult) { reported = append(reported, r) }
	})
	obj := loadSquare(t, v)
	frames := v.Frames()

	err := v.Await(context.Background(), v.Load(ingest.KindVector, "missing.svg"))
	assert.ErrorIs(t, err, ingest.ErrIO)
	assert.Same(t, obj, v.Object())
	assert.Equal(t, frames, v.Frames())
	require.Len(t, reported, 2)
	assert.Error(t, reported[1].Err)
}

func TestRenderPresentsFrame(t *testing.T) {
	v, surf := newTestViewer(t, 32, 24, func(o *Options) {
		o.Supersample = 2
		o.Background = scene.Color{R: 0.2, G: 0.2, B: 0.2}
	})
	loadSquare(t, v)

	frame := surf.Last()
	require.NotNil(t, frame)
	assert.Equal(t, 32, frame.Bounds().Dx())
	assert.Equal(t, 24, frame.Bounds().Dy())
	assert.Same(t, frame, v.Snapshot())
	assert.Equal(t, uint8(255), frame.NRGBAAt(0, 0).A)
}

func TestTransparentBackgroundHasNoPlane(t *testing.T) {
	v, surf := newTestViewer(t, 16, 16, func(o *Options) { o.Transparent = true })
	assert.Nil(t, v.Scene().Background())
	require.NoError(t, v.Redraw())
	assert.Equal(t, uint8(0), surf.Last().NRGBAAt(0, 0).A)
}

func TestCloseReleasesResources(t *testing.T) {
	v, _ := newTestViewer(t, 16, 16, nil)
	obj := loadSquare(t, v)
	var geoms []*scene.Geometry
	obj.TraverseMeshes(func(n *scene.Node) { geoms = append(geoms, n.Geometry) })

	v.Close()
	for _, g := range geoms {
		assert.True(t, g.Disposed())
	}
	assert.Nil(t, v.Object())
	assert.ErrorIs(t, v.SetBloomStrength(1), ErrClosed)
	assert.ErrorIs(t, v.Run(context.Background()), ErrClosed)
	v.Close()
}

func TestNewRejectsBadSurface(t *testing.T) {
	_, err := New(nil, DefaultOptions())
	assert.Error(t, err)
	_, err = New(surface.NewMemory(0, 10), DefaultOptions())
	assert.Error(t, err)
}

package ingest

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowview/internal/classify"
	"glowview/internal/mathutil"
	"glowview/internal/scene"
)

const tallSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <rect x="0" y="0" width="10" height="20" fill="#00ff00"/>
  <rect x="20" y="0" width="4" height="4" fill="#0000ff"/>
</svg>`

var testPlacement = Placement{FOV: 75, Aspect: 4.0 / 3.0, CameraToObject: 5, ObjectToBackground: 5}

func TestKindResolve(t *testing.T) {
	assert.Equal(t, KindVector, KindAuto.Resolve("logo.SVG"))
	assert.Equal(t, KindVector, KindAuto.Resolve("https://x.test/a.svg?v=2"))
	assert.Equal(t, KindMesh, KindAuto.Resolve("model.glb"))
	assert.Equal(t, KindMesh, KindMesh.Resolve("logo.svg"))

	k, err := ParseKind("SVG")
	require.NoError(t, err)
	assert.Equal(t, KindVector, k)
	_, err = ParseKind("obj")
	assert.Error(t, err)
}

func TestFitScaleUsesVisibleHeight(t *testing.T) {
	_, visH := VisibleSize(75, testPlacement.Aspect, 10)
	assert.InDelta(t, 2*math.Tan(mathutil.Deg2Rad(37.5))*10, visH, 1e-9)

	h := 2.0
	s := FitScale(mathutil.Vec3{1, h, 1}, testPlacement)
	assert.InDelta(t, visH/(3*h), s, 1e-9)
}

func TestFitScaleWideAssetStillUsesHeight(t *testing.T) {
	p := Placement{FOV: 75, Aspect: 1, CameraToObject: 5, ObjectToBackground: 5}
	visW, visH := VisibleSize(p.FOV, p.Aspect, p.Depth())
	assert.InDelta(t, visH/3, FitScale(mathutil.Vec3{10, 1, 2}, p), 1e-9)

	// Zero height falls back to the width.
	assert.InDelta(t, visW/30, FitScale(mathutil.Vec3{10, 0, 0}, p), 1e-9)
	assert.Equal(t, 1.0, FitScale(mathutil.Vec3{}, p))
}

func TestBuildVectorFitsAndTags(t *testing.T) {
	emissive := scene.Color{R: 0.2, G: 0.1}
	asset, err := Build(context.Background(), KindAuto, "art.svg", []byte(tallSVG), testPlacement,
		Options{Emissive: &emissive})
	require.NoError(t, err)
	require.NotNil(t, asset.Fit)
	assert.Equal(t, KindVector, asset.Kind)

	root := asset.Root
	assert.Equal(t, ObjectName, root.Name)
	assert.Equal(t, 2, root.MeshCount())
	assert.InDelta(t, -root.Scale[0], root.Scale[1], 1e-12)
	assert.InDelta(t, root.Scale[0], root.Scale[2], 1e-12)

	_, visH := VisibleSize(testPlacement.FOV, testPlacement.Aspect, testPlacement.Depth())
	assert.InDelta(t, visH/(3*20), asset.Fit.Scale, 1e-9)

	box := root.Bounds()
	c := box.Center()
	assert.InDelta(t, 0, c[0], 1e-9)
	assert.InDelta(t, 0, c[1], 1e-9)

	root.TraverseMeshes(func(n *scene.Node) {
		assert.True(t, n.Glow)
		assert.False(t, classify.IsBloom(n), "layers are assigned by classification, not ingestion")
		assert.Equal(t, emissive, n.Material.Emissive)
	})
}

func TestBuildDecodeErrors(t *testing.T) {
	_, err := Build(context.Background(), KindVector, "bad.svg", []byte("<nope/>"), testPlacement, Options{})
	assert.ErrorIs(t, err, ErrDecode)
	_, err = Build(context.Background(), KindMesh, "bad.glb", []byte("garbage"), testPlacement, Options{})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestLoaderLastLoadWins(t *testing.T) {
	release := make(chan struct{})
	fetch := FetcherFunc(func(ctx context.Context, locator string) ([]byte, error) {
		if locator == "slow.svg" {
			<-release
		}
		return []byte(tallSVG), nil
	})
	l := NewLoader(Options{Fetcher: fetch})

	first := l.Load(context.Background(), KindAuto, "slow.svg", testPlacement)
	second := l.Load(context.Background(), KindAuto, "fast.svg", testPlacement)
	assert.Greater(t, second.Generation(), first.Generation())

	res := second.Result()
	require.NoError(t, l.Accept(res))
	require.NotNil(t, res.Asset)
	assert.Equal(t, "fast.svg", res.Locator)

	close(release)
	stale := first.Result()
	assert.ErrorIs(t, l.Accept(stale), ErrStaleLoad)
}

func TestLoaderStaleAssetDisposed(t *testing.T) {
	l := NewLoader(Options{Fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) {
		return []byte(tallSVG), nil
	})})
	first := l.Load(context.Background(), KindVector, "a.svg", testPlacement)
	res := first.Result()
	require.NoError(t, res.Err)

	l.Load(context.Background(), KindVector, "b.svg", testPlacement)
	assert.ErrorIs(t, l.Accept(res), ErrStaleLoad)
	res.Asset.Root.TraverseMeshes(func(n *scene.Node) {
		assert.True(t, n.Geometry.Disposed())
	})
}

func TestLoaderReportsIOError(t *testing.T) {
	boom := errors.New("unreachable")
	l := NewLoader(Options{Fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, boom
	})})
	res, err := l.Load(context.Background(), KindMesh, "x.glb", testPlacement).Wait(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, l.Accept(res), ErrIO)
	assert.ErrorIs(t, res.Err, boom)
}

func TestDefaultFetcher(t *testing.T) {
	ctx := context.Background()
	f := DefaultFetcher{}

	data, err := f.Fetch(ctx, "data:text/plain;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	path := filepath.Join(t.TempDir(), "a.svg")
	require.NoError(t, os.WriteFile(path, []byte(tallSVG), 0o644))
	data, err = f.Fetch(ctx, "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, tallSVG, string(data))
	assert.Equal(t, filepath.Dir(path), BaseDir(path))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	data, err = f.Fetch(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
	_, err = f.Fetch(ctx, srv.URL+"/missing")
	assert.Error(t, err)
	assert.Equal(t, "", BaseDir(srv.URL+"/ok"))
}

func TestDefaultFetcherRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789abcdef"))
	}))
	defer srv.Close()
	ctx := context.Background()

	data, err := DefaultFetcher{MaxSize: 16}.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Len(t, data, 16)

	_, err = DefaultFetcher{MaxSize: 15}.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, err, ErrIO)

	l := NewLoader(Options{Fetcher: DefaultFetcher{MaxSize: 4}})
	res, err := l.Load(ctx, KindVector, srv.URL+"/a.svg", testPlacement).Wait(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Accept(res), ErrIO)
	assert.ErrorIs(t, res.Err, ErrTooLarge)
}

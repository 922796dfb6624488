// Package viewer ties ingestion, the selective bloom pipeline and pointer
// interaction into one viewer instance bound to an output surface.
//
// A Viewer is owned by one goroutine. Mutators and pointer handlers run
// synchronously on it; asset loads run in the background and are applied
// when the owner drains events with Run, Poll or Await.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"glowview/internal/bloom"
	"glowview/internal/camera"
	"glowview/internal/classify"
	"glowview/internal/ingest"
	"glowview/internal/logx"
	"glowview/internal/mathutil"
	"glowview/internal/pipeline"
	"glowview/internal/postprocess"
	"glowview/internal/scene"
)

// ErrClosed is returned by operations on a closed viewer.
var ErrClosed = errors.New("viewer: closed")

// Surface is the output attachment frames are presented to.
type Surface interface {
	Size() (width, height int)
	Present(frame *image.NRGBA) error
}

// eventQueueSize bounds the number of undelivered load completions.
const eventQueueSize = 16

// Viewer is one viewer instance.
type Viewer struct {
	surface Surface
	opts    Options

	scene      *scene.Scene
	cam        *camera.Camera
	orbit      *camera.Orbit
	pipe       *pipeline.Pipeline
	loader     *ingest.Loader
	sched      *Scheduler
	controller Controller

	params Params
	width  int
	height int

	events  chan func()
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	settled uint64
	loadErr error // outcome of the load at generation settled

	last   *image.NRGBA
	closed bool
}

// Params is a snapshot of the live render parameters.
type Params struct {
	BloomEnabled   bool
	Emissive       *scene.Color
	BloomThreshold float64
	BloomStrength  float64
	BloomRadius    float64
	Exposure       float64 // control value; tone exposure is Exposure⁴
	CameraDistance float64
	OrbitEnabled   bool
}

// New builds a viewer for surface. When opts.Locator is set the asset load
// starts immediately; drain events to apply it.
func New(surface Surface, opts Options) (*Viewer, error) {
	if surface == nil {
		return nil, fmt.Errorf("viewer: nil surface")
	}
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("viewer: invalid surface size %dx%d", w, h)
	}
	opts = opts.normalize()

	v := &Viewer{
		surface: surface,
		opts:    opts,
		scene:   scene.New(),
		width:   w,
		height:  h,
		events:  make(chan func(), eventQueueSize),
		done:    make(chan struct{}),
		params: Params{
			BloomEnabled:   true,
			Emissive:       opts.Emissive,
			BloomThreshold: opts.BloomThreshold,
			BloomStrength:  opts.BloomStrength,
			BloomRadius:    opts.BloomRadius,
			Exposure:       opts.Exposure,
			CameraDistance: opts.CameraToObject,
		},
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())

	v.cam = camera.New(opts.FOV, float64(w)/float64(h), opts.CameraToObject)
	v.orbit = camera.NewOrbit(v.cam)
	v.orbit.OnChange(v.orbitChanged)

	ss := opts.Supersample
	v.pipe = pipeline.New(pipeline.Config{
		Width:       w * ss,
		Height:      h * ss,
		Bloom:       bloom.Params{Strength: opts.BloomStrength, Radius: opts.BloomRadius, Threshold: opts.BloomThreshold},
		Exposure:    toneExposure(opts.Exposure),
		Background:  opts.Background,
		Transparent: opts.Transparent,
	}, opts.Renderer)
	v.sched = NewScheduler(v.renderFrame)

	v.loader = ingest.NewLoader(ingest.Options{
		Fetcher:  opts.Fetcher,
		Textures: opts.Textures,
		Emissive: opts.Emissive,
	})

	if !opts.Transparent {
		v.scene.SetBackground(v.backgroundPlane())
	}

	if opts.Locator != "" {
		v.Load(opts.Kind, opts.Locator)
	}
	logx.Logger().Info("viewer created", "width", w, "height", h, "supersample", ss)
	return v, nil
}

// orbitChanged requests a redraw for every applied orbit move.
func (v *Viewer) orbitChanged() {
	if v.sched != nil {
		v.sched.Request()
	}
}

// backgroundPlane is an unlit quad filling the view at the background depth.
func (v *Viewer) backgroundPlane() *scene.Node {
	depth := v.opts.CameraToObject + v.opts.ObjectToBackground
	w, h := v.cam.VisibleSize(depth)
	g := &scene.Geometry{}
	g.Positions = append(g.Positions,
		mathutil.Vec3{-w / 2, -h / 2, 0},
		mathutil.Vec3{w / 2, -h / 2, 0},
		mathutil.Vec3{w / 2, h / 2, 0},
		mathutil.Vec3{-w / 2, h / 2, 0},
	)
	g.Indices = []uint32{0, 1, 2, 0, 2, 3}
	plane := scene.NewMesh("background", g, scene.NewBasicMaterial("background", v.opts.Background))
	plane.Position = mathutil.Vec3{0, 0, -v.opts.ObjectToBackground}
	return plane
}

// placement snapshots the camera configuration for fitting a new asset.
func (v *Viewer) placement() ingest.Placement {
	return ingest.Placement{
		FOV:                v.cam.FOV,
		Aspect:             v.cam.Aspect,
		CameraToObject:     v.opts.CameraToObject,
		ObjectToBackground: v.opts.ObjectToBackground,
	}
}

// Load starts loading an asset, superseding any load in flight. The result
// is applied on the viewer's goroutine by Run, Poll or Await.
func (v *Viewer) Load(kind ingest.Kind, locator string) *ingest.Ticket {
	t := v.loader.Load(v.ctx, kind, locator, v.placement())
	go func() {
		select {
		case <-t.Done():
		case <-v.done:
			return
		}
		v.Post(func() { v.applyLoad(t.Result()) })
	}()
	return t
}

// Post queues fn to run as one turn on the viewer's goroutine. It is safe
// to call from any goroutine and is dropped once the viewer is closed.
func (v *Viewer) Post(fn func()) {
	select {
	case v.events <- fn:
	case <-v.done:
	}
}

func (v *Viewer) applyLoad(res ingest.LoadResult) {
	err := v.loader.Accept(res)
	if errors.Is(err, ingest.ErrStaleLoad) {
		return
	}
	v.settled = res.Generation
	v.loadErr = err
	if err != nil {
		logx.Logger().Warn("asset load failed", "locator", res.Locator, "err", err)
	} else {
		root := res.Asset.Root
		v.scene.SetObject(root)
		// The color may have changed while the asset was decoding.
		if e := v.params.Emissive; e != nil && !e.IsBlack() {
			ingest.OverrideEmissive(root, *e)
		}
		classify.Apply(root, v.params.BloomEnabled)
		logx.Logger().Info("asset loaded", "kind", res.Kind, "locator", res.Locator,
			"meshes", root.MeshCount())
		v.sched.Request()
	}
	if v.opts.OnLoad != nil {
		v.opts.OnLoad(res)
	}
}

// Run processes events until ctx is done or the viewer is closed.
func (v *Viewer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-v.done:
			return ErrClosed
		case fn := <-v.events:
			if err := v.sched.Turn(fn); err != nil {
				return err
			}
		}
	}
}

// Poll processes pending events without blocking and returns how many ran.
func (v *Viewer) Poll() (int, error) {
	n := 0
	for {
		select {
		case fn := <-v.events:
			n++
			if err := v.sched.Turn(fn); err != nil {
				return n, err
			}
		default:
			return n, nil
		}
	}
}

// Await processes events until the load behind t has been applied or has
// failed, and returns its error. A superseded ticket returns ErrStaleLoad.
func (v *Viewer) Await(ctx context.Context, t *ingest.Ticket) error {
	for {
		if v.closed {
			return ErrClosed
		}
		if t.Generation() < v.loader.Latest() {
			return ingest.ErrStaleLoad
		}
		if v.settled >= t.Generation() {
			return v.loadErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-v.events:
			if err := v.sched.Turn(fn); err != nil {
				return err
			}
		}
	}
}

// Redraw requests one frame and renders it.
func (v *Viewer) Redraw() error {
	return v.do(func() {})
}

// do runs fn as one turn that requests a redraw.
func (v *Viewer) do(fn func()) error {
	if v.closed {
		return ErrClosed
	}
	return v.sched.Turn(func() {
		fn()
		v.sched.Request()
	})
}

func (v *Viewer) renderFrame() error {
	start := time.Now()
	img, err := v.pipe.Render(v.scene, v.cam)
	if err != nil {
		return err
	}
	if v.opts.Supersample > 1 {
		img = postprocess.Downsample(img, v.width, v.height)
	}
	v.last = img
	logx.Logger().Debug("frame", "n", v.sched.Frames(), "elapsed", time.Since(start))
	return v.surface.Present(img)
}

// Resize adapts the render targets and camera aspect to a new surface size.
func (v *Viewer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("viewer: invalid size %dx%d", w, h)
	}
	return v.do(func() {
		v.width, v.height = w, h
		v.cam.Aspect = float64(w) / float64(h)
		v.pipe.Resize(w*v.opts.Supersample, h*v.opts.Supersample)
		if !v.opts.Transparent {
			v.scene.SetBackground(v.backgroundPlane())
		}
	})
}

// Snapshot returns the most recently presented frame, or nil.
func (v *Viewer) Snapshot() *image.NRGBA { return v.last }

// Frames returns how many frames have been rendered.
func (v *Viewer) Frames() int { return v.sched.Frames() }

// Scheduler exposes the redraw scheduler.
func (v *Viewer) Scheduler() *Scheduler { return v.sched }

// Scene returns the scene graph.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the camera.
func (v *Viewer) Camera() *camera.Camera { return v.cam }

// Object returns the loaded object root, or nil.
func (v *Viewer) Object() *scene.Node { return v.scene.Object() }

// Params returns the current render parameters.
func (v *Viewer) Params() Params {
	p := v.params
	p.OrbitEnabled = v.orbit.Enabled
	return p
}

// ToneExposure returns the exposure handed to the tone mapper.
func (v *Viewer) ToneExposure() float64 { return v.pipe.Exposure() }

// Close cancels loads and releases the scene and render targets. The
// viewer must not be used afterwards. Closing twice is harmless.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.loader.Cancel()
	v.cancel()
	close(v.done)
	v.scene.Dispose()
	v.pipe.Close()
	v.last = nil
	logx.Logger().Info("viewer closed", "frames", v.sched.Frames())
}

func toneExposure(v float64) float64 { return math.Pow(v, 4) }

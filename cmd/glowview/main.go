// Command glowview opens an interactive selective-bloom viewer window for a
// glTF/GLB mesh or an SVG drawing.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"glowview/internal/config"
	"glowview/internal/ingest"
	"glowview/internal/logx"
	"glowview/internal/scene"
	"glowview/internal/surface"
	"glowview/internal/texture"
	"glowview/internal/viewer"
	"glowview/internal/watch"
)

func init() {
	// raylib must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configFile := flag.String("config", "", "Path to a config file (.json or .toml)")
	asset := flag.String("asset", "", "Asset path or URL (.svg, .gltf, .glb)")
	kind := flag.String("kind", "", "Asset kind: mesh, vector or auto")
	width := flag.Int("width", 0, "Window width (default: 800)")
	height := flag.Int("height", 0, "Window height (default: 600)")
	emissive := flag.String("emissive", "", "Emissive color override")
	background := flag.String("bg", "", "Background color")
	orbit := flag.Bool("orbit", false, "Start with orbit controls enabled")
	live := flag.Bool("watch", false, "Reload the asset when the file changes")
	snapDir := flag.String("snapshots", ".", "Directory for S-key snapshots")
	verbose := flag.Bool("v", false, "Log progress")
	flag.Parse()

	if *verbose {
		logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *asset == "" && flag.NArg() > 0 {
		*asset = flag.Arg(0)
	}
	cfg.Resolve(config.Flags{
		Asset:      *asset,
		Kind:       *kind,
		Background: *background,
		Emissive:   *emissive,
		Width:      *width,
		Height:     *height,
	})
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts.Textures = texture.NewCache(nil)

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), "glowview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	win := newWindowSurface(cfg.Width, cfg.Height)
	defer win.unload()

	v, err := viewer.New(win, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer v.Close()
	if *orbit {
		v.SetOrbitEnabled(true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *live && opts.Locator != "" {
		startWatch(ctx, v, opts.Kind, opts.Locator)
	}

	app := &app{viewer: v, surface: win, snapDir: *snapDir}
	for !rl.WindowShouldClose() {
		app.update()
		if _, err := v.Poll(); err != nil {
			logx.Logger().Error("frame failed", "err", err)
		}
		rl.BeginDrawing()
		win.draw()
		rl.EndDrawing()
	}
}

// startWatch reloads locator on every change of the file behind it.
func startWatch(ctx context.Context, v *viewer.Viewer, kind ingest.Kind, locator string) {
	if strings.Contains(locator, "://") && !strings.HasPrefix(locator, "file://") {
		logx.Logger().Warn("watch needs a local asset", "locator", locator)
		return
	}
	path, err := ingest.LocalPath(locator)
	if err != nil {
		logx.Logger().Warn("watch needs a local asset", "locator", locator, "err", err)
		return
	}
	w, err := watch.New(path)
	if err != nil {
		logx.Logger().Warn("watch failed", "path", path, "err", err)
		return
	}
	go func() {
		defer w.Close()
		w.Run(ctx, func() {
			v.Post(func() { v.Load(kind, locator) })
		})
	}()
}

// windowSurface keeps the last presented frame in a raylib texture.
type windowSurface struct {
	w, h    int
	tex     rl.Texture2D
	loaded  bool
	pending []byte
	buf     []rl.Color
}

func newWindowSurface(w, h int) *windowSurface {
	return &windowSurface{w: w, h: h}
}

func (s *windowSurface) Size() (int, int) { return s.w, s.h }

func (s *windowSurface) Present(frame *image.NRGBA) error {
	s.pending = frame.Pix
	return nil
}

// draw uploads a pending frame and blits the texture.
func (s *windowSurface) draw() {
	rl.ClearBackground(rl.Black)
	if s.pending != nil {
		s.upload(s.pending)
		s.pending = nil
	}
	if s.loaded {
		rl.DrawTexture(s.tex, 0, 0, rl.White)
	}
}

func (s *windowSurface) upload(pix []byte) {
	n := s.w * s.h
	if len(pix) < n*4 {
		return
	}
	if len(s.buf) != n {
		s.buf = make([]rl.Color, n)
	}
	for i := range s.buf {
		p := pix[i*4 : i*4+4 : i*4+4]
		s.buf[i] = rl.NewColor(p[0], p[1], p[2], p[3])
	}
	if !s.loaded {
		img := rl.GenImageColor(s.w, s.h, rl.Blank)
		s.tex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		s.loaded = true
	}
	rl.UpdateTexture(s.tex, s.buf)
}

func (s *windowSurface) resize(w, h int) {
	s.unload()
	s.w, s.h = w, h
	s.pending = nil
	s.buf = nil
}

func (s *windowSurface) unload() {
	if s.loaded {
		rl.UnloadTexture(s.tex)
		s.loaded = false
	}
}

// app maps window input onto viewer controls.
type app struct {
	viewer  *viewer.Viewer
	surface *windowSurface
	snapDir string
	inside  bool
}

func (a *app) update() {
	v := a.viewer
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		a.surface.resize(w, h)
		if err := v.Resize(w, h); err != nil {
			logx.Logger().Warn("resize failed", "err", err)
		}
	}

	mPos := rl.GetMousePosition()
	x, y := float64(mPos.X), float64(mPos.Y)
	onScreen := rl.IsCursorOnScreen()
	if a.inside && !onScreen {
		v.PointerLeave()
	}
	a.inside = onScreen
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		v.PointerDown(x, y)
	}
	if d := rl.GetMouseDelta(); rl.IsMouseButtonDown(rl.MouseLeftButton) && (d.X != 0 || d.Y != 0) {
		v.PointerMove(x, y)
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		v.PointerUp()
	}
	p := v.Params()
	if wheel := float64(rl.GetMouseWheelMove()); wheel != 0 {
		if p.OrbitEnabled {
			v.Zoom(1 - wheel*0.1)
		} else {
			v.SetCameraDistance(p.CameraDistance * (1 - wheel*0.1))
		}
		p = v.Params()
	}

	switch {
	case rl.IsKeyPressed(rl.KeyB):
		v.SetBloomEnabled(!p.BloomEnabled)
	case rl.IsKeyPressed(rl.KeyEqual):
		v.SetBloomStrength(p.BloomStrength + 0.1)
	case rl.IsKeyPressed(rl.KeyMinus):
		v.SetBloomStrength(p.BloomStrength - 0.1)
	case rl.IsKeyPressed(rl.KeyRightBracket):
		v.SetBloomRadius(p.BloomRadius + 0.05)
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		v.SetBloomRadius(p.BloomRadius - 0.05)
	case rl.IsKeyPressed(rl.KeyApostrophe):
		v.SetBloomThreshold(p.BloomThreshold + 0.05)
	case rl.IsKeyPressed(rl.KeySemicolon):
		v.SetBloomThreshold(p.BloomThreshold - 0.05)
	case rl.IsKeyPressed(rl.KeyPeriod):
		v.SetExposure(p.Exposure + 0.05)
	case rl.IsKeyPressed(rl.KeyComma):
		v.SetExposure(p.Exposure - 0.05)
	case rl.IsKeyPressed(rl.KeyO):
		v.SetOrbitEnabled(!p.OrbitEnabled)
	case rl.IsKeyPressed(rl.KeyE):
		if p.Emissive == nil || p.Emissive.IsBlack() {
			v.SetEmissiveColor(scene.White)
		} else {
			v.SetEmissiveColor(scene.Black)
		}
	case rl.IsKeyPressed(rl.KeyS):
		a.snapshot()
	}
}

func (a *app) snapshot() {
	img := a.viewer.Snapshot()
	if img == nil {
		return
	}
	path := filepath.Join(a.snapDir, fmt.Sprintf("glowview-%s.webp", time.Now().Format("20060102-150405")))
	if err := surface.WriteWebP(path, img); err != nil {
		logx.Logger().Error("snapshot failed", "err", err)
		return
	}
	logx.Logger().Info("snapshot written", "path", path)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"glowview/internal/batch"
	"glowview/internal/config"
	"glowview/internal/logx"
	"glowview/internal/surface"
	"glowview/internal/texture"
	"glowview/internal/viewer"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a config file (.json or .toml)")
	asset := flag.String("asset", "", "Asset path or URL (.svg, .gltf, .glb)")
	kind := flag.String("kind", "", "Asset kind: mesh, vector or auto (default: by extension)")
	output := flag.String("out", "", "Output WebP file (default: <output-dir>/<asset>.webp)")
	dir := flag.String("dir", "", "Render every asset under this directory (batch mode)")
	outputDir := flag.String("output-dir", "", "Output directory")
	background := flag.String("bg", "", "Background color (default: #000000)")
	transparent := flag.Bool("transparent", false, "Transparent background")
	emissive := flag.String("emissive", "", "Emissive color override (default: none)")
	strength := flag.Float64("strength", 0, "Bloom strength 0-5 (default: 1.5)")
	radius := flag.Float64("radius", 0, "Bloom radius 0-1 (default: 0.4)")
	threshold := flag.Float64("threshold", 0, "Bloom threshold 0-1 (default: 0)")
	exposure := flag.Float64("exposure", 0, "Exposure 0.1-2, applied to the fourth power (default: 1)")
	distance := flag.Float64("distance", 0, "Camera to object distance 1-100 (default: 5)")
	bgDistance := flag.Float64("bg-distance", 0, "Object to background distance (default: 5)")
	width := flag.Int("width", 0, "Frame width (default: 800)")
	height := flag.Int("height", 0, "Frame height (default: 600)")
	supersample := flag.Int("supersample", 0, "Supersampling factor 1-4 (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines in batch mode (default: NumCPU)")
	thumbnail := flag.Int("thumbnail", 0, "Also write square thumbnails of this size in batch mode")
	verbose := flag.Bool("v", false, "Log progress")
	debug := flag.Bool("debug", false, "Log per-frame detail")

	flag.Parse()

	if *verbose || *debug {
		level := slog.LevelInfo
		if *debug {
			level = slog.LevelDebug
		}
		logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file; floats only when given, since zero is valid
	flags := config.Flags{
		Asset:       *asset,
		Kind:        *kind,
		Output:      *output,
		OutputDir:   *outputDir,
		Background:  *background,
		Emissive:    *emissive,
		Width:       *width,
		Height:      *height,
		Supersample: *supersample,
		Workers:     *workers,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transparent":
			flags.Transparent = transparent
		case "strength":
			flags.BloomStrength = strength
		case "radius":
			flags.BloomRadius = radius
		case "threshold":
			flags.BloomThreshold = threshold
		case "exposure":
			flags.Exposure = exposure
		case "distance":
			flags.CameraToObject = distance
		case "bg-distance":
			flags.ObjectToBackground = bgDistance
		}
	})
	cfg.Resolve(flags)

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts.Textures = texture.NewCache(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *dir != "" {
		os.Exit(runBatch(ctx, cfg, opts, *dir, *thumbnail))
	}
	if cfg.Asset == "" {
		fmt.Fprintln(os.Stderr, "Error: no asset. Use -asset, -dir or a config file.")
		os.Exit(2)
	}
	os.Exit(runSingle(ctx, cfg, opts))
}

func runSingle(ctx context.Context, cfg config.Config, opts viewer.Options) int {
	start := time.Now()
	surf := surface.NewWebP(cfg.Output, cfg.Width, cfg.Height)
	locator := opts.Locator
	opts.Locator = ""

	v, err := viewer.New(surf, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer v.Close()

	if err := v.Await(ctx, v.Load(opts.Kind, locator)); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", locator, err)
		return 1
	}
	fmt.Printf("%s -> %s (%dx%d, %d meshes) in %.2fs\n",
		locator, cfg.Output, cfg.Width, cfg.Height, v.Object().MeshCount(), time.Since(start).Seconds())
	return 0
}

func runBatch(ctx context.Context, cfg config.Config, opts viewer.Options, dir string, thumbnail int) int {
	jobs, err := batch.Discover(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(jobs) == 0 {
		fmt.Println("No assets to render.")
		return 0
	}
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "renders"
	}

	fmt.Printf("glowview batch render -> WebP\n")
	fmt.Printf("Assets: %d, Workers: %d, Frame: %dx%d\n", len(jobs), cfg.Workers, cfg.Width, cfg.Height)
	fmt.Printf("Output: %s\n", outDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(ctx, batch.Config{
		Options:   opts,
		Width:     cfg.Width,
		Height:    cfg.Height,
		OutputDir: outDir,
		Workers:   cfg.Workers,
		Timeout:   time.Minute,

		Thumbnail:     thumbnail,
		ThumbnailFill: 0.9,

		Progress: func(done, total int, rate float64) {
			fmt.Printf("  [%d/%d] %.1f assets/sec\n", done, total, rate)
		},
	}, jobs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	// Count results
	success := 0
	var failures []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failures = append(failures, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		for _, f := range failures[:min(20, len(failures))] {
			fmt.Printf("  %s: %s\n", f.Asset, f.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(outDir, "manifest.json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failures) > 0 {
		return 1
	}
	return 0
}

// Package batch renders many assets to WebP files in parallel. Each worker
// owns one viewer, so no render state is shared between goroutines.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"glowview/internal/ingest"
	"glowview/internal/logx"
	"glowview/internal/postprocess"
	"glowview/internal/surface"
	"glowview/internal/viewer"
)

// Config holds the shared settings for a batch run.
type Config struct {
	Options   viewer.Options // per-viewer construction parameters; Locator is ignored
	Width     int
	Height    int
	OutputDir string
	Workers   int
	Timeout   time.Duration // per asset; zero means no limit

	// Thumbnail, when positive, also writes a size×size image cropped to
	// the visible content next to each output.
	Thumbnail     int
	ThumbnailFill float64

	// Progress, when set, is called periodically with the number of
	// finished jobs.
	Progress func(done, total int, rate float64)
}

// Job is one asset to render.
type Job struct {
	Asset  string
	Kind   ingest.Kind
	Output string // relative to Config.OutputDir unless absolute
}

// Result holds the outcome of one job.
type Result struct {
	Asset     string
	Output    string
	Thumbnail string
	Kind      string
	Meshes    int
	Success   bool
	Error     string
}

// Discover walks dir for .svg, .gltf and .glb files and returns one job per
// asset, mirroring the directory layout in the output names.
func Discover(dir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg", ".gltf", ".glb":
		default:
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{
			Asset:  path,
			Kind:   ingest.KindAuto,
			Output: strings.TrimSuffix(rel, filepath.Ext(rel)) + ".webp",
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: walk %s: %w", dir, err)
	}
	return jobs, nil
}

// Run processes all jobs using a worker pool. Results are in job order.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	workers := max(1, min(cfg.Workers, total))
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && cfg.Progress != nil {
					rate := float64(p) / time.Since(start).Seconds()
					cfg.Progress(int(p), total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wk, err := newWorker(cfg)
			if err != nil {
				for idx := range jobChan {
					results[idx] = failed(jobs[idx], cfg, err)
					processed.Add(1)
				}
				return
			}
			defer wk.close()
			for idx := range jobChan {
				results[idx] = wk.process(ctx, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	logx.Logger().Info("batch finished", "jobs", total, "elapsed", time.Since(start))
	return results
}

type worker struct {
	cfg  Config
	surf *surface.Memory
	v    *viewer.Viewer
}

func newWorker(cfg Config) (*worker, error) {
	opts := cfg.Options
	opts.Locator = ""
	surf := surface.NewMemory(cfg.Width, cfg.Height)
	v, err := viewer.New(surf, opts)
	if err != nil {
		return nil, fmt.Errorf("batch: viewer: %w", err)
	}
	return &worker{cfg: cfg, surf: surf, v: v}, nil
}

func (w *worker) close() { w.v.Close() }

func (w *worker) process(ctx context.Context, job Job) Result {
	res := Result{Asset: job.Asset, Output: outputPath(w.cfg, job), Kind: job.Kind.Resolve(job.Asset).String()}

	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	// A successful load renders once before Await returns.
	if err := w.v.Await(ctx, w.v.Load(job.Kind, job.Asset)); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Meshes = w.v.Object().MeshCount()

	frame := w.v.Snapshot()
	if err := surface.WriteWebP(res.Output, frame); err != nil {
		res.Error = err.Error()
		return res
	}
	if w.cfg.Thumbnail > 0 {
		thumb := strings.TrimSuffix(res.Output, filepath.Ext(res.Output)) + ".thumb.webp"
		if err := surface.WriteWebP(thumb, postprocess.Thumbnail(frame, w.cfg.Thumbnail, w.cfg.ThumbnailFill)); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Thumbnail = thumb
	}
	res.Success = true
	return res
}

func outputPath(cfg Config, job Job) string {
	out := job.Output
	if out == "" {
		base := filepath.Base(job.Asset)
		out = strings.TrimSuffix(base, filepath.Ext(base)) + ".webp"
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(cfg.OutputDir, out)
}

func failed(job Job, cfg Config, err error) Result {
	return Result{
		Asset:  job.Asset,
		Output: outputPath(cfg, job),
		Kind:   job.Kind.Resolve(job.Asset).String(),
		Error:  err.Error(),
	}
}

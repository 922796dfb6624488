package ingest

import (
	"context"
	"fmt"
	"sync"

	"glowview/internal/logx"
	"glowview/internal/scene"
)

// LoadResult is the outcome of one load.
type LoadResult struct {
	Generation uint64
	Kind       Kind
	Locator    string
	Asset      *Asset
	Err        error
}

// Ticket tracks one in-flight load.
type Ticket struct {
	gen     uint64
	kind    Kind
	locator string
	done    chan struct{}
	res     LoadResult
}

// Generation returns the load's generation id.
func (t *Ticket) Generation() uint64 { return t.gen }

// Done is closed when the result is available.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Result blocks until the load finishes and returns its outcome.
func (t *Ticket) Result() LoadResult {
	<-t.done
	return t.res
}

// Wait is Result bounded by ctx.
func (t *Ticket) Wait(ctx context.Context) (LoadResult, error) {
	select {
	case <-t.done:
		return t.res, nil
	case <-ctx.Done():
		return LoadResult{}, ctx.Err()
	}
}

// Loader runs asynchronous loads. Each Load supersedes the previous one:
// the previous load is cancelled and its result, if it still arrives, is
// rejected by Accept.
type Loader struct {
	opts Options

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewLoader returns a loader using opts for every load.
func NewLoader(opts Options) *Loader {
	if opts.Fetcher == nil {
		opts.Fetcher = DefaultFetcher{}
	}
	return &Loader{opts: opts}
}

// SetEmissive changes the emissive override applied to later loads.
func (l *Loader) SetEmissive(c *scene.Color) {
	l.mu.Lock()
	l.opts.Emissive = c
	l.mu.Unlock()
}

// Load starts fetching and decoding locator on a new goroutine.
func (l *Loader) Load(ctx context.Context, kind Kind, locator string, place Placement) *Ticket {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	opts := l.opts
	t := &Ticket{
		gen:     l.gen,
		kind:    kind.Resolve(locator),
		locator: locator,
		done:    make(chan struct{}),
	}
	l.mu.Unlock()

	go func() {
		defer close(t.done)
		t.res = l.run(ctx, t, place, opts)
	}()
	return t
}

func (l *Loader) run(ctx context.Context, t *Ticket, place Placement, opts Options) LoadResult {
	res := LoadResult{Generation: t.gen, Kind: t.kind, Locator: t.locator}
	data, err := opts.Fetcher.Fetch(ctx, t.locator)
	if err != nil {
		res.Err = fmt.Errorf("ingest: %s: %w: %w", t.locator, ErrIO, err)
		return res
	}
	asset, err := Build(ctx, t.kind, t.locator, data, place, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Asset = asset
	return res
}

// Latest returns the generation of the most recent Load.
func (l *Loader) Latest() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Accept reports whether res may be applied. A result from a superseded
// generation returns ErrStaleLoad and its object graph is disposed.
func (l *Loader) Accept(res LoadResult) error {
	if res.Generation != l.Latest() {
		logx.Logger().Debug("ingest: discarding stale load",
			"generation", res.Generation, "locator", res.Locator)
		if res.Asset != nil && res.Asset.Root != nil {
			res.Asset.Root.Dispose()
		}
		return ErrStaleLoad
	}
	return res.Err
}

// Cancel aborts the in-flight load, if any, and makes its result stale.
func (l *Loader) Cancel() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.mu.Unlock()
}

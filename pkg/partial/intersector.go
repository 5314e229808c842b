package partial

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/beetlebugorg/partialrender/pkg/logger"
)

// Intersector answers viewport queries with cached or freshly rendered partials.
//
// For each query it computes the grid tiles covering the viewport, takes the
// ones already in the Store, renders the rest through the Renderer, and
// returns them with the world-to-screen transform for the viewport.
//
// At most one backend render per tile is in flight at any time: concurrent
// queries that miss the same tile wait for the same render, including queries
// from other intersectors sharing the Store. Renders run
// outside the Store lock and are detached from the requesting caller's
// cancellation, bounded by Options.RenderTimeout instead.
//
// Example:
//
//	opts := partial.DefaultOptions()
//	opts.GridStep = 50
//	ix, err := partial.New(renderer, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ix.Close()
//
//	env := partial.NewEnvelope(0, 0, 100, 100, opts.CRS)
//	result, err := ix.IntersectEnvelope(ctx, env, partial.ScreenSize{Width: 800, Height: 800})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Partials() {
//	    draw(p.Image(), result.Transform().PartialRect(p))
//	}
type Intersector struct {
	renderer Renderer
	store    *Store
	grid     Grid
	opts     Options
	log      logger.Logger

	limiter *rate.Limiter

	// Background dispatch (ModeAsync and Close)
	ctx     context.Context
	cancel  context.CancelFunc
	sem     chan struct{}
	updates chan TileKey
	mu      sync.Mutex
	pending map[TileKey]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// New creates an intersector with its own Store of Options.MaxCachedTiles tiles.
func New(renderer Renderer, opts Options) (*Intersector, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	store, err := NewStore(opts.MaxCachedTiles, WithStoreLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	return newIntersector(renderer, store, opts)
}

// NewWithStore creates an intersector backed by an existing Store, so several
// viewers can share one cache.
func NewWithStore(renderer Renderer, store *Store, opts Options) (*Intersector, error) {
	if store == nil {
		return nil, &ConfigError{Field: "store", Reason: "must not be nil"}
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return newIntersector(renderer, store, opts)
}

func newIntersector(renderer Renderer, store *Store, opts Options) (*Intersector, error) {
	if renderer == nil {
		return nil, &ConfigError{Field: "renderer", Reason: "must not be nil"}
	}
	grid, err := NewGrid(opts.GridStep, opts.CRS)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if opts.RenderRate > 0 {
		limit = rate.Limit(opts.RenderRate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Intersector{
		renderer: renderer,
		store:    store,
		grid:     grid,
		opts:     opts,
		log:      opts.Logger,
		limiter:  rate.NewLimiter(limit, opts.RenderBurst),
		ctx:      ctx,
		cancel:   cancel,
		sem:      make(chan struct{}, opts.Workers),
		updates:  make(chan TileKey, opts.UpdateBuffer),
		pending:  make(map[TileKey]struct{}),
	}, nil
}

// Store returns the partial store backing this intersector.
func (ix *Intersector) Store() *Store {
	return ix.store
}

// Grid returns the tile grid used to cover viewports.
func (ix *Intersector) Grid() Grid {
	return ix.grid
}

// Options returns the effective options, defaults applied.
func (ix *Intersector) Options() Options {
	return ix.opts
}

// Updates returns a channel that receives the key of every tile stored by a
// background render. Sends never block; a full channel drops the
// notification. The channel is closed by Close.
func (ix *Intersector) Updates() <-chan TileKey {
	return ix.updates
}

// IntersectEnvelope returns the partials covering env, with a transform that
// maps env exactly onto a screen of the given size.
//
// The X and Y scales are derived independently (screen width over envelope
// width, screen height over envelope height), so the upper-left corner of env
// lands on (0,0) and the lower-right on (Width, Height).
//
// Fails with ErrInvalidViewport for a zero-area envelope or screen, and with
// ErrInvalidCRS when env is not in the working CRS. Neither failure touches
// the cache or the backend. Render failures are not errors: the tile is
// reported as a hole.
func (ix *Intersector) IntersectEnvelope(ctx context.Context, env Envelope, screen ScreenSize) (*QueryResult, error) {
	if !screen.Valid() {
		return nil, &ViewportError{Reason: fmt.Sprintf("screen size %s must be positive", screen)}
	}
	if env.IsDegenerate() {
		return nil, &ViewportError{Reason: fmt.Sprintf("envelope %s has no area", env)}
	}
	if env.CRS != ix.grid.CRS {
		return nil, &CRSMismatchError{Expected: ix.grid.CRS, Actual: env.CRS}
	}

	sx := float64(screen.Width) / env.Width()
	sy := float64(screen.Height) / env.Height()
	return ix.query(ctx, env, screen, NewWorldToScreen(env.UpperLeft(), sx, sy))
}

// IntersectPoint returns the partials for a screen of the given size centered
// on center, at the configured resolution (Options.Resolution pixels per
// world unit).
func (ix *Intersector) IntersectPoint(ctx context.Context, center Point, screen ScreenSize, crs CRS) (*QueryResult, error) {
	if !screen.Valid() {
		return nil, &ViewportError{Reason: fmt.Sprintf("screen size %s must be positive", screen)}
	}
	if math.IsNaN(center.X) || math.IsNaN(center.Y) || math.IsInf(center.X, 0) || math.IsInf(center.Y, 0) {
		return nil, &ViewportError{Reason: fmt.Sprintf("center (%g, %g) is not finite", center.X, center.Y)}
	}
	if crs != ix.grid.CRS {
		return nil, &CRSMismatchError{Expected: ix.grid.CRS, Actual: crs}
	}

	res := ix.opts.Resolution
	halfW := float64(screen.Width) / 2 / res
	halfH := float64(screen.Height) / 2 / res
	env := NewEnvelope(center.X-halfW, center.Y-halfH, center.X+halfW, center.Y+halfH, crs)
	if env.IsDegenerate() {
		return nil, &ViewportError{Reason: fmt.Sprintf("envelope %s has no area", env)}
	}

	return ix.query(ctx, env, screen, NewWorldToScreen(env.UpperLeft(), res, res))
}

// covering returns the keys covering env, refusing envelopes that cover more
// than Options.MaxTilesPerQuery tiles before any key is built.
func (ix *Intersector) covering(env Envelope) ([]TileKey, error) {
	count, err := ix.grid.CoveringCount(env)
	if err != nil {
		return nil, err
	}
	if count > int64(ix.opts.MaxTilesPerQuery) {
		return nil, &ViewportError{Reason: fmt.Sprintf("envelope covers %d tiles, limit is %d", count, ix.opts.MaxTilesPerQuery)}
	}
	return ix.grid.Covering(env)
}

func (ix *Intersector) query(ctx context.Context, env Envelope, screen ScreenSize, transform WorldToScreen) (*QueryResult, error) {
	keys, err := ix.covering(env)
	if err != nil {
		return nil, err
	}
	queryTiles.Observe(float64(len(keys)))

	slots := make([]*RenderedPartial, len(keys))
	var missing []int
	for i, key := range keys {
		if p, ok := ix.store.Get(key); ok {
			slots[i] = p
			continue
		}
		missing = append(missing, i)
	}

	result := &QueryResult{
		envelope:  env,
		screen:    screen,
		transform: transform,
		failures:  make(map[TileKey]error),
	}

	if len(missing) > 0 {
		if ix.opts.Mode == ModeAsync {
			for _, i := range missing {
				ix.dispatch(keys[i])
			}
		} else {
			missingKeys := make([]TileKey, len(missing))
			for j, i := range missing {
				missingKeys[j] = keys[i]
			}
			for j, r := range ix.renderKeys(ctx, missingKeys, nil) {
				if r.err != nil {
					result.failures[r.key] = r.err
					continue
				}
				slots[missing[j]] = r.partial
			}
		}
	}

	for i, p := range slots {
		if p == nil {
			result.holes = append(result.holes, keys[i])
			continue
		}
		result.partials = append(result.partials, p)
	}

	ix.log.Debug("viewport query",
		"envelope", env.String(),
		"screen", screen.String(),
		"tiles", len(keys),
		"missing", len(missing),
		"holes", len(result.holes))

	return result, nil
}

// Prefetch renders every tile covering env that is not already cached,
// using up to Options.Workers concurrent renders. Progress, if not nil, is
// called after each tile with (done, total).
//
// Render failures are logged and skipped. Returns the number of tiles
// rendered and stored; the error is non-nil only for an invalid envelope or a
// cancelled context. Like a query, an envelope covering more than
// Options.MaxTilesPerQuery tiles fails with ErrInvalidViewport.
func (ix *Intersector) Prefetch(ctx context.Context, env Envelope, progress func(done, total int)) (int, error) {
	if env.IsDegenerate() {
		return 0, &ViewportError{Reason: fmt.Sprintf("envelope %s has no area", env)}
	}
	keys, err := ix.covering(env)
	if err != nil {
		return 0, err
	}
	if len(keys) > ix.store.Capacity() {
		ix.log.Warn("prefetch exceeds cache capacity, early tiles will be evicted",
			"tiles", len(keys), "capacity", ix.store.Capacity())
	}

	var missing []TileKey
	for _, key := range keys {
		if _, ok := ix.store.Peek(key); !ok {
			missing = append(missing, key)
		}
	}

	rendered := 0
	for _, r := range ix.renderKeys(ctx, missing, progress) {
		if r.err == nil {
			rendered++
		}
	}
	if err := ctx.Err(); err != nil {
		return rendered, fmt.Errorf("prefetch: %w", err)
	}
	return rendered, nil
}

// load returns the partial for key, rendering it if needed. Concurrent loads
// of the same key share one render through the Store. ctx bounds only the
// wait; the render itself is detached from it.
func (ix *Intersector) load(ctx context.Context, key TileKey) (*RenderedPartial, error) {
	p, joined, err := ix.store.load(ctx, key, func() (*RenderedPartial, error) {
		return ix.render(ctx, key)
	})
	if joined {
		renderCoalesced.Inc()
	}
	if err != nil {
		var re *RenderError
		if !errors.As(err, &re) {
			err = &RenderError{Key: key, Err: err}
		}
		return nil, err
	}
	return p, nil
}

// render calls the backend once. Storing the result is left to Store.load.
func (ix *Intersector) render(ctx context.Context, key TileKey) (*RenderedPartial, error) {
	rctx := context.WithoutCancel(ctx)
	if ix.opts.RenderTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, ix.opts.RenderTimeout)
		defer cancel()
	}

	if err := ix.limiter.Wait(rctx); err != nil {
		renderFailures.Inc()
		return nil, &RenderError{Key: key, Err: fmt.Errorf("rate limit: %w", err)}
	}

	renderRequests.Inc()
	start := time.Now()
	p, err := renderTile(rctx, ix.renderer, key, ix.opts.TilePixelSize)
	renderLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		renderFailures.Inc()
		ix.log.Warn("tile render failed", "key", key.String(), "error", err)
		return nil, err
	}
	return p, nil
}

// dispatch schedules a background render of key unless one is already pending.
func (ix *Intersector) dispatch(key TileKey) {
	ix.mu.Lock()
	if ix.closed {
		ix.mu.Unlock()
		return
	}
	if _, ok := ix.pending[key]; ok {
		ix.mu.Unlock()
		return
	}
	ix.pending[key] = struct{}{}
	ix.wg.Add(1)
	ix.mu.Unlock()

	go func() {
		defer ix.wg.Done()
		defer func() {
			ix.mu.Lock()
			delete(ix.pending, key)
			ix.mu.Unlock()
		}()

		select {
		case ix.sem <- struct{}{}:
		case <-ix.ctx.Done():
			return
		}
		defer func() { <-ix.sem }()

		if _, err := ix.load(ix.ctx, key); err != nil {
			return
		}
		if _, ok := ix.store.Peek(key); !ok {
			return
		}
		select {
		case ix.updates <- key:
		default:
			ix.log.Debug("update channel full, dropped notification", "key", key.String())
		}
	}()
}

// Close stops background dispatch, waits for dispatch goroutines to exit and
// closes the Updates channel. Queries remain usable in ModeSync afterwards;
// in ModeAsync missing tiles simply stay holes.
func (ix *Intersector) Close() error {
	ix.mu.Lock()
	if ix.closed {
		ix.mu.Unlock()
		return nil
	}
	ix.closed = true
	ix.mu.Unlock()

	ix.cancel()
	ix.wg.Wait()
	close(ix.updates)
	return nil
}

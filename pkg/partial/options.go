package partial

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/beetlebugorg/partialrender/pkg/logger"
)

// RenderMode selects how missing tiles are produced during a query.
type RenderMode int

const (
	// ModeSync blocks the query until every missing tile is rendered or failed.
	ModeSync RenderMode = iota

	// ModeAsync returns immediately with missing tiles as holes and renders
	// them in the background. Completed tiles are announced on Updates.
	ModeAsync
)

func (m RenderMode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

// ParseRenderMode parses "sync" or "async".
func ParseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "sync", "":
		return ModeSync, nil
	case "async":
		return ModeAsync, nil
	default:
		return ModeSync, &ConfigError{Field: "render mode", Reason: fmt.Sprintf("unknown value %q", s)}
	}
}

// Options configures an Intersector.
type Options struct {
	// GridStep is the tile side length in world units. Must be positive.
	GridStep float64

	// TilePixelSize is the width and height in pixels of every rendered tile.
	TilePixelSize int

	// MaxCachedTiles is the Store capacity. Ignored by NewWithStore.
	MaxCachedTiles int

	// CRS is the working coordinate reference system. Requests in any other
	// CRS fail with ErrInvalidCRS.
	CRS CRS

	// Resolution is the screen scale in pixels per world unit used by
	// IntersectPoint. If 0, defaults to TilePixelSize / GridStep so tiles are
	// drawn at their native size.
	Resolution float64

	// Mode selects synchronous or background rendering.
	Mode RenderMode

	// Workers bounds concurrent renders. If 0, defaults to runtime.NumCPU().
	Workers int

	// RenderTimeout bounds each backend call. 0 means no timeout.
	RenderTimeout time.Duration

	// RenderRate limits backend calls per second. 0 means unlimited.
	RenderRate float64

	// RenderBurst is the rate limiter burst. If 0, defaults to Workers.
	RenderBurst int

	// MaxTilesPerQuery rejects viewports covering more tiles than this.
	MaxTilesPerQuery int

	// UpdateBuffer is the buffer size of the Updates channel.
	UpdateBuffer int

	// Logger receives render failures and dispatch events. Nil means no logging.
	Logger logger.Logger
}

// DefaultOptions returns options for a 256-pixel tile grid in EPSG:3857
// with a step of 1000 world units.
func DefaultOptions() Options {
	return Options{
		GridStep:         1000,
		TilePixelSize:    256,
		MaxCachedTiles:   512,
		CRS:              "EPSG:3857",
		Mode:             ModeSync,
		Workers:          runtime.NumCPU(),
		RenderTimeout:    30 * time.Second,
		MaxTilesPerQuery: 4096,
		UpdateBuffer:     256,
	}
}

// withDefaults fills zero values and validates the result.
func (o Options) withDefaults() (Options, error) {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.RenderBurst <= 0 {
		o.RenderBurst = o.Workers
	}
	if o.MaxTilesPerQuery <= 0 {
		o.MaxTilesPerQuery = 4096
	}
	if o.UpdateBuffer <= 0 {
		o.UpdateBuffer = 256
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}

	if math.IsNaN(o.GridStep) || math.IsInf(o.GridStep, 0) || o.GridStep <= 0 {
		return o, &ConfigError{Field: "grid step", Reason: fmt.Sprintf("must be a positive number, got %v", o.GridStep)}
	}
	if o.TilePixelSize <= 0 {
		return o, &ConfigError{Field: "tile pixel size", Reason: fmt.Sprintf("must be positive, got %d", o.TilePixelSize)}
	}
	if o.CRS == "" {
		return o, &ConfigError{Field: "CRS", Reason: "must not be empty"}
	}
	if o.MaxTilesPerQuery > MaxCoveringTiles {
		return o, &ConfigError{Field: "max tiles per query", Reason: fmt.Sprintf("must be at most %d, got %d", MaxCoveringTiles, o.MaxTilesPerQuery)}
	}
	if o.Resolution == 0 {
		o.Resolution = float64(o.TilePixelSize) / o.GridStep
	}
	if math.IsNaN(o.Resolution) || math.IsInf(o.Resolution, 0) || o.Resolution <= 0 {
		return o, &ConfigError{Field: "resolution", Reason: fmt.Sprintf("must be a positive number, got %v", o.Resolution)}
	}
	if o.Mode != ModeSync && o.Mode != ModeAsync {
		return o, &ConfigError{Field: "render mode", Reason: fmt.Sprintf("unknown mode %d", int(o.Mode))}
	}
	if o.RenderTimeout < 0 {
		return o, &ConfigError{Field: "render timeout", Reason: "must not be negative"}
	}
	if o.RenderRate < 0 || math.IsNaN(o.RenderRate) {
		return o, &ConfigError{Field: "render rate", Reason: "must not be negative"}
	}
	return o, nil
}

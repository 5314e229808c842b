package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/beetlebugorg/partialrender/internal/server"
	"github.com/beetlebugorg/partialrender/pkg/config"
	"github.com/beetlebugorg/partialrender/pkg/logger"
	"github.com/beetlebugorg/partialrender/pkg/partial"
	"github.com/beetlebugorg/partialrender/pkg/render"
)

// App wires configuration, logging, the render backend and the intersector.
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Renderer    partial.Renderer
	Intersector *partial.Intersector
}

func New(cfg *config.Config, l logger.Logger) (*App, error) {
	if l == nil {
		l = logger.Nop()
	}

	renderer, err := NewRenderer(cfg)
	if err != nil {
		return nil, fmt.Errorf("render backend: %w", err)
	}

	opts, err := Options(cfg.Partial, l)
	if err != nil {
		return nil, err
	}

	ix, err := partial.New(renderer, opts)
	if err != nil {
		return nil, fmt.Errorf("intersector: %w", err)
	}

	l.Info("partial cache ready",
		"crs", opts.CRS,
		"grid_step", opts.GridStep,
		"tile_pixel_size", opts.TilePixelSize,
		"max_cached_tiles", opts.MaxCachedTiles,
		"mode", opts.Mode.String())

	return &App{
		Config:      cfg,
		Logger:      l,
		Renderer:    renderer,
		Intersector: ix,
	}, nil
}

// Options converts the PARTIAL_ settings into intersector options.
func Options(p config.Partial, l logger.Logger) (partial.Options, error) {
	mode, err := partial.ParseRenderMode(p.Mode)
	if err != nil {
		return partial.Options{}, err
	}

	return partial.Options{
		GridStep:         p.GridStep,
		TilePixelSize:    p.TilePixelSize,
		MaxCachedTiles:   p.MaxCachedTiles,
		CRS:              partial.CRS(p.CRS),
		Resolution:       p.Resolution,
		Mode:             mode,
		Workers:          p.Workers,
		RenderTimeout:    p.RenderTimeout,
		RenderRate:       p.RenderRate,
		RenderBurst:      p.RenderBurst,
		MaxTilesPerQuery: p.MaxTilesPerQuery,
		Logger:           l,
	}, nil
}

// NewRenderer returns an image renderer when SOURCE_PATH is set, otherwise
// a checkerboard pattern.
func NewRenderer(cfg *config.Config) (partial.Renderer, error) {
	crs := partial.CRS(cfg.Partial.CRS)
	src := cfg.Source

	if src.Path == "" {
		pattern, err := render.NewPatternRenderer(crs, src.PatternCell)
		if err != nil {
			return nil, err
		}
		return pattern, nil
	}

	img, err := render.LoadImage(src.Path)
	if err != nil {
		return nil, err
	}
	extent := partial.NewEnvelope(src.MinX, src.MinY, src.MaxX, src.MaxY, crs)
	r, err := render.NewImageRenderer(img, extent)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	l := a.Logger
	srv := a.Config.HTTP.Server

	handler := server.NewHandler(validator.New(), a.Intersector)
	router := server.NewRouter(handler, l)

	httpServer := &http.Server{
		Addr:         ":" + srv.Port,
		Handler:      router,
		ReadTimeout:  srv.ReadTimeout,
		WriteTimeout: srv.WriteTimeout,
		IdleTimeout:  srv.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		l.Info("starting http server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("shutting down http server...", "address", httpServer.Addr)

	timeout := srv.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	l.Info("http server stopped")
	return nil
}

// Close stops background rendering.
func (a *App) Close() error {
	return a.Intersector.Close()
}

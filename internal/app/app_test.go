package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beetlebugorg/partialrender/pkg/config"
	"github.com/beetlebugorg/partialrender/pkg/logger"
	"github.com/beetlebugorg/partialrender/pkg/partial"
	"github.com/beetlebugorg/partialrender/pkg/render"
)

func testConfig() *config.Config {
	return &config.Config{
		Logger: config.Logger{Level: "info"},
		Partial: config.Partial{
			CRS:              "TEST",
			GridStep:         50,
			TilePixelSize:    16,
			MaxCachedTiles:   32,
			Mode:             "sync",
			RenderTimeout:    time.Second,
			MaxTilesPerQuery: 100,
		},
		Source: config.Source{PatternCell: 10},
	}
}

func TestNewWithPattern(t *testing.T) {
	a, err := New(testConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.Renderer.(*render.PatternRenderer); !ok {
		t.Errorf("Expected pattern renderer, got %T", a.Renderer)
	}

	result, err := a.Intersector.IntersectEnvelope(context.Background(),
		partial.NewEnvelope(0, 0, 100, 100, "TEST"), partial.ScreenSize{Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("IntersectEnvelope failed: %v", err)
	}
	if !result.Complete() {
		t.Errorf("Expected complete result, %d holes", len(result.Holes()))
	}
}

func TestNewWithSourceImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basemap.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	f.Close()

	cfg := testConfig()
	cfg.Source = config.Source{Path: path, MaxX: 100, MaxY: 100}

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.Renderer.(*render.ImageRenderer); !ok {
		t.Errorf("Expected image renderer, got %T", a.Renderer)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Partial.GridStep = 0
	if _, err := New(cfg, nil); !errors.Is(err, partial.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}

	cfg = testConfig()
	cfg.Partial.Mode = "eventually"
	if _, err := New(cfg, nil); !errors.Is(err, partial.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration for mode, got %v", err)
	}

	cfg = testConfig()
	cfg.Source.Path = filepath.Join(t.TempDir(), "missing.png")
	if _, err := New(cfg, nil); err == nil {
		t.Error("Expected error for missing source image")
	}
}

func TestOptionsMapping(t *testing.T) {
	p := testConfig().Partial
	p.Mode = "async"
	p.Workers = 3
	p.RenderRate = 20

	opts, err := Options(p, logger.Nop())
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.Mode != partial.ModeAsync || opts.Workers != 3 || opts.RenderRate != 20 {
		t.Errorf("Unexpected options %+v", opts)
	}
	if opts.CRS != "TEST" || opts.GridStep != 50 || opts.MaxCachedTiles != 32 {
		t.Errorf("Unexpected grid options %+v", opts)
	}
}

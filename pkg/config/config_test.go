package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.HTTP.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.HTTP.Server.Port)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Expected level info, got %s", cfg.Logger.Level)
	}
	if cfg.Partial.CRS != "EPSG:3857" {
		t.Errorf("Expected CRS EPSG:3857, got %s", cfg.Partial.CRS)
	}
	if cfg.Partial.GridStep != 1000 || cfg.Partial.TilePixelSize != 256 || cfg.Partial.MaxCachedTiles != 512 {
		t.Errorf("Unexpected grid defaults: %+v", cfg.Partial)
	}
	if cfg.Partial.RenderTimeout != 30*time.Second {
		t.Errorf("Expected 30s render timeout, got %v", cfg.Partial.RenderTimeout)
	}
	if cfg.Source.Path != "" || cfg.Source.PatternCell != 500 {
		t.Errorf("Unexpected source defaults: %+v", cfg.Source)
	}
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "9090")
	t.Setenv("LOGGER_LEVEL", "debug")
	t.Setenv("PARTIAL_CRS", "TEST")
	t.Setenv("PARTIAL_GRID_STEP", "50")
	t.Setenv("PARTIAL_TILE_PIXEL_SIZE", "128")
	t.Setenv("PARTIAL_MAX_CACHED_TILES", "32")
	t.Setenv("PARTIAL_MODE", "async")
	t.Setenv("PARTIAL_RENDER_TIMEOUT", "2s")
	t.Setenv("SOURCE_PATH", "/data/basemap.png")
	t.Setenv("SOURCE_MAX_X", "1000")
	t.Setenv("SOURCE_MAX_Y", "500")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.HTTP.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.HTTP.Server.Port)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Expected level debug, got %s", cfg.Logger.Level)
	}
	p := cfg.Partial
	if p.CRS != "TEST" || p.GridStep != 50 || p.TilePixelSize != 128 || p.MaxCachedTiles != 32 {
		t.Errorf("Unexpected partial config: %+v", p)
	}
	if p.Mode != "async" || p.RenderTimeout != 2*time.Second {
		t.Errorf("Unexpected mode or timeout: %s %v", p.Mode, p.RenderTimeout)
	}
	if cfg.Source.Path != "/data/basemap.png" || cfg.Source.MaxX != 1000 || cfg.Source.MaxY != 500 {
		t.Errorf("Unexpected source config: %+v", cfg.Source)
	}
}

func TestNewRejectsMalformedValues(t *testing.T) {
	t.Setenv("PARTIAL_GRID_STEP", "fifty")

	if _, err := New(); err == nil {
		t.Error("Expected error for malformed grid step")
	}
}

package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	xdraw "golang.org/x/image/draw"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

var (
	red    = color.RGBA{R: 0xff, A: 0xff}
	green  = color.RGBA{G: 0xff, A: 0xff}
	blue   = color.RGBA{B: 0xff, A: 0xff}
	yellow = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
)

// quadrants returns a 2x2 source: NW red, NE green, SW blue, SE yellow.
func quadrants() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, red)
	img.SetRGBA(1, 0, green)
	img.SetRGBA(0, 1, blue)
	img.SetRGBA(1, 1, yellow)
	return img
}

func newQuadrantRenderer(t *testing.T) *ImageRenderer {
	t.Helper()
	r, err := NewImageRenderer(quadrants(), partial.NewEnvelope(0, 0, 100, 100, "TEST"),
		WithInterpolator(xdraw.NearestNeighbor))
	if err != nil {
		t.Fatalf("NewImageRenderer failed: %v", err)
	}
	return r
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestImageRendererQuadrants(t *testing.T) {
	r := newQuadrantRenderer(t)

	tests := []struct {
		name string
		env  partial.Envelope
		want color.RGBA
	}{
		{"north west", partial.NewEnvelope(0, 50, 50, 100, "TEST"), red},
		{"north east", partial.NewEnvelope(50, 50, 100, 100, "TEST"), green},
		{"south west", partial.NewEnvelope(0, 0, 50, 50, "TEST"), blue},
		{"south east", partial.NewEnvelope(50, 0, 100, 50, "TEST"), yellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := r.Render(context.Background(), tt.env, 4, 4, "TEST")
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if img.Bounds() != image.Rect(0, 0, 4, 4) {
				t.Fatalf("Expected 4x4 tile, got %v", img.Bounds())
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					if got := rgbaAt(img, x, y); got != tt.want {
						t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, tt.want, got)
					}
				}
			}
		})
	}
}

func TestImageRendererOutsideExtentIsTransparent(t *testing.T) {
	r := newQuadrantRenderer(t)

	img, err := r.Render(context.Background(), partial.NewEnvelope(100, 0, 200, 100, "TEST"), 4, 4, "TEST")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := rgbaAt(img, 2, 2); got.A != 0 {
		t.Errorf("Expected transparent pixel, got %v", got)
	}

	// Half inside: west half shows the eastern source column, east half is empty
	img, err = r.Render(context.Background(), partial.NewEnvelope(50, 0, 150, 100, "TEST"), 4, 4, "TEST")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := rgbaAt(img, 0, 0); got != green {
		t.Errorf("Expected green at (0,0), got %v", got)
	}
	if got := rgbaAt(img, 1, 3); got != yellow {
		t.Errorf("Expected yellow at (1,3), got %v", got)
	}
	if got := rgbaAt(img, 3, 0); got.A != 0 {
		t.Errorf("Expected transparent at (3,0), got %v", got)
	}
}

func TestImageRendererCRSMismatch(t *testing.T) {
	r := newQuadrantRenderer(t)

	_, err := r.Render(context.Background(), partial.NewEnvelope(0, 0, 50, 50, "OTHER"), 4, 4, "OTHER")
	if !errors.Is(err, partial.ErrInvalidCRS) {
		t.Errorf("Expected ErrInvalidCRS, got %v", err)
	}
}

func TestNewImageRendererRejectsBadInput(t *testing.T) {
	if _, err := NewImageRenderer(nil, partial.NewEnvelope(0, 0, 1, 1, "TEST")); err == nil {
		t.Error("Expected error for nil source")
	}
	if _, err := NewImageRenderer(quadrants(), partial.NewEnvelope(0, 0, 0, 1, "TEST")); err == nil {
		t.Error("Expected error for degenerate extent")
	}
	if _, err := NewImageRenderer(quadrants(), partial.NewEnvelope(0, 0, 1, 1, "")); err == nil {
		t.Error("Expected error for missing CRS")
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := png.Encode(f, quadrants()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	f.Close()

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("Expected 2x2 image, got %v", img.Bounds())
	}
	if got := rgbaAt(img, 1, 1); got != yellow {
		t.Errorf("Expected yellow at (1,1), got %v", got)
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPatternRenderer(t *testing.T) {
	p, err := NewPatternRenderer("TEST", 50)
	if err != nil {
		t.Fatalf("NewPatternRenderer failed: %v", err)
	}
	ctx := context.Background()

	sw, _ := p.Render(ctx, partial.NewEnvelope(0, 0, 50, 50, "TEST"), 8, 8, "TEST")
	se, _ := p.Render(ctx, partial.NewEnvelope(50, 0, 100, 50, "TEST"), 8, 8, "TEST")
	if got := rgbaAt(sw, 3, 3); got != p.Light {
		t.Errorf("Expected light square, got %v", got)
	}
	if got := rgbaAt(se, 3, 3); got != p.Dark {
		t.Errorf("Expected dark square, got %v", got)
	}

	// A tile spanning two squares splits at its middle column
	both, _ := p.Render(ctx, partial.NewEnvelope(0, 0, 100, 50, "TEST"), 8, 4, "TEST")
	if rgbaAt(both, 3, 0) != p.Light || rgbaAt(both, 4, 0) != p.Dark {
		t.Errorf("Expected split at column 4, got %v and %v", rgbaAt(both, 3, 0), rgbaAt(both, 4, 0))
	}

	// Idempotent
	again, _ := p.Render(ctx, partial.NewEnvelope(0, 0, 100, 50, "TEST"), 8, 4, "TEST")
	for i := range both.(*image.RGBA).Pix {
		if both.(*image.RGBA).Pix[i] != again.(*image.RGBA).Pix[i] {
			t.Fatal("Expected identical output for identical input")
		}
	}

	if _, err := p.Render(ctx, partial.NewEnvelope(0, 0, 50, 50, "OTHER"), 8, 8, "OTHER"); !errors.Is(err, partial.ErrInvalidCRS) {
		t.Errorf("Expected ErrInvalidCRS, got %v", err)
	}
	if _, err := NewPatternRenderer("TEST", 0); err == nil {
		t.Error("Expected error for zero cell")
	}
}

func TestRenderersSatisfyInterface(t *testing.T) {
	var _ partial.Renderer = (*ImageRenderer)(nil)
	var _ partial.Renderer = (*PatternRenderer)(nil)
}

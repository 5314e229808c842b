package display

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

var (
	background = color.RGBA{A: 0xff}
	west       = color.RGBA{R: 0xff, A: 0xff}
	east       = color.RGBA{G: 0xff, A: 0xff}
)

// halfRenderer fills tiles west of x=50 red and east of it green, and fails
// for the tile at the north-east corner.
func halfRenderer(ctx context.Context, env partial.Envelope, w, h int, crs partial.CRS) (image.Image, error) {
	if env.MinX >= 50 && env.MinY >= 50 {
		return nil, errors.New("no data")
	}
	c := west
	if env.MinX >= 50 {
		c = east
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img, nil
}

func query(t *testing.T, screen partial.ScreenSize) *partial.QueryResult {
	t.Helper()
	opts := partial.DefaultOptions()
	opts.CRS = "TEST"
	opts.GridStep = 50
	opts.TilePixelSize = 16

	ix, err := partial.New(partial.RenderFunc(halfRenderer), opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	result, err := ix.IntersectEnvelope(context.Background(), partial.NewEnvelope(0, 0, 100, 100, "TEST"), screen)
	if err != nil {
		t.Fatalf("IntersectEnvelope failed: %v", err)
	}
	return result
}

func TestComposeNativeSize(t *testing.T) {
	result := query(t, partial.ScreenSize{Width: 32, Height: 32})
	img := Compose(result, background, nil)

	if img.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Fatalf("Expected 32x32 screen, got %v", img.Bounds())
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"north west", 4, 4, west},
		{"south west", 4, 28, west},
		{"south east", 28, 28, east},
		{"north east hole", 28, 4, background},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComposeScaled(t *testing.T) {
	result := query(t, partial.ScreenSize{Width: 100, Height: 60})
	img := Compose(result, background, nil)

	if got := img.RGBAAt(20, 45); got != west {
		t.Errorf("Expected west color in south-west, got %v", got)
	}
	if got := img.RGBAAt(80, 45); got != east {
		t.Errorf("Expected east color in south-east, got %v", got)
	}
	if got := img.RGBAAt(80, 10); got != background {
		t.Errorf("Expected background in hole, got %v", got)
	}
}

func TestComposeShowGrid(t *testing.T) {
	result := query(t, partial.ScreenSize{Width: 32, Height: 32})
	grid := color.RGBA{B: 0xff, A: 0xff}
	img := ComposeWithOptions(result, Options{Background: background, ShowGrid: true, GridColor: grid})

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"south-west cell top edge", 8, 16, grid},
		{"south-west cell left edge", 0, 24, grid},
		{"south-west cell upper-left mark", 2, 18, grid},
		{"south-west cell lower-right mark", 14, 30, grid},
		{"south-west cell interior", 8, 24, west},
		{"south-east cell interior", 24, 24, east},
		{"hole has no outline", 24, 0, background},
		{"hole interior", 24, 8, background},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	plain := Compose(result, background, nil)
	if got := plain.RGBAAt(8, 16); got != west {
		t.Errorf("Expected no outline without ShowGrid, got %v", got)
	}
}

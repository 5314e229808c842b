package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/beetlebugorg/partialrender/pkg/partial"
	"github.com/beetlebugorg/partialrender/pkg/render"
)

func main() {
	// Checkerboard backend with 250-unit squares
	renderer, err := render.NewPatternRenderer("EPSG:3857", 250)
	if err != nil {
		log.Fatal(err)
	}

	// 1000-unit tiles rendered at 256x256
	opts := partial.DefaultOptions()
	ix, err := partial.New(renderer, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()

	// Show a 4000x3000 extent on an 800x600 screen
	env := partial.NewEnvelope(0, 0, 4000, 3000, "EPSG:3857")
	result, err := ix.IntersectEnvelope(context.Background(), env, partial.ScreenSize{Width: 800, Height: 600})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Tiles: %d, holes: %d\n", len(result.Partials()), len(result.Holes()))

	// Place each tile on screen
	t := result.Transform()
	for _, p := range result.Partials() {
		fmt.Printf("  %s -> %v\n", p.Key(), t.PartialRect(p))
	}

	// Draw everything into one image
	img := composite(result)
	f, err := os.Create("quick-start.png")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatal(err)
	}
}

// composite is a minimal display surface: tiles drawn at their screen
// rectangles over a white background. Holes stay white.
func composite(result *partial.QueryResult) *image.RGBA {
	screen := result.Screen()
	dst := image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	t := result.Transform()
	for _, p := range result.Partials() {
		xdraw.ApproxBiLinear.Scale(dst, t.PartialRect(p), p.Image(), p.Image().Bounds(), xdraw.Over, nil)
	}
	return dst
}

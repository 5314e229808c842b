package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/beetlebugorg/partialrender/pkg/partial"
	"github.com/beetlebugorg/partialrender/pkg/render"
)

func main() {
	renderer, err := render.NewPatternRenderer("EPSG:3857", 500)
	if err != nil {
		log.Fatal(err)
	}

	// Background rendering: queries return at once, tiles arrive on Updates
	opts := partial.DefaultOptions()
	opts.Mode = partial.ModeAsync
	ix, err := partial.New(renderer, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()

	ctx := context.Background()
	center := partial.Point{X: 5000, Y: 5000}
	screen := partial.ScreenSize{Width: 1024, Height: 768}

	// Centered query at the default resolution (tiles at native size)
	result, err := ix.IntersectPoint(ctx, center, screen, "EPSG:3857")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("First paint: %d tiles ready, %d pending\n", len(result.Partials()), len(result.Holes()))

	// Repaint as tiles arrive
	pending := len(result.Holes())
	timeout := time.After(10 * time.Second)
	for pending > 0 {
		select {
		case key := <-ix.Updates():
			pending--
			fmt.Printf("  tile ready: %s\n", key)
		case <-timeout:
			log.Fatal("timed out waiting for tiles")
		}
	}

	result, err = ix.IntersectPoint(ctx, center, screen, "EPSG:3857")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Second paint: complete=%v\n", result.Complete())

	// Map content changed in one area: drop the affected tiles
	dropped := ix.Store().Invalidate(partial.NewEnvelope(4000, 4000, 6000, 6000, "EPSG:3857"))
	fmt.Printf("Invalidated %d tiles\n", dropped)

	// Screen <-> world conversions for input handling
	t := result.Transform()
	x, y := t.Inverse(0, 0)
	fmt.Printf("Screen origin is world (%.1f, %.1f)\n", x, y)
	px, py := t.Apply(center.X, center.Y)
	fmt.Printf("Center is at screen (%.1f, %.1f)\n", px, py)
}

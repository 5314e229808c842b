package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

// flakyRenderer has no data west of x=0.
func flakyRenderer(ctx context.Context, env partial.Envelope, w, h int, crs partial.CRS) (image.Image, error) {
	if env.MinX < 0 {
		return nil, fmt.Errorf("no data west of the prime meridian")
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func main() {
	// Configuration errors
	opts := partial.DefaultOptions()
	opts.MaxCachedTiles = 0
	if _, err := partial.New(partial.RenderFunc(flakyRenderer), opts); errors.Is(err, partial.ErrInvalidConfiguration) {
		fmt.Printf("Rejected configuration: %v\n", err)
	}

	ix, err := partial.New(partial.RenderFunc(flakyRenderer), partial.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()
	ctx := context.Background()
	screen := partial.ScreenSize{Width: 800, Height: 600}

	// Degenerate viewport
	_, err = ix.IntersectEnvelope(ctx, partial.NewEnvelope(0, 0, 0, 1000, "EPSG:3857"), screen)
	if errors.Is(err, partial.ErrInvalidViewport) {
		fmt.Printf("Rejected viewport: %v\n", err)
	}

	// Wrong CRS
	_, err = ix.IntersectEnvelope(ctx, partial.NewEnvelope(0, 0, 1, 1, "EPSG:4326"), screen)
	var mismatch *partial.CRSMismatchError
	if errors.As(err, &mismatch) {
		fmt.Printf("Rejected CRS %s (map is %s)\n", mismatch.Actual, mismatch.Expected)
	}

	// Render failures never fail the query; they leave holes
	result, err := ix.IntersectEnvelope(ctx, partial.NewEnvelope(-2000, 0, 2000, 3000, "EPSG:3857"), screen)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Drawn %d tiles, %d holes\n", len(result.Partials()), len(result.Holes()))
	for key, err := range result.Failures() {
		var re *partial.RenderError
		if errors.As(err, &re) && errors.Is(err, partial.ErrRenderFailure) {
			fmt.Printf("  hole %s: %v\n", key, re.Err)
		}
	}
}

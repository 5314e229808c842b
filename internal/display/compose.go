// Package display draws query results onto a single screen image.
package display

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

// cornerMark is the side in pixels of the corner markers drawn by ShowGrid.
const cornerMark = 5

// Options controls how a result is drawn.
type Options struct {
	Background   color.Color        // Fill under partials and in holes; transparent if nil
	Interpolator xdraw.Interpolator // Resampler for scaled partials; xdraw.ApproxBiLinear if nil

	// ShowGrid outlines every partial and marks its upper-left and
	// lower-right corners, for checking tile placement.
	ShowGrid  bool
	GridColor color.Color // Red if nil
}

// Compose paints every partial of result onto a new screen-sized image,
// in result order, over a background fill. Holes show the background.
//
// Partials drawn at their native resolution are copied directly; scaled
// partials are resampled with interp (xdraw.ApproxBiLinear if nil).
func Compose(result *partial.QueryResult, background color.Color, interp xdraw.Interpolator) *image.RGBA {
	return ComposeWithOptions(result, Options{Background: background, Interpolator: interp})
}

// ComposeWithOptions is Compose with the grid overlay and other settings in opts.
func ComposeWithOptions(result *partial.QueryResult, opts Options) *image.RGBA {
	screen := result.Screen()
	dst := image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height))
	if opts.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	interp := opts.Interpolator
	if interp == nil {
		interp = xdraw.ApproxBiLinear
	}

	t := result.Transform()
	for _, p := range result.Partials() {
		img := p.Image()
		r := t.PartialRect(p)
		if r.Empty() {
			continue
		}
		if r.Dx() == p.RenderedWidth() && r.Dy() == p.RenderedHeight() {
			draw.Draw(dst, r, img, img.Bounds().Min, draw.Over)
			continue
		}
		interp.Transform(dst, t.PartialAff3(p), img, img.Bounds(), xdraw.Over, nil)
	}

	if opts.ShowGrid {
		c := opts.GridColor
		if c == nil {
			c = color.RGBA{R: 0xff, A: 0xff}
		}
		for _, p := range result.Partials() {
			drawGridCell(dst, t.PartialRect(p), c)
		}
	}
	return dst
}

// drawGridCell outlines r and fills a small square inside its upper-left and
// lower-right corners. Pixels outside dst are clipped.
func drawGridCell(dst *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+cornerMark, r.Min.Y+cornerMark).Intersect(r),
		image.Rect(r.Max.X-cornerMark, r.Max.Y-cornerMark, r.Max.X, r.Max.Y).Intersect(r),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

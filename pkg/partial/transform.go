package partial

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// WorldToScreen is the affine mapping from world coordinates to screen pixels
// for one query.
//
// The upper-left world corner of the query envelope maps to screen (0,0).
// World Y grows northward while screen Y grows downward, so the Y scale is
// negated: moving north decreases the screen row.
//
//	px = sx * (x - minX)
//	py = sy * (maxY - y)
type WorldToScreen struct {
	m f64.Aff3
}

// NewWorldToScreen builds the transform that places origin (the upper-left
// world corner) at screen (0,0) with sx and sy pixels per world unit.
func NewWorldToScreen(origin Point, sx, sy float64) WorldToScreen {
	return WorldToScreen{m: f64.Aff3{
		sx, 0, -sx * origin.X,
		0, -sy, sy * origin.Y,
	}}
}

// Apply maps a world coordinate to a screen coordinate.
func (t WorldToScreen) Apply(x, y float64) (float64, float64) {
	return t.m[0]*x + t.m[1]*y + t.m[2], t.m[3]*x + t.m[4]*y + t.m[5]
}

// Inverse maps a screen coordinate back to world coordinates.
func (t WorldToScreen) Inverse(px, py float64) (float64, float64) {
	return (px - t.m[2]) / t.m[0], (py - t.m[5]) / t.m[4]
}

// Scale returns the pixels per world unit on each axis (both positive).
func (t WorldToScreen) Scale() (sx, sy float64) {
	return t.m[0], -t.m[4]
}

// Aff3 returns the transform as a row-major 2x3 matrix.
func (t WorldToScreen) Aff3() f64.Aff3 {
	return t.m
}

// PartialRect returns the screen rectangle a partial occupies.
//
// Edges are rounded to whole pixels from world coordinates, so adjacent
// partials share edges exactly.
func (t WorldToScreen) PartialRect(p *RenderedPartial) image.Rectangle {
	env := p.Envelope()
	x0, y0 := t.Apply(env.MinX, env.MaxY)
	x1, y1 := t.Apply(env.MaxX, env.MinY)
	return image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
}

// PartialAff3 returns the matrix mapping a partial's image pixels to screen
// pixels, suitable for golang.org/x/image/draw Transformer implementations.
func (t WorldToScreen) PartialAff3(p *RenderedPartial) f64.Aff3 {
	env := p.Envelope()
	b := p.Image().Bounds()
	sx, sy := t.Scale()

	a := sx * env.Width() / float64(p.RenderedWidth())
	d := sy * env.Height() / float64(p.RenderedHeight())
	tx, ty := t.Apply(env.MinX, env.MaxY)

	return f64.Aff3{
		a, 0, tx - a*float64(b.Min.X),
		0, d, ty - d*float64(b.Min.Y),
	}
}

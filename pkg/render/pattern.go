package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

// PatternRenderer draws a checkerboard anchored in world space.
//
// Squares are Cell world units wide regardless of the tile size, so adjacent
// tiles line up and the same envelope always renders the same image. Useful
// as a demo backend and for checking tile placement by eye.
type PatternRenderer struct {
	CRS   partial.CRS
	Cell  float64
	Light color.RGBA
	Dark  color.RGBA
}

// NewPatternRenderer creates a checkerboard with cell-sized squares.
func NewPatternRenderer(crs partial.CRS, cell float64) (*PatternRenderer, error) {
	if math.IsNaN(cell) || math.IsInf(cell, 0) || cell <= 0 {
		return nil, fmt.Errorf("pattern cell must be positive, got %v", cell)
	}
	return &PatternRenderer{
		CRS:   crs,
		Cell:  cell,
		Light: color.RGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff},
		Dark:  color.RGBA{R: 0xaa, G: 0xd3, B: 0xdf, A: 0xff},
	}, nil
}

// Render implements partial.Renderer.
func (p *PatternRenderer) Render(ctx context.Context, env partial.Envelope, width, height int, crs partial.CRS) (image.Image, error) {
	if crs != p.CRS || env.CRS != p.CRS {
		return nil, &partial.CRSMismatchError{Expected: p.CRS, Actual: crs}
	}
	if width <= 0 || height <= 0 || env.IsDegenerate() {
		return nil, fmt.Errorf("cannot render %dx%d tile for %s", width, height, env)
	}

	dx := env.Width() / float64(width)
	dy := env.Height() / float64(height)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for py := 0; py < height; py++ {
		if py%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		// Pixel centers; row 0 is the northern edge
		y := env.MaxY - (float64(py)+0.5)*dy
		row := int64(math.Floor(y / p.Cell))
		for px := 0; px < width; px++ {
			x := env.MinX + (float64(px)+0.5)*dx
			col := int64(math.Floor(x / p.Cell))
			c := p.Light
			if (col+row)&1 != 0 {
				c = p.Dark
			}
			img.SetRGBA(px, py, c)
		}
	}
	return img, nil
}

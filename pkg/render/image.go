package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

// ImageRenderer renders tiles from a georeferenced source raster.
//
// The source image covers Extent exactly: its upper-left pixel corner is the
// north-west corner of Extent and its lower-right pixel corner is the
// south-east corner. Parts of a requested tile outside Extent are left
// transparent.
//
// Example:
//
//	src, err := render.LoadImage("basemap.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := render.NewImageRenderer(src, partial.NewEnvelope(0, 0, 100000, 50000, "EPSG:3857"))
type ImageRenderer struct {
	src    image.Image
	extent partial.Envelope
	interp xdraw.Interpolator
}

// ImageOption configures an ImageRenderer.
type ImageOption func(*ImageRenderer)

// WithInterpolator sets the resampling kernel (default xdraw.ApproxBiLinear).
func WithInterpolator(interp xdraw.Interpolator) ImageOption {
	return func(r *ImageRenderer) {
		if interp != nil {
			r.interp = interp
		}
	}
}

// NewImageRenderer creates a renderer for src spanning extent.
func NewImageRenderer(src image.Image, extent partial.Envelope, opts ...ImageOption) (*ImageRenderer, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("source image is empty")
	}
	if extent.IsDegenerate() {
		return nil, fmt.Errorf("source extent %s has no area", extent)
	}
	if extent.CRS == "" {
		return nil, fmt.Errorf("source extent has no CRS")
	}

	r := &ImageRenderer{
		src:    src,
		extent: extent,
		interp: xdraw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Extent returns the world envelope covered by the source image.
func (r *ImageRenderer) Extent() partial.Envelope {
	return r.extent
}

// Render implements partial.Renderer.
func (r *ImageRenderer) Render(ctx context.Context, env partial.Envelope, width, height int, crs partial.CRS) (image.Image, error) {
	if crs != r.extent.CRS || env.CRS != r.extent.CRS {
		return nil, &partial.CRSMismatchError{Expected: r.extent.CRS, Actual: crs}
	}
	if width <= 0 || height <= 0 || env.IsDegenerate() {
		return nil, fmt.Errorf("cannot render %dx%d tile for %s", width, height, env)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if !env.Overlaps(r.extent) {
		return dst, nil
	}

	r.interp.Transform(dst, r.sourceToTile(env, width, height), r.src, r.src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// sourceToTile returns the matrix mapping source pixels to tile pixels.
func (r *ImageRenderer) sourceToTile(env partial.Envelope, width, height int) f64.Aff3 {
	b := r.src.Bounds()

	// World units per source pixel
	ux := r.extent.Width() / float64(b.Dx())
	uy := r.extent.Height() / float64(b.Dy())

	// Tile pixels per world unit
	sx := float64(width) / env.Width()
	sy := float64(height) / env.Height()

	a := ux * sx
	d := uy * sy
	return f64.Aff3{
		a, 0, sx*(r.extent.MinX-env.MinX) - a*float64(b.Min.X),
		0, d, sy*(env.MaxY-r.extent.MaxY) - d*float64(b.Min.Y),
	}
}

// LoadImage decodes a raster file. PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode source image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("source image %s (%s) is empty", path, format)
	}
	return img, nil
}

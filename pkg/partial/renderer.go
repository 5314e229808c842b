package partial

import (
	"context"
	"fmt"
	"image"
)

// Renderer produces a raster for a world envelope.
//
// Implementations wrap an actual map rendering engine. Render must be
// idempotent: the same envelope, size and CRS must produce a visually
// identical image, since results are cached under that assumption. Render
// may block; it is never called while the Store lock is held.
type Renderer interface {
	Render(ctx context.Context, env Envelope, width, height int, crs CRS) (image.Image, error)
}

// RenderFunc adapts an ordinary function to the Renderer interface.
type RenderFunc func(ctx context.Context, env Envelope, width, height int, crs CRS) (image.Image, error)

func (f RenderFunc) Render(ctx context.Context, env Envelope, width, height int, crs CRS) (image.Image, error) {
	return f(ctx, env, width, height, crs)
}

// renderTile calls the backend for one tile and converts every failure mode,
// panics included, into a *RenderError.
func renderTile(ctx context.Context, r Renderer, key TileKey, size int) (p *RenderedPartial, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p = nil
			err = &RenderError{Key: key, Err: fmt.Errorf("renderer panic: %v", rec)}
		}
	}()

	img, err := r.Render(ctx, key.Envelope(), size, size, key.CRS)
	if err != nil {
		return nil, &RenderError{Key: key, Err: err}
	}
	if img == nil {
		return nil, &RenderError{Key: key, Err: fmt.Errorf("renderer returned no image")}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, &RenderError{Key: key, Err: fmt.Errorf("renderer returned empty image %v", b)}
	}
	return NewRenderedPartial(key, img), nil
}

package partial

import (
	"image"
	"time"
)

// RenderedPartial is one rendered tile: an image plus the world extent it covers.
//
// Partials are immutable. A re-render after invalidation produces a new
// instance that replaces the old one in the Store; holders of the old
// instance keep a consistent view.
type RenderedPartial struct {
	key        TileKey
	envelope   Envelope
	img        image.Image
	width      int
	height     int
	renderedAt time.Time
}

// NewRenderedPartial wraps a rendered image for the given tile key.
//
// The pixel size is taken from the image bounds.
func NewRenderedPartial(key TileKey, img image.Image) *RenderedPartial {
	b := img.Bounds()
	return &RenderedPartial{
		key:        key,
		envelope:   key.Envelope(),
		img:        img,
		width:      b.Dx(),
		height:     b.Dy(),
		renderedAt: time.Now(),
	}
}

func (p *RenderedPartial) Key() TileKey {
	return p.key
}

// Envelope returns the world extent covered by the image.
func (p *RenderedPartial) Envelope() Envelope {
	return p.envelope
}

// Image returns the rendered raster. Callers must not modify it.
func (p *RenderedPartial) Image() image.Image {
	return p.img
}

func (p *RenderedPartial) RenderedWidth() int {
	return p.width
}

func (p *RenderedPartial) RenderedHeight() int {
	return p.height
}

// RenderedAt returns when the backend produced the image.
func (p *RenderedPartial) RenderedAt() time.Time {
	return p.renderedAt
}

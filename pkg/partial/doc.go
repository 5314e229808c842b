// Package partial caches rendered map tiles ("partials") and answers viewport
// queries with the tiles to draw and the transform that places them on screen.
//
// The package sits between a display surface and a map rendering engine. The
// display asks for a viewport; the package works out which tiles of a fixed
// world grid cover it, serves cached tiles from an LRU store, renders the
// missing ones through a Renderer, and hands back a QueryResult.
//
// # Basic Usage
//
//	renderer := partial.RenderFunc(func(ctx context.Context, env partial.Envelope, w, h int, crs partial.CRS) (image.Image, error) {
//	    return engine.Draw(ctx, env, w, h)
//	})
//
//	opts := partial.DefaultOptions()
//	opts.CRS = "EPSG:3857"
//	opts.GridStep = 1000
//	opts.TilePixelSize = 256
//
//	ix, err := partial.New(renderer, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ix.Close()
//
// # Viewport Queries
//
// A viewport is either an envelope mapped onto a screen of a given size:
//
//	env := partial.NewEnvelope(0, 0, 100000, 50000, "EPSG:3857")
//	result, err := ix.IntersectEnvelope(ctx, env, partial.ScreenSize{Width: 1600, Height: 800})
//
// or a center point at the configured resolution:
//
//	result, err := ix.IntersectPoint(ctx, partial.Point{X: 5000, Y: 5000},
//	    partial.ScreenSize{Width: 1600, Height: 800}, "EPSG:3857")
//
// Degenerate requests fail with ErrInvalidViewport and requests in another CRS
// fail with ErrInvalidCRS. Neither reaches the cache or the renderer.
//
// # Drawing a Result
//
// Every partial carries its world envelope. The result's transform maps world
// coordinates to screen pixels, with the upper-left world corner at (0,0) and
// world north toward the top of the screen:
//
//	t := result.Transform()
//	for _, p := range result.Partials() {
//	    r := t.PartialRect(p)         // screen rectangle
//	    draw.Draw(dst, r, p.Image(), p.Image().Bounds().Min, draw.Over)
//	}
//
// Partials are ordered row by row from south to north, west to east. Tiles
// that failed to render are listed by Holes and are simply not drawn.
//
// # Caching and Invalidation
//
// The Store keeps at most Options.MaxCachedTiles partials and evicts the least
// recently used. When map content changes, drop the affected tiles:
//
//	ix.Store().Invalidate(partial.NewEnvelope(0, 0, 2000, 2000, "EPSG:3857"))
//	ix.Store().InvalidateAll()
//
// Failed tiles are never cached, so the next query retries them. A render that
// was running when an invalidation happened is not cached either.
//
// # Render Modes
//
// In ModeSync (the default) a query blocks until missing tiles are rendered,
// up to Options.Workers at a time. In ModeAsync a query returns immediately
// with missing tiles as holes; finished tiles are announced on Updates so the
// display can query again:
//
//	for range ix.Updates() {
//	    repaint()
//	}
//
// Concurrent queries that miss the same tile share a single render, also across
// intersectors created with NewWithStore on one Store.
package partial

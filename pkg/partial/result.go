package partial

// QueryResult is the answer to one viewport query.
//
// It bundles the partials covering the viewport, in a deterministic paint
// order, with the single transform that places them on screen. Tiles that
// could not be produced are reported as holes and are absent from Partials.
// A result is transient; it is never cached.
type QueryResult struct {
	envelope  Envelope
	screen    ScreenSize
	transform WorldToScreen
	partials  []*RenderedPartial
	holes     []TileKey
	failures  map[TileKey]error
}

// Partials returns the available tiles ordered row by row from the southern
// row northward, each row west to east.
func (r *QueryResult) Partials() []*RenderedPartial {
	return r.partials
}

// Holes returns the keys of covering tiles with no partial in this result,
// either because the render failed or because it is still in progress.
func (r *QueryResult) Holes() []TileKey {
	return r.holes
}

// Failures returns the render errors behind failed holes, keyed by tile.
// Tiles still rendering in the background are holes without a failure.
func (r *QueryResult) Failures() map[TileKey]error {
	return r.failures
}

func (r *QueryResult) Transform() WorldToScreen {
	return r.transform
}

// Envelope returns the world extent mapped onto the screen.
func (r *QueryResult) Envelope() Envelope {
	return r.envelope
}

func (r *QueryResult) Screen() ScreenSize {
	return r.screen
}

// Complete reports whether every covering tile is present.
func (r *QueryResult) Complete() bool {
	return len(r.holes) == 0
}

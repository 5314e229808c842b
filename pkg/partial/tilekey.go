package partial

import (
	"fmt"
	"math"
	"strconv"
)

// TileKey identifies one cell of a tile grid.
//
// Keys are plain values: two keys are equal exactly when they name the same
// cell of the same grid, which is what makes cache lookups deterministic.
type TileKey struct {
	CRS  CRS
	Step float64 // World units per tile side
	Col  int64   // floor(x / Step)
	Row  int64   // floor(y / Step), grows northward
}

// Envelope returns the exact world extent of the cell.
func (k TileKey) Envelope() Envelope {
	return Envelope{
		MinX: float64(k.Col) * k.Step,
		MinY: float64(k.Row) * k.Step,
		MaxX: float64(k.Col+1) * k.Step,
		MaxY: float64(k.Row+1) * k.Step,
		CRS:  k.CRS,
	}
}

// String returns a stable textual form: crs/step/col/row.
func (k TileKey) String() string {
	return fmt.Sprintf("%s/%s/%d/%d", k.CRS, strconv.FormatFloat(k.Step, 'g', -1, 64), k.Col, k.Row)
}

// Grid is a regular square tile grid anchored at the world origin.
type Grid struct {
	Step float64
	CRS  CRS
}

// NewGrid validates and returns a grid with the given step in world units.
func NewGrid(step float64, crs CRS) (Grid, error) {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return Grid{}, &ConfigError{Field: "grid step", Reason: fmt.Sprintf("must be a positive number, got %v", step)}
	}
	if crs == "" {
		return Grid{}, &ConfigError{Field: "CRS", Reason: "must not be empty"}
	}
	return Grid{Step: step, CRS: crs}, nil
}

func (g Grid) checkCRS(e Envelope) error {
	if e.CRS != g.CRS {
		return &CRSMismatchError{Expected: g.CRS, Actual: e.CRS}
	}
	return nil
}

// Quantize returns the key of the grid cell containing the envelope's center.
//
// Any envelope lying inside one cell, including the cell's own envelope,
// quantizes to that cell's key.
func (g Grid) Quantize(e Envelope) (TileKey, error) {
	if err := g.checkCRS(e); err != nil {
		return TileKey{}, err
	}
	c := e.Center()
	col, okX := g.cellIndex(c.X, math.Floor)
	row, okY := g.cellIndex(c.Y, math.Floor)
	if !okX || !okY {
		return TileKey{}, &ViewportError{Reason: fmt.Sprintf("center (%g, %g) is outside the grid index range", c.X, c.Y)}
	}
	return TileKey{CRS: g.CRS, Step: g.Step, Col: col, Row: row}, nil
}

// maxCellIndex bounds cell indices to the range where cell edges are exact float64 values.
const maxCellIndex = 1 << 53

// MaxCoveringTiles is the largest key set Covering will allocate.
const MaxCoveringTiles = 1 << 24

// cellIndex rounds v/Step with round and reports whether the result is a usable cell index.
func (g Grid) cellIndex(v float64, round func(float64) float64) (int64, bool) {
	f := round(v / g.Step)
	if math.IsNaN(f) || f > maxCellIndex || f < -maxCellIndex {
		return 0, false
	}
	return int64(f), true
}

// span returns the inclusive cell index range overlapping [min, max).
// A cell that only touches max is excluded; any positive overlap is included.
func (g Grid) span(min, max float64) (int64, int64, error) {
	first, okMin := g.cellIndex(min, math.Floor)
	last, okMax := g.cellIndex(max, math.Ceil)
	if !okMin || !okMax {
		return 0, 0, &ViewportError{Reason: fmt.Sprintf("range [%g, %g] is outside the grid index range", min, max)}
	}
	last--
	if last < first {
		last = first
	}
	return first, last, nil
}

// spans returns the column and row ranges covering e.
func (g Grid) spans(e Envelope) (c0, c1, r0, r1 int64, err error) {
	if err = g.checkCRS(e); err != nil {
		return
	}
	if c0, c1, err = g.span(e.MinX, e.MaxX); err != nil {
		return
	}
	r0, r1, err = g.span(e.MinY, e.MaxY)
	return
}

// CoveringCount returns how many cells Covering would return, without allocating.
// Counts beyond the int64 range saturate at math.MaxInt64.
func (g Grid) CoveringCount(e Envelope) (int64, error) {
	c0, c1, r0, r1, err := g.spans(e)
	if err != nil {
		return 0, err
	}
	cols := c1 - c0 + 1
	rows := r1 - r0 + 1
	if cols > math.MaxInt64/rows {
		return math.MaxInt64, nil
	}
	return cols * rows, nil
}

// Covering returns every key whose cell overlaps the envelope.
//
// Edge cells are included even when the overlap is tiny, so the union of the
// returned cells always covers the envelope. Keys are ordered row by row from
// south to north, each row west to east. Envelopes covering more than
// MaxCoveringTiles cells fail with ErrInvalidViewport.
func (g Grid) Covering(e Envelope) ([]TileKey, error) {
	n, err := g.CoveringCount(e)
	if err != nil {
		return nil, err
	}
	if n > MaxCoveringTiles {
		return nil, &ViewportError{Reason: fmt.Sprintf("envelope covers %d tiles, more than %d", n, MaxCoveringTiles)}
	}
	c0, c1, r0, r1, _ := g.spans(e)

	keys := make([]TileKey, 0, n)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			keys = append(keys, TileKey{CRS: g.CRS, Step: g.Step, Col: col, Row: row})
		}
	}
	return keys, nil
}

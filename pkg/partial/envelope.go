package partial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CRS identifies a coordinate reference system, e.g. "EPSG:3857".
//
// Identifiers are opaque: two envelopes are comparable only when their CRS
// values are equal. No projection is ever performed by this package.
type CRS string

// Point is a position in world (projected) coordinates.
type Point struct {
	X float64
	Y float64
}

// ScreenSize is a display surface size in pixels.
type ScreenSize struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (s ScreenSize) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s ScreenSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Envelope is an axis-aligned rectangle in world coordinates tagged with its CRS.
//
// World Y grows northward (upward). Min values are always less than or equal to
// Max values when built with NewEnvelope.
type Envelope struct {
	MinX float64 // Western edge
	MinY float64 // Southern edge
	MaxX float64 // Eastern edge
	MaxY float64 // Northern edge
	CRS  CRS
}

// NewEnvelope creates an envelope from two opposite corners in any order.
func NewEnvelope(x1, y1, x2, y2 float64, crs CRS) Envelope {
	return Envelope{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
		CRS:  crs,
	}
}

// EnvelopeFromBound converts an orb.Bound into an envelope in the given CRS.
func EnvelopeFromBound(b orb.Bound, crs CRS) Envelope {
	return NewEnvelope(b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y(), crs)
}

// Bound returns the envelope as an orb.Bound (CRS is dropped).
func (e Envelope) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.MinX, e.MinY},
		Max: orb.Point{e.MaxX, e.MaxY},
	}
}

func (e Envelope) Width() float64 {
	return e.MaxX - e.MinX
}

func (e Envelope) Height() float64 {
	return e.MaxY - e.MinY
}

// IsFinite reports whether every coordinate is a finite number.
func (e Envelope) IsFinite() bool {
	for _, v := range [...]float64{e.MinX, e.MinY, e.MaxX, e.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsDegenerate reports whether the envelope has no area or is not finite.
func (e Envelope) IsDegenerate() bool {
	return !e.IsFinite() || !(e.Width() > 0) || !(e.Height() > 0)
}

// Center returns the midpoint of the envelope.
func (e Envelope) Center() Point {
	c := e.Bound().Center()
	return Point{X: c.X(), Y: c.Y()}
}

// UpperLeft returns the north-west corner, which maps to screen origin.
func (e Envelope) UpperLeft() Point {
	return Point{X: e.MinX, Y: e.MaxY}
}

// LowerRight returns the south-east corner.
func (e Envelope) LowerRight() Point {
	return Point{X: e.MaxX, Y: e.MinY}
}

// Contains returns true if the point is within the envelope (edges included).
func (e Envelope) Contains(p Point) bool {
	return e.Bound().Contains(orb.Point{p.X, p.Y})
}

// Intersects returns true if the envelopes share at least one point.
// Envelopes in different CRSs never intersect.
func (e Envelope) Intersects(other Envelope) bool {
	if e.CRS != other.CRS {
		return false
	}
	return e.Bound().Intersects(other.Bound())
}

// Overlaps is like Intersects but requires a shared area, not only a shared edge.
func (e Envelope) Overlaps(other Envelope) bool {
	if e.CRS != other.CRS {
		return false
	}
	return e.MinX < other.MaxX && other.MinX < e.MaxX &&
		e.MinY < other.MaxY && other.MinY < e.MaxY
}

// Union returns the smallest envelope containing both envelopes.
func (e Envelope) Union(other Envelope) (Envelope, error) {
	if e.CRS != other.CRS {
		return Envelope{}, &CRSMismatchError{Expected: e.CRS, Actual: other.CRS}
	}
	return EnvelopeFromBound(e.Bound().Union(other.Bound()), e.CRS), nil
}

// Expand returns a new envelope grown by margin world units on every side.
func (e Envelope) Expand(margin float64) Envelope {
	return EnvelopeFromBound(e.Bound().Pad(margin), e.CRS)
}

func (e Envelope) String() string {
	return fmt.Sprintf("%s[%g,%g %g,%g]", e.CRS, e.MinX, e.MinY, e.MaxX, e.MaxY)
}

package partial

import (
	"image"
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestWorldToScreenCorners(t *testing.T) {
	env := NewEnvelope(1000, 2000, 1400, 2300, "TEST")
	screen := ScreenSize{Width: 800, Height: 600}
	tr := NewWorldToScreen(env.UpperLeft(), float64(screen.Width)/env.Width(), float64(screen.Height)/env.Height())

	tests := []struct {
		name   string
		x, y   float64
		px, py float64
	}{
		{"upper left", env.MinX, env.MaxY, 0, 0},
		{"lower right", env.MaxX, env.MinY, 800, 600},
		{"upper right", env.MaxX, env.MaxY, 800, 0},
		{"lower left", env.MinX, env.MinY, 0, 600},
		{"center", 1200, 2150, 400, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := tr.Apply(tt.x, tt.y)
			if !near(px, tt.px) || !near(py, tt.py) {
				t.Errorf("Expected (%g,%g), got (%g,%g)", tt.px, tt.py, px, py)
			}
			x, y := tr.Inverse(px, py)
			if !near(x, tt.x) || !near(y, tt.y) {
				t.Errorf("Inverse: expected (%g,%g), got (%g,%g)", tt.x, tt.y, x, y)
			}
		})
	}
}

func TestWorldToScreenNorthIsUp(t *testing.T) {
	tr := NewWorldToScreen(Point{X: 0, Y: 100}, 2, 2)

	_, ySouth := tr.Apply(10, 10)
	_, yNorth := tr.Apply(10, 90)
	if !(yNorth < ySouth) {
		t.Errorf("Expected north to map above south, got north=%g south=%g", yNorth, ySouth)
	}

	sx, sy := tr.Scale()
	if sx != 2 || sy != 2 {
		t.Errorf("Expected scale (2,2), got (%g,%g)", sx, sy)
	}
	if m := tr.Aff3(); m[4] >= 0 {
		t.Errorf("Expected negative Y coefficient, got %g", m[4])
	}
}

func TestPartialRectAdjacency(t *testing.T) {
	tr := NewWorldToScreen(Point{X: 0, Y: 100}, 3.3, 3.3)
	left := testPartialAt(TileKey{CRS: "TEST", Step: 50, Col: 0, Row: 1}, 64)
	right := testPartialAt(TileKey{CRS: "TEST", Step: 50, Col: 1, Row: 1}, 64)
	below := testPartialAt(TileKey{CRS: "TEST", Step: 50, Col: 0, Row: 0}, 64)

	lr, rr, br := tr.PartialRect(left), tr.PartialRect(right), tr.PartialRect(below)
	if lr.Max.X != rr.Min.X {
		t.Errorf("Expected shared vertical edge, got %v and %v", lr, rr)
	}
	if lr.Max.Y != br.Min.Y {
		t.Errorf("Expected shared horizontal edge, got %v and %v", lr, br)
	}
	if lr.Min != (image.Point{}) {
		t.Errorf("Expected upper-left tile at origin, got %v", lr.Min)
	}
}

func TestPartialAff3MapsImageCorners(t *testing.T) {
	tr := NewWorldToScreen(Point{X: 0, Y: 100}, 2, 2)
	key := TileKey{CRS: "TEST", Step: 50, Col: 1, Row: 0}
	img := image.NewRGBA(image.Rect(10, 10, 74, 74)) // non-zero origin
	p := NewRenderedPartial(key, img)

	m := tr.PartialAff3(p)
	apply := func(u, v float64) (float64, float64) {
		return m[0]*u + m[1]*v + m[2], m[3]*u + m[4]*v + m[5]
	}

	// Image top-left is the tile's north-west corner (50, 50) -> screen (100, 100)
	x, y := apply(10, 10)
	if !near(x, 100) || !near(y, 100) {
		t.Errorf("Expected (100,100), got (%g,%g)", x, y)
	}
	// Image bottom-right is the tile's south-east corner (100, 0) -> screen (200, 200)
	x, y = apply(74, 74)
	if !near(x, 200) || !near(y, 200) {
		t.Errorf("Expected (200,200), got (%g,%g)", x, y)
	}
}

func testPartialAt(key TileKey, size int) *RenderedPartial {
	return NewRenderedPartial(key, image.NewRGBA(image.Rect(0, 0, size, size)))
}

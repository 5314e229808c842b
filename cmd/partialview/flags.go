package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

// parseFloats splits s on sep and parses exactly n numbers.
func parseFloats(s, sep string, n int) ([]float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values separated by %q, got %q", n, sep, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseBBox parses "minx,miny,maxx,maxy".
func parseBBox(s string, crs partial.CRS) (partial.Envelope, error) {
	v, err := parseFloats(s, ",", 4)
	if err != nil {
		return partial.Envelope{}, fmt.Errorf("bbox: %w", err)
	}
	return partial.NewEnvelope(v[0], v[1], v[2], v[3], crs), nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (partial.Point, error) {
	v, err := parseFloats(s, ",", 2)
	if err != nil {
		return partial.Point{}, fmt.Errorf("center: %w", err)
	}
	return partial.Point{X: v[0], Y: v[1]}, nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (partial.ScreenSize, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return partial.ScreenSize{}, fmt.Errorf("size: expected WIDTHxHEIGHT, got %q", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return partial.ScreenSize{}, fmt.Errorf("size: invalid width %q", parts[0])
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return partial.ScreenSize{}, fmt.Errorf("size: invalid height %q", parts[1])
	}
	return partial.ScreenSize{Width: w, Height: h}, nil
}

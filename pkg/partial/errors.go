package partial

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches exactly one of them via errors.Is.
var (
	ErrInvalidCRS           = errors.New("invalid CRS")
	ErrInvalidViewport      = errors.New("invalid viewport")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrRenderFailure        = errors.New("render failure")
)

// CRSMismatchError indicates an envelope expressed in a CRS other than the grid's working CRS.
type CRSMismatchError struct {
	Expected CRS
	Actual   CRS
}

func (e *CRSMismatchError) Error() string {
	return fmt.Sprintf("CRS mismatch: expected %q, got %q", e.Expected, e.Actual)
}

func (e *CRSMismatchError) Is(target error) bool {
	return target == ErrInvalidCRS
}

// ViewportError indicates a degenerate or oversized viewport request.
type ViewportError struct {
	Reason string
}

func (e *ViewportError) Error() string {
	return fmt.Sprintf("invalid viewport: %s", e.Reason)
}

func (e *ViewportError) Is(target error) bool {
	return target == ErrInvalidViewport
}

// ConfigError indicates a rejected configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// RenderError records a render backend failure for one tile.
type RenderError struct {
	Key TileKey
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render tile %s: %v", e.Key, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRenderFailure
}

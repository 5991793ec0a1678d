// Package camera provides frame acquisition for the book reader: a live
// GStreamer-backed camera and a folder-of-images replay source behind one
// Source contract, plus the frame fingerprint used for page-turn
// verification.
package camera

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned by Grab when the source has not been started.
var ErrNotOpen = errors.New("image source is not open")

// Source supplies JPEG frames on demand. Implementations are not safe for
// concurrent Grab calls; the control loop is single-threaded by design.
type Source interface {
	// Start acquires the underlying resource (device, file list).
	Start() error

	// Stop releases the resource. Safe to call on a stopped source.
	Stop()

	// IsOpen reports whether Grab can be called.
	IsOpen() bool

	// Grab returns the next frame as JPEG bytes.
	Grab() ([]byte, error)
}

// WithSource runs fn with a started source, guaranteeing Stop on every
// exit path including error exit.
func WithSource(src Source, fn func(Source) error) error {
	if err := src.Start(); err != nil {
		return fmt.Errorf("failed to start image source: %w", err)
	}
	defer src.Stop()
	return fn(src)
}

// Package hw provides the hardware backends the acquisition adapters drive:
// a frame-grab camera, a spool-directory document feeder and a photo library.
// Each sits behind a tiny interface so the capture core stays testable with
// fakes.
package hw

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrUnavailable signals that the capture backend cannot be reached on
	// this machine. Checked before the acquisition UI is offered.
	ErrUnavailable = errors.New("capture hardware unavailable")

	// ErrNoSelection signals that the user dismissed a picker without
	// choosing anything. Not an error condition upstream.
	ErrNoSelection = errors.New("no selection")
)

// FrameSource produces a single frame per capture request (camera path).
type FrameSource interface {
	Capture(ctx context.Context) (image.Image, error)
}

// PageSource produces zero or more pages per scan request (scanner path).
type PageSource interface {
	Scan(ctx context.Context) ([]image.Image, error)
}

// PhotoPicker yields one existing photo chosen from a library.
type PhotoPicker interface {
	Pick(ctx context.Context) (image.Image, error)
}

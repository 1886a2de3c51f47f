package hw

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/vova616/screenshot"
)

// ScreenCamera is the frame-grab camera device: it captures document images
// from the display capture subsystem. It implements both the session Device
// primitives (Open/ReleaseBuffers/Close) and FrameSource.
type ScreenCamera struct {
	mu     sync.Mutex
	logger *slog.Logger
	opened bool
	// last grabbed frame, dropped on ReleaseBuffers so the native capture
	// path is not kept pinned between attempts.
	frame *image.RGBA
}

// NewScreenCamera returns an unopened camera device.
func NewScreenCamera(logger *slog.Logger) *ScreenCamera {
	return &ScreenCamera{logger: logger}
}

// Open probes the capture subsystem and marks the device ready.
func (c *ScreenCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return nil
	}
	r, err := screenshot.ScreenRect()
	if err != nil {
		return fmt.Errorf("camera open: %w", err)
	}
	if r.Empty() {
		return ErrUnavailable
	}
	c.opened = true
	return nil
}

// ReleaseBuffers drops the held frame but keeps the device open.
func (c *ScreenCamera) ReleaseBuffers() error {
	c.mu.Lock()
	c.frame = nil
	c.mu.Unlock()
	return nil
}

// Close tears the device down. Safe to call repeatedly.
func (c *ScreenCamera) Close() error {
	c.mu.Lock()
	c.opened = false
	c.frame = nil
	c.mu.Unlock()
	return nil
}

// Capture grabs one frame. The device must be open.
func (c *ScreenCamera) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	opened := c.opened
	c.mu.Unlock()
	if !opened {
		return nil, ErrUnavailable
	}
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("camera capture: %w", err)
	}
	c.mu.Lock()
	c.frame = img
	c.mu.Unlock()
	if c.logger != nil {
		b := img.Bounds()
		c.logger.Debug("camera frame grabbed", "width", b.Dx(), "height", b.Dy())
	}
	return img, nil
}

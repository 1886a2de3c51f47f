package capture

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// Source labels the acquisition path that produced an image.
type Source string

const (
	SourceScanner Source = "scanner"
	SourceCamera  Source = "camera_picker"
	SourceLibrary Source = "photo_library"
)

// Orientation describes how the raw pixels must be rotated to appear upright.
type Orientation int

const (
	OrientUp Orientation = iota
	OrientDown
	OrientLeft
	OrientRight
)

func (o Orientation) String() string {
	switch o {
	case OrientUp:
		return "up"
	case OrientDown:
		return "down"
	case OrientLeft:
		return "left"
	case OrientRight:
		return "right"
	default:
		return "unknown"
	}
}

// CapturedImage is one acquired page. After normalization the pixel buffer is
// owned by this value (no shared backing store), dimensions are even, and
// Normalized is set. The ViewModel owns a CapturedImage exclusively until it
// is handed off or discarded.
type CapturedImage struct {
	ID          uuid.UUID
	Pixels      image.Image
	Orientation Orientation
	Source      Source
	Normalized  bool
	CapturedAt  time.Time
}

// Bounds returns the pixel bounds of the image, or the zero rectangle when
// no pixels are held.
func (c CapturedImage) Bounds() image.Rectangle {
	if c.Pixels == nil {
		return image.Rectangle{}
	}
	return c.Pixels.Bounds()
}

// ByteSize estimates the decoded size of the pixel buffer (RGBA accounting).
func (c CapturedImage) ByteSize() int {
	b := c.Bounds()
	return b.Dx() * b.Dy() * 4
}

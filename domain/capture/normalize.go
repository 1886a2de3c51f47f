package capture

import (
	"image"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// maxNormalizePixels bounds the canvas the normalizer is willing to allocate.
// Inputs beyond this are passed through unmodified; correction is best-effort.
const maxNormalizePixels = 64 << 20

// Normalize converts a raw decoded image into a dimension-safe, fully
// materialized CapturedImage:
//
//  1. the orientation tag is baked in so consumers see upright pixels,
//  2. odd width/height is padded by +1 on the odd axis only (never cropped);
//     downstream codec paths reject odd dimensions,
//  3. the pixels are re-drawn into a freshly allocated RGBA buffer so the
//     result owns its backing store and cannot be invalidated by eviction of
//     a lazily-decoded original.
//
// On allocation failure the input is returned unmodified with Normalized
// unset. Normalize never errors.
func Normalize(src image.Image, orient Orientation, source Source) CapturedImage {
	out := CapturedImage{
		ID:          uuid.New(),
		Pixels:      src,
		Orientation: orient,
		Source:      source,
		CapturedAt:  time.Now(),
	}
	if src == nil {
		return out
	}

	upright := bakeOrientation(src, orient)
	b := upright.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return out
	}
	// Pad, never crop.
	if w%2 != 0 {
		w++
	}
	if h%2 != 0 {
		h++
	}
	if w*h > maxNormalizePixels {
		return out
	}

	dst := materialize(upright, w, h)
	if dst == nil {
		return out
	}
	out.Pixels = dst
	out.Orientation = OrientUp
	out.Normalized = true
	return out
}

// NormalizeAsync runs Normalize on a worker goroutine and delivers the result
// through deliver. The caller decides how the result hops back onto the
// context that owns the ViewModel; deliver must not block indefinitely.
func NormalizeAsync(src image.Image, orient Orientation, source Source, logger *slog.Logger, deliver func(CapturedImage)) {
	go func() {
		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.Error("normalize panic", "error", r, "stack", string(debug.Stack()))
			}
		}()
		start := time.Now()
		out := Normalize(src, orient, source)
		if logger != nil {
			logger.Debug("normalized image",
				"source", string(out.Source),
				"width", out.Bounds().Dx(),
				"height", out.Bounds().Dy(),
				"bytes", humanize.Bytes(uint64(out.ByteSize())),
				"normalized", out.Normalized,
				"elapsed", time.Since(start),
			)
		}
		deliver(out)
	}()
}

// bakeOrientation rotates the raw pixels so the returned image reads upright.
func bakeOrientation(src image.Image, orient Orientation) image.Image {
	switch orient {
	case OrientDown:
		return imaging.Rotate180(src)
	case OrientLeft:
		return imaging.Rotate270(src)
	case OrientRight:
		return imaging.Rotate90(src)
	default:
		return src
	}
}

// materialize re-draws src onto a fresh w x h RGBA canvas (8 bits/component,
// alpha present). Returns nil if the buffer cannot be allocated.
func materialize(src image.Image, w, h int) (dst *image.RGBA) {
	defer func() {
		if recover() != nil {
			dst = nil
		}
	}()
	dst = image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	draw.Draw(dst, image.Rect(0, 0, sb.Dx(), sb.Dy()), src, sb.Min, draw.Src)
	return dst
}

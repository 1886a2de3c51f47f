package images

import (
	"image"
	"testing"
)

func TestThumbnail_ScalesDownPreservingAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := Thumbnail(src, 100, 100)
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestThumbnail_FittingImageUnchanged(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if out := Thumbnail(src, 100, 100); out != src {
		t.Fatal("image within bounds should be returned as-is")
	}
}

func TestThumbnail_Nil(t *testing.T) {
	if Thumbnail(nil, 10, 10) != nil {
		t.Fatal("nil in, nil out")
	}
}

func TestEncodePNG(t *testing.T) {
	if EncodePNG(nil) != nil {
		t.Fatal("nil image should encode to nil")
	}
	raw := EncodePNG(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(raw) == 0 {
		t.Fatal("expected PNG bytes")
	}
	// PNG signature
	if raw[1] != 'P' || raw[2] != 'N' || raw[3] != 'G' {
		t.Fatalf("not a png: % x", raw[:4])
	}
}

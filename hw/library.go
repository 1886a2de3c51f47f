package hw

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// PicturesLibrary is the photo-library picker backend over a directory of
// existing images (the user's pictures folder by default). Choose controls
// which file a Pick selects; the default picks the most recently modified
// image, standing in for the user's choice.
type PicturesLibrary struct {
	dir    string
	logger *slog.Logger

	// Choose selects one path out of the candidates, or "" for none.
	Choose func(paths []string) string
}

// NewPicturesLibrary returns a library over dir.
func NewPicturesLibrary(dir string, logger *slog.Logger) *PicturesLibrary {
	return &PicturesLibrary{dir: dir, logger: logger}
}

// Pick decodes the chosen photo. Returns ErrNoSelection when the library is
// empty or the chooser declines, which upstream treats as a user cancel.
func (l *PicturesLibrary) Pick(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSelection
		}
		return nil, fmt.Errorf("library: read %s: %w", l.dir, err)
	}

	var (
		paths  []string
		newest string
		mtime  time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		p := filepath.Join(l.dir, e.Name())
		paths = append(paths, p)
		if info, err := e.Info(); err == nil && info.ModTime().After(mtime) {
			mtime = info.ModTime()
			newest = p
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoSelection
	}

	chosen := newest
	if l.Choose != nil {
		chosen = l.Choose(paths)
	}
	if chosen == "" {
		return nil, ErrNoSelection
	}

	img, err := imaging.Open(chosen)
	if err != nil {
		return nil, fmt.Errorf("library: decode %s: %w", filepath.Base(chosen), err)
	}
	if l.logger != nil {
		l.logger.Debug("library photo picked", "path", chosen)
	}
	return img, nil
}

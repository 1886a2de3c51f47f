package hw

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// imageExts are the file types the feeder and library will decode.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// SpoolFeeder is the multi-page document scanner backend: each Scan decodes
// every image file currently sitting in the spool directory, in name order,
// as the pages of one attempt. An empty spool yields zero pages, which the
// adapter treats as a cancelled scan.
type SpoolFeeder struct {
	dir    string
	logger *slog.Logger
}

// NewSpoolFeeder returns a feeder over dir. The directory is created if
// missing so a first run has somewhere to drop pages.
func NewSpoolFeeder(dir string, logger *slog.Logger) *SpoolFeeder {
	_ = os.MkdirAll(dir, 0o755)
	return &SpoolFeeder{dir: dir, logger: logger}
}

// Scan decodes the spooled pages. A decode failure fails the whole attempt:
// a half-read document batch is worse than a retried one.
func (f *SpoolFeeder) Scan(ctx context.Context) ([]image.Image, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("feeder: read spool: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pages := make([]image.Image, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(f.dir, name)
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("feeder: decode %s: %w", name, err)
		}
		pages = append(pages, img)
	}
	if f.logger != nil {
		f.logger.Debug("feeder scan complete", "pages", len(pages), "dir", f.dir)
	}
	return pages, nil
}

// Package history retains metadata about recently completed capture attempts
// in a bounded LRU, keyed by attempt ID. It holds no pixel data: entries are
// small enough to keep around for a recent-scans listing without pinning
// image buffers.
package history

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/larsvh/doc-scan-go/domain/capture"
)

// Entry describes one completed capture.
type Entry struct {
	ID         uuid.UUID
	Source     capture.Source
	Width      int
	Height     int
	Bytes      int
	CapturedAt time.Time
}

// Store is a bounded, concurrency-safe record of completed attempts.
type Store struct {
	cache  *lru.Cache[string, Entry]
	logger *slog.Logger
}

// NewStore returns a Store retaining at most size entries.
func NewStore(size int, logger *slog.Logger) (*Store, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &Store{cache: c, logger: logger}, nil
}

// Record remembers a completed capture. Images without pixels are ignored.
func (s *Store) Record(img capture.CapturedImage) {
	if img.Pixels == nil {
		return
	}
	b := img.Bounds()
	e := Entry{
		ID:         img.ID,
		Source:     img.Source,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Bytes:      img.ByteSize(),
		CapturedAt: img.CapturedAt,
	}
	s.cache.Add(e.ID.String(), e)
	if s.logger != nil {
		s.logger.Debug("capture recorded",
			"id", e.ID.String(),
			"source", string(e.Source),
			"size", humanize.Bytes(uint64(e.Bytes)),
		)
	}
}

// Get looks an entry up by attempt ID.
func (s *Store) Get(id uuid.UUID) (Entry, bool) {
	return s.cache.Get(id.String())
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) []Entry {
	keys := s.cache.Keys() // oldest to newest
	if n > len(keys) {
		n = len(keys)
	}
	out := make([]Entry, 0, n)
	for i := len(keys) - 1; i >= 0 && len(out) < n; i-- {
		if e, ok := s.cache.Peek(keys[i]); ok {
			out = append(out, e)
		}
	}
	return out
}

// Len reports how many entries are retained.
func (s *Store) Len() int { return s.cache.Len() }

package model

import (
	"sync/atomic"

	"github.com/larsvh/doc-scan-go/domain/capture"
)

// HandoffModel owns the caller side of a capture attempt: the output slot the
// coordinator writes into and the "acquisition view still presented" flag.
// Concurrency-safe; UI callbacks and the coordinator may race.
type HandoffModel struct {
	Slot      capture.Slot
	presented atomic.Bool
}

// Presented reports whether the acquisition view is currently presented.
func (m *HandoffModel) Presented() bool {
	if m == nil {
		return false
	}
	return m.presented.Load()
}

// SetPresented stores the presented flag.
func (m *HandoffModel) SetPresented(b bool) {
	if m == nil {
		return
	}
	m.presented.Store(b)
}

var _ capture.PresentedFlag = (*HandoffModel)(nil)

package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Slot is the caller-owned output location the coordinator writes into
// exactly once per attempt. Other collaborators may read or clear it.
type Slot struct {
	mu  sync.Mutex
	img *CapturedImage
}

// Set stores the image reference.
func (s *Slot) Set(img *CapturedImage) {
	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
}

// Get returns the held image reference, or nil.
func (s *Slot) Get() *CapturedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Take returns the held image and clears the slot.
func (s *Slot) Take() *CapturedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.img
	s.img = nil
	return img
}

// Clear empties the slot.
func (s *Slot) Clear() { s.Set(nil) }

// PresentedFlag is the caller-owned "is this view still presented" boolean
// the coordinator may set to false on completion.
type PresentedFlag interface {
	SetPresented(bool)
}

// Coordinator transfers the ViewModel's image into the caller-supplied Slot
// when the acquisition UI is dismissed. The primary guarantee is that the
// slot is populated before dismissal completes; a post-dismissal verification
// guards against an external actor clearing the slot prematurely.
type Coordinator struct {
	vm        *ViewModel
	slot      *Slot
	presented PresentedFlag
	logger    *slog.Logger

	// grace bounds the wait before the post-dismissal verification read.
	grace time.Duration

	suppressReset atomic.Bool
	races         atomic.Uint64
}

// NewCoordinator returns a Coordinator writing into slot. presented may be nil.
func NewCoordinator(vm *ViewModel, slot *Slot, presented PresentedFlag, grace time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{vm: vm, slot: slot, presented: presented, grace: grace, logger: logger}
}

// SuppressNextReset arms the one-shot suppression flag: the next Run will not
// reset the ViewModel when no image is held. Used when a subsequent screen,
// not this coordinator, owns clearing the ViewModel after consuming the image.
func (c *Coordinator) SuppressNextReset() { c.suppressReset.Store(true) }

// Races reports how many times the post-dismissal verification found the slot
// emptied. More than one occurrence indicates a logic defect elsewhere.
func (c *Coordinator) Races() uint64 { return c.races.Load() }

// Run performs the handoff around UI dismissal. dismiss finalizes the
// acquisition UI and is invoked after the slot is populated, so a successful
// capture is visible in the slot before the UI finishes dismissing. The
// suppression flag is consumed on every run, image or not.
func (c *Coordinator) Run(dismiss func()) {
	suppressed := c.suppressReset.Swap(false)

	img := c.vm.Image()
	if img != nil {
		c.slot.Set(img)
	} else if !suppressed {
		// Nothing captured and nobody downstream owns the state: treat the
		// dismissal as a cancel.
		c.vm.Reset("dismissed without image")
	}

	if dismiss != nil {
		dismiss()
	}
	if c.presented != nil {
		c.presented.SetPresented(false)
	}

	if img == nil {
		return
	}

	// Defensive consistency check, not the primary mechanism: re-read the
	// slot after a short grace period and restore once if some other writer
	// emptied it. Recurrence is a logic defect to root-cause, not retried.
	sleep(c.grace)
	if c.slot.Get() == nil {
		n := c.races.Add(1)
		c.slot.Set(img)
		if c.logger != nil {
			c.logger.Warn("handoff race: slot emptied after dismissal, restored once",
				"source", string(img.Source), "occurrences", n)
		}
	}
}

package capture

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Device is the hardware-session primitive set a SessionResource drives.
// Implementations live in the hw package; tests supply fakes.
type Device interface {
	// Open acquires the underlying capture resources.
	Open() error
	// ReleaseBuffers drops capture buffers but keeps the device usable.
	ReleaseBuffers() error
	// Close fully tears the device down.
	Close() error
}

// ErrSessionBusy is returned when Prepare is called while another attempt
// already holds the session. Concurrent capture attempts are not supported.
var ErrSessionBusy = errors.New("capture session already held by an active attempt")

// SessionResource owns exclusive access to the hardware capture subsystem.
// At most one attempt may hold it. Lifecycle per attempt:
//
//	Prepare -> (acquisition) -> Cleanup -> Terminate
//
// Terminate is idempotent and safe after Cleanup. Tearing down too quickly
// after an acquisition shows up as transfer/codec faults on the next attempt,
// so Terminate waits out its own teardown latency (the settle durations)
// instead of every caller re-implementing the delay.
type SessionResource struct {
	mu     sync.Mutex
	dev    Device
	logger *slog.Logger

	// Empirical waits for asynchronous hardware teardown. Tunable; zero is
	// valid on platforms without buffer-release latency.
	cleanupSettle  time.Duration
	teardownSettle time.Duration

	prepared   bool
	terminated bool
}

// NewSession returns a SessionResource over dev. The settle durations bound
// the waits inside Terminate: cleanupSettle between buffer release and device
// close, teardownSettle between device close and returning to the caller.
func NewSession(dev Device, logger *slog.Logger, cleanupSettle, teardownSettle time.Duration) *SessionResource {
	return &SessionResource{
		dev:            dev,
		logger:         logger,
		cleanupSettle:  cleanupSettle,
		teardownSettle: teardownSettle,
	}
}

// Prepare acquires the hardware resources for one attempt. It must run before
// any UI that reads capture frames is shown. A second Prepare while the
// session is held returns ErrSessionBusy. Device-level failures are swallowed
// and logged: availability is checked by a separate collaborator before the
// acquisition UI is offered at all, so by the time Prepare runs a failure is
// surfaced at first use instead.
func (s *SessionResource) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prepared && !s.terminated {
		return ErrSessionBusy
	}
	s.prepared = true
	s.terminated = false
	if s.dev == nil {
		return nil
	}
	if err := s.dev.Open(); err != nil && s.logger != nil {
		s.logger.Warn("session prepare: device open failed", "error", err)
	}
	return nil
}

// Cleanup releases capture buffers while keeping the device alive for reuse.
// Called immediately after an image is obtained, success or failure.
func (s *SessionResource) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared || s.terminated {
		return
	}
	if s.dev != nil {
		if err := s.dev.ReleaseBuffers(); err != nil && s.logger != nil {
			s.logger.Warn("session cleanup: release buffers failed", "error", err)
		}
	}
}

// Terminate fully tears down the session. It runs whenever the acquisition UI
// is dismissed, regardless of outcome, and is a no-op on an already-terminated
// session. It blocks for the configured settle durations.
func (s *SessionResource) Terminate() {
	s.mu.Lock()
	if s.terminated || !s.prepared {
		s.terminated = true
		s.prepared = false
		s.mu.Unlock()
		return
	}
	s.terminated = true
	s.prepared = false
	dev := s.dev
	s.mu.Unlock()

	// Give the hardware layer time to flush released buffers before the
	// device itself goes away, and again before the UI starts dismissing.
	sleep(s.cleanupSettle)
	if dev != nil {
		if err := dev.Close(); err != nil && s.logger != nil {
			s.logger.Warn("session terminate: device close failed", "error", err)
		}
	}
	sleep(s.teardownSettle)
	if s.logger != nil {
		s.logger.Debug("session terminated")
	}
}

// Held reports whether an attempt currently holds the session.
func (s *SessionResource) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepared && !s.terminated
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

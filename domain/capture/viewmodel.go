package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// StateListener is called on each successful state transition.
type StateListener func(prev, next State)

// Snapshot is the published view of the ViewModel. Reads are lock-free;
// mutation happens only on the owning event loop.
type Snapshot struct {
	State   State
	Images  []CapturedImage
	Message string // set while State == StateError
}

// ViewModel is the single owner of the current capture state and the most
// recently captured image(s). It survives across presentation/dismissal of
// the acquisition UI. All mutation is funneled through one event loop
// goroutine so the legal-transition table is enforced in exactly one place;
// hardware callbacks arriving on foreign goroutines only enqueue events.
type ViewModel struct {
	logger    *slog.Logger
	events    chan vmEvent
	snap      atomic.Pointer[Snapshot]
	listeners []StateListener // loop-owned
	closed    atomic.Bool
}

type vmEvent struct {
	apply func(*vmState)
	done  chan error
}

// vmState is the loop-owned mutable state.
type vmState struct {
	state   State
	images  []CapturedImage
	message string
	err     error // outcome of the current event, reported to the sender
}

// NewViewModel constructs the ViewModel and starts its event loop.
func NewViewModel(logger *slog.Logger) *ViewModel {
	vm := &ViewModel{logger: logger, events: make(chan vmEvent, 16)}
	vm.snap.Store(&Snapshot{State: StateIdle})
	go func() {
		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.Error("viewmodel panic", "error", r, "stack", string(debug.Stack()))
			}
		}()
		vm.loop()
	}()
	return vm
}

func (vm *ViewModel) loop() {
	st := &vmState{state: StateIdle}
	for ev := range vm.events {
		st.err = nil
		ev.apply(st)
		vm.publish(st)
		if ev.done != nil {
			ev.done <- st.err
		}
	}
}

func (vm *ViewModel) publish(st *vmState) {
	images := make([]CapturedImage, len(st.images))
	copy(images, st.images)
	vm.snap.Store(&Snapshot{State: st.state, Images: images, Message: st.message})
}

// do enqueues an event and waits for the loop to apply it. The wait gives
// callers the ordering guarantees the capture sequencing depends on (for
// example: image stored before session teardown starts).
func (vm *ViewModel) do(apply func(*vmState)) (err error) {
	if vm.closed.Load() {
		return errors.New("viewmodel closed")
	}
	defer func() {
		if recover() != nil { // lost the race against Close
			err = errors.New("viewmodel closed")
		}
	}()
	done := make(chan error, 1)
	vm.events <- vmEvent{apply: apply, done: done}
	return <-done
}

// transition moves the loop state through the legal-transition table.
func (vm *ViewModel) transition(st *vmState, next State) {
	prev := st.state
	if !canTransition(prev, next) {
		st.err = fmt.Errorf("illegal capture transition %s -> %s", prev, next)
		if vm.logger != nil {
			vm.logger.Warn("capture transition rejected", "from", prev.String(), "to", next.String())
		}
		return
	}
	st.state = next
	if vm.logger != nil {
		vm.logger.Debug("capture state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range vm.listeners {
		l(prev, next)
	}
}

// force moves to next unconditionally (explicit user reset path).
func (vm *ViewModel) force(st *vmState, next State, reason string) {
	prev := st.state
	if prev == next {
		return
	}
	st.state = next
	if vm.logger != nil {
		vm.logger.Debug("capture state forced", "from", prev.String(), "to", next.String(), "reason", reason)
	}
	for _, l := range vm.listeners {
		l(prev, next)
	}
}

// AddListener registers a transition listener. Listeners run on the event
// loop goroutine and must not block.
func (vm *ViewModel) AddListener(l StateListener) {
	_ = vm.do(func(st *vmState) { vm.listeners = append(vm.listeners, l) })
}

// Begin marks the start of a hardware session (idle -> capturing). A second
// Begin while an attempt is underway is rejected.
func (vm *ViewModel) Begin() error {
	return vm.do(func(st *vmState) { vm.transition(st, StateCapturing) })
}

// StorePages stores normalized page(s) and moves to preview. It returns only
// after the images are held by the ViewModel, so callers may start session
// teardown immediately afterwards.
func (vm *ViewModel) StorePages(pages []CapturedImage) error {
	return vm.do(func(st *vmState) {
		if len(pages) == 0 {
			st.err = errors.New("store: no pages")
			return
		}
		vm.transition(st, StatePreview)
		if st.err == nil {
			st.images = pages
			st.message = ""
		}
	})
}

// Fail records a hardware/UI-level acquisition failure (capturing -> error).
// The message is the only part of this pipeline that reaches the user.
func (vm *ViewModel) Fail(msg string) error {
	return vm.do(func(st *vmState) {
		vm.transition(st, StateError)
		if st.err == nil {
			st.message = msg
		}
	})
}

// Cancel abandons the in-flight attempt (capturing -> idle). Images stored by
// an earlier completed attempt are not discarded: cancellation cancels the
// attempt, not already-confirmed captures.
func (vm *ViewModel) Cancel() error {
	return vm.do(func(st *vmState) {
		if st.state != StateCapturing {
			return
		}
		vm.transition(st, StateIdle)
	})
}

// Reset is the explicit user-initiated reset: any state back to idle,
// discarding held images. Callers are responsible for terminating the
// session resource alongside.
func (vm *ViewModel) Reset(reason string) {
	_ = vm.do(func(st *vmState) {
		vm.force(st, StateIdle, reason)
		st.images = nil
		st.message = ""
	})
}

// ViewAppeared is invoked when the acquisition UI is freshly (re-)presented.
// Only idle and error states may be cleared here; preview, done, capturing
// and uploading represent user data or in-flight work and are preserved.
func (vm *ViewModel) ViewAppeared() {
	_ = vm.do(func(st *vmState) {
		switch st.state {
		case StateError:
			vm.transition(st, StateIdle)
			st.message = ""
		case StateIdle:
			// nothing to clear
		default:
			if holdsUserData(st.state) && vm.logger != nil {
				vm.logger.Debug("view reappeared, state preserved", "state", st.state.String())
			}
		}
	})
}

// BeginUpload is driven by the consuming collaborator once the user confirms
// the preview (preview -> uploading).
func (vm *ViewModel) BeginUpload() error {
	return vm.do(func(st *vmState) { vm.transition(st, StateUploading) })
}

// FinishUpload completes the confirmed capture (uploading -> done). The
// images stay held until the caller clears the ViewModel.
func (vm *ViewModel) FinishUpload() error {
	return vm.do(func(st *vmState) { vm.transition(st, StateDone) })
}

// State returns the current capture state.
func (vm *ViewModel) State() State { return vm.snap.Load().State }

// Message returns the user-visible error message, if any.
func (vm *ViewModel) Message() string { return vm.snap.Load().Message }

// Images returns a copy of the held page list.
func (vm *ViewModel) Images() []CapturedImage { return vm.snap.Load().Images }

// Image returns the first held page, or nil when none is held.
func (vm *ViewModel) Image() *CapturedImage {
	imgs := vm.snap.Load().Images
	if len(imgs) == 0 {
		return nil
	}
	img := imgs[0]
	return &img
}

// Close stops the event loop. Further mutators return an error.
func (vm *ViewModel) Close() {
	if vm.closed.Swap(true) {
		return
	}
	close(vm.events)
}

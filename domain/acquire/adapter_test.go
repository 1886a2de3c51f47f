package acquire

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"testing"

	"github.com/larsvh/doc-scan-go/domain/capture"
	"github.com/larsvh/doc-scan-go/hw"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeSession records lifecycle calls and can observe state at terminate time.
type fakeSession struct {
	mu          sync.Mutex
	calls       []string
	held        bool
	onTerminate func()
}

func (s *fakeSession) record(op string) {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	s.mu.Unlock()
}

func (s *fakeSession) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return capture.ErrSessionBusy
	}
	s.held = true
	s.calls = append(s.calls, "prepare")
	return nil
}

func (s *fakeSession) Cleanup() { s.record("cleanup") }

func (s *fakeSession) Terminate() {
	if s.onTerminate != nil {
		s.onTerminate()
	}
	s.mu.Lock()
	s.held = false
	s.calls = append(s.calls, "terminate")
	s.mu.Unlock()
}

func (s *fakeSession) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

func (s *fakeSession) sequence() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *fakeSession) count(op string) int {
	n := 0
	for _, c := range s.sequence() {
		if c == op {
			n++
		}
	}
	return n
}

type fakeFeeder struct {
	pages []image.Image
	err   error
}

func (f *fakeFeeder) Scan(context.Context) ([]image.Image, error) { return f.pages, f.err }

type fakeCam struct {
	img image.Image
	err error
}

func (c *fakeCam) Capture(context.Context) (image.Image, error) { return c.img, c.err }

type fakePicker struct {
	img image.Image
	err error
}

func (p *fakePicker) Pick(context.Context) (image.Image, error) { return p.img, p.err }

func newVM(t *testing.T) *capture.ViewModel {
	t.Helper()
	vm := capture.NewViewModel(discardLogger)
	t.Cleanup(vm.Close)
	return vm
}

func TestScanner_SuccessStoresBeforeTerminate(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	var heldAtTerminate bool
	sess.onTerminate = func() { heldAtTerminate = vm.Image() != nil }

	dismissed := 0
	a := NewScanner(&fakeFeeder{pages: []image.Image{
		image.NewRGBA(image.Rect(0, 0, 101, 200)),
		image.NewRGBA(image.Rect(0, 0, 50, 50)),
	}}, vm, sess, discardLogger, func() { dismissed++ })

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeSuccess || res.Pages != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !heldAtTerminate {
		t.Fatal("image must be held by the viewmodel before terminate runs")
	}
	if vm.State() != capture.StatePreview {
		t.Fatalf("expected preview, got %v", vm.State())
	}
	seq := sess.sequence()
	want := []string{"prepare", "cleanup", "terminate"}
	if len(seq) != len(want) {
		t.Fatalf("session sequence %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("session sequence %v, want %v", seq, want)
		}
	}
	if dismissed != 1 {
		t.Fatalf("dismiss should run exactly once, ran %d times", dismissed)
	}
	// Page order preserved and all pages normalized to even dimensions.
	imgs := vm.Images()
	if imgs[0].Bounds().Dx() != 102 || imgs[1].Bounds().Dx() != 50 {
		t.Fatalf("page order or normalization wrong: %v %v", imgs[0].Bounds(), imgs[1].Bounds())
	}
}

func TestScanner_ZeroPagesIsCancel(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	a := NewScanner(&fakeFeeder{}, vm, sess, discardLogger, nil)

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeCancelled || res.Err != nil {
		t.Fatalf("zero-page scan must cancel without error: %+v", res)
	}
	if vm.State() != capture.StateIdle {
		t.Fatalf("expected idle, got %v", vm.State())
	}
	if vm.Message() != "" {
		t.Fatalf("no error may be surfaced, got %q", vm.Message())
	}
	if n := sess.count("terminate"); n != 1 {
		t.Fatalf("terminate must run exactly once, ran %d", n)
	}
	if sess.count("cleanup") != 0 {
		t.Fatal("cleanup must be skipped when no buffers were produced")
	}
}

func TestScanner_HardwareFailure(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	a := NewScanner(&fakeFeeder{err: errors.New("feed jam")}, vm, sess, discardLogger, nil)

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeFailed {
		t.Fatalf("expected failure, got %+v", res)
	}
	if vm.State() != capture.StateError || vm.Message() != "feed jam" {
		t.Fatalf("expected error state with message, got %v %q", vm.State(), vm.Message())
	}
	if sess.count("terminate") != 1 || sess.count("cleanup") != 0 {
		t.Fatalf("failure teardown wrong: %v", sess.sequence())
	}
}

func TestCamera_SingleShot(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	a := NewCamera(&fakeCam{img: image.NewRGBA(image.Rect(0, 0, 99, 99))}, vm, sess, discardLogger, nil)

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeSuccess || res.Pages != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	img := vm.Image()
	if img == nil || img.Source != capture.SourceCamera {
		t.Fatalf("expected camera-labelled image, got %+v", img)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("expected 100x100 after padding, got %v", img.Bounds())
	}
}

func TestLibrary_SuccessfulPick(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	slot := &capture.Slot{}
	coord := capture.NewCoordinator(vm, slot, nil, 0, discardLogger)

	recorder := &stateRecorder{}
	vm.AddListener(recorder.listener)

	a := NewLibrary(&fakePicker{img: image.NewRGBA(image.Rect(0, 0, 101, 101))}, vm, sess, discardLogger, func() {
		coord.Run(nil)
	})

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("unexpected result: %+v", res)
	}
	got := slot.Get()
	if got == nil {
		t.Fatal("handoff slot must be populated after dismissal")
	}
	if got.Bounds().Dx() != 102 || got.Bounds().Dy() != 102 {
		t.Fatalf("expected 102x102, got %v", got.Bounds())
	}
	seq := recorder.states()
	want := []capture.State{capture.StateCapturing, capture.StatePreview}
	if len(seq) != len(want) || seq[0] != want[0] || seq[1] != want[1] {
		t.Fatalf("transition sequence %v, want %v", seq, want)
	}
}

func TestLibrary_PickerDeclinesIsCancel(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	a := NewLibrary(&fakePicker{err: hw.ErrNoSelection}, vm, sess, discardLogger, nil)

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeCancelled {
		t.Fatalf("expected cancel, got %+v", res)
	}
	if vm.State() != capture.StateIdle || vm.Image() != nil {
		t.Fatalf("expected clean idle, got %v", vm.State())
	}
}

func TestAdapter_ContextCancelledMidFetch(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	a := NewCamera(&fakeCam{err: context.Canceled}, vm, sess, discardLogger, nil)

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeCancelled {
		t.Fatalf("expected cancel, got %+v", res)
	}
	if sess.count("terminate") != 1 {
		t.Fatalf("terminate must still run: %v", sess.sequence())
	}
}

func TestAdapter_SessionBusyLeavesActiveAttemptAlone(t *testing.T) {
	vm := newVM(t)
	sess := &fakeSession{}
	if err := sess.Prepare(); err != nil { // first attempt holds the session
		t.Fatalf("prepare: %v", err)
	}
	a := NewCamera(&fakeCam{img: image.NewRGBA(image.Rect(0, 0, 8, 8))}, vm, sess, discardLogger, nil)

	res := a.Acquire(context.Background())
	if res.Outcome != OutcomeFailed || !errors.Is(res.Err, capture.ErrSessionBusy) {
		t.Fatalf("expected busy failure, got %+v", res)
	}
	if !sess.Held() {
		t.Fatal("the active attempt's session must not be terminated")
	}
	if vm.State() != capture.StateIdle {
		t.Fatalf("rejected attempt must not touch state, got %v", vm.State())
	}
}

type stateRecorder struct {
	mu  sync.Mutex
	seq []capture.State
}

func (r *stateRecorder) listener(prev, next capture.State) {
	r.mu.Lock()
	r.seq = append(r.seq, next)
	r.mu.Unlock()
}

func (r *stateRecorder) states() []capture.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]capture.State, len(r.seq))
	copy(out, r.seq)
	return out
}

// Package acquire implements the three acquisition adapters (scanner, camera,
// photo library). Each variant drives a different backend but converges on
// one contract: a Success/Cancelled/Failed outcome with strict sequencing of
// image storage, session teardown and UI dismissal.
package acquire

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/larsvh/doc-scan-go/domain/capture"
	"github.com/larsvh/doc-scan-go/hw"
)

// Outcome classifies the end of one capture attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports how an attempt ended.
type Result struct {
	Outcome Outcome
	Pages   int
	Err     error
}

// Adapter runs one acquisition source against the shared ViewModel and
// session. Construct via NewScanner, NewCamera or NewLibrary.
//
// Sequencing on success: raw images are extracted in the hardware callback
// before any teardown starts, normalized off the UI path, stored into the
// ViewModel, and only then is the session cleaned up, terminated and the UI
// dismissed. On cancel/failure the session is terminated immediately (no
// buffers were produced, so Cleanup is skipped) and the UI dismissed.
type Adapter struct {
	source  capture.Source
	orient  capture.Orientation
	vm      capture.AttemptOps
	session capture.SessionContract
	logger  *slog.Logger
	fetch   func(ctx context.Context) ([]image.Image, error)

	// dismiss finalizes the acquisition UI for this attempt; typically wired
	// to the handoff coordinator by the presenter. May be nil.
	dismiss func()
}

// NewScanner returns the multi-page document scanner adapter.
func NewScanner(feeder hw.PageSource, vm capture.AttemptOps, session capture.SessionContract, logger *slog.Logger, dismiss func()) *Adapter {
	return &Adapter{
		source:  capture.SourceScanner,
		vm:      vm,
		session: session,
		logger:  logger,
		dismiss: dismiss,
		fetch:   feeder.Scan,
	}
}

// NewCamera returns the single-shot camera adapter.
func NewCamera(cam hw.FrameSource, vm capture.AttemptOps, session capture.SessionContract, logger *slog.Logger, dismiss func()) *Adapter {
	return &Adapter{
		source:  capture.SourceCamera,
		vm:      vm,
		session: session,
		logger:  logger,
		dismiss: dismiss,
		fetch: func(ctx context.Context) ([]image.Image, error) {
			img, err := cam.Capture(ctx)
			if err != nil {
				return nil, err
			}
			return []image.Image{img}, nil
		},
	}
}

// NewLibrary returns the photo-library picker adapter.
func NewLibrary(picker hw.PhotoPicker, vm capture.AttemptOps, session capture.SessionContract, logger *slog.Logger, dismiss func()) *Adapter {
	return &Adapter{
		source:  capture.SourceLibrary,
		vm:      vm,
		session: session,
		logger:  logger,
		dismiss: dismiss,
		fetch: func(ctx context.Context) ([]image.Image, error) {
			img, err := picker.Pick(ctx)
			if err != nil {
				return nil, err
			}
			return []image.Image{img}, nil
		},
	}
}

// SetOrientation records the orientation tag the hardware reports for raw
// frames of this source. Defaults to upright.
func (a *Adapter) SetOrientation(o capture.Orientation) { a.orient = o }

// Source returns the label this adapter stamps on captured images.
func (a *Adapter) Source() capture.Source { return a.source }

// Acquire runs one full capture attempt. It blocks until teardown and
// dismissal have completed and is safe to run from any goroutine: all state
// mutation hops through the ViewModel's owning loop.
func (a *Adapter) Acquire(ctx context.Context) Result {
	if err := a.session.Prepare(); err != nil {
		// Another attempt holds the session; leave it untouched.
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	if err := a.vm.Begin(); err != nil {
		a.session.Terminate()
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	raws, err := a.fetch(ctx)
	switch {
	case isCancellation(err):
		return a.finishCancelled("user cancelled")
	case err != nil:
		return a.finishFailed(err)
	case len(raws) == 0:
		// Zero-page scan: equivalent to a cancel, no error surfaced.
		return a.finishCancelled("zero pages")
	}

	pages, ok := a.normalizePages(ctx, raws)
	if !ok {
		return a.finishCancelled("cancelled during processing")
	}

	// Pages must be held by the ViewModel before any teardown starts.
	if err := a.vm.StorePages(pages); err != nil {
		return a.finishFailed(err)
	}
	a.session.Cleanup()
	a.session.Terminate()
	a.close()
	if a.logger != nil {
		a.logger.Info("capture attempt succeeded", "source", string(a.source), "pages", len(pages))
	}
	return Result{Outcome: OutcomeSuccess, Pages: len(pages)}
}

func (a *Adapter) finishCancelled(reason string) Result {
	_ = a.vm.Cancel()
	a.session.Terminate()
	a.close()
	if a.logger != nil {
		a.logger.Debug("capture attempt cancelled", "source", string(a.source), "reason", reason)
	}
	return Result{Outcome: OutcomeCancelled}
}

func (a *Adapter) finishFailed(err error) Result {
	_ = a.vm.Fail(err.Error())
	a.session.Terminate()
	a.close()
	if a.logger != nil {
		a.logger.Error("capture attempt failed", "source", string(a.source), "error", err)
	}
	return Result{Outcome: OutcomeFailed, Err: err}
}

func (a *Adapter) close() {
	if a.dismiss != nil {
		a.dismiss()
	}
}

// normalizePages fans the raw pages out to worker goroutines and collects the
// normalized results in page order. Returns ok=false if ctx is cancelled
// before every page is processed.
func (a *Adapter) normalizePages(ctx context.Context, raws []image.Image) ([]capture.CapturedImage, bool) {
	type indexed struct {
		i   int
		img capture.CapturedImage
	}
	ch := make(chan indexed, len(raws))
	for i, raw := range raws {
		capture.NormalizeAsync(raw, a.orient, a.source, a.logger, func(out capture.CapturedImage) {
			ch <- indexed{i: i, img: out}
		})
	}

	out := make([]capture.CapturedImage, len(raws))
	for range raws {
		select {
		case r := <-ch:
			out[r.i] = r.img
		case <-ctx.Done():
			return nil, false
		}
	}
	return out, true
}

func isCancellation(err error) bool {
	return err != nil && (errors.Is(err, hw.ErrNoSelection) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded))
}

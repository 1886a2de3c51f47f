package presenter

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/larsvh/doc-scan-go/domain/acquire"
	"github.com/larsvh/doc-scan-go/domain/capture"
	"github.com/larsvh/doc-scan-go/ui/model"
)

// AcquireViewModel narrows what this presenter needs from the capture layer.
type AcquireViewModel interface {
	capture.AttemptOps
	ViewAppeared()
	Reset(reason string)
	Image() *capture.CapturedImage
}

// HistorySink records completed captures.
type HistorySink interface {
	Record(capture.CapturedImage)
}

// UploadDriver is the confirmed-capture surface the presenter drives on
// behalf of the consuming collaborator.
type UploadDriver interface {
	BeginUpload() error
	FinishUpload() error
}

// AcquireView is the subset of view operations this presenter touches.
type AcquireView interface {
	ShowError(msg string)
	Dismiss()
}

// AcquirePresenter opens acquisition attempts and owns their UI lifecycle:
// presentation (ViewAppeared), the adapter run, and dismissal through the
// handoff coordinator. One attempt at a time.
type AcquirePresenter struct {
	vm      AcquireViewModel
	upload  UploadDriver
	coord   *capture.Coordinator
	handoff *model.HandoffModel
	view    AcquireView
	history HistorySink
	logger  *slog.Logger

	scanner *acquire.Adapter
	camera  *acquire.Adapter
	library *acquire.Adapter

	available func() bool
	busy      atomic.Bool
}

// Sources bundles the adapters the presenter can open.
type Sources struct {
	Scanner *acquire.Adapter
	Camera  *acquire.Adapter
	Library *acquire.Adapter
}

// NewAcquirePresenter wires the presenter. available gates source opening;
// history may be nil.
func NewAcquirePresenter(
	vm AcquireViewModel,
	upload UploadDriver,
	coord *capture.Coordinator,
	handoff *model.HandoffModel,
	view AcquireView,
	history HistorySink,
	src Sources,
	available func() bool,
	logger *slog.Logger,
) *AcquirePresenter {
	return &AcquirePresenter{
		vm:        vm,
		upload:    upload,
		coord:     coord,
		handoff:   handoff,
		view:      view,
		history:   history,
		logger:    logger,
		scanner:   src.Scanner,
		camera:    src.Camera,
		library:   src.Library,
		available: available,
	}
}

// OnDismiss is the callback adapters should be constructed with: it runs the
// handoff (slot write, verification) around the view's dismissal.
func (p *AcquirePresenter) OnDismiss() {
	if p == nil || p.coord == nil {
		return
	}
	var dismiss func()
	if p.view != nil {
		dismiss = p.view.Dismiss
	}
	p.coord.Run(dismiss)
}

// OpenScanner starts a multi-page scan attempt.
func (p *AcquirePresenter) OpenScanner(ctx context.Context) { p.open(ctx, p.scanner) }

// OpenCamera starts a single-shot camera attempt.
func (p *AcquirePresenter) OpenCamera(ctx context.Context) { p.open(ctx, p.camera) }

// OpenLibrary starts a photo-library pick attempt.
func (p *AcquirePresenter) OpenLibrary(ctx context.Context) { p.open(ctx, p.library) }

func (p *AcquirePresenter) open(ctx context.Context, a *acquire.Adapter) {
	if p == nil || p.vm == nil || a == nil {
		return
	}
	if p.available != nil && !p.available() {
		if p.view != nil {
			p.view.ShowError("capture hardware unavailable")
		}
		return
	}
	if p.busy.Swap(true) {
		return // an attempt is already underway
	}
	if p.handoff != nil {
		p.handoff.SetPresented(true)
	}
	// The acquisition surface is freshly presented: only idle/error state may
	// be cleared here.
	p.vm.ViewAppeared()

	go func() {
		defer p.busy.Store(false)
		res := a.Acquire(ctx)
		if res.Outcome == acquire.OutcomeFailed && res.Err != nil {
			if p.logger != nil {
				p.logger.Error("acquisition failed", "source", string(a.Source()), "error", res.Err)
			}
			if p.view != nil {
				p.view.ShowError(res.Err.Error())
			}
		}
	}()
}

// Confirm drives the confirmed capture through upload to done and records it
// in history. No-op unless a preview is held.
func (p *AcquirePresenter) Confirm() {
	if p == nil || p.upload == nil {
		return
	}
	if err := p.upload.BeginUpload(); err != nil {
		return
	}
	if err := p.upload.FinishUpload(); err != nil {
		return
	}
	if p.history != nil {
		if img := p.vm.Image(); img != nil {
			p.history.Record(*img)
		}
	}
}

// ResetAll is the explicit user reset: state back to idle, held images
// discarded, session terminated, slot cleared.
func (p *AcquirePresenter) ResetAll(session capture.SessionContract) {
	if p == nil || p.vm == nil {
		return
	}
	p.vm.Reset("user reset")
	if session != nil {
		session.Terminate()
	}
	if p.handoff != nil {
		p.handoff.Slot.Clear()
		p.handoff.SetPresented(false)
	}
}

// Busy reports whether an attempt is underway.
func (p *AcquirePresenter) Busy() bool { return p.busy.Load() }

package presenter

import (
	"image"
	"time"

	"github.com/larsvh/doc-scan-go/domain/capture"
)

// StateSource provides the capture state the presenter reflects.
type StateSource interface {
	State() capture.State
	Message() string
	Image() *capture.CapturedImage
}

// StateView updates UI elements that mirror capture state.
type StateView interface {
	SetStateLabel(string)
	UpdatePreview(image.Image)
	ShowError(string)
}

// StatePresenter polls the capture state on each tick and pushes changes to
// the view: the state label always, the preview on entering preview/done, the
// error message on entering error. Only deltas are pushed.
type StatePresenter struct {
	src    StateSource
	view   StateView
	latest capture.State
	seeded bool
}

func NewStatePresenter(src StateSource, view StateView) *StatePresenter {
	return &StatePresenter{src: src, view: view}
}

// Tick reflects the current state into the view when it changed.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	s := p.src.State()
	if p.seeded && s == p.latest {
		return
	}
	p.latest = s
	p.seeded = true
	p.view.SetStateLabel("State: " + s.String())
	switch s {
	case capture.StatePreview, capture.StateDone:
		if img := p.src.Image(); img != nil && img.Pixels != nil {
			p.view.UpdatePreview(img.Pixels)
		}
	case capture.StateError:
		p.view.ShowError(p.src.Message())
	}
}

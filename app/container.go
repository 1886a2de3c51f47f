package app

import (
	"log/slog"

	"github.com/larsvh/doc-scan-go/config"
	"github.com/larsvh/doc-scan-go/domain/acquire"
	"github.com/larsvh/doc-scan-go/domain/capture"
	"github.com/larsvh/doc-scan-go/history"
	"github.com/larsvh/doc-scan-go/hw"
	"github.com/larsvh/doc-scan-go/ui/model"
	"github.com/larsvh/doc-scan-go/ui/presenter"
	"github.com/larsvh/doc-scan-go/ui/view"
)

// AppContainer assembles the capture pipeline, its hardware backends, the
// presenters and the window.
type AppContainer struct {
	Config *config.Config
	Logger *slog.Logger

	VM          *capture.ViewModel
	Session     *capture.SessionResource
	Handoff     *model.HandoffModel
	Coordinator *capture.Coordinator
	History     *history.Store

	Window  *view.CaptureWindow
	Acquire *presenter.AcquirePresenter
	State   *presenter.StatePresenter
	Loop    *presenter.Loop
}

// BuildContainer constructs all components. The window layout itself is built
// later by the app wrapper, on the Tk thread.
func BuildContainer(cfg *config.Config, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}

	c.VM = capture.NewViewModel(logger)
	cam := hw.NewScreenCamera(logger)
	c.Session = capture.NewSession(cam, logger, cfg.CleanupSettle(), cfg.TeardownSettle())

	c.Handoff = &model.HandoffModel{}
	c.Coordinator = capture.NewCoordinator(c.VM, &c.Handoff.Slot, c.Handoff, cfg.HandoffGrace(), logger)

	hist, err := history.NewStore(cfg.HistorySize, logger)
	if err != nil {
		// Validate clamps the size, so this only fires on a hand-built config.
		logger.Warn("history store disabled", "size", cfg.HistorySize, "error", err)
	}
	c.History = hist

	c.Window = view.NewCaptureWindow(cfg.PreviewMaxW, cfg.PreviewMaxH, logger)

	feeder := hw.NewSpoolFeeder(cfg.SpoolDir, logger)
	library := hw.NewPicturesLibrary(cfg.PicturesDir, logger)

	// Adapters dismiss through the presenter's handoff path; the presenter in
	// turn needs the adapters, so the dismiss closure resolves it lazily.
	var ap *presenter.AcquirePresenter
	dismiss := func() { ap.OnDismiss() }
	src := presenter.Sources{
		Scanner: acquire.NewScanner(feeder, c.VM, c.Session, logger, dismiss),
		Camera:  acquire.NewCamera(cam, c.VM, c.Session, logger, dismiss),
		Library: acquire.NewLibrary(library, c.VM, c.Session, logger, dismiss),
	}

	var sink presenter.HistorySink
	if c.History != nil {
		sink = c.History
	}
	ap = presenter.NewAcquirePresenter(c.VM, c.VM, c.Coordinator, c.Handoff, c.Window, sink, src, hw.Available, logger)
	c.Acquire = ap

	c.State = presenter.NewStatePresenter(c.VM, c.Window)
	c.Loop = presenter.NewLoop(c.State, nil) // scheduler attached by the app wrapper
	return c
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	. "modernc.org/tk9.0"

	"github.com/larsvh/doc-scan-go/config"
	"github.com/larsvh/doc-scan-go/ui/view"
)

const tick = 100 * time.Millisecond

type app struct {
	container *AppContainer
	logger    *slog.Logger
	afterID   string
}

// NewApp builds the container and the top-level Tk window.
func NewApp(title string, width, height int, cfg *config.Config, logger *slog.Logger) *app {
	a := &app{logger: logger}
	a.container = BuildContainer(cfg, logger)

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the window layout, arms the update loop and blocks until the
// window is destroyed.
func (a *app) Start() {
	c := a.container
	ctx := context.Background()

	c.Window.Build(view.Handlers{
		OnScanner: func() {
			c.Window.ShowStatus("Scanning pages from spool...")
			c.Acquire.OpenScanner(ctx)
		},
		OnCamera: func() {
			c.Window.ShowStatus("Capturing frame...")
			c.Acquire.OpenCamera(ctx)
		},
		OnLibrary: func() {
			c.Window.ShowStatus("Picking from library...")
			c.Acquire.OpenLibrary(ctx)
		},
		OnConfirm: func() { c.Acquire.Confirm() },
		OnReset:   func() { c.Acquire.ResetAll(c.Session) },
		OnExit:    a.exitHandler,
	})

	c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()

	App.Wait()
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	// Drop the capture pipeline before the window: the session teardown can
	// sleep through its settle delays and must not keep Tk alive.
	if a.container != nil {
		a.container.VM.Close()
		go a.container.Session.Terminate()
	}
	Destroy(App)
}

// scheduleUpdate re-arms the presenter loop on Tk's event-loop thread.
func (a *app) scheduleUpdate() {
	a.afterID = TclAfter(tick, func() { a.container.Loop.Tick() })
}

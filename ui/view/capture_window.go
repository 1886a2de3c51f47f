package view

import (
	"image"
	"log/slog"

	"github.com/larsvh/doc-scan-go/ui/images"
	"github.com/larsvh/doc-scan-go/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

var (
	_ presenter.AcquireView = (*CaptureWindow)(nil)
	_ presenter.StateView   = (*CaptureWindow)(nil)
)

// CaptureWindow composes the top-level layout: a state label, the source
// buttons, the page preview and a status line for the running attempt. It
// implements the view contracts of both presenters.
type CaptureWindow struct {
	cfgPreviewW int
	cfgPreviewH int
	logger      *slog.Logger

	// Widgets
	StateLabel   *LabelWidget
	statusLabel  *LabelWidget
	previewLabel *LabelWidget
	prevPhoto    *Img
}

// Handlers carries the user action callbacks the window binds to its buttons.
type Handlers struct {
	OnScanner func()
	OnCamera  func()
	OnLibrary func()
	OnConfirm func()
	OnReset   func()
	OnExit    func()
}

func NewCaptureWindow(previewW, previewH int, logger *slog.Logger) *CaptureWindow {
	if previewW <= 0 {
		previewW = 400
	}
	if previewH <= 0 {
		previewH = 300
	}
	return &CaptureWindow{cfgPreviewW: previewW, cfgPreviewH: previewH, logger: logger}
}

// Build constructs the layout and binds the handlers.
func (w *CaptureWindow) Build(h Handlers) {
	if w == nil {
		return
	}
	// Row 0: state label and the button column.
	w.StateLabel = Label(Txt("State: <none>"), Borderwidth(1), Relief("ridge"))
	Grid(w.StateLabel, Row(0), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	scannerBtn := Button(Txt("Scan Pages"), Command(h.OnScanner))
	Grid(scannerBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cameraBtn := Button(Txt("Camera Shot"), Command(h.OnCamera))
	Grid(cameraBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	libraryBtn := Button(Txt("From Library"), Command(h.OnLibrary))
	Grid(libraryBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	confirmBtn := Button(Txt("Confirm Upload"), Command(h.OnConfirm))
	Grid(confirmBtn, In(btnFrame), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	resetBtn := Button(Txt("Reset"), Command(h.OnReset))
	Grid(resetBtn, In(btnFrame), Row(4), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(h.OnExit))
	Grid(exitBtn, In(btnFrame), Row(5), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 1: preview area, seeded with a placeholder so the grid cell has a
	// stable footprint before the first capture arrives.
	placeholder := image.NewRGBA(image.Rect(0, 0, 200, 150))
	w.prevPhoto = NewPhoto(Data(images.EncodePNG(placeholder)))
	w.previewLabel = Label(Image(w.prevPhoto), Borderwidth(1), Relief("sunken"))
	Grid(w.previewLabel, Row(1), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.4m"))

	// Row 2: attempt status line.
	w.statusLabel = Label(Txt(""), Borderwidth(1), Relief("flat"))
	Grid(w.statusLabel, Row(2), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
}

// SetStateLabel updates the state label text.
func (w *CaptureWindow) SetStateLabel(text string) {
	if w == nil || w.StateLabel == nil {
		return
	}
	func() { defer func() { _ = recover() }(); w.StateLabel.Configure(Txt(text)) }()
}

// UpdatePreview replaces the preview image. The incoming image is scaled to
// the configured preview bounds; the previous Tk photo is deleted so stale
// pixel buffers do not accumulate off-screen.
func (w *CaptureWindow) UpdatePreview(img image.Image) {
	if w == nil || w.previewLabel == nil || img == nil {
		return
	}
	scaled := images.Thumbnail(img, w.cfgPreviewW, w.cfgPreviewH)
	pngBytes := images.EncodePNG(scaled)
	func() {
		defer func() { _ = recover() }()
		if w.prevPhoto != nil {
			w.prevPhoto.Delete()
		}
		w.prevPhoto = NewPhoto(Data(pngBytes))
		w.previewLabel.Configure(Image(w.prevPhoto))
	}()
}

// ShowError surfaces an attempt failure on the status line.
func (w *CaptureWindow) ShowError(msg string) {
	if w == nil {
		return
	}
	if w.logger != nil {
		w.logger.Error("capture error shown", "message", msg)
	}
	if w.statusLabel == nil {
		return
	}
	func() { defer func() { _ = recover() }(); w.statusLabel.Configure(Txt("Error: " + msg)) }()
}

// ShowStatus updates the status line, e.g. while an attempt is running.
func (w *CaptureWindow) ShowStatus(msg string) {
	if w == nil || w.statusLabel == nil {
		return
	}
	func() { defer func() { _ = recover() }(); w.statusLabel.Configure(Txt(msg)) }()
}

// Dismiss finalizes the acquisition surface for the completed attempt. The
// window stays up; only the attempt status line is cleared.
func (w *CaptureWindow) Dismiss() {
	w.ShowStatus("")
}

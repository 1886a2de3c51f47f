package capture

// Narrow contract slices for consumers (adapters, presenters). Components
// should depend on the smallest contract that serves them.

// StateSource provides read access to the current capture state.
type StateSource interface {
	State() State
	Message() string
}

// ImageSource provides read access to held pages.
type ImageSource interface {
	Image() *CapturedImage
	Images() []CapturedImage
}

// AttemptOps is the mutation surface an acquisition adapter drives.
type AttemptOps interface {
	Begin() error
	StorePages([]CapturedImage) error
	Fail(msg string) error
	Cancel() error
}

// ViewLifecycle is the mutation surface tied to UI presentation boundaries.
type ViewLifecycle interface {
	ViewAppeared()
	Reset(reason string)
}

// UploadOps is the surface driven by the consuming collaborator after the
// user confirms a preview.
type UploadOps interface {
	BeginUpload() error
	FinishUpload() error
}

// ViewModelContract aggregates the full surface for DI.
type ViewModelContract interface {
	StateSource
	ImageSource
	AttemptOps
	ViewLifecycle
	UploadOps
	AddListener(StateListener)
	Close()
}

// SessionContract is the session lifecycle surface adapters drive.
type SessionContract interface {
	Prepare() error
	Cleanup()
	Terminate()
	Held() bool
}

// Contract satisfaction checks.
var (
	_ ViewModelContract = (*ViewModel)(nil)
	_ SessionContract   = (*SessionResource)(nil)
)

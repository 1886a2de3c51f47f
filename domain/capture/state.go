package capture

// State enumerates the mutually exclusive phases of a capture attempt.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StatePreview
	StateUploading
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StatePreview:
		return "preview"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// legalTransitions is the single gate for every state mutation. A forced
// user reset (any state back to idle) is handled separately and does not
// appear here.
var legalTransitions = map[State][]State{
	StateIdle:      {StateCapturing},
	StateCapturing: {StatePreview, StateError, StateIdle}, // idle = cancelled attempt
	StatePreview:   {StateUploading},
	StateUploading: {StateDone},
	StateError:     {StateIdle}, // only when the acquisition view reappears
	StateDone:      {},
}

// canTransition reports whether moving from one state to the next is legal.
func canTransition(from, to State) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// holdsUserData reports whether a state must never be cleared silently:
// it represents captured pixels or in-flight work that has not yet reached
// the caller.
func holdsUserData(s State) bool {
	switch s {
	case StateCapturing, StatePreview, StateUploading, StateDone:
		return true
	}
	return false
}

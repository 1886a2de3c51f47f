package capture

import "testing"

func TestCanTransition_LegalPaths(t *testing.T) {
	legal := []struct{ from, to State }{
		{StateIdle, StateCapturing},
		{StateCapturing, StatePreview},
		{StateCapturing, StateError},
		{StateCapturing, StateIdle},
		{StatePreview, StateUploading},
		{StateUploading, StateDone},
		{StateError, StateIdle},
	}
	for _, tc := range legal {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}
}

func TestCanTransition_IllegalPaths(t *testing.T) {
	illegal := []struct{ from, to State }{
		{StateIdle, StatePreview},
		{StateIdle, StateDone},
		{StatePreview, StateCapturing},
		{StatePreview, StateIdle}, // only via explicit reset
		{StateDone, StateCapturing},
		{StateDone, StateIdle}, // only via explicit reset
		{StateUploading, StateIdle},
		{StateError, StateCapturing},
		{StateCapturing, StateCapturing},
	}
	for _, tc := range illegal {
		if canTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestHoldsUserData(t *testing.T) {
	holding := []State{StateCapturing, StatePreview, StateUploading, StateDone}
	for _, s := range holding {
		if !holdsUserData(s) {
			t.Errorf("%s should count as holding user data", s)
		}
	}
	for _, s := range []State{StateIdle, StateError} {
		if holdsUserData(s) {
			t.Errorf("%s should be clearable", s)
		}
	}
}

func TestStateString(t *testing.T) {
	if StatePreview.String() != "preview" || StateError.String() != "error" {
		t.Fatalf("unexpected state names: %s %s", StatePreview, StateError)
	}
	if State(99).String() != "unknown" {
		t.Fatalf("out-of-range state should stringify as unknown")
	}
}

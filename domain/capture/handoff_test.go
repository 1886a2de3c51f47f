package capture

import (
	"sync/atomic"
	"testing"
	"time"
)

type fakePresented struct{ presented atomic.Bool }

func (f *fakePresented) SetPresented(b bool) { f.presented.Store(b) }

func storedVM(t *testing.T) *ViewModel {
	t.Helper()
	vm := newTestVM(t)
	if err := vm.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := vm.StorePages([]CapturedImage{testPage(102, 102)}); err != nil {
		t.Fatalf("store: %v", err)
	}
	return vm
}

func TestCoordinator_WritesSlotBeforeDismissal(t *testing.T) {
	vm := storedVM(t)
	slot := &Slot{}
	pres := &fakePresented{}
	pres.SetPresented(true)
	c := NewCoordinator(vm, slot, pres, 0, discardLogger)

	var slotAtDismiss *CapturedImage
	c.Run(func() { slotAtDismiss = slot.Get() })

	if slotAtDismiss == nil {
		t.Fatal("slot must be populated before dismissal completes")
	}
	if slot.Get() == nil {
		t.Fatal("slot must still hold the image after the grace period")
	}
	if pres.presented.Load() {
		t.Fatal("coordinator should clear the presented flag")
	}
	if vm.State() != StatePreview {
		t.Fatalf("handoff must not clear the viewmodel, got %v", vm.State())
	}
}

func TestCoordinator_RestoresRacedSlotOnce(t *testing.T) {
	vm := storedVM(t)
	slot := &Slot{}
	c := NewCoordinator(vm, slot, nil, 10*time.Millisecond, discardLogger)

	// Simulate an external actor clearing the slot between dismissal and the
	// verification read.
	c.Run(func() { go func() { slot.Clear() }() })

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if slot.Get() != nil && c.Races() == 1 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("expected one restore, slot=%v races=%d", slot.Get(), c.Races())
}

func TestCoordinator_NoImageResetsViewModel(t *testing.T) {
	vm := newTestVM(t)
	_ = vm.Begin()
	_ = vm.Cancel()
	slot := &Slot{}
	c := NewCoordinator(vm, slot, nil, 0, discardLogger)

	dismissed := false
	c.Run(func() { dismissed = true })

	if !dismissed {
		t.Fatal("dismissal callback must run")
	}
	if slot.Get() != nil {
		t.Fatal("slot must stay empty without a capture")
	}
	if vm.State() != StateIdle {
		t.Fatalf("expected idle, got %v", vm.State())
	}
}

func TestCoordinator_SuppressionFlagIsOneShot(t *testing.T) {
	vm := storedVM(t)
	_ = vm.BeginUpload()
	_ = vm.FinishUpload()
	// Drop to a no-image viewmodel to observe the reset behavior.
	vm.Reset("transfer complete")

	slot := &Slot{}
	c := NewCoordinator(vm, slot, nil, 0, discardLogger)
	c.SuppressNextReset()

	// First run: suppression armed, no image -> no reset side effects beyond
	// what the caller already did, flag consumed.
	c.Run(nil)
	if vm.State() != StateIdle {
		t.Fatalf("unexpected state: %v", vm.State())
	}

	// Re-arm the scenario: a fresh attempt leaves images, caller clears them,
	// next run without suppression resets as a cancel. The flag from the
	// first run must not linger.
	_ = vm.Begin()
	c.Run(nil)
	if vm.State() != StateIdle {
		t.Fatalf("unsuppressed run should reset a dangling attempt, got %v", vm.State())
	}
}

func TestSlot_TakeClears(t *testing.T) {
	s := &Slot{}
	img := testPage(8, 8)
	s.Set(&img)
	if s.Take() == nil {
		t.Fatal("take should return the stored image")
	}
	if s.Get() != nil {
		t.Fatal("take should clear the slot")
	}
}

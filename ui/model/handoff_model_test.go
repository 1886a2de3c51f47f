package model

import (
	"image"
	"testing"

	"github.com/larsvh/doc-scan-go/domain/capture"
)

func TestHandoffModel_PresentedFlag(t *testing.T) {
	m := &HandoffModel{}
	if m.Presented() {
		t.Fatal("zero value should not be presented")
	}
	m.SetPresented(true)
	if !m.Presented() {
		t.Fatal("flag should stick")
	}
	m.SetPresented(false)
	if m.Presented() {
		t.Fatal("flag should clear")
	}
}

func TestHandoffModel_SlotIndependentOfFlag(t *testing.T) {
	m := &HandoffModel{}
	img := capture.Normalize(image.NewRGBA(image.Rect(0, 0, 8, 8)), capture.OrientUp, capture.SourceCamera)
	m.Slot.Set(&img)
	m.SetPresented(false)
	if m.Slot.Get() == nil {
		t.Fatal("clearing the presented flag must not clear the slot")
	}
}

func TestHandoffModel_NilSafe(t *testing.T) {
	var m *HandoffModel
	if m.Presented() {
		t.Fatal("nil model should read as not presented")
	}
	m.SetPresented(true) // must not panic
}

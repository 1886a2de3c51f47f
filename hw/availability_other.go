//go:build !windows

package hw

import "github.com/vova616/screenshot"

// Available reports whether the display capture subsystem can be used at all.
// Consulted before the acquisition UI is offered; Prepare assumes it passed.
func Available() bool {
	r, err := screenshot.ScreenRect()
	return err == nil && !r.Empty()
}

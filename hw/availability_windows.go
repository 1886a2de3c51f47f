//go:build windows

package hw

import "golang.org/x/sys/windows"

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const smCMonitors = 80

// Available reports whether the display capture subsystem can be used at all.
// Consulted before the acquisition UI is offered; Prepare assumes it passed.
func Available() bool {
	n, _, _ := procGetSystemMetrics.Call(uintptr(smCMonitors))
	return int(n) > 0
}

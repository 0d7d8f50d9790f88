package core

import "unsafe"

// Window is the presentation target created by the host. Its shape follows
// what a Vulkan backend needs to build a surface.
type Window interface {
	// FramebufferSize returns the drawable size in pixels. Either value is
	// zero while the window is minimized.
	FramebufferSize() (width, height int)
	RequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
}

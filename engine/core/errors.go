package core

import (
	"errors"
)

var (
	// ErrInvalidTransition is raised when a lifecycle operation is called in
	// a state that does not allow it. It is a programming error.
	ErrInvalidTransition = errors.New("invalid application state transition")
	// ErrResourceCreation wraps failures to create the window, device,
	// swapchain, pipeline or other GPU resources.
	ErrResourceCreation = errors.New("resource creation failed")
	// ErrDeviceFailure wraps unrecoverable submit, present or device errors.
	ErrDeviceFailure = errors.New("gpu device failure")
	ErrNoBackend     = errors.New("no renderer backend configured")
	ErrUnknown       = errors.New("unknown")
)

package platform

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Window is the GLFW window handed to the renderer backend.
type Window struct {
	handle *glfw.Window
}

func (w *Window) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

func (w *Window) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	return w.handle.CreateWindowSurface(instance, allocCallbacks)
}

// Platform is the GLFW host loop. Callbacks are queued as host events and
// delivered in order from Run.
type Platform struct {
	window *Window
	queue  []core.HostEvent

	redrawRequested bool
	exitRequested   bool

	// alive is read by Wake from other goroutines
	alive atomic.Bool
}

func New() *Platform {
	return &Platform{}
}

var _ engine.Host = (*Platform)(nil)

func (p *Platform) CreateWindow(config *engine.ApplicationConfig) (core.Window, error) {
	if p.window != nil {
		return nil, fmt.Errorf("window already created")
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw reports no vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	handle, err := glfw.CreateWindow(int(config.StartWidth), int(config.StartHeight), config.Name, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	p.window = &Window{handle: handle}
	p.alive.Store(true)

	handle.SetKeyCallback(p.keyCallback)
	handle.SetMouseButtonCallback(p.mouseButtonCallback)
	handle.SetCursorPosCallback(p.cursorPosCallback)
	handle.SetScrollCallback(p.scrollCallback)
	handle.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	handle.SetCloseCallback(p.closeCallback)
	handle.SetPos(int(config.StartPosX), int(config.StartPosY))
	handle.Show()

	width, height := handle.GetFramebufferSize()
	core.LogInfo("window %q created, framebuffer %dx%d", config.Name, width, height)
	return p.window, nil
}

func (p *Platform) RequestRedraw() {
	p.redrawRequested = true
}

func (p *Platform) Exit() {
	p.exitRequested = true
}

// Wake unblocks a Run loop waiting for events while the window is minimized.
// It is safe to call from any goroutine.
func (p *Platform) Wake() {
	if p.alive.Load() {
		glfw.PostEmptyEvent()
	}
}

// Run pumps GLFW until Exit is called. Each iteration delivers the queued
// window events, then ABOUT_TO_IDLE, then a redraw if one was requested.
// The first handler error stops the loop.
func (p *Platform) Run(handle func(core.HostEvent) error) error {
	if p.window == nil {
		return fmt.Errorf("run called before the window was created")
	}
	for !p.exitRequested {
		if p.window.handle.GetAttrib(glfw.Iconified) == glfw.True {
			glfw.WaitEvents()
		} else {
			glfw.PollEvents()
		}

		events := p.queue
		p.queue = nil
		for _, ev := range events {
			if err := handle(ev); err != nil {
				return fmt.Errorf("handling %s: %w", ev.Code, err)
			}
			if p.exitRequested {
				return nil
			}
		}

		if err := handle(core.HostEvent{Code: core.HOST_EVENT_ABOUT_TO_IDLE}); err != nil {
			return err
		}
		if p.redrawRequested && !p.exitRequested {
			p.redrawRequested = false
			if err := handle(core.HostEvent{Code: core.HOST_EVENT_REDRAW_REQUESTED}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Terminate destroys the window. Call it after the renderer released its
// surface.
func (p *Platform) Terminate() {
	p.alive.Store(false)
	if p.window != nil {
		p.window.handle.Destroy()
		p.window = nil
	}
	glfw.Terminate()
}

func (p *Platform) push(ev core.HostEvent) {
	p.queue = append(p.queue, ev)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code := translateKey(key)
	if code == core.KEY_UNKNOWN {
		return
	}
	p.push(core.HostEvent{
		Code:    core.HOST_EVENT_KEY,
		Key:     code,
		Pressed: action != glfw.Release,
		Repeat:  action == glfw.Repeat,
	})
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b, ok := translateButton(button)
	if !ok {
		return
	}
	p.push(core.HostEvent{Code: core.HOST_EVENT_BUTTON, Button: b, Pressed: action == glfw.Press})
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.push(core.HostEvent{Code: core.HOST_EVENT_MOUSE_MOVED, X: float32(xpos), Y: float32(ypos)})
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	p.push(core.HostEvent{Code: core.HOST_EVENT_MOUSE_WHEEL, ScrollX: float32(xoff), ScrollY: float32(yoff)})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.push(core.HostEvent{Code: core.HOST_EVENT_RESIZED, Width: uint32(width), Height: uint32(height)})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	// the engine decides when the loop ends
	w.SetShouldClose(false)
	p.push(core.HostEvent{Code: core.HOST_EVENT_CLOSE_REQUESTED})
}

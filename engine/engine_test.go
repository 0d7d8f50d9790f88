package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer"
)

func newTestEngine(t *testing.T, backend *fakeBackend, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{
		WithBackend(func() renderer.RendererBackend { return backend }),
		WithDecoder(fakeDecoder{}),
	}, opts...)
	e, err := New(&Game{ApplicationConfig: DefaultApplicationConfig()}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func resume(t *testing.T, e *Engine, host *fakeHost) {
	t.Helper()
	if err := e.Resume(host); err != nil {
		t.Fatalf("Resume: %v", err)
	}
}

func TestResumeAttachesLayersInOrder(t *testing.T) {
	var log []string
	e := newTestEngine(t, &fakeBackend{})
	e.PushLayer(&recordingLayer{name: "world", log: &log})
	e.PushLayer(&recordingLayer{name: "debug", log: &log})
	if len(log) != 0 {
		t.Fatalf("layers attached before Resume: %v", log)
	}
	if e.Renderer() != nil || e.Input() != nil {
		t.Error("renderer and input should not exist before Resume")
	}

	resume(t, e, newFakeHost())
	if e.Stage() != EngineStageRunning {
		t.Errorf("Stage = %s, want running", e.Stage())
	}
	if want := []string{"world attach", "debug attach"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestResumeTwicePanics(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	resume(t, e, newFakeHost())

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, core.ErrInvalidTransition) {
			t.Errorf("recovered %v, want ErrInvalidTransition", r)
		}
	}()
	e.Resume(newFakeHost())
}

func TestPushLayerWhileRunningAttaches(t *testing.T) {
	var log []string
	e := newTestEngine(t, &fakeBackend{})
	resume(t, e, newFakeHost())

	e.PushLayer(&recordingLayer{name: "late", log: &log})
	if want := []string{"late attach"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestResumeBackendFailureStaysUninitialized(t *testing.T) {
	var log []string
	backend := &fakeBackend{initErr: errors.New("no vulkan driver")}
	e := newTestEngine(t, backend)
	e.PushLayer(&recordingLayer{name: "world", log: &log})

	err := e.Resume(newFakeHost())
	if !errors.Is(err, core.ErrResourceCreation) {
		t.Fatalf("Resume = %v, want ErrResourceCreation", err)
	}
	if e.Stage() != EngineStageUninitialized {
		t.Errorf("Stage = %s, want uninitialized", e.Stage())
	}
	if indexOf(backend.calls, "shutdown") < 0 {
		t.Errorf("calls = %v, want the partial backend shut down", backend.calls)
	}
	if len(log) != 0 {
		t.Errorf("layers attached after a failed Resume: %v", log)
	}

	// a later attempt may still succeed
	backend.initErr = nil
	resume(t, e, newFakeHost())
	if e.Stage() != EngineStageRunning {
		t.Errorf("Stage = %s, want running", e.Stage())
	}
}

func TestResumeErrors(t *testing.T) {
	e, err := New(&Game{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Resume(newFakeHost()); !errors.Is(err, core.ErrNoBackend) {
		t.Errorf("Resume without backend = %v, want ErrNoBackend", err)
	}

	host := newFakeHost()
	host.createErr = errors.New("display unavailable")
	e = newTestEngine(t, &fakeBackend{})
	if err := e.Resume(host); !errors.Is(err, core.ErrResourceCreation) {
		t.Errorf("Resume without window = %v, want ErrResourceCreation", err)
	}
}

func TestResumeUsesShaderDirUnderAssets(t *testing.T) {
	backend := &fakeBackend{}
	e := newTestEngine(t, backend)
	resume(t, e, newFakeHost())
	if backend.calls[0] != "initialize assets/shaders" {
		t.Errorf("first call = %q, want initialize assets/shaders", backend.calls[0])
	}
}

func TestEventsIgnoredBeforeResume(t *testing.T) {
	var log []string
	e := newTestEngine(t, &fakeBackend{})
	e.PushLayer(&recordingLayer{name: "world", log: &log})

	for _, code := range []core.HostEventCode{core.HOST_EVENT_KEY, core.HOST_EVENT_ABOUT_TO_IDLE, core.HOST_EVENT_REDRAW_REQUESTED, core.HOST_EVENT_CLOSE_REQUESTED} {
		if err := e.DispatchEvent(core.HostEvent{Code: code}); err != nil {
			t.Errorf("DispatchEvent(%s) = %v", code, err)
		}
	}
	e.Tick(1)
	if len(log) != 0 || e.Exited() {
		t.Errorf("uninitialized engine reacted to events: %v", log)
	}
}

func TestInputUpdatedBeforeDispatch(t *testing.T) {
	var log []string
	e := newTestEngine(t, &fakeBackend{})
	seen := false
	e.PushLayer(&recordingLayer{name: "world", log: &log, onEvent: func(event core.EventContext) {
		seen = e.Input().IsKeyDown(core.KEY_A)
		if ke, ok := event.Data.(*core.KeyEvent); !ok || ke.KeyCode != core.KEY_A {
			t.Errorf("event data = %#v, want a key event for A", event.Data)
		}
	}})
	resume(t, e, newFakeHost())

	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_KEY, Key: core.KEY_A, Pressed: true})
	if !seen {
		t.Error("layer saw the key event before the input state was updated")
	}
}

func TestDispatchStopsAtFirstHandler(t *testing.T) {
	var log []string
	e := newTestEngine(t, &fakeBackend{})
	e.PushLayer(&recordingLayer{name: "world", log: &log})
	e.PushLayer(&recordingLayer{name: "ui", log: &log, handles: true})
	e.PushLayer(&recordingLayer{name: "debug", log: &log})
	resume(t, e, newFakeHost())
	log = nil

	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_BUTTON, Button: core.BUTTON_LEFT, Pressed: true})
	if want := []string{"debug event", "ui event"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestOverlayCapturesEvents(t *testing.T) {
	var log []string
	o := &capturingOverlay{}
	e := newTestEngine(t, &fakeBackend{}, WithOverlay(o))
	e.PushLayer(&recordingLayer{name: "world", log: &log})
	resume(t, e, newFakeHost())
	log = nil

	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_MOUSE_MOVED, X: 3, Y: 4})
	if o.events != 1 || len(log) != 0 {
		t.Errorf("overlay saw %d events, layers saw %v; want 1 and none", o.events, log)
	}
	// input is tracked even when the overlay keeps the event
	if x, y := e.Input().MousePosition(); x != 3 || y != 4 {
		t.Errorf("mouse = %v,%v, want 3,4", x, y)
	}
}

func TestRedrawRendersLayersAndRebuildsOnResize(t *testing.T) {
	var log []string
	backend := &fakeBackend{}
	host := newFakeHost()
	e := newTestEngine(t, backend)
	e.PushLayer(&recordingLayer{name: "world", log: &log, onRender: func(ctx core.DrawContext) {
		ctx.DrawRectangle(math.NewVec2One(), math.NewMat4Identity(), math.NewVec4One())
	}})
	resume(t, e, host)

	if err := e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_REDRAW_REQUESTED}); err != nil {
		t.Fatalf("redraw: %v", err)
	}
	swap := indexOf(backend.calls, "swapchain 800x600")
	pipe := indexOf(backend.calls, "pipeline 800x600")
	draw := indexOf(backend.calls, "draw")
	present := indexOf(backend.calls, "present")
	if swap < 0 || !(swap < pipe && pipe < draw && draw < present) {
		t.Errorf("calls = %v, want swapchain, pipeline, draw, present", backend.calls)
	}
	if indexOf(log, "world render") < 0 {
		t.Error("layer was not rendered")
	}

	host.window.width, host.window.height = 1024, 768
	backend.calls = nil
	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_RESIZED, Width: 1024, Height: 768})
	if len(backend.calls) != 0 {
		t.Errorf("resize rebuilt outside a frame: %v", backend.calls)
	}
	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_REDRAW_REQUESTED})
	if indexOf(backend.calls, "swapchain 1024x768") != 0 {
		t.Errorf("calls = %v, want the swapchain rebuilt at 1024x768 first", backend.calls)
	}
	if w, h := e.Extent(); w != 1024 || h != 768 {
		t.Errorf("Extent = %dx%d, want 1024x768", w, h)
	}
}

func TestMinimizedWindowSkipsFrames(t *testing.T) {
	backend := &fakeBackend{}
	host := newFakeHost()
	host.window.width, host.window.height = 0, 0
	e := newTestEngine(t, backend)
	resume(t, e, host)
	backend.calls = nil

	if err := e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_REDRAW_REQUESTED}); err != nil {
		t.Fatalf("redraw: %v", err)
	}
	if len(backend.calls) != 0 {
		t.Errorf("calls = %v, want none while minimized", backend.calls)
	}
}

func TestIdleRunsFixedStepsThenUpdate(t *testing.T) {
	now := time.Unix(100, 0)
	backend := &fakeBackend{}
	host := newFakeHost()
	e := newTestEngine(t, backend, WithClock(func() time.Time { return now }))
	e.config.Clock.TickRate = 10
	layer := &recordingLayer{name: "world", log: new([]string)}
	e.PushLayer(layer)
	if e.Alpha() != 0 {
		t.Errorf("Alpha before Resume = %v, want 0", e.Alpha())
	}
	resume(t, e, host)

	now = now.Add(250 * time.Millisecond)
	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_ABOUT_TO_IDLE})
	if layer.physicsSteps != 2 {
		t.Errorf("physics steps = %d, want 2", layer.physicsSteps)
	}
	// 50ms of a 100ms step are left over
	if a := e.Alpha(); a < 0.499 || a > 0.501 {
		t.Errorf("Alpha = %v, want 0.5", a)
	}
	if !reflect.DeepEqual(layer.updates, []float64{0.25}) {
		t.Errorf("updates = %v, want [0.25]", layer.updates)
	}
	if host.redraws != 1 {
		t.Errorf("redraws requested = %d, want 1", host.redraws)
	}
	if e.Metrics().TotalFrames() != 1 {
		t.Errorf("metrics counted %d frames, want 1", e.Metrics().TotalFrames())
	}
}

func TestTickCapsSimulationButNotUpdate(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	e.config.Clock.TickRate = 10
	e.config.Clock.MaxTicksPerFrame = 3
	layer := &recordingLayer{name: "world", log: new([]string)}
	e.PushLayer(layer)
	resume(t, e, newFakeHost())

	e.Tick(5)
	if layer.physicsSteps != 2 {
		t.Errorf("physics steps = %d, want 2 after the frame delta cap", layer.physicsSteps)
	}
	if layer.updates[0] != 5 {
		t.Errorf("update dt = %v, want the uncapped 5", layer.updates[0])
	}
}

func TestCloseSequence(t *testing.T) {
	var log []string
	host := newFakeHost()
	e := newTestEngine(t, &fakeBackend{})
	e.PushLayer(&recordingLayer{name: "world", log: &log})
	e.PushLayer(&recordingLayer{name: "debug", log: &log})
	resume(t, e, host)
	log = nil

	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_CLOSE_REQUESTED})
	if want := []string{"world close", "debug close"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
	if host.exits != 1 || !e.Exited() {
		t.Errorf("exits = %d, exited = %v; want 1, true", host.exits, e.Exited())
	}

	log = nil
	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_ABOUT_TO_IDLE})
	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_CLOSE_REQUESTED})
	e.Tick(0.1)
	if len(log) != 0 || host.exits != 1 {
		t.Errorf("engine kept running after close: %v, %d exits", log, host.exits)
	}
}

func TestRequestCloseFinishesTheTick(t *testing.T) {
	var log []string
	host := newFakeHost()
	e := newTestEngine(t, &fakeBackend{})
	e.PushLayer(&recordingLayer{name: "world", log: &log, onUpdate: e.RequestClose})
	e.PushLayer(&recordingLayer{name: "debug", log: &log})
	resume(t, e, host)
	log = nil

	e.DispatchEvent(core.HostEvent{Code: core.HOST_EVENT_ABOUT_TO_IDLE})
	want := []string{"world update", "debug update", "world close", "debug close"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
	if host.redraws != 0 {
		t.Errorf("redraw requested after close")
	}
	if host.exits != 1 {
		t.Errorf("exits = %d, want 1", host.exits)
	}
}

func TestShutdownReleasesInOrder(t *testing.T) {
	backend := &fakeBackend{}
	shutdownCalled := false
	e, err := New(&Game{
		ApplicationConfig: DefaultApplicationConfig(),
		FnShutdown: func() error {
			shutdownCalled = true
			if indexOf(backend.calls, "wait idle") < 0 || indexOf(backend.calls, "shutdown") >= 0 {
				t.Errorf("game shutdown ran at the wrong moment: %v", backend.calls)
			}
			return nil
		},
	}, WithBackend(func() renderer.RendererBackend { return backend }), WithDecoder(fakeDecoder{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resume(t, e, newFakeHost())

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !shutdownCalled {
		t.Error("game shutdown hook not called")
	}
	if backend.destroyed != 1 {
		t.Errorf("destroyed %d textures, want the default texture", backend.destroyed)
	}
	if backend.calls[len(backend.calls)-1] != "shutdown" {
		t.Errorf("calls = %v, want backend shutdown last", backend.calls)
	}
}

func TestNewRunsGameInitialize(t *testing.T) {
	var log []string
	e, err := New(&Game{FnInitialize: func(e *Engine) error {
		e.PushLayer(&recordingLayer{name: "world", log: &log})
		return nil
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.Config() == nil || e.state.layerStack().Len() != 1 {
		t.Error("initialize hook did not run against the new engine")
	}

	_, err = New(&Game{FnInitialize: func(*Engine) error { return errors.New("missing level") }})
	if err == nil {
		t.Error("New should fail when the initialize hook fails")
	}
}

func TestPreloadUploadsOnTick(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	if err := e.Preload("textures/crate.png", ""); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	resume(t, e, newFakeHost())
	defer e.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for e.preloader.Pending() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("preloaded images never finished decoding")
		}
		e.Tick(0)
		time.Sleep(time.Millisecond)
	}
	// the empty path fails to decode and is left for DrawImage to report
	if n := e.Renderer().Textures().Len(); n != 1 {
		t.Errorf("cache holds %d textures, want 1", n)
	}
}

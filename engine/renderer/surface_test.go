package renderer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spaghettifunk/tessera/engine/core"
)

func TestSurfaceFirstFrameBuildsEverythingInOrder(t *testing.T) {
	w := &fakeWindow{width: 800, height: 600}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)

	ok, err := s.BeginFrame()
	if err != nil || !ok {
		t.Fatalf("BeginFrame = %v, %v; want true, nil", ok, err)
	}
	if err := s.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}

	want := []string{"swapchain 800x600", "pipeline 800x600", "acquire", "begin", "present"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
	if s.Flags() != 0 {
		t.Errorf("flags after frame = %s, want clean", s.Flags())
	}
	if s.FrameNumber() != 1 {
		t.Errorf("FrameNumber = %d, want 1", s.FrameNumber())
	}
}

func TestSurfaceAcquireOutOfDateSkipsFrame(t *testing.T) {
	w := &fakeWindow{width: 800, height: 600}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)
	b.acquireStatus = []PresentStatus{PresentOutOfDate}

	ok, err := s.BeginFrame()
	if err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if ok {
		t.Fatal("frame should be skipped when acquire is out of date")
	}
	if !s.Flags().Has(SurfaceStale) {
		t.Errorf("flags = %s, want surface stale", s.Flags())
	}
	if indexOf(b.calls, "begin") >= 0 {
		t.Error("command recording started on an out of date image")
	}

	// the next frame asks the window again before rebuilding
	queries := w.queries
	w.width, w.height = 1024, 768
	b.calls = nil
	ok, err = s.BeginFrame()
	if err != nil || !ok {
		t.Fatalf("second BeginFrame = %v, %v; want true, nil", ok, err)
	}
	if w.queries != queries+1 {
		t.Errorf("window queried %d times, want %d", w.queries, queries+1)
	}
	if b.calls[0] != "swapchain 1024x768" || b.calls[1] != "pipeline 1024x768" {
		t.Errorf("calls = %v, want swapchain then pipeline at 1024x768", b.calls)
	}
}

func TestSurfaceAcquireSuboptimalStillRenders(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)
	b.acquireStatus = []PresentStatus{PresentSuboptimal}

	ok, err := s.BeginFrame()
	if err != nil || !ok {
		t.Fatalf("BeginFrame = %v, %v; want true, nil", ok, err)
	}
	if err := s.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if !s.Flags().Has(SurfaceStale) {
		t.Error("suboptimal acquire should mark the surface stale")
	}
	if count(b.calls, "present") != 1 {
		t.Error("suboptimal frame was not presented")
	}
}

func TestSurfacePresentOutOfDateMarksStale(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)
	b.presentStatus = []PresentStatus{PresentOutOfDate}

	if ok, err := s.BeginFrame(); err != nil || !ok {
		t.Fatalf("BeginFrame = %v, %v", ok, err)
	}
	s.MarkCommandsStale()
	if err := s.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if s.Flags() != SurfaceStale {
		t.Errorf("flags = %s, want surface", s.Flags())
	}
}

func TestSurfaceDegenerateExtent(t *testing.T) {
	w := &fakeWindow{width: 0, height: 0}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)

	for i := 0; i < 3; i++ {
		ok, err := s.BeginFrame()
		if err != nil {
			t.Fatalf("BeginFrame on 0x0: %v", err)
		}
		if ok {
			t.Fatal("BeginFrame on 0x0 should skip the frame")
		}
	}
	if len(b.calls) != 0 {
		t.Errorf("backend called on a 0x0 window: %v", b.calls)
	}
	if s.Flags() != AllStale {
		t.Errorf("flags = %s, want all stale kept", s.Flags())
	}

	w.width, w.height = 300, 200
	s.MarkResized()
	ok, err := s.BeginFrame()
	if err != nil || !ok {
		t.Fatalf("BeginFrame after restore = %v, %v; want true, nil", ok, err)
	}
	if width, height := s.Extent(); width != 300 || height != 200 {
		t.Errorf("Extent = %dx%d, want 300x200", width, height)
	}
}

func TestSurfaceResizeRebuildsPipelineEvenAtSameSize(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)
	s.BeginFrame()
	s.EndFrame()

	s.MarkResized()
	b.calls = nil
	s.BeginFrame()
	if indexOf(b.calls, "swapchain 640x480") != 0 || indexOf(b.calls, "pipeline 640x480") != 1 {
		t.Errorf("calls = %v, want swapchain then pipeline", b.calls)
	}
}

func TestSurfaceFatalErrors(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)

	b.acquireErr = errors.New("device lost")
	if _, err := s.BeginFrame(); !errors.Is(err, core.ErrDeviceFailure) {
		t.Errorf("acquire failure = %v, want ErrDeviceFailure", err)
	}

	b.acquireErr = nil
	b.presentErr = errors.New("queue submit failed")
	if ok, err := s.BeginFrame(); err != nil || !ok {
		t.Fatalf("BeginFrame = %v, %v", ok, err)
	}
	if err := s.EndFrame(); !errors.Is(err, core.ErrDeviceFailure) {
		t.Errorf("submit failure = %v, want ErrDeviceFailure", err)
	}
}

func TestSurfaceAbortFrame(t *testing.T) {
	w := &fakeWindow{width: 640, height: 480}
	b := newFakeBackend()
	s := NewSurfaceManager(w, b)

	if ok, err := s.BeginFrame(); err != nil || !ok {
		t.Fatalf("BeginFrame = %v, %v", ok, err)
	}
	s.AbortFrame()
	if err := s.EndFrame(); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("EndFrame after abort = %v, want ErrInvalidTransition", err)
	}
	if !s.Flags().Has(SurfaceStale | CommandsStale) {
		t.Errorf("flags = %s, want surface and commands stale", s.Flags())
	}

	b.calls = nil
	if ok, err := s.BeginFrame(); err != nil || !ok {
		t.Fatalf("BeginFrame after abort = %v, %v; want true, nil", ok, err)
	}
	if indexOf(b.calls, "swapchain 640x480") != 0 {
		t.Errorf("calls = %v, want the swapchain rebuilt first", b.calls)
	}
	if s.FrameNumber() != 0 {
		t.Errorf("FrameNumber = %d, want 0 with nothing presented", s.FrameNumber())
	}
	// aborting outside a frame does nothing
	s.EndFrame()
	s.AbortFrame()
	if s.Flags().Has(SurfaceStale) {
		t.Errorf("flags = %s after an abort outside a frame", s.Flags())
	}
}

func TestSurfaceEndFrameWithoutBegin(t *testing.T) {
	s := NewSurfaceManager(&fakeWindow{width: 1, height: 1}, newFakeBackend())
	if err := s.EndFrame(); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("EndFrame = %v, want ErrInvalidTransition", err)
	}
}

func TestDirtyFlagsString(t *testing.T) {
	if got := (SurfaceStale | CommandsStale).String(); got != "surface|commands" {
		t.Errorf("String = %q, want surface|commands", got)
	}
	if got := DirtyFlags(0).String(); got != "clean" {
		t.Errorf("String = %q, want clean", got)
	}
}

package renderer

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/tessera/engine/core"
)

// DirtyFlags records which presentation resources must be rebuilt before
// the next frame can be drawn.
type DirtyFlags uint8

const (
	SurfaceStale DirtyFlags = 1 << iota
	PipelineStale
	CommandsStale

	AllStale = SurfaceStale | PipelineStale | CommandsStale
)

func (f DirtyFlags) Has(flag DirtyFlags) bool {
	return f&flag == flag
}

func (f DirtyFlags) String() string {
	if f == 0 {
		return "clean"
	}
	var parts []string
	if f.Has(SurfaceStale) {
		parts = append(parts, "surface")
	}
	if f.Has(PipelineStale) {
		parts = append(parts, "pipeline")
	}
	if f.Has(CommandsStale) {
		parts = append(parts, "commands")
	}
	return strings.Join(parts, "|")
}

// extentSource is the part of the window the surface manager reads.
type extentSource interface {
	FramebufferSize() (width, height int)
}

// SurfaceManager keeps the swapchain and pipeline in step with the window.
// Nothing is rebuilt outside BeginFrame, and rebuilds always happen in the
// order surface, pipeline, commands.
type SurfaceManager struct {
	window  extentSource
	backend SurfaceBackend

	dirty       DirtyFlags
	width       uint32
	height      uint32
	frameNumber uint64
	inFrame     bool
}

// NewSurfaceManager starts with every flag set so the first frame builds the
// swapchain and pipeline.
func NewSurfaceManager(window extentSource, backend SurfaceBackend) *SurfaceManager {
	return &SurfaceManager{
		window:  window,
		backend: backend,
		dirty:   AllStale,
	}
}

// MarkResized is called for every host resize event.
func (s *SurfaceManager) MarkResized() {
	s.dirty |= AllStale
}

// MarkCommandsStale is called after every logic tick.
func (s *SurfaceManager) MarkCommandsStale() {
	s.dirty |= CommandsStale
}

func (s *SurfaceManager) Flags() DirtyFlags {
	return s.dirty
}

// Extent is the size of the current swapchain.
func (s *SurfaceManager) Extent() (uint32, uint32) {
	return s.width, s.height
}

// FrameNumber counts presented frames.
func (s *SurfaceManager) FrameNumber() uint64 {
	return s.frameNumber
}

// reconcile rebuilds stale resources. It reports false when the frame must be
// skipped because the window has no area.
func (s *SurfaceManager) reconcile() (bool, error) {
	if s.dirty.Has(SurfaceStale) {
		w, h := s.window.FramebufferSize()
		if w <= 0 || h <= 0 {
			core.LogDebug("framebuffer is %dx%d, skipping frame", w, h)
			return false, nil
		}
		width, height, err := s.backend.RecreateSwapchain(uint32(w), uint32(h))
		if err != nil {
			return false, fmt.Errorf("%w: swapchain %dx%d: %v", core.ErrResourceCreation, w, h, err)
		}
		if width != s.width || height != s.height {
			s.dirty |= PipelineStale
		}
		s.width, s.height = width, height
		s.dirty &^= SurfaceStale
		core.LogDebug("swapchain recreated at %dx%d", width, height)
	}

	if s.dirty.Has(PipelineStale) {
		if err := s.backend.RecreatePipeline(s.width, s.height); err != nil {
			return false, fmt.Errorf("%w: pipeline: %v", core.ErrResourceCreation, err)
		}
		s.dirty &^= PipelineStale
	}
	return true, nil
}

// BeginFrame reconciles dirty state, acquires the next image and starts
// command recording. It reports false when no frame should be drawn.
func (s *SurfaceManager) BeginFrame() (bool, error) {
	if s.inFrame {
		return false, fmt.Errorf("%w: BeginFrame called twice", core.ErrInvalidTransition)
	}
	ready, err := s.reconcile()
	if err != nil || !ready {
		return false, err
	}

	status, err := s.backend.AcquireNextImage()
	if err != nil {
		return false, fmt.Errorf("%w: acquire: %v", core.ErrDeviceFailure, err)
	}
	switch status {
	case PresentOutOfDate:
		core.LogDebug("swapchain out of date on acquire")
		s.dirty |= SurfaceStale
		return false, nil
	case PresentSuboptimal:
		s.dirty |= SurfaceStale
	}

	if err := s.backend.BeginCommands(); err != nil {
		return false, fmt.Errorf("%w: begin commands: %v", core.ErrDeviceFailure, err)
	}
	s.inFrame = true
	return true, nil
}

// AbortFrame leaves a frame that BeginFrame started but that could not be
// recorded. The acquired image is never presented, so the swapchain is
// rebuilt along with the commands on the next frame.
func (s *SurfaceManager) AbortFrame() {
	if !s.inFrame {
		return
	}
	s.inFrame = false
	s.dirty |= SurfaceStale | CommandsStale
	core.LogWarn("frame %d aborted", s.frameNumber)
}

// EndFrame submits the recorded commands and presents the image.
func (s *SurfaceManager) EndFrame() error {
	if !s.inFrame {
		return fmt.Errorf("%w: EndFrame without BeginFrame", core.ErrInvalidTransition)
	}
	s.inFrame = false

	status, err := s.backend.SubmitAndPresent()
	if err != nil {
		return fmt.Errorf("%w: submit: %v", core.ErrDeviceFailure, err)
	}
	if status != PresentOK {
		core.LogDebug("present returned %s", status)
		s.dirty |= SurfaceStale
	}
	s.dirty &^= CommandsStale
	s.frameNumber++
	return nil
}

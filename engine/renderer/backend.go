package renderer

import (
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// PresentStatus is the outcome of acquiring or presenting a swapchain image.
// OutOfDate and Suboptimal are expected states, never errors.
type PresentStatus int

const (
	PresentOK PresentStatus = iota
	PresentSuboptimal
	PresentOutOfDate
)

func (s PresentStatus) String() string {
	switch s {
	case PresentOK:
		return "ok"
	case PresentSuboptimal:
		return "suboptimal"
	case PresentOutOfDate:
		return "out-of-date"
	}
	return "unknown"
}

// SurfaceBackend is the presentation half of a backend, driven by the
// SurfaceManager.
type SurfaceBackend interface {
	// RecreateSwapchain rebuilds the swapchain and framebuffers for the given
	// size and returns the extent the surface actually granted.
	RecreateSwapchain(width, height uint32) (uint32, uint32, error)
	RecreatePipeline(width, height uint32) error
	AcquireNextImage() (PresentStatus, error)
	// BeginCommands starts recording the command buffer of the acquired image.
	BeginCommands() error
	// SubmitAndPresent ends recording, submits and presents.
	SubmitAndPresent() (PresentStatus, error)
}

// FrameBackend is the recording half of a backend, driven by the Renderer
// between BeginCommands and SubmitAndPresent.
type FrameBackend interface {
	// CreateTexture creates a sampled RGBA8 texture and queues the copy of
	// pixels. The copy is recorded by the next FlushUploads.
	CreateTexture(name string, width, height uint32, pixels []uint8) (metadata.TextureHandle, error)
	DestroyTexture(handle metadata.TextureHandle)
	// FlushUploads records the queued host to device copies. It must run
	// before BeginRenderPass.
	FlushUploads() error
	UploadGeometry(vertices []math.Vertex2D, indices []uint32) error
	BeginRenderPass(clearColour math.Vec4) error
	SetViewProjection(viewProjection math.Mat4)
	BindTexture(handle metadata.TextureHandle) error
	PushModel(model math.Mat4)
	DrawIndexed(indexCount, firstIndex uint32, vertexOffset int32)
	EndRenderPass() error
}

// RendererBackend is implemented by every graphics API backend.
type RendererBackend interface {
	Initialize(window core.Window, config *metadata.RendererBackendConfig) error
	SurfaceBackend
	FrameBackend
	// WaitIdle blocks until the device finished all submitted work.
	WaitIdle() error
	Shutdown() error
}

package vulkan

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/assets/loaders"
	"github.com/spaghettifunk/tessera/engine/core"
	emath "github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

var _ renderer.RendererBackend = (*VulkanRenderer)(nil)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

type vulkanTexture struct {
	name  string
	image *VulkanImage
	set   vk.DescriptorSet
	// host copy of the pixels until FlushUploads records the transfer
	staging *VulkanBuffer
}

// frameGeometry holds the host visible buffers written by one frame slot.
type frameGeometry struct {
	vertices *VulkanBuffer
	indices  *VulkanBuffer
}

type VulkanRenderer struct {
	context *VulkanContext
	window  core.Window
	config  metadata.RendererBackendConfig

	shader   *VulkanShader
	geometry [MaxFramesInFlight]frameGeometry
	garbage  deletionQueue

	textures       map[metadata.TextureHandle]*vulkanTexture
	nextTexture    metadata.TextureHandle
	pendingUploads []metadata.TextureHandle

	// submissions handed to the graphics queue so far
	submitted uint64
	recording bool
}

func New() *VulkanRenderer {
	return &VulkanRenderer{
		context:  &VulkanContext{},
		textures: make(map[metadata.TextureHandle]*vulkanTexture),
	}
}

// Initialize creates the instance, surface, device and every object that
// does not depend on the window size. The swapchain and pipeline are built
// by the first RecreateSwapchain and RecreatePipeline.
func (vr *VulkanRenderer) Initialize(window core.Window, config *metadata.RendererBackendConfig) error {
	vr.window = window
	vr.config = *config

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil, is Vulkan supported on this machine?")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan: %w", err)
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	if vr.config.Validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			return fmt.Errorf("vkCreateDebugReportCallback failed with %w", err)
		}
		vr.context.debugMessenger = dbg
	}

	surface, err := window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		return fmt.Errorf("failed to create window surface: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	descriptors, err := DescriptorsCreate(vr.context, VULKAN_MAX_TEXTURE_COUNT)
	if err != nil {
		return err
	}
	vr.context.Descriptors = descriptors

	sampler, err := SamplerCreate(vr.context)
	if err != nil {
		return err
	}
	vr.context.Sampler = sampler

	shader, err := NewShader(vr.context, &loaders.ShaderLoader{Dir: vr.config.ShaderDir}, spriteShaderName)
	if err != nil {
		return err
	}
	vr.shader = shader

	vertexUsage := vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	indexUsage := vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	for i := range vr.geometry {
		if vr.geometry[i].vertices, err = BufferCreate(vr.context, initialVertexBufferSize, vertexUsage, hostVisible); err != nil {
			return err
		}
		if vr.geometry[i].indices, err = BufferCreate(vr.context, initialIndexBufferSize, indexUsage, hostVisible); err != nil {
			return err
		}
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.ApplicationName),
		PEngineName:        VulkanSafeString("Tessera Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := vr.window.RequiredInstanceExtensions()
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.config.Validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
		available, err := instanceLayers()
		if err != nil {
			return err
		}
		if available[validationLayerName] {
			layers = append(layers, validationLayerName)
			core.LogInfo("Validation layer %s enabled.", validationLayerName)
		} else {
			core.LogWarn("Validation requested but %s is not installed.", validationLayerName)
		}
	}
	for _, ext := range extensions {
		core.LogDebug("Requiring instance extension %s", ext)
	}

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		return fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")
	return nil
}

func instanceLayers() (map[string]bool, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, fmt.Errorf("vkEnumerateInstanceLayerProperties failed with %s", VulkanResultString(res))
	}
	properties := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, properties); res != vk.Success {
		return nil, fmt.Errorf("vkEnumerateInstanceLayerProperties failed with %s", VulkanResultString(res))
	}
	out := make(map[string]bool, count)
	for i := range properties {
		properties[i].Deref()
		out[vulkanName(properties[i].LayerName[:])] = true
	}
	return out, nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	ctx := vr.context
	ctx.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, MaxFramesInFlight)
	ctx.ImageAvailableSemaphores = make([]vk.Semaphore, MaxFramesInFlight)
	ctx.QueueCompleteSemaphores = make([]vk.Semaphore, MaxFramesInFlight)
	ctx.InFlightFences = make([]*VulkanFence, MaxFramesInFlight)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < MaxFramesInFlight; i++ {
		cb, err := NewVulkanCommandBuffer(ctx, ctx.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		ctx.GraphicsCommandBuffers[i] = cb

		if res := vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &ctx.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create image available semaphore: %s", VulkanResultString(res))
		}
		if res := vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &ctx.QueueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create queue complete semaphore: %s", VulkanResultString(res))
		}

		// signaled so the first wait on each slot returns at once
		f, err := NewFence(ctx, true)
		if err != nil {
			return err
		}
		ctx.InFlightFences[i] = f
	}
	return nil
}

// RecreateSwapchain waits for the device, then rebuilds the swapchain and
// its framebuffers. The render pass follows the surface format.
func (vr *VulkanRenderer) RecreateSwapchain(width, height uint32) (uint32, uint32, error) {
	ctx := vr.context
	if err := vr.WaitIdle(); err != nil {
		return 0, 0, err
	}
	vr.garbage.flush(vr.submitted)

	sc, err := SwapchainCreate(ctx, width, height, vr.config.VSync, ctx.Swapchain)
	if err != nil {
		return 0, 0, err
	}
	ctx.Swapchain = sc

	if ctx.MainRenderpass == nil || ctx.MainRenderpass.Format != sc.ImageFormat.Format {
		if ctx.MainRenderpass != nil {
			ctx.MainRenderpass.RenderpassDestroy(ctx)
		}
		rp, err := RenderpassCreate(ctx, sc.ImageFormat.Format)
		if err != nil {
			return 0, 0, err
		}
		ctx.MainRenderpass = rp
		// a pipeline built for the old pass is incompatible
		if ctx.Pipeline != nil {
			ctx.Pipeline.Destroy(ctx)
			ctx.Pipeline = nil
			if err := vr.RecreatePipeline(sc.Extent.Width, sc.Extent.Height); err != nil {
				return 0, 0, err
			}
		}
	}

	if err := sc.RegenerateFramebuffers(ctx, ctx.MainRenderpass); err != nil {
		return 0, 0, err
	}
	ctx.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)
	ctx.FramebufferWidth = sc.Extent.Width
	ctx.FramebufferHeight = sc.Extent.Height
	return sc.Extent.Width, sc.Extent.Height, nil
}

func (vr *VulkanRenderer) RecreatePipeline(width, height uint32) error {
	ctx := vr.context
	if ctx.MainRenderpass == nil {
		return fmt.Errorf("pipeline requested before the render pass exists")
	}
	if err := vr.WaitIdle(); err != nil {
		return err
	}
	if ctx.Pipeline != nil {
		ctx.Pipeline.Destroy(ctx)
		ctx.Pipeline = nil
	}

	var vertex emath.Vertex2D
	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(vertex.Position))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(vertex.Texcoord))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(vertex.Colour))},
	}

	pipeline, err := NewGraphicsPipeline(ctx, &VulkanPipelineConfig{
		Renderpass:           ctx.MainRenderpass,
		Stride:               uint32(unsafe.Sizeof(vertex)),
		Attributes:           attributes,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{ctx.Descriptors.SetLayout},
		Stages:               vr.shader.StageInfos(),
		PushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
			Offset:     0,
			Size:       pushConstantSize,
		}},
		Extent: vk.Extent2D{Width: width, Height: height},
	})
	if err != nil {
		return err
	}
	ctx.Pipeline = pipeline
	return nil
}

// AcquireNextImage waits for the frame slot to be free, releases what the
// finished submissions no longer need and acquires an image.
func (vr *VulkanRenderer) AcquireNextImage() (renderer.PresentStatus, error) {
	ctx := vr.context
	if err := ctx.InFlightFences[ctx.CurrentFrame].FenceWait(ctx, math.MaxUint64); err != nil {
		return renderer.PresentOK, err
	}
	vr.garbage.flush(vr.completedSubmissions())

	imageIndex, status, err := ctx.Swapchain.AcquireNextImageIndex(ctx, math.MaxUint64, ctx.ImageAvailableSemaphores[ctx.CurrentFrame])
	if err != nil || status == renderer.PresentOutOfDate {
		return status, err
	}
	ctx.ImageIndex = imageIndex
	return status, nil
}

// completedSubmissions is the number of submissions known to have finished
// once the fence of the current slot signaled.
func (vr *VulkanRenderer) completedSubmissions() uint64 {
	if vr.submitted+1 < MaxFramesInFlight {
		return 0
	}
	return vr.submitted + 1 - MaxFramesInFlight
}

func (vr *VulkanRenderer) BeginCommands() error {
	ctx := vr.context
	if ctx.Pipeline == nil {
		return fmt.Errorf("recording requested before the pipeline exists")
	}
	cb := ctx.CurrentCommandBuffer()
	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(true, false, false); err != nil {
		return err
	}
	extent := ctx.Swapchain.Extent
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewportFor(extent)})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissorFor(extent)})
	vr.recording = true
	return nil
}

func (vr *VulkanRenderer) SubmitAndPresent() (renderer.PresentStatus, error) {
	ctx := vr.context
	cb := ctx.CurrentCommandBuffer()
	vr.recording = false
	if err := cb.End(); err != nil {
		return renderer.PresentOK, err
	}

	// an earlier frame slot may still be rendering into this image
	if f := ctx.ImagesInFlight[ctx.ImageIndex]; f != nil {
		if err := f.FenceWait(ctx, math.MaxUint64); err != nil {
			return renderer.PresentOK, err
		}
	}
	fence := ctx.InFlightFences[ctx.CurrentFrame]
	ctx.ImagesInFlight[ctx.ImageIndex] = fence
	if err := fence.FenceReset(ctx); err != nil {
		return renderer.PresentOK, err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
	}
	if res := vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
		return renderer.PresentOK, fmt.Errorf("vkQueueSubmit failed with %s", VulkanResultString(res))
	}
	cb.UpdateSubmitted()
	vr.submitted++

	status, err := ctx.Swapchain.Present(ctx.Device.PresentQueue, ctx.QueueCompleteSemaphores[ctx.CurrentFrame], ctx.ImageIndex)
	ctx.CurrentFrame = (ctx.CurrentFrame + 1) % MaxFramesInFlight
	return status, err
}

// CreateTexture creates the image and its descriptor set at once and keeps
// the pixels in a staging buffer until the next FlushUploads.
func (vr *VulkanRenderer) CreateTexture(name string, width, height uint32, pixels []uint8) (metadata.TextureHandle, error) {
	if width == 0 || height == 0 || len(pixels) != int(width*height*4) {
		return metadata.InvalidTextureHandle, fmt.Errorf("texture %s: %d bytes for %dx%d RGBA", name, len(pixels), width, height)
	}
	ctx := vr.context

	staging, err := BufferCreate(ctx, uint64(len(pixels)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisible)
	if err != nil {
		return metadata.InvalidTextureHandle, err
	}
	if err := staging.LoadData(ctx, pixels); err != nil {
		staging.Destroy(ctx)
		return metadata.InvalidTextureHandle, err
	}

	image, err := ImageCreate(ctx, width, height, vk.FormatR8g8b8a8Unorm,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit))
	if err != nil {
		staging.Destroy(ctx)
		return metadata.InvalidTextureHandle, err
	}

	set, err := ctx.Descriptors.AllocateImageSet(ctx, image.View, ctx.Sampler)
	if err != nil {
		image.Destroy(ctx)
		staging.Destroy(ctx)
		return metadata.InvalidTextureHandle, err
	}

	vr.nextTexture++
	handle := vr.nextTexture
	vr.textures[handle] = &vulkanTexture{name: name, image: image, set: set, staging: staging}
	vr.pendingUploads = append(vr.pendingUploads, handle)
	core.LogDebug("texture %s created as %d (%dx%d)", name, handle, width, height)
	return handle, nil
}

// DestroyTexture forgets the handle now and releases the GPU objects once no
// submission can still sample them.
func (vr *VulkanRenderer) DestroyTexture(handle metadata.TextureHandle) {
	t, ok := vr.textures[handle]
	if !ok {
		core.LogWarn("destroying unknown texture %d", handle)
		return
	}
	delete(vr.textures, handle)
	for i, h := range vr.pendingUploads {
		if h == handle {
			vr.pendingUploads = append(vr.pendingUploads[:i], vr.pendingUploads[i+1:]...)
			break
		}
	}
	ctx := vr.context
	vr.garbage.push(vr.submitted, func() {
		ctx.Descriptors.FreeSet(ctx, t.set)
		t.image.Destroy(ctx)
		if t.staging != nil {
			t.staging.Destroy(ctx)
		}
	})
}

func (vr *VulkanRenderer) FlushUploads() error {
	if len(vr.pendingUploads) == 0 {
		return nil
	}
	ctx := vr.context
	cb := ctx.CurrentCommandBuffer()
	for _, handle := range vr.pendingUploads {
		t := vr.textures[handle]
		if err := t.image.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal); err != nil {
			return fmt.Errorf("texture %s: %w", t.name, err)
		}
		t.image.CopyFromBuffer(cb, t.staging)
		if err := t.image.TransitionLayout(cb, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
			return fmt.Errorf("texture %s: %w", t.name, err)
		}
		staging := t.staging
		t.staging = nil
		vr.garbage.push(vr.submitted, func() { staging.Destroy(ctx) })
	}
	vr.pendingUploads = vr.pendingUploads[:0]
	return nil
}

// UploadGeometry writes the frame batch into the buffers of the current
// slot, growing them when the batch does not fit.
func (vr *VulkanRenderer) UploadGeometry(vertices []emath.Vertex2D, indices []uint32) error {
	ctx := vr.context
	g := &vr.geometry[ctx.CurrentFrame]

	vertexBytes := sliceBytes(vertices)
	indexBytes := sliceBytes(indices)
	var err error
	if g.vertices, err = vr.ensureBuffer(g.vertices, uint64(len(vertexBytes))); err != nil {
		return err
	}
	if g.indices, err = vr.ensureBuffer(g.indices, uint64(len(indexBytes))); err != nil {
		return err
	}
	if err := g.vertices.LoadData(ctx, vertexBytes); err != nil {
		return err
	}
	if err := g.indices.LoadData(ctx, indexBytes); err != nil {
		return err
	}

	cb := ctx.CurrentCommandBuffer()
	vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{g.vertices.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb.Handle, g.indices.Handle, 0, vk.IndexTypeUint32)
	return nil
}

func (vr *VulkanRenderer) ensureBuffer(buffer *VulkanBuffer, need uint64) (*VulkanBuffer, error) {
	if need <= buffer.Size {
		return buffer, nil
	}
	ctx := vr.context
	grown, err := BufferCreate(ctx, grownSize(buffer.Size, need), buffer.Usage, buffer.PropertyFlags)
	if err != nil {
		return buffer, err
	}
	core.LogDebug("geometry buffer grown from %d to %d bytes", buffer.Size, grown.Size)
	old := buffer
	vr.garbage.push(vr.submitted, func() { old.Destroy(ctx) })
	return grown, nil
}

func (vr *VulkanRenderer) BeginRenderPass(clearColour emath.Vec4) error {
	ctx := vr.context
	if !vr.recording {
		return fmt.Errorf("render pass started outside of command recording")
	}
	cb := ctx.CurrentCommandBuffer()
	fb := ctx.Swapchain.Framebuffers[ctx.ImageIndex]
	ctx.MainRenderpass.RenderpassBegin(cb, fb.Handle, ctx.Swapchain.Extent, clearColour)
	ctx.Pipeline.Bind(cb, vk.PipelineBindPointGraphics)
	return nil
}

func (vr *VulkanRenderer) SetViewProjection(viewProjection emath.Mat4) {
	vr.pushMat4(pushConstantViewProjectionOffset, &viewProjection)
}

func (vr *VulkanRenderer) PushModel(model emath.Mat4) {
	vr.pushMat4(pushConstantModelOffset, &model)
}

func (vr *VulkanRenderer) pushMat4(offset uint32, m *emath.Mat4) {
	ctx := vr.context
	vk.CmdPushConstants(
		ctx.CurrentCommandBuffer().Handle,
		ctx.Pipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit),
		offset,
		uint32(unsafe.Sizeof(m.Data)),
		unsafe.Pointer(&m.Data[0]),
	)
}

func (vr *VulkanRenderer) BindTexture(handle metadata.TextureHandle) error {
	t, ok := vr.textures[handle]
	if !ok {
		return fmt.Errorf("unknown texture %d", handle)
	}
	ctx := vr.context
	vk.CmdBindDescriptorSets(
		ctx.CurrentCommandBuffer().Handle,
		vk.PipelineBindPointGraphics,
		ctx.Pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{t.set},
		0, nil,
	)
	return nil
}

func (vr *VulkanRenderer) DrawIndexed(indexCount, firstIndex uint32, vertexOffset int32) {
	vk.CmdDrawIndexed(vr.context.CurrentCommandBuffer().Handle, indexCount, 1, firstIndex, vertexOffset, 0)
}

func (vr *VulkanRenderer) EndRenderPass() error {
	vr.context.MainRenderpass.RenderpassEnd(vr.context.CurrentCommandBuffer())
	return nil
}

func (vr *VulkanRenderer) WaitIdle() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
		return fmt.Errorf("vkDeviceWaitIdle failed with %s", VulkanResultString(res))
	}
	return nil
}

// Shutdown destroys everything in the opposite order of creation. It is
// safe to call after a partial Initialize.
func (vr *VulkanRenderer) Shutdown() error {
	ctx := vr.context
	if err := vr.WaitIdle(); err != nil {
		core.LogError("waiting for the device before shutdown: %s", err)
	}

	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		for handle := range vr.textures {
			vr.DestroyTexture(handle)
		}
		released := vr.garbage.drain()
		core.LogDebug("released %d deferred GPU objects", released)

		for i := range vr.geometry {
			if vr.geometry[i].vertices != nil {
				vr.geometry[i].vertices.Destroy(ctx)
			}
			if vr.geometry[i].indices != nil {
				vr.geometry[i].indices.Destroy(ctx)
			}
		}
		if vr.shader != nil {
			vr.shader.Destroy(ctx)
		}
		if ctx.Pipeline != nil {
			ctx.Pipeline.Destroy(ctx)
		}
		if ctx.Sampler != nil {
			vk.DestroySampler(ctx.Device.LogicalDevice, ctx.Sampler, ctx.Allocator)
			ctx.Sampler = nil
		}
		if ctx.Descriptors != nil {
			ctx.Descriptors.Destroy(ctx)
		}

		for i := range ctx.InFlightFences {
			if ctx.ImageAvailableSemaphores[i] != vk.NullSemaphore {
				vk.DestroySemaphore(ctx.Device.LogicalDevice, ctx.ImageAvailableSemaphores[i], ctx.Allocator)
			}
			if ctx.QueueCompleteSemaphores[i] != vk.NullSemaphore {
				vk.DestroySemaphore(ctx.Device.LogicalDevice, ctx.QueueCompleteSemaphores[i], ctx.Allocator)
			}
			if ctx.InFlightFences[i] != nil {
				ctx.InFlightFences[i].FenceDestroy(ctx)
			}
			if ctx.GraphicsCommandBuffers[i] != nil {
				ctx.GraphicsCommandBuffers[i].Free(ctx, ctx.Device.GraphicsCommandPool)
			}
		}
		ctx.ImageAvailableSemaphores = nil
		ctx.QueueCompleteSemaphores = nil
		ctx.InFlightFences = nil
		ctx.ImagesInFlight = nil
		ctx.GraphicsCommandBuffers = nil

		if ctx.Swapchain != nil {
			ctx.Swapchain.SwapchainDestroy(ctx)
		}
		if ctx.MainRenderpass != nil {
			ctx.MainRenderpass.RenderpassDestroy(ctx)
		}

		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(ctx)
	}

	if ctx.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	if ctx.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugMessenger, ctx.Allocator)
		ctx.debugMessenger = vk.NullDebugReportCallback
	}
	if ctx.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}

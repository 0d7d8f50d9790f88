package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// framebuffers used for on-screen rendering, one per image
	Framebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

// SwapchainCreate builds a swapchain for the surface as close to width x
// height as the surface allows. old, when not nil, is handed to the driver
// for resource reuse and destroyed afterwards.
func SwapchainCreate(context *VulkanContext, width, height uint32, vsync bool, old *VulkanSwapchain) (*VulkanSwapchain, error) {
	support := &context.Device.SwapchainSupport
	if err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface, support); err != nil {
		return nil, err
	}
	if support.FormatCount == 0 {
		return nil, fmt.Errorf("surface reports no formats")
	}

	swapchain := &VulkanSwapchain{
		ImageFormat: chooseSurfaceFormat(support.Formats),
	}
	presentMode := choosePresentMode(support.PresentModes, vsync)

	caps := support.Capabilities
	extent := vk.Extent2D{Width: width, Height: height}
	if caps.CurrentExtent.Width != math.MaxUint32 {
		extent = caps.CurrentExtent
	}
	extent.Width = clampUint32(extent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	extent.Height = clampUint32(extent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	if extent.Width == 0 || extent.Height == 0 {
		return nil, fmt.Errorf("surface extent is %dx%d", extent.Width, extent.Height)
	}
	swapchain.Extent = extent

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}
	if old != nil {
		createInfo.OldSwapchain = old.Handle
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateSwapchainKHR failed with %s", VulkanResultString(res))
	}
	swapchain.Handle = handle
	if old != nil {
		old.SwapchainDestroy(context)
	}

	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		return nil, fmt.Errorf("vkGetSwapchainImagesKHR failed with %s", VulkanResultString(res))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		return nil, fmt.Errorf("vkGetSwapchainImagesKHR failed with %s", VulkanResultString(res))
	}

	for i := range swapchain.Images {
		view, err := createImageView(context, swapchain.Images[i], swapchain.ImageFormat.Format)
		if err != nil {
			return nil, err
		}
		swapchain.Views[i] = view
	}

	core.LogInfo("Swapchain created at %dx%d with %d images.", extent.Width, extent.Height, swapchain.ImageCount)
	return swapchain, nil
}

func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox unless vsync is requested. FIFO is
// always available.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// AcquireNextImageIndex asks for the next image to render into. The index
// is only valid with a PresentOK or PresentSuboptimal status.
func (vs *VulkanSwapchain) AcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore) (uint32, renderer.PresentStatus, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, vk.NullFence, &imageIndex)
	status, err := presentStatus(result)
	if err != nil {
		return 0, status, fmt.Errorf("vkAcquireNextImageKHR: %w", err)
	}
	return imageIndex, status, nil
}

// Present hands the image back to the swapchain once renderComplete fires.
func (vs *VulkanSwapchain) Present(presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) (renderer.PresentStatus, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}
	status, err := presentStatus(vk.QueuePresent(presentQueue, &presentInfo))
	if err != nil {
		return status, fmt.Errorf("vkQueuePresentKHR: %w", err)
	}
	return status, nil
}

// presentStatus maps the transient swapchain results to statuses and
// everything else that is not a success to an error.
func presentStatus(result vk.Result) (renderer.PresentStatus, error) {
	switch result {
	case vk.Success:
		return renderer.PresentOK, nil
	case vk.Suboptimal:
		return renderer.PresentSuboptimal, nil
	case vk.ErrorOutOfDate:
		return renderer.PresentOutOfDate, nil
	default:
		return renderer.PresentOK, fmt.Errorf("%s", VulkanResultString(result))
	}
}

// SwapchainDestroy releases the views and framebuffers and the swapchain.
// The images are owned by the swapchain.
func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.DestroyFramebuffers(context)
	for i := range vs.Views {
		if vs.Views[i] != nil {
			vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil
	if vs.Handle != nil {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = nil
	}
}

// RegenerateFramebuffers creates one framebuffer per image for renderpass.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.DestroyFramebuffers(context)
	vs.Framebuffers = make([]*VulkanFramebuffer, vs.ImageCount)
	for i := range vs.Views {
		fb, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, []vk.ImageView{vs.Views[i]})
		if err != nil {
			return err
		}
		vs.Framebuffers[i] = fb
	}
	return nil
}

func (vs *VulkanSwapchain) DestroyFramebuffers(context *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		if fb != nil {
			fb.Destroy(context)
		}
	}
	vs.Framebuffers = nil
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VulkanContext holds every object shared by the backend's parts.
type VulkanContext struct {
	// Extent of the current swapchain.
	FramebufferWidth  uint32
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Pipeline       *VulkanPipeline
	Descriptors    *VulkanDescriptors
	Sampler        vk.Sampler

	// One of each per frame in flight.
	GraphicsCommandBuffers   []*VulkanCommandBuffer
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore
	InFlightFences           []*VulkanFence

	// Fences owned by InFlightFences, indexed by swapchain image.
	ImagesInFlight []*VulkanFence

	ImageIndex   uint32
	CurrentFrame uint32
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has all of propertyFlags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 && memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type matches filter 0x%x with flags 0x%x", typeFilter, propertyFlags)
}

// CurrentCommandBuffer is the command buffer of the frame being recorded.
func (vc *VulkanContext) CurrentCommandBuffer() *VulkanCommandBuffer {
	return vc.GraphicsCommandBuffers[vc.CurrentFrame]
}

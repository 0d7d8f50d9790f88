package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

type VulkanBuffer struct {
	Handle        vk.Buffer
	Memory        vk.DeviceMemory
	Size          uint64
	Usage         vk.BufferUsageFlags
	PropertyFlags vk.MemoryPropertyFlags
}

const hostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, propertyFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("cannot create an empty buffer")
	}
	buffer := &VulkanBuffer{
		Size:          size,
		Usage:         usage,
		PropertyFlags: propertyFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res))
	}
	buffer.Handle = handle

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, handle, &memReqs)
	memReqs.Deref()

	memoryIndex, err := context.FindMemoryIndex(memReqs.MemoryTypeBits, propertyFlags)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("vkAllocateMemory for buffer failed with %s", VulkanResultString(res))
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, handle, memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(res))
	}
	return buffer, nil
}

// LoadData copies data to the start of a host visible buffer.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, data []byte) error {
	if uint64(len(data)) > vb.Size {
		return fmt.Errorf("buffer of %d bytes cannot hold %d bytes", vb.Size, len(data))
	}
	if len(data) == 0 {
		return nil
	}
	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(len(data)), 0, &mapped); res != vk.Success {
		return fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res))
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	vb.Size = 0
}

// grownSize doubles current until it holds need.
func grownSize(current, need uint64) uint64 {
	if current == 0 {
		current = 1
	}
	for current < need {
		current *= 2
	}
	return current
}

// sliceBytes views a slice of plain values as bytes without copying.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

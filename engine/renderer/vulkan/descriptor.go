package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VulkanDescriptors owns the layout and pool of the per texture descriptor
// sets. Each set holds a single combined image sampler at binding 0.
type VulkanDescriptors struct {
	SetLayout vk.DescriptorSetLayout
	Pool      vk.DescriptorPool
	allocated uint32
}

func DescriptorsCreate(context *VulkanContext, maxSets uint32) (*VulkanDescriptors, error) {
	d := &VulkanDescriptors{}

	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		return nil, fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res))
	}
	d.SetLayout = layout

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxSets,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: maxSets,
		}},
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		d.Destroy(context)
		return nil, fmt.Errorf("vkCreateDescriptorPool failed with %s", VulkanResultString(res))
	}
	d.Pool = pool
	return d, nil
}

// AllocateImageSet allocates a set and points it at view sampled by sampler.
func (d *VulkanDescriptors) AllocateImageSet(context *VulkanContext, view vk.ImageView, sampler vk.Sampler) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.SetLayout},
	}
	var set vk.DescriptorSet
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &set); res != vk.Success {
		return nil, fmt.Errorf("vkAllocateDescriptorSets failed with %s (%d sets in use)", VulkanResultString(res), d.allocated)
	}
	d.allocated++

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	return set, nil
}

func (d *VulkanDescriptors) FreeSet(context *VulkanContext, set vk.DescriptorSet) {
	if set == nil {
		return
	}
	vk.FreeDescriptorSets(context.Device.LogicalDevice, d.Pool, 1, &set)
	d.allocated--
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	if d.Pool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = nil
	}
	if d.SetLayout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.SetLayout, context.Allocator)
		d.SetLayout = nil
	}
	d.allocated = 0
}

// SamplerCreate makes the nearest filtered, edge clamped sampler shared by
// every texture.
func SamplerCreate(context *VulkanContext) (vk.Sampler, error) {
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterNearest,
		MinFilter:               vk.FilterNearest,
		MipmapMode:              vk.SamplerMipmapModeNearest,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &info, context.Allocator, &sampler); res != vk.Success {
		return nil, fmt.Errorf("vkCreateSampler failed with %s", VulkanResultString(res))
	}
	return sampler, nil
}

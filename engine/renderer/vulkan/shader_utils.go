package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/assets/loaders"
)

// VulkanShaderStage is one compiled stage of a shader program.
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// VulkanShader holds the vertex and fragment stages of a program.
type VulkanShader struct {
	Name   string
	Stages []VulkanShaderStage
}

var shaderStageFlags = map[loaders.ShaderStage]vk.ShaderStageFlagBits{
	loaders.ShaderStageVertex:   vk.ShaderStageVertexBit,
	loaders.ShaderStageFragment: vk.ShaderStageFragmentBit,
}

// NewShader loads name.vert.spv and name.frag.spv through loader.
func NewShader(context *VulkanContext, loader *loaders.ShaderLoader, name string) (*VulkanShader, error) {
	shader := &VulkanShader{Name: name}
	for _, stage := range []loaders.ShaderStage{loaders.ShaderStageVertex, loaders.ShaderStageFragment} {
		code, err := loader.Load(name, stage)
		if err != nil {
			shader.Destroy(context)
			return nil, err
		}
		module, err := NewShaderModule(context, code)
		if err != nil {
			shader.Destroy(context)
			return nil, fmt.Errorf("shader %s.%s: %w", name, stage, err)
		}
		shader.Stages = append(shader.Stages, VulkanShaderStage{
			Handle: module,
			ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  shaderStageFlags[stage],
				Module: module,
				PName:  VulkanSafeString("main"),
			},
		})
	}
	return shader, nil
}

func NewShaderModule(context *VulkanContext, code []uint32) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); res != vk.Success {
		return nil, fmt.Errorf("vkCreateShaderModule failed with %s", VulkanResultString(res))
	}
	return module, nil
}

// StageInfos lists the stages in pipeline creation form.
func (s *VulkanShader) StageInfos() []vk.PipelineShaderStageCreateInfo {
	infos := make([]vk.PipelineShaderStageCreateInfo, len(s.Stages))
	for i := range s.Stages {
		infos[i] = s.Stages[i].ShaderStageCreateInfo
	}
	return infos
}

func (s *VulkanShader) Destroy(context *VulkanContext) {
	for i := range s.Stages {
		if s.Stages[i].Handle != nil {
			vk.DestroyShaderModule(context.Device.LogicalDevice, s.Stages[i].Handle, context.Allocator)
			s.Stages[i].Handle = nil
		}
	}
	s.Stages = nil
}

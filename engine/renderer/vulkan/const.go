package vulkan

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// VULKAN_MAX_TEXTURE_COUNT bounds the descriptor pool, one set per texture.
const VULKAN_MAX_TEXTURE_COUNT uint32 = 1024

const (
	// push constant block shared by both shader stages: view-projection then model
	pushConstantViewProjectionOffset uint32 = 0
	pushConstantModelOffset          uint32 = 64
	pushConstantSize                 uint32 = 128

	// initial per-frame geometry buffer sizes, grown on demand
	initialVertexBufferSize uint64 = 64 * 1024
	initialIndexBufferSize  uint64 = 32 * 1024
)

const spriteShaderName = "sprite"

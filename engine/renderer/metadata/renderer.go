package metadata

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	// Validation enables the Vulkan validation layers and debug messenger.
	Validation bool
	// VSync presents with FIFO instead of preferring mailbox.
	VSync bool
	// ShaderDir holds the compiled SPIR-V for the sprite pipeline.
	ShaderDir string
}

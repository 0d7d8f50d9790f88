package metadata

const (
	// DEFAULT_TEXTURE_NAME names the 1x1 white texture bound for untextured draws.
	DEFAULT_TEXTURE_NAME string = "__default_white"
)

// TextureHandle identifies a texture owned by the renderer backend.
// The zero value is never handed out.
type TextureHandle uint32

const InvalidTextureHandle TextureHandle = 0

/**
 * @brief Represents a texture.
 */
type Texture struct {
	Handle TextureHandle
	Width  uint32
	Height uint32
	// Generation is incremented every time the data is reloaded
	Generation uint32
	Name       string
	// InternalData is the backend specific image, view and sampler
	InternalData interface{}
}

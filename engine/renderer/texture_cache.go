package renderer

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

// ImageDecoder turns an image file into RGBA8 pixels.
type ImageDecoder interface {
	Decode(path string) (*metadata.ImageData, error)
}

// TextureCache maps image paths to uploaded textures. A path is decoded and
// uploaded once; later lookups reuse the texture until it is invalidated.
type TextureCache struct {
	backend  FrameBackend
	decoder  ImageDecoder
	textures map[string]*metadata.Texture
	stale    []string
}

func NewTextureCache(backend FrameBackend, decoder ImageDecoder) *TextureCache {
	return &TextureCache{
		backend:  backend,
		decoder:  decoder,
		textures: make(map[string]*metadata.Texture),
	}
}

// Acquire returns the texture for path, decoding and uploading it on a miss.
// Failed loads are not cached so a fixed file is picked up on the next call.
func (c *TextureCache) Acquire(path string) (*metadata.Texture, error) {
	key := filepath.Clean(path)
	if t, ok := c.textures[key]; ok {
		return t, nil
	}
	if c.decoder == nil {
		return nil, fmt.Errorf("no image decoder configured to load %s", key)
	}

	img, err := c.decoder.Decode(key)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return c.upload(key, img)
}

// Insert uploads an image decoded elsewhere, typically by a preloader. A path
// already in the cache keeps its texture.
func (c *TextureCache) Insert(path string, img *metadata.ImageData) (*metadata.Texture, error) {
	key := filepath.Clean(path)
	if t, ok := c.textures[key]; ok {
		return t, nil
	}
	return c.upload(key, img)
}

func (c *TextureCache) upload(key string, img *metadata.ImageData) (*metadata.Texture, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("decode %s: empty image", key)
	}
	handle, err := c.backend.CreateTexture(key, img.Width, img.Height, img.Pixels)
	if err != nil {
		return nil, fmt.Errorf("%w: texture %s: %v", core.ErrResourceCreation, key, err)
	}

	t := &metadata.Texture{
		Handle: handle,
		Width:  img.Width,
		Height: img.Height,
		Name:   key,
	}
	c.textures[key] = t
	core.LogDebug("texture %s loaded (%dx%d) as handle %d", key, img.Width, img.Height, handle)
	return t, nil
}

// Invalidate schedules path for reload. The GPU texture is released at the
// start of the next frame, never while commands are being recorded.
// A path already waiting is queued once, however often it changes while
// no frame is drawn.
func (c *TextureCache) Invalidate(path string) {
	key := filepath.Clean(path)
	if slices.Contains(c.stale, key) {
		return
	}
	c.stale = append(c.stale, key)
}

// Pending is the number of paths waiting for the next frame.
func (c *TextureCache) Pending() int {
	return len(c.stale)
}

// applyInvalidations drops every texture scheduled by Invalidate.
func (c *TextureCache) applyInvalidations() {
	for _, key := range c.stale {
		t, ok := c.textures[key]
		if !ok {
			continue
		}
		delete(c.textures, key)
		c.backend.DestroyTexture(t.Handle)
		core.LogInfo("texture %s invalidated", key)
	}
	c.stale = c.stale[:0]
}

func (c *TextureCache) Len() int {
	return len(c.textures)
}

// Clear releases every cached texture.
func (c *TextureCache) Clear() {
	for key, t := range c.textures {
		c.backend.DestroyTexture(t.Handle)
		delete(c.textures, key)
	}
	c.stale = nil
}

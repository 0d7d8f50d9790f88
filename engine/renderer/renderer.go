package renderer

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// FontLoader reads a bitmap font description.
type FontLoader interface {
	LoadFont(path string) (*metadata.BitmapFont, error)
}

// Overlay is an immediate mode UI drawn on top of the layers. It sees input
// first and can capture it.
type Overlay interface {
	// HandleEvent returns true when the overlay wants the event for itself.
	HandleEvent(event core.EventContext) bool
	Render(ctx core.DrawContext)
}

// Statistics describes the work submitted for one frame.
type Statistics struct {
	DrawCalls    uint32
	Vertices     uint32
	Indices      uint32
	TextureBinds uint32
}

type RendererConfig struct {
	ClearColour math.Vec4
	Decoder     ImageDecoder
	Fonts       FontLoader
}

// Renderer composes a frame out of the draws issued by the layers. Draws are
// queued on the CPU and recorded in one go by EndFrame.
type Renderer struct {
	backend FrameBackend
	fonts   FontLoader
	overlay Overlay

	textures       *TextureCache
	fontCache      map[string]*metadata.BitmapFont
	defaultTexture metadata.TextureHandle

	clearColour    math.Vec4
	viewProjection math.Mat4
	viewProjSet    bool
	queue          DrawQueue

	inFrame   bool
	stats     Statistics
	lastStats Statistics
}

// NewRenderer creates the composer and its 1x1 white default texture.
func NewRenderer(backend FrameBackend, config RendererConfig) (*Renderer, error) {
	r := &Renderer{
		backend:        backend,
		fonts:          config.Fonts,
		textures:       NewTextureCache(backend, config.Decoder),
		fontCache:      make(map[string]*metadata.BitmapFont),
		clearColour:    config.ClearColour,
		viewProjection: math.NewMat4Identity(),
	}
	handle, err := backend.CreateTexture(metadata.DEFAULT_TEXTURE_NAME, 1, 1, []uint8{255, 255, 255, 255})
	if err != nil {
		return nil, fmt.Errorf("%w: default texture: %v", core.ErrResourceCreation, err)
	}
	r.defaultTexture = handle
	return r, nil
}

func (r *Renderer) SetOverlay(o Overlay) {
	r.overlay = o
}

func (r *Renderer) Textures() *TextureCache {
	return r.textures
}

func (r *Renderer) DefaultTexture() metadata.TextureHandle {
	return r.defaultTexture
}

// Release destroys every texture the renderer created. The GPU must be idle.
func (r *Renderer) Release() {
	r.textures.Clear()
	if r.defaultTexture != metadata.InvalidTextureHandle {
		r.backend.DestroyTexture(r.defaultTexture)
		r.defaultTexture = metadata.InvalidTextureHandle
	}
	r.fontCache = make(map[string]*metadata.BitmapFont)
}

// Queue exposes the pending draws of the current frame.
func (r *Renderer) Queue() *DrawQueue {
	return &r.queue
}

// Stats returns the statistics of the last finished frame.
func (r *Renderer) Stats() Statistics {
	return r.lastStats
}

// BeginFrame starts collecting draws.
func (r *Renderer) BeginFrame() {
	r.textures.applyInvalidations()
	r.queue.Reset()
	r.stats = Statistics{}
	r.viewProjSet = false
	r.inFrame = true
}

// EndFrame records uploads, the batched geometry and one draw per queued
// entry into the command buffer of the acquired image.
func (r *Renderer) EndFrame() error {
	if !r.inFrame {
		return fmt.Errorf("%w: renderer EndFrame without BeginFrame", core.ErrInvalidTransition)
	}
	r.inFrame = false
	defer r.queue.Reset()

	if r.overlay != nil {
		r.overlay.Render(r)
	}

	// copies must land before the pass samples the textures
	if err := r.backend.FlushUploads(); err != nil {
		return fmt.Errorf("%w: uploads: %v", core.ErrDeviceFailure, err)
	}
	if len(r.queue.Vertices) > 0 {
		if err := r.backend.UploadGeometry(r.queue.Vertices, r.queue.Indices); err != nil {
			return fmt.Errorf("%w: geometry upload: %v", core.ErrDeviceFailure, err)
		}
	}

	if err := r.backend.BeginRenderPass(r.clearColour); err != nil {
		return fmt.Errorf("%w: begin render pass: %v", core.ErrDeviceFailure, err)
	}
	r.backend.SetViewProjection(r.viewProjection)

	bound := r.defaultTexture
	if err := r.backend.BindTexture(bound); err != nil {
		return fmt.Errorf("%w: bind default texture: %v", core.ErrDeviceFailure, err)
	}
	r.stats.TextureBinds++

	for _, e := range r.queue.Entries {
		if e.Texture != bound {
			if err := r.backend.BindTexture(e.Texture); err != nil {
				return fmt.Errorf("%w: bind texture %d: %v", core.ErrDeviceFailure, e.Texture, err)
			}
			bound = e.Texture
			r.stats.TextureBinds++
		}
		r.backend.PushModel(e.Model)
		r.backend.DrawIndexed(e.IndexCount, e.FirstIndex, e.VertexOffset)
		r.stats.DrawCalls++
	}
	r.stats.Vertices = uint32(len(r.queue.Vertices))
	r.stats.Indices = uint32(len(r.queue.Indices))

	if err := r.backend.EndRenderPass(); err != nil {
		return fmt.Errorf("%w: end render pass: %v", core.ErrDeviceFailure, err)
	}
	r.lastStats = r.stats
	return nil
}

// SetViewProjection sets the matrix pushed once at the start of the pass.
// The last value set during a frame wins, so layers drawing in another space
// fold it into their model matrices.
func (r *Renderer) SetViewProjection(viewProjection math.Mat4) {
	if r.viewProjSet && !r.viewProjection.Compare(viewProjection, math.K_FLOAT_EPSILON) {
		core.LogWarn("view-projection replaced after %d draws; the whole pass uses the last one", r.queue.Len())
	}
	r.viewProjection = viewProjection
	r.viewProjSet = r.inFrame
}

// degenerate reports whether model flattens the XY plane.
func degenerate(model math.Mat4) bool {
	det := model.Data[0]*model.Data[5] - model.Data[1]*model.Data[4]
	return det > -math.K_FLOAT_EPSILON && det < math.K_FLOAT_EPSILON
}

func (r *Renderer) push(vertices []math.Vertex2D, indices []uint32, model math.Mat4, texture metadata.TextureHandle) {
	if degenerate(model) {
		core.LogDebug("skipping draw with a degenerate model matrix")
		return
	}
	r.queue.Push(vertices, indices, model, texture)
}

// DrawRectangle draws a solid rectangle of size centred on the model origin.
func (r *Renderer) DrawRectangle(size math.Vec2, model math.Mat4, colour math.Vec4) {
	r.push(quad(size, fullUV, colour), quadIndices, model, r.defaultTexture)
}

// DrawTriangle draws a solid triangle with corners in model space.
func (r *Renderer) DrawTriangle(a, b, c math.Vec2, model math.Mat4, colour math.Vec4) {
	vertices := []math.Vertex2D{
		{Position: a, Texcoord: math.Vec2{X: 0, Y: 1}, Colour: colour},
		{Position: b, Texcoord: math.Vec2{X: 1, Y: 1}, Colour: colour},
		{Position: c, Texcoord: math.Vec2{X: 0.5, Y: 0}, Colour: colour},
	}
	r.push(vertices, []uint32{0, 1, 2}, model, r.defaultTexture)
}

// DrawImage draws the image at path stretched over a rectangle of size.
func (r *Renderer) DrawImage(path string, size math.Vec2, model math.Mat4, tint math.Vec4) error {
	t, err := r.textures.Acquire(path)
	if err != nil {
		return err
	}
	r.push(quad(size, fullUV, tint), quadIndices, model, t.Handle)
	return nil
}

// DrawSubImage draws the pixel region of the image at path.
func (r *Renderer) DrawSubImage(path string, region math.Rect, size math.Vec2, model math.Mat4, tint math.Vec4) error {
	t, err := r.textures.Acquire(path)
	if err != nil {
		return err
	}
	uv := math.Rect{
		X:      region.X / float32(t.Width),
		Y:      region.Y / float32(t.Height),
		Width:  region.Width / float32(t.Width),
		Height: region.Height / float32(t.Height),
	}
	r.push(quad(size, uv, tint), quadIndices, model, t.Handle)
	return nil
}

// Font returns the bitmap font at path, loading it on first use.
func (r *Renderer) Font(path string) (*metadata.BitmapFont, error) {
	key := filepath.Clean(path)
	if f, ok := r.fontCache[key]; ok {
		return f, nil
	}
	if r.fonts == nil {
		return nil, fmt.Errorf("no font loader configured to load %s", key)
	}
	f, err := r.fonts.LoadFont(key)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", key, err)
	}
	r.fontCache[key] = f
	return f, nil
}

// DrawText lays out text with the bitmap font at fontPath. The model origin
// is the top left corner of the first line; lineHeight is in world units.
func (r *Renderer) DrawText(fontPath, text string, lineHeight float32, model math.Mat4, tint math.Vec4) error {
	font, err := r.Font(fontPath)
	if err != nil {
		return err
	}
	pages := layoutText(font, text, lineHeight, tint)
	for _, page := range pages {
		file, ok := font.PageFile(page.id)
		if !ok {
			return fmt.Errorf("font %s has no page %d", fontPath, page.id)
		}
		t, err := r.textures.Acquire(file)
		if err != nil {
			return err
		}
		r.push(page.vertices, page.indices, model, t.Handle)
	}
	return nil
}

package components

import (
	"github.com/spaghettifunk/tessera/engine/math"
)

// MinZoom is the smallest zoom a Camera2D accepts. Zoom scales the visible
// half height of the view volume, so smaller values zoom in.
const MinZoom float32 = 0.1

// Camera2D is an orthographic camera looking down the Z axis. Setters only
// store values; Update must be called to rebuild the matrices.
type Camera2D struct {
	Position    math.Vec2
	zoom        float32
	aspectRatio float32
	near        float32
	far         float32

	projection     math.Mat4
	view           math.Mat4
	viewProjection math.Mat4
}

func NewCamera2D(aspectRatio, zoom float32) *Camera2D {
	c := &Camera2D{
		aspectRatio: 1.0,
		zoom:        1.0,
		near:        -1.0,
		far:         1.0,
	}
	c.SetAspectRatio(aspectRatio)
	c.SetZoom(zoom)
	c.Update()
	return c
}

// SetZoom stores zoom, clamped to MinZoom.
func (c *Camera2D) SetZoom(zoom float32) {
	c.zoom = math.Max(zoom, MinZoom)
}

func (c *Camera2D) Zoom() float32 {
	return c.zoom
}

// SetAspectRatio stores width/height. Non positive ratios are ignored, which
// happens while a window is minimized.
func (c *Camera2D) SetAspectRatio(aspectRatio float32) {
	if aspectRatio <= 0 {
		return
	}
	c.aspectRatio = aspectRatio
}

func (c *Camera2D) AspectRatio() float32 {
	return c.aspectRatio
}

func (c *Camera2D) SetPosition(position math.Vec2) {
	c.Position = position
}

// Pan moves the camera by delta world units.
func (c *Camera2D) Pan(delta math.Vec2) {
	c.Position = c.Position.Add(delta)
}

// Update rebuilds projection, view and view-projection from the current
// position, zoom and aspect ratio. Calling it twice without changes yields
// identical matrices.
func (c *Camera2D) Update() {
	halfWidth := c.aspectRatio * c.zoom
	halfHeight := c.zoom
	c.projection = math.NewMat4Orthographic(-halfWidth, halfWidth, -halfHeight, halfHeight, c.near, c.far)
	// Vulkan clip space grows downwards
	c.projection.Data[5] *= -1.0

	translation := math.NewMat4Translation(math.Vec3{X: c.Position.X, Y: c.Position.Y})
	if view, ok := translation.Inverse(); ok {
		c.view = view
	}
	// projection * view, written in row-vector order
	c.viewProjection = c.view.Mul(c.projection)
}

func (c *Camera2D) Projection() math.Mat4 {
	return c.projection
}

func (c *Camera2D) View() math.Mat4 {
	return c.view
}

func (c *Camera2D) ViewProjection() math.Mat4 {
	return c.viewProjection
}

// ScreenToWorld converts a window pixel position into world coordinates.
// It reports false when the window has no area or the view-projection
// cannot be inverted.
func (c *Camera2D) ScreenToWorld(x, y float32, width, height int) (math.Vec2, bool) {
	if width <= 0 || height <= 0 {
		return math.Vec2{}, false
	}
	inverse, ok := c.viewProjection.Inverse()
	if !ok {
		return math.Vec2{}, false
	}
	ndc := math.Vec2{
		X: 2.0*x/float32(width) - 1.0,
		Y: 2.0*y/float32(height) - 1.0,
	}
	return ndc.Transform(inverse), true
}

// WorldUnitsPerPixel is the size of one window pixel in world units.
func (c *Camera2D) WorldUnitsPerPixel(height int) float32 {
	if height <= 0 {
		return 0
	}
	return 2.0 * c.zoom / float32(height)
}

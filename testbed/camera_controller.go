package testbed

import (
	gomath "math"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/components"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	zoomStep     float32 = 1.15
	zoomDuration float32 = 0.25
	maxZoom      float32 = 50
)

// CameraController pans the camera while the right button is held and eases
// the zoom towards the wheel target.
type CameraController struct {
	Camera *components.Camera2D

	width, height int
	targetZoom    float32
	zoomTween     *gween.Tween
}

func NewCameraController(camera *components.Camera2D, width, height int) *CameraController {
	c := &CameraController{Camera: camera, targetZoom: camera.Zoom()}
	c.Resize(width, height)
	return c
}

// Resize keeps the aspect ratio in step with the window.
func (c *CameraController) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
	c.Camera.SetAspectRatio(float32(width) / float32(height))
}

// ZoomBy starts a tween towards the zoom reached after steps wheel notches.
// Positive steps zoom in.
func (c *CameraController) ZoomBy(steps float32) {
	target := c.targetZoom * float32(gomath.Pow(float64(zoomStep), float64(-steps)))
	c.targetZoom = math.Clamp(target, components.MinZoom, maxZoom)
	c.zoomTween = gween.New(c.Camera.Zoom(), c.targetZoom, zoomDuration, ease.OutCubic)
}

// TargetZoom is the zoom the camera is easing to.
func (c *CameraController) TargetZoom() float32 {
	return c.targetZoom
}

func (c *CameraController) HandleEvent(event core.EventContext) bool {
	switch event.Type {
	case core.EVENT_CODE_MOUSE_WHEEL:
		if me, ok := event.Data.(*core.MouseEvent); ok && me.ScrollY != 0 {
			c.ZoomBy(me.ScrollY)
			return true
		}
	case core.EVENT_CODE_RESIZED:
		if se, ok := event.Data.(*core.SystemEvent); ok {
			c.Resize(int(se.WindowWidth), int(se.WindowHeight))
		}
	}
	return false
}

func (c *CameraController) Update(deltaTime float64, input core.InputReader) {
	if input.IsButtonDown(core.BUTTON_RIGHT) && input.WasButtonDown(core.BUTTON_RIGHT) {
		x, y := input.MousePosition()
		px, py := input.PreviousMousePosition()
		unit := c.Camera.WorldUnitsPerPixel(c.height)
		// window y grows downwards, world y upwards
		c.Camera.Pan(math.Vec2{X: -(x - px) * unit, Y: (y - py) * unit})
	}

	if c.zoomTween != nil {
		zoom, finished := c.zoomTween.Update(float32(deltaTime))
		c.Camera.SetZoom(zoom)
		if finished {
			c.zoomTween = nil
		}
	}
	c.Camera.Update()
}

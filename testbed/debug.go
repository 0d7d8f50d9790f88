package testbed

import (
	"fmt"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/components"
)

const debugFont = "fonts/ubuntu_mono_21px.fnt"

// DebugLayer prints frame statistics in screen space. F1 toggles it and
// Escape quits.
type DebugLayer struct {
	core.BaseLayer

	engine  *engine.Engine
	camera  *components.Camera2D
	world   *components.Camera2D
	visible bool
	noFont  bool
	text    string
	height  float32
}

// NewDebugLayer draws on top of the layer that owns world, whose camera sets
// the view-projection of the frame.
func NewDebugLayer(e *engine.Engine, world *components.Camera2D) *DebugLayer {
	return &DebugLayer{engine: e, world: world, visible: true}
}

func (d *DebugLayer) OnAttach() {
	cfg := d.engine.Config()
	d.resize(cfg.StartWidth, cfg.StartHeight)
}

// resize maps one world unit to one pixel with the origin at the top left.
func (d *DebugLayer) resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	d.height = float32(height)
	half := d.height * 0.5
	d.camera = components.NewCamera2D(float32(width)/float32(height), half)
	d.camera.SetPosition(math.Vec2{X: float32(width) * 0.5, Y: -half})
	d.camera.Update()
}

func (d *DebugLayer) OnUpdate(deltaTime float64, input core.InputReader) {
	m := d.engine.Metrics()
	if m == nil {
		return
	}
	fps, frameTime := m.Frame()
	x, y := input.MousePosition()
	d.text = fmt.Sprintf("FPS: %5.1f (%4.1fms)\nMouse: %.0f, %.0f", fps, frameTime, x, y)
}

func (d *DebugLayer) OnEvent(event core.EventContext) bool {
	switch event.Type {
	case core.EVENT_CODE_KEY_PRESSED:
		ke, ok := event.Data.(*core.KeyEvent)
		if !ok || ke.Repeat {
			return false
		}
		switch ke.KeyCode {
		case core.KEY_F1:
			d.visible = !d.visible
			return true
		case core.KEY_ESCAPE:
			d.engine.RequestClose()
			return true
		}
	case core.EVENT_CODE_RESIZED:
		if se, ok := event.Data.(*core.SystemEvent); ok {
			d.resize(se.WindowWidth, se.WindowHeight)
		}
	}
	return false
}

func (d *DebugLayer) OnRender(ctx core.DrawContext) {
	if !d.visible || d.camera == nil || d.text == "" {
		return
	}
	toScreen, ok := d.screenSpace()
	if !ok {
		return
	}
	origin := math.NewMat4Translation(math.Vec3{X: 10, Y: -10}).Mul(toScreen)
	if !d.noFont {
		err := ctx.DrawText(debugFont, d.text, 21, origin, math.NewVec4One())
		if err == nil {
			return
		}
		core.LogWarn("debug text disabled: %s", err)
		d.noFont = true
	}
	// a bar whose length follows the frame rate
	if m := d.engine.Metrics(); m != nil {
		width := math.Clamp(float32(m.FPS()), 1, 600)
		bar := math.NewMat4Translation(math.Vec3{X: 10 + width*0.5, Y: -16}).Mul(toScreen)
		ctx.DrawRectangle(math.Vec2{X: width, Y: 12}, bar, math.NewVec4(0.2, 0.9, 0.3, 1))
	}
}

// screenSpace moves pixel coordinates into world space, so that the world
// view-projection of the frame puts them where the pixel camera would.
func (d *DebugLayer) screenSpace() (math.Mat4, bool) {
	if d.world == nil {
		return math.Mat4{}, false
	}
	inverse, ok := d.world.ViewProjection().Inverse()
	if !ok {
		return math.Mat4{}, false
	}
	return d.camera.ViewProjection().Mul(inverse), true
}

func (d *DebugLayer) Visible() bool {
	return d.visible
}

package testbed

import (
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/components"
)

const (
	gravity     float32 = 9.81
	restitution float32 = 0.8
	arenaHalf   float32 = 4
	crateImage          = "textures/crate.png"
)

// Body is a box integrated at the fixed physics rate.
type Body struct {
	Position math.Vec2
	Velocity math.Vec2
	Size     math.Vec2
	Rotation float32
	Spin     float32
}

// Step advances the body by dt seconds and bounces it inside the arena.
func (b *Body) Step(dt float32) {
	b.Velocity.Y -= gravity * dt
	b.Position = b.Position.Add(b.Velocity.MulScalar(dt))
	b.Rotation += b.Spin * dt

	hw, hh := b.Size.X*0.5, b.Size.Y*0.5
	if floor := -arenaHalf + hh; b.Position.Y < floor {
		b.Position.Y = floor
		b.Velocity.Y = -b.Velocity.Y * restitution
	}
	if left := -arenaHalf + hw; b.Position.X < left {
		b.Position.X = left
		b.Velocity.X = -b.Velocity.X
	} else if right := arenaHalf - hw; b.Position.X > right {
		b.Position.X = right
		b.Velocity.X = -b.Velocity.X
	}
}

func (b *Body) Model() math.Mat4 {
	return math.NewMat4Transform2D(math.Transform2D{Position: b.Position, Rotation: b.Rotation, Scale: math.NewVec2One()})
}

// Interpolate blends the pose of previous towards b. alpha is clamped to [0, 1].
func (b *Body) Interpolate(previous Body, alpha float32) Body {
	alpha = math.Clamp(alpha, 0, 1)
	out := *b
	out.Position = previous.Position.Add(b.Position.Sub(previous.Position).MulScalar(alpha))
	out.Rotation = previous.Rotation + (b.Rotation-previous.Rotation)*alpha
	return out
}

// WorldLayer draws the arena, the bouncing crate and the sprite under the
// cursor, and owns the world camera.
type WorldLayer struct {
	core.BaseLayer

	camera     *CameraController
	body       Body
	previous   Body
	alpha      func() float64
	cursor     math.Vec2
	missingImg bool
}

// NewWorldLayer renders the body between its last two physics states using
// alpha, the fraction of a step left over. A nil alpha draws the latest state.
func NewWorldLayer(width, height int, alpha func() float64) *WorldLayer {
	return &WorldLayer{
		camera: NewCameraController(components.NewCamera2D(1, arenaHalf+1), width, height),
		alpha:  alpha,
	}
}

func (w *WorldLayer) Camera() *components.Camera2D {
	return w.camera.Camera
}

func (w *WorldLayer) OnAttach() {
	w.body = Body{
		Position: math.Vec2{X: -2, Y: 2},
		Velocity: math.Vec2{X: 1.5},
		Size:     math.NewVec2One(),
		Spin:     0.8,
	}
	w.previous = w.body
	core.LogDebug("world layer attached")
}

func (w *WorldLayer) OnPhysicsUpdate(fixedDeltaTime float64) {
	w.previous = w.body
	w.body.Step(float32(fixedDeltaTime))
}

func (w *WorldLayer) OnUpdate(deltaTime float64, input core.InputReader) {
	w.camera.Update(deltaTime, input)
	x, y := input.MousePosition()
	if p, ok := w.camera.Camera.ScreenToWorld(x, y, w.camera.width, w.camera.height); ok {
		w.cursor = p
	}
	if input.IsKeyDown(core.KEY_SPACE) && !input.WasKeyDown(core.KEY_SPACE) {
		w.body.Velocity.Y = 6
	}
}

func (w *WorldLayer) OnEvent(event core.EventContext) bool {
	return w.camera.HandleEvent(event)
}

func (w *WorldLayer) OnRender(ctx core.DrawContext) {
	ctx.SetViewProjection(w.camera.Camera.ViewProjection())

	floor := math.NewMat4Translation(math.Vec3{Y: -arenaHalf - 0.05})
	ctx.DrawRectangle(math.Vec2{X: arenaHalf * 2, Y: 0.1}, floor, math.NewVec4(0.4, 0.4, 0.45, 1))

	pose := w.body
	if w.alpha != nil {
		pose = w.body.Interpolate(w.previous, float32(w.alpha()))
	}
	w.drawSprite(ctx, pose.Size, pose.Model(), math.NewVec4One())

	marker := math.NewMat4Translation(math.Vec3{X: w.cursor.X, Y: w.cursor.Y})
	ctx.DrawTriangle(math.Vec2{X: -0.1, Y: -0.1}, math.Vec2{X: 0.1, Y: -0.1}, math.Vec2{Y: 0.1}, marker, math.NewVec4(1, 0.8, 0.2, 1))
}

// drawSprite falls back to a plain quad once the crate image failed to load.
func (w *WorldLayer) drawSprite(ctx core.DrawContext, size math.Vec2, model math.Mat4, tint math.Vec4) {
	if !w.missingImg {
		err := ctx.DrawImage(crateImage, size, model, tint)
		if err == nil {
			return
		}
		core.LogWarn("drawing %s: %s", crateImage, err)
		w.missingImg = true
	}
	ctx.DrawRectangle(size, model, math.NewVec4(0.8, 0.5, 0.2, 1))
}

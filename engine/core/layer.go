package core

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/tessera/engine/math"
)

// Layer is a unit of application behaviour. Layers are updated and rendered
// in the order they were pushed and receive events in the reverse order.
type Layer interface {
	// OnAttach runs once before the layer's first update.
	OnAttach()
	OnUpdate(deltaTime float64, input InputReader)
	OnPhysicsUpdate(fixedDeltaTime float64)
	OnRender(ctx DrawContext)
	// OnEvent returns true when the event was handled; propagation stops.
	OnEvent(event EventContext) bool
	OnClose()
}

// DrawContext is what a layer can draw with during OnRender. Failures to load
// an image or font are returned so the layer can decide what to do.
type DrawContext interface {
	SetViewProjection(viewProjection math.Mat4)
	DrawRectangle(size math.Vec2, model math.Mat4, colour math.Vec4)
	DrawTriangle(a, b, c math.Vec2, model math.Mat4, colour math.Vec4)
	DrawImage(path string, size math.Vec2, model math.Mat4, tint math.Vec4) error
	DrawSubImage(path string, region math.Rect, size math.Vec2, model math.Mat4, tint math.Vec4) error
	DrawText(fontPath, text string, lineHeight float32, model math.Mat4, tint math.Vec4) error
}

type layerEntry struct {
	id    uuid.UUID
	layer Layer
}

// LayerStack keeps layers in push order.
type LayerStack struct {
	entries []layerEntry
}

func NewLayerStack() *LayerStack {
	return &LayerStack{}
}

// Push appends l on top of the stack and returns the id it was given.
func (ls *LayerStack) Push(l Layer) uuid.UUID {
	id := uuid.New()
	ls.entries = append(ls.entries, layerEntry{id: id, layer: l})
	LogDebug("layer %s pushed (%T), stack size %d", id, l, len(ls.entries))
	return id
}

func (ls *LayerStack) Len() int {
	return len(ls.entries)
}

// Clear empties the stack without calling any hook.
func (ls *LayerStack) Clear() {
	ls.entries = nil
}

// ID returns the id assigned to l when it was pushed.
func (ls *LayerStack) ID(l Layer) (uuid.UUID, error) {
	for _, e := range ls.entries {
		if e.layer == l {
			return e.id, nil
		}
	}
	return uuid.Nil, fmt.Errorf("layer %T is not on the stack", l)
}

// ForEach visits every layer in push order. The slice is captured before the
// visit so layers pushed from inside f are first seen on the next call.
func (ls *LayerStack) ForEach(f func(Layer)) {
	entries := ls.entries
	for _, e := range entries {
		f(e.layer)
	}
}

// ForEachReverse visits layers from the top of the stack down until f
// returns true. It reports whether any layer stopped the walk.
func (ls *LayerStack) ForEachReverse(f func(Layer) bool) bool {
	entries := ls.entries
	for i := len(entries) - 1; i >= 0; i-- {
		if stop := f(entries[i].layer); stop {
			return true
		}
	}
	return false
}

func (ls *LayerStack) Attach() {
	ls.ForEach(func(l Layer) { l.OnAttach() })
}

func (ls *LayerStack) Update(deltaTime float64, input InputReader) {
	ls.ForEach(func(l Layer) { l.OnUpdate(deltaTime, input) })
}

func (ls *LayerStack) PhysicsUpdate(fixedDeltaTime float64) {
	ls.ForEach(func(l Layer) { l.OnPhysicsUpdate(fixedDeltaTime) })
}

func (ls *LayerStack) Render(ctx DrawContext) {
	ls.ForEach(func(l Layer) { l.OnRender(ctx) })
}

// Dispatch delivers event top down and reports whether a layer handled it.
func (ls *LayerStack) Dispatch(event EventContext) bool {
	return ls.ForEachReverse(func(l Layer) bool { return l.OnEvent(event) })
}

// Close calls OnClose on every layer in push order.
func (ls *LayerStack) Close() {
	ls.ForEach(func(l Layer) { l.OnClose() })
}

// BaseLayer implements every Layer hook as a no-op so layers can embed it
// and override only what they need.
type BaseLayer struct{}

func (BaseLayer) OnAttach()                     {}
func (BaseLayer) OnUpdate(float64, InputReader) {}
func (BaseLayer) OnPhysicsUpdate(float64)       {}
func (BaseLayer) OnRender(DrawContext)          {}
func (BaseLayer) OnEvent(EventContext) bool     { return false }
func (BaseLayer) OnClose()                      {}

package renderer

import (
	"github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// DrawEntry is one indexed draw: a range of the frame's index buffer drawn
// with its own model matrix and texture.
type DrawEntry struct {
	Model        math.Mat4
	Texture      metadata.TextureHandle
	FirstIndex   uint32
	IndexCount   uint32
	VertexOffset int32
}

// DrawQueue batches the geometry of a frame so it can be uploaded once.
type DrawQueue struct {
	Vertices []math.Vertex2D
	Indices  []uint32
	Entries  []DrawEntry
}

// Push appends a shape. Indices are relative to the shape's own vertices.
func (q *DrawQueue) Push(vertices []math.Vertex2D, indices []uint32, model math.Mat4, texture metadata.TextureHandle) {
	if len(vertices) == 0 || len(indices) == 0 {
		return
	}
	q.Entries = append(q.Entries, DrawEntry{
		Model:        model,
		Texture:      texture,
		FirstIndex:   uint32(len(q.Indices)),
		IndexCount:   uint32(len(indices)),
		VertexOffset: int32(len(q.Vertices)),
	})
	q.Vertices = append(q.Vertices, vertices...)
	q.Indices = append(q.Indices, indices...)
}

func (q *DrawQueue) Len() int {
	return len(q.Entries)
}

// Reset empties the queue and keeps the allocated capacity.
func (q *DrawQueue) Reset() {
	q.Vertices = q.Vertices[:0]
	q.Indices = q.Indices[:0]
	q.Entries = q.Entries[:0]
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// quad returns a rectangle of the given size centred on the origin. uv maps
// the top left and size of the texture region in normalized coordinates;
// texture rows run top to bottom while world Y grows upwards.
func quad(size math.Vec2, uv math.Rect, colour math.Vec4) []math.Vertex2D {
	hw, hh := size.X*0.5, size.Y*0.5
	u0, v0 := uv.X, uv.Y
	u1, v1 := uv.X+uv.Width, uv.Y+uv.Height
	return []math.Vertex2D{
		{Position: math.Vec2{X: -hw, Y: -hh}, Texcoord: math.Vec2{X: u0, Y: v1}, Colour: colour},
		{Position: math.Vec2{X: hw, Y: -hh}, Texcoord: math.Vec2{X: u1, Y: v1}, Colour: colour},
		{Position: math.Vec2{X: hw, Y: hh}, Texcoord: math.Vec2{X: u1, Y: v0}, Colour: colour},
		{Position: math.Vec2{X: -hw, Y: hh}, Texcoord: math.Vec2{X: u0, Y: v0}, Colour: colour},
	}
}

var fullUV = math.Rect{X: 0, Y: 0, Width: 1, Height: 1}

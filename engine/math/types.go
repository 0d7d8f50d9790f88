package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector. It doubles as an RGBA colour.
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored row by row with the translation in
// elements 12, 13 and 14. Vectors are treated as rows, so a.Mul(b)
// applies a first and b second.
type Mat4 struct {
	Data [16]float32
}

// Vertex2D is the vertex layout consumed by the sprite pipeline.
type Vertex2D struct {
	Position Vec2
	Texcoord Vec2
	Colour   Vec4
}

// Rect is an axis aligned rectangle, used for UV sub-regions.
type Rect struct {
	X, Y, Width, Height float32
}

// Transform2D describes scale, then rotation around Z, then translation.
type Transform2D struct {
	Position Vec2
	Rotation float32
	Scale    Vec2
}

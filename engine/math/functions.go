package math

// ------------------------------------------
// Vector 2
// ------------------------------------------

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec2Zero() Vec2 {
	return Vec2{}
}

func NewVec2One() Vec2 {
	return Vec2{X: 1.0, Y: 1.0}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Mul(other Vec2) Vec2 {
	return Vec2{X: v.X * other.X, Y: v.Y * other.Y}
}

func (v Vec2) MulScalar(scalar float32) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

func (v Vec2) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Length() float32 {
	return ksqrt(v.LengthSquared())
}

// Normalized returns a unit length copy of v, or the zero vector if v has no length.
func (v Vec2) Normalized() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Compare reports whether every element of v is within tolerance of other.
func (v Vec2) Compare(other Vec2, tolerance float32) bool {
	return NearlyEqual(v.X, other.X, tolerance) && NearlyEqual(v.Y, other.Y, tolerance)
}

// Transform multiplies v, taken as the row (x, y, 0, 1), by m.
func (v Vec2) Transform(m Mat4) Vec2 {
	return Vec2{
		X: v.X*m.Data[0] + v.Y*m.Data[4] + m.Data[12],
		Y: v.X*m.Data[1] + v.Y*m.Data[5] + m.Data[13],
	}
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{X: 1.0, Y: 1.0, Z: 1.0}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return NearlyEqual(v.X, other.X, tolerance) &&
		NearlyEqual(v.Y, other.Y, tolerance) &&
		NearlyEqual(v.Z, other.Z, tolerance)
}

// Transform multiplies v, taken as the row (x, y, z, 1), by m.
func (v Vec3) Transform(m Mat4) Vec3 {
	out := Vec3{}
	out.X = v.X*m.Data[0+0] + v.Y*m.Data[4+0] + v.Z*m.Data[8+0] + 1.0*m.Data[12+0]
	out.Y = v.X*m.Data[0+1] + v.Y*m.Data[4+1] + v.Z*m.Data[8+1] + 1.0*m.Data[12+1]
	out.Z = v.X*m.Data[0+2] + v.Y*m.Data[4+2] + v.Z*m.Data[8+2] + 1.0*m.Data[12+2]
	return out
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func NewVec4One() Vec4 {
	return Vec4{X: 1.0, Y: 1.0, Z: 1.0, W: 1.0}
}

// NewColourFromArray builds an RGBA colour from a 4 element slice as found in
// configuration files. Missing elements default to 1.
func NewColourFromArray(rgba []float32) Vec4 {
	c := NewVec4One()
	dst := []*float32{&c.X, &c.Y, &c.Z, &c.W}
	for i := 0; i < len(rgba) && i < len(dst); i++ {
		*dst[i] = rgba[i]
	}
	return c
}

func (v Vec4) Mul(other Vec4) Vec4 {
	return Vec4{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z, W: v.W * other.W}
}

func (v Vec4) Compare(other Vec4, tolerance float32) bool {
	return NearlyEqual(v.X, other.X, tolerance) &&
		NearlyEqual(v.Y, other.Y, tolerance) &&
		NearlyEqual(v.Z, other.Z, tolerance) &&
		NearlyEqual(v.W, other.W, tolerance)
}

// ------------------------------------------
// Matrix 4
// ------------------------------------------

func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

// Mul returns mt * other. With row vectors the result applies mt first.
func (mt Mat4) Mul(other Mat4) Mat4 {
	out_matrix := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out_matrix.Data[row*4+col] = sum
		}
	}
	return out_matrix
}

// NewMat4Orthographic creates an orthographic projection for the given
// view volume.
func NewMat4Orthographic(left, right, bottom, top, near_clip, far_clip float32) Mat4 {
	out_matrix := NewMat4Identity()

	lr := 1.0 / (left - right)
	bt := 1.0 / (bottom - top)
	nf := 1.0 / (near_clip - far_clip)

	out_matrix.Data[0] = -2.0 * lr
	out_matrix.Data[5] = -2.0 * bt
	out_matrix.Data[10] = 2.0 * nf

	out_matrix.Data[12] = (left + right) * lr
	out_matrix.Data[13] = (top + bottom) * bt
	out_matrix.Data[14] = (far_clip + near_clip) * nf
	return out_matrix
}

func NewMat4Translation(position Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[12] = position.X
	out_matrix.Data[13] = position.Y
	out_matrix.Data[14] = position.Z
	return out_matrix
}

func NewMat4Scale(scale Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[0] = scale.X
	out_matrix.Data[5] = scale.Y
	out_matrix.Data[10] = scale.Z
	return out_matrix
}

// NewMat4EulerZ creates a rotation around the Z axis.
func NewMat4EulerZ(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()

	c := kcos(angle_radians)
	s := ksin(angle_radians)

	out_matrix.Data[0] = c
	out_matrix.Data[1] = s
	out_matrix.Data[4] = -s
	out_matrix.Data[5] = c
	return out_matrix
}

// NewMat4Transform2D composes scale, rotation and translation in that order.
func NewMat4Transform2D(t Transform2D) Mat4 {
	scale := NewMat4Scale(Vec3{X: t.Scale.X, Y: t.Scale.Y, Z: 1.0})
	rotation := NewMat4EulerZ(t.Rotation)
	translation := NewMat4Translation(Vec3{X: t.Position.X, Y: t.Position.Y})
	return scale.Mul(rotation).Mul(translation)
}

func NewMat4Transposed(matrix Mat4) Mat4 {
	out_matrix := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out_matrix.Data[col*4+row] = matrix.Data[row*4+col]
		}
	}
	return out_matrix
}

// Determinant returns the determinant of mt.
func (mt Mat4) Determinant() float32 {
	m := mt.Data
	a0 := m[0]*m[5] - m[1]*m[4]
	a1 := m[0]*m[6] - m[2]*m[4]
	a2 := m[0]*m[7] - m[3]*m[4]
	a3 := m[1]*m[6] - m[2]*m[5]
	a4 := m[1]*m[7] - m[3]*m[5]
	a5 := m[2]*m[7] - m[3]*m[6]
	b0 := m[8]*m[13] - m[9]*m[12]
	b1 := m[8]*m[14] - m[10]*m[12]
	b2 := m[8]*m[15] - m[11]*m[12]
	b3 := m[9]*m[14] - m[10]*m[13]
	b4 := m[9]*m[15] - m[11]*m[13]
	b5 := m[10]*m[15] - m[11]*m[14]
	return a0*b5 - a1*b4 + a2*b3 + a3*b2 - a4*b1 + a5*b0
}

// IsDegenerate reports whether mt collapses space and so cannot be inverted.
func (mt Mat4) IsDegenerate() bool {
	return kabs(mt.Determinant()) < K_FLOAT_EPSILON
}

// Inverse returns the inverse of mt. The second result is false, and the
// matrix is the identity, when mt has a zero determinant.
func (mt Mat4) Inverse() (Mat4, bool) {
	m := mt.Data

	t0 := m[10] * m[15]
	t1 := m[14] * m[11]
	t2 := m[6] * m[15]
	t3 := m[14] * m[7]
	t4 := m[6] * m[11]
	t5 := m[10] * m[7]
	t6 := m[2] * m[15]
	t7 := m[14] * m[3]
	t8 := m[2] * m[11]
	t9 := m[10] * m[3]
	t10 := m[2] * m[7]
	t11 := m[6] * m[3]
	t12 := m[8] * m[13]
	t13 := m[12] * m[9]
	t14 := m[4] * m[13]
	t15 := m[12] * m[5]
	t16 := m[4] * m[9]
	t17 := m[8] * m[5]
	t18 := m[0] * m[13]
	t19 := m[12] * m[1]
	t20 := m[0] * m[9]
	t21 := m[8] * m[1]
	t22 := m[0] * m[5]
	t23 := m[4] * m[1]

	out_matrix := Mat4{}
	o := &out_matrix.Data

	o[0] = (t0*m[5] + t3*m[9] + t4*m[13]) - (t1*m[5] + t2*m[9] + t5*m[13])
	o[1] = (t1*m[1] + t6*m[9] + t9*m[13]) - (t0*m[1] + t7*m[9] + t8*m[13])
	o[2] = (t2*m[1] + t7*m[5] + t10*m[13]) - (t3*m[1] + t6*m[5] + t11*m[13])
	o[3] = (t5*m[1] + t8*m[5] + t11*m[9]) - (t4*m[1] + t9*m[5] + t10*m[9])

	det := m[0]*o[0] + m[4]*o[1] + m[8]*o[2] + m[12]*o[3]
	if kabs(det) < K_FLOAT_EPSILON {
		return NewMat4Identity(), false
	}
	d := 1.0 / det

	o[0] = d * o[0]
	o[1] = d * o[1]
	o[2] = d * o[2]
	o[3] = d * o[3]
	o[4] = d * ((t1*m[4] + t2*m[8] + t5*m[12]) - (t0*m[4] + t3*m[8] + t4*m[12]))
	o[5] = d * ((t0*m[0] + t7*m[8] + t8*m[12]) - (t1*m[0] + t6*m[8] + t9*m[12]))
	o[6] = d * ((t3*m[0] + t6*m[4] + t11*m[12]) - (t2*m[0] + t7*m[4] + t10*m[12]))
	o[7] = d * ((t4*m[0] + t9*m[4] + t10*m[8]) - (t5*m[0] + t8*m[4] + t11*m[8]))
	o[8] = d * ((t12*m[7] + t15*m[11] + t16*m[15]) - (t13*m[7] + t14*m[11] + t17*m[15]))
	o[9] = d * ((t13*m[3] + t18*m[11] + t21*m[15]) - (t12*m[3] + t19*m[11] + t20*m[15]))
	o[10] = d * ((t14*m[3] + t19*m[7] + t22*m[15]) - (t15*m[3] + t18*m[7] + t23*m[15]))
	o[11] = d * ((t17*m[3] + t20*m[7] + t23*m[11]) - (t16*m[3] + t21*m[7] + t22*m[11]))
	o[12] = d * ((t14*m[10] + t17*m[14] + t13*m[6]) - (t16*m[14] + t12*m[6] + t15*m[10]))
	o[13] = d * ((t20*m[14] + t12*m[2] + t19*m[10]) - (t18*m[10] + t21*m[14] + t13*m[2]))
	o[14] = d * ((t18*m[6] + t23*m[14] + t15*m[2]) - (t22*m[14] + t14*m[2] + t19*m[6]))
	o[15] = d * ((t22*m[10] + t16*m[2] + t21*m[6]) - (t20*m[6] + t23*m[10] + t17*m[2]))

	return out_matrix, true
}

// Compare reports whether every element of mt is within tolerance of other.
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if !NearlyEqual(mt.Data[i], other.Data[i], tolerance) {
			return false
		}
	}
	return true
}

package math

import "testing"

func TestMat4MulAppliesLeftFirst(t *testing.T) {
	scale := NewMat4Scale(Vec3{X: 2, Y: 2, Z: 1})
	translation := NewMat4Translation(Vec3{X: 10, Y: 0, Z: 0})

	p := Vec2{X: 1, Y: 1}.Transform(scale.Mul(translation))
	if !p.Compare(Vec2{X: 12, Y: 2}, 1e-5) {
		t.Errorf("scale then translate = %+v, want {12 2}", p)
	}

	p = Vec2{X: 1, Y: 1}.Transform(translation.Mul(scale))
	if !p.Compare(Vec2{X: 22, Y: 2}, 1e-5) {
		t.Errorf("translate then scale = %+v, want {22 2}", p)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4Transform2D(Transform2D{
		Position: Vec2{X: 3, Y: -4},
		Rotation: K_HALF_PI / 3,
		Scale:    Vec2{X: 2, Y: 0.5},
	})
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported a singular matrix")
	}
	if got := m.Mul(inv); !got.Compare(NewMat4Identity(), 1e-4) {
		t.Errorf("m * inverse(m) = %v, want identity", got.Data)
	}
}

func TestMat4InverseOfTranslation(t *testing.T) {
	inv, ok := NewMat4Translation(Vec3{X: 5, Y: 7}).Inverse()
	if !ok {
		t.Fatal("translation should be invertible")
	}
	if inv.Data[12] != -5 || inv.Data[13] != -7 {
		t.Errorf("translation = (%f, %f), want (-5, -7)", inv.Data[12], inv.Data[13])
	}
}

func TestMat4InverseDegenerate(t *testing.T) {
	m := NewMat4Scale(Vec3{X: 0, Y: 1, Z: 1})
	if !m.IsDegenerate() {
		t.Error("zero scale should be degenerate")
	}
	inv, ok := m.Inverse()
	if ok {
		t.Error("Inverse of a singular matrix reported success")
	}
	if inv != NewMat4Identity() {
		t.Error("Inverse of a singular matrix should fall back to identity")
	}
}

func TestMat4Determinant(t *testing.T) {
	m := NewMat4Scale(Vec3{X: 2, Y: 3, Z: 4})
	if d := m.Determinant(); !NearlyEqual(d, 24, 1e-5) {
		t.Errorf("Determinant = %f, want 24", d)
	}
}

func TestOrthographicMapsCorners(t *testing.T) {
	proj := NewMat4Orthographic(-2, 2, -1, 1, -1, 1)
	tests := []struct {
		in, want Vec2
	}{
		{Vec2{X: -2, Y: -1}, Vec2{X: -1, Y: -1}},
		{Vec2{X: 2, Y: 1}, Vec2{X: 1, Y: 1}},
		{Vec2{X: 0, Y: 0}, Vec2{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		if got := tt.in.Transform(proj); !got.Compare(tt.want, 1e-5) {
			t.Errorf("ortho(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0.05, 0.1, 10.0); got != 0.1 {
		t.Errorf("Clamp low = %f, want 0.1", got)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Errorf("Clamp high = %d, want 10", got)
	}
	if got := Clamp(float32(3), 0, 10); got != 3 {
		t.Errorf("Clamp in range = %f, want 3", got)
	}
}

func TestNewColourFromArray(t *testing.T) {
	c := NewColourFromArray([]float32{0.1, 0.2})
	if !c.Compare(Vec4{X: 0.1, Y: 0.2, Z: 1, W: 1}, 1e-6) {
		t.Errorf("colour = %+v, want {0.1 0.2 1 1}", c)
	}
}

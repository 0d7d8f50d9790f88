package components

import (
	"testing"

	"github.com/spaghettifunk/tessera/engine/math"
)

func TestCamera2DZoomClamp(t *testing.T) {
	c := NewCamera2D(16.0/9.0, 1.0)
	for _, z := range []float32{0.05, 0, -3} {
		c.SetZoom(z)
		if c.Zoom() != MinZoom {
			t.Errorf("SetZoom(%f) -> %f, want %f", z, c.Zoom(), MinZoom)
		}
	}
	c.SetZoom(2.5)
	if c.Zoom() != 2.5 {
		t.Errorf("Zoom = %f, want 2.5", c.Zoom())
	}
}

func TestCamera2DUpdateIsIdempotent(t *testing.T) {
	c := NewCamera2D(16.0/9.0, 1.5)
	c.SetPosition(math.Vec2{X: 3, Y: -2})
	c.Update()
	first := c.ViewProjection()
	c.Update()
	if c.ViewProjection() != first {
		t.Error("second Update changed the view-projection")
	}
}

func TestCamera2DSettersNeedUpdate(t *testing.T) {
	c := NewCamera2D(1.0, 1.0)
	before := c.ViewProjection()
	c.SetPosition(math.Vec2{X: 5})
	if c.ViewProjection() != before {
		t.Error("view-projection changed before Update")
	}
	c.Update()
	if c.ViewProjection() == before {
		t.Error("view-projection did not change after Update")
	}
}

func TestCamera2DViewProjection(t *testing.T) {
	c := NewCamera2D(2.0, 1.0)
	c.SetPosition(math.Vec2{X: 4, Y: 1})
	c.Update()

	want := c.Projection()
	want = c.View().Mul(want)
	if c.ViewProjection() != want {
		t.Error("view-projection is not projection x view")
	}

	// the camera position lands in the centre of clip space
	centre := math.Vec2{X: 4, Y: 1}.Transform(c.ViewProjection())
	if !centre.Compare(math.Vec2{}, 1e-5) {
		t.Errorf("camera position projects to %+v, want origin", centre)
	}

	// the right edge of the view is aspect*zoom away
	edge := math.Vec2{X: 4 + 2, Y: 1}.Transform(c.ViewProjection())
	if !math.NearlyEqual(edge.X, 1, 1e-5) {
		t.Errorf("right edge projects to x=%f, want 1", edge.X)
	}

	// world +Y is up, Vulkan clip +Y is down
	top := math.Vec2{X: 4, Y: 2}.Transform(c.ViewProjection())
	if !math.NearlyEqual(top.Y, -1, 1e-5) {
		t.Errorf("top edge projects to y=%f, want -1", top.Y)
	}
}

func TestCamera2DViewIsInverseTranslation(t *testing.T) {
	c := NewCamera2D(1.0, 1.0)
	c.SetPosition(math.Vec2{X: -7, Y: 3})
	c.Update()
	view := c.View()
	if view.Data[12] != 7 || view.Data[13] != -3 {
		t.Errorf("view translation = (%f, %f), want (7, -3)", view.Data[12], view.Data[13])
	}
}

func TestCamera2DScreenToWorld(t *testing.T) {
	c := NewCamera2D(2.0, 1.0)
	c.Update()

	p, ok := c.ScreenToWorld(0, 0, 200, 100)
	if !ok {
		t.Fatal("ScreenToWorld failed")
	}
	if !p.Compare(math.Vec2{X: -2, Y: 1}, 1e-4) {
		t.Errorf("top left = %+v, want {-2 1}", p)
	}
	if _, ok := c.ScreenToWorld(0, 0, 0, 0); ok {
		t.Error("ScreenToWorld on an empty window should fail")
	}
}

func TestCamera2DIgnoresBadAspect(t *testing.T) {
	c := NewCamera2D(1.5, 1.0)
	c.SetAspectRatio(0)
	if c.AspectRatio() != 1.5 {
		t.Errorf("AspectRatio = %f, want 1.5", c.AspectRatio())
	}
}

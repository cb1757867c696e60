package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestRotate4(t *testing.T) {
	type spec struct {
		yaw, pitch, roll float32
		in               Vec3
		exp              Vec3
	}
	half := math32.Pi / 2
	specs := []spec{
		{0, 0, 0, XYZ(1, 2, 3), XYZ(1, 2, 3)},
		{half, 0, 0, XYZ(0, 0, 1), XYZ(1, 0, 0)},
		{0, half, 0, XYZ(0, 1, 0), XYZ(0, 0, 1)},
		{0, 0, half, XYZ(1, 0, 0), XYZ(0, 1, 0)},
	}

	for index, s := range specs {
		out := TransformDir(Rotate4(s.yaw, s.pitch, s.roll), s.in)
		if !out.ApproxEqual(s.exp, 1e-5) {
			t.Fatalf("[spec %d] expected rotated vector to be %v; got %v", index, s.exp, out)
		}
	}
}

func TestModel4(t *testing.T) {
	model := Model4(XYZ(1, 2, 3), XYZ(0, 0, 0), XYZ(2, 2, 2))

	out := TransformPoint(model, XYZ(1, 1, 1))
	exp := XYZ(3, 4, 5)
	if !out.ApproxEqual(exp, 1e-5) {
		t.Fatalf("expected transformed point to be %v; got %v", exp, out)
	}

	// Directions ignore the translation part
	out = TransformDir(model, XYZ(1, 0, 0))
	exp = XYZ(2, 0, 0)
	if !out.ApproxEqual(exp, 1e-5) {
		t.Fatalf("expected transformed direction to be %v; got %v", exp, out)
	}

	back := TransformPoint(model.Inv(), XYZ(3, 4, 5))
	exp = XYZ(1, 1, 1)
	if !back.ApproxEqual(exp, 1e-5) {
		t.Fatalf("expected inverse transform to yield %v; got %v", exp, back)
	}
}

func TestViewport4(t *testing.T) {
	vp := Viewport4(0, 0, XY(640, 480), 0.1, 100)

	type spec struct {
		ndc Vec3
		exp Vec3
	}
	specs := []spec{
		{XYZ(-1, -1, -1), XYZ(0, 0, 0.1)},
		{XYZ(1, 1, 1), XYZ(640, 480, 100)},
		{XYZ(0, 0, 0), XYZ(320, 240, 50.05)},
	}

	for index, s := range specs {
		out := TransformPoint(vp, s.ndc)
		if !out.ApproxEqual(s.exp, 1e-3) {
			t.Fatalf("[spec %d] expected viewport transform of %v to be %v; got %v", index, s.ndc, s.exp, out)
		}
	}
}

func TestVectorNormalize(t *testing.T) {
	v := XYZ(3, 0, 4).Normalize()
	if math32.Abs(v.Len()-1) > 1e-6 {
		t.Fatalf("expected normalized vector length to be 1; got %f", v.Len())
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", zero)
	}
}

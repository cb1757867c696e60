package geometry

import (
	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/types"
)

type Sphere struct {
	Center   types.Vec3
	Radius   float32
	Material material.Index
}

// Get the outward facing unit normal at a point on the sphere surface.
func (s *Sphere) Normal(p types.Vec3) types.Vec3 {
	return p.Sub(s.Center).Normalize()
}

// Intersect the sphere choosing the closest root in front of the ray origin.
func (s *Sphere) Intersect(ray Ray) (Hitpoint, bool) {
	m := ray.Origin.Sub(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * m.Dot(ray.Direction)
	c := m.Dot(m) - s.Radius*s.Radius

	// 4 (d.d) (r^2 - |m - (m.d^)d^|^2) loses less precision than b^2 - 4ac
	// for origins far away from the sphere.
	dirNorm := ray.Direction.Normalize()
	perp := m.Sub(dirNorm.Mul(m.Dot(dirNorm)))
	disc := 4 * a * (s.Radius*s.Radius - perp.Dot(perp))

	var t float32
	switch {
	case disc == 0:
		t = -0.5 * b / a
	case disc > 0:
		var q float32
		if b < 0 {
			q = -0.5 * (b - math32.Sqrt(disc))
		} else {
			q = -0.5 * (b + math32.Sqrt(disc))
		}
		t0 := q / a
		t1 := c / q

		switch {
		case t0 < 0 && t1 >= 0:
			t = t1
		case t1 < 0 && t0 >= 0:
			t = t0
		default:
			t = math32.Min(t0, t1)
		}
	default:
		return Hitpoint{}, false
	}

	if t < 0 || t != t {
		return Hitpoint{}, false
	}

	normal := s.Normal(ray.At(t))
	return newHitpoint(t, ray, normal, normal, s.Material), true
}

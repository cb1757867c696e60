package geometry

import (
	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/types"
)

// Determinants below this magnitude mean the ray runs parallel to the triangle.
const parallelEpsilon float32 = 1e-12

type Triangle struct {
	Vertices [3]types.Vec3
	Normals  [3]types.Vec3

	// Unit face normal following the right hand rule.
	Normal types.Vec3

	Material material.Index
}

// Create a triangle and precompute its geometric normal as
// normalize((v2 - v0) x (v1 - v0)).
func NewTriangle(vertices, normals [3]types.Vec3, mat material.Index) Triangle {
	return Triangle{
		Vertices: vertices,
		Normals:  normals,
		Normal:   vertices[2].Sub(vertices[0]).Cross(vertices[1].Sub(vertices[0])).Normalize(),
		Material: mat,
	}
}

// Get the triangle centroid.
func (tri *Triangle) Centroid() types.Vec3 {
	return tri.Vertices[0].Add(tri.Vertices[1]).Add(tri.Vertices[2]).Mul(1.0 / 3.0)
}

// Intersect the triangle using the Moller-Trumbore formulation. The shading
// normal is interpolated from the vertex normals.
func (tri *Triangle) Intersect(ray Ray) (Hitpoint, bool) {
	a := tri.Vertices[0]
	e1 := tri.Vertices[1].Sub(a)
	e2 := tri.Vertices[2].Sub(a)
	s := ray.Origin.Sub(a)
	q := ray.Direction.Cross(e2)
	r := s.Cross(e1)

	det := q.Dot(e1)
	if math32.Abs(det) < parallelEpsilon {
		return Hitpoint{}, false
	}

	invDet := 1 / det
	t := r.Dot(e2) * invDet
	v := q.Dot(s) * invDet
	w := r.Dot(ray.Direction) * invDet
	u := 1 - v - w

	if t < 0 || u < 0 || v < 0 || w < 0 {
		return Hitpoint{}, false
	}

	shadingNormal := tri.Normals[0].Mul(u).
		Add(tri.Normals[1].Mul(v)).
		Add(tri.Normals[2].Mul(w)).
		Normalize()
	if shadingNormal == (types.Vec3{}) {
		shadingNormal = tri.Normal
	}

	return newHitpoint(t, ray, tri.Normal, shadingNormal, tri.Material), true
}

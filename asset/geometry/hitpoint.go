package geometry

import (
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/types"
)

// Hit positions are moved this far along the surface normal so that rays
// spawned from them do not re-intersect the surface they start on.
const SelfIntersectionEpsilon float32 = 1e-4

// The result of a successful ray intersection.
type Hitpoint struct {
	// Distance along the ray.
	T float32

	// Hit position, offset towards the ray origin.
	Position types.Vec3

	// Shading normal facing the incoming ray.
	HitNormal types.Vec3

	// Hit position offset into the surface; transmitted rays start here.
	PositionForRefraction types.Vec3

	// True if the ray hit the outward facing side of the surface.
	OnFrontside bool

	Material material.Index
}

// Build a hitpoint. The geometric normal decides whether the front side was
// hit; on the back side both normals are flipped.
func newHitpoint(t float32, ray Ray, geometricNormal, shadingNormal types.Vec3, mat material.Index) Hitpoint {
	frontside := geometricNormal.Dot(ray.Direction) < 0
	if !frontside {
		geometricNormal = geometricNormal.Neg()
		shadingNormal = shadingNormal.Neg()
	}

	hitPos := ray.At(t)
	offset := geometricNormal.Mul(SelfIntersectionEpsilon)
	return Hitpoint{
		T:                     t,
		Position:              hitPos.Add(offset),
		HitNormal:             shadingNormal,
		PositionForRefraction: hitPos.Sub(offset),
		OnFrontside:           frontside,
		Material:              mat,
	}
}

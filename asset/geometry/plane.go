package geometry

import (
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/types"
)

// The plane of points p with Normal . p = Distance.
type Plane struct {
	Normal   types.Vec3
	Distance float32
	Material material.Index
}

func (p *Plane) Intersect(ray Ray) (Hitpoint, bool) {
	nDotDir := p.Normal.Dot(ray.Direction)
	if nDotDir == 0 {
		return Hitpoint{}, false
	}

	t := (p.Distance - p.Normal.Dot(ray.Origin)) / nDotDir
	if t < 0 {
		return Hitpoint{}, false
	}

	return newHitpoint(t, ray, p.Normal, p.Normal, p.Material), true
}

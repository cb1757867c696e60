package geometry

import "github.com/therdel/raytracer/types"

// A half-line starting at Origin. Secondary rays always carry a unit length
// Direction.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// Evaluate the ray equation origin + t * direction.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// A half-open [Start, End) range of indices into a flat array.
type Range struct {
	Start uint32
	End   uint32
}

// Get the number of items in the range.
func (r Range) Len() int {
	return int(r.End - r.Start)
}

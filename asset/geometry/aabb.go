package geometry

import (
	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/types"
)

// An axis aligned bounding box. Min <= Max holds componentwise; empty hulls
// are signaled by the constructors instead of by inverted bounds.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Compute the hull of a vertex list. Returns false if the list is empty.
func AABBFromVertices(vertices []types.Vec3) (AABB, bool) {
	if len(vertices) == 0 {
		return AABB{}, false
	}

	box := AABB{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		box.Min = types.MinVec3(box.Min, v)
		box.Max = types.MaxVec3(box.Max, v)
	}
	return box, true
}

// Compute the hull of the indexed triangles. Returns false if indices is empty.
func AABBFromTriangles(triangles []Triangle, indices []uint32) (AABB, bool) {
	if len(indices) == 0 {
		return AABB{}, false
	}

	box := AABB{Min: triangles[indices[0]].Vertices[0], Max: triangles[indices[0]].Vertices[0]}
	for _, idx := range indices {
		for _, v := range triangles[idx].Vertices {
			box.Min = types.MinVec3(box.Min, v)
			box.Max = types.MaxVec3(box.Max, v)
		}
	}
	return box, true
}

// Grow the box so it also encloses point p.
func (b AABB) Extend(p types.Vec3) AABB {
	return AABB{Min: types.MinVec3(b.Min, p), Max: types.MaxVec3(b.Max, p)}
}

// Get the box dimensions.
func (b AABB) Extent() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the total area of the six box faces.
func (b AABB) SurfaceArea() float32 {
	side := b.Extent()
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Check whether the box contains point p.
func (b AABB) Contains(p types.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Slab test. Returns the parametric entry and exit distances along the ray;
// ok is false if the ray misses the box or the box lies behind the origin.
func (b AABB) Intersect(ray Ray) (tmin, tmax float32, ok bool) {
	invDir := types.Vec3{1 / ray.Direction[0], 1 / ray.Direction[1], 1 / ray.Direction[2]}
	return b.IntersectInv(ray.Origin, invDir)
}

// Slab test using precomputed reciprocal ray direction components.
func (b AABB) IntersectInv(origin, invDir types.Vec3) (tmin, tmax float32, ok bool) {
	tmin = math32.Inf(-1)
	tmax = math32.Inf(1)
	for axis := 0; axis < 3; axis++ {
		t1 := (b.Min[axis] - origin[axis]) * invDir[axis]
		t2 := (b.Max[axis] - origin[axis]) * invDir[axis]

		// NaN: the ray runs parallel to this axis and starts on one of
		// its slab planes, so the axis does not constrain the interval.
		if t1 != t1 || t2 != t2 {
			continue
		}
		tmin = math32.Max(tmin, math32.Min(t1, t2))
		tmax = math32.Min(tmax, math32.Max(t1, t2))
	}

	if tmax < 0 || tmin > tmax {
		return tmin, tmax, false
	}
	return tmin, tmax, true
}

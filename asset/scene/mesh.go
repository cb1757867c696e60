package scene

import (
	"github.com/therdel/raytracer/asset/compiler/bvh"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/types"
)

// MeshIndex references a mesh in the scene mesh list.
type MeshIndex uint32

// A mesh owns a contiguous range of the scene mesh triangles and the BVH
// built over them.
type Mesh struct {
	Name      string
	Triangles geometry.Range
	Bvh       bvh.BVH
}

// The MeshInstance structure places a shared mesh inside the scene. All
// matrices are derived once from the placement and never change.
type MeshInstance struct {
	Mesh MeshIndex

	RotationScale        types.Mat4
	RotationScaleInverse types.Mat4
	Model                types.Mat4
	ModelInverse         types.Mat4

	// If set, replaces the material of every hit on this instance.
	MaterialOverride *material.Index
}

// Create a mesh instance. Orientation holds pitch, yaw and roll in radians.
func NewMeshInstance(mesh MeshIndex, position, orientation, scale types.Vec3, materialOverride *material.Index) MeshInstance {
	rotationScale := types.RotationScale4(orientation, scale)
	model := types.Model4(position, orientation, scale)

	return MeshInstance{
		Mesh:                 mesh,
		RotationScale:        rotationScale,
		RotationScaleInverse: rotationScale.Inv(),
		Model:                model,
		ModelInverse:         model.Inv(),
		MaterialOverride:     materialOverride,
	}
}

// Intersect a world space ray with the instance. The ray is mapped into mesh
// space, traced through the mesh BVH and the hit is mapped back; t is
// recomputed as the world space distance from the ray origin.
func (inst *MeshInstance) Intersect(sc *Scene, ray geometry.Ray) (geometry.Hitpoint, bool) {
	local := geometry.Ray{
		Origin:    types.TransformPoint(inst.ModelInverse, ray.Origin),
		Direction: types.TransformDir(inst.RotationScaleInverse, ray.Direction).Normalize(),
	}

	mesh := &sc.Meshes[inst.Mesh]
	hit, ok := mesh.Bvh.Intersect(sc.BvhNodes, sc.MeshTriangles, local)
	if !ok {
		return hit, false
	}

	hit.Position = types.TransformPoint(inst.Model, hit.Position)
	hit.HitNormal = types.TransformDir(inst.RotationScale, hit.HitNormal).Normalize()
	hit.PositionForRefraction = types.TransformPoint(inst.Model, hit.PositionForRefraction)
	hit.T = ray.Origin.Distance(hit.Position)

	if inst.MaterialOverride != nil {
		hit.Material = *inst.MaterialOverride
	}
	return hit, true
}

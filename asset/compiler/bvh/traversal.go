package bvh

import (
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/types"
)

// Find the closest triangle hit inside the BVH. Traversal uses an explicit
// node stack; subtrees whose box is missed, lies behind the ray origin or
// starts beyond the closest hit found so far are skipped.
func (b BVH) Intersect(nodes []Node, triangles []geometry.Triangle, ray geometry.Ray) (geometry.Hitpoint, bool) {
	var (
		closest geometry.Hitpoint
		found   bool
	)
	if b.Nodes.Len() == 0 {
		return closest, false
	}

	invDir := types.Vec3{1 / ray.Direction[0], 1 / ray.Direction[1], 1 / ray.Direction[2]}

	var storage [StackCapacity]uint32
	stack := append(storage[:0], b.Root())

	for len(stack) > 0 {
		node := &nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		tmin, _, ok := node.AABB.IntersectInv(ray.Origin, invDir)
		if !ok || (found && tmin > closest.T) {
			continue
		}

		if !node.Leaf {
			stack = append(stack, node.Right, node.Left)
			continue
		}

		for _, triIndex := range node.LeafTriangles() {
			hit, ok := triangles[triIndex].Intersect(ray)
			if ok && (!found || hit.T < closest.T) {
				closest = hit
				found = true
			}
		}
	}

	return closest, found
}

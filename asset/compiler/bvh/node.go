package bvh

import "github.com/therdel/raytracer/asset/geometry"

const (
	// Max number of triangles stored in a leaf.
	LeafCapacity = 5

	// Initial capacity of the traversal stack.
	StackCapacity = 32
)

// A BVH node. Inner nodes reference their children by absolute index into
// the shared node array; leaves reference up to LeafCapacity triangles by
// index into the shared triangle array.
type Node struct {
	AABB geometry.AABB
	Leaf bool

	Left  uint32
	Right uint32

	Count     uint8
	Triangles [LeafCapacity]uint32
}

// Get the triangle indices stored in a leaf.
func (n *Node) LeafTriangles() []uint32 {
	return n.Triangles[:n.Count]
}

// A BVH occupies a contiguous range of the shared node array. The root is
// the first node of the range.
type BVH struct {
	Nodes    geometry.Range
	MaxDepth int
}

// Get the index of the root node.
func (b BVH) Root() uint32 {
	return b.Nodes.Start
}

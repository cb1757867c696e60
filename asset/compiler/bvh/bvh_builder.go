package bvh

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/log"
	"github.com/therdel/raytracer/types"
)

// Number of bins the centroid range is split into along the split axis.
const binCount = 5

var (
	ErrInfiniteSplitCost = errors.New("bvh: all split candidates have infinite cost")
	ErrEmptySplit        = errors.New("bvh: split produced an empty child")
)

type childSlot uint8

const (
	noParent childSlot = iota
	leftChild
	rightChild
)

// A pending subtree. The parent node is patched with the index of the node
// built for this job.
type buildJob struct {
	indices []uint32
	parent  uint32
	slot    childSlot
	depth   int
}

type stats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type builder struct {
	logger log.Logger

	triangles []geometry.Triangle

	// Bvh nodes stored as a contiguous list
	nodes []Node

	jobs []buildJob

	// Stats
	stats stats
}

// Construct a BVH over the indexed triangles and append its nodes to the
// node list. Nodes reference each other and the triangles by absolute
// index so several BVHs can share one node list.
//
// Splits are chosen with a binned surface area heuristic:
// cost = area(left)/area(parent) * |left| + area(right)/area(parent) * |right|
// where left holds triangles whose centroid bin is below the split bin.
// Degenerate input that cannot be split is reported as ErrInfiniteSplitCost
// or ErrEmptySplit.
func Build(triangles []geometry.Triangle, indices []uint32, nodes *[]Node) (BVH, error) {
	b := &builder{
		logger:    log.New("bvh"),
		triangles: triangles,
		nodes:     *nodes,
	}

	start := time.Now()
	bvh := BVH{Nodes: geometry.Range{Start: uint32(len(b.nodes)), End: uint32(len(b.nodes))}}
	if len(indices) == 0 {
		return bvh, nil
	}

	// Work on a copy as partitioning reorders indices in place
	work := make([]uint32, len(indices))
	copy(work, indices)
	b.jobs = append(b.jobs, buildJob{indices: work, slot: noParent})

	for len(b.jobs) > 0 {
		job := b.jobs[len(b.jobs)-1]
		b.jobs = b.jobs[:len(b.jobs)-1]

		if err := b.process(job); err != nil {
			return bvh, err
		}
	}

	*nodes = b.nodes
	bvh.Nodes.End = uint32(len(b.nodes))
	bvh.MaxDepth = b.stats.maxDepth

	if b.stats.maxDepth >= StackCapacity {
		b.logger.Warningf("BVH depth %d exceeds the traversal stack capacity %d", b.stats.maxDepth, StackCapacity)
	}
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)
	return bvh, nil
}

// Build the node for a job and queue jobs for its children.
func (b *builder) process(job buildJob) error {
	if job.depth > b.stats.maxDepth {
		b.stats.maxDepth = job.depth
	}

	box, ok := geometry.AABBFromTriangles(b.triangles, job.indices)
	if !ok {
		return fmt.Errorf("%w at depth %d", ErrEmptySplit, job.depth)
	}

	nodeIndex := b.appendNode(Node{AABB: box}, job)

	// Do we have few enough items for a leaf?
	if len(job.indices) <= LeafCapacity {
		node := &b.nodes[nodeIndex]
		node.Leaf = true
		node.Count = uint8(copy(node.Triangles[:], job.indices))
		b.stats.leafs++
		return nil
	}

	bn, splitBin, err := b.selectSplit(job.indices, box)
	if err != nil {
		return fmt.Errorf("%w (%d triangles at depth %d)", err, len(job.indices), job.depth)
	}

	left, right := b.partition(job.indices, bn, splitBin)
	if len(left) == 0 || len(right) == 0 {
		return fmt.Errorf("%w (%d triangles at depth %d)", ErrEmptySplit, len(job.indices), job.depth)
	}

	// Push right first so the left subtree is built first
	b.jobs = append(b.jobs,
		buildJob{indices: right, parent: nodeIndex, slot: rightChild, depth: job.depth + 1},
		buildJob{indices: left, parent: nodeIndex, slot: leftChild, depth: job.depth + 1},
	)
	return nil
}

// Append node to the node list and link it to its parent.
func (b *builder) appendNode(node Node, job buildJob) uint32 {
	nodeIndex := uint32(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	switch job.slot {
	case leftChild:
		b.nodes[job.parent].Left = nodeIndex
	case rightChild:
		b.nodes[job.parent].Right = nodeIndex
	}
	return nodeIndex
}

// A binner maps triangle centroids to fractional bin coordinates along an axis.
type binner struct {
	axis     int
	axisMin  float32
	binWidth float32
}

func (bn binner) bin(tri *geometry.Triangle) float32 {
	if bn.binWidth == 0 {
		return 0
	}
	return (tri.Centroid()[bn.axis] - bn.axisMin) / bn.binWidth
}

// Evaluate split candidates along the axis of largest centroid extent and
// return the cheapest split bin.
func (b *builder) selectSplit(indices []uint32, box geometry.AABB) (bn binner, splitBin int, err error) {
	centroids := geometry.AABB{Min: b.triangles[indices[0]].Centroid(), Max: b.triangles[indices[0]].Centroid()}
	for _, idx := range indices[1:] {
		centroids = centroids.Extend(b.triangles[idx].Centroid())
	}

	extent := centroids.Extent()
	if extent[1] > extent[bn.axis] {
		bn.axis = 1
	}
	if extent[2] > extent[bn.axis] {
		bn.axis = 2
	}
	bn.axisMin = centroids.Min[bn.axis]
	bn.binWidth = extent[bn.axis] / binCount

	parentArea := box.SurfaceArea()
	bestCost := math32.Inf(1)
	splitBin = -1

	// Bin 0 would put every triangle on the right; it is never a candidate.
	for candidate := 1; candidate < binCount; candidate++ {
		cost := b.splitCost(indices, bn, float32(candidate), parentArea)
		if cost < bestCost {
			bestCost = cost
			splitBin = candidate
		}
	}

	if splitBin < 0 {
		return bn, 0, ErrInfiniteSplitCost
	}
	return bn, splitBin, nil
}

// Calculate the surface area heuristic cost of splitting at splitBin. Left
// is exclusive and right inclusive of the split bin. Returns +Inf for costs
// that are not finite.
func (b *builder) splitCost(indices []uint32, bn binner, splitBin, parentArea float32) float32 {
	var (
		leftCount, rightCount int
		leftBox, rightBox     geometry.AABB
	)

	for _, idx := range indices {
		tri := &b.triangles[idx]
		triBox, _ := geometry.AABBFromVertices(tri.Vertices[:])

		if bn.bin(tri) < splitBin {
			if leftCount == 0 {
				leftBox = triBox
			}
			leftBox = unionAABB(leftBox, triBox)
			leftCount++
		} else {
			if rightCount == 0 {
				rightBox = triBox
			}
			rightBox = unionAABB(rightBox, triBox)
			rightCount++
		}
	}

	var cost float32
	if leftCount > 0 {
		cost += leftBox.SurfaceArea() / parentArea * float32(leftCount)
	}
	if rightCount > 0 {
		cost += rightBox.SurfaceArea() / parentArea * float32(rightCount)
	}

	if math32.IsNaN(cost) || math32.IsInf(cost, 0) {
		return math32.Inf(1)
	}
	return cost
}

// Reorder indices in place so that triangles left of the split bin come
// first and return both halves.
func (b *builder) partition(indices []uint32, bn binner, splitBin int) (left, right []uint32) {
	split := float32(splitBin)
	k := 0
	for i, idx := range indices {
		if bn.bin(&b.triangles[idx]) < split {
			indices[i], indices[k] = indices[k], indices[i]
			k++
		}
	}
	return indices[:k], indices[k:]
}

func unionAABB(a, b geometry.AABB) geometry.AABB {
	return geometry.AABB{Min: types.MinVec3(a.Min, b.Min), Max: types.MaxVec3(a.Max, b.Max)}
}

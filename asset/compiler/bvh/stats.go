package bvh

import "gonum.org/v1/gonum/stat"

// Structural statistics for a built BVH.
type Stats struct {
	Nodes     int
	Leafs     int
	Triangles int
	MaxDepth  int

	// Mean and standard deviation of the number of triangles per leaf.
	LeafSizeMean   float64
	LeafSizeStdDev float64
}

// Collect statistics for the BVH nodes.
func (b BVH) Stats(nodes []Node) Stats {
	st := Stats{
		Nodes:    b.Nodes.Len(),
		MaxDepth: b.MaxDepth,
	}

	leafSizes := make([]float64, 0)
	for _, node := range nodes[b.Nodes.Start:b.Nodes.End] {
		if !node.Leaf {
			continue
		}
		st.Leafs++
		st.Triangles += int(node.Count)
		leafSizes = append(leafSizes, float64(node.Count))
	}

	switch len(leafSizes) {
	case 0:
	case 1:
		st.LeafSizeMean = leafSizes[0]
	default:
		st.LeafSizeMean, st.LeafSizeStdDev = stat.MeanStdDev(leafSizes, nil)
	}
	return st
}

package scene

import (
	"sort"

	"github.com/df07/voxel-timelapse/pkg/core"
)

// bvhNode is a node in the bounding volume hierarchy over voxel indices
type bvhNode struct {
	bounds core.AABB
	left   *bvhNode
	right  *bvhNode
	voxels []int // Leaf only
}

// bvh accelerates ray queries against a fixed voxel slice
type bvh struct {
	root   *bvhNode
	voxels []Voxel
}

// Leaf threshold: if we have this many or fewer voxels, store them in a leaf node
const leafThreshold = 8

// voxelHit is the nearest voxel hit found by a traversal
type voxelHit struct {
	t     float64
	axis  int
	index int
}

// newBVH builds a hierarchy over the given indices into voxels
func newBVH(voxels []Voxel, indices []int) *bvh {
	b := &bvh{voxels: voxels}
	if len(indices) == 0 {
		return b
	}
	own := make([]int, len(indices))
	copy(own, indices)
	b.root = b.build(own)
	return b
}

// build uses a median split along the longest axis, which suits regular grids
func (b *bvh) build(indices []int) *bvhNode {
	bounds := b.voxels[indices[0]].Bounds()
	for _, i := range indices[1:] {
		bounds = bounds.Union(b.voxels[i].Bounds())
	}

	if len(indices) <= leafThreshold {
		return &bvhNode{bounds: bounds, voxels: indices}
	}

	axis := bounds.LongestAxis()
	sort.Slice(indices, func(i, j int) bool {
		ci := b.voxels[indices[i]].Center().Axis(axis)
		cj := b.voxels[indices[j]].Center().Axis(axis)
		if ci != cj {
			return ci < cj
		}
		return indices[i] < indices[j]
	})

	mid := len(indices) / 2
	return &bvhNode{
		bounds: bounds,
		left:   b.build(indices[:mid]),
		right:  b.build(indices[mid:]),
	}
}

// closest finds the nearest voxel entered at t in (tMin, tMax]. Equal distances
// resolve to the lower voxel index so the answer does not depend on traversal order.
func (b *bvh) closest(ray core.Ray, tMin, tMax float64) (voxelHit, bool) {
	best := voxelHit{t: tMax, index: -1}
	if b.root == nil {
		return best, false
	}
	b.closestNode(b.root, ray, tMin, &best)
	return best, best.index >= 0
}

func (b *bvh) closestNode(node *bvhNode, ray core.Ray, tMin float64, best *voxelHit) {
	if !node.bounds.Hit(ray, tMin, best.t) {
		return
	}

	if node.voxels != nil {
		for _, i := range node.voxels {
			tNear, _, axis, ok := b.voxels[i].Bounds().Slabs(ray, tMin, best.t)
			// axis < 0 means the origin is inside the cube or the entry lies before tMin
			if !ok || axis < 0 {
				continue
			}
			if tNear < best.t || best.index < 0 || (tNear == best.t && i < best.index) {
				*best = voxelHit{t: tNear, axis: axis, index: i}
			}
		}
		return
	}

	b.closestNode(node.left, ray, tMin, best)
	b.closestNode(node.right, ray, tMin, best)
}

// any reports whether some voxel is entered at t in (tMin, tMax)
func (b *bvh) any(ray core.Ray, tMin, tMax float64) bool {
	if b.root == nil {
		return false
	}
	return b.anyNode(b.root, ray, tMin, tMax)
}

func (b *bvh) anyNode(node *bvhNode, ray core.Ray, tMin, tMax float64) bool {
	if !node.bounds.Hit(ray, tMin, tMax) {
		return false
	}

	if node.voxels != nil {
		for _, i := range node.voxels {
			tNear, _, axis, ok := b.voxels[i].Bounds().Slabs(ray, tMin, tMax)
			if ok && axis >= 0 && tNear < tMax {
				return true
			}
		}
		return false
	}

	return b.anyNode(node.left, ray, tMin, tMax) || b.anyNode(node.right, ray, tMin, tMax)
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
	voxels     int
}

func (b *bvh) stats() bvhStats {
	var s bvhStats
	if b.root != nil {
		collectStats(b.root, 0, &s)
	}
	return s
}

func collectStats(node *bvhNode, depth int, s *bvhStats) {
	s.totalNodes++
	s.maxDepth = max(s.maxDepth, depth)

	if node.voxels != nil {
		s.leafNodes++
		s.voxels += len(node.voxels)
		return
	}
	collectStats(node.left, depth+1, s)
	collectStats(node.right, depth+1, s)
}

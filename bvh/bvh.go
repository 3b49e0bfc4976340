package bvh

import "github.com/chewxy/math32"

// The size of the fixed traversal stack. The builder rejects trees that are
// deeper than this so traversal never needs to allocate.
const maxStackDepth = 256

// Bvh nodes are stored in a contiguous list with the root at index 0. Besides
// the node bbox, each node carries two multipurpose int32 values whose meaning
// depends on the node type:
//
// - For cluster nodes both values are > 0 and point to the L/R child nodes.
// - For leaf nodes LData is <= 0 and holds the negated payload index.
type Node struct {
	BBox AABB

	LData int32
	RData int32
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Set payload index.
func (n *Node) SetPayloadIndex(index uint32) {
	n.LData = -int32(index)
	n.RData = 0
}

// Get payload index.
func (n *Node) PayloadIndex() uint32 {
	return uint32(-n.LData)
}

// Returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.LData <= 0
}

// An immutable bounding volume hierarchy over a list of payloads. Once built,
// a BVH can be safely shared between goroutines.
type BVH[T Intersectable] struct {
	payloads []T
	nodes    []Node
	stats    Stats
}

// Get the number of payloads stored in the BVH.
func (b *BVH[T]) Len() int {
	return len(b.payloads)
}

// Get the payload at the specified index.
func (b *BVH[T]) Payload(index int) *T {
	return &b.payloads[index]
}

// Get the flattened node list. The returned slice must not be modified.
func (b *BVH[T]) Nodes() []Node {
	return b.nodes
}

// Get the root bounding box.
func (b *BVH[T]) BBox() AABB {
	return b.nodes[0].BBox
}

// Get build statistics.
func (b *BVH[T]) Stats() Stats {
	return b.stats
}

// Find the nearest payload intersected by the ray.
//
// Traversal uses a fixed-size stack and always descends into the nearest of
// two intersected children first; the farther child is pushed to the stack
// together with its entry distance. Once a hit is found, every box that
// starts beyond it is pruned.
func (b *BVH[T]) Intersect(ray *Ray) (hit Hit, payload *T, found bool) {
	bestDist := math32.Inf(1)
	if _, ok := b.nodes[0].BBox.Intersect(ray, bestDist); !ok {
		return hit, nil, false
	}

	var (
		stack     [maxStackDepth]int32
		stackDist [maxStackDepth]float32
		sp        int
	)

	nodeIndex := int32(0)
	for {
		node := &b.nodes[nodeIndex]
		if node.IsLeaf() {
			payloadIndex := node.PayloadIndex()
			if candidate, ok := b.payloads[payloadIndex].Intersect(ray, bestDist); ok && candidate.Distance < bestDist {
				bestDist = candidate.Distance
				hit = candidate
				payload = &b.payloads[payloadIndex]
				found = true
			}
		} else {
			left, right := node.LData, node.RData
			lDist, lHit := b.nodes[left].BBox.Intersect(ray, bestDist)
			rDist, rHit := b.nodes[right].BBox.Intersect(ray, bestDist)

			switch {
			case lHit && rHit:
				if rDist < lDist {
					left, right = right, left
					lDist, rDist = rDist, lDist
				}
				stack[sp] = right
				stackDist[sp] = rDist
				sp++
				nodeIndex = left
				continue
			case lHit:
				nodeIndex = left
				continue
			case rHit:
				nodeIndex = right
				continue
			}
		}

		// Pop the next node skipping any that start past the current best hit
		nodeIndex = -1
		for sp > 0 {
			sp--
			if stackDist[sp] <= bestDist {
				nodeIndex = stack[sp]
				break
			}
		}
		if nodeIndex == -1 {
			break
		}
	}

	return hit, payload, found
}

// Check whether any payload intersects the ray closer than maxDist. Unlike
// Intersect, this query returns as soon as any hit is found.
func (b *BVH[T]) Occluded(ray *Ray, maxDist float32) bool {
	if _, ok := b.nodes[0].BBox.Intersect(ray, maxDist); !ok {
		return false
	}

	var (
		stack [maxStackDepth]int32
		sp    int
	)

	nodeIndex := int32(0)
	for {
		node := &b.nodes[nodeIndex]
		if node.IsLeaf() {
			if _, ok := b.payloads[node.PayloadIndex()].Intersect(ray, maxDist); ok {
				return true
			}
		} else {
			_, lHit := b.nodes[node.LData].BBox.Intersect(ray, maxDist)
			_, rHit := b.nodes[node.RData].BBox.Intersect(ray, maxDist)

			switch {
			case lHit && rHit:
				stack[sp] = node.RData
				sp++
				nodeIndex = node.LData
				continue
			case lHit:
				nodeIndex = node.LData
				continue
			case rHit:
				nodeIndex = node.RData
				continue
			}
		}

		if sp == 0 {
			return false
		}
		sp--
		nodeIndex = stack[sp]
	}
}

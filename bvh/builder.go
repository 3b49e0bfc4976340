package bvh

import (
	"math"
	"sort"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/chewxy/math32"
)

const (
	// The default cluster reduction stopping threshold. Partitions with
	// fewer items than this are clustered directly. Higher values produce
	// better trees at the expense of build time.
	DefaultDelta = 10

	// The default exponent tuning value for the cluster count reduction function.
	DefaultEpsilon float32 = 0.01

	// The number of top-level recursion levels whose branches are built
	// in parallel.
	DefaultParallelDepth = 2
)

// Options for tuning the BVH builder.
type Options struct {
	// Cluster reduction stopping threshold (DELTA).
	Delta int

	// Cluster count reduction function exponent tuning (ε).
	Epsilon float32

	// Number of recursion levels to fork onto separate goroutines.
	ParallelDepth int
}

// Get the default builder options.
func DefaultOptions() Options {
	return Options{
		Delta:         DefaultDelta,
		Epsilon:       DefaultEpsilon,
		ParallelDepth: DefaultParallelDepth,
	}
}

// An item to be partitioned by the BVH builder.
type Item[T Intersectable] struct {
	BBox    AABB
	Payload T
}

// A node of the intermediate tree produced by agglomerative clustering.
// Leaves have no children and point to an item index.
type buildNode struct {
	bbox        AABB
	left, right *buildNode
	item        int
}

func newCluster(left, right *buildNode) *buildNode {
	return &buildNode{
		bbox:  Combine(left.bbox, right.bbox),
		left:  left,
		right: right,
		item:  -1,
	}
}

type mortonLeaf struct {
	node *buildNode
	code uint64
}

type builder struct {
	opts Options

	// Morton code bits per axis.
	bits uint

	// The ccrf constant: Delta^(0.5-ε) / 2
	ccrfScaler float32
}

// Construct a BVH from a list of items using approximate agglomerative
// clustering (AAC).
//
// The builder sorts items by the morton code of their bbox centers and
// recursively partitions them by successive morton code bits. Partitions
// with fewer than Delta items are greedily clustered by merging the pair of
// clusters whose combined bbox has the smallest surface area. On the way back
// up, the clusters of each partition pair are merged and reduced again using
// the cluster count reduction function until a single root remains.
func Build[T Intersectable](items []Item[T], opts Options) (*BVH[T], error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if opts.Delta < 2 {
		return nil, ErrInvalidOptions
	}

	start := time.Now()
	logger := log.New("bvh builder")

	b := &builder{
		opts:       opts,
		bits:       mortonBitsFor(len(items)),
		ccrfScaler: math32.Pow(float32(opts.Delta), 0.5-opts.Epsilon) / 2.0,
	}
	if b.bits > maxMortonBits {
		return nil, ErrTooManyItems
	}

	leaves, err := sortedLeaves(b.bits, items)
	if err != nil {
		return nil, err
	}

	clusters := b.combineClusters(b.buildTree(leaves, 0), 1)
	if len(clusters) == 0 {
		return nil, ErrNoClusters
	}

	payloads := make([]T, len(items))
	for index, item := range items {
		payloads[index] = item.Payload
	}

	f := &flattener{nodes: make([]Node, 0, 2*len(items)-1)}
	f.flatten(clusters[0], 1)
	if f.maxDepth > maxStackDepth {
		return nil, ErrTreeTooDeep
	}

	tree := &BVH[T]{
		payloads: payloads,
		nodes:    f.nodes,
		stats: Stats{
			Items:     len(items),
			Nodes:     len(f.nodes),
			Leaves:    f.leaves,
			MaxDepth:  f.maxDepth,
			Bits:      b.bits,
			BuildTime: time.Since(start),
		},
	}

	logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		tree.stats.BuildTime.Nanoseconds()/1e6,
		tree.stats.MaxDepth, tree.stats.Nodes, tree.stats.Leaves,
	)
	return tree, nil
}

// Wrap each item in a leaf and sort leaves by the morton code of their
// bbox centers.
func sortedLeaves[T Intersectable](bits uint, items []Item[T]) ([]mortonLeaf, error) {
	// Translate centers so all coordinates are non-negative and scale them
	// so that the largest coordinate fills the available bits.
	offset := float32(math.MaxFloat32)
	for _, item := range items {
		if !item.BBox.IsValid() {
			return nil, ErrInvalidBounds
		}
		offset = math32.Min(offset, item.BBox.Center.MinComponent())
	}

	var extent float32
	for _, item := range items {
		extent = math32.Max(extent, item.BBox.Center.MaxComponent()-offset)
	}

	capacity := float32(uint32(1) << bits)
	var scale float32
	if extent > 0 {
		scale = capacity / extent
	}

	quantize := func(v float32) uint16 {
		q := math32.Floor((v - offset) * scale)
		if q >= capacity {
			q = capacity - 1
		}
		if !(q > 0) {
			return 0
		}
		return uint16(q)
	}

	leaves := make([]mortonLeaf, len(items))
	for index, item := range items {
		c := item.BBox.Center
		leaves[index] = mortonLeaf{
			node: &buildNode{bbox: item.BBox, item: index},
			code: MortonCode(bits, quantize(c[0]), quantize(c[1]), quantize(c[2])),
		}
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].code < leaves[j].code
	})

	return leaves, nil
}

// Recursively partition the sorted leaves and return the reduced set of
// clusters for this partition.
func (b *builder) buildTree(leaves []mortonLeaf, depth uint) []*buildNode {
	numLeaves := len(leaves)
	if numLeaves < b.opts.Delta {
		clusters := make([]*buildNode, numLeaves)
		for index, leaf := range leaves {
			clusters[index] = leaf.node
		}
		return b.combineClusters(clusters, b.ccrf(b.opts.Delta))
	}

	var lhs, rhs []mortonLeaf
	if depth < b.bits {
		lhs, rhs = partitionByBit(leaves, depth)
	} else {
		mid := numLeaves / 2
		lhs, rhs = leaves[:mid], leaves[mid:]
	}

	var lClusters, rClusters []*buildNode
	if int(depth) < b.opts.ParallelDepth {
		doneChan := make(chan struct{})
		go func() {
			lClusters = b.buildTree(lhs, depth+1)
			close(doneChan)
		}()
		rClusters = b.buildTree(rhs, depth+1)
		<-doneChan
	} else {
		lClusters = b.buildTree(lhs, depth+1)
		rClusters = b.buildTree(rhs, depth+1)
	}

	clusters := make([]*buildNode, 0, len(lClusters)+len(rClusters))
	clusters = append(clusters, lClusters...)
	clusters = append(clusters, rClusters...)
	return b.combineClusters(clusters, b.ccrf(numLeaves))
}

// Split a sorted leaf list at the point where the given morton code bit
// flips from 0 to 1. Since the list is sorted, the split point is located
// using binary search. If all leaves share the same bit value one of the
// returned partitions is empty.
func partitionByBit(leaves []mortonLeaf, bit uint) (lhs, rhs []mortonLeaf) {
	switch {
	case len(leaves) == 0:
		return nil, nil
	case mortonBit(leaves[0].code, bit):
		return nil, leaves
	case !mortonBit(leaves[len(leaves)-1].code, bit):
		return leaves, nil
	}

	// Invariant: bit is clear at max0 and set at min1
	max0, min1 := 0, len(leaves)-1
	for min1-max0 > 1 {
		mid := (min1 + max0) / 2
		if mortonBit(leaves[mid].code, bit) {
			min1 = mid
		} else {
			max0 = mid
		}
	}

	return leaves[:min1], leaves[min1:]
}

// The cluster count reduction function: ceil(c * x^(0.5-ε)).
func (b *builder) ccrf(x int) int {
	return int(math32.Ceil(b.ccrfScaler * math32.Pow(float32(x), 0.5-b.opts.Epsilon)))
}

// Greedily merge clusters until at most n remain. Each step merges the pair
// whose combined bbox has the smallest surface area; ties are resolved in
// favor of the first pair in index order.
//
// A table with the index of the closest cluster for each cluster is
// maintained so each step only needs to rescan the clusters whose closest
// match was consumed by the merge.
func (b *builder) combineClusters(clusters []*buildNode, n int) []*buildNode {
	if len(clusters) <= n {
		return clusters
	}

	closest := make([]int, len(clusters))
	for index := range clusters {
		closest[index] = findBestMatch(clusters, index)
	}

	for len(clusters) > n {
		left, right := 0, closest[0]
		bestCost := mergeCost(clusters[0], clusters[right])
		for index := 1; index < len(clusters); index++ {
			if cost := mergeCost(clusters[index], clusters[closest[index]]); cost < bestCost {
				bestCost = cost
				left, right = index, closest[index]
			}
		}
		if right < left {
			left, right = right, left
		}

		merged := newCluster(clusters[left], clusters[right])

		// Remove the higher index first so the lower index stays valid
		clusters = append(clusters[:right], clusters[right+1:]...)
		clusters = append(clusters[:left], clusters[left+1:]...)
		closest = append(closest[:right], closest[right+1:]...)
		closest = append(closest[:left], closest[left+1:]...)

		clusters = append(clusters, merged)
		closest = append(closest, findBestMatch(clusters, len(clusters)-1))

		// Rescan clusters that pointed to a merged cluster and shift
		// the indices of the ones that pointed past the removed slots.
		for index := 0; index < len(clusters)-1; index++ {
			switch match := closest[index]; {
			case match == left || match == right:
				closest[index] = findBestMatch(clusters, index)
			case match > right:
				closest[index] -= 2
			case match > left:
				closest[index]--
			}
		}
	}

	return clusters
}

// Find the index of the cluster that yields the smallest combined bbox
// when merged with the cluster at the given index.
func findBestMatch(clusters []*buildNode, index int) int {
	bestMatch := -1
	var bestCost float32
	for other := range clusters {
		if other == index {
			continue
		}

		cost := mergeCost(clusters[index], clusters[other])
		if bestMatch == -1 || cost < bestCost {
			bestCost = cost
			bestMatch = other
		}
	}

	if bestMatch == -1 {
		return index
	}
	return bestMatch
}

// The cost of merging two clusters is the surface area of their combined bbox.
func mergeCost(a, b *buildNode) float32 {
	return Combine(a.bbox, b.bbox).SurfaceArea()
}

// Converts the clustered tree into a contiguous node list in depth-first
// order so that the root is stored at index 0.
type flattener struct {
	nodes    []Node
	leaves   int
	maxDepth int
}

func (f *flattener) flatten(n *buildNode, depth int) int32 {
	if depth > f.maxDepth {
		f.maxDepth = depth
	}

	nodeIndex := int32(len(f.nodes))
	f.nodes = append(f.nodes, Node{BBox: n.bbox})

	if n.left == nil {
		f.nodes[nodeIndex].SetPayloadIndex(uint32(n.item))
		f.leaves++
		return nodeIndex
	}

	leftIndex := f.flatten(n.left, depth+1)
	rightIndex := f.flatten(n.right, depth+1)
	f.nodes[nodeIndex].SetChildNodes(uint32(leftIndex), uint32(rightIndex))
	return nodeIndex
}

package tracer

import (
	"math/rand"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/types"
)

// A unit of work that is processed by a worker. It describes a rectangular
// pixel region and the stratified sample pattern used for generating the
// sensor and lens offsets of each pass over the region.
type RenderRequest struct {
	// The camera epoch this request was generated for.
	Epoch uint64

	// The region corners (inclusive).
	TopLeft     [2]uint32
	BottomRight [2]uint32

	// Only every Stride-th pixel along each axis is traced.
	Stride uint32

	// Sample pattern dimensions. Each request results in PatternM x
	// PatternN passes over the region.
	PatternM uint32
	PatternN uint32

	// A random seed for the sample pattern.
	Seed uint32
}

// Get an iterator over the pixels covered by the request.
func (r *RenderRequest) Pixels() PixelIter {
	stride := r.Stride
	if stride == 0 {
		stride = 1
	}
	return PixelIter{
		minX:   r.TopLeft[0],
		maxX:   r.BottomRight[0],
		maxY:   r.BottomRight[1],
		stride: stride,
		x:      r.TopLeft[0],
		y:      r.TopLeft[1],
	}
}

// Get the number of pixels covered by the request.
func (r *RenderRequest) NumPixels() int {
	if r.BottomRight[0] < r.TopLeft[0] || r.BottomRight[1] < r.TopLeft[1] {
		return 0
	}
	stride := r.Stride
	if stride == 0 {
		stride = 1
	}
	cols := (r.BottomRight[0]-r.TopLeft[0])/stride + 1
	rows := (r.BottomRight[1]-r.TopLeft[1])/stride + 1
	return int(cols * rows)
}

// Iterates the pixels of a request region in row-major order.
type PixelIter struct {
	minX, maxX uint32
	maxY       uint32
	stride     uint32
	x, y       uint32
}

// Get the next pixel. The last return value is false once all pixels have
// been visited.
func (it *PixelIter) Next() (x, y uint32, ok bool) {
	if it.y > it.maxY || it.x > it.maxX {
		return 0, 0, false
	}

	x, y = it.x, it.y

	// Compare against the remaining distance so we never overflow near the
	// top of the uint32 range.
	if it.maxX-it.x >= it.stride {
		it.x += it.stride
	} else {
		it.x = it.minX
		if it.maxY-it.y >= it.stride {
			it.y += it.stride
		} else {
			it.y = it.maxY + 1
			if it.y == 0 {
				it.x = it.maxX + 1
			}
		}
	}
	return x, y, true
}

// A traced sample for a single pixel.
type Sample struct {
	X, Y   uint32
	Colour types.Colour
}

// The samples produced by one pass of a request sample pattern.
type RenderResult struct {
	Epoch   uint64
	Samples []Sample
}

// The Integrator interface is implemented by objects that estimate the
// radiance arriving along a ray. Implementations must be safe for
// concurrent use; all per-goroutine state is carried by the supplied random
// number generator.
type Integrator interface {
	Radiance(ray *bvh.Ray, rng *rand.Rand) types.Colour
}

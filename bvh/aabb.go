package bvh

import (
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// An axis-aligned bounding box. The box center is cached as it is used for
// computing morton codes.
type AABB struct {
	Min    types.Vec3
	Max    types.Vec3
	Center types.Vec3
}

// Create a new AABB from its min and max corners.
func NewAABB(min, max types.Vec3) AABB {
	return AABB{
		Min:    min,
		Max:    max,
		Center: min.Add(max).Mul(0.5),
	}
}

// Combine two boxes into the smallest box that contains both of them.
func Combine(a, b AABB) AABB {
	return NewAABB(types.MinVec3(a.Min, b.Min), types.MaxVec3(a.Max, b.Max))
}

// Get the surface area of the box.
func (a AABB) SurfaceArea() float32 {
	side := a.Max.Sub(a.Min)
	return 2.0 * (side[0]*side[1] + side[1]*side[2] + side[2]*side[0])
}

// Returns true if b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] < a.Min[axis] || b.Max[axis] > a.Max[axis] {
			return false
		}
	}
	return true
}

// Returns true if all box coordinates are finite and min <= max on every axis.
func (a AABB) IsValid() bool {
	if !a.Min.IsFinite() || !a.Max.IsFinite() {
		return false
	}
	return a.Min[0] <= a.Max[0] && a.Min[1] <= a.Max[1] && a.Min[2] <= a.Max[2]
}

// Test the box against a ray using the slab method. It returns the distance
// along the ray where it enters the box (clamped to 0 if the ray origin is
// inside the box). Boxes that are missed, lie behind the ray origin or start
// beyond maxDist are rejected.
//
// A ray parallel to a slab whose origin lies exactly on one of the slab
// planes yields 0*Inf = NaN for that plane; such values do not constrain the
// interval so the ray is treated as lying inside the slab.
func (a AABB) Intersect(ray *Ray, maxDist float32) (float32, bool) {
	tNear, tFar := math32.Inf(-1), math32.Inf(1)
	for axis := 0; axis < 3; axis++ {
		t0 := (a.Min[axis] - ray.Origin[axis]) * ray.InvDir[axis]
		t1 := (a.Max[axis] - ray.Origin[axis]) * ray.InvDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}

		// NaN comparisons are always false so NaN bounds are skipped
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
	}

	if tFar < 0 || tNear > tFar || tNear > maxDist {
		return 0, false
	}

	return math32.Max(tNear, 0), true
}

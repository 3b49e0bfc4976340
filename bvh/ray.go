package bvh

import "github.com/achilleasa/lumen/types"

// A ray with a precomputed reciprocal direction for slab tests.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	InvDir types.Vec3
}

// Create a ray. The direction is expected to be normalized.
func NewRay(origin, dir types.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		InvDir: dir.Inv(),
	}
}

// Get the point at distance t along the ray.
func (r *Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// The nearest intersection between a ray and a payload.
type Hit struct {
	Distance float32
	Point    types.Vec3
	Normal   types.Vec3
}

// The Intersectable interface is implemented by all payloads that can be
// stored in a BVH.
type Intersectable interface {
	// Intersect the payload with a ray. Implementations must only report
	// hits that are closer than maxDist.
	Intersect(ray *Ray, maxDist float32) (Hit, bool)
}

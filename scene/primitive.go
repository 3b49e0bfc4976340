package scene

import (
	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/sampling"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Hits closer than this are ignored to avoid self-intersections of rays
// leaving a surface.
const hitEpsilon float32 = 1e-4

type PrimitiveType uint8

const (
	SpherePrimitive PrimitiveType = iota
	TrianglePrimitive
)

// Defines a scene primitive. The Type field selects which of the remaining
// fields are meaningful.
type Primitive struct {
	Type PrimitiveType

	// Sphere center and radius.
	Origin types.Vec3
	Radius float32

	// Triangle vertices (clockwise) and the geometric normal.
	Vertices [3]types.Vec3
	Normal   types.Vec3
}

// Create new sphere primitive.
func NewSphere(origin types.Vec3, radius float32) Primitive {
	return Primitive{
		Type:   SpherePrimitive,
		Origin: origin,
		Radius: radius,
	}
}

// Create new triangle primitive. The normal is calculated from the vertex
// winding; zero-area triangles end up with a zero normal and are reported
// as degenerate.
func NewTriangle(vertices [3]types.Vec3) Primitive {
	e1 := vertices[1].Sub(vertices[0])
	e2 := vertices[2].Sub(vertices[0])
	return Primitive{
		Type:     TrianglePrimitive,
		Vertices: vertices,
		Normal:   e1.Cross(e2).Normalize(),
	}
}

// Returns true if the primitive cannot produce a meaningful intersection.
func (p *Primitive) IsDegenerate() bool {
	switch p.Type {
	case SpherePrimitive:
		return !p.Origin.IsFinite() || !(p.Radius > 0) || math32.IsInf(p.Radius, 0)
	case TrianglePrimitive:
		for _, v := range p.Vertices {
			if !v.IsFinite() {
				return true
			}
		}
		return !p.Normal.IsFinite() || p.Normal.LenSq() < 0.5
	}
	return true
}

// Get the primitive bounding box.
func (p *Primitive) BBox() bvh.AABB {
	if p.Type == SpherePrimitive {
		r := types.XYZ(p.Radius, p.Radius, p.Radius)
		return bvh.NewAABB(p.Origin.Sub(r), p.Origin.Add(r))
	}

	min := types.MinVec3(p.Vertices[0], types.MinVec3(p.Vertices[1], p.Vertices[2]))
	max := types.MaxVec3(p.Vertices[0], types.MaxVec3(p.Vertices[1], p.Vertices[2]))
	return bvh.NewAABB(min, max)
}

// Intersect the primitive with a ray. Only hits closer than maxDist are
// reported.
func (p *Primitive) Intersect(ray *bvh.Ray, maxDist float32) (bvh.Hit, bool) {
	switch p.Type {
	case SpherePrimitive:
		return p.intersectSphere(ray, maxDist)
	case TrianglePrimitive:
		return p.intersectTriangle(ray, maxDist)
	}
	return bvh.Hit{}, false
}

func (p *Primitive) intersectSphere(ray *bvh.Ray, maxDist float32) (bvh.Hit, bool) {
	oc := ray.Origin.Sub(p.Origin)
	b := ray.Dir.Dot(oc)
	disc := b*b - oc.Dot(oc) + p.Radius*p.Radius
	if !(disc >= 0) {
		return bvh.Hit{}, false
	}

	sq := math32.Sqrt(disc)
	dist := -b - sq
	if dist < hitEpsilon {
		// Origin is inside the sphere
		dist = -b + sq
	}
	if dist < hitEpsilon || dist >= maxDist {
		return bvh.Hit{}, false
	}

	point := ray.At(dist)
	return bvh.Hit{
		Distance: dist,
		Point:    point,
		Normal:   point.Sub(p.Origin).Mul(1.0 / p.Radius),
	}, true
}

// Moller-Trumbore ray/triangle test.
func (p *Primitive) intersectTriangle(ray *bvh.Ray, maxDist float32) (bvh.Hit, bool) {
	e1 := p.Vertices[1].Sub(p.Vertices[0])
	e2 := p.Vertices[2].Sub(p.Vertices[0])

	pVec := ray.Dir.Cross(e2)
	det := e1.Dot(pVec)
	if math32.Abs(det) < 1e-9 {
		return bvh.Hit{}, false
	}
	invDet := 1.0 / det

	tVec := ray.Origin.Sub(p.Vertices[0])
	u := tVec.Dot(pVec) * invDet
	if u < 0 || u > 1 {
		return bvh.Hit{}, false
	}

	qVec := tVec.Cross(e1)
	v := ray.Dir.Dot(qVec) * invDet
	if v < 0 || u+v > 1 {
		return bvh.Hit{}, false
	}

	dist := e2.Dot(qVec) * invDet
	if !(dist >= hitEpsilon) || dist >= maxDist {
		return bvh.Hit{}, false
	}

	// Flip the normal when hitting the back face
	normal := p.Normal
	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Mul(-1)
	}

	return bvh.Hit{
		Distance: dist,
		Point:    ray.At(dist),
		Normal:   normal,
	}, true
}

// Pick a point on the primitive surface as seen from a point. It returns the
// normalized direction and distance towards the sampled point and the
// inverse of the solid angle pdf for picking that direction. Sampling is only
// supported for spheres; samples on the side facing away from the point are
// rejected.
func (p *Primitive) SampleSurface(from types.Vec3, u, v float32) (dir types.Vec3, dist, invPdf float32, ok bool) {
	if p.Type != SpherePrimitive {
		return dir, 0, 0, false
	}

	n := sampling.UniformSphere(u, v)
	point := p.Origin.Add(n.Mul(p.Radius))
	toPoint := point.Sub(from)
	distSq := toPoint.LenSq()
	if distSq < hitEpsilon {
		return dir, 0, 0, false
	}

	dist = math32.Sqrt(distSq)
	dir = toPoint.Mul(1.0 / dist)

	cosLight := -n.Dot(dir)
	if cosLight <= 0 {
		return dir, 0, 0, false
	}

	area := 4.0 * math32.Pi * p.Radius * p.Radius
	return dir, dist, area * cosLight / distSq, true
}

package tracer

import (
	"math/rand"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

const (
	// Offset applied to bounce and shadow ray origins along the surface
	// normal to avoid self-intersections.
	surfaceOffset float32 = 1e-3

	// Shadow rays stop slightly before the sampled light point so the light
	// itself does not count as an occluder.
	shadowDistScale float32 = 1.0 - 1e-3
)

// A unidirectional path tracer with next event estimation for spherical
// lights and russian roulette path termination.
type PathIntegrator struct {
	scene *scene.Scene

	// Bounce index after which russian roulette kicks in.
	minBouncesForRR uint32

	// Hard cap on the number of bounces.
	maxBounces uint32
}

// Create a new path integrator for a scene.
func NewPathIntegrator(sc *scene.Scene, minBouncesForRR, maxBounces uint32) *PathIntegrator {
	return &PathIntegrator{
		scene:           sc,
		minBouncesForRR: minBouncesForRR,
		maxBounces:      maxBounces,
	}
}

// Estimate the radiance arriving along a ray. Non-finite estimates are
// replaced with black.
func (in *PathIntegrator) Radiance(ray *bvh.Ray, rng *rand.Rand) types.Colour {
	var (
		colour     = types.Black
		throughput = types.White

		// Emission is only collected for camera rays, specular bounces and
		// emitters that cannot be light-sampled. Everything else is covered
		// by next event estimation.
		countEmission = true
	)

	for bounce := uint32(0); ; bounce++ {
		hit, obj, found := in.scene.Intersect(ray)
		if !found {
			colour = colour.Add(throughput.MulColour(in.scene.Sky.Radiance(ray.Dir)))
			break
		}

		mat := &obj.Material
		out := ray.Dir.Mul(-1)

		// Shade the side facing the incoming ray
		normal := hit.Normal
		if normal.Dot(out) < 0 {
			normal = normal.Mul(-1)
		}

		if mat.IsEmissive() && (countEmission || obj.Shape.Type != scene.SpherePrimitive) {
			colour = colour.Add(throughput.MulColour(mat.Emitted()))
		}

		if bounce >= in.maxBounces {
			break
		}

		origin := hit.Point.Add(normal.Mul(surfaceOffset))
		if !mat.IsSpecular() {
			colour = colour.Add(throughput.MulColour(in.sampleLight(obj, origin, out, normal, rng)))
		}

		dir, weight, specular := mat.Sample(out, normal, rng)
		throughput = throughput.MulColour(weight)
		if throughput.IsBlack() || !throughput.IsFinite() {
			break
		}
		countEmission = specular

		if bounce+1 >= in.minBouncesForRR {
			survival := math32.Min(1, throughput.Max())
			if rng.Float32() >= survival {
				break
			}
			throughput = throughput.Div(survival)
		}

		next := bvh.NewRay(origin, dir)
		ray = &next
	}

	if !colour.IsFinite() {
		return types.Black
	}
	return colour
}

// Estimate the direct lighting at a surface point by sampling a point on a
// randomly selected light.
func (in *PathIntegrator) sampleLight(obj *scene.Object, origin, out, normal types.Vec3, rng *rand.Rand) types.Colour {
	numLights := in.scene.NumLights()
	if numLights == 0 {
		return types.Black
	}

	light := in.scene.Light(rng.Intn(numLights))
	if light == obj {
		return types.Black
	}

	dir, dist, invPdf, ok := light.Shape.SampleSurface(origin, rng.Float32(), rng.Float32())
	if !ok {
		return types.Black
	}

	f := obj.Material.Eval(out, dir, normal)
	if f.IsBlack() {
		return types.Black
	}

	shadowRay := bvh.NewRay(origin, dir)
	if in.scene.Occluded(&shadowRay, dist*shadowDistScale) {
		return types.Black
	}

	return light.Material.Emitted().MulColour(f).Mul(invPdf * float32(numLights))
}

package tracer

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

func mustBuildScene(t *testing.T, objects []scene.Object, sky scene.Skybox) *scene.Scene {
	t.Helper()
	sc, err := scene.New(scene.NewCamera(1, 1), objects, sky, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestIntegratorSkyOnly(t *testing.T) {
	sc := mustBuildScene(t,
		[]scene.Object{{Shape: scene.NewSphere(types.XYZ(0, 0, 10), 1), Material: scene.Lambertian(types.White, types.Black)}},
		scene.GradientSky(types.RGB(0, 0, 1), types.RGB(1, 1, 1)),
	)
	in := NewPathIntegrator(sc, 3, 10)
	rng := rand.New(rand.NewSource(1))

	ray := bvh.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 1, 0))
	got := in.Radiance(&ray, rng)
	if got != types.RGB(0, 0, 1) {
		t.Fatalf("expected radiance to match the overhead sky colour; got %v", got)
	}
}

func TestIntegratorLambertianUnderUniformSky(t *testing.T) {
	albedo := types.RGB(0.5, 0.25, 0.75)
	sc := mustBuildScene(t,
		[]scene.Object{{Shape: scene.NewSphere(types.XYZ(0, 0, 10), 1), Material: scene.Lambertian(albedo, types.Black)}},
		scene.FlatSky(types.White),
	)
	in := NewPathIntegrator(sc, 5, 10)
	rng := rand.New(rand.NewSource(1))

	// A convex object under a uniform white sky reflects exactly its albedo
	for index := 0; index < 100; index++ {
		ray := bvh.NewRay(types.XYZ(0, 0, 0), types.XYZ(rng.Float32()*0.05, rng.Float32()*0.05, 1).Normalize())
		got := in.Radiance(&ray, rng)
		for c := 0; c < 3; c++ {
			if math32.Abs(got[c]-albedo[c]) > 1e-4 {
				t.Fatalf("[sample %d] expected radiance %v; got %v", index, albedo, got)
			}
		}
	}
}

func TestIntegratorDirectLighting(t *testing.T) {
	var (
		albedo   float32 = 0.5
		radiance float32 = 10
		radius   float32 = 0.5
		dist     float32 = 5
	)

	floor := scene.Lambertian(types.RGB(albedo, albedo, albedo), types.Black)
	sc := mustBuildScene(t,
		[]scene.Object{
			{Shape: scene.NewTriangle([3]types.Vec3{types.XYZ(-10, 0, -10), types.XYZ(10, 0, -10), types.XYZ(0, 0, 10)}), Material: floor},
			{Shape: scene.NewSphere(types.XYZ(0, dist, 0), radius), Material: scene.Lambertian(types.Black, types.RGB(radiance, radiance, radiance))},
		},
		scene.FlatSky(types.Black),
	)
	if sc.NumLights() != 1 {
		t.Fatalf("expected scene to contain 1 light; got %d", sc.NumLights())
	}

	// A single bounce isolates the light sample at the floor origin
	in := NewPathIntegrator(sc, 5, 1)
	rng := rand.New(rand.NewSource(42))

	var sum float32
	numSamples := 20000
	for index := 0; index < numSamples; index++ {
		ray := bvh.NewRay(types.XYZ(-1, 1, 0), types.XYZ(1, -1, 0).Normalize())
		sum += in.Radiance(&ray, rng)[0]
	}

	// The irradiance from a sphere light facing the surface is
	// pi * L * (r/d)^2 so the reflected radiance is albedo * L * (r/d)^2
	exp := albedo * radiance * (radius / dist) * (radius / dist)
	got := sum / float32(numSamples)
	if math32.Abs(got-exp) > 0.1*exp {
		t.Fatalf("expected direct lighting estimate %f; got %f", exp, got)
	}
}

func TestIntegratorVisibleEmitter(t *testing.T) {
	emittance := types.RGB(2, 3, 4)
	sc := mustBuildScene(t,
		[]scene.Object{{Shape: scene.NewSphere(types.XYZ(0, 0, 5), 1), Material: scene.Lambertian(types.Black, emittance)}},
		scene.FlatSky(types.Black),
	)
	in := NewPathIntegrator(sc, 3, 0)
	rng := rand.New(rand.NewSource(1))

	ray := bvh.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1))
	if got := in.Radiance(&ray, rng); got != emittance {
		t.Fatalf("expected camera rays to see the emitter radiance %v; got %v", emittance, got)
	}
}

func TestIntegratorNonFinite(t *testing.T) {
	sc := mustBuildScene(t,
		[]scene.Object{{Shape: scene.NewSphere(types.XYZ(0, 0, 5), 1), Material: scene.Lambertian(types.Black, types.RGB(math32.Inf(1), 0, 0))}},
		scene.FlatSky(types.Black),
	)
	in := NewPathIntegrator(sc, 3, 10)
	rng := rand.New(rand.NewSource(1))

	ray := bvh.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1))
	if got := in.Radiance(&ray, rng); got != types.Black {
		t.Fatalf("expected non-finite radiance to be replaced with black; got %v", got)
	}
}

func TestIntegratorMirror(t *testing.T) {
	sc := mustBuildScene(t,
		[]scene.Object{{Shape: scene.NewTriangle([3]types.Vec3{types.XYZ(-10, 0, -10), types.XYZ(10, 0, -10), types.XYZ(0, 0, 10)}), Material: scene.Mirror()}},
		scene.GradientSky(types.RGB(0, 1, 0), types.RGB(1, 0, 0)),
	)
	in := NewPathIntegrator(sc, 3, 10)
	rng := rand.New(rand.NewSource(1))

	// Looking straight down at the mirror shows the overhead sky colour
	ray := bvh.NewRay(types.XYZ(0, 1, 0), types.XYZ(0, -1, 0))
	got := in.Radiance(&ray, rng)
	if math32.Abs(got[1]-1) > 1e-4 || got[0] > 1e-4 {
		t.Fatalf("expected mirror to reflect the overhead sky; got %v", got)
	}
}

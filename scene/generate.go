package scene

import (
	"math/rand"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/types"
)

// Generate a scene with numSpheres randomly placed spheres with random
// materials. The scene is mainly used for stress-testing the BVH builder and
// the renderer.
func StressScene(width, height uint32, numSpheres int, seed int64, opts bvh.Options) (*Scene, error) {
	rng := rand.New(rand.NewSource(seed))

	objects := make([]Object, numSpheres)
	for index := range objects {
		center := types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100)
		objects[index] = Object{
			Shape:    NewSphere(center, rng.Float32()*5),
			Material: randomMaterial(rng),
		}
	}

	camera := NewCamera(width, height).
		WithLocation(types.XYZ(0, -5, -13)).
		WithOrientation(types.OrientationFromAngles(0, 0, -0.3))

	return New(camera, objects, FlatSky(types.RGB(0.8, 0.8, 0.8)), opts)
}

func randomMaterial(rng *rand.Rand) Material {
	switch rng.Intn(3) {
	case 0:
		return Gloss(randomColour(rng), rng.Float32(), rng.Float32())
	case 1:
		return Lambertian(randomColour(rng), types.Black)
	}
	return Mirror()
}

func randomColour(rng *rand.Rand) types.Colour {
	return types.RGB(rng.Float32(), rng.Float32(), rng.Float32())
}

// Generate a small demo scene: a few spheres with different materials on a
// floor lit by a spherical light and a gradient sky.
func DemoScene(width, height uint32, opts bvh.Options) (*Scene, error) {
	floor := Lambertian(types.RGB(0.7, 0.7, 0.7), types.Black)
	corners := [4]types.Vec3{
		types.XYZ(-20, 0, -20),
		types.XYZ(20, 0, -20),
		types.XYZ(20, 0, 20),
		types.XYZ(-20, 0, 20),
	}

	objects := []Object{
		{NewTriangle([3]types.Vec3{corners[0], corners[2], corners[1]}), floor},
		{NewTriangle([3]types.Vec3{corners[0], corners[3], corners[2]}), floor},
		{NewSphere(types.XYZ(-2.2, 1, 4), 1), Lambertian(types.RGB(0.8, 0.2, 0.2), types.Black)},
		{NewSphere(types.XYZ(0, 1, 5), 1), Mirror()},
		{NewSphere(types.XYZ(2.2, 1, 4), 1), Gloss(types.RGB(0.2, 0.3, 0.8), 0.1, 0)},
		{NewSphere(types.XYZ(1, 0.5, 2.5), 0.5), Gloss(types.RGB(0.9, 0.7, 0.2), 0.8, 1)},
		{NewSphere(types.XYZ(0, 8, 3), 1.5), Lambertian(types.Black, types.RGB(8, 8, 7))},
	}

	camera := NewCamera(width, height).
		WithLocation(types.XYZ(0, 1.5, -4)).
		WithOrientation(types.OrientationFromAngles(0, 0.05, 0))
	camera.FocusDistance = 8.0

	return New(camera, objects, GradientSky(types.RGB(0.4, 0.6, 1.0), types.RGB(0.9, 0.9, 0.9)), opts)
}

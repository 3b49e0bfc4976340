package scene

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/log"
	"github.com/olekukonko/tablewriter"
)

// A scene object is a primitive with a material attached.
type Object struct {
	Shape    Primitive
	Material Material
}

// Intersect the object's shape with a ray.
func (o Object) Intersect(ray *bvh.Ray, maxDist float32) (bvh.Hit, bool) {
	return o.Shape.Intersect(ray, maxDist)
}

// A renderable scene. The object BVH, materials and sky are immutable once
// the scene is built and may be shared by any number of goroutines. The
// camera is the initial camera state; renderers keep their own copies.
type Scene struct {
	Camera Camera
	Sky    Skybox

	tree *bvh.BVH[Object]

	// Indices of emissive sphere objects that can be light-sampled.
	lights []int

	// Number of primitives dropped while building the scene.
	dropped int
}

// Build a scene. Degenerate primitives are dropped from the scene and
// emissive spheres are indexed so they can be sampled directly by the
// integrator.
func New(camera Camera, objects []Object, sky Skybox, opts bvh.Options) (*Scene, error) {
	logger := log.New("scene")

	items := make([]bvh.Item[Object], 0, len(objects))
	dropped := 0
	for index, obj := range objects {
		if obj.Shape.IsDegenerate() {
			logger.Warningf("dropping degenerate primitive %d", index)
			dropped++
			continue
		}
		items = append(items, bvh.Item[Object]{BBox: obj.Shape.BBox(), Payload: obj})
	}

	tree, err := bvh.Build(items, opts)
	if err != nil {
		return nil, err
	}

	sc := &Scene{
		Camera:  camera,
		Sky:     sky,
		tree:    tree,
		dropped: dropped,
	}

	for index := 0; index < tree.Len(); index++ {
		obj := tree.Payload(index)
		if obj.Material.IsEmissive() && obj.Shape.Type == SpherePrimitive {
			sc.lights = append(sc.lights, index)
		}
	}

	logger.Infof("built scene with %d objects (%d dropped) and %d lights", tree.Len(), dropped, len(sc.lights))
	logger.Debugf("BVH statistics\n%s", tree.Stats().Table())
	return sc, nil
}

// Find the nearest object hit by the ray.
func (sc *Scene) Intersect(ray *bvh.Ray) (bvh.Hit, *Object, bool) {
	return sc.tree.Intersect(ray)
}

// Check whether anything blocks the ray before maxDist.
func (sc *Scene) Occluded(ray *bvh.Ray, maxDist float32) bool {
	return sc.tree.Occluded(ray, maxDist)
}

// Get the number of objects that can be light-sampled.
func (sc *Scene) NumLights() int {
	return len(sc.lights)
}

// Get a light-sampled object by index.
func (sc *Scene) Light(index int) *Object {
	return sc.tree.Payload(sc.lights[index])
}

// Get the number of objects in the scene.
func (sc *Scene) NumObjects() int {
	return sc.tree.Len()
}

// Get the number of degenerate primitives dropped while building the scene.
func (sc *Scene) Dropped() int {
	return sc.dropped
}

// Get the BVH build statistics.
func (sc *Scene) BVHStats() bvh.Stats {
	return sc.tree.Stats()
}

// Get scene statistics as a table.
func (sc *Scene) Stats() string {
	var spheres, triangles int
	materials := make(map[MaterialType]int)
	for index := 0; index < sc.tree.Len(); index++ {
		obj := sc.tree.Payload(index)
		if obj.Shape.Type == SpherePrimitive {
			spheres++
		} else {
			triangles++
		}
		materials[obj.Material.Type]++
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count"})
	table.Append([]string{"Geometry", "---", fmt.Sprintf("%d", sc.tree.Len())})
	table.Append([]string{"", "Spheres", fmt.Sprintf("%d", spheres)})
	table.Append([]string{"", "Triangles", fmt.Sprintf("%d", triangles)})
	table.Append([]string{"", "Dropped", fmt.Sprintf("%d", sc.dropped)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Materials", "---", fmt.Sprintf("%d", len(materials))})
	table.Append([]string{"", "Lambertian", fmt.Sprintf("%d", materials[LambertianMaterial])})
	table.Append([]string{"", "Mirror", fmt.Sprintf("%d", materials[MirrorMaterial])})
	table.Append([]string{"", "Gloss", fmt.Sprintf("%d", materials[GlossMaterial])})
	table.Append([]string{"", "Lights", fmt.Sprintf("%d", len(sc.lights))})
	table.SetFooter([]string{"Camera", fmt.Sprintf("%dx%d", sc.Camera.Width, sc.Camera.Height), " "})

	table.Render()
	return buf.String()
}

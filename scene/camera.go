package scene

import (
	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// A thin-lens camera. Camera values are immutable snapshots; the With*
// methods return modified copies so a camera can be handed to other
// goroutines without synchronization.
//
// In camera space the camera looks down +Z with +X pointing right and +Y up.
// All sensor and lens dimensions use scene units.
type Camera struct {
	// The center of the lens.
	Location types.Vec3

	// Camera orientation.
	Orientation types.Orientation

	// Lens focal length.
	FocalLength float32

	// Distance from the lens to the plane in focus.
	FocusDistance float32

	// Lens f-number; a value of 0 turns the camera into a pinhole.
	Aperture float32

	// Physical sensor dimensions.
	SensorWidth  float32
	SensorHeight float32

	// Image dimensions in pixels.
	Width  uint32
	Height uint32
}

// Create a camera with a 36x24 sensor (expressed in meters), a 50mm lens at
// f/8 focused at 10 units away.
func NewCamera(width, height uint32) Camera {
	return Camera{
		Orientation:   types.IdentOrientation(),
		FocalLength:   0.05,
		FocusDistance: 10.0,
		Aperture:      8.0,
		SensorWidth:   0.036,
		SensorHeight:  0.024,
		Width:         width,
		Height:        height,
	}
}

// Get a copy of the camera placed at a new location.
func (c Camera) WithLocation(location types.Vec3) Camera {
	c.Location = location
	return c
}

// Get a copy of the camera with a new orientation.
func (c Camera) WithOrientation(orientation types.Orientation) Camera {
	c.Orientation = orientation
	return c
}

// Get a copy of the camera moved by a camera-space offset.
func (c Camera) Move(delta types.Vec3) Camera {
	c.Location = c.Location.Add(c.Orientation.Rotate(delta))
	return c
}

// The distance between the lens and the sensor required to focus at
// FocusDistance.
func (c *Camera) sensorDistance() float32 {
	f := c.FocalLength
	return f * c.FocusDistance / (c.FocusDistance - f)
}

func (c *Camera) apertureRadius() float32 {
	if c.Aperture <= 0 {
		return 0
	}
	return c.FocalLength / (2.0 * c.Aperture)
}

// Generate a primary ray for a pixel. The sensor offset selects a point
// inside the pixel (each component in [0, 1)) and the lens offset a point
// on the unit disk. The returned weight is the cosine between the ray and the
// lens normal.
func (c *Camera) RayForPixel(x, y uint32, sensorOffset, lensOffset [2]float32) (bvh.Ray, float32) {
	// The image on the sensor is flipped so reflect the requested pixel
	x = c.Width - x - 1
	y = c.Height - y - 1

	v := c.sensorDistance()
	p := c.FocusDistance

	// Point on the sensor; pixel rows grow downwards while Y points up
	imageX := float32(x) - float32(c.Width)/2.0 + sensorOffset[0]
	imageY := float32(c.Height)/2.0 - float32(y) - sensorOffset[1]
	k := types.XYZ(
		imageX*c.SensorWidth/float32(c.Width),
		imageY*c.SensorHeight/float32(c.Height),
		-v,
	)

	// Point on the lens
	radius := c.apertureRadius()
	l := types.XYZ(lensOffset[0]*radius, lensOffset[1]*radius, 0)

	// Every ray from k through the lens converges on the focal plane at
	// -k * p / v.
	dir := k.Mul(p / v).Add(l).Mul(-1).Normalize()

	origin := c.Orientation.Rotate(l).Add(c.Location)
	return bvh.NewRay(origin, c.Orientation.Rotate(dir).Normalize()), math32.Max(0, dir[2])
}

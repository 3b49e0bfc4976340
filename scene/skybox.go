package scene

import (
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

type SkyboxType uint8

const (
	FlatSkybox SkyboxType = iota
	GradientSkybox
)

// The skybox provides the radiance for rays that escape the scene.
type Skybox struct {
	Type SkyboxType

	// The flat sky colour or the overhead colour for gradient skies.
	Colour types.Colour

	// The colour at the horizon (gradient skies only).
	Horizon types.Colour
}

// A sky with the same colour in all directions.
func FlatSky(colour types.Colour) Skybox {
	return Skybox{Type: FlatSkybox, Colour: colour}
}

// A sky that blends from the horizon colour to the overhead colour based on
// the elevation of the ray direction.
func GradientSky(overhead, horizon types.Colour) Skybox {
	return Skybox{Type: GradientSkybox, Colour: overhead, Horizon: horizon}
}

// Get the radiance arriving along a normalized ray direction.
func (s *Skybox) Radiance(dir types.Vec3) types.Colour {
	if s.Type == GradientSkybox {
		t := math32.Max(0, dir[1])
		return s.Colour.Mul(t).Add(s.Horizon.Mul(1.0 - t))
	}
	return s.Colour
}

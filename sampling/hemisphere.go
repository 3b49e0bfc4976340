package sampling

import (
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Map two uniform random numbers to a cosine-weighted direction on the
// hemisphere around +Y. The pdf of the returned direction is cos(theta)/pi.
func CosineHemisphere(u, v float32) types.Vec3 {
	r := math32.Sqrt(u)
	theta := 2.0 * math32.Pi * v
	return types.XYZ(
		r*math32.Cos(theta),
		math32.Sqrt(math32.Max(0, 1.0-u)),
		r*math32.Sin(theta),
	)
}

// Map two uniform random numbers to a uniformly distributed point on the
// unit sphere.
func UniformSphere(u, v float32) types.Vec3 {
	theta := 2.0 * math32.Pi * u
	cosPhi := 2.0*v - 1.0
	sinPhi := math32.Sqrt(math32.Max(0, 1.0-cosPhi*cosPhi))
	return types.XYZ(
		sinPhi*math32.Cos(theta),
		sinPhi*math32.Sin(theta),
		cosPhi,
	)
}

package scene

import (
	"math/rand"

	"github.com/achilleasa/lumen/sampling"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

type MaterialType uint8

const (
	LambertianMaterial MaterialType = iota
	MirrorMaterial
	GlossMaterial
)

// Defines a scene material.
type Material struct {
	// The type of the material.
	Type MaterialType

	// Diffuse color.
	Albedo types.Colour

	// Emissive color (lambertian materials only).
	Emittance types.Colour

	// Fresnel reflectance at normal incidence (gloss materials only).
	Reflectance float32

	// Controls how much the specular highlight is tinted by the albedo
	// and how much the diffuse lobe is suppressed (gloss materials only).
	Metalness float32
}

// Create a diffuse material. A non-black emittance turns it into a light.
func Lambertian(albedo, emittance types.Colour) Material {
	return Material{
		Type:      LambertianMaterial,
		Albedo:    albedo,
		Emittance: emittance,
	}
}

// Create a perfect mirror.
func Mirror() Material {
	return Material{
		Type:   MirrorMaterial,
		Albedo: types.White,
	}
}

// Create a material that mixes a diffuse and a mirror lobe using Schlick's
// fresnel approximation.
func Gloss(albedo types.Colour, reflectance, metalness float32) Material {
	return Material{
		Type:        GlossMaterial,
		Albedo:      albedo,
		Reflectance: math32.Max(0, math32.Min(1, reflectance)),
		Metalness:   math32.Max(0, math32.Min(1, metalness)),
	}
}

// Returns true if the material emits light.
func (m *Material) IsEmissive() bool {
	return m.Type == LambertianMaterial && !m.Emittance.IsBlack()
}

// Get the emitted radiance.
func (m *Material) Emitted() types.Colour {
	if m.Type != LambertianMaterial {
		return types.Black
	}
	return m.Emittance
}

// Sample an incoming light direction for a surface point. The out vector
// points from the surface towards the viewer. The returned weight is
// brdf * cos(theta) / pdf for the sampled direction. The specular flag is set
// when the direction was picked from a delta lobe that Eval cannot reproduce.
func (m *Material) Sample(out, normal types.Vec3, rng *rand.Rand) (dir types.Vec3, weight types.Colour, specular bool) {
	switch m.Type {
	case MirrorMaterial:
		return reflect(out, normal), types.White, true
	case GlossMaterial:
		r := schlick(m.Reflectance, out.Dot(normal))

		// Very reflective surfaces are sampled proportionally to the fresnel
		// term; everything else samples both lobes evenly so highlights are
		// still captured.
		specularChance := float32(0.5)
		if m.Reflectance > 0.5 {
			specularChance = r
		}

		if rng.Float32() < specularChance {
			tint := m.Albedo.Mul(m.Metalness).Add(types.White.Mul(1.0 - m.Metalness))
			return reflect(out, normal), tint.Mul(r / specularChance), true
		}

		dir = diffuseDirection(normal, rng)
		return dir, m.Albedo.Mul((1.0 - m.Metalness) * (1.0 - r) / (1.0 - specularChance)), false
	}

	// Cosine-weighted sampling cancels out the cos/pi terms
	return diffuseDirection(normal, rng), m.Albedo, false
}

// Evaluate brdf * cos(theta) for a given incoming direction. Delta lobes do
// not contribute.
func (m *Material) Eval(out, in, normal types.Vec3) types.Colour {
	cosIn := in.Dot(normal)
	if cosIn <= 0 {
		return types.Black
	}

	switch m.Type {
	case LambertianMaterial:
		return m.Albedo.Mul(cosIn / math32.Pi)
	case GlossMaterial:
		r := schlick(m.Reflectance, out.Dot(normal))
		return m.Albedo.Mul((1.0 - m.Metalness) * (1.0 - r) * cosIn / math32.Pi)
	}
	return types.Black
}

// Returns true if the material has no diffuse lobe.
func (m *Material) IsSpecular() bool {
	return m.Type == MirrorMaterial
}

func reflect(out, normal types.Vec3) types.Vec3 {
	return normal.Mul(2.0 * normal.Dot(out)).Sub(out).Normalize()
}

func diffuseDirection(normal types.Vec3, rng *rand.Rand) types.Vec3 {
	i, j, k := normal.Basis()
	return types.SwitchBasis(sampling.CosineHemisphere(rng.Float32(), rng.Float32()), i, j, k).Normalize()
}

// Schlick's approximation for the fresnel reflectance.
func schlick(r0, cosTheta float32) float32 {
	c := 1.0 - math32.Max(0, math32.Min(1, cosTheta))
	return r0 + (1.0-r0)*c*c*c*c*c
}

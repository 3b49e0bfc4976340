package types

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

type Vec2 f32.Vec2
type Vec3 f32.Vec3

// Define a 2 component vector.
func XY(x, y float32) Vec2 {
	return Vec2{x, y}
}

// Define a 3 component vector.
func XYZ(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Expand a 2 component vector to a Vec3
func (v Vec2) Vec3(z float32) Vec3 {
	return Vec3{v[0], v[1], z}
}

// Subtract a vector.
func (v Vec2) Sub(v2 Vec2) Vec2 {
	return Vec2{v[0] - v2[0], v[1] - v2[1]}
}

// Multiply a 2 component vector with a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Component-wise multiplication.
func (v Vec3) MulVec(v2 Vec3) Vec3 {
	return Vec3{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2]}
}

// Component-wise reciprocal. Zero components map to +/-Inf which is what the
// slab test expects.
func (v Vec3) Inv() Vec3 {
	return Vec3{1.0 / v[0], 1.0 / v[1], 1.0 / v[2]}
}

// Get 3 component vector length.
func (v Vec3) Len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Get the squared length of the vector.
func (v Vec3) LenSq() float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Normalize 3 component vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < floatCmpEpsilon {
		return Vec3{}
	}
	l = 1.0 / l
	return Vec3{v[0] * l, v[1] * l, v[2] * l}
}

// Calculate dot product of 2 vectors
func (v Vec3) Dot(v2 Vec3) float32 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Get the largest vector component.
func (v Vec3) MaxComponent() float32 {
	return math32.Max(v[0], math32.Max(v[1], v[2]))
}

// Get the smallest vector component.
func (v Vec3) MinComponent() float32 {
	return math32.Min(v[0], math32.Min(v[1], v[2]))
}

// Returns true if no component is NaN or Inf.
func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Build an orthonormal basis (i, j, k) where j is aligned with the vector. The
// vector must be normalized.
func (v Vec3) Basis() (i, j, k Vec3) {
	j = v
	if math32.Abs(v[0]) > 0.9 {
		i = Vec3{0, 1, 0}
	} else {
		i = Vec3{1, 0, 0}
	}
	k = i.Cross(j).Normalize()
	i = j.Cross(k)
	return i, j, k
}

// Express a vector given in the (i, j, k) basis in world coordinates.
func SwitchBasis(v, i, j, k Vec3) Vec3 {
	return i.Mul(v[0]).Add(j.Mul(v[1])).Add(k.Mul(v[2]))
}

// Calc min component from two vectors
func MinVec3(v1, v2 Vec3) Vec3 {
	out := v1
	if v2[0] < out[0] {
		out[0] = v2[0]
	}
	if v2[1] < out[1] {
		out[1] = v2[1]
	}
	if v2[2] < out[2] {
		out[2] = v2[2]
	}
	return out
}

// Calc maxcomponent from two vectors
func MaxVec3(v1, v2 Vec3) Vec3 {
	out := v1
	if v2[0] > out[0] {
		out[0] = v2[0]
	}
	if v2[1] > out[1] {
		out[1] = v2[1]
	}
	if v2[2] > out[2] {
		out[2] = v2[2]
	}
	return out
}

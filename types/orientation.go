package types

import "github.com/go-gl/mathgl/mgl32"

// A rotation expressed as a 3x3 column-major matrix.
type Orientation mgl32.Mat3

// The identity orientation looks down the +Z axis with +Y up.
func IdentOrientation() Orientation {
	return Orientation(mgl32.Ident3())
}

// Build an orientation from yaw (around Y), pitch (around X) and roll (around Z)
// angles in radians. Rotations are applied in roll, pitch, yaw order.
func OrientationFromAngles(yaw, pitch, roll float32) Orientation {
	rot := mgl32.Rotate3DY(yaw).Mul3(mgl32.Rotate3DX(pitch)).Mul3(mgl32.Rotate3DZ(roll))
	return Orientation(rot)
}

// Compose two orientations. The argument is applied first.
func (o Orientation) Mul(o2 Orientation) Orientation {
	return Orientation(mgl32.Mat3(o).Mul3(mgl32.Mat3(o2)))
}

// Rotate a vector.
func (o Orientation) Rotate(v Vec3) Vec3 {
	return Vec3(mgl32.Mat3(o).Mul3x1(mgl32.Vec3(v)))
}

// Returns true if both orientations are equal within a small tolerance.
func (o Orientation) ApproxEqual(o2 Orientation) bool {
	return mgl32.Mat3(o).ApproxEqualThreshold(mgl32.Mat3(o2), floatCmpEpsilon)
}

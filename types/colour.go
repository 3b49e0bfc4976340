package types

import (
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Used when comparing floats against zero.
const floatCmpEpsilon float32 = 1e-6

// An RGB colour with linear float components.
type Colour f32.Vec3

var (
	Black = Colour{0, 0, 0}
	White = Colour{1, 1, 1}
)

// Define a colour.
func RGB(r, g, b float32) Colour {
	return Colour{r, g, b}
}

// Add a colour.
func (c Colour) Add(c2 Colour) Colour {
	return Colour{c[0] + c2[0], c[1] + c2[1], c[2] + c2[2]}
}

// Multiply with another colour (component-wise).
func (c Colour) MulColour(c2 Colour) Colour {
	return Colour{c[0] * c2[0], c[1] * c2[1], c[2] * c2[2]}
}

// Multiply with a scalar.
func (c Colour) Mul(s float32) Colour {
	return Colour{c[0] * s, c[1] * s, c[2] * s}
}

// Divide by a scalar.
func (c Colour) Div(s float32) Colour {
	return Colour{c[0] / s, c[1] / s, c[2] / s}
}

// Get the largest channel value.
func (c Colour) Max() float32 {
	return math32.Max(c[0], math32.Max(c[1], c[2]))
}

// Returns true if all channels are zero.
func (c Colour) IsBlack() bool {
	return c[0] == 0 && c[1] == 0 && c[2] == 0
}

// Returns true if no channel is NaN or Inf.
func (c Colour) IsFinite() bool {
	return Vec3(c).IsFinite()
}

// Convert to an 8-bit RGBA value applying a simple exposure scaler. Channels
// are clamped to [0, 1].
func (c Colour) RGBA(exposure float32) color.RGBA {
	return color.RGBA{
		R: channelToByte(c[0] * exposure),
		G: channelToByte(c[1] * exposure),
		B: channelToByte(c[2] * exposure),
		A: 255,
	}
}

func channelToByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	scaled := v * 256.0
	if scaled >= 255 {
		return 255
	}
	return uint8(scaled)
}

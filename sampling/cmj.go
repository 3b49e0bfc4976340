package sampling

import "github.com/chewxy/math32"

// The largest float32 below 1.
const oneMinusEpsilon float32 = 0x1.fffffep-1

// A correlated multi-jittered sample pattern as described in "Correlated
// Multi-Jittered Sampling" (Kensler, Pixar technical memo 13-01).
//
// A pattern of M x N samples places exactly one sample in each cell of an
// M x N grid while also keeping the samples well distributed along each axis.
// Patterns are fully determined by their seed; no state is kept between calls
// so a pattern can be shared between goroutines.
type Pattern struct {
	M, N uint32
	Seed uint32
}

// Create a new pattern. Zero dimensions are treated as 1.
func NewPattern(m, n, seed uint32) Pattern {
	if m == 0 {
		m = 1
	}
	if n == 0 {
		n = 1
	}
	return Pattern{M: m, N: n, Seed: seed}
}

// Get the number of samples in the pattern.
func (p Pattern) Len() uint32 {
	return p.M * p.N
}

// Get the s-th sample of the pattern on the unit square.
func (p Pattern) Square(s uint32) (float32, float32) {
	return cmj(s, p.M, p.N, p.Seed)
}

// Get the s-th sample of the pattern mapped onto the unit disk. The disk
// pattern uses a different seed than Square so lens and sensor offsets for
// the same sample index are decorrelated.
func (p Pattern) Disk(s uint32) (float32, float32) {
	x, y := cmj(s, p.M, p.N, p.Seed+1)
	return UniformDisk(x, y)
}

// Map a point on the unit square onto the unit disk using the polar mapping
// r = sqrt(v), theta = 2*pi*u. The mapping preserves area so uniform inputs
// produce uniform disk samples.
func UniformDisk(u, v float32) (float32, float32) {
	theta := 2.0 * math32.Pi * u
	r := math32.Sqrt(v)
	return r * math32.Cos(theta), r * math32.Sin(theta)
}

func cmj(s, m, n, p uint32) (float32, float32) {
	ps := permute(s, m*n, p*0xa73bd290)
	sx := float32(permute(ps%m, m, p*0xa511e9b3))
	sy := float32(permute(ps/m, n, p*0x63d83595))
	jx := randFloat(s, p*0xa399d265)
	jy := randFloat(s, p*0x711ad6a5)

	x := (float32(s%m) + (sy+jx)/float32(n)) / float32(m)
	y := (float32(s/m) + (sx+jy)/float32(m)) / float32(n)
	return math32.Min(x, oneMinusEpsilon), math32.Min(y, oneMinusEpsilon)
}

// Generate a pseudo-random permutation of [0, l) and return the value at i.
func permute(i, l, p uint32) uint32 {
	w := l - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16

	// Cycle-walk until the hashed value falls inside [0, l)
	for {
		i ^= p
		i *= 0xe170893d
		i ^= p >> 16
		i ^= (i & w) >> 4
		i ^= p >> 8
		i *= 0x0929eb3f
		i ^= p >> 23
		i ^= (i & w) >> 1
		i *= 1 | p>>27
		i *= 0x6935fa69
		i ^= (i & w) >> 11
		i *= 0x74dcb303
		i ^= (i & w) >> 2
		i *= 0x9e501cc3
		i ^= (i & w) >> 2
		i *= 0xc860a3df
		i &= w
		i ^= i >> 5
		if i < l {
			break
		}
	}

	return (i + p) % l
}

// Hash i into a float in [0, 1).
func randFloat(i, p uint32) float32 {
	i ^= p
	i ^= i >> 17
	i ^= i >> 10
	i *= 0xb36534e5
	i ^= i >> 12
	i ^= i >> 21
	i *= 0x93fc4795
	i ^= 0xdf6e307f
	i ^= i >> 17
	i *= 1 | p>>18

	v := float32(float64(i) * (1.0 / 4294967808.0))
	if v > oneMinusEpsilon {
		v = oneMinusEpsilon
	}
	return v
}

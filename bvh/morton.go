package bvh

// The maximum number of bits per axis; 3 axes need to fit in a uint64.
const maxMortonBits = 16

// Interleave the lowest bits of x, y and z into a morton code. The code is
// aligned to the most significant bit of the result so that partitioning can
// always start from bit 0 regardless of the bit count. For each bit position
// the x bit is the most significant followed by y and z.
func MortonCode(bits uint, x, y, z uint16) uint64 {
	var code uint64
	shift := 64 - bits*3
	for i := uint(0); i < bits; i++ {
		code |= uint64(z&1) << (shift + i*3)
		code |= uint64(y&1) << (shift + i*3 + 1)
		code |= uint64(x&1) << (shift + i*3 + 2)
		x >>= 1
		y >>= 1
		z >>= 1
	}
	return code
}

// Check whether the n-th bit (counting from the most significant bit) is set.
func mortonBit(code uint64, n uint) bool {
	return (code>>(63-n))&1 == 1
}

// Get the number of bits per axis for n items: ceil(log4(n)). Each bit
// level provides one quad-split of resolution per expected tree level.
func mortonBitsFor(n int) uint {
	var bits uint
	for capacity := uint64(1); capacity < uint64(n); capacity *= 4 {
		bits++
	}
	return bits
}

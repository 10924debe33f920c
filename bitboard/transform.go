package bitboard

import "math/bits"

// Flips and rotations, all done with fixed delta-swap sequences. See
// https://www.chessprogramming.org/Flipping_Mirroring_and_Rotating

// FlipVertical mirrors rows: (r, c) -> (7-r, c). It is an involution.
func FlipVertical(x uint64) uint64 {
	return bits.ReverseBytes64(x)
}

// FlipDiagA1H8 transposes the board: (r, c) -> (c, r). It is an involution.
func FlipDiagA1H8(x uint64) uint64 {
	const (
		k1 = 0x5500550055005500
		k2 = 0x3333000033330000
		k4 = 0x0f0f0f0f00000000
	)
	t := k4 & (x ^ (x << 28))
	x ^= t ^ (t >> 28)
	t = k2 & (x ^ (x << 14))
	x ^= t ^ (t >> 14)
	t = k1 & (x ^ (x << 7))
	x ^= t ^ (t >> 7)
	return x
}

// FlipAntiDiag mirrors about the anti-diagonal: (r, c) -> (7-c, 7-r).
// It is an involution.
func FlipAntiDiag(x uint64) uint64 {
	const (
		k1 = 0xaa00aa00aa00aa00
		k2 = 0xcccc0000cccc0000
		k4 = 0xf0f0f0f00f0f0f0f
	)
	t := x ^ (x << 36)
	x ^= k4 & (t ^ (x >> 36))
	t = k2 & (x ^ (x << 18))
	x ^= t ^ (t >> 18)
	t = k1 & (x ^ (x << 9))
	x ^= t ^ (t >> 9)
	return x
}

// Rotate90 maps (r, c) -> (7-c, r), turning every column into a row.
// Its inverse is Rotate90Inverse.
func Rotate90(x uint64) uint64 {
	return FlipVertical(FlipDiagA1H8(x))
}

func Rotate90Inverse(x uint64) uint64 {
	return FlipDiagA1H8(FlipVertical(x))
}

// Rotate45CW is the pseudo-rotation (r, c) -> ((r-c) mod 8, c). Every
// diagonal (constant r-c) lands on a single row, wrapped: row k holds the
// diagonal r-c = k in columns 0..7-k and r-c = k-8 in columns 8-k..7.
// Its inverse is Rotate45CWInverse.
func Rotate45CW(x uint64) uint64 {
	const (
		k1 = 0xAAAAAAAAAAAAAAAA
		k2 = 0xCCCCCCCCCCCCCCCC
		k4 = 0xF0F0F0F0F0F0F0F0
	)
	x ^= k1 & (x ^ bits.RotateLeft64(x, -8))
	x ^= k2 & (x ^ bits.RotateLeft64(x, -16))
	x ^= k4 & (x ^ bits.RotateLeft64(x, -32))
	return x
}

func Rotate45CWInverse(x uint64) uint64 {
	const (
		k1 = 0xAAAAAAAAAAAAAAAA
		k2 = 0xCCCCCCCCCCCCCCCC
		k4 = 0xF0F0F0F0F0F0F0F0
	)
	x ^= k1 & (x ^ bits.RotateLeft64(x, 8))
	x ^= k2 & (x ^ bits.RotateLeft64(x, 16))
	x ^= k4 & (x ^ bits.RotateLeft64(x, 32))
	return x
}

// Rotate45CCW is the pseudo-rotation (r, c) -> ((r+c+1) mod 8, c). Every
// anti-diagonal (constant r+c) lands on a single row: row k holds
// r+c = k-1 in columns 0..k-1 and r+c = k+7 in columns k..7.
// Its inverse is Rotate45CCWInverse.
func Rotate45CCW(x uint64) uint64 {
	const (
		k1 = 0x5555555555555555
		k2 = 0x3333333333333333
		k4 = 0x0f0f0f0f0f0f0f0f
	)
	x ^= k1 & (x ^ bits.RotateLeft64(x, -8))
	x ^= k2 & (x ^ bits.RotateLeft64(x, -16))
	x ^= k4 & (x ^ bits.RotateLeft64(x, -32))
	return x
}

func Rotate45CCWInverse(x uint64) uint64 {
	const (
		k1 = 0x5555555555555555
		k2 = 0x3333333333333333
		k4 = 0x0f0f0f0f0f0f0f0f
	)
	x ^= k1 & (x ^ bits.RotateLeft64(x, 8))
	x ^= k2 & (x ^ bits.RotateLeft64(x, 16))
	x ^= k4 & (x ^ bits.RotateLeft64(x, 32))
	return x
}

// Package bitboard holds the 64-bit board geometry used by the engine.
// Cell (row, col) lives at bit row*Size+col, so row 0 occupies the low byte
// and column 0 is the low bit of every byte.
package bitboard

import "math/bits"

const (
	Size      = 8
	NumCells  = Size * Size
	WinLength = 5
)

const (
	Empty uint64 = 0
	Full  uint64 = 0xFFFFFFFFFFFFFFFF

	ColA uint64 = 0x0101010101010101
	ColH uint64 = 0x8080808080808080

	// NotColA and NotColH are the wrap guards. A stone in column H must not
	// reappear in column A of the next row after a left shift by one, and
	// vice versa.
	NotColA = ^ColA
	NotColH = ^ColH
)

// Index returns the bit index of a cell.
func Index(row, col int) int {
	return row*Size + col
}

// Bit returns the single-bit mask of a cell.
func Bit(row, col int) uint64 {
	return 1 << uint(Index(row, col))
}

// RowCol decodes a bit index.
func RowCol(idx int) (int, int) {
	return idx / Size, idx % Size
}

// OnBoard reports whether a coordinate is inside the grid.
func OnBoard(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

func PopCount(x uint64) int {
	return bits.OnesCount64(x)
}

// The eight single-step shifts. East is increasing column, south is
// increasing row.

func East(x uint64) uint64      { return (x & NotColH) << 1 }
func West(x uint64) uint64      { return (x & NotColA) >> 1 }
func South(x uint64) uint64     { return x << Size }
func North(x uint64) uint64     { return x >> Size }
func SouthEast(x uint64) uint64 { return (x & NotColH) << (Size + 1) }
func SouthWest(x uint64) uint64 { return (x & NotColA) << (Size - 1) }
func NorthEast(x uint64) uint64 { return (x & NotColH) >> (Size - 1) }
func NorthWest(x uint64) uint64 { return (x & NotColA) >> (Size + 1) }

// Dilate returns every cell adjacent (including diagonally) to a set bit.
// The input cells themselves are not included unless they neighbour another
// set bit.
func Dilate(x uint64) uint64 {
	return East(x) | West(x) | South(x) | North(x) |
		SouthEast(x) | SouthWest(x) | NorthEast(x) | NorthWest(x)
}

// HasFive reports whether x contains WinLength consecutive set bits along a
// row, column, diagonal or anti-diagonal.
func HasFive(x uint64) bool {
	return runOfFive(x, East) || runOfFive(x, South) ||
		runOfFive(x, SouthEast) || runOfFive(x, SouthWest)
}

func runOfFive(x uint64, step func(uint64) uint64) bool {
	// after k rounds a bit survives only if it starts a run of k+1 cells.
	r := x
	for i := 1; i < WinLength; i++ {
		r &= step(r)
		if r == 0 {
			return false
		}
	}
	return true
}

// strides of the four directions in bit index space
var strides = [NumDirections]uint{1, Size, Size + 1, Size - 1}

// WinsThrough reports whether x has five in a row on one of the four lines
// passing through idx. It only inspects those lines, so it is the cheap
// test to run after placing a stone on idx.
func WinsThrough(x uint64, idx int) bool {
	for dir := 0; dir < NumDirections; dir++ {
		m := x & cellLines[idx][dir]
		s := strides[dir]
		if m&(m>>s)&(m>>(2*s))&(m>>(3*s))&(m>>(4*s)) != 0 {
			return true
		}
	}
	return false
}

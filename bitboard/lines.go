package bitboard

import "math/bits"

// Orientation names one of the four line families. The same constants index
// directions for WinsThrough.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
	Diagonal     // constant row-col, stride Size+1
	AntiDiagonal // constant row+col, stride Size-1

	NumDirections = 4
)

// MaxLines is the longest line family (the 15 diagonals).
const MaxLines = 2*Size - 1

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "row"
	case Vertical:
		return "column"
	case Diagonal:
		return "diagonal"
	case AntiDiagonal:
		return "anti-diagonal"
	}
	return "unknown"
}

// Line locates one board line inside the transformed bitboard of its
// orientation: the line's cells sit in row Rank under the 8-bit Mask.
type Line struct {
	Rank   uint8
	Mask   uint8
	Length int
}

// Extract pulls the line's cells out of a bitboard that has already been put
// through Transform for the line's orientation.
func (l Line) Extract(transformed uint64) uint64 {
	return (transformed >> (Size * uint(l.Rank))) & uint64(l.Mask)
}

var transforms = [NumDirections]func(uint64) uint64{
	func(x uint64) uint64 { return x },
	Rotate90,
	Rotate45CW,
	Rotate45CCW,
}

// Transform maps a bitboard into the layout where every line of orientation
// o occupies (part of) a single row.
func Transform(o Orientation, x uint64) uint64 {
	return transforms[o](x)
}

var (
	numLines    = [NumDirections]int{Size, Size, MaxLines, MaxLines}
	lines       [NumDirections][MaxLines]Line
	cellLineIdx [NumCells][NumDirections]int
	mirrorIdx   [NumDirections][NumCells]int
	cellLines   [NumCells][NumDirections]uint64
)

// NumLines returns how many lines an orientation has.
func NumLines(o Orientation) int { return numLines[o] }

// LineAt returns line i of orientation o.
func LineAt(o Orientation, i int) Line { return lines[o][i] }

// LineOf returns which line of orientation o passes through idx.
func LineOf(idx int, o Orientation) int { return cellLineIdx[idx][o] }

// MirrorIndex returns where cell idx lands after Transform(o, ...).
func MirrorIndex(o Orientation, idx int) int { return mirrorIdx[o][idx] }

// CellMask returns the untransformed mask of the whole line of orientation o
// through idx.
func CellMask(idx int, o Orientation) uint64 { return cellLines[idx][o] }

func lineID(o Orientation, row, col int) int {
	switch o {
	case Horizontal:
		return row
	case Vertical:
		return col
	case Diagonal:
		return row - col + Size - 1
	default:
		return row + col
	}
}

func init() {
	var untransformed [NumDirections][MaxLines]uint64
	for idx := 0; idx < NumCells; idx++ {
		row, col := RowCol(idx)
		for o := Orientation(0); o < NumDirections; o++ {
			id := lineID(o, row, col)
			m := bits.TrailingZeros64(Transform(o, uint64(1)<<uint(idx)))
			cellLineIdx[idx][o] = id
			mirrorIdx[o][idx] = m
			lines[o][id].Rank = uint8(m / Size)
			lines[o][id].Mask |= 1 << uint(m%Size)
			untransformed[o][id] |= uint64(1) << uint(idx)
		}
	}
	for o := Orientation(0); o < NumDirections; o++ {
		for id := 0; id < numLines[o]; id++ {
			lines[o][id].Length = bits.OnesCount8(lines[o][id].Mask)
		}
	}
	for idx := 0; idx < NumCells; idx++ {
		for o := Orientation(0); o < NumDirections; o++ {
			cellLines[idx][o] = untransformed[o][cellLineIdx[idx][o]]
		}
	}
}

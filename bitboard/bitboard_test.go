package bitboard

import (
	"math/bits"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func cells(coords ...[2]int) uint64 {
	var x uint64
	for _, c := range coords {
		x |= Bit(c[0], c[1])
	}
	return x
}

func TestShiftsDoNotWrap(t *testing.T) {
	is := is.New(t)
	is.Equal(East(ColH), Empty)
	is.Equal(West(ColA), Empty)
	is.Equal(SouthEast(ColH), Empty)
	is.Equal(NorthWest(ColA), Empty)
	is.Equal(North(Bit(0, 3)), Empty)
	is.Equal(South(Bit(7, 3)), Empty)
	is.Equal(East(Bit(2, 3)), Bit(2, 4))
	is.Equal(SouthWest(Bit(2, 3)), Bit(3, 2))
	is.Equal(NorthEast(Bit(2, 3)), Bit(1, 4))
}

func TestDilate(t *testing.T) {
	is := is.New(t)
	d := Dilate(Bit(0, 0))
	is.Equal(d, cells([2]int{0, 1}, [2]int{1, 0}, [2]int{1, 1}))

	d = Dilate(Bit(4, 4))
	is.Equal(PopCount(d), 8)
	is.Equal(d&Bit(4, 4), Empty)

	// a stone on the right edge never leaks into column A
	d = Dilate(Bit(3, 7))
	is.Equal(d&ColA, Empty)
	is.Equal(PopCount(d), 5)
}

func TestHasFive(t *testing.T) {
	type tc struct {
		name  string
		board uint64
		five  bool
	}
	cases := []tc{
		{"row", cells([2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}, [2]int{2, 4}, [2]int{2, 5}), true},
		{"column", cells([2]int{3, 6}, [2]int{4, 6}, [2]int{5, 6}, [2]int{6, 6}, [2]int{7, 6}), true},
		{"diagonal", cells([2]int{0, 0}, [2]int{1, 1}, [2]int{2, 2}, [2]int{3, 3}, [2]int{4, 4}), true},
		{"anti-diagonal", cells([2]int{0, 7}, [2]int{1, 6}, [2]int{2, 5}, [2]int{3, 4}, [2]int{4, 3}), true},
		{"four", cells([2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}, [2]int{2, 4}), false},
		{"wrapped row", cells([2]int{0, 5}, [2]int{0, 6}, [2]int{0, 7}, [2]int{1, 0}, [2]int{1, 1}), false},
		{"wrapped diagonal", cells([2]int{0, 5}, [2]int{1, 6}, [2]int{2, 7}, [2]int{3, 0}, [2]int{4, 1}), false},
		{"gap", cells([2]int{5, 0}, [2]int{5, 1}, [2]int{5, 3}, [2]int{5, 4}, [2]int{5, 5}), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.five, HasFive(c.board))
		})
	}
}

func TestWinsThroughAgreesWithHasFive(t *testing.T) {
	is := is.New(t)
	row := cells([2]int{6, 3}, [2]int{6, 4}, [2]int{6, 5}, [2]int{6, 6}, [2]int{6, 7})
	for idx := 0; idx < NumCells; idx++ {
		through := CellMask(idx, Horizontal) | CellMask(idx, Vertical) |
			CellMask(idx, Diagonal) | CellMask(idx, AntiDiagonal)
		is.Equal(WinsThrough(row, idx), HasFive(row&through))
	}
	// any cell of row 6 sees the five, even outside the run
	is.True(WinsThrough(row, Index(6, 0)))
	is.True(!WinsThrough(row, Index(5, 0)))
	anti := cells([2]int{3, 4}, [2]int{4, 3}, [2]int{5, 2}, [2]int{6, 1}, [2]int{7, 0})
	is.True(WinsThrough(anti, Index(5, 2)))
	is.True(!WinsThrough(anti, Index(5, 3)))
}

func TestTransformsAreInvertible(t *testing.T) {
	is := is.New(t)
	samples := []uint64{0, Full, 0x8142241818244281, 0x00000000000000FF, 0x0123456789ABCDEF,
		0xF0E1D2C3B4A59687}
	for _, x := range samples {
		is.Equal(FlipVertical(FlipVertical(x)), x)
		is.Equal(FlipDiagA1H8(FlipDiagA1H8(x)), x)
		is.Equal(FlipAntiDiag(FlipAntiDiag(x)), x)
		is.Equal(Rotate90Inverse(Rotate90(x)), x)
		is.Equal(Rotate45CWInverse(Rotate45CW(x)), x)
		is.Equal(Rotate45CCWInverse(Rotate45CCW(x)), x)
		is.Equal(bits.OnesCount64(Rotate45CW(x)), bits.OnesCount64(x))
	}
}

func TestTransformCellMapping(t *testing.T) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			x := Bit(r, c)
			assert.Equal(t, Bit(Size-1-r, c), FlipVertical(x))
			assert.Equal(t, Bit(c, r), FlipDiagA1H8(x))
			assert.Equal(t, Bit(Size-1-c, Size-1-r), FlipAntiDiag(x))
			assert.Equal(t, Bit(Size-1-c, r), Rotate90(x))
			assert.Equal(t, Bit(((r-c)%Size+Size)%Size, c), Rotate45CW(x))
			assert.Equal(t, Bit((r+c+1)%Size, c), Rotate45CCW(x))
		}
	}
}

func TestLineTables(t *testing.T) {
	is := is.New(t)
	is.Equal(NumLines(Horizontal), 8)
	is.Equal(NumLines(Diagonal), 15)

	total := 0
	for o := Orientation(0); o < NumDirections; o++ {
		for i := 0; i < NumLines(o); i++ {
			total += LineAt(o, i).Length
		}
		// every orientation partitions the board
		var union uint64
		for i := 0; i < NumLines(o); i++ {
			l := LineAt(o, i)
			union |= uint64(l.Mask) << (Size * uint(l.Rank))
		}
		is.Equal(union, Full)
	}
	is.Equal(total, 4*NumCells)

	// main diagonal and main anti-diagonal are full length
	is.Equal(LineAt(Diagonal, LineOf(Index(3, 3), Diagonal)).Length, 8)
	is.Equal(LineAt(AntiDiagonal, LineOf(Index(0, 7), AntiDiagonal)).Length, 8)
	is.Equal(LineAt(AntiDiagonal, LineOf(Index(0, 0), AntiDiagonal)).Length, 1)
}

func TestExtractRecoversLine(t *testing.T) {
	is := is.New(t)
	diag := cells([2]int{1, 0}, [2]int{2, 1}, [2]int{4, 3}, [2]int{7, 6})
	noise := cells([2]int{0, 0}, [2]int{1, 1}, [2]int{2, 0})
	l := LineAt(Diagonal, LineOf(Index(1, 0), Diagonal))
	got := l.Extract(Transform(Diagonal, diag|noise))
	is.Equal(bits.OnesCount64(got), 4)
	is.Equal(l.Length, 7)

	for idx := 0; idx < NumCells; idx++ {
		for o := Orientation(0); o < NumDirections; o++ {
			m := MirrorIndex(o, idx)
			is.Equal(Transform(o, uint64(1)<<uint(idx)), uint64(1)<<uint(m))
			is.Equal(CellMask(idx, o)&(uint64(1)<<uint(idx)) != 0, true)
		}
	}
}

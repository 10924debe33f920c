// Package move holds the single-cell move type and its board coordinates.
package move

import (
	"errors"
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/domino14/gomoku/bitboard"
)

// Move is a cell index in [0, bitboard.NumCells). Moves are plain values and
// never change once created.
type Move uint8

// InvalidMove marks the absence of a move, e.g. an empty hash-move slot.
const InvalidMove Move = 0xFF

var ErrBadCoordinate = errors.New("bad coordinate")

var reCoords, reRowCol *regexp.Regexp

func init() {
	reCoords = regexp.MustCompile(`^(?P<col>[a-zA-Z])(?P<row>[0-9]+)$`)
	reRowCol = regexp.MustCompile(`^(?P<row>[0-9]+)\s*[,\s]\s*(?P<col>[0-9]+)$`)
}

// FromRowCol builds a move from zero-based coordinates.
func FromRowCol(row, col int) Move {
	if !bitboard.OnBoard(row, col) {
		return InvalidMove
	}
	return Move(bitboard.Index(row, col))
}

func (m Move) Valid() bool {
	return m < bitboard.NumCells
}

func (m Move) Row() int {
	return int(m) / bitboard.Size
}

func (m Move) Col() int {
	return int(m) % bitboard.Size
}

// Bit returns the single-bit mask of the cell.
func (m Move) Bit() uint64 {
	return uint64(1) << uint(m)
}

// String renders the move as a column letter and one-based row, e.g. "d5".
func (m Move) String() string {
	if !m.Valid() {
		return "--"
	}
	return string(rune('a'+m.Col())) + strconv.Itoa(m.Row()+1)
}

// Parse accepts either board coordinates ("d5", "D5") or a zero-based
// "row,col" pair ("4,3").
func Parse(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if matches := reCoords.FindStringSubmatch(s); len(matches) == 3 {
		col := int(strings.ToLower(matches[1])[0] - 'a')
		row, err := strconv.Atoi(matches[2])
		if err != nil {
			return InvalidMove, fmt.Errorf("%w: %s", ErrBadCoordinate, s)
		}
		return checked(row-1, col, s)
	}
	if matches := reRowCol.FindStringSubmatch(s); len(matches) == 3 {
		row, err1 := strconv.Atoi(matches[1])
		col, err2 := strconv.Atoi(matches[2])
		if err1 != nil || err2 != nil {
			return InvalidMove, fmt.Errorf("%w: %s", ErrBadCoordinate, s)
		}
		return checked(row, col, s)
	}
	return InvalidMove, fmt.Errorf("%w: %s", ErrBadCoordinate, s)
}

func checked(row, col int, orig string) (Move, error) {
	if !bitboard.OnBoard(row, col) {
		return InvalidMove, fmt.Errorf("%w: %s is off the board", ErrBadCoordinate, orig)
	}
	return FromRowCol(row, col), nil
}

// FromMask lists the cells of a bitmask in increasing index order.
func FromMask(mask uint64, buf []Move) []Move {
	buf = buf[:0]
	for mask != 0 {
		idx := bits.TrailingZeros64(mask)
		buf = append(buf, Move(idx))
		mask &= mask - 1
	}
	return buf
}

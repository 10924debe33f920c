package board

import (
	"strconv"
	"strings"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/move"
)

func (b *Board) String() string {
	return b.ToDisplayText('X', 'O')
}

// ToDisplayText draws the grid with row numbers and column letters. The
// last move is wrapped in brackets.
func (b *Board) ToDisplayText(mine, theirs byte) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < bitboard.Size; c++ {
		sb.WriteByte(' ')
		sb.WriteByte(byte('a' + c))
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	last := b.LastMove()
	for r := 0; r < bitboard.Size; r++ {
		label := strconv.Itoa(r + 1)
		sb.WriteString(strings.Repeat(" ", 2-len(label)) + label + " ")
		for c := 0; c < bitboard.Size; c++ {
			m := move.FromRowCol(r, c)
			sym := byte('.')
			switch b.At(m) {
			case Me:
				sym = mine
			case Opponent:
				sym = theirs
			}
			if m == last {
				sb.WriteByte('[')
				sb.WriteByte(sym)
				sb.WriteByte(']')
			} else {
				sb.WriteByte(' ')
				sb.WriteByte(sym)
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

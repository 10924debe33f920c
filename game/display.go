package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/move"
)

func addText(lines []string, row int, hpad int, text string) {
	if row >= len(lines) {
		return
	}
	lines[row] = lines[row] + strings.Repeat(" ", hpad) + text
}

func (g *Game) boardText() []string {
	lines := make([]string, 0, bitboard.Size+1)
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < bitboard.Size; c++ {
		sb.WriteString(" " + string(rune('a'+c)) + " ")
	}
	lines = append(lines, sb.String())
	last := g.LastMove()
	for r := 0; r < bitboard.Size; r++ {
		sb.Reset()
		label := strconv.Itoa(r + 1)
		sb.WriteString(strings.Repeat(" ", 2-len(label)) + label + " ")
		for c := 0; c < bitboard.Size; c++ {
			m := move.FromRowCol(r, c)
			sym := string(g.At(m).Symbol())
			if m == last {
				sb.WriteString("[" + sym + "]")
			} else {
				sb.WriteString(" " + sym + " ")
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func (g *Game) playerLine(c Color) string {
	marker := "  "
	if g.Playing() && g.onturn == c {
		marker = "->"
	}
	return fmt.Sprintf("%s %-5s (%c) %d stones", marker, c.String(), c.Symbol(),
		bitboard.PopCount(g.stones[c]))
}

// ToDisplayText renders the board with the players and game status beside
// it.
func (g *Game) ToDisplayText() string {
	bts := g.boardText()
	hpadding := 3
	addText(bts, 1, hpadding, g.playerLine(Black))
	addText(bts, 2, hpadding, g.playerLine(White))
	addText(bts, 4, hpadding, fmt.Sprintf("Turn %d", g.Turn()))
	if last := g.LastMove(); last.Valid() {
		addText(bts, 5, hpadding, fmt.Sprintf("Last move: %v", last))
	}
	switch {
	case g.winner != None:
		addText(bts, 7, hpadding, fmt.Sprintf("Game is over. %s wins.", g.winner))
	case g.IsDraw():
		addText(bts, 7, hpadding, "Game is over. It is a draw.")
	}
	return strings.Join(bts, "\n") + "\n"
}

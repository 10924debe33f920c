package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/move"
)

func play(t *testing.T, g *Game, coords ...string) {
	t.Helper()
	for _, c := range coords {
		m, err := move.Parse(c)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.PlayMove(m); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTurnOrderAndWin(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	is.Equal(g.PlayerOnTurn(), Black)
	// black plays column a, white column b
	play(t, g, "a1", "b1", "a2", "b2", "a3", "b3", "a4", "b4")
	is.True(g.Playing())
	play(t, g, "a5")
	is.Equal(g.Winner(), Black)
	is.True(!g.Playing())

	err := g.PlayMove(move.FromRowCol(7, 7))
	is.True(errors.Is(err, ErrGameOver))

	is.NoErr(g.UnplayLastMove())
	is.Equal(g.Winner(), None)
	is.Equal(g.PlayerOnTurn(), Black)
	is.Equal(g.Turn(), 8)
}

func TestOccupied(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	play(t, g, "d4")
	err := g.PlayMove(move.FromRowCol(3, 3))
	is.True(errors.Is(err, ErrOccupied))
	is.True(errors.Is(g.PlayMove(move.InvalidMove), move.ErrBadCoordinate))
	is.Equal(g.PlayerOnTurn(), White)
}

func TestUndoEmpty(t *testing.T) {
	is := is.New(t)
	is.True(errors.Is(NewGame().UnplayLastMove(), ErrNothingToUndo))
}

func TestGridRoundTrip(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	play(t, g, "d4", "e5", "c3")
	gr := g.Grid()
	is.Equal(gr[3][3], Black)
	is.Equal(gr[4][4], White)
	is.Equal(gr.At(move.FromRowCol(2, 2)), Black)

	g2, err := FromGrid(gr)
	is.NoErr(err)
	is.Equal(g2.PlayerOnTurn(), White)
	is.Equal(g2.Stones(Black), g.Stones(Black))

	var bad Grid
	bad[0][0], bad[0][1], bad[0][2] = White, White, Black
	_, err = FromGrid(bad)
	is.True(err != nil)
}

func TestDraw(t *testing.T) {
	is := is.New(t)
	// staggered XXOO rows never line up five
	var gr Grid
	for r := 0; r < bitboard.Size; r++ {
		for c := 0; c < bitboard.Size; c++ {
			if ((c+2*(r%2)+(r/2)%2)/2)%2 == 0 {
				gr[r][c] = Black
			} else {
				gr[r][c] = White
			}
		}
	}
	g, err := FromGrid(gr)
	is.NoErr(err)
	is.Equal(g.Winner(), None)
	is.True(g.IsDraw())
	is.True(!g.Playing())
	is.True(strings.Contains(g.ToDisplayText(), "draw"))
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	play(t, g, "d4", "e5")
	txt := g.ToDisplayText()
	is.True(strings.Contains(txt, "[O]"))
	is.True(strings.Contains(txt, "-> black"))
	is.True(strings.Contains(txt, "Last move: e5"))
}

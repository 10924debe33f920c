// Package game is the authoritative game loop state: a colour grid, turn
// order, and the win/draw result. The engine never sees this type directly;
// it reads a Grid snapshot each turn.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/move"
)

// Color is the owner of a grid cell.
type Color uint8

const (
	None Color = iota
	Black
	White
)

func (c Color) Other() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return None
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "none"
}

// Symbol is the one-character display form.
func (c Color) Symbol() byte {
	switch c {
	case Black:
		return 'X'
	case White:
		return 'O'
	}
	return '.'
}

// ParseColor accepts "black"/"white" and their first letters.
func ParseColor(s string) (Color, error) {
	switch s {
	case "black", "b", "x", "X":
		return Black, nil
	case "white", "w", "o", "O":
		return White, nil
	}
	return None, fmt.Errorf("unknown color %q", s)
}

// Grid is the per-cell colour view handed to players, indexed [row][col].
type Grid [bitboard.Size][bitboard.Size]Color

// Masks splits a grid into one bitboard per colour.
func (gr *Grid) Masks() (black, white uint64) {
	for r := 0; r < bitboard.Size; r++ {
		for c := 0; c < bitboard.Size; c++ {
			switch gr[r][c] {
			case Black:
				black |= bitboard.Bit(r, c)
			case White:
				white |= bitboard.Bit(r, c)
			}
		}
	}
	return black, white
}

func (gr *Grid) At(m move.Move) Color {
	return gr[m.Row()][m.Col()]
}

var (
	ErrOccupied      = errors.New("cell is occupied")
	ErrGameOver      = errors.New("game is over")
	ErrNothingToUndo = errors.New("no moves to undo")
)

type Game struct {
	stones  [3]uint64 // indexed by Color; stones[None] is unused
	onturn  Color
	winner  Color
	history []move.Move
}

// NewGame starts an empty board with Black to move.
func NewGame() *Game {
	return &Game{onturn: Black, history: make([]move.Move, 0, bitboard.NumCells)}
}

// FromGrid builds a game from a position. The side to move is inferred
// from the stone counts, Black moving first.
func FromGrid(gr Grid) (*Game, error) {
	g := NewGame()
	black, white := gr.Masks()
	nb, nw := bitboard.PopCount(black), bitboard.PopCount(white)
	if nb != nw && nb != nw+1 {
		return nil, fmt.Errorf("impossible stone counts: %d black, %d white", nb, nw)
	}
	g.stones[Black], g.stones[White] = black, white
	if nb > nw {
		g.onturn = White
	}
	switch {
	case bitboard.HasFive(black):
		g.winner = Black
	case bitboard.HasFive(white):
		g.winner = White
	}
	return g, nil
}

func (g *Game) PlayerOnTurn() Color { return g.onturn }
func (g *Game) Winner() Color       { return g.winner }
func (g *Game) Turn() int           { return len(g.history) }
func (g *Game) Occupied() uint64    { return g.stones[Black] | g.stones[White] }
func (g *Game) Stones(c Color) uint64 {
	if c == None {
		return ^g.Occupied()
	}
	return g.stones[c]
}

// Playing reports whether moves can still be made.
func (g *Game) Playing() bool {
	return g.winner == None && g.Occupied() != bitboard.Full
}

func (g *Game) IsDraw() bool {
	return g.winner == None && g.Occupied() == bitboard.Full
}

// History returns the moves played since the game (or position) started.
func (g *Game) History() []move.Move {
	return append([]move.Move(nil), g.history...)
}

func (g *Game) LastMove() move.Move {
	if len(g.history) == 0 {
		return move.InvalidMove
	}
	return g.history[len(g.history)-1]
}

// Grid returns a snapshot of the board.
func (g *Game) Grid() Grid {
	var gr Grid
	for r := 0; r < bitboard.Size; r++ {
		for c := 0; c < bitboard.Size; c++ {
			gr[r][c] = g.At(move.FromRowCol(r, c))
		}
	}
	return gr
}

func (g *Game) At(m move.Move) Color {
	switch {
	case g.stones[Black]&m.Bit() != 0:
		return Black
	case g.stones[White]&m.Bit() != 0:
		return White
	}
	return None
}

// PlayMove places a stone for the player on turn.
func (g *Game) PlayMove(m move.Move) error {
	if !g.Playing() {
		return ErrGameOver
	}
	if !m.Valid() {
		return move.ErrBadCoordinate
	}
	if g.Occupied()&m.Bit() != 0 {
		return fmt.Errorf("%w: %v", ErrOccupied, m)
	}
	c := g.onturn
	g.stones[c] |= m.Bit()
	g.history = append(g.history, m)
	if bitboard.WinsThrough(g.stones[c], int(m)) {
		g.winner = c
		log.Debug().Str("winner", c.String()).Int("turn", g.Turn()).Msg("game-won")
	}
	g.onturn = c.Other()
	return nil
}

// UnplayLastMove takes back the most recent move.
func (g *Game) UnplayLastMove() error {
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	m := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	c := g.onturn.Other()
	g.stones[c] &^= m.Bit()
	g.onturn = c
	g.winner = None
	return nil
}

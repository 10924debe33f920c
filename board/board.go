// Package board keeps the mutable search position: stone masks mirrored into
// every line orientation, the Zobrist key, and a memoized score per line.
// All updates are incremental and undone from an explicit stack.
package board

import (
	"fmt"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/eval"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/zobrist"
)

// Side is an owner of stones. The board is always seen from Me's side.
type Side uint8

const (
	Me Side = iota
	Opponent
	NoSide
)

func (s Side) Other() Side {
	switch s {
	case Me:
		return Opponent
	case Opponent:
		return Me
	}
	return NoSide
}

func (s Side) String() string {
	switch s {
	case Me:
		return "me"
	case Opponent:
		return "opponent"
	}
	return "none"
}

func (s Side) zobristState() int {
	if s == Me {
		return zobrist.StateMine
	}
	return zobrist.StateTheirs
}

// undoRecord holds everything MakeMove overwrote.
type undoRecord struct {
	m          move.Move
	side       Side
	hash       uint64
	lineScores [bitboard.NumDirections]int32
	total      int32
	winner     Side
}

type Board struct {
	// Index 0 is the plain layout, the rest are bitboard.Transform images.
	occupied [bitboard.NumDirections]uint64
	mine     [bitboard.NumDirections]uint64

	hash   uint64
	toMove Side
	winner Side

	lineScores [bitboard.NumDirections][bitboard.MaxLines]int32
	total      int32

	history []undoRecord

	z *zobrist.Zobrist
	w *eval.Weights
}

// NewBoard returns an empty board with first to move.
func NewBoard(z *zobrist.Zobrist, w *eval.Weights, first Side) *Board {
	b := &Board{
		z:       z,
		w:       w,
		history: make([]undoRecord, 0, bitboard.NumCells),
	}
	b.Clear(first)
	return b
}

// Clear empties the board.
func (b *Board) Clear(first Side) {
	b.SetPosition(0, 0, first)
}

// SetPosition replaces the whole position and forgets the move history.
func (b *Board) SetPosition(mine, theirs uint64, toMove Side) {
	if mine&theirs != 0 {
		panic(fmt.Sprintf("board: overlapping stone masks %016x %016x", mine, theirs))
	}
	b.history = b.history[:0]
	b.toMove = toMove
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		b.occupied[o] = bitboard.Transform(o, mine|theirs)
		b.mine[o] = bitboard.Transform(o, mine)
	}
	b.hash = b.z.Hash(mine, theirs)
	b.rescoreAll()
	switch {
	case bitboard.HasFive(mine):
		b.winner = Me
	case bitboard.HasFive(theirs):
		b.winner = Opponent
	default:
		b.winner = NoSide
	}
}

func (b *Board) rescoreAll() {
	b.total = 0
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		theirs := b.occupied[o] &^ b.mine[o]
		for i := 0; i < bitboard.MaxLines; i++ {
			if i >= bitboard.NumLines(o) {
				b.lineScores[o][i] = 0
				continue
			}
			s := b.w.LineScore(bitboard.LineAt(o, i), b.mine[o], theirs)
			b.lineScores[o][i] = s
			b.total += s
		}
	}
}

// MakeMove places a stone of side on m. Placing onto an occupied cell is a
// caller bug and panics.
func (b *Board) MakeMove(m move.Move, side Side) {
	idx := int(m)
	bit := m.Bit()
	if !m.Valid() || b.occupied[0]&bit != 0 {
		panic(fmt.Sprintf("board: move %v into occupied or invalid cell", m))
	}
	rec := undoRecord{
		m:      m,
		side:   side,
		hash:   b.hash,
		total:  b.total,
		winner: b.winner,
	}
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		mb := uint64(1) << uint(bitboard.MirrorIndex(o, idx))
		b.occupied[o] |= mb
		if side == Me {
			b.mine[o] |= mb
		}
	}
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		id := bitboard.LineOf(idx, o)
		old := b.lineScores[o][id]
		rec.lineScores[o] = old
		s := b.w.LineScore(bitboard.LineAt(o, id), b.mine[o], b.occupied[o]&^b.mine[o])
		b.lineScores[o][id] = s
		b.total += s - old
	}
	b.hash = b.z.AddStone(b.hash, idx, side.zobristState())
	if b.winner == NoSide && bitboard.WinsThrough(b.Stones(side), idx) {
		b.winner = side
	}
	b.toMove = side.Other()
	b.history = append(b.history, rec)
}

// Undo takes back the last MakeMove. Undoing past the start of the history
// is a caller bug and panics.
func (b *Board) Undo() {
	if len(b.history) == 0 {
		panic("board: undo with empty history")
	}
	rec := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	idx := int(rec.m)
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		mb := uint64(1) << uint(bitboard.MirrorIndex(o, idx))
		b.occupied[o] &^= mb
		b.mine[o] &^= mb
		b.lineScores[o][bitboard.LineOf(idx, o)] = rec.lineScores[o]
	}
	b.hash = rec.hash
	b.total = rec.total
	b.winner = rec.winner
	b.toMove = rec.side
}

func (b *Board) Hash() uint64     { return b.hash }
func (b *Board) ToMove() Side     { return b.toMove }
func (b *Board) Winner() Side     { return b.winner }
func (b *Board) Occupied() uint64 { return b.occupied[0] }
func (b *Board) Empty() uint64    { return ^b.occupied[0] }
func (b *Board) Mine() uint64     { return b.mine[0] }
func (b *Board) Theirs() uint64   { return b.occupied[0] &^ b.mine[0] }

// Stones returns the plain-layout mask of one side.
func (b *Board) Stones(s Side) uint64 {
	if s == Me {
		return b.Mine()
	}
	return b.Theirs()
}

// Mirror returns the occupied and mine masks in orientation o's layout.
func (b *Board) Mirror(o bitboard.Orientation) (uint64, uint64) {
	return b.occupied[o], b.mine[o]
}

func (b *Board) StoneCount() int { return bitboard.PopCount(b.occupied[0]) }

// Plies is the number of moves that can be undone.
func (b *Board) Plies() int { return len(b.history) }

func (b *Board) IsFull() bool { return b.occupied[0] == bitboard.Full }

// Terminal reports a finished game: someone has five or no cell is left.
func (b *Board) Terminal() bool {
	return b.winner != NoSide || b.IsFull()
}

// Score is the heuristic value of the position for Me.
func (b *Board) Score() int32 { return b.total }

// ScoreFor is the heuristic value of the position for side.
func (b *Board) ScoreFor(side Side) int32 {
	if side == Me {
		return b.total
	}
	return -b.total
}

// LineScore returns the memoized score of one line, for Me.
func (b *Board) LineScore(o bitboard.Orientation, line int) int32 {
	return b.lineScores[o][line]
}

func (b *Board) At(m move.Move) Side {
	bit := m.Bit()
	switch {
	case b.mine[0]&bit != 0:
		return Me
	case b.occupied[0]&bit != 0:
		return Opponent
	}
	return NoSide
}

// LastMove returns the most recent move still on the undo stack.
func (b *Board) LastMove() move.Move {
	if len(b.history) == 0 {
		return move.InvalidMove
	}
	return b.history[len(b.history)-1].m
}

// Moves lists the undoable moves, oldest first.
func (b *Board) Moves() []move.Move {
	moves := make([]move.Move, len(b.history))
	for i, rec := range b.history {
		moves[i] = rec.m
	}
	return moves
}

func (b *Board) Weights() *eval.Weights { return b.w }

// Package movegen produces candidate moves from the stone frontier.
package movegen

import (
	"math"
	"math/bits"
	"sort"

	"lukechampine.com/frand"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
)

// Center holds the four middle cells, where the first stone goes.
var Center = bitboard.Bit(3, 3) | bitboard.Bit(3, 4) | bitboard.Bit(4, 3) | bitboard.Bit(4, 4)

// Candidates returns every empty cell touching a stone, diagonals included.
// An empty board has no candidates; the opening is chosen separately.
func Candidates(occupied uint64) uint64 {
	return bitboard.Dilate(occupied) &^ occupied
}

// OpeningMove picks a random centre cell that is still empty. It returns
// InvalidMove if all four are taken.
func OpeningMove(occupied uint64, r *frand.RNG) move.Move {
	cells := move.FromMask(Center&^occupied, nil)
	if len(cells) == 0 {
		return move.InvalidMove
	}
	return cells[r.Intn(len(cells))]
}

// Plays is a reusable move list with an ordering estimate per move.
type Plays struct {
	Moves     []move.Move
	Estimates []int32
}

func NewPlays() *Plays {
	return &Plays{
		Moves:     make([]move.Move, 0, bitboard.NumCells),
		Estimates: make([]int32, 0, bitboard.NumCells),
	}
}

func (p *Plays) Len() int { return len(p.Moves) }
func (p *Plays) Swap(i, j int) {
	p.Estimates[i], p.Estimates[j] = p.Estimates[j], p.Estimates[i]
	p.Moves[i], p.Moves[j] = p.Moves[j], p.Moves[i]
}

// Less sorts by estimate, highest first, then by cell index.
func (p *Plays) Less(i, j int) bool {
	if p.Estimates[i] != p.Estimates[j] {
		return p.Estimates[i] > p.Estimates[j]
	}
	return p.Moves[i] < p.Moves[j]
}

func (p *Plays) reset() {
	p.Moves = p.Moves[:0]
	p.Estimates = p.Estimates[:0]
}

// GenAll fills p with the frontier moves for the side to move, ordered best
// first by the static score of the position each move leads to. hashMove,
// if it is a candidate, goes to the front.
func GenAll(b *board.Board, hashMove move.Move, p *Plays) {
	p.reset()
	side := b.ToMove()
	cands := Candidates(b.Occupied())
	for cands != 0 {
		m := move.Move(bits.TrailingZeros64(cands))
		cands &= cands - 1
		var est int32
		if m == hashMove {
			est = math.MaxInt32
		} else {
			b.MakeMove(m, side)
			est = b.ScoreFor(side)
			b.Undo()
		}
		p.Moves = append(p.Moves, m)
		p.Estimates = append(p.Estimates, est)
	}
	sort.Sort(p)
}

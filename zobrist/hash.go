package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/gomoku/bitboard"
)

const bignum = 1<<63 - 2

// Cell states, used as the second index of the position table.
const (
	StateEmpty = iota
	StateMine
	StateTheirs
	numStates
)

// Zobrist hashes a gomoku position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// Every cell has one key per state. The empty board hashes to the XOR of all
// empty keys, and placing a stone swaps the cell's empty key for the stone's
// key, so the same XOR undoes it. Side to move is not hashed: it follows
// from the stone count.
type Zobrist struct {
	posTable  [bitboard.NumCells][numStates]uint64
	emptyHash uint64
}

// Initialize draws keys from the process-wide entropy source.
func (z *Zobrist) Initialize() {
	z.fill(func() uint64 { return frand.Uint64n(bignum) + 1 })
}

// InitializeFrom draws keys from r, giving reproducible hashes.
func (z *Zobrist) InitializeFrom(r *frand.RNG) {
	z.fill(func() uint64 { return r.Uint64n(bignum) + 1 })
}

func (z *Zobrist) fill(next func() uint64) {
	z.emptyHash = 0
	for i := 0; i < bitboard.NumCells; i++ {
		for j := 0; j < numStates; j++ {
			z.posTable[i][j] = next()
		}
		z.emptyHash ^= z.posTable[i][StateEmpty]
	}
}

func (z *Zobrist) EmptyHash() uint64 {
	return z.emptyHash
}

// Hash computes the key of a position from scratch.
func (z *Zobrist) Hash(mine, theirs uint64) uint64 {
	key := z.emptyHash
	for idx := 0; idx < bitboard.NumCells; idx++ {
		bit := uint64(1) << uint(idx)
		switch {
		case mine&bit != 0:
			key = z.AddStone(key, idx, StateMine)
		case theirs&bit != 0:
			key = z.AddStone(key, idx, StateTheirs)
		}
	}
	return key
}

// AddStone returns key with a stone of the given state placed on idx.
// Calling it again with the same arguments removes the stone.
func (z *Zobrist) AddStone(key uint64, idx int, state int) uint64 {
	return key ^ z.posTable[idx][StateEmpty] ^ z.posTable[idx][state]
}

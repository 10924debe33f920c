package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/rng"
)

func TestPlayAndUnplay(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	h := z.EmptyHash()
	h1 := z.AddStone(h, bitboard.Index(3, 3), StateMine)
	h2 := z.AddStone(h1, bitboard.Index(3, 4), StateTheirs)
	is.True(h1 != h)
	is.True(h2 != h1)
	// and back out in reverse order
	is.Equal(z.AddStone(h2, bitboard.Index(3, 4), StateTheirs), h1)
	is.Equal(z.AddStone(h1, bitboard.Index(3, 3), StateMine), h)
}

func TestHashIsOrderIndependent(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.InitializeFrom(rng.New(7))

	placements := []struct {
		idx   int
		state int
	}{
		{bitboard.Index(4, 4), StateMine},
		{bitboard.Index(4, 5), StateTheirs},
		{bitboard.Index(5, 5), StateMine},
		{bitboard.Index(2, 1), StateTheirs},
		{bitboard.Index(0, 7), StateMine},
	}
	fwd := z.EmptyHash()
	for _, p := range placements {
		fwd = z.AddStone(fwd, p.idx, p.state)
	}
	rev := z.EmptyHash()
	for i := len(placements) - 1; i >= 0; i-- {
		rev = z.AddStone(rev, placements[i].idx, placements[i].state)
	}
	is.Equal(fwd, rev)

	mine := bitboard.Bit(4, 4) | bitboard.Bit(5, 5) | bitboard.Bit(0, 7)
	theirs := bitboard.Bit(4, 5) | bitboard.Bit(2, 1)
	is.Equal(z.Hash(mine, theirs), fwd)
	// same cell, different owner
	is.True(z.Hash(theirs, mine) != fwd)
}

func TestSeededKeysRepeat(t *testing.T) {
	is := is.New(t)
	a, b := &Zobrist{}, &Zobrist{}
	a.InitializeFrom(rng.New(99))
	b.InitializeFrom(rng.New(99))
	is.Equal(a.EmptyHash(), b.EmptyHash())
	is.Equal(a.Hash(1, 2), b.Hash(1, 2))
}

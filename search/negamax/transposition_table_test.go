package negamax

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/gomoku/move"
)

func TestTTableEntry(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(16, 0)
	tt.store(9409641586937047728, TableEntry{score: 12, flag: TTUpper, depth: 23, play: move.FromRowCol(2, 3)})

	te, ok := tt.lookup(9409641586937047728)
	is.True(ok)
	is.Equal(te.Depth(), uint8(23))
	is.Equal(te.Flag(), uint8(TTUpper))
	is.Equal(te.Score(), int32(12))
	is.Equal(te.Move(), move.FromRowCol(2, 3))

	// a miss is just a miss
	_, ok = tt.lookup(9409641586937047728 + 1)
	is.True(!ok)
	is.Equal(tt.Stats(), TTStats{Created: 1, Lookups: 2, Hits: 1})
}

func TestTTableEvictsLeastRecentlyUsed(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(4, 0)
	for k := uint64(1); k <= 4; k++ {
		tt.store(k, TableEntry{score: int32(k), flag: TTExact})
	}
	// touch 1 so that 2 becomes the oldest
	_, ok := tt.lookup(1)
	is.True(ok)
	tt.store(5, TableEntry{score: 5, flag: TTExact})

	is.Equal(tt.Len(), 4)
	_, ok = tt.Probe(2)
	is.True(!ok)
	for _, k := range []uint64{1, 3, 4, 5} {
		e, ok := tt.Probe(k)
		is.True(ok)
		is.Equal(e.Score(), int32(k))
	}
}

func TestTTableResetFromMemory(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(0, 0.0001)
	is.True(tt.Capacity() >= minEntries)
	is.True(tt.Capacity() <= maxEntries)

	tt.store(1, TableEntry{flag: TTExact})
	capacity := tt.Capacity()
	tt.Reset(0, 0.0001)
	is.Equal(tt.Capacity(), capacity)
	is.Equal(tt.Len(), 0)
	is.Equal(tt.Stats(), TTStats{})
}

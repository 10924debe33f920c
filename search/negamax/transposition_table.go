package negamax

import (
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/move"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

// Rough cost of one cached entry including the LRU's map slot and list node.
const entrySize = 96

const (
	minEntries = 1 << 12
	maxEntries = 1 << 26
)

type TableEntry struct {
	score int32
	flag  uint8
	depth uint8
	play  move.Move
}

func (t TableEntry) Score() int32    { return t.score }
func (t TableEntry) Flag() uint8     { return t.flag }
func (t TableEntry) Depth() uint8    { return t.depth }
func (t TableEntry) Move() move.Move { return t.play }

// TranspositionTable maps a position hash to its last search result. It is
// a bounded LRU: storing into a full table evicts the least recently touched
// entry. Keys are the raw 64-bit hash with no verification tag, so two
// positions that collide share an entry.
type TranspositionTable struct {
	cache    *simplelru.LRU[uint64, TableEntry]
	capacity int

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
}

// Reset (re)allocates the table. A positive capacity is used as is;
// otherwise the capacity is fractionOfMemory of the system memory.
func (t *TranspositionTable) Reset(capacity int, fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	if capacity <= 0 {
		capacity = int(fractionOfMemory * float64(totalMem) / entrySize)
		capacity = max(capacity, minEntries)
		capacity = min(capacity, maxEntries)
	}
	if t.cache != nil && t.capacity == capacity {
		t.cache.Purge()
	} else {
		// NewLRU only fails on a non-positive size.
		cache, err := simplelru.NewLRU[uint64, TableEntry](max(capacity, 1), nil)
		if err != nil {
			panic(err)
		}
		t.cache = cache
	}
	t.capacity = capacity
	log.Debug().Int("capacity", capacity).
		Int("estimated-total-memory-bytes", capacity*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
	t.resetStats()
}

// Clear drops every entry but keeps the capacity.
func (t *TranspositionTable) Clear() {
	if t.cache != nil {
		t.cache.Purge()
	}
	t.resetStats()
}

func (t *TranspositionTable) resetStats() {
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
}

func (t *TranspositionTable) lookup(zval uint64) (TableEntry, bool) {
	t.lookups.Add(1)
	e, ok := t.cache.Get(zval)
	if ok {
		t.hits.Add(1)
	}
	return e, ok
}

func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	t.cache.Add(zval, tentry)
	t.created.Add(1)
}

// Store writes an entry directly. Search code uses the unexported path;
// this is for seeding positions from outside.
func (t *TranspositionTable) Store(zval uint64, score int32, flag uint8, depth int, play move.Move) {
	t.store(zval, TableEntry{score: score, flag: flag, depth: uint8(depth), play: play})
}

// Probe returns the entry for zval without touching the statistics or the
// recency order.
func (t *TranspositionTable) Probe(zval uint64) (TableEntry, bool) {
	return t.cache.Peek(zval)
}

func (t *TranspositionTable) Len() int      { return t.cache.Len() }
func (t *TranspositionTable) Capacity() int { return t.capacity }

type TTStats struct {
	Created uint64 `yaml:"created"`
	Lookups uint64 `yaml:"lookups"`
	Hits    uint64 `yaml:"hits"`
}

// Since returns the counts accumulated after an earlier snapshot.
func (st TTStats) Since(before TTStats) TTStats {
	return TTStats{
		Created: st.Created - before.Created,
		Lookups: st.Lookups - before.Lookups,
		Hits:    st.Hits - before.Hits,
	}
}

func (t *TranspositionTable) Stats() TTStats {
	return TTStats{
		Created: t.created.Load(),
		Lookups: t.lookups.Load(),
		Hits:    t.hits.Load(),
	}
}

// Package rng builds the deterministic random sources used for tie breaks,
// openings and Zobrist keys.
package rng

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
	"lukechampine.com/frand"
)

const (
	bufSize = 1024
	rounds  = 12
)

// Expand stretches a 64-bit seed into the 32 bytes frand wants. Each
// 8-byte word is the xxhash of the seed and the word's position.
func Expand(seed uint64) [32]byte {
	var out [32]byte
	var in [9]byte
	binary.LittleEndian.PutUint64(in[:8], seed)
	for i := 0; i < 4; i++ {
		in[8] = byte(i)
		binary.LittleEndian.PutUint64(out[i*8:], xxhash.Sum64(in[:]))
	}
	return out
}

// New returns a generator for the given seed. A zero seed means "no seed":
// the generator is keyed from system entropy.
func New(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	s := Expand(seed)
	return FromSeed(s)
}

// FromSeed returns a generator keyed by a raw 32-byte seed.
func FromSeed(seed [32]byte) *frand.RNG {
	return frand.NewCustom(seed[:], bufSize, rounds)
}

// FromString hashes an arbitrary string (a game id, a test name) into a seed.
func FromString(s string) *frand.RNG {
	return New(xxhash.Sum64String(s) | 1)
}

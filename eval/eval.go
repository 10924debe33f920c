// Package eval scores gomoku positions with bit-parallel pattern counts.
//
// Every line (row, column, diagonal, anti-diagonal) is pulled out of a
// transformed bitboard as an 8-bit word, and runs are found by ANDing the
// word with shifted copies of itself. Runs are classified by the cells just
// past their ends: empty cells keep a run alive, stones of the other colour
// and the board edge block it.
package eval

import (
	"math/bits"

	"github.com/domino14/gomoku/bitboard"
)

// Weights are the heuristic value of each pattern. Defaults must keep the
// order Five > OpenFour > Four > OpenThree > Three > Two > One > 0 > Dead.
type Weights struct {
	Five      int32 `yaml:"five"`
	OpenFour  int32 `yaml:"open_four"`
	Four      int32 `yaml:"four"`
	OpenThree int32 `yaml:"open_three"`
	Three     int32 `yaml:"three"`
	Dead      int32 `yaml:"dead"`
	Two       int32 `yaml:"two"`
	One       int32 `yaml:"one"`
}

func DefaultWeights() Weights {
	return Weights{
		Five:      1_000_000,
		OpenFour:  50_000,
		Four:      8_000,
		OpenThree: 4_000,
		Three:     500,
		Dead:      -20,
		Two:       8,
		One:       2,
	}
}

// Patterns counts the runs of one colour.
type Patterns struct {
	Fives      int
	OpenFours  int
	Fours      int
	DeadFours  int
	OpenThrees int
	Threes     int
	DeadThrees int
	Twos       int
	Ones       int
}

func (p *Patterns) add(o Patterns) {
	p.Fives += o.Fives
	p.OpenFours += o.OpenFours
	p.Fours += o.Fours
	p.DeadFours += o.DeadFours
	p.OpenThrees += o.OpenThrees
	p.Threes += o.Threes
	p.DeadThrees += o.DeadThrees
	p.Twos += o.Twos
	p.Ones += o.Ones
}

// Score weighs the counts.
func (w *Weights) Score(p Patterns) int32 {
	return w.Five*int32(p.Fives) +
		w.OpenFour*int32(p.OpenFours) +
		w.Four*int32(p.Fours) +
		w.Dead*int32(p.DeadFours+p.DeadThrees) +
		w.OpenThree*int32(p.OpenThrees) +
		w.Three*int32(p.Threes) +
		w.Two*int32(p.Twos) +
		w.One*int32(p.Ones)
}

func popcnt(x uint64) int { return bits.OnesCount64(x) }

// CountLine classifies the runs of s within one line. s holds the colour's
// stones and e the empty cells, both already restricted to the line. Bit p
// of a run word marks a run that starts at cell p.
func CountLine(s, e uint64) Patterns {
	var p Patterns

	five := s & (s >> 1) & (s >> 2) & (s >> 3) & (s >> 4)
	if five != 0 {
		p.Fives = popcnt(five)
		return p
	}

	four := s & (s >> 1) & (s >> 2) & (s >> 3)
	if four != 0 {
		left := e << 1
		right := e >> 4
		p.OpenFours = popcnt(four & left & right)
		p.Fours = popcnt(four & (left ^ right))
		p.DeadFours = popcnt(four &^ (left | right))
		s &^= four | four<<1 | four<<2 | four<<3
	}

	three := s & (s >> 1) & (s >> 2)
	if three != 0 {
		l1, l2 := e<<1, e<<2
		r1, r2 := e>>3, e>>4
		open := three & l1 & r1 & (l2 | r2)
		half := three & ((l1 & l2) | (r1 & r2) | (l1 & r1)) &^ open
		p.OpenThrees = popcnt(open)
		p.Threes = popcnt(half)
		p.DeadThrees = popcnt(three &^ (open | half))
		s &^= three | three<<1 | three<<2
	}

	two := s & (s >> 1)
	p.Twos = popcnt(two)
	s &^= two | two<<1
	p.Ones = popcnt(s)
	return p
}

// ScoreLine is Score(CountLine(s, e)).
func (w *Weights) ScoreLine(s, e uint64) int32 {
	return w.Score(CountLine(s, e))
}

// LineScore scores one line from the first colour's point of view. mine and
// theirs must already be in the line's transformed layout. Lines too short
// to hold five stones are worth nothing to either side.
func (w *Weights) LineScore(l bitboard.Line, mine, theirs uint64) int32 {
	if l.Length < bitboard.WinLength {
		return 0
	}
	s := l.Extract(mine)
	t := l.Extract(theirs)
	e := uint64(l.Mask) &^ (s | t)
	return w.ScoreLine(s, e) - w.ScoreLine(t, e)
}

// Evaluate scores the whole board for the owner of mine. It is antisymmetric:
// Evaluate(a, b) == -Evaluate(b, a).
func (w *Weights) Evaluate(mine, theirs uint64) int32 {
	var score int32
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		tm := bitboard.Transform(o, mine)
		tt := bitboard.Transform(o, theirs)
		for i := 0; i < bitboard.NumLines(o); i++ {
			score += w.LineScore(bitboard.LineAt(o, i), tm, tt)
		}
	}
	return score
}

// Breakdown counts patterns for both colours across the whole board.
func Breakdown(mine, theirs uint64) (Patterns, Patterns) {
	var pm, pt Patterns
	for o := bitboard.Orientation(0); o < bitboard.NumDirections; o++ {
		tm := bitboard.Transform(o, mine)
		tt := bitboard.Transform(o, theirs)
		for i := 0; i < bitboard.NumLines(o); i++ {
			l := bitboard.LineAt(o, i)
			if l.Length < bitboard.WinLength {
				continue
			}
			s, t := l.Extract(tm), l.Extract(tt)
			e := uint64(l.Mask) &^ (s | t)
			pm.add(CountLine(s, e))
			pt.add(CountLine(t, e))
		}
	}
	return pm, pt
}

// Package stats keeps running aggregates for self-play: per-move search
// figures and per-engine match results.
package stats

import (
	"fmt"
	"math"
)

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford) with min and max.
type Statistic struct {
	n        int
	last     float64
	mean     float64
	m2       float64
	min, max float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.n++
	if s.n == 1 {
		s.mean, s.m2 = val, 0
		s.min, s.max = val, val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = math.Min(s.min, val)
	s.max = math.Max(s.max, val)
}

func (s *Statistic) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.mean
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 { return math.Sqrt(s.Variance()) }
func (s *Statistic) Last() float64  { return s.last }
func (s *Statistic) Min() float64   { return s.min }
func (s *Statistic) Max() float64   { return s.max }
func (s *Statistic) Iterations() int { return s.n }

// StandardError is the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

// Outcome of one game from one engine's point of view.
type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	}
	return "loss"
}

// Tally counts match results for one engine.
type Tally struct {
	Wins   int
	Draws  int
	Losses int
}

func (t *Tally) Add(o Outcome) {
	switch o {
	case Win:
		t.Wins++
	case Draw:
		t.Draws++
	default:
		t.Losses++
	}
}

func (t Tally) Games() int { return t.Wins + t.Draws + t.Losses }

// Score is the match score as a fraction, a draw counting one half.
func (t Tally) Score() float64 {
	g := t.Games()
	if g == 0 {
		return 0
	}
	return (float64(t.Wins) + 0.5*float64(t.Draws)) / float64(g)
}

// ScoreInterval returns the normal-approximation interval around Score at
// the given confidence, in percent.
func (t Tally) ScoreInterval(confidence float64) (lo, hi float64) {
	g := t.Games()
	if g == 0 {
		return 0, 1
	}
	p := t.Score()
	var st Statistic
	for i := 0; i < t.Wins; i++ {
		st.Push(1)
	}
	for i := 0; i < t.Draws; i++ {
		st.Push(0.5)
	}
	for i := 0; i < t.Losses; i++ {
		st.Push(0)
	}
	half := ZVal(confidence) * st.StandardError()
	return math.Max(0, p-half), math.Min(1, p+half)
}

func (t Tally) String() string {
	return fmt.Sprintf("+%d =%d -%d (%.1f%%)", t.Wins, t.Draws, t.Losses, 100*t.Score())
}

package negamax

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
)

const (
	// WinScore is the value of a five. Terminal scores subtract the number of
	// stones on the board, so quicker wins are worth more and slower losses
	// cost less. Every heuristic score stays far below WinScore - NumCells.
	WinScore = int32(500_000_000)
	// HugeNumber bounds every score the search can return.
	HugeNumber = WinScore + 1_000

	DefaultMaxDepth = 200
)

var (
	ErrNoSolution = errors.New("no search pass completed")
	ErrNoMoves    = errors.New("no candidate moves")
)

// IsWin reports whether a score proves a forced win for the side it is
// scored for.
func IsWin(score int32) bool {
	return score > WinScore-bitboard.NumCells-1
}

// IsLoss reports whether a score proves a forced loss.
func IsLoss(score int32) bool {
	return score < -(WinScore - bitboard.NumCells - 1)
}

// LogIteration is one completed deepening pass, serialized to the log
// stream.
type LogIteration struct {
	Depth     int       `yaml:"depth"`
	Score     int32     `yaml:"score"`
	Best      []string  `yaml:"best,flow"`
	Nodes     uint64    `yaml:"nodes"`
	ElapsedMS int64     `yaml:"elapsed_ms"`
	Plays     []LogPlay `yaml:"plays"`
}

type LogPlay struct {
	Play  string `yaml:"play"`
	Score int32  `yaml:"score"`
}

// Result is the outcome of the deepest completed pass.
type Result struct {
	// Best is one of Ties, picked uniformly at random.
	Best  move.Move
	Ties  []move.Move
	Score int32
	Depth int
	Nodes uint64
	// Fallback is the top statically ordered root move. It is set even when
	// no pass completes.
	Fallback move.Move
	Elapsed  time.Duration
	TTStats  TTStats
	// PV follows hash moves from the root; empty without a table.
	PV PVLine
}

type Solver struct {
	board  *board.Board
	ttable *TranspositionTable
	rng    *frand.RNG

	// per remaining depth; a recursion chain never has two frames at the
	// same depth.
	plays []*movegen.Plays

	rootMoves  []move.Move
	rootScores []int32

	pruningOptim            bool
	transpositionTableOptim bool
	iterativeDeepeningOptim bool

	currentIDDepth int
	nodes          atomic.Uint64

	logStream io.Writer
}

// Init readies the solver. tt may be shared by successive searches of the
// same game but never by two searches at once. A nil rng breaks root ties
// with the process-wide entropy source.
func (s *Solver) Init(tt *TranspositionTable, rng *frand.RNG) {
	s.ttable = tt
	s.rng = rng
	if s.rng == nil {
		s.rng = frand.New()
	}
	s.pruningOptim = true
	s.transpositionTableOptim = tt != nil
	s.iterativeDeepeningOptim = true
}

// SetPruning toggles alpha-beta cutoffs. With pruning off the search visits
// every node of the tree.
func (s *Solver) SetPruning(on bool) { s.pruningOptim = on }

func (s *Solver) SetTranspositionTableOptim(on bool) {
	s.transpositionTableOptim = on && s.ttable != nil
}

// SetIterativeDeepening toggles the 2, 4, 6... schedule. When off, Solve
// runs a single pass at the requested depth.
func (s *Solver) SetIterativeDeepening(on bool) { s.iterativeDeepeningOptim = on }

func (s *Solver) SetLogStream(l io.Writer) { s.logStream = l }

func (s *Solver) Nodes() uint64 { return s.nodes.Load() }

func (s *Solver) TranspositionTable() *TranspositionTable { return s.ttable }

func (s *Solver) playsAt(depth int) *movegen.Plays {
	for len(s.plays) <= depth {
		s.plays = append(s.plays, movegen.NewPlays())
	}
	return s.plays[depth]
}

// depthSchedule lists the pass depths: even depths from 2 up to maxDepth,
// with an odd maxDepth appended as the last pass. Depths below 1 search one
// ply so that an immediate win is always seen.
func depthSchedule(maxDepth int, deepen bool) []int {
	if maxDepth < 2 || !deepen {
		return []int{max(1, maxDepth)}
	}
	var ds []int
	for d := 2; d <= maxDepth; d += 2 {
		ds = append(ds, d)
	}
	if maxDepth%2 == 1 {
		ds = append(ds, maxDepth)
	}
	return ds
}

// Solve searches b for the side to move until ctx is done or maxDepth is
// reached. b is mutated during the search and restored before returning.
// Running out of time is not an error as long as one pass completed; if none
// did, Solve returns ErrNoSolution along with a Result whose Fallback is set.
func (s *Solver) Solve(ctx context.Context, b *board.Board, maxDepth int) (Result, error) {
	tstart := time.Now()
	s.board = b
	s.nodes.Store(0)
	var ttBefore TTStats
	if s.ttable != nil {
		ttBefore = s.ttable.Stats()
	}

	rootPlays := movegen.NewPlays()
	movegen.GenAll(b, move.InvalidMove, rootPlays)
	if rootPlays.Len() == 0 || b.Terminal() {
		return Result{Best: move.InvalidMove, Fallback: move.InvalidMove}, ErrNoMoves
	}
	s.rootMoves = append(s.rootMoves[:0], rootPlays.Moves...)
	s.rootScores = append(s.rootScores[:0], rootPlays.Estimates...)

	res := Result{Best: move.InvalidMove, Fallback: s.rootMoves[0]}
	log.Debug().Int("max-depth", maxDepth).Int("root-moves", len(s.rootMoves)).
		Msg("negamax-solve-config")

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		err := s.iterativelyDeepen(ctx, maxDepth, &res)
		done <- true
		return err
	})

	err := g.Wait()
	res.Nodes = s.nodes.Load()
	res.Elapsed = time.Since(tstart)
	if s.ttable != nil {
		res.TTStats = s.ttable.Stats().Since(ttBefore)
	}
	if res.Depth > 0 {
		res.PV = PVLine{Moves: s.PrincipalVariation(b, MaxPVLength), Score: res.Score}
		log.Debug().Str("pv", res.PV.NLBString()).Msg("principal-variation")
	}
	log.Info().
		Uint64("ttable-created", res.TTStats.Created).
		Uint64("ttable-lookups", res.TTStats.Lookups).
		Uint64("ttable-hits", res.TTStats.Hits).
		Uint64("nodes", res.Nodes).
		Int("depth", res.Depth).
		Str("best", res.Best.String()).
		Int32("score", res.Score).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("solve-returning")
	if err != nil {
		return res, err
	}
	if res.Depth == 0 {
		return res, ErrNoSolution
	}
	return res, nil
}

func (s *Solver) iterativelyDeepen(ctx context.Context, maxDepth int, res *Result) error {
	empties := bitboard.PopCount(s.board.Empty())
	for _, d := range depthSchedule(maxDepth, s.iterativeDeepeningOptim) {
		log.Debug().Int("depth", d).Msg("deepening-iteratively")
		s.currentIDDepth = d
		passStart := time.Now()
		best, ties, err := s.searchRoot(ctx, d)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				log.Debug().Int("depth", d).Int("completed-depth", res.Depth).Msg("search-out-of-time")
				return nil
			}
			return err
		}
		res.Score = best
		res.Depth = d
		res.Ties = ties
		res.Best = ties[s.rng.Intn(len(ties))]
		log.Debug().Int("depth", d).Int32("score", best).
			Strs("ties", lo.Map(ties, func(m move.Move, _ int) string { return m.String() })).
			Msg("best-val")
		if s.logStream != nil {
			s.logPass(d, best, ties, time.Since(passStart))
		}
		s.sortRootMoves()

		if IsWin(best) || IsLoss(best) {
			log.Debug().Int32("score", best).Msg("forced-result-found")
			return nil
		}
		if d >= empties {
			// the whole game tree fits inside this depth
			return nil
		}
	}
	return nil
}

// sortRootMoves orders root moves by their last pass's score. Ties keep
// their previous relative order.
func (s *Solver) sortRootMoves() {
	sort.Stable(&rootSorter{s.rootMoves, s.rootScores})
}

type rootSorter struct {
	moves  []move.Move
	scores []int32
}

func (r *rootSorter) Len() int { return len(r.moves) }
func (r *rootSorter) Swap(i, j int) {
	r.moves[i], r.moves[j] = r.moves[j], r.moves[i]
	r.scores[i], r.scores[j] = r.scores[j], r.scores[i]
}
func (r *rootSorter) Less(i, j int) bool { return r.scores[i] > r.scores[j] }

func (s *Solver) logPass(depth int, best int32, ties []move.Move, elapsed time.Duration) {
	it := LogIteration{
		Depth:     depth,
		Score:     best,
		Best:      lo.Map(ties, func(m move.Move, _ int) string { return m.String() }),
		Nodes:     s.nodes.Load(),
		ElapsedMS: elapsed.Milliseconds(),
	}
	for i, m := range s.rootMoves {
		it.Plays = append(it.Plays, LogPlay{Play: m.String(), Score: s.rootScores[i]})
	}
	out, err := yaml.Marshal([]LogIteration{it})
	if err != nil {
		log.Error().Err(err).Msg("marshalling log")
		return
	}
	if _, err := s.logStream.Write(out); err != nil {
		log.Error().Err(err).Msg("writing log")
	}
}

// PrincipalVariation follows hash moves from the current position. The line
// stops at the first missing or unplayable entry.
func (s *Solver) PrincipalVariation(b *board.Board, maxLen int) []move.Move {
	if s.ttable == nil {
		return nil
	}
	var pv []move.Move
	for len(pv) < maxLen && !b.Terminal() {
		e, ok := s.ttable.Probe(b.Hash())
		if !ok || !e.play.Valid() || b.Occupied()&e.play.Bit() != 0 {
			break
		}
		pv = append(pv, e.play)
		b.MakeMove(e.play, b.ToMove())
	}
	for range pv {
		b.Undo()
	}
	return pv
}

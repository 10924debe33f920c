package turnplayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/eval"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/rng"
	"github.com/domino14/gomoku/search/negamax"
	"github.com/domino14/gomoku/zobrist"
)

var ErrBoardFull = errors.New("no empty cells remain")

// BotTurnPlayer is the search engine behind the TurnPlayer interface. It
// keeps its own board between turns and catches up on the opponent's
// stones by diffing the grid it is handed.
type BotTurnPlayer struct {
	settings EngineSettings
	weights  eval.Weights

	zobrist *zobrist.Zobrist
	board   *board.Board
	ttable  *negamax.TranspositionTable
	solver  *negamax.Solver
	rng     *frand.RNG

	me         game.Color
	lastResult negamax.Result
	logFile    io.WriteCloser
}

// NewBotTurnPlayer builds an engine. Only a bad search-log path can make it
// fail.
func NewBotTurnPlayer(settings EngineSettings) (*BotTurnPlayer, error) {
	p := &BotTurnPlayer{
		settings: settings,
		weights:  settings.Weights,
		rng:      rng.New(settings.Seed),
		zobrist:  &zobrist.Zobrist{},
		ttable:   &negamax.TranspositionTable{},
		solver:   &negamax.Solver{},
	}
	p.zobrist.InitializeFrom(p.rng)
	p.board = board.NewBoard(p.zobrist, &p.weights, board.Me)
	p.ttable.Reset(settings.TTCapacity, settings.TTMemoryFraction)
	p.solver.Init(p.ttable, p.rng)
	if settings.SearchLog != "" {
		f, err := os.OpenFile(settings.SearchLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening search log: %w", err)
		}
		p.logFile = f
		p.solver.SetLogStream(f)
	}
	p.me = game.Black
	return p, nil
}

// NewGame forgets the previous game, including the transposition table.
func (p *BotTurnPlayer) NewGame(me game.Color) {
	p.me = me
	p.board.Clear(board.Me)
	p.ttable.Clear()
	p.lastResult = negamax.Result{}
}

func (p *BotTurnPlayer) Close() error {
	if p.logFile != nil {
		return p.logFile.Close()
	}
	return nil
}

func (p *BotTurnPlayer) Board() *board.Board          { return p.board }
func (p *BotTurnPlayer) Solver() *negamax.Solver      { return p.solver }
func (p *BotTurnPlayer) LastResult() negamax.Result   { return p.lastResult }
func (p *BotTurnPlayer) Settings() EngineSettings     { return p.settings }
func (p *BotTurnPlayer) Weights() *eval.Weights       { return &p.weights }

// SetSettings reconfigures the engine mid-game. The current position is
// rescored under the new weights and the transposition table is rebuilt,
// since its entries were scored with the old ones. A new seed also redraws
// the hash keys. The search log stays the one opened at construction.
func (p *BotTurnPlayer) SetSettings(s EngineSettings) {
	s.SearchLog = p.settings.SearchLog
	if s.Seed != p.settings.Seed {
		p.rng = rng.New(s.Seed)
		p.zobrist.InitializeFrom(p.rng)
		p.solver.Init(p.ttable, p.rng)
	}
	p.settings = s
	p.weights = s.Weights
	p.board.SetPosition(p.board.Mine(), p.board.Theirs(), p.board.ToMove())
	p.ttable.Reset(s.TTCapacity, s.TTMemoryFraction)
	log.Debug().Int32("score", p.board.Score()).Msg("engine-reconfigured")
}

// sync brings the internal board up to date with grid. The usual case is a
// single new opponent stone, which is played on the board so the undo stack
// and memoized scores stay warm. Anything else rebuilds from scratch.
func (p *BotTurnPlayer) sync(grid game.Grid) {
	black, white := grid.Masks()
	gridMine, gridTheirs := black, white
	if p.me == game.White {
		gridMine, gridTheirs = white, black
	}
	knownMine, knownTheirs := p.board.Mine(), p.board.Theirs()
	added := gridTheirs &^ knownTheirs

	consistent := gridMine == knownMine &&
		knownTheirs&^gridTheirs == 0 &&
		bitboard.PopCount(added) <= 1
	if consistent && added != 0 && p.board.ToMove() == board.Opponent {
		m := move.FromMask(added, nil)[0]
		p.board.MakeMove(m, board.Opponent)
		log.Debug().Str("move", m.String()).Msg("absorbed-opponent-move")
	} else if !consistent || added != 0 {
		log.Debug().Int("stones", bitboard.PopCount(gridMine|gridTheirs)).Msg("board-rebuilt-from-grid")
		p.board.SetPosition(gridMine, gridTheirs, board.Me)
	}
	if p.board.ToMove() != board.Me {
		p.board.SetPosition(gridMine, gridTheirs, board.Me)
	}
}

// ChooseMove returns the engine's move for me on grid and records it on the
// internal board. When no search pass finishes in time it falls back to the
// best statically ordered candidate.
func (p *BotTurnPlayer) ChooseMove(ctx context.Context, grid game.Grid, me game.Color) (move.Move, error) {
	if me != p.me {
		p.NewGame(me)
	}
	p.sync(grid)
	b := p.board
	switch {
	case b.Winner() != board.NoSide:
		return move.InvalidMove, game.ErrGameOver
	case b.IsFull():
		return move.InvalidMove, ErrBoardFull
	}

	var m move.Move
	if movegen.Candidates(b.Occupied()) == 0 {
		m = movegen.OpeningMove(b.Occupied(), p.rng)
		log.Debug().Str("move", m.String()).Msg("opening-move")
	} else {
		ctx, cancel := context.WithTimeout(ctx, p.settings.Deadline())
		defer cancel()
		res, err := p.solver.Solve(ctx, b, p.settings.MaxDepth)
		p.lastResult = res
		switch {
		case errors.Is(err, negamax.ErrNoSolution):
			log.Info().Str("fallback", res.Fallback.String()).Msg("no-completed-pass")
			m = res.Fallback
		case err != nil:
			return move.InvalidMove, err
		default:
			m = res.Best
		}
	}
	b.MakeMove(m, board.Me)
	return m, nil
}

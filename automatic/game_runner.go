// Package automatic plays engines against each other: one game at a time in
// a GameRunner, many games across worker goroutines in StartCompVComp.
package automatic

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/stats"
	"github.com/domino14/gomoku/turnplayer"
)

// EngineNames label the two engines in logs and summaries.
var EngineNames = [2]string{"engine-a", "engine-b"}

// GameResult is the outcome of one finished game.
type GameResult struct {
	GameID    string
	Black     int // index of the engine that played Black
	Winner    game.Color
	Plies     int
	Depths    []float64
	Nodes     []float64
	Fallbacks int
}

// Outcome returns how the game went for engine idx.
func (g GameResult) Outcome(idx int) stats.Outcome {
	if g.Winner == game.None {
		return stats.Draw
	}
	winnerIdx := g.Black
	if g.Winner == game.White {
		winnerIdx = 1 - g.Black
	}
	if winnerIdx == idx {
		return stats.Win
	}
	return stats.Loss
}

// GameRunner plays single games between two engine configurations. It is
// not safe for concurrent use; each worker owns one.
type GameRunner struct {
	game     *game.Game
	settings [2]turnplayer.EngineSettings
	players  [2]*turnplayer.BotTurnPlayer
	logchan  chan string
	gamechan chan string
	runID    string
}

// NewGameRunner returns a runner for the two engine settings. logchan, if
// not nil, receives one CSV line per move.
func NewGameRunner(logchan chan string, a, b turnplayer.EngineSettings) *GameRunner {
	return &GameRunner{
		logchan:  logchan,
		settings: [2]turnplayer.EngineSettings{a, b},
	}
}

// gameSeed splits one game seed into per-engine seeds.
func gameSeed(seed [32]byte, engine int) uint64 {
	var buf [33]byte
	copy(buf[:], seed[:])
	buf[32] = byte(engine)
	return xxhash.Sum64(buf[:])
}

// GameID derives a stable id from the run and game number.
func GameID(runID string, gameNum int) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(gameNum))
	return fmt.Sprintf("%016x", xxhash.Sum64String(runID+string(buf[:])))
}

// Init builds fresh engines for a game. Engine seeds come from seed, so a
// seed replays the same game.
func (r *GameRunner) Init(seed [32]byte) error {
	r.closePlayers()
	for i := range r.players {
		s := r.settings[i]
		s.Seed = gameSeed(seed, i)
		p, err := turnplayer.NewBotTurnPlayer(s)
		if err != nil {
			return err
		}
		r.players[i] = p
	}
	return nil
}

func (r *GameRunner) closePlayers() {
	for i, p := range r.players {
		if p != nil {
			p.Close()
			r.players[i] = nil
		}
	}
}

// playerFor returns the index of the engine playing c when engine black
// has Black.
func playerFor(c game.Color, black int) int {
	if c == game.Black {
		return black
	}
	return 1 - black
}

// PlayBestTurn asks the engine on turn for a move and plays it.
func (r *GameRunner) PlayBestTurn(ctx context.Context, black int, res *GameResult) error {
	onturn := r.game.PlayerOnTurn()
	idx := playerFor(onturn, black)
	p := r.players[idx]
	opening := r.game.Occupied() == 0

	m, err := p.ChooseMove(ctx, r.game.Grid(), onturn)
	if err != nil {
		return err
	}
	if err := r.game.PlayMove(m); err != nil {
		return err
	}
	sr := p.LastResult()
	if !opening {
		res.Depths = append(res.Depths, float64(sr.Depth))
		res.Nodes = append(res.Nodes, float64(sr.Nodes))
		if sr.Depth == 0 {
			res.Fallbacks++
		}
	}
	if r.logchan != nil {
		depth, nodes, score := sr.Depth, sr.Nodes, sr.Score
		if opening {
			depth, nodes, score = 0, 0, 0
		}
		r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v,%v,%v,%.3f\n",
			EngineNames[idx],
			res.GameID,
			r.game.Turn(),
			onturn,
			m,
			score,
			depth,
			nodes,
			sr.Elapsed.Seconds())
	}
	return nil
}

// PlayGame plays game number gameNum to the end. Engine A has Black in even
// games and White in odd ones.
func (r *GameRunner) PlayGame(ctx context.Context, gameNum int, seed [32]byte) (GameResult, error) {
	if err := r.Init(seed); err != nil {
		return GameResult{}, err
	}
	defer r.closePlayers()
	black := gameNum % 2
	for i, p := range r.players {
		if i == black {
			p.NewGame(game.Black)
		} else {
			p.NewGame(game.White)
		}
	}
	r.game = game.NewGame()
	res := GameResult{GameID: GameID(r.runID, gameNum), Black: black}
	for r.game.Playing() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.PlayBestTurn(ctx, black, &res); err != nil {
			return res, err
		}
	}
	res.Winner = r.game.Winner()
	res.Plies = r.game.Turn()
	log.Debug().Str("game", res.GameID).Str("winner", res.Winner.String()).
		Int("plies", res.Plies).Msg("game-over")
	if r.gamechan != nil {
		r.gamechan <- r.game.ToDisplayText()
	}
	return res, nil
}

// Game is the last game played.
func (r *GameRunner) Game() *game.Game { return r.game }

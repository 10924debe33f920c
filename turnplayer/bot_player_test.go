package turnplayer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/gomoku/bitboard"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testSettings() EngineSettings {
	s := DefaultSettings()
	s.TimeLimit = 10 * time.Second
	s.MaxDepth = 2
	s.TTCapacity = 1 << 16
	s.Seed = 77
	s.SearchLog = ""
	return s
}

func newTestPlayer(t *testing.T, s EngineSettings) *BotTurnPlayer {
	p, err := NewBotTurnPlayer(s)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func gridOf(black, white []string) game.Grid {
	var gr game.Grid
	for _, c := range black {
		m, _ := move.Parse(c)
		gr[m.Row()][m.Col()] = game.Black
	}
	for _, c := range white {
		m, _ := move.Parse(c)
		gr[m.Row()][m.Col()] = game.White
	}
	return gr
}

func TestOpeningIsCentral(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)
	m, err := p.ChooseMove(context.Background(), game.Grid{}, game.Black)
	is.NoErr(err)
	is.True(movegen.Center&m.Bit() != 0)
	is.Equal(p.Board().Plies(), 1)
}

func TestTakesTheWin(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)
	gr := gridOf([]string{"a1", "b1", "c1", "d1"}, []string{"c3", "d4", "f5", "b6"})
	m, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.NoErr(err)
	is.Equal(m, move.FromRowCol(0, 4))
	is.True(p.LastResult().Depth > 0)
}

func TestBlocksAsWhite(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.White)
	gr := gridOf([]string{"b2", "c2", "d2", "e2", "h8", "h7"}, []string{"a2", "a8", "c6", "f7", "g4"})
	m, err := p.ChooseMove(context.Background(), gr, game.White)
	is.NoErr(err)
	is.Equal(m, move.FromRowCol(1, 5))
}

func TestSyncAbsorbsOpponentMove(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)

	var gr game.Grid
	first, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.NoErr(err)
	gr[first.Row()][first.Col()] = game.Black

	reply := move.FromMask(bitboard.Dilate(first.Bit()), nil)[0]
	gr[reply.Row()][reply.Col()] = game.White

	second, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.NoErr(err)
	is.True(second != first && second != reply)
	// our opening, their reply and our answer are all on the undo stack
	is.Equal(p.Board().Plies(), 3)
	is.Equal(p.Board().LastMove(), second)
}

func TestSetSettingsRescoresBoard(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)
	gr := gridOf([]string{"c3", "d4", "e5"}, []string{"c4", "d5"})
	_, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.NoErr(err)

	s := testSettings()
	s.Weights.Three *= 10
	s.Weights.Two *= 10
	s.Seed = 78
	p.SetSettings(s)

	b := p.Board()
	is.Equal(b.Score(), p.Weights().Evaluate(b.Mine(), b.Theirs()))
	is.Equal(p.Settings().Weights, s.Weights)

	// the engine keeps playing from the rescored position
	mine, theirs := b.Mine(), b.Theirs()
	var next game.Grid
	for _, m := range move.FromMask(mine, nil) {
		next[m.Row()][m.Col()] = game.Black
	}
	for _, m := range move.FromMask(theirs, nil) {
		next[m.Row()][m.Col()] = game.White
	}
	reply := move.FromMask(bitboard.Dilate(mine|theirs)&^(mine|theirs), nil)[0]
	next[reply.Row()][reply.Col()] = game.White
	m, err := p.ChooseMove(context.Background(), next, game.Black)
	is.NoErr(err)
	is.True(m != reply)
	is.Equal(p.Board().Score(), p.Weights().Evaluate(p.Board().Mine(), p.Board().Theirs()))
}

func TestSyncRebuildsUnexpectedGrid(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)
	_, err := p.ChooseMove(context.Background(), game.Grid{}, game.Black)
	is.NoErr(err)

	// a different game altogether
	gr := gridOf([]string{"a1", "h8"}, []string{"a8", "h1"})
	m, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.NoErr(err)
	is.Equal(p.Board().Plies(), 1)
	is.Equal(p.Board().StoneCount(), 5)
	is.Equal(gr.At(m), game.None)
}

func TestGameAlreadyWon(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.White)
	gr := gridOf([]string{"a1", "b1", "c1", "d1", "e1"}, []string{"a3", "b4", "c5", "d6"})
	_, err := p.ChooseMove(context.Background(), gr, game.White)
	is.True(errors.Is(err, game.ErrGameOver))
}

func TestFullBoard(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)
	var gr game.Grid
	for r := 0; r < bitboard.Size; r++ {
		for c := 0; c < bitboard.Size; c++ {
			if ((c+2*(r%2)+(r/2)%2)/2)%2 == 0 {
				gr[r][c] = game.Black
			} else {
				gr[r][c] = game.White
			}
		}
	}
	_, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.True(errors.Is(err, ErrBoardFull))
}

func TestCancelledSearchFallsBack(t *testing.T) {
	is := is.New(t)
	p := newTestPlayer(t, testSettings())
	p.NewGame(game.Black)
	gr := gridOf([]string{"d4", "e5"}, []string{"d5", "e4"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := p.ChooseMove(ctx, gr, game.Black)
	is.NoErr(err)
	is.True(m.Valid())
	is.Equal(gr.At(m), game.None)
	is.Equal(p.LastResult().Depth, 0)
	is.Equal(m, p.LastResult().Fallback)
}

func TestSearchLogIsWritten(t *testing.T) {
	is := is.New(t)
	s := testSettings()
	s.SearchLog = filepath.Join(t.TempDir(), "search.yaml")
	p := newTestPlayer(t, s)
	p.NewGame(game.Black)
	gr := gridOf([]string{"d4"}, []string{"e5"})
	_, err := p.ChooseMove(context.Background(), gr, game.Black)
	is.NoErr(err)
	is.NoErr(p.Close())
	p.logFile = nil

	bts, err := os.ReadFile(s.SearchLog)
	is.NoErr(err)
	is.True(len(bts) > 0)
}

func TestDeadlineUsesSafetyFraction(t *testing.T) {
	is := is.New(t)
	s := EngineSettings{TimeLimit: time.Second, TimeSafetyFraction: 0.5}
	is.Equal(s.Deadline(), 500*time.Millisecond)
	s.TimeSafetyFraction = 0
	is.Equal(s.Deadline(), time.Second)
}

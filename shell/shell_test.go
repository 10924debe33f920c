package shell

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigMaxDepth, 2)
	cfg.Set(config.ConfigTTCapacity, 1<<14)
	cfg.Set(config.ConfigSeed, uint64(5))
	cfg.Set(config.ConfigAutoplayLogfile, filepath.Join(t.TempDir(), "autoplay.csv"))
	out := &bytes.Buffer{}
	sc := newController(cfg, out)
	t.Cleanup(sc.Close)
	return sc, out
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -logfile /path/to/log.csv",
			&shellcmd{"autoplay", nil, CmdOptions{"logfile": {"/path/to/log.csv"}}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, CmdOptions{}},
			nil},
		{"search -depth 4 -time 2s ",
			&shellcmd{"search", nil, CmdOptions{"depth": {"4"}, "time": {"2s"}}},
			nil},
		{`script "my file.lua"`,
			&shellcmd{"script", []string{"my file.lua"}, CmdOptions{}},
			nil},
		{"search -depth",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func TestPlayAgainstEngine(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	is.NoErr(sc.executeLine("new"))
	is.True(strings.Contains(out.String(), "You play black"))
	is.Equal(sc.game.Turn(), 0)

	is.NoErr(sc.executeLine("play d4"))
	is.Equal(sc.game.Turn(), 2)
	is.True(strings.Contains(out.String(), "Engine (white) plays"))
	is.Equal(sc.game.PlayerOnTurn(), game.Black)

	is.NoErr(sc.executeLine("undo 2"))
	is.Equal(sc.game.Turn(), 0)

	// the engine catches up with a position it has never seen
	is.NoErr(sc.executeLine("play e5"))
	is.Equal(sc.game.Turn(), 2)
	is.Equal(sc.game.At(move.FromRowCol(4, 4)), game.Black)
}

func TestEngineOpensForWhite(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	is.NoErr(sc.executeLine("new white"))
	is.Equal(sc.game.Turn(), 1)
	is.True(strings.Contains(out.String(), "opens with"))
	last := sc.game.LastMove()
	is.True(last.Row() >= 3 && last.Row() <= 4 && last.Col() >= 3 && last.Col() <= 4)
}

func TestCommandsNeedAGame(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	for _, line := range []string{"show", "play d4", "go", "search", "eval", "undo"} {
		out.Reset()
		is.NoErr(sc.executeLine(line))
		is.True(strings.Contains(out.String(), errNoGame.Error()))
	}
}

func setPosition(t *testing.T, sc *ShellController, black, white []string) {
	var gr game.Grid
	for _, c := range black {
		m, _ := move.Parse(c)
		gr[m.Row()][m.Col()] = game.Black
	}
	for _, c := range white {
		m, _ := move.Parse(c)
		gr[m.Row()][m.Col()] = game.White
	}
	g, err := game.FromGrid(gr)
	if err != nil {
		t.Fatal(err)
	}
	sc.game = g
}

func TestSearchFindsWin(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	setPosition(t, sc, []string{"a1", "b1", "c1", "d1"}, []string{"c3", "d4", "f5", "b6"})
	is.NoErr(sc.executeLine("search -depth 2"))
	is.True(strings.Contains(out.String(), "Best: e1"))
	is.True(strings.Contains(out.String(), "(forced win)"))
	is.True(strings.Contains(out.String(), "Principal variation: e1"))
	// nothing was played
	is.Equal(sc.game.Turn(), 0)
}

func TestSearchBadOption(t *testing.T) {
	sc, out := testController(t)
	setPosition(t, sc, []string{"d4"}, nil)
	assert.NoError(t, sc.executeLine("search -depth deep"))
	assert.Contains(t, out.String(), "Error:")
}

func TestEval(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	setPosition(t, sc, []string{"b2", "c2", "d2"}, []string{"f6", "g7"})
	is.NoErr(sc.executeLine("eval"))
	is.True(strings.Contains(out.String(), "Evaluation for white"))
	is.True(strings.Contains(out.String(), "open threes"))
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	is.NoErr(sc.executeLine("set max-depth 4"))
	is.True(strings.Contains(out.String(), "set max-depth to 4"))
	is.Equal(sc.settings.MaxDepth, 4)

	is.NoErr(sc.executeLine("set eval-two 12"))
	is.Equal(sc.settings.Weights.Two, int32(12))

	is.NoErr(sc.executeLine("set color white"))
	is.Equal(sc.human, game.White)

	out.Reset()
	is.NoErr(sc.executeLine("set"))
	is.True(strings.Contains(out.String(), "time-limit: 10s"))

	out.Reset()
	is.NoErr(sc.executeLine("set bogus 1"))
	is.True(strings.Contains(out.String(), "no such setting"))
}

func TestHelp(t *testing.T) {
	sc, out := testController(t)
	assert.NoError(t, sc.executeLine("help"))
	assert.Contains(t, out.String(), "Commands:")
	for _, c := range commandNames {
		_, err := usage(c)
		assert.NoError(t, err, c)
	}
	out.Reset()
	assert.NoError(t, sc.executeLine("help nothing"))
	assert.Contains(t, out.String(), "no help text")
}

func TestUnknownAndExit(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	is.NoErr(sc.executeLine("frobnicate"))
	is.True(strings.Contains(out.String(), `command "frobnicate" not found`))
	is.Equal(sc.executeLine("exit"), errQuit)
	is.NoErr(sc.executeLine("   "))
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	path := filepath.Join(t.TempDir(), "game.lua")
	script := `
gomoku_set("max-depth 2")
gomoku_new("black")
gomoku_play("d4")
local n = 0
while gomoku_winner() == "" and n < 100 do
  gomoku_go("")
  n = n + 1
end
`
	is.NoErr(os.WriteFile(path, []byte(script), 0644))
	is.NoErr(sc.executeLine("script " + path))
	is.True(sc.game != nil)
	is.True(!sc.game.Playing())
	is.True(sc.game.Turn() >= 9)
}

func TestScriptReportsOverHTTP(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	var got struct {
		Winner string `json:"winner"`
		Turns  int    `json:"turns"`
	}
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err == nil {
			received <- struct{}{}
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "report.lua")
	script := `
local json = require("json")
local http = require("http")
gomoku_set("max-depth 2")
gomoku_new("black")
gomoku_play("d4")
local body = json.encode({winner = gomoku_winner(), turns = 3})
local resp, err = http.post("` + srv.URL + `", {body = body, headers = {["Content-Type"] = "application/json"}})
assert(resp ~= nil, err)
`
	is.NoErr(os.WriteFile(path, []byte(script), 0644))
	is.NoErr(sc.executeLine("script " + path))
	select {
	case <-received:
	default:
		t.Fatal("no report received")
	}
	is.Equal(got.Turns, 3)
	is.Equal(got.Winner, "")
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	logfile := filepath.Join(t.TempDir(), "moves.csv")
	is.NoErr(sc.executeLine("autoplay -games 2 -threads 2 -time 10s -logfile " + logfile))
	sc.waitAutoplay()
	is.True(strings.Contains(out.String(), "Started 2 games"))
	is.True(strings.Contains(out.String(), "Games played: 2"))
	is.True(!sc.autoplaying())

	out.Reset()
	is.NoErr(sc.executeLine("autoplay analyze " + logfile))
	is.True(strings.Contains(out.String(), "Games: 2"))

	out.Reset()
	is.NoErr(sc.executeLine("autoplay stop"))
	is.True(strings.Contains(out.String(), "not running"))
}

func TestCompleter(t *testing.T) {
	c := newCompleter()
	line := []rune("se")
	got, n := c.Do(line, len(line))
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]rune{[]rune("arch "), []rune("t ")}, got)

	line = []rune("new -color w")
	got, n = c.Do(line, len(line))
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]rune{[]rune("hite ")}, got)
}

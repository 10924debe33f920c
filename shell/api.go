package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/eval"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/rng"
	"github.com/domino14/gomoku/search/negamax"
	"github.com/domino14/gomoku/turnplayer"
	"github.com/domino14/gomoku/zobrist"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) DurationDefault(key string, defaultD time.Duration) (time.Duration, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultD, nil
	}
	return time.ParseDuration(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func movesString(ms []move.Move) string {
	return strings.Join(lo.Map(ms, func(m move.Move, _ int) string { return m.String() }), " ")
}

func (sc *ShellController) ensureEngine() (*turnplayer.BotTurnPlayer, error) {
	if sc.engine != nil {
		return sc.engine, nil
	}
	e, err := turnplayer.NewBotTurnPlayer(sc.settings)
	if err != nil {
		return nil, err
	}
	e.NewGame(sc.human.Other())
	sc.engine = e
	return e, nil
}

// dropEngine discards the engine so the next move builds one from the
// current settings. It resyncs from the game grid.
func (sc *ShellController) dropEngine() {
	if sc.engine != nil {
		sc.engine.Close()
		sc.engine = nil
	}
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	colorStr := cmd.options.String("color")
	if colorStr == "" && len(cmd.args) > 0 {
		colorStr = cmd.args[0]
	}
	if colorStr != "" {
		c, err := game.ParseColor(colorStr)
		if err != nil {
			return nil, err
		}
		sc.human = c
	}
	e, err := sc.ensureEngine()
	if err != nil {
		return nil, err
	}
	e.NewGame(sc.human.Other())
	sc.game = game.NewGame()
	out := fmt.Sprintf("New game. You play %v.\n", sc.human)
	if sc.human == game.White {
		line, err := sc.engineMove()
		if err != nil {
			return nil, err
		}
		out += line + "\n"
	}
	return msg(out + sc.game.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.ToDisplayText()), nil
}

// engineMove has the engine play for the side on turn and describes the
// move.
func (sc *ShellController) engineMove() (string, error) {
	e, err := sc.ensureEngine()
	if err != nil {
		return "", err
	}
	color := sc.game.PlayerOnTurn()
	opening := sc.game.Occupied() == 0
	m, err := e.ChooseMove(context.Background(), sc.game.Grid(), color)
	if err != nil {
		return "", err
	}
	if err := sc.game.PlayMove(m); err != nil {
		return "", err
	}
	if opening {
		return fmt.Sprintf("Engine (%v) opens with %v", color, m), nil
	}
	res := e.LastResult()
	if res.Depth == 0 {
		return fmt.Sprintf("Engine (%v) plays %v (no search pass finished)", color, m), nil
	}
	return sc.printer.Sprintf("Engine (%v) plays %v (depth %d, score %d, %d nodes, %.2fs)",
		color, m, res.Depth, res.Score, res.Nodes, res.Elapsed.Seconds()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <coord>, e.g. play d5")
	}
	m, err := move.Parse(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(m); err != nil {
		return nil, err
	}
	out := ""
	if sc.game.Playing() && sc.game.PlayerOnTurn() != sc.human {
		line, err := sc.engineMove()
		if err != nil {
			return nil, err
		}
		out = line + "\n"
	}
	return msg(out + sc.game.ToDisplayText()), nil
}

func (sc *ShellController) enginePlay(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if !sc.game.Playing() {
		return nil, game.ErrGameOver
	}
	line, err := sc.engineMove()
	if err != nil {
		return nil, err
	}
	return msg(line + "\n" + sc.game.ToDisplayText()), nil
}

// sideMasks returns the stones of the side on turn and of its opponent.
func (sc *ShellController) sideMasks() (uint64, uint64) {
	onturn := sc.game.PlayerOnTurn()
	return sc.game.Stones(onturn), sc.game.Stones(onturn.Other())
}

// search analyses the current position for the side on turn without
// playing anything.
func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	depth, err := cmd.options.IntDefault("depth", sc.settings.MaxDepth)
	if err != nil {
		return nil, err
	}
	limit, err := cmd.options.DurationDefault("time", sc.settings.Deadline())
	if err != nil {
		return nil, err
	}

	r := rng.New(sc.settings.Seed)
	z := &zobrist.Zobrist{}
	z.InitializeFrom(r)
	w := sc.settings.Weights
	b := board.NewBoard(z, &w, board.Me)
	mine, theirs := sc.sideMasks()
	b.SetPosition(mine, theirs, board.Me)

	tt := &negamax.TranspositionTable{}
	tt.Reset(sc.settings.TTCapacity, sc.settings.TTMemoryFraction)
	solver := &negamax.Solver{}
	solver.Init(tt, r)

	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()
	res, err := solver.Solve(ctx, b, depth)
	if errors.Is(err, negamax.ErrNoMoves) {
		return nil, errors.New("nothing to search: the board is empty, full or already won")
	}
	if err != nil && !errors.Is(err, negamax.ErrNoSolution) {
		return nil, err
	}

	var sb strings.Builder
	if res.Depth == 0 {
		fmt.Fprintf(&sb, "No pass finished in %v. Best static move: %v\n", limit, res.Fallback)
		return msg(sb.String()), nil
	}
	fmt.Fprintf(&sb, "Side to move: %v\n", sc.game.PlayerOnTurn())
	fmt.Fprintf(&sb, "Best: %v  Score: %s\n", res.Best, describeScore(res.Score))
	fmt.Fprintf(&sb, "Equally good: %v\n", movesString(res.Ties))
	fmt.Fprintf(&sb, "Principal variation: %v\n", movesString(res.PV.Moves))
	sb.WriteString(sc.printer.Sprintf("Depth %d, %d nodes in %.3fs; table %d lookups, %d hits\n",
		res.Depth, res.Nodes, res.Elapsed.Seconds(), res.TTStats.Lookups, res.TTStats.Hits))
	return msg(sb.String()), nil
}

func describeScore(score int32) string {
	switch {
	case negamax.IsWin(score):
		return fmt.Sprintf("%d (forced win)", score)
	case negamax.IsLoss(score):
		return fmt.Sprintf("%d (forced loss)", score)
	}
	return strconv.Itoa(int(score))
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	mine, theirs := sc.sideMasks()
	pm, pt := eval.Breakdown(mine, theirs)
	w := sc.settings.Weights
	onturn := sc.game.PlayerOnTurn()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %8v %8v\n", "", onturn, onturn.Other())
	row := func(name string, a, b int) {
		fmt.Fprintf(&sb, "%-12s %8d %8d\n", name, a, b)
	}
	row("fives", pm.Fives, pt.Fives)
	row("open fours", pm.OpenFours, pt.OpenFours)
	row("fours", pm.Fours, pt.Fours)
	row("dead fours", pm.DeadFours, pt.DeadFours)
	row("open threes", pm.OpenThrees, pt.OpenThrees)
	row("threes", pm.Threes, pt.Threes)
	row("dead threes", pm.DeadThrees, pt.DeadThrees)
	row("twos", pm.Twos, pt.Twos)
	row("ones", pm.Ones, pt.Ones)
	sb.WriteString(sc.printer.Sprintf("Evaluation for %v: %d\n", onturn, w.Evaluate(mine, theirs)))
	return msg(sb.String()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	for i := 0; i < n; i++ {
		if err := sc.game.UnplayLastMove(); err != nil {
			return nil, err
		}
	}
	return msg(sc.game.ToDisplayText()), nil
}

// settingKeys are the names `set` accepts, in display order.
var settingKeys = []string{
	"color",
	config.ConfigTimeLimit,
	config.ConfigTimeSafetyFraction,
	config.ConfigMaxDepth,
	config.ConfigTTCapacity,
	config.ConfigSeed,
	config.ConfigSearchLog,
	config.ConfigEvalFive,
	config.ConfigEvalOpenFour,
	config.ConfigEvalFour,
	config.ConfigEvalOpenThree,
	config.ConfigEvalThree,
	config.ConfigEvalDead,
	config.ConfigEvalTwo,
	config.ConfigEvalOne,
}

func (sc *ShellController) weightFor(key string) *int32 {
	w := &sc.settings.Weights
	switch key {
	case config.ConfigEvalFive:
		return &w.Five
	case config.ConfigEvalOpenFour:
		return &w.OpenFour
	case config.ConfigEvalFour:
		return &w.Four
	case config.ConfigEvalOpenThree:
		return &w.OpenThree
	case config.ConfigEvalThree:
		return &w.Three
	case config.ConfigEvalDead:
		return &w.Dead
	case config.ConfigEvalTwo:
		return &w.Two
	case config.ConfigEvalOne:
		return &w.One
	}
	return nil
}

// Show returns the current value of a setting.
func (sc *ShellController) Show(key string) (string, error) {
	s := sc.settings
	switch key {
	case "color":
		return sc.human.String(), nil
	case config.ConfigTimeLimit:
		return s.TimeLimit.String(), nil
	case config.ConfigTimeSafetyFraction:
		return strconv.FormatFloat(s.TimeSafetyFraction, 'f', -1, 64), nil
	case config.ConfigMaxDepth:
		return strconv.Itoa(s.MaxDepth), nil
	case config.ConfigTTCapacity:
		return strconv.Itoa(s.TTCapacity), nil
	case config.ConfigSeed:
		return strconv.FormatUint(s.Seed, 10), nil
	case config.ConfigSearchLog:
		return s.SearchLog, nil
	}
	if w := sc.weightFor(key); w != nil {
		return strconv.Itoa(int(*w)), nil
	}
	return "", errors.New("no such setting: " + key)
}

// Set changes a setting. Engine settings take effect from the next engine
// move.
func (sc *ShellController) Set(key string, value string) (string, error) {
	var err error
	s := &sc.settings
	switch key {
	case "color":
		var c game.Color
		if c, err = game.ParseColor(value); err == nil {
			sc.human = c
		}
	case config.ConfigTimeLimit:
		s.TimeLimit, err = time.ParseDuration(value)
	case config.ConfigTimeSafetyFraction:
		s.TimeSafetyFraction, err = strconv.ParseFloat(value, 64)
	case config.ConfigMaxDepth:
		s.MaxDepth, err = strconv.Atoi(value)
	case config.ConfigTTCapacity:
		s.TTCapacity, err = strconv.Atoi(value)
	case config.ConfigSeed:
		s.Seed, err = strconv.ParseUint(value, 10, 64)
	case config.ConfigSearchLog:
		s.SearchLog = value
	default:
		w := sc.weightFor(key)
		if w == nil {
			return "", errors.New("no such setting: " + key)
		}
		var v int64
		if v, err = strconv.ParseInt(value, 10, 32); err == nil {
			*w = int32(v)
		}
	}
	if err != nil {
		return "", err
	}
	log.Debug().Str("key", key).Str("value", value).Msg("setting-changed")
	sc.dropEngine()
	return sc.Show(key)
}

func (sc *ShellController) settingsText() string {
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, key := range settingKeys {
		val, _ := sc.Show(key)
		fmt.Fprintf(&sb, "  %s: %s\n", key, val)
	}
	return sb.String()
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	switch len(cmd.args) {
	case 0:
		return msg(sc.settingsText()), nil
	case 1:
		val, err := sc.Show(cmd.args[0])
		if err != nil {
			return nil, err
		}
		return msg(val), nil
	}
	ret, err := sc.Set(cmd.args[0], strings.Join(cmd.args[1:], " "))
	if err != nil {
		return nil, err
	}
	return msg("set " + cmd.args[0] + " to " + ret), nil
}

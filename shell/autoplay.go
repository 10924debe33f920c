package shell

import (
	"bytes"
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/automatic"
	"github.com/domino14/gomoku/config"
)

const defaultAutoplayGames = 100

func (sc *ShellController) autoplaying() bool {
	sc.autoplayMu.Lock()
	defer sc.autoplayMu.Unlock()
	return sc.autoplayCancel != nil
}

func (sc *ShellController) stopAutoplay() bool {
	sc.autoplayMu.Lock()
	cancel, done := sc.autoplayCancel, sc.autoplayDone
	sc.autoplayMu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// waitAutoplay blocks until a running autoplay finishes by itself.
func (sc *ShellController) waitAutoplay() {
	sc.autoplayMu.Lock()
	done := sc.autoplayDone
	sc.autoplayMu.Unlock()
	if done != nil {
		<-done
	}
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		switch cmd.args[0] {
		case "stop":
			if !sc.stopAutoplay() {
				return nil, errors.New("autoplay is not running")
			}
			return msg("autoplay stopped"), nil
		case "analyze":
			file := sc.config.GetString(config.ConfigAutoplayLogfile)
			if len(cmd.args) > 1 {
				file = cmd.args[1]
			}
			report, err := automatic.AnalyzeLogFile(file)
			if err != nil {
				return nil, err
			}
			return msg(report), nil
		default:
			return nil, errors.New("usage: autoplay [stop | analyze [file]] [-games n] [-threads n] [-time d] [-logfile f]")
		}
	}
	if sc.autoplaying() {
		return nil, errAutoplaying
	}

	games, err := cmd.options.IntDefault("games", defaultAutoplayGames)
	if err != nil {
		return nil, err
	}
	opts := automatic.OptionsFromConfig(sc.config, games)
	if opts.Threads, err = cmd.options.IntDefault("threads", opts.Threads); err != nil {
		return nil, err
	}
	if f := cmd.options.String("logfile"); f != "" {
		opts.LogFile = f
	}
	limit, err := cmd.options.DurationDefault("time", opts.Engines[0].TimeLimit)
	if err != nil {
		return nil, err
	}
	// both engines play with the shell's current settings
	s := sc.settings
	s.TimeLimit = limit
	s.SearchLog = ""
	opts.Engines[0], opts.Engines[1] = s, s

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.autoplayMu.Lock()
	sc.autoplayCancel, sc.autoplayDone = cancel, done
	sc.autoplayMu.Unlock()

	go func() {
		defer func() {
			sc.autoplayMu.Lock()
			sc.autoplayCancel, sc.autoplayDone = nil, nil
			sc.autoplayMu.Unlock()
			cancel()
			close(done)
		}()
		sum, err := automatic.StartCompVComp(ctx, opts)
		if err != nil {
			log.Err(err).Msg("autoplay-failed")
			sc.showError(err)
			return
		}
		var hist bytes.Buffer
		if err := sum.DepthHistogram(&hist); err != nil {
			log.Err(err).Msg("histogram")
		}
		sc.showMessage(sum.String() + "Completed depths:\n" + hist.String())
	}()

	return msg(sc.printer.Sprintf("Started %d games on %d threads, %v per move. Moves are logged to %s",
		opts.NumGames, opts.Threads, limit, opts.LogFile)), nil
}

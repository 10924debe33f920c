package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/automatic"
	"github.com/domino14/gomoku/config"
)

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	var logger zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	log.Logger = logger
}

// seedsFor reads the seed file if it exists, or generates seeds and writes
// them there so the match can be replayed.
func seedsFor(path string, n int) ([][32]byte, error) {
	if path == "" {
		return nil, nil
	}
	seeds, err := automatic.LoadSeeds(path)
	if err == nil {
		log.Info().Int("seeds", len(seeds)).Str("file", path).Msg("loaded-seeds")
		return seeds, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if seeds, err = automatic.GenerateSeeds(n); err != nil {
		return nil, err
	}
	if err := automatic.SaveSeeds(seeds, path); err != nil {
		return nil, err
	}
	log.Info().Int("seeds", len(seeds)).Str("file", path).Msg("saved-seeds")
	return seeds, nil
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(cfg.GetBool(config.ConfigDebug))

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := automatic.OptionsFromConfig(cfg, cfg.GetInt(config.ConfigAutoplayGames))
	seeds, err := seedsFor(cfg.GetString(config.ConfigAutoplaySeeds), opts.NumGames)
	if err != nil {
		log.Fatal().Err(err).Msg("seeds")
	}
	opts.Seeds = seeds

	log.Info().Int("games", opts.NumGames).Int("threads", opts.Threads).
		Str("logfile", opts.LogFile).Dur("time-limit", opts.Engines[0].TimeLimit).
		Msg("starting")
	sum, err := automatic.StartCompVComp(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("autoplay")
	}
	fmt.Print(sum.String())
	fmt.Println("Completed depths:")
	if err := sum.DepthHistogram(os.Stdout); err != nil {
		log.Err(err).Msg("histogram")
	}
}

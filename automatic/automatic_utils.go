package automatic

// Engine-vs-engine match play across worker goroutines.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/stats"
	"github.com/domino14/gomoku/turnplayer"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// LogHeader is the first line of the move log.
const LogHeader = "engine,gameID,turn,color,move,score,depth,nodes,seconds\n"

// Options describe one match.
type Options struct {
	NumGames int
	Threads  int
	LogFile  string
	RunID    string
	Engines  [2]turnplayer.EngineSettings
	// Seeds, if given, seed game i with Seeds[i%len(Seeds)].
	Seeds [][32]byte
}

// OptionsFromConfig pits two identical engines against each other using
// the autoplay-* settings.
func OptionsFromConfig(cfg *config.Config, numGames int) Options {
	s := turnplayer.SettingsFromConfig(cfg)
	s.TimeLimit = cfg.GetDuration(config.ConfigAutoplayTimeLimit)
	s.SearchLog = ""
	return Options{
		NumGames: numGames,
		Threads:  cfg.GetInt(config.ConfigAutoplayThreads),
		LogFile:  cfg.GetString(config.ConfigAutoplayLogfile),
		Engines:  [2]turnplayer.EngineSettings{s, s},
	}
}

// Summary aggregates finished games.
type Summary struct {
	Games      int
	Tallies    [2]stats.Tally
	BlackTally stats.Tally
	Depth      stats.Statistic
	Nodes      stats.Statistic
	Plies      stats.Statistic
	Fallbacks  int

	depths []float64
}

func (s *Summary) Add(g GameResult) {
	s.Games++
	for i := range s.Tallies {
		s.Tallies[i].Add(g.Outcome(i))
	}
	s.BlackTally.Add(g.Outcome(g.Black))
	for _, d := range g.Depths {
		s.Depth.Push(d)
	}
	for _, n := range g.Nodes {
		s.Nodes.Push(n)
	}
	s.Plies.Push(float64(g.Plies))
	s.Fallbacks += g.Fallbacks
	s.depths = append(s.depths, g.Depths...)
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games)
	for i, t := range s.Tallies {
		lo, hi := t.ScoreInterval(95)
		fmt.Fprintf(&sb, "%v: %v  95%% CI [%.1f%%, %.1f%%]\n", EngineNames[i], t, 100*lo, 100*hi)
	}
	fmt.Fprintf(&sb, "%v: %v\n", game.Black, s.BlackTally)
	fmt.Fprintf(&sb, "Mean depth: %.2f  Stdev: %.2f  Min: %.0f  Max: %.0f\n",
		s.Depth.Mean(), s.Depth.Stdev(), s.Depth.Min(), s.Depth.Max())
	fmt.Fprintf(&sb, "Mean nodes per move: %.0f\n", s.Nodes.Mean())
	fmt.Fprintf(&sb, "Mean game length: %.1f plies\n", s.Plies.Mean())
	fmt.Fprintf(&sb, "Moves without a completed pass: %d\n", s.Fallbacks)
	return sb.String()
}

// DepthHistogram draws the completed search depths of every searched move.
func (s *Summary) DepthHistogram(w io.Writer) error {
	if len(s.depths) == 0 {
		return nil
	}
	bins := int(s.Depth.Max()-s.Depth.Min()) + 1
	h := histogram.Hist(min(bins, 20), s.depths)
	return histogram.Fprint(w, h, histogram.Linear(40))
}

func isStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// StartCompVComp plays opts.NumGames games and blocks until they finish or
// ctx is done. Games cut short by ctx are left out of the summary.
func StartCompVComp(ctx context.Context, opts Options) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	seeds := opts.Seeds
	if len(seeds) == 0 {
		var err error
		if seeds, err = GenerateSeeds(max(opts.NumGames, 1)); err != nil {
			return nil, err
		}
	}
	if opts.RunID == "" {
		opts.RunID = fmt.Sprintf("%x", seeds[0][:8])
	}

	var logChan chan string
	var logDone chan struct{}
	if opts.LogFile != "" {
		logfile, err := os.Create(opts.LogFile)
		if err != nil {
			return nil, err
		}
		logChan = make(chan string, 100)
		logDone = make(chan struct{})
		go func() {
			defer close(logDone)
			logfile.WriteString(LogHeader)
			for msg := range logChan {
				logfile.WriteString(msg)
			}
			logfile.Close()
			log.Debug().Msg("exiting-move-logger")
		}()
	}
	log.Debug().Int("games", opts.NumGames).Int("threads", opts.Threads).Msg("starting-autoplay")

	CVCCounter.Set(0)
	jobs := make(chan int, 100)
	results := make(chan GameResult, 100)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.NumGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
		}
		log.Debug().Msg("finished-queueing-jobs")
		return nil
	})

	for i := 0; i < opts.Threads; i++ {
		g.Go(func() error {
			r := NewGameRunner(logChan, opts.Engines[0], opts.Engines[1])
			r.runID = opts.RunID
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for n := range jobs {
				res, err := r.PlayGame(gctx, n, seeds[n%len(seeds)])
				if err != nil {
					if isStop(err) {
						return nil
					}
					return err
				}
				CVCCounter.Add(1)
				results <- res
			}
			return nil
		})
	}

	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(results)
	}()

	sum := &Summary{}
	for res := range results {
		sum.Add(res)
	}
	if logChan != nil {
		close(logChan)
		<-logDone
	}
	log.Info().Int("games", sum.Games).Msg("all-games-finished")
	return sum, waitErr
}

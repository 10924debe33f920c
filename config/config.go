package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug              = "debug"
	ConfigCPUProfile         = "cpu-profile"
	ConfigTimeLimit          = "time-limit"
	ConfigTimeSafetyFraction = "time-safety-fraction"
	ConfigMaxDepth           = "max-depth"
	ConfigTTCapacity         = "tt-capacity"
	ConfigTTMemoryFraction   = "tt-memory-fraction"
	ConfigSeed               = "seed"
	ConfigSearchLog          = "search-log"

	ConfigEvalFive      = "eval-five"
	ConfigEvalOpenFour  = "eval-open-four"
	ConfigEvalFour      = "eval-four"
	ConfigEvalOpenThree = "eval-open-three"
	ConfigEvalThree     = "eval-three"
	ConfigEvalDead      = "eval-dead"
	ConfigEvalTwo       = "eval-two"
	ConfigEvalOne       = "eval-one"

	ConfigAutoplayTimeLimit = "autoplay-time-limit"
	ConfigAutoplayThreads   = "autoplay-threads"
	ConfigAutoplayLogfile   = "autoplay-logfile"
	ConfigAutoplayGames     = "autoplay-games"
	ConfigAutoplaySeeds     = "autoplay-seeds"
)

// Config wraps a viper instance. Look values up with the Config* keys above.
type Config struct {
	*viper.Viper

	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigTimeLimit, 10*time.Second)
	v.SetDefault(ConfigTimeSafetyFraction, 0.9)
	v.SetDefault(ConfigMaxDepth, 200)
	v.SetDefault(ConfigTTCapacity, 1_000_000)
	v.SetDefault(ConfigTTMemoryFraction, 0.05)
	v.SetDefault(ConfigSeed, uint64(0))
	v.SetDefault(ConfigSearchLog, "")

	v.SetDefault(ConfigEvalFive, 1_000_000)
	v.SetDefault(ConfigEvalOpenFour, 50_000)
	v.SetDefault(ConfigEvalFour, 8_000)
	v.SetDefault(ConfigEvalOpenThree, 4_000)
	v.SetDefault(ConfigEvalThree, 500)
	v.SetDefault(ConfigEvalDead, -20)
	v.SetDefault(ConfigEvalTwo, 8)
	v.SetDefault(ConfigEvalOne, 2)

	v.SetDefault(ConfigAutoplayTimeLimit, 500*time.Millisecond)
	v.SetDefault(ConfigAutoplayThreads, max(1, runtime.NumCPU()-1))
	v.SetDefault(ConfigAutoplayLogfile, "/tmp/gomoku-autoplay.csv")
	v.SetDefault(ConfigAutoplayGames, 100)
	v.SetDefault(ConfigAutoplaySeeds, "")
}

// DefaultConfig has defaults only: no flags, files or environment.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load reads, lowest precedence first: defaults, an optional config.yaml
// from the working directory or $HOME/.gomoku, GOMOKU_* environment
// variables, and finally command-line flags.
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".gomoku"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	v.SetEnvPrefix("gomoku")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("gomoku", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.Duration(ConfigTimeLimit, 10*time.Second, "wall-clock budget per engine move")
	fs.Float64(ConfigTimeSafetyFraction, 0.9, "fraction of the time limit the search may use")
	fs.Int(ConfigMaxDepth, 200, "deepest iterative-deepening pass")
	fs.Int(ConfigTTCapacity, 1_000_000, "transposition table entries; 0 sizes it from system memory")
	fs.Float64(ConfigTTMemoryFraction, 0.05, "fraction of system memory for the transposition table when tt-capacity is 0")
	fs.Uint64(ConfigSeed, 0, "random seed; 0 means non-deterministic")
	fs.String(ConfigSearchLog, "", "write a YAML log of every search pass to this file")
	fs.Duration(ConfigAutoplayTimeLimit, 500*time.Millisecond, "time limit per move in self-play")
	fs.Int(ConfigAutoplayThreads, max(1, runtime.NumCPU()-1), "self-play worker goroutines")
	fs.String(ConfigAutoplayLogfile, "/tmp/gomoku-autoplay.csv", "self-play move log")
	fs.Int(ConfigAutoplayGames, 100, "number of self-play games")
	fs.String(ConfigAutoplaySeeds, "", "seed file; read if it exists, otherwise written")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Only flags that were actually given override the lower layers.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}
	c.Viper = v
	c.args = fs.Args()
	return nil
}

// Args returns the command-line arguments left over after flags.
func (c *Config) Args() []string {
	return c.args
}

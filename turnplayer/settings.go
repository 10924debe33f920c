package turnplayer

import (
	"time"

	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/eval"
)

// EngineSettings are the knobs of one engine instance.
type EngineSettings struct {
	TimeLimit          time.Duration
	TimeSafetyFraction float64
	MaxDepth           int
	TTCapacity         int
	TTMemoryFraction   float64
	Seed               uint64
	SearchLog          string
	Weights            eval.Weights
}

func DefaultSettings() EngineSettings {
	return SettingsFromConfig(config.DefaultConfig())
}

func SettingsFromConfig(cfg *config.Config) EngineSettings {
	return EngineSettings{
		TimeLimit:          cfg.GetDuration(config.ConfigTimeLimit),
		TimeSafetyFraction: cfg.GetFloat64(config.ConfigTimeSafetyFraction),
		MaxDepth:           cfg.GetInt(config.ConfigMaxDepth),
		TTCapacity:         cfg.GetInt(config.ConfigTTCapacity),
		TTMemoryFraction:   cfg.GetFloat64(config.ConfigTTMemoryFraction),
		Seed:               cfg.GetUint64(config.ConfigSeed),
		SearchLog:          cfg.GetString(config.ConfigSearchLog),
		Weights: eval.Weights{
			Five:      cfg.GetInt32(config.ConfigEvalFive),
			OpenFour:  cfg.GetInt32(config.ConfigEvalOpenFour),
			Four:      cfg.GetInt32(config.ConfigEvalFour),
			OpenThree: cfg.GetInt32(config.ConfigEvalOpenThree),
			Three:     cfg.GetInt32(config.ConfigEvalThree),
			Dead:      cfg.GetInt32(config.ConfigEvalDead),
			Two:       cfg.GetInt32(config.ConfigEvalTwo),
			One:       cfg.GetInt32(config.ConfigEvalOne),
		},
	}
}

// Deadline is the part of the time limit the search may spend.
func (s EngineSettings) Deadline() time.Duration {
	frac := s.TimeSafetyFraction
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	return time.Duration(float64(s.TimeLimit) * frac)
}

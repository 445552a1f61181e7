package tabq

import (
	"github.com/tabq/tabq/game"
)

// Config configures a training run. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Name string

	// board geometry: M rows, N columns, K consecutive marks to win
	M, N, K int

	// learning parameters
	Alpha float32 // learning rate: how much a new target overwrites the old estimate
	Gamma float32 // discount on bootstrapped future value

	// exploration schedule. Epsilon is the probability of playing a random
	// legal move instead of the best known one; it shrinks by EpsilonDecay
	// after every episode, floored at EpsilonMin.
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64

	// Seed seeds the single RNG used for exploration and seat assignment.
	// Two runs with the same Config produce identical tables.
	Seed int64

	// StatsEvery controls how often (in episodes) win rates are sampled into
	// Statistics during Learn.
	StatsEvery int

	// extensions
	OutputEncoder OutputEncoder
}

// DefaultConfig returns a Config for tic-tac-toe with the usual starting
// points: α=0.5, γ=0.9, ε decaying linearly from 1 to 0.01.
func DefaultConfig() Config {
	return Config{
		Name:         "Tic Tac Toe",
		M:            3,
		N:            3,
		K:            3,
		Alpha:        0.5,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonDecay: 1e-5,
		EpsilonMin:   0.01,
		Seed:         1337,
		StatsEvery:   1000,
	}
}

// IsValid reports whether the configuration can be trained with.
func (c Config) IsValid() bool {
	return c.M > 0 && c.N > 0 && c.K > 0 &&
		(c.K <= c.M || c.K <= c.N) &&
		c.Alpha > 0 && c.Alpha <= 1 &&
		c.Gamma >= 0 && c.Gamma <= 1 &&
		c.Epsilon >= 0 && c.Epsilon <= 1 &&
		c.EpsilonDecay >= 0 && c.EpsilonMin >= 0 &&
		c.StatsEvery > 0
}

// OutputEncoder encodes the entire meta state as whatever.
//
// An example OutputEncoder is the GIF Encoder. Another example would be a logger.
type OutputEncoder interface {
	Encode(ms game.MetaState) error
	Flush() error
}

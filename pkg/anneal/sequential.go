package anneal

import (
	"iter"
	"log/slog"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/utils"
)

// EnergyFunc returns the cost of a state; lower is better. It may return NaN,
// which rejects the proposal.
type EnergyFunc[T any] func(T) float32

// NeighbourFunc proposes a new state near the given one. It must return a
// fresh value rather than modify its argument.
type NeighbourFunc[T any] func(T) T

// StageStats counts the outcomes of one temperature stage.
type StageStats struct {
	Temperature float32
	Accepted    int
	Rejected    int
	NaN         int
}

// chain is the single-chain transition state shared by Minimize and Stream.
type chain[T any] struct {
	chainLength int
	k           float32
	state       T
	energy      float32
	energyFn    EnergyFunc[T]
	neighbour   NeighbourFunc[T]
	rng         *utils.RandSource
}

func newChain[T any](chainLength int, k float32, start T, energy EnergyFunc[T], neighbour NeighbourFunc[T], seed uint64) (*chain[T], error) {
	if err := validateRun(chainLength, k); err != nil {
		return nil, err
	}
	if energy == nil || neighbour == nil {
		return nil, ErrMissingFunc
	}
	return &chain[T]{
		chainLength: chainLength,
		k:           k,
		state:       start,
		energy:      energy(start),
		energyFn:    energy,
		neighbour:   neighbour,
		rng:         utils.NewRandSource(seed),
	}, nil
}

// runStage performs chainLength proposals at one temperature.
func (c *chain[T]) runStage(stage int, temperature float32) StageStats {
	stats := StageStats{Temperature: temperature}
	for range c.chainLength {
		candidate := c.neighbour(c.state)
		candidateEnergy := c.energyFn(candidate)

		// NaN skips the iteration without drawing from the stream
		if utils.IsNaN32(candidateEnergy) {
			stats.NaN++
			continue
		}

		if Accept(c.energy, candidateEnergy, temperature, c.k, c.rng) {
			c.state = candidate
			c.energy = candidateEnergy
			stats.Accepted++
		} else {
			stats.Rejected++
		}
	}

	if logger.Enabled(slog.LevelDebug) {
		logger.Debug("temperature stage complete",
			"stage", stage,
			"temperature", temperature,
			"energy", c.energy,
			"accepted", stats.Accepted,
			"rejected", stats.Rejected,
			"nan", stats.NaN,
		)
	}
	return stats
}

// Minimize runs sequential simulated annealing from start and returns the
// final state.
//
// For each temperature, chainLength neighbours are proposed and accepted per
// Accept. A temperature of exactly zero ends the schedule before its stage
// runs and nothing further is pulled from temperatures. All acceptance draws
// come from one stream seeded with seed.
//
// k must be positive; otherwise ErrNonPositiveBoltzmann is returned before
// energy or neighbour is called.
func Minimize[T any](chainLength int, k float32, start T, energy EnergyFunc[T], neighbour NeighbourFunc[T], temperatures iter.Seq[float32], seed uint64) (T, error) {
	c, err := newChain(chainLength, k, start, energy, neighbour, seed)
	if err != nil {
		var zero T
		return zero, err
	}
	if temperatures == nil {
		return c.state, nil
	}

	stage := 0
	for temperature := range temperatures {
		if temperature == 0 {
			break
		}
		c.runStage(stage, temperature)
		stage++
	}
	return c.state, nil
}

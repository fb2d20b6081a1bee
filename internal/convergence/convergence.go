package convergence

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/config"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/models"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/utils"
)

// Strategy defines how to detect convergence of a streamed run
type Strategy interface {
	// Check reports whether the run has converged given its stage history
	Check(history []models.StageRecord) (bool, string)
	// Name returns the name of the strategy
	Name() string
}

// Config holds the settings shared by the strategies
type Config struct {
	// NoImprovementStages is the number of stages without a new best before stopping
	NoImprovementStages int
	// PlateauStages is the window of recent stages compared by the plateau check
	PlateauStages int
	// Tolerance is the absolute energy range treated as flat
	Tolerance float64
	// MinStages is the minimum number of eligible stages before convergence can be detected
	MinStages int
	// MaxTemperature excludes hotter stages from every check; 0 disables the filter
	MaxTemperature float64
}

// eligible returns the stages cool enough to count towards convergence.
// Hot stages wander by design, so their energies say nothing about whether
// the run has settled.
func (c *Config) eligible(history []models.StageRecord) []models.StageRecord {
	if !(c.MaxTemperature > 0) {
		return history
	}
	cool := make([]models.StageRecord, 0, len(history))
	for _, rec := range history {
		if float64(rec.Temperature) <= c.MaxTemperature {
			cool = append(cool, rec)
		}
	}
	return cool
}

// DefaultConfig returns a default convergence configuration
func DefaultConfig() *Config {
	return &Config{
		NoImprovementStages: 5,
		PlateauStages:       5,
		Tolerance:           1e-3,
		MinStages:           3,
	}
}

// FromConfig builds the strategy named by a run configuration
func FromConfig(c *config.Convergence) (Strategy, error) {
	if c == nil {
		return nil, fmt.Errorf("convergence config is nil")
	}
	cfg := &Config{
		NoImprovementStages: c.NoImprovementStages,
		PlateauStages:       c.PlateauStages,
		Tolerance:           c.Tolerance,
		MinStages:           c.MinStages,
		MaxTemperature:      c.MaxTemperature,
	}
	switch c.Strategy {
	case config.ConvergenceNoImprovement:
		return NewNoImprovementStrategy(cfg), nil
	case config.ConvergencePlateau:
		return NewPlateauStrategy(cfg), nil
	case config.ConvergenceCombined:
		return NewCombinedStrategy(cfg), nil
	default:
		return nil, fmt.Errorf("unknown convergence strategy: %s", c.Strategy)
	}
}

// NoImprovementStrategy converges when no stage has beaten the best energy
// for N stages
type NoImprovementStrategy struct {
	config *Config
}

// NewNoImprovementStrategy creates a new no-improvement strategy
func NewNoImprovementStrategy(config *Config) *NoImprovementStrategy {
	if config == nil {
		config = DefaultConfig()
	}
	return &NoImprovementStrategy{config: config}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) Check(history []models.StageRecord) (converged bool, reason string) {
	history = s.config.eligible(history)
	if len(history) == 0 || len(history) < s.config.MinStages {
		return false, ""
	}

	best := float32(math.Inf(1))
	bestStage := -1
	for i, rec := range history {
		if rec.Energy < best {
			best = rec.Energy
			bestStage = i
		}
	}

	// only NaN energies so far
	if bestStage < 0 {
		return false, ""
	}

	sinceBest := len(history) - 1 - bestStage
	if sinceBest >= s.config.NoImprovementStages {
		return true, fmt.Sprintf("no improvement for %d stages (best %.6g at stage %d)", sinceBest, best, history[bestStage].Stage)
	}

	return false, ""
}

// PlateauStrategy converges when the last N stage energies lie within the
// tolerance of each other
type PlateauStrategy struct {
	config *Config
}

// NewPlateauStrategy creates a new plateau strategy
func NewPlateauStrategy(config *Config) *PlateauStrategy {
	if config == nil {
		config = DefaultConfig()
	}
	return &PlateauStrategy{config: config}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) Check(history []models.StageRecord) (converged bool, reason string) {
	history = s.config.eligible(history)
	if len(history) < s.config.MinStages || len(history) < s.config.PlateauStages || s.config.PlateauStages < 1 {
		return false, ""
	}

	recent := history[len(history)-s.config.PlateauStages:]
	energies := make([]float32, len(recent))
	for i, rec := range recent {
		energies[i] = rec.Energy
	}
	widened := utils.Widen(nil, energies)
	if floats.HasNaN(widened) {
		return false, ""
	}

	spread := floats.Max(widened) - floats.Min(widened)
	if spread <= s.config.Tolerance {
		return true, fmt.Sprintf("energy plateaued for %d stages (range: %.6f)", s.config.PlateauStages, spread)
	}

	return false, ""
}

// CombinedStrategy converges as soon as any of its strategies does
type CombinedStrategy struct {
	strategies []Strategy
	config     *Config
}

// NewCombinedStrategy creates a strategy combining no-improvement and plateau
func NewCombinedStrategy(config *Config) *CombinedStrategy {
	if config == nil {
		config = DefaultConfig()
	}
	return &CombinedStrategy{
		strategies: []Strategy{
			NewNoImprovementStrategy(config),
			NewPlateauStrategy(config),
		},
		config: config,
	}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) Check(history []models.StageRecord) (converged bool, reason string) {
	for _, strategy := range s.strategies {
		converged, reason := strategy.Check(history)
		if converged {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), reason)
		}
	}

	return false, ""
}

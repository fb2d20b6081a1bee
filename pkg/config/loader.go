package config

import (
	"fmt"
	"os"
)

// LoadRun loads and parses a run configuration file
func LoadRun(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file %s: %w", path, err)
	}
	cfg, err := ParseRunYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run file %s: %w", path, err)
	}
	return cfg, nil
}

// validateRun performs validation on the run configuration
func validateRun(cfg *RunConfig) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[cfg.LogFormat] {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	validModes := map[string]bool{
		ModeSequential: true,
		ModeLazy:       true,
		ModeParallel:   true,
	}
	if !validModes[cfg.Mode] {
		return fmt.Errorf("invalid mode: %s (must be sequential, lazy, or parallel)", cfg.Mode)
	}

	if err := validateProblem(&cfg.Problem); err != nil {
		return fmt.Errorf("problem validation failed: %w", err)
	}

	if err := validateAnneal(&cfg.Anneal, cfg.Mode); err != nil {
		return fmt.Errorf("anneal validation failed: %w", err)
	}

	if err := validateSchedule(&cfg.Schedule); err != nil {
		return fmt.Errorf("schedule validation failed: %w", err)
	}

	if err := validatePerturbation(&cfg.Perturbation); err != nil {
		return fmt.Errorf("perturbation validation failed: %w", err)
	}

	if cfg.Convergence != nil {
		if cfg.Mode != ModeLazy {
			return fmt.Errorf("convergence is only supported in lazy mode, got mode %s", cfg.Mode)
		}
		if err := validateConvergence(cfg.Convergence); err != nil {
			return fmt.Errorf("convergence validation failed: %w", err)
		}
	}

	if cfg.Refine != nil {
		if err := validateRefine(cfg.Refine); err != nil {
			return fmt.Errorf("refine validation failed: %w", err)
		}
	}

	return nil
}

// validateProblem validates the objective and start point
func validateProblem(p *Problem) error {
	validObjectives := map[string]bool{
		"sphere":    true,
		"ackley":    true,
		"rastrigin": true,
		"schwefel":  true,
	}
	if !validObjectives[p.Objective] {
		return fmt.Errorf("invalid objective: %s (must be sphere, ackley, rastrigin, or schwefel)", p.Objective)
	}
	if len(p.Start) == 0 {
		return fmt.Errorf("start must have at least one coordinate")
	}
	return nil
}

// validateAnneal validates the annealing hyperparameters
func validateAnneal(a *Anneal, mode string) error {
	if !(a.K > 0) {
		return fmt.Errorf("k must be positive, got %v", a.K)
	}
	if a.ChainLength <= 0 {
		return fmt.Errorf("chain_length must be positive, got %d", a.ChainLength)
	}
	if mode == ModeParallel && a.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive in parallel mode, got %d", a.BatchSize)
	}
	return nil
}

// validateSchedule validates the cooling schedule
func validateSchedule(s *Schedule) error {
	switch s.Type {
	case ScheduleExponential:
		if s.Start <= 0 {
			return fmt.Errorf("exponential start must be positive, got %v", s.Start)
		}
		if s.Alpha <= 0 || s.Alpha >= 1 {
			return fmt.Errorf("exponential alpha must be between 0 and 1, got %v", s.Alpha)
		}
		if s.Steps <= 0 {
			return fmt.Errorf("steps must be positive, got %d", s.Steps)
		}
	case ScheduleLinear:
		if s.Start <= 0 {
			return fmt.Errorf("linear start must be positive, got %v", s.Start)
		}
		if s.End < 0 || s.End > s.Start {
			return fmt.Errorf("linear end must be between 0 and start, got %v", s.End)
		}
		if s.Steps <= 0 {
			return fmt.Errorf("steps must be positive, got %d", s.Steps)
		}
	case ScheduleValues:
		if len(s.Values) == 0 {
			return fmt.Errorf("values schedule must list at least one temperature")
		}
		for i, v := range s.Values {
			// negated so NaN is rejected too
			if !(v >= 0) {
				return fmt.Errorf("values[%d]: temperature must be a non-negative number, got %v", i, v)
			}
		}
	default:
		return fmt.Errorf("invalid schedule type: %s (must be exponential, linear, or values)", s.Type)
	}
	return nil
}

// validatePerturbation validates the neighbour operator settings
func validatePerturbation(p *Perturbation) error {
	if p.Scale < 0 {
		return fmt.Errorf("scale cannot be negative, got %f", p.Scale)
	}
	if (p.Lower == nil) != (p.Upper == nil) {
		return fmt.Errorf("lower and upper must be set together")
	}
	if p.Bounded() && *p.Lower >= *p.Upper {
		return fmt.Errorf("lower (%f) must be below upper (%f)", *p.Lower, *p.Upper)
	}
	return nil
}

// validateConvergence validates the early stopping settings
func validateConvergence(c *Convergence) error {
	validStrategies := map[string]bool{
		ConvergenceNoImprovement: true,
		ConvergencePlateau:       true,
		ConvergenceCombined:      true,
	}
	if !validStrategies[c.Strategy] {
		return fmt.Errorf("invalid strategy: %s (must be no_improvement, plateau, or combined)", c.Strategy)
	}
	if c.NoImprovementStages < 1 {
		return fmt.Errorf("no_improvement_stages must be positive, got %d", c.NoImprovementStages)
	}
	if c.PlateauStages < 2 {
		return fmt.Errorf("plateau_stages must be at least 2, got %d", c.PlateauStages)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative, got %f", c.Tolerance)
	}
	if !(c.MaxTemperature > 0) {
		return fmt.Errorf("max_temperature must be positive, got %f", c.MaxTemperature)
	}
	return nil
}

// validateRefine validates the local polishing settings
func validateRefine(r *Refine) error {
	validMethods := map[string]bool{
		RefineNelderMead: true,
		RefineBFGS:       true,
	}
	if !validMethods[r.Method] {
		return fmt.Errorf("invalid method: %s (must be nelder_mead or bfgs)", r.Method)
	}
	if r.MajorIterations < 0 {
		return fmt.Errorf("major_iterations cannot be negative, got %d", r.MajorIterations)
	}
	return nil
}

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseRunYAML parses a RunConfig from YAML bytes, fills defaults and
// validates it.
func ParseRunYAML(data []byte) (*RunConfig, error) {
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse run yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateRun(&cfg); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}

	return &cfg, nil
}

// ParseRunYAMLString parses a RunConfig from a YAML string.
func ParseRunYAMLString(yamlText string) (*RunConfig, error) {
	return ParseRunYAML([]byte(yamlText))
}

// applyDefaults fills optional fields left empty in the YAML
func applyDefaults(cfg *RunConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSequential
	}
	if cfg.Schedule.Type == "" {
		cfg.Schedule.Type = ScheduleExponential
	}
	if r := cfg.Refine; r != nil {
		if r.Method == "" {
			r.Method = RefineNelderMead
		}
		if r.MajorIterations == 0 {
			r.MajorIterations = 500
		}
	}
	if c := cfg.Convergence; c != nil {
		if c.Strategy == "" {
			c.Strategy = ConvergenceCombined
		}
		if c.NoImprovementStages == 0 {
			c.NoImprovementStages = 5
		}
		if c.PlateauStages == 0 {
			c.PlateauStages = 5
		}
		if c.Tolerance == 0 {
			c.Tolerance = 1e-3
		}
		if c.MinStages == 0 {
			c.MinStages = 3
		}
		if c.MaxTemperature == 0 {
			c.MaxTemperature = coolThreshold(cfg.Schedule)
		}
	}
}

// coolThreshold is the default convergence temperature cap: 5% of the
// hottest temperature the schedule produces
func coolThreshold(s Schedule) float64 {
	hottest := float64(s.Start)
	if s.Type == ScheduleValues {
		hottest = 0
		for _, v := range s.Values {
			hottest = max(hottest, float64(v))
		}
	}
	return 0.05 * hottest
}

package runner

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/anneal"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/config"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/models"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/objective"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/schedule"
)

func seedPtr(v uint64) *uint64 { return &v }

func sphereRun(mode string) *config.RunConfig {
	return &config.RunConfig{
		LogLevel:  "info",
		LogFormat: "json",
		Mode:      mode,
		Seed:      seedPtr(42),
		Problem: config.Problem{
			Objective: "sphere",
			Start:     []float64{3, -2},
		},
		Anneal: config.Anneal{K: 1, ChainLength: 100, BatchSize: 20},
		Schedule: config.Schedule{
			Type:  config.ScheduleExponential,
			Start: 10,
			Alpha: 0.8,
			Steps: 40,
		},
		Perturbation: config.Perturbation{Scale: 0.3},
	}
}

func TestNewUnknownObjective(t *testing.T) {
	cfg := sphereRun(config.ModeSequential)
	cfg.Problem.Objective = "rosenbrock"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown objective")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestRunSequential(t *testing.T) {
	cfg := sphereRun(config.ModeSequential)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s", res.Status)
	}
	if res.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", res.Seed)
	}
	if len(res.Best) != 2 {
		t.Fatalf("expected 2 coordinates, got %v", res.Best)
	}
	if res.Energy >= 0.5 {
		t.Fatalf("expected energy below 0.5, got %v at %v", res.Energy, res.Best)
	}
	if cfg.Problem.Start[0] != 3 || cfg.Problem.Start[1] != -2 {
		t.Fatalf("run modified the configured start: %v", cfg.Problem.Start)
	}
}

func TestRunSequentialReproducible(t *testing.T) {
	run := func() *models.RunResult {
		r, err := New(sphereRun(config.ModeSequential))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return res
	}
	a, b := run(), run()
	if !slices.Equal(a.Best, b.Best) {
		t.Fatalf("same seed gave different results: %v vs %v", a.Best, b.Best)
	}
	if a.RunID == "" || b.RunID == "" {
		t.Fatalf("expected run ids to be set")
	}
}

func TestRunLazyMatchesSequential(t *testing.T) {
	seq, err := New(sphereRun(config.ModeSequential))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	lazy, err := New(sphereRun(config.ModeLazy))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a, err := seq.Run(context.Background())
	if err != nil {
		t.Fatalf("sequential run failed: %v", err)
	}
	b, err := lazy.Run(context.Background())
	if err != nil {
		t.Fatalf("lazy run failed: %v", err)
	}
	if !slices.Equal(a.Best, b.Best) {
		t.Fatalf("lazy and sequential runs differ: %v vs %v", a.Best, b.Best)
	}
	if len(b.Stages) != 40 {
		t.Fatalf("expected 40 recorded stages, got %d", len(b.Stages))
	}
	if b.Stages[0].Temperature != 10 {
		t.Fatalf("expected first temperature 10, got %v", b.Stages[0].Temperature)
	}
	if b.Summary == nil || b.Summary.Count != 40 {
		t.Fatalf("expected summary over 40 stages, got %+v", b.Summary)
	}
	if b.BestStage == nil {
		t.Fatalf("expected best stage in lazy result")
	}
	for _, rec := range b.Stages {
		if rec.Energy < b.BestStage.Energy {
			t.Fatalf("stage %d energy %v beats reported best %v", rec.Stage, rec.Energy, b.BestStage.Energy)
		}
	}
}

func TestRunLazyRunFileStopsOnlyWhenCold(t *testing.T) {
	cfg, err := config.LoadRun("../../config/lazy.yaml")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	f, err := objective.New(cfg.Problem.Objective)
	if err != nil {
		t.Fatalf("objective.New failed: %v", err)
	}
	startEnergy := f(cfg.Problem.Start)
	maxT := float32(cfg.Convergence.MaxTemperature)

	for seed := uint64(1); seed <= 10; seed++ {
		cfg.Seed = seedPtr(seed)
		r, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("seed %d: Run failed: %v", seed, err)
		}
		last := res.Stages[len(res.Stages)-1]
		if res.Status == models.RunStatusConverged && last.Temperature > maxT {
			t.Fatalf("seed %d: converged at stage %d with T=%v above %v (%s)",
				seed, last.Stage, last.Temperature, maxT, res.Reason)
		}
		if res.Energy >= startEnergy {
			t.Fatalf("seed %d: final energy %v not below start energy %v", seed, res.Energy, startEnergy)
		}
	}
}

func TestRunLazyConverges(t *testing.T) {
	cfg := sphereRun(config.ModeLazy)
	cfg.Problem.Start = []float64{0, 0}
	cfg.Perturbation.Scale = 0
	cfg.Convergence = &config.Convergence{
		Strategy:            config.ConvergenceCombined,
		NoImprovementStages: 5,
		PlateauStages:       3,
		Tolerance:           1e-6,
		MinStages:           3,
	}

	var reported []models.StageRecord
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.WithProgressReporter(func(rec models.StageRecord) {
		reported = append(reported, rec)
	}).WithStates(true)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Status != models.RunStatusConverged {
		t.Fatalf("expected converged, got %s", res.Status)
	}
	if !strings.HasPrefix(res.Reason, "plateau:") {
		t.Fatalf("expected plateau reason, got %q", res.Reason)
	}
	if len(res.Stages) != 3 || len(reported) != 3 {
		t.Fatalf("expected 3 stages, got %d recorded and %d reported", len(res.Stages), len(reported))
	}
	for _, rec := range res.Stages {
		if rec.Accepted != 100 {
			t.Fatalf("expected every tie to be accepted, got %+v", rec)
		}
		if len(rec.State) != 2 {
			t.Fatalf("expected recorded state, got %v", rec.State)
		}
	}
}

func TestRunParallel(t *testing.T) {
	cfg := sphereRun(config.ModeParallel)
	cfg.Problem.Start = []float64{3}
	cfg.Anneal.ChainLength = 50
	cfg.Schedule = config.Schedule{
		Type:   config.ScheduleValues,
		Values: []float32{5, 2, 1, 0.5, 0.1, 0.05},
	}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Best) != 1 {
		t.Fatalf("expected 1 coordinate, got %v", res.Best)
	}
	if res.Energy >= 1 {
		t.Fatalf("expected energy below 1, got %v", res.Energy)
	}
}

func TestRunRefine(t *testing.T) {
	cfg := sphereRun(config.ModeSequential)
	cfg.Refine = &config.Refine{Method: config.RefineNelderMead, MajorIterations: 500}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Refined == nil {
		t.Fatalf("expected refinement in result")
	}
	if res.Refined.Energy > res.Energy {
		t.Fatalf("refinement made the result worse: %v > %v", res.Refined.Energy, res.Energy)
	}
	if len(res.Refined.Best) != 2 {
		t.Fatalf("expected 2 refined coordinates, got %v", res.Refined.Best)
	}
}

func TestRunBadBoltzmann(t *testing.T) {
	cfg := sphereRun(config.ModeSequential)
	cfg.Anneal.K = 0

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := r.Run(context.Background())
	if !errors.Is(err, anneal.ErrNonPositiveBoltzmann) {
		t.Fatalf("expected ErrNonPositiveBoltzmann, got %v", err)
	}
	if res.Status != models.RunStatusFailed || res.Error == "" {
		t.Fatalf("expected failed result with error, got %+v", res)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, mode := range []string{config.ModeSequential, config.ModeLazy, config.ModeParallel} {
		t.Run(mode, func(t *testing.T) {
			r, err := New(sphereRun(mode))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			res, err := r.Run(ctx)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if res.Status != models.RunStatusCancelled {
				t.Fatalf("expected cancelled, got %s", res.Status)
			}
			if !slices.Equal(res.Best, []float64{3, -2}) {
				t.Fatalf("expected start state, got %v", res.Best)
			}
		})
	}
}

func TestBuildSchedule(t *testing.T) {
	tests := []struct {
		name string
		s    config.Schedule
		want []float32
	}{
		{"exponential", config.Schedule{Type: config.ScheduleExponential, Start: 8, Alpha: 0.5, Steps: 3}, []float32{8, 4, 2}},
		{"linear", config.Schedule{Type: config.ScheduleLinear, Start: 2, End: 0, Steps: 3}, []float32{2, 1, 0}},
		{"values", config.Schedule{Type: config.ScheduleValues, Values: []float32{3, 1}}, []float32{3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := buildSchedule(tt.s)
			if err != nil {
				t.Fatalf("buildSchedule failed: %v", err)
			}
			if got := slices.Collect(seq); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := buildSchedule(config.Schedule{Type: "cubic"}); err == nil {
		t.Fatalf("expected error for unknown schedule")
	}
}

func TestWithContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []float32
	for temp := range withContext(ctx, schedule.Exponential(1, 0.5, -1)) {
		got = append(got, temp)
		if len(got) == 3 {
			cancel()
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 temperatures before cancellation, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	if summarize(nil) != nil {
		t.Fatalf("expected nil summary for no stages")
	}
	s := summarize([]models.StageRecord{{Energy: 1}, {Energy: 3}, {Energy: 2}})
	if s.Count != 3 || s.Min != 1 || s.Max != 3 || s.Mean != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	// population standard deviation of {1, 3, 2}
	if want := math.Sqrt(2.0 / 3.0); math.Abs(s.StdDev-want) > 1e-12 {
		t.Fatalf("expected stddev %v, got %v", want, s.StdDev)
	}
}

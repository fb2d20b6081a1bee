package runner

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/GoSim-25-26J-441/annealing-core/internal/convergence"
	"github.com/GoSim-25-26J-441/annealing-core/internal/refine"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/anneal"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/config"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/models"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/neighbour"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/objective"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/schedule"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/utils"
)

// noiseSalt separates the perturbation stream from the acceptance stream
// derived from the same run seed.
const noiseSalt = 0x5851f42d4c957f2d

// ProgressFunc is called after every recorded stage of a lazy run
type ProgressFunc func(rec models.StageRecord)

// Runner executes one benchmark run described by a RunConfig
type Runner struct {
	cfg          *config.RunConfig
	objective    objective.Func
	strategy     convergence.Strategy
	progress     ProgressFunc
	recordStates bool
}

// New validates the parts of cfg the runner depends on and prepares a run
func New(cfg *config.RunConfig) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("run config is required")
	}
	f, err := objective.New(cfg.Problem.Objective)
	if err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, objective: f}
	if cfg.Convergence != nil {
		strategy, err := convergence.FromConfig(cfg.Convergence)
		if err != nil {
			return nil, err
		}
		r.strategy = strategy
	}
	return r, nil
}

// WithProgressReporter sets a callback invoked after each lazy stage
func (r *Runner) WithProgressReporter(fn ProgressFunc) *Runner {
	r.progress = fn
	return r
}

// WithStates makes lazy runs keep the state of every stage in the result
func (r *Runner) WithStates(record bool) *Runner {
	r.recordStates = record
	return r
}

// Run executes the run. Cancelling ctx stops the run at the next stage
// boundary; the partial result is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	seed := utils.GenerateSeed()
	if r.cfg.Seed != nil {
		seed = *r.cfg.Seed
	}

	result := &models.RunResult{
		RunID:     utils.GenerateRunID(),
		Status:    models.RunStatusRunning,
		Mode:      r.cfg.Mode,
		Objective: r.cfg.Problem.Objective,
		Seed:      seed,
		StartTime: time.Now(),
	}
	log := logger.With("run_id", result.RunID, "mode", result.Mode)
	log.Info("run started",
		"objective", result.Objective,
		"seed", seed,
		"chain_length", r.cfg.Anneal.ChainLength,
		"k", r.cfg.Anneal.K,
	)

	temperatures, err := buildSchedule(r.cfg.Schedule)
	if err != nil {
		return r.fail(log, result, err)
	}
	temperatures = withContext(ctx, temperatures)

	switch r.cfg.Mode {
	case config.ModeSequential:
		err = r.runSequential(result, temperatures, seed)
	case config.ModeLazy:
		err = r.runLazy(ctx, log, result, temperatures, seed)
	case config.ModeParallel:
		err = r.runParallel(result, temperatures, seed)
	default:
		err = fmt.Errorf("unknown mode: %s", r.cfg.Mode)
	}
	if err != nil {
		return r.fail(log, result, err)
	}

	if rc := r.cfg.Refine; rc != nil && ctx.Err() == nil {
		polished, err := refine.Polish(r.objective, result.Best, rc.Method, rc.MajorIterations)
		if err != nil {
			return r.fail(log, result, err)
		}
		result.Refined = &models.Refinement{
			Method:      polished.Method,
			Best:        polished.X,
			Energy:      polished.Energy,
			Evaluations: polished.Evaluations,
			Status:      polished.Status,
			Improved:    polished.Improved,
		}
		log.Info("result refined",
			"method", polished.Method,
			"energy", polished.Energy,
			"evaluations", polished.Evaluations,
			"improved", polished.Improved,
		)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.Status = models.RunStatusCancelled
		result.Error = ctxErr.Error()
		log.Warn("run cancelled", "energy", result.Energy, "duration", result.Duration)
		return result, ctxErr
	}
	if result.Status == models.RunStatusRunning {
		result.Status = models.RunStatusCompleted
	}
	log.Info("run finished",
		"status", result.Status,
		"energy", result.Energy,
		"best", result.Best,
		"duration", result.Duration,
	)
	return result, nil
}

func (r *Runner) fail(log *slog.Logger, result *models.RunResult, err error) (*models.RunResult, error) {
	result.Status = models.RunStatusFailed
	result.Error = err.Error()
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	log.Error("run failed", "error", err)
	return result, fmt.Errorf("run %s failed: %w", result.RunID, err)
}

func (r *Runner) runSequential(result *models.RunResult, temperatures iter.Seq[float32], seed uint64) error {
	a := r.cfg.Anneal
	best, err := anneal.Minimize[[]float64](
		a.ChainLength, a.K, slices.Clone(r.cfg.Problem.Start),
		anneal.EnergyFunc[[]float64](r.objective), r.scalarNeighbour(seed),
		temperatures, seed,
	)
	if err != nil {
		return err
	}
	result.Best = best
	result.Energy = r.objective(best)
	return nil
}

func (r *Runner) runLazy(ctx context.Context, log *slog.Logger, result *models.RunResult, temperatures iter.Seq[float32], seed uint64) error {
	a := r.cfg.Anneal
	stream, err := anneal.MinimizeLazy[[]float64](
		a.ChainLength, a.K, slices.Clone(r.cfg.Problem.Start),
		anneal.EnergyFunc[[]float64](r.objective), r.scalarNeighbour(seed),
		temperatures, seed, cloneState,
	)
	if err != nil {
		return err
	}
	defer stream.Stop()

	history := &models.History{}
	state := slices.Clone(r.cfg.Problem.Start)
	for ctx.Err() == nil {
		next, ok := stream.Next()
		if !ok {
			break
		}
		state = next

		stats := stream.LastStats()
		rec := models.StageRecord{
			Stage:       stream.Stages() - 1,
			Temperature: stats.Temperature,
			Energy:      stream.Energy(),
			Accepted:    stats.Accepted,
			Rejected:    stats.Rejected,
			NaN:         stats.NaN,
		}
		if r.recordStates {
			rec.State = cloneState(state)
		}
		history.Add(rec)
		if r.progress != nil {
			r.progress(rec)
		}

		if r.strategy == nil {
			continue
		}
		if converged, reason := r.strategy.Check(history.Stages()); converged {
			result.Status = models.RunStatusConverged
			result.Reason = reason
			log.Info("run converged",
				"stage", rec.Stage,
				"stages", history.Len(),
				"temperature", rec.Temperature,
				"reason", reason,
			)
			break
		}
	}

	result.Best = state
	result.Energy = stream.Energy()
	result.Stages = history.Stages()
	result.Summary = summarize(result.Stages)
	if best, ok := history.Best(); ok {
		result.BestStage = &best
	}
	return nil
}

func (r *Runner) runParallel(result *models.RunResult, temperatures iter.Seq[float32], seed uint64) error {
	a := r.cfg.Anneal
	start := mat.NewVecDense(len(r.cfg.Problem.Start), slices.Clone(r.cfg.Problem.Start))
	batch, err := anneal.MinimizeNumeric(
		a.BatchSize, a.ChainLength, a.K, start,
		objective.Batch(r.objective), r.batchNeighbour(seed),
		temperatures, seed,
	)
	if err != nil {
		return err
	}
	// every column holds the elite after the last stage
	result.Best = mat.Col(nil, 0, batch)
	result.Energy = r.objective(result.Best)
	return nil
}

func (r *Runner) scalarNeighbour(seed uint64) anneal.NeighbourFunc[[]float64] {
	p := r.cfg.Perturbation
	op := neighbour.Gaussian(p.Scale, utils.NewRandSource(seed^noiseSalt))
	if p.Bounded() {
		op = neighbour.Clamp(op, *p.Lower, *p.Upper)
	}
	return op
}

func (r *Runner) batchNeighbour(seed uint64) anneal.BatchNeighbourFunc {
	p := r.cfg.Perturbation
	op := neighbour.GaussianBatch(p.Scale, utils.NewRandSource(seed^noiseSalt))
	if p.Bounded() {
		op = neighbour.ClampBatch(op, *p.Lower, *p.Upper)
	}
	return op
}

func cloneState(x []float64) []float64 {
	return slices.Clone(x)
}

// buildSchedule turns the schedule section of a run file into a temperature
// sequence
func buildSchedule(s config.Schedule) (iter.Seq[float32], error) {
	switch s.Type {
	case config.ScheduleExponential:
		return schedule.Exponential(s.Start, s.Alpha, s.Steps), nil
	case config.ScheduleLinear:
		return schedule.Linear(s.Start, s.End, s.Steps), nil
	case config.ScheduleValues:
		return schedule.Values(s.Values...), nil
	default:
		return nil, fmt.Errorf("unknown schedule type: %s", s.Type)
	}
}

// withContext ends seq once ctx is done
func withContext(ctx context.Context, seq iter.Seq[float32]) iter.Seq[float32] {
	return func(yield func(float32) bool) {
		for t := range seq {
			if ctx.Err() != nil {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

func summarize(stages []models.StageRecord) *models.EnergySummary {
	if len(stages) == 0 {
		return nil
	}
	energies := make([]float32, len(stages))
	for i, rec := range stages {
		energies[i] = rec.Energy
	}
	widened := utils.Widen(nil, energies)
	return &models.EnergySummary{
		Count:  len(widened),
		Min:    floats.Min(widened),
		Max:    floats.Max(widened),
		Mean:   stat.Mean(widened, nil),
		StdDev: stat.PopStdDev(widened, nil),
	}
}

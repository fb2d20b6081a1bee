package anneal

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/annealing-core/pkg/utils"
)

// BatchEnergyFunc evaluates every column of a batch and returns one energy
// per chain, in column order.
type BatchEnergyFunc func(batch *mat.Dense) []float32

// BatchNeighbourFunc returns a new batch of the same shape holding one
// proposal per chain. Chains must be perturbed independently.
type BatchNeighbourFunc func(batch *mat.Dense) *mat.Dense

// MinimizeNumeric runs batchSize annealing chains side by side over numeric
// vectors and returns the final batch, a dims x batchSize matrix whose
// columns are all equal.
//
// The batch starts as batchSize copies of start. At each temperature every
// chain takes chainLength proposal steps; each chain draws one uniform value
// per step and accepts when AcceptanceProbability exceeds it. After the
// stage the batch is replaced by copies of its lowest-energy chain (first
// index on ties).
//
// The per-chain energies are not recomputed after that collapse. Each chain
// keeps the energy it held before the broadcast until its next accepted
// proposal, so the first comparison of a stage is made against those
// carried-over values.
//
// There is no zero-temperature sentinel here; the schedule is consumed to
// the end. k must be positive; otherwise ErrNonPositiveBoltzmann is
// returned before any callback runs.
func MinimizeNumeric(batchSize, chainLength int, k float32, start mat.Vector, energy BatchEnergyFunc, neighbour BatchNeighbourFunc, temperatures iter.Seq[float32], seed uint64) (*mat.Dense, error) {
	if err := validateRun(chainLength, k); err != nil {
		return nil, err
	}
	if batchSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	if start == nil || start.Len() == 0 {
		return nil, ErrEmptyState
	}
	if energy == nil || neighbour == nil {
		return nil, ErrMissingFunc
	}

	dims := start.Len()
	x := tile(start, batchSize)
	ex, err := evaluateBatch(energy, x, batchSize)
	if err != nil {
		return nil, err
	}
	// energy may reuse its result buffer between calls
	ex = slices.Clone(ex)
	if temperatures == nil {
		return x, nil
	}

	rng := utils.NewRandSource(seed)
	accepted := make([]bool, batchSize)
	var widened []float64

	stage := 0
	for temperature := range temperatures {
		acceptCount := 0
		for range chainLength {
			proposal := neighbour(x)
			if proposal == nil {
				return nil, fmt.Errorf("%w: neighbour returned nil", ErrBatchShape)
			}
			if r, c := proposal.Dims(); r != dims || c != batchSize {
				return nil, fmt.Errorf("%w: neighbour returned %dx%d, want %dx%d", ErrBatchShape, r, c, dims, batchSize)
			}
			en, err := evaluateBatch(energy, proposal, batchSize)
			if err != nil {
				return nil, err
			}

			kt := k * temperature
			for j := range batchSize {
				p := math.Exp(float64((ex[j] - en[j]) / kt))
				accepted[j] = p > rng.Float64()
				if accepted[j] {
					acceptCount++
				}
			}

			x = selectColumns(proposal, x, accepted)
			for j, ok := range accepted {
				if ok {
					ex[j] = en[j]
				}
			}
		}

		widened = utils.Widen(widened, ex)
		elite := floats.MinIdx(widened)
		x = tile(x.ColView(elite), batchSize)

		if logger.Enabled(slog.LevelDebug) {
			logger.Debug("batch collapsed to elite",
				"stage", stage,
				"temperature", temperature,
				"elite", elite,
				"energy", ex[elite],
				"accepted", acceptCount,
			)
		}
		stage++
	}
	return x, nil
}

// evaluateBatch calls energy and checks that it returned one value per chain.
func evaluateBatch(energy BatchEnergyFunc, batch *mat.Dense, batchSize int) ([]float32, error) {
	en := energy(batch)
	if len(en) != batchSize {
		return nil, fmt.Errorf("%w: energy returned %d values, want %d", ErrBatchShape, len(en), batchSize)
	}
	return en, nil
}

// tile returns a len(v) x n matrix with v in every column.
func tile(v mat.Vector, n int) *mat.Dense {
	col := make([]float64, v.Len())
	for i := range col {
		col[i] = v.AtVec(i)
	}
	out := mat.NewDense(len(col), n, nil)
	for j := range n {
		out.SetCol(j, col)
	}
	return out
}

// selectColumns builds a new batch taking column j from proposal where
// accepted[j] is set and from current otherwise.
func selectColumns(proposal, current *mat.Dense, accepted []bool) *mat.Dense {
	rows, cols := current.Dims()
	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := range cols {
		src := current
		if accepted[j] {
			src = proposal
		}
		out.SetCol(j, mat.Col(col, j, src))
	}
	return out
}

// Package refine polishes an annealed point with a local optimizer.
package refine

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/optimize"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/objective"
)

// Method names a local optimizer
const (
	MethodNelderMead = "nelder_mead"
	MethodBFGS       = "bfgs"
)

// Result is the outcome of a refinement
type Result struct {
	Method      string
	X           []float64
	Energy      float32
	Evaluations int
	Status      string
	Improved    bool
}

// Polish runs a local minimization of f from x0 and keeps whichever of x0 and
// the optimizer's location has the lower energy. BFGS differentiates f
// numerically. majorIterations of 0 means no iteration limit.
func Polish(f objective.Func, x0 []float64, method string, majorIterations int) (*Result, error) {
	if len(x0) == 0 {
		return nil, fmt.Errorf("refinement needs a non-empty start point")
	}
	m, err := newMethod(method)
	if err != nil {
		return nil, err
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return float64(f(x))
		},
	}
	if method == MethodBFGS {
		problem.Grad = centralDifference(problem.Func)
	}
	settings := &optimize.Settings{
		MajorIterations: majorIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 100,
		},
	}

	// A stalled line search still reports the best location it reached, so
	// only a missing result is fatal.
	res, err := optimize.Minimize(problem, slices.Clone(x0), settings, m)
	if res == nil {
		return nil, fmt.Errorf("%s refinement failed: %w", method, err)
	}
	status := res.Status.String()
	if err != nil {
		status = fmt.Sprintf("%s: %v", status, err)
	}

	start := f(x0)
	out := &Result{
		Method:      method,
		X:           slices.Clone(x0),
		Energy:      start,
		Evaluations: res.FuncEvaluations,
		Status:      status,
	}
	// float32 rounding can make a tiny float64 gain vanish
	if energy := f(res.X); energy < start || math.IsNaN(float64(start)) {
		out.X = slices.Clone(res.X)
		out.Energy = energy
		out.Improved = true
	}
	return out, nil
}

func newMethod(method string) (optimize.Method, error) {
	switch method {
	case MethodNelderMead:
		return &optimize.NelderMead{}, nil
	case MethodBFGS:
		return &optimize.BFGS{}, nil
	default:
		return nil, fmt.Errorf("unknown refinement method: %s", method)
	}
}

// centralDifference approximates the gradient of fn with step h per
// coordinate
func centralDifference(fn func([]float64) float64) func(grad, x []float64) {
	const h = 1e-4
	return func(grad, x []float64) {
		probe := slices.Clone(x)
		for i := range x {
			probe[i] = x[i] + h
			fp := fn(probe)
			probe[i] = x[i] - h
			fm := fn(probe)
			probe[i] = x[i]
			grad[i] = (fp - fm) / (2 * h)
		}
	}
}

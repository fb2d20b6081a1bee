// Package neighbour provides local-search operators that propose nearby
// candidates for numeric states.
package neighbour

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/utils"
)

// Gaussian returns an operator that adds N(0, scale^2) noise to every
// coordinate of a copy of its input. A scale of 0 returns an exact copy.
// The operator owns src and is not safe for concurrent use.
func Gaussian(scale float64, src rand.Source) func([]float64) []float64 {
	noise := distuv.Normal{Mu: 0, Sigma: scale, Src: src}
	return func(x []float64) []float64 {
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = v + noise.Rand()
		}
		return out
	}
}

// GaussianBatch is Gaussian applied to every element of a batch, so each
// chain (column) receives independent noise.
func GaussianBatch(scale float64, src rand.Source) func(*mat.Dense) *mat.Dense {
	noise := distuv.Normal{Mu: 0, Sigma: scale, Src: src}
	return func(batch *mat.Dense) *mat.Dense {
		out := mat.DenseCopyOf(batch)
		out.Apply(func(_, _ int, v float64) float64 {
			return v + noise.Rand()
		}, out)
		return out
	}
}

// Clamp keeps the proposals of op inside the box [lower, upper] per
// coordinate.
func Clamp(op func([]float64) []float64, lower, upper float64) func([]float64) []float64 {
	return func(x []float64) []float64 {
		out := op(x)
		for i, v := range out {
			out[i] = utils.ClampFloat64(v, lower, upper)
		}
		return out
	}
}

// ClampBatch is Clamp for batched operators.
func ClampBatch(op func(*mat.Dense) *mat.Dense, lower, upper float64) func(*mat.Dense) *mat.Dense {
	return func(batch *mat.Dense) *mat.Dense {
		out := op(batch)
		out.Apply(func(_, _ int, v float64) float64 {
			return utils.ClampFloat64(v, lower, upper)
		}, out)
		return out
	}
}

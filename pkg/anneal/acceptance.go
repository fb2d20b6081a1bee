package anneal

import (
	"math"

	"github.com/GoSim-25-26J-441/annealing-core/pkg/utils"
)

// Coin draws a Bernoulli outcome that is true with probability p. Each call
// consumes exactly one value from the underlying stream.
// *utils.RandSource satisfies it.
type Coin interface {
	BernoulliBool(p float64) bool
}

// AcceptanceProbability returns exp((current - proposed) / (k * temperature)).
// The quotient is formed in single precision and widened before
// exponentiation. The result exceeds 1 for strict improvements and is NaN
// when either energy is NaN.
func AcceptanceProbability(current, proposed, temperature, k float32) float64 {
	return math.Exp(float64((current - proposed) / (k * temperature)))
}

// Accept applies the Metropolis rule for a single chain.
//
// A NaN proposal is rejected and a strict improvement is accepted, both
// without touching coin. Any other proposal, ties included, is accepted
// with AcceptanceProbability and consumes one draw.
func Accept(current, proposed, temperature, k float32, coin Coin) bool {
	if utils.IsNaN32(proposed) {
		return false
	}
	if proposed < current {
		return true
	}
	return coin.BernoulliBool(AcceptanceProbability(current, proposed, temperature, k))
}

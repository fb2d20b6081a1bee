package utils

import (
	"math/rand/v2"
)

// RandSource is a seeded pseudo-random stream. It is not safe for concurrent
// use; each annealing call owns its own instance.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed. Equal seeds
// produce equal streams, including seed 0.
func NewRandSource(seed uint64) *RandSource {
	return &RandSource{
		rng: rand.New(rand.NewPCG(seed, seed^pcgStream)),
	}
}

// pcgStream decorrelates the two PCG state words derived from one seed.
const pcgStream = 0x9e3779b97f4a7c15

// Uint64 returns a uniformly distributed 64-bit value. It makes RandSource a
// rand.Source so it can drive gonum distributions.
func (r *RandSource) Uint64() uint64 {
	return r.rng.Uint64()
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// NormFloat64 returns a normally distributed random number with mean and stddev
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	return r.rng.NormFloat64()*stddev + mean
}

// BernoulliBool returns true with probability p, false otherwise.
// Exactly one value is drawn from the stream per call.
func (r *RandSource) BernoulliBool(p float64) bool {
	return r.rng.Float64() < p
}

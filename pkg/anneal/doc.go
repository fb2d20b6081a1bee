// Package anneal implements simulated-annealing minimizers.
//
// Three entry points share one acceptance rule:
//
//   - Minimize runs a single chain to completion and returns the final state.
//   - MinimizeLazy returns a Stream that yields a copy of the state after each
//     temperature stage.
//   - MinimizeNumeric advances a batch of chains stored as the columns of a
//     gonum matrix and collapses the batch onto its lowest-energy chain after
//     every temperature.
//
// States are opaque to the sequential minimizers and are never mutated by
// this package; every transition replaces the whole value. Each call owns
// its pseudo-random stream, seeded from the caller's seed, so identical
// inputs reproduce identical outputs.
package anneal

package anneal

import "errors"

var (
	// ErrNonPositiveBoltzmann is returned when k <= 0 (or NaN). No callback
	// is invoked before this check.
	ErrNonPositiveBoltzmann = errors.New("boltzmann constant must be positive")
	// ErrNegativeChainLength is returned for chain lengths below zero.
	ErrNegativeChainLength = errors.New("chain length cannot be negative")
	// ErrMissingFunc is returned when the energy or neighbour callback is nil.
	ErrMissingFunc = errors.New("energy and neighbour functions are required")
	// ErrInvalidBatchSize is returned when a batched run has fewer than one chain.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	// ErrEmptyState is returned when the batched start vector has no elements.
	ErrEmptyState = errors.New("start state must have at least one element")
	// ErrBatchShape is returned when a batched callback changes the batch shape.
	ErrBatchShape = errors.New("batch callback returned wrong shape")
)

func validateRun(chainLength int, k float32) error {
	// written as a negated comparison so NaN is rejected too
	if !(k > 0) {
		return ErrNonPositiveBoltzmann
	}
	if chainLength < 0 {
		return ErrNegativeChainLength
	}
	return nil
}

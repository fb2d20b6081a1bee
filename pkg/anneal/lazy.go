package anneal

import (
	"iter"
)

// CloneFunc returns a copy of a state that shares no mutable memory with it.
type CloneFunc[T any] func(T) T

// Stream yields the state reached at the end of each temperature stage.
//
// A Stream owns its chain, its random stream and the remaining schedule. It
// cannot be rewound and must not be used from more than one goroutine.
// Callers that stop pulling before Next reports false should call Stop.
type Stream[T any] struct {
	c     *chain[T]
	clone CloneFunc[T]
	next  func() (float32, bool)
	stop  func()
	stage int
	last  StageStats
	done  bool
}

// MinimizeLazy prepares a sequential annealing run that advances one
// temperature stage per call to Next.
//
// The transition logic is that of Minimize. The schedule ends at the first
// temperature that is not positive; that value produces no output. Yielded
// states are passed through clone, or copied by assignment when clone is nil.
//
// The start energy is evaluated here, after parameter validation.
func MinimizeLazy[T any](chainLength int, k float32, start T, energy EnergyFunc[T], neighbour NeighbourFunc[T], temperatures iter.Seq[float32], seed uint64, clone CloneFunc[T]) (*Stream[T], error) {
	c, err := newChain(chainLength, k, start, energy, neighbour, seed)
	if err != nil {
		return nil, err
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if temperatures == nil {
		temperatures = func(func(float32) bool) {}
	}

	next, stop := iter.Pull(temperatures)
	return &Stream[T]{
		c:     c,
		clone: clone,
		next:  next,
		stop:  stop,
	}, nil
}

// Next runs the next temperature stage and returns a copy of the resulting
// state. It reports false once the schedule is exhausted, a non-positive
// temperature is reached, or Stop has been called.
func (s *Stream[T]) Next() (T, bool) {
	var zero T
	if s.done {
		return zero, false
	}

	temperature, ok := s.next()
	if !ok || !(temperature > 0) {
		s.Stop()
		return zero, false
	}

	s.last = s.c.runStage(s.stage, temperature)
	s.stage++
	return s.clone(s.c.state), true
}

// Stop abandons the remaining schedule. It is safe to call more than once.
func (s *Stream[T]) Stop() {
	if s.done {
		return
	}
	s.done = true
	s.stop()
}

// Energy returns the energy of the current state.
func (s *Stream[T]) Energy() float32 {
	return s.c.energy
}

// Stages returns the number of completed temperature stages.
func (s *Stream[T]) Stages() int {
	return s.stage
}

// LastStats returns the outcome counts of the most recent stage.
func (s *Stream[T]) LastStats() StageStats {
	return s.last
}

// All adapts the stream to a range loop. Breaking out of the loop stops the
// stream.
func (s *Stream[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := s.Next()
			if !ok {
				return
			}
			if !yield(v) {
				s.Stop()
				return
			}
		}
	}
}

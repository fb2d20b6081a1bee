// Package schedule provides cooling schedules as temperature sequences.
package schedule

import (
	"iter"
)

// Exponential yields start, start*alpha, start*alpha^2, ... for steps values.
// A negative steps makes the schedule unbounded; combine it with Take.
func Exponential(start, alpha float32, steps int) iter.Seq[float32] {
	return func(yield func(float32) bool) {
		t := start
		for i := 0; steps < 0 || i < steps; i++ {
			if !yield(t) {
				return
			}
			t *= alpha
		}
	}
}

// Linear yields steps values spaced evenly from start to end inclusive.
// A single step yields start only. If end is 0 the final value acts as the
// zero-temperature sentinel for sequential runs.
func Linear(start, end float32, steps int) iter.Seq[float32] {
	return func(yield func(float32) bool) {
		if steps == 1 {
			yield(start)
			return
		}
		span := float64(end) - float64(start)
		for i := 0; i < steps; i++ {
			frac := float64(i) / float64(steps-1)
			if !yield(float32(float64(start) + frac*span)) {
				return
			}
		}
	}
}

// Values yields the given temperatures in order.
func Values(temperatures ...float32) iter.Seq[float32] {
	return func(yield func(float32) bool) {
		for _, t := range temperatures {
			if !yield(t) {
				return
			}
		}
	}
}

// Take limits seq to its first n values.
func Take(seq iter.Seq[float32], n int) iter.Seq[float32] {
	return func(yield func(float32) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for t := range seq {
			if !yield(t) {
				return
			}
			i++
			if i >= n {
				return
			}
		}
	}
}

// Package objective provides benchmark energy functions for numeric
// minimization. Each function has a scalar form over a []float64 point and
// a batched form over the columns of a gonum matrix.
package objective

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Func evaluates a single point.
type Func func(x []float64) float32

// Type names a benchmark function
type Type string

const (
	// TypeSphere is sum(x_i^2), minimum 0 at the origin
	TypeSphere Type = "sphere"
	// TypeAckley has a global minimum of 0 at the origin
	TypeAckley Type = "ackley"
	// TypeRastrigin has a global minimum of 0 at the origin and many local minima
	TypeRastrigin Type = "rastrigin"
	// TypeSchwefel has a global minimum near x_i = 420.9687
	TypeSchwefel Type = "schwefel"
)

// SchwefelOptimum is the coordinate of the Schwefel global minimum
const SchwefelOptimum = 420.9687

// New returns the benchmark function for a type string
func New(name string) (Func, error) {
	switch Type(name) {
	case TypeSphere:
		return Sphere, nil
	case TypeAckley:
		return Ackley, nil
	case TypeRastrigin:
		return Rastrigin, nil
	case TypeSchwefel:
		return Schwefel, nil
	default:
		return nil, &UnknownObjectiveError{ObjectiveType: name}
	}
}

// Sphere computes sum(x_i^2).
func Sphere(x []float64) float32 {
	return float32(floats.Dot(x, x))
}

// Ackley computes
//
//	-20 exp(-0.2 sqrt(mean(x_i^2))) - exp(mean(cos(2 pi x_i))) + 20 + e
func Ackley(x []float64) float32 {
	const (
		a = 20.0
		b = 0.2
		c = 2 * math.Pi
	)
	n := float64(len(x))
	rms := math.Sqrt(floats.Dot(x, x) / n)
	cosSum := 0.0
	for _, v := range x {
		cosSum += math.Cos(c * v)
	}
	return float32(-a*math.Exp(-b*rms) - math.Exp(cosSum/n) + a + math.E)
}

// Rastrigin computes 10n + sum(x_i^2 - 10 cos(2 pi x_i)).
func Rastrigin(x []float64) float32 {
	const a = 10.0
	sum := a * float64(len(x))
	for _, v := range x {
		sum += v*v - a*math.Cos(2*math.Pi*v)
	}
	return float32(sum)
}

// Schwefel computes 418.9829n - sum(x_i sin(sqrt(|x_i|))).
func Schwefel(x []float64) float32 {
	const a = 418.9829
	sum := a * float64(len(x))
	for _, v := range x {
		sum -= v * math.Sin(math.Sqrt(math.Abs(v)))
	}
	return float32(sum)
}

// Batch lifts f to a batch: column j of the matrix is evaluated as one point
// and its energy stored at index j.
func Batch(f Func) func(*mat.Dense) []float32 {
	return func(batch *mat.Dense) []float32 {
		rows, cols := batch.Dims()
		out := make([]float32, cols)
		col := make([]float64, rows)
		for j := range cols {
			out[j] = f(mat.Col(col, j, batch))
		}
		return out
	}
}

// UnknownObjectiveError indicates an unsupported benchmark name
type UnknownObjectiveError struct {
	ObjectiveType string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective type: " + e.ObjectiveType
}

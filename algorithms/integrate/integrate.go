// Package integrate provides definite integration over discrete sampled
// points using the trapezoidal rule and Simpson's 1/3 rule, with a
// Richardson-extrapolation error estimate for the trapezoidal path.
package integrate

import (
	"errors"
	"math"
)

// ErrTooFewPoints is returned when fewer than two points are supplied.
var ErrTooFewPoints = errors.New("integrate: need at least two points")

// Method identifies which rule produced a Result.
type Method string

const (
	MethodTrapezoid Method = "trapezoid"
	MethodSimpson   Method = "simpson"
)

// Point is a single (x, y) integration node. X values are expected in
// ascending or descending order; spacing may be non-uniform.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result holds a computed area and, when available, an error estimate.
type Result struct {
	Area          float64 `json:"area"`           // Signed definite integral
	ErrorEstimate float64 `json:"error_estimate"` // Richardson estimate, when HasEstimate
	HasEstimate   bool    `json:"has_estimate"`   // False when no estimate applies
	Method        Method  `json:"method"`         // Rule that produced the area
}

// Trapezoidal integrates by the pairwise trapezoid rule. With four or
// more points it also reports a Richardson error estimate: the same rule
// at half resolution differs from the full-resolution sum by roughly
// three times the true error for an order-2 method.
func Trapezoidal(points []Point) (*Result, error) {
	n := len(points)
	if n < 2 {
		return nil, ErrTooFewPoints
	}

	area := 0.0
	for i := 1; i < n; i++ {
		area += 0.5 * (points[i].Y + points[i-1].Y) * (points[i].X - points[i-1].X)
	}

	result := &Result{Area: area, Method: MethodTrapezoid}
	if n < 4 {
		return result, nil
	}

	// Half-resolution pass over every other point. The stride leaves a
	// single trailing interval when n is even; cover it directly so both
	// sums span the same range.
	coarse := 0.0
	i := 0
	for ; i+2 < n; i += 2 {
		coarse += 0.5 * (points[i+2].Y + points[i].Y) * (points[i+2].X - points[i].X)
	}
	if i == n-2 {
		coarse += 0.5 * (points[n-1].Y + points[n-2].Y) * (points[n-1].X - points[n-2].X)
	}

	result.ErrorEstimate = math.Abs(coarse-area) / 3.0
	result.HasEstimate = true
	return result, nil
}

// Simpsons integrates by the composite Simpson's 1/3 rule, summing
// groups of three points with weights 1-4-1. The rule needs an odd
// point count of at least three; anything else falls back to
// Trapezoidal, and the Result reports which rule ran.
func Simpsons(points []Point) (*Result, error) {
	n := len(points)
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	if n < 3 || n%2 == 0 {
		return Trapezoidal(points)
	}

	area := 0.0
	for i := 0; i+2 < n; i += 2 {
		h := (points[i+2].X - points[i].X) / 2.0
		area += h / 3.0 * (points[i].Y + 4.0*points[i+1].Y + points[i+2].Y)
	}

	return &Result{Area: area, Method: MethodSimpson}, nil
}

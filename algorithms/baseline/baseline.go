// Package baseline estimates the non-faradaic background current of a
// scan. Three estimators are provided: morphological rubberband, linear
// least squares over edge anchors, and asymmetric least squares (ASLS)
// with a banded Cholesky solver. All return a background curve aligned
// 1:1 with the input scan.
//
// Direction fixes the sign convention. A forward scan carries positive
// (oxidation) peaks, so the baseline tracks the lower envelope; a reverse
// scan carries negative (reduction) peaks and the baseline tracks the
// upper envelope.
package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/voltagram/voltagram/trace"
)

// ErrEmptyInput is returned when the scan has no samples.
var ErrEmptyInput = errors.New("baseline: empty input")

// sanitizeCurrents copies the current column with non-finite entries
// replaced by zero, returning the replacement count. Envelope and solver
// arithmetic cannot absorb NaN.
func sanitizeCurrents(data []float64) ([]float64, int) {
	out := make([]float64, len(data))
	replaced := 0
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = 0
			replaced++
			continue
		}
		out[i] = v
	}
	return out, replaced
}

func nonFiniteWarning(replaced int) string {
	return fmt.Sprintf("%d non-finite samples treated as zero current", replaced)
}

// Method selects a baseline estimation algorithm.
type Method string

const (
	MethodRubberband Method = "rubberband"
	MethodLinear     Method = "linear"
	MethodASLS       Method = "asls"
)

// Result carries the estimated background curve and any warnings raised
// while fitting it.
type Result struct {
	Values   []float64 `json:"values"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Estimator is the common contract of the baseline algorithms.
type Estimator interface {
	Estimate(scan trace.Scan, direction trace.Direction) (*Result, error)
}

// Params aggregates the per-method parameters for the factory.
type Params struct {
	Rubberband RubberbandParams `json:"rubberband"`
	Linear     LinearParams     `json:"linear"`
	ASLS       ASLSParams       `json:"asls"`
}

// DefaultParams returns defaults for every method.
func DefaultParams() Params {
	return Params{
		Rubberband: DefaultRubberbandParams(),
		Linear:     DefaultLinearParams(),
		ASLS:       DefaultASLSParams(),
	}
}

// NewEstimator returns the estimator for the method. Unknown methods fall
// back to rubberband, the most assumption-free of the three.
func NewEstimator(method Method, params Params) Estimator {
	switch method {
	case MethodLinear:
		return NewLinearWithParams(params.Linear)
	case MethodASLS:
		return NewASLSWithParams(params.ASLS)
	case MethodRubberband:
		return NewRubberbandWithParams(params.Rubberband)
	default:
		return NewRubberbandWithParams(params.Rubberband)
	}
}

package baseline

import (
	"math"

	"github.com/voltagram/voltagram/trace"
)

// ASLSParams configures the asymmetric least squares estimator.
type ASLSParams struct {
	Lambda        float64 `json:"lambda"`         // Smoothness penalty on the second difference
	Asymmetry     float64 `json:"asymmetry"`      // p in (0,1), weight of points on the peak side
	MaxIterations int     `json:"max_iterations"` // Reweighting iterations
	Tolerance     float64 `json:"tolerance"`      // Early stop when max weight change falls below
}

// DefaultASLSParams returns the conventional ASLS settings.
func DefaultASLSParams() ASLSParams {
	return ASLSParams{
		Lambda:        1e6,
		Asymmetry:     0.01,
		MaxIterations: 20,
		Tolerance:     1e-6,
	}
}

// ASLS implements asymmetric least squares baseline estimation after
// Eilers & Boelens (2005): minimize sum w_i*(y_i-z_i)^2 + lambda*sum
// (d2 z_i)^2, reweighting so points on the peak side of the running fit
// contribute almost nothing. Each iteration solves the pentadiagonal
// normal equations (diag(w) + lambda*D2'D2) z = diag(w) y with a banded
// Cholesky factorization of half-bandwidth 2, O(n) per solve.
type ASLS struct {
	params ASLSParams
}

// NewASLS creates an ASLS estimator with default parameters.
func NewASLS() *ASLS {
	return NewASLSWithParams(DefaultASLSParams())
}

// NewASLSWithParams creates an ASLS estimator with custom parameters.
func NewASLSWithParams(params ASLSParams) *ASLS {
	return &ASLS{params: params}
}

// Estimate computes the background curve. Scans under 5 samples come back
// unchanged, the second-difference penalty needs at least that many
// points to mean anything.
func (a *ASLS) Estimate(scan trace.Scan, direction trace.Direction) (*Result, error) {
	if len(scan) == 0 {
		return nil, ErrEmptyInput
	}

	result := &Result{}
	y, replaced := sanitizeCurrents(scan.Currents())
	if replaced > 0 {
		result.Warnings = append(result.Warnings, nonFiniteWarning(replaced))
	}

	n := len(y)
	if n < 5 {
		result.Values = y
		return result, nil
	}

	lambda := a.params.Lambda
	p := a.params.Asymmetry
	maxIter := a.params.MaxIterations
	if maxIter < 1 {
		maxIter = 1
	}

	// lambda * D2'D2 bands. Only the main diagonal changes between
	// iterations (the +w_i term), so the penalty bands build once.
	pen0 := make([]float64, n)
	pen1 := make([]float64, n-1)
	pen2 := make([]float64, n-2)
	for i := range pen0 {
		switch {
		case i == 0 || i == n-1:
			pen0[i] = lambda * 1
		case i == 1 || i == n-2:
			pen0[i] = lambda * 5
		default:
			pen0[i] = lambda * 6
		}
	}
	for i := range pen1 {
		if i == 0 || i == n-2 {
			pen1[i] = lambda * -2
		} else {
			pen1[i] = lambda * -4
		}
	}
	for i := range pen2 {
		pen2[i] = lambda * 1
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0
	}

	d0 := make([]float64, n)
	b := make([]float64, n)
	var z []float64
	clampedEver := false

	for iter := 0; iter < maxIter; iter++ {
		for i := range d0 {
			d0[i] = w[i] + pen0[i]
			b[i] = w[i] * y[i]
		}

		var clamped bool
		z, clamped = solvePentaCholesky(d0, pen1, pen2, b)
		clampedEver = clampedEver || clamped

		maxChange := 0.0
		for i := range w {
			onPeakSide := y[i] > z[i]
			if direction == trace.Reverse {
				onPeakSide = y[i] < z[i]
			}
			next := 1.0 - p
			if onPeakSide {
				next = p
			}
			if change := math.Abs(next - w[i]); change > maxChange {
				maxChange = change
			}
			w[i] = next
		}
		if maxChange < a.params.Tolerance {
			break
		}
	}

	if clampedEver {
		result.Warnings = append(result.Warnings,
			"ill-conditioned system, factorization pivots clamped to 1e-30")
	}
	result.Values = z
	return result, nil
}

// solvePentaCholesky factors the symmetric positive-definite pentadiagonal
// system given by its main diagonal d0 and off-diagonals d1, d2, then
// solves for b by forward and back substitution. Pivots below 1e-30 are
// clamped so ill-conditioned input degrades instead of dividing by zero.
func solvePentaCholesky(d0, d1, d2, b []float64) (z []float64, clamped bool) {
	n := len(d0)
	l0 := make([]float64, n)
	l1 := make([]float64, n)
	l2 := make([]float64, n)

	for i := 0; i < n; i++ {
		pivot := d0[i]
		if i >= 1 {
			pivot -= l1[i-1] * l1[i-1]
		}
		if i >= 2 {
			pivot -= l2[i-2] * l2[i-2]
		}
		if pivot < 1e-30 {
			pivot = 1e-30
			clamped = true
		}
		l0[i] = math.Sqrt(pivot)

		if i+1 < n {
			v := d1[i]
			if i >= 1 {
				v -= l1[i-1] * l2[i-1]
			}
			l1[i] = v / l0[i]
		}
		if i+2 < n {
			l2[i] = d2[i] / l0[i]
		}
	}

	c := make([]float64, n)
	for i := 0; i < n; i++ {
		v := b[i]
		if i >= 1 {
			v -= l1[i-1] * c[i-1]
		}
		if i >= 2 {
			v -= l2[i-2] * c[i-2]
		}
		c[i] = v / l0[i]
	}

	z = make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		v := c[i]
		if i+1 < n {
			v -= l1[i] * z[i+1]
		}
		if i+2 < n {
			v -= l2[i] * z[i+2]
		}
		z[i] = v / l0[i]
	}
	return z, clamped
}

package baseline

import (
	"math"

	"github.com/voltagram/voltagram/trace"
)

// LinearParams configures the linear least-squares estimator.
type LinearParams struct {
	AnchorFraction float64 `json:"anchor_fraction"` // Fraction of samples taken from each end as anchors
}

// DefaultLinearParams returns the default anchor fraction.
func DefaultLinearParams() LinearParams {
	return LinearParams{AnchorFraction: 0.1}
}

// Linear fits current = slope*potential + intercept by ordinary least
// squares over anchor points drawn from both ends of the scan, where the
// trace is assumed peak-free, then evaluates the line over the full
// potential range.
type Linear struct {
	params LinearParams
}

// NewLinear creates a Linear estimator with default parameters.
func NewLinear() *Linear {
	return NewLinearWithParams(DefaultLinearParams())
}

// NewLinearWithParams creates a Linear estimator with custom parameters.
func NewLinearWithParams(params LinearParams) *Linear {
	return &Linear{params: params}
}

// Estimate fits and evaluates the anchor line. A numerically degenerate
// system (all anchors at one potential) falls back to a horizontal line
// at the mean anchor current with a warning. Direction does not matter
// for a least-squares line.
func (l *Linear) Estimate(scan trace.Scan, direction trace.Direction) (*Result, error) {
	if len(scan) == 0 {
		return nil, ErrEmptyInput
	}

	result := &Result{}
	currents, replaced := sanitizeCurrents(scan.Currents())
	if replaced > 0 {
		result.Warnings = append(result.Warnings, nonFiniteWarning(replaced))
	}

	n := len(scan)
	anchorCount := int(float64(n) * l.params.AnchorFraction)
	if anchorCount < 2 {
		anchorCount = 2
	}

	var sumX, sumY, sumXY, sumXX float64
	points := 0
	for i, smp := range scan {
		if i >= anchorCount && i < n-anchorCount {
			continue
		}
		sumX += smp.Potential
		sumY += currents[i]
		sumXY += smp.Potential * currents[i]
		sumXX += smp.Potential * smp.Potential
		points++
	}

	result.Values = make([]float64, n)

	denom := float64(points)*sumXX - sumX*sumX
	if math.Abs(denom) < 1e-15 {
		mean := sumY / float64(points)
		for i := range result.Values {
			result.Values[i] = mean
		}
		result.Warnings = append(result.Warnings,
			"degenerate least-squares system, using horizontal baseline at mean anchor current")
		return result, nil
	}

	slope := (float64(points)*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / float64(points)
	for i, smp := range scan {
		result.Values[i] = slope*smp.Potential + intercept
	}
	return result, nil
}

// Package derivative computes calibrated dI/dE slopes from scan currents
// using Savitzky-Golay differentiation.
package derivative

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/voltagram/voltagram/algorithms/common"
	"github.com/voltagram/voltagram/algorithms/conv"
	"github.com/voltagram/voltagram/algorithms/savgol"
	"github.com/voltagram/voltagram/trace"
)

// ErrEmptyInput is returned when the scan has no samples.
var ErrEmptyInput = errors.New("derivative: empty input")

// DifferentiatorParams configures the derivative stage.
type DifferentiatorParams struct {
	Window int `json:"window"` // Savitzky-Golay window size (5, 9, 11, 15, 21)
}

// Stats summarizes the computed slope signal.
type Stats struct {
	MaxSlope      float64 `json:"max_slope"`
	MinSlope      float64 `json:"min_slope"`
	MeanSlope     float64 `json:"mean_slope"`
	ZeroCrossings int     `json:"zero_crossings"`
}

// DerivativeResult holds calibrated dI/dE values aligned with the input
// scan, the potential spacing used for calibration, and slope statistics.
type DerivativeResult struct {
	Values   []float64 `json:"values"`
	Spacing  float64   `json:"spacing"` // median absolute potential step (V)
	Stats    Stats     `json:"stats"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Differentiator convolves scan currents with an unnormalized
// Savitzky-Golay first-derivative kernel and rescales the output by
// 1/(norm*h), norm = 2*sum(i^2) over the half-width, h = median absolute
// potential spacing. The median makes the calibration robust against the
// near-zero spacing artifacts potentiostats produce around switching
// points.
type Differentiator struct {
	params DifferentiatorParams
}

// NewDifferentiator creates a Differentiator with the default window.
func NewDifferentiator() *Differentiator {
	return NewDifferentiatorWithParams(DifferentiatorParams{Window: 9})
}

// NewDifferentiatorWithParams creates a Differentiator with custom
// parameters.
func NewDifferentiatorWithParams(params DifferentiatorParams) *Differentiator {
	return &Differentiator{params: params}
}

// Analyze computes dI/dE for the scan. Empty input and an unsupported
// window size are fatal; numerical-quality findings surface as warnings.
func (d *Differentiator) Analyze(scan trace.Scan) (*DerivativeResult, error) {
	if len(scan) == 0 {
		return nil, ErrEmptyInput
	}

	kernel, err := savgol.DerivativeKernel(d.params.Window)
	if err != nil {
		return nil, fmt.Errorf("derivative: %w", err)
	}
	norm, err := savgol.DerivativeNorm(d.params.Window)
	if err != nil {
		return nil, fmt.Errorf("derivative: %w", err)
	}

	convolved, err := conv.Convolve(scan.Currents(), kernel, conv.Mirror)
	if err != nil {
		return nil, fmt.Errorf("derivative: %w", err)
	}

	result := &DerivativeResult{
		Values:   convolved.Values,
		Warnings: append([]string{}, convolved.Warnings...),
	}

	h, ok := medianSpacing(scan)
	if !ok {
		result.Warnings = append(result.Warnings,
			"no positive potential spacing found, slope scale is nominal")
		h = 1.0
	}
	result.Spacing = h
	if h < 1e-6 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("potential spacing %.3g V below 1e-6, derivative scale unreliable", h))
	}

	scale := 1.0 / (norm * h)
	for i := range result.Values {
		result.Values[i] *= scale
	}

	d.summarize(result)
	return result, nil
}

// medianSpacing returns the median absolute potential step, excluding
// zero-width pairs. ok is false when no positive step exists.
func medianSpacing(scan trace.Scan) (float64, bool) {
	steps := make([]float64, 0, len(scan))
	for i := 1; i < len(scan); i++ {
		step := math.Abs(scan[i].Potential - scan[i-1].Potential)
		if step > 0 && !math.IsNaN(step) && !math.IsInf(step, 0) {
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return 0, false
	}
	return common.Median(steps), true
}

// summarize fills slope statistics and numerical-quality warnings.
func (d *Differentiator) summarize(result *DerivativeResult) {
	values := result.Values
	if len(values) == 0 {
		return
	}

	result.Stats = Stats{
		MaxSlope:      floats.Max(values),
		MinSlope:      floats.Min(values),
		MeanSlope:     common.Mean(values),
		ZeroCrossings: countZeroCrossings(values),
	}

	extreme := 0
	for _, v := range values {
		if math.Abs(v) > 1e6 {
			extreme++
		}
	}
	if extreme > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d slope values exceed 1e6, possible numerical instability", extreme))
	}

	if common.Variance(values) < 1e-18 {
		result.Warnings = append(result.Warnings,
			"slope variance near zero, signal may be overly flat")
	}

	if ratio := highFrequencyRatio(values); ratio > 0.5 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("high-frequency noise ratio %.2f, derivative retains noise", ratio))
	}
}

// countZeroCrossings counts sign changes between consecutive values,
// skipping non-finite entries.
func countZeroCrossings(values []float64) int {
	count := 0
	prev := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !math.IsNaN(prev) {
			if (prev >= 0 && v < 0) || (prev < 0 && v >= 0) {
				count++
			}
		}
		prev = v
	}
	return count
}

// highFrequencyRatio measures residual noise as the RMS of the
// upper-half-band spectral component over the peak absolute slope. By
// Parseval the component RMS is sqrt(sum |X_k|^2)/n over the band bins.
// Returns 0 for signals too short to judge.
func highFrequencyRatio(values []float64) float64 {
	n := len(values)
	if n < 8 {
		return 0
	}

	amp := 0.0
	buf := make([]float64, n)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		buf[i] = v
		if a := math.Abs(v); a > amp {
			amp = a
		}
	}
	if amp == 0 {
		return 0
	}

	// The band spans n/4..3n/4 inclusive so a component and its
	// conjugate bin are counted together.
	spectrum := fft.FFTReal(buf)
	energy := 0.0
	for k := n / 4; k <= 3*n/4 && k < len(spectrum); k++ {
		mag := cmplx.Abs(spectrum[k])
		energy += mag * mag
	}
	return math.Sqrt(energy) / float64(n) / amp
}

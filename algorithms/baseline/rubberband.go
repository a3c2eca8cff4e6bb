package baseline

import (
	"fmt"

	"github.com/voltagram/voltagram/algorithms/common"
	"github.com/voltagram/voltagram/trace"
)

// RubberbandParams configures the morphological rubberband estimator.
type RubberbandParams struct {
	Iterations int `json:"iterations"` // Opening passes over the envelope
	Window     int `json:"window"`     // Structuring-element width in samples
}

// DefaultRubberbandParams returns parameters suited to scans of a few
// hundred to a few thousand samples.
func DefaultRubberbandParams() RubberbandParams {
	return RubberbandParams{
		Iterations: 10,
		Window:     25,
	}
}

// Rubberband estimates the background by iterative morphological opening:
// erosion followed by dilation, then a moving average to knock down the
// staircase steps opening leaves behind. The final envelope is clamped to
// never cross the data on the peak side, like a rubber band stretched
// beneath (forward) or above (reverse) the trace.
type Rubberband struct {
	params RubberbandParams
}

// NewRubberband creates a Rubberband estimator with default parameters.
func NewRubberband() *Rubberband {
	return NewRubberbandWithParams(DefaultRubberbandParams())
}

// NewRubberbandWithParams creates a Rubberband estimator with custom
// parameters.
func NewRubberbandWithParams(params RubberbandParams) *Rubberband {
	return &Rubberband{params: params}
}

// Estimate computes the background curve. Scans under 3 samples come back
// unchanged, there is nothing to open.
func (r *Rubberband) Estimate(scan trace.Scan, direction trace.Direction) (*Result, error) {
	if len(scan) == 0 {
		return nil, ErrEmptyInput
	}

	result := &Result{}
	data, replaced := sanitizeCurrents(scan.Currents())
	if replaced > 0 {
		result.Warnings = append(result.Warnings, nonFiniteWarning(replaced))
	}

	n := len(data)
	if n < 3 {
		result.Values = data
		return result, nil
	}

	configuredHalf := r.params.Window / 2
	halfWin := n * 5 / 100
	if configuredHalf < halfWin {
		halfWin = configuredHalf
	}
	if halfWin < 2 {
		halfWin = 2
	}
	if halfWin < configuredHalf {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("rubberband half-window clamped to %d samples (configured %d)", halfWin, configuredHalf))
	}

	envelope := make([]float64, n)
	copy(envelope, data)

	eroded := make([]float64, n)
	dilated := make([]float64, n)
	for iter := 0; iter < r.params.Iterations; iter++ {
		for i := range envelope {
			eroded[i] = windowExtremum(envelope, i, halfWin, direction == trace.Forward)
		}
		for i := range eroded {
			dilated[i] = windowExtremum(eroded, i, halfWin, direction != trace.Forward)
		}
		envelope = common.CenteredMovingAverage(dilated, halfWin)
	}

	// The rubberband constraint: the background never crosses the data
	// on the peak side.
	for i := range envelope {
		if direction == trace.Forward {
			if envelope[i] > data[i] {
				envelope[i] = data[i]
			}
		} else {
			if envelope[i] < data[i] {
				envelope[i] = data[i]
			}
		}
	}

	result.Values = envelope
	return result, nil
}

// windowExtremum scans [i-halfWin, i+halfWin] clamped to the array and
// returns the minimum (wantMin) or maximum of the window.
func windowExtremum(data []float64, i, halfWin int, wantMin bool) float64 {
	start := i - halfWin
	if start < 0 {
		start = 0
	}
	end := i + halfWin
	if end > len(data)-1 {
		end = len(data) - 1
	}
	out := data[start]
	for j := start + 1; j <= end; j++ {
		if wantMin {
			if data[j] < out {
				out = data[j]
			}
		} else {
			if data[j] > out {
				out = data[j]
			}
		}
	}
	return out
}

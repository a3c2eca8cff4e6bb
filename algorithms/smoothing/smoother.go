// Package smoothing applies Savitzky-Golay polynomial smoothing to scan
// currents and grades the outcome with advisory quality checks.
package smoothing

import (
	"errors"
	"fmt"
	"math"

	"github.com/voltagram/voltagram/algorithms/common"
	"github.com/voltagram/voltagram/algorithms/conv"
	"github.com/voltagram/voltagram/algorithms/savgol"
	"github.com/voltagram/voltagram/trace"
)

// ErrEmptyInput is returned when the scan has no samples.
var ErrEmptyInput = errors.New("smoothing: empty input")

// SmootherParams configures the smoothing stage.
type SmootherParams struct {
	Window int `json:"window"` // Savitzky-Golay window size (5, 9, 11, 15, 21)
}

// SmoothResult holds the smoothed scan and the quality measurements taken
// against the original signal. All quality findings are advisory warnings;
// a poor smoothing outcome never fails the stage.
type SmoothResult struct {
	Samples        trace.Scan `json:"samples"`
	NoiseReduction float64    `json:"noise_reduction"` // (sigma_orig - sigma_smooth) / sigma_orig, 0 when undefined
	AmplitudeRatio float64    `json:"amplitude_ratio"` // smoothed range / original range, 0 when undefined
	ArtifactCount  int        `json:"artifact_count"`  // interior points where smoothing steepened the signal
	Warnings       []string   `json:"warnings,omitempty"`
}

// Smoother smooths the current column of a scan with a normalized
// Savitzky-Golay kernel (Savitzky & Golay 1964), leaving potentials and
// optional columns untouched.
type Smoother struct {
	params SmootherParams
}

// NewSmoother creates a Smoother with the default window.
func NewSmoother() *Smoother {
	return NewSmootherWithParams(SmootherParams{Window: 9})
}

// NewSmootherWithParams creates a Smoother with custom parameters.
func NewSmootherWithParams(params SmootherParams) *Smoother {
	return &Smoother{params: params}
}

// Analyze smooths the scan currents and evaluates noise reduction,
// amplitude preservation, and artifact count. Empty input and an
// unsupported window size are fatal; everything else degrades to warnings.
func (s *Smoother) Analyze(scan trace.Scan) (*SmoothResult, error) {
	if len(scan) == 0 {
		return nil, ErrEmptyInput
	}

	kernel, err := savgol.SmoothingKernel(s.params.Window)
	if err != nil {
		return nil, fmt.Errorf("smoothing: %w", err)
	}

	original := scan.Currents()
	convolved, err := conv.Convolve(original, kernel, conv.Mirror)
	if err != nil {
		return nil, fmt.Errorf("smoothing: %w", err)
	}

	result := &SmoothResult{
		Samples:  scan.WithCurrents(convolved.Values),
		Warnings: append([]string{}, convolved.Warnings...),
	}
	s.assessQuality(original, convolved.Values, result)
	return result, nil
}

// assessQuality compares the smoothed signal against the original and
// appends advisory warnings to the result.
func (s *Smoother) assessQuality(original, smoothed []float64, result *SmoothResult) {
	sigmaOrig := common.StandardDeviation(original)
	sigmaSmooth := common.StandardDeviation(smoothed)
	if sigmaOrig > 0 && !math.IsNaN(sigmaSmooth) {
		result.NoiseReduction = (sigmaOrig - sigmaSmooth) / sigmaOrig
		if result.NoiseReduction > 0.9 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("noise reduction %.2f suggests over-smoothing, peaks may be attenuated", result.NoiseReduction))
		} else if result.NoiseReduction < 0.1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("noise reduction %.2f suggests under-smoothing, consider a larger window", result.NoiseReduction))
		}
	}

	// Boundary differences are skipped: edge handling distorts them.
	origDiffs := common.FirstDifferences(original)
	smoothDiffs := common.FirstDifferences(smoothed)
	for i := 1; i < len(smoothDiffs)-1; i++ {
		if math.Abs(smoothDiffs[i]) > 3.0*math.Abs(origDiffs[i]) {
			result.ArtifactCount++
		}
	}
	if result.ArtifactCount > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d points steepened by smoothing, possible filter artifacts", result.ArtifactCount))
	}

	rangeOrig := common.ValueRange(original)
	rangeSmooth := common.ValueRange(smoothed)
	if rangeOrig > 0 && !math.IsNaN(rangeSmooth) {
		result.AmplitudeRatio = rangeSmooth / rangeOrig
		if result.AmplitudeRatio < 0.8 || result.AmplitudeRatio > 1.2 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("amplitude ratio %.2f outside [0.8, 1.2], signal scale not preserved", result.AmplitudeRatio))
		}
	}
}

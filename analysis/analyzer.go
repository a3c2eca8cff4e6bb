// Package analysis sequences the full voltammetry pipeline for one scan
// direction: smoothing, differentiation, baseline estimation and peak
// detection, with per-stage fallbacks so a single stage failure
// degrades the result instead of aborting it.
package analysis

import (
	"fmt"
	"math"

	"github.com/voltagram/voltagram/algorithms/baseline"
	"github.com/voltagram/voltagram/algorithms/derivative"
	"github.com/voltagram/voltagram/algorithms/peaks"
	"github.com/voltagram/voltagram/algorithms/smoothing"
	"github.com/voltagram/voltagram/analysis/config"
	"github.com/voltagram/voltagram/logging"
	"github.com/voltagram/voltagram/trace"
)

// ScanResult aggregates every stage output for one scan direction.
type ScanResult struct {
	Direction  trace.Direction  `json:"direction"`
	Smoothed   trace.Scan       `json:"smoothed"`
	Derivative []float64        `json:"derivative"`
	Stats      derivative.Stats `json:"derivative_stats"`
	Baseline   []float64        `json:"baseline"`
	Peaks      []peaks.Peak     `json:"peaks"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// ScanAnalyzer runs the analysis pipeline with a fixed configuration.
type ScanAnalyzer struct {
	config *config.Config
	logger logging.Logger
}

// NewScanAnalyzer creates an analyzer; a nil config selects defaults.
func NewScanAnalyzer(cfg *config.Config) *ScanAnalyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "scan_analyzer",
	})

	return &ScanAnalyzer{
		config: cfg,
		logger: logger,
	}
}

// AnalyzeScan processes one monotonic-direction scan. Stage failures
// never propagate: each failing stage is replaced by a safe fallback
// (unsmoothed data, a zero derivative, an endpoint-interpolated
// baseline) and noted in the warnings. An empty scan yields an empty
// result.
func (sa *ScanAnalyzer) AnalyzeScan(scan trace.Scan, direction trace.Direction) *ScanResult {
	result := &ScanResult{Direction: direction}
	if len(scan) == 0 {
		return result
	}

	logger := sa.logger.WithFields(logging.Fields{
		"function":  "AnalyzeScan",
		"direction": direction.String(),
		"samples":   len(scan),
	})
	logger.Debug("Starting scan analysis")

	smoothed := sa.runSmoothing(scan, result, logger)
	result.Smoothed = smoothed

	sa.runDerivative(smoothed, result, logger)
	base := sa.runBaseline(smoothed, direction, result, logger)
	result.Baseline = base

	detector := peaks.NewDetectorWithParams(peaks.DetectorParams{
		ProminenceThreshold: sa.config.ProminenceThreshold,
	})
	peakRes, err := detector.Analyze(smoothed, base, scan, direction)
	if err != nil {
		logger.Error(err, "Peak detection failed")
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("peaks: detection failed (%v)", err))
	} else {
		result.Peaks = peakRes.Peaks
		appendStageWarnings(result, "peaks", peakRes.Warnings)
	}

	logger.Debug("Scan analysis completed", logging.Fields{
		"peaks":    len(result.Peaks),
		"warnings": len(result.Warnings),
	})
	return result
}

func (sa *ScanAnalyzer) runSmoothing(scan trace.Scan, result *ScanResult, logger logging.Logger) trace.Scan {
	if !sa.config.SmoothingEnabled {
		return scan.Clone()
	}

	smoother := smoothing.NewSmootherWithParams(smoothing.SmootherParams{
		Window: sa.config.SmoothingWindow,
	})
	res, err := smoother.Analyze(scan)
	if err != nil {
		logger.Warn("Smoothing failed, using unsmoothed data", logging.Fields{
			"error": err.Error(),
		})
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("smoothing: failed (%v), using unsmoothed data", err))
		return scan.Clone()
	}

	appendStageWarnings(result, "smoothing", res.Warnings)
	return res.Samples
}

func (sa *ScanAnalyzer) runDerivative(smoothed trace.Scan, result *ScanResult, logger logging.Logger) {
	differentiator := derivative.NewDifferentiatorWithParams(derivative.DifferentiatorParams{
		Window: sa.config.SmoothingWindow,
	})
	res, err := differentiator.Analyze(smoothed)
	if err != nil {
		logger.Warn("Differentiation failed, substituting a zero derivative", logging.Fields{
			"error": err.Error(),
		})
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("derivative: failed (%v), substituting zeros", err))
		result.Derivative = make([]float64, len(smoothed))
		return
	}

	result.Derivative = res.Values
	result.Stats = res.Stats
	appendStageWarnings(result, "derivative", res.Warnings)
}

func (sa *ScanAnalyzer) runBaseline(smoothed trace.Scan, direction trace.Direction, result *ScanResult, logger logging.Logger) []float64 {
	estimator := baseline.NewEstimator(baseline.Method(sa.config.BaselineMethod), baseline.Params{
		Rubberband: baseline.RubberbandParams{
			Iterations: sa.config.RubberbandIterations,
			Window:     sa.config.RubberbandWindow,
		},
		Linear: baseline.LinearParams{
			AnchorFraction: sa.config.LinearAnchorFraction,
		},
		ASLS: baseline.ASLSParams{
			Lambda:        sa.config.ASLSLambda,
			Asymmetry:     sa.config.ASLSAsymmetry,
			MaxIterations: sa.config.ASLSMaxIterations,
			Tolerance:     sa.config.ASLSTolerance,
		},
	})

	res, err := estimator.Estimate(smoothed, direction)
	if err != nil {
		logger.Warn("Baseline estimation failed, using endpoint line", logging.Fields{
			"method": sa.config.BaselineMethod,
			"error":  err.Error(),
		})
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("baseline: %s failed (%v), using endpoint line",
				sa.config.BaselineMethod, err))
		return endpointLine(smoothed)
	}

	appendStageWarnings(result, "baseline", res.Warnings)
	return res.Values
}

// endpointLine interpolates a straight line between the first and last
// sample, the fallback baseline when an estimator fails. Coincident
// endpoint potentials degrade to a horizontal line at their mean
// current.
func endpointLine(scan trace.Scan) []float64 {
	values := make([]float64, len(scan))
	if len(scan) == 0 {
		return values
	}

	first := scan[0]
	last := scan[len(scan)-1]
	span := last.Potential - first.Potential
	if math.Abs(span) < 1e-15 {
		level := (first.Current + last.Current) / 2.0
		for i := range values {
			values[i] = level
		}
		return values
	}

	slope := (last.Current - first.Current) / span
	for i, smp := range scan {
		values[i] = first.Current + slope*(smp.Potential-first.Potential)
	}
	return values
}

func appendStageWarnings(result *ScanResult, stage string, warnings []string) {
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", stage, w))
	}
}

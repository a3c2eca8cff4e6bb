package analysis

import (
	"fmt"

	"github.com/voltagram/voltagram/logging"
	"github.com/voltagram/voltagram/trace"
)

// TraceResult holds the analysis of a full multi-sweep trace: the
// detected segments, the analyzed first forward and reverse sweeps and
// the combined summary figures.
type TraceResult struct {
	Segments []trace.Segment `json:"segments"`
	Forward  *ScanResult     `json:"forward,omitempty"`
	Reverse  *ScanResult     `json:"reverse,omitempty"`
	Summary  *Summary        `json:"summary"`
	Warnings []string        `json:"warnings,omitempty"`
}

// AnalyzeTrace splits a raw trace into monotonic sweeps and analyzes
// the first sweep of each direction. Later cycles are reported in
// Segments but not analyzed.
func (sa *ScanAnalyzer) AnalyzeTrace(samples trace.Scan) *TraceResult {
	result := &TraceResult{}
	if len(samples) == 0 {
		result.Summary = &Summary{}
		return result
	}

	logger := sa.logger.WithFields(logging.Fields{
		"function": "AnalyzeTrace",
		"samples":  len(samples),
	})

	result.Segments = trace.Split(samples)
	logger.Debug("Trace split into sweeps", logging.Fields{
		"segments": len(result.Segments),
	})

	analyzed := 0
	for _, seg := range result.Segments {
		switch {
		case seg.Direction == trace.Forward && result.Forward == nil:
			result.Forward = sa.AnalyzeScan(seg.Samples, trace.Forward)
			analyzed++
		case seg.Direction == trace.Reverse && result.Reverse == nil:
			result.Reverse = sa.AnalyzeScan(seg.Samples, trace.Reverse)
			analyzed++
		}
	}
	if len(result.Segments) > analyzed {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"trace contains %d sweeps, analyzed the first forward and reverse only",
			len(result.Segments)))
	}

	result.Summary = ComputeSummary(result.Forward, result.Reverse, samples)
	return result
}

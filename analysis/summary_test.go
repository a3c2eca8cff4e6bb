package analysis

import (
	"math"
	"testing"

	"github.com/voltagram/voltagram/algorithms/peaks"
	"github.com/voltagram/voltagram/trace"
)

func scanResultWithPeaks(direction trace.Direction, ps ...peaks.Peak) *ScanResult {
	return &ScanResult{Direction: direction, Peaks: ps}
}

func TestComputeSummaryPeakPair(t *testing.T) {
	forward := scanResultWithPeaks(trace.Forward,
		peaks.Peak{Potential: 0.05, Height: 0.4, Prominence: 0.4, Kind: trace.Oxidation},
		peaks.Peak{Potential: 0.25, Height: 2.0, Prominence: 2.0, Kind: trace.Oxidation},
	)
	reverse := scanResultWithPeaks(trace.Reverse,
		peaks.Peak{Potential: 0.15, Height: -1.5, Prominence: 1.5, Kind: trace.Reduction},
	)

	summary := ComputeSummary(forward, reverse, nil)
	if !summary.HasPeakPair {
		t.Fatal("HasPeakPair = false, want true")
	}
	// The pair uses the most prominent peak per direction: 0.25 V, not
	// the minor one at 0.05 V.
	if math.Abs(summary.PeakSeparation-0.1) > 1e-12 {
		t.Errorf("peak separation = %v, want 0.1", summary.PeakSeparation)
	}
	if math.Abs(summary.HalfWavePotential-0.2) > 1e-12 {
		t.Errorf("half-wave potential = %v, want 0.2", summary.HalfWavePotential)
	}
	want := 2.0 / 1.5
	if math.Abs(summary.PeakCurrentRatio-want) > 1e-12 {
		t.Errorf("peak current ratio = %v, want %v", summary.PeakCurrentRatio, want)
	}
}

func TestComputeSummaryZeroCathodicHeight(t *testing.T) {
	forward := scanResultWithPeaks(trace.Forward,
		peaks.Peak{Potential: 0.2, Height: 1.0, Prominence: 1.0})
	reverse := scanResultWithPeaks(trace.Reverse,
		peaks.Peak{Potential: 0.1, Height: 0.0, Prominence: 0.5})

	summary := ComputeSummary(forward, reverse, nil)
	if summary.PeakCurrentRatio != 0 {
		t.Errorf("ratio = %v, want 0 for zero cathodic height", summary.PeakCurrentRatio)
	}
}

func TestComputeSummaryMissingSide(t *testing.T) {
	forward := scanResultWithPeaks(trace.Forward,
		peaks.Peak{Potential: 0.2, Height: 1.0, Prominence: 1.0})

	tests := []struct {
		name    string
		fwd     *ScanResult
		rev     *ScanResult
	}{
		{"no reverse result", forward, nil},
		{"reverse without peaks", forward, scanResultWithPeaks(trace.Reverse)},
		{"no forward result", nil, scanResultWithPeaks(trace.Reverse)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := ComputeSummary(tt.fwd, tt.rev, nil)
			if summary.HasPeakPair {
				t.Error("HasPeakPair = true, want false")
			}
			if summary.PeakSeparation != 0 || summary.PeakCurrentRatio != 0 {
				t.Errorf("unset pair figures should stay zero, got %+v", summary)
			}
		})
	}
}

func TestComputeSummaryIRDrop(t *testing.T) {
	applied1 := 0.11
	applied2 := 0.23
	samples := trace.Scan{
		{Potential: 0.10, Current: 1, AppliedPotential: &applied1},
		{Potential: 0.15, Current: 1},
		{Potential: 0.20, Current: 1, AppliedPotential: &applied2},
	}

	summary := ComputeSummary(nil, nil, samples)
	if !summary.HasIRDrop {
		t.Fatal("HasIRDrop = false, want true")
	}
	if math.Abs(summary.IRDropMean-0.02) > 1e-12 {
		t.Errorf("mean iR drop = %v, want 0.02", summary.IRDropMean)
	}
	if math.Abs(summary.IRDropMax-0.03) > 1e-12 {
		t.Errorf("max iR drop = %v, want 0.03", summary.IRDropMax)
	}
}

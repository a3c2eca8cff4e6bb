package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/voltagram/voltagram/algorithms/peaks"
	"github.com/voltagram/voltagram/trace"
)

// Summary combines the principal peaks of a forward/reverse pair into
// the standard voltammetric figures of merit.
type Summary struct {
	PeakSeparation    float64 `json:"peak_separation"`     // Delta Ep, anodic minus cathodic apex (V)
	HalfWavePotential float64 `json:"half_wave_potential"` // E1/2, midpoint of the apex pair (V)
	PeakCurrentRatio  float64 `json:"peak_current_ratio"`  // |Ipa/Ipc|, zero when Ipc is zero
	HasPeakPair       bool    `json:"has_peak_pair"`
	IRDropMean        float64 `json:"ir_drop_mean"` // Mean |applied - measured| potential (V)
	IRDropMax         float64 `json:"ir_drop_max"`
	HasIRDrop         bool    `json:"has_ir_drop"`
}

// ComputeSummary derives pairwise figures from a forward and reverse
// scan result, pairing the most prominent peak of each. Either result
// may be nil or peak-free; the pair figures are then left unset. The
// raw samples supply applied-potential data for the iR drop estimate.
func ComputeSummary(forward, reverse *ScanResult, samples trace.Scan) *Summary {
	summary := &Summary{}

	anodic := mostProminent(forward)
	cathodic := mostProminent(reverse)
	if anodic != nil && cathodic != nil {
		summary.HasPeakPair = true
		summary.PeakSeparation = math.Abs(anodic.Potential - cathodic.Potential)
		summary.HalfWavePotential = (anodic.Potential + cathodic.Potential) / 2.0
		if cathodic.Height != 0 {
			summary.PeakCurrentRatio = math.Abs(anodic.Height / cathodic.Height)
		}
	}

	var drops []float64
	for _, smp := range samples {
		if smp.AppliedPotential == nil {
			continue
		}
		drops = append(drops, math.Abs(*smp.AppliedPotential-smp.Potential))
	}
	if len(drops) > 0 {
		summary.HasIRDrop = true
		summary.IRDropMean = stat.Mean(drops, nil)
		summary.IRDropMax = floats.Max(drops)
	}

	return summary
}

// mostProminent returns the highest-prominence peak of a result, nil
// when there is none.
func mostProminent(result *ScanResult) *peaks.Peak {
	if result == nil || len(result.Peaks) == 0 {
		return nil
	}
	best := &result.Peaks[0]
	for i := 1; i < len(result.Peaks); i++ {
		if result.Peaks[i].Prominence > best.Prominence {
			best = &result.Peaks[i]
		}
	}
	return best
}

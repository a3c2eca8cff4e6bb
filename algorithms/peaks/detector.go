// Package peaks detects electrochemical peaks on a baseline-corrected
// scan: extremum candidates are ranked by topographic prominence,
// merged by proximity, bounded at their return to baseline, refined
// with parabolic sub-sample interpolation, and integrated for charge.
package peaks

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/voltagram/voltagram/algorithms/common"
	"github.com/voltagram/voltagram/algorithms/integrate"
	"github.com/voltagram/voltagram/trace"
)

// ErrLengthMismatch is returned when the smoothed scan and baseline
// sequence disagree in length.
var ErrLengthMismatch = errors.New("peaks: scan and baseline lengths differ")

// DetectorParams holds peak detection tuning.
type DetectorParams struct {
	ProminenceThreshold float64 `json:"prominence_threshold"` // Fraction of the largest candidate magnitude
}

// DefaultDetectorParams returns the detection defaults.
func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		ProminenceThreshold: 0.05,
	}
}

// Peak is one detected peak with its interpolated apex, boundaries and
// integrated charge.
type Peak struct {
	Index          int            `json:"index"`           // Discrete apex index within the scan
	Potential      float64        `json:"potential"`       // Sub-sample interpolated apex potential
	ApexCurrent    float64        `json:"apex_current"`    // Smoothed current at the apex
	RawCurrent     float64        `json:"raw_current"`     // Unsmoothed current at the apex
	Height         float64        `json:"height"`          // Baseline-corrected current at the apex
	Prominence     float64        `json:"prominence"`      // Prominence of the corrected signal, always positive
	Area           float64        `json:"area"`            // Magnitude of the integrated charge
	ChargeUnit     string         `json:"charge_unit"`     // "C" when time data exists, "A·V" otherwise
	StartIndex     int            `json:"start_index"`     // Left boundary index
	EndIndex       int            `json:"end_index"`       // Right boundary index
	StartPotential float64        `json:"start_potential"` // Potential at the left boundary
	EndPotential   float64        `json:"end_potential"`   // Potential at the right boundary
	Kind           trace.PeakKind `json:"kind"`            // Oxidation or reduction
}

// DetectResult aggregates the detected peaks with the corrected signal
// they were found on.
type DetectResult struct {
	Peaks     []Peak    `json:"peaks"`
	Corrected []float64 `json:"corrected"` // smoothed current minus baseline
	Warnings  []string  `json:"warnings,omitempty"`
}

// Detector runs prominence-based peak detection.
type Detector struct {
	params DetectorParams
}

// NewDetector creates a Detector with default parameters.
func NewDetector() *Detector {
	return NewDetectorWithParams(DefaultDetectorParams())
}

// NewDetectorWithParams creates a Detector with custom parameters.
func NewDetectorWithParams(params DetectorParams) *Detector {
	return &Detector{params: params}
}

type candidate struct {
	index      int
	prominence float64
}

// Analyze detects peaks on smoothed minus baseline. The raw scan, when
// aligned with smoothed, supplies the unsmoothed apex current; pass the
// smoothed scan itself if no separate raw data exists. Direction sets
// the sign convention: forward scans carry positive (oxidation) peaks,
// reverse scans negative (reduction) ones.
func (d *Detector) Analyze(smoothed trace.Scan, baseline []float64, raw trace.Scan, direction trace.Direction) (*DetectResult, error) {
	if len(smoothed) != len(baseline) {
		return nil, fmt.Errorf("%w: %d samples, %d baseline values",
			ErrLengthMismatch, len(smoothed), len(baseline))
	}

	n := len(smoothed)
	result := &DetectResult{}
	if n == 0 {
		return result, nil
	}

	corrected := make([]float64, n)
	for i, smp := range smoothed {
		corrected[i] = smp.Current - baseline[i]
	}
	result.Corrected = corrected

	// Fold reduction scans so the rest of the pipeline only ever deals
	// with positive excursions. Zero crossings, prominences and the
	// parabolic offset are invariant under the sign flip.
	folded := corrected
	if direction == trace.Reverse {
		folded = make([]float64, n)
		for i, v := range corrected {
			folded[i] = -v
		}
	}

	candidates := findCandidates(folded)
	if len(candidates) == 0 {
		result.Warnings = append(result.Warnings, "no peak candidates found")
		return result, nil
	}

	kept := filterByProminence(candidates, folded, d.params.ProminenceThreshold)
	kept = mergeCandidates(kept, minSeparation(n))
	if len(kept) == 0 {
		result.Warnings = append(result.Warnings,
			"no peaks above the prominence threshold")
		return result, nil
	}

	useTime := smoothed.HasTime()
	for _, c := range kept {
		peak := d.buildPeak(c, smoothed, corrected, folded, raw, direction, useTime)
		result.Peaks = append(result.Peaks, peak)
	}
	sortPeaks(result.Peaks, direction)
	return result, nil
}

// findCandidates returns interior strict local maxima with positive
// corrected value.
func findCandidates(folded []float64) []candidate {
	var out []candidate
	for i := 1; i < len(folded)-1; i++ {
		if folded[i] <= 0 {
			continue
		}
		if folded[i] > folded[i-1] && folded[i] > folded[i+1] {
			out = append(out, candidate{index: i, prominence: prominence(folded, i)})
		}
	}
	return out
}

// prominence walks outward from the apex on each side until it meets a
// strictly higher point or the data edge, tracking the lowest value
// seen. The prominence is the apex height over the higher of the two
// side valleys.
func prominence(folded []float64, apex int) float64 {
	height := folded[apex]

	leftValley := height
	for j := apex - 1; j >= 0; j-- {
		if folded[j] > height {
			break
		}
		if folded[j] < leftValley {
			leftValley = folded[j]
		}
	}

	rightValley := height
	for j := apex + 1; j < len(folded); j++ {
		if folded[j] > height {
			break
		}
		if folded[j] < rightValley {
			rightValley = folded[j]
		}
	}

	key := leftValley
	if rightValley > key {
		key = rightValley
	}
	return height - key
}

// filterByProminence keeps candidates whose prominence reaches the
// threshold fraction of the largest candidate magnitude.
func filterByProminence(candidates []candidate, folded []float64, threshold float64) []candidate {
	maxMagnitude := 0.0
	for _, c := range candidates {
		if folded[c.index] > maxMagnitude {
			maxMagnitude = folded[c.index]
		}
	}

	floor := threshold * maxMagnitude
	var kept []candidate
	for _, c := range candidates {
		if c.prominence >= floor {
			kept = append(kept, c)
		}
	}
	return kept
}

// minSeparation is the merge distance: peaks closer than this many
// indices collapse into the more prominent one.
func minSeparation(n int) int {
	sep := n * 2 / 100
	if sep < 5 {
		sep = 5
	}
	return sep
}

// mergeCandidates absorbs candidates within minSep indices of a more
// prominent survivor. Ties keep the earlier candidate. The result is
// returned in index order.
func mergeCandidates(candidates []candidate, minSep int) []candidate {
	byProminence := make([]candidate, len(candidates))
	copy(byProminence, candidates)
	sort.SliceStable(byProminence, func(i, j int) bool {
		return byProminence[i].prominence > byProminence[j].prominence
	})

	var kept []candidate
	for _, c := range byProminence {
		tooClose := false
		for _, k := range kept {
			if abs(k.index-c.index) < minSep {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].index < kept[j].index })
	return kept
}

func (d *Detector) buildPeak(c candidate, smoothed trace.Scan, corrected, folded []float64, raw trace.Scan, direction trace.Direction, useTime bool) Peak {
	apex := c.index
	start, end := findBoundaries(folded, apex)

	peak := Peak{
		Index:          apex,
		Potential:      interpolateApex(smoothed, folded, apex),
		ApexCurrent:    smoothed[apex].Current,
		RawCurrent:     smoothed[apex].Current,
		Height:         corrected[apex],
		Prominence:     c.prominence,
		StartIndex:     start,
		EndIndex:       end,
		StartPotential: smoothed[start].Potential,
		EndPotential:   smoothed[end].Potential,
		Kind:           trace.KindFor(direction),
	}
	if len(raw) == len(smoothed) {
		peak.RawCurrent = raw[apex].Current
	}

	peak.Area, peak.ChargeUnit = integrateCharge(smoothed, corrected, start, end, useTime)
	return peak
}

// findBoundaries walks outward from the apex until the corrected signal
// returns to baseline. A value of exactly zero counts as crossed. The
// data edges bound peaks that never return.
func findBoundaries(folded []float64, apex int) (start, end int) {
	start = 0
	for j := apex - 1; j >= 0; j-- {
		if folded[j] <= 0 {
			start = j
			break
		}
	}

	end = len(folded) - 1
	for j := apex + 1; j < len(folded); j++ {
		if folded[j] <= 0 {
			end = j
			break
		}
	}
	return start, end
}

// interpolateApex fits a parabola through the apex and its neighbors
// and returns the potential of the vertex. The vertex offset is
// (y_r - y_l) / (2*(2*y_c - y_l - y_r)) in sample units, always within
// half a sample of the apex for a strict local maximum. A degenerate
// curvature keeps the discrete apex potential.
func interpolateApex(smoothed trace.Scan, folded []float64, apex int) float64 {
	yl := folded[apex-1]
	yc := folded[apex]
	yr := folded[apex+1]

	denom := 2.0 * (2.0*yc - yl - yr)
	if math.Abs(denom) < 1e-30 {
		return smoothed[apex].Potential
	}

	offset := (yr - yl) / denom
	if offset >= 0 {
		return common.Lerp(smoothed[apex].Potential, smoothed[apex+1].Potential, offset)
	}
	return common.Lerp(smoothed[apex].Potential, smoothed[apex-1].Potential, -offset)
}

// integrateCharge integrates the corrected current over the peak span.
// Time, when every sample carries it, provides the x axis and makes the
// area a true charge in Coulombs; otherwise the potential axis yields
// an ampere-volt area. Simpson's rule handles odd point counts, the
// trapezoid rule the rest.
func integrateCharge(smoothed trace.Scan, corrected []float64, start, end int, useTime bool) (float64, string) {
	unit := "A·V"
	if useTime {
		unit = "C"
	}

	count := end - start + 1
	if count < 2 {
		return 0, unit
	}

	points := make([]integrate.Point, 0, count)
	for i := start; i <= end; i++ {
		x := smoothed[i].Potential
		if useTime {
			x = *smoothed[i].Time
		}
		points = append(points, integrate.Point{X: x, Y: corrected[i]})
	}

	res, err := integrate.Simpsons(points)
	if err != nil {
		return 0, unit
	}
	return math.Abs(res.Area), unit
}

// sortPeaks orders oxidation peaks by ascending potential and reduction
// peaks by descending potential.
func sortPeaks(peaks []Peak, direction trace.Direction) {
	sort.Slice(peaks, func(i, j int) bool {
		if direction == trace.Reverse {
			return peaks[i].Potential > peaks[j].Potential
		}
		return peaks[i].Potential < peaks[j].Potential
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

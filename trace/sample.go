package trace

import (
	"math"
)

// Sample represents one measured point of a voltammetric trace.
//
// Potential is the independent axis and is not required to be uniformly
// spaced. Time and AppliedPotential are optional instrument columns; they
// are pointer fields so presence can be checked before any branch that
// depends on them (charge units, iR-drop estimation).
type Sample struct {
	Potential        float64  `json:"potential"`                  // Measured electrode potential (V)
	Current          float64  `json:"current"`                    // Measured current (A)
	Time             *float64 `json:"time,omitempty"`             // Elapsed time (s), when recorded
	AppliedPotential *float64 `json:"applied_potential,omitempty"` // Programmed potential (V), when recorded
}

// Scan is an ordered sequence of samples for one monotonic-direction
// half-cycle. The analysis core treats a Scan as read-only input; stages
// return newly allocated output and never mutate their argument.
type Scan []Sample

// Direction identifies the sweep direction of a scan.
type Direction int

const (
	// Forward sweeps toward positive potential; peaks are positive
	// (oxidation) excursions above the baseline.
	Forward Direction = iota
	// Reverse sweeps toward negative potential; peaks are negative
	// (reduction) excursions below the baseline.
	Reverse
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// PeakKind labels a detected peak by the electrochemical process that
// produced it.
type PeakKind string

const (
	Oxidation PeakKind = "oxidation"
	Reduction PeakKind = "reduction"
)

// KindFor returns the peak kind implied by a scan direction.
func KindFor(d Direction) PeakKind {
	if d == Reverse {
		return Reduction
	}
	return Oxidation
}

// Potentials returns a newly allocated slice of the potential column.
func (s Scan) Potentials() []float64 {
	out := make([]float64, len(s))
	for i, smp := range s {
		out[i] = smp.Potential
	}
	return out
}

// Currents returns a newly allocated slice of the current column.
func (s Scan) Currents() []float64 {
	out := make([]float64, len(s))
	for i, smp := range s {
		out[i] = smp.Current
	}
	return out
}

// WithCurrents returns a copy of the scan whose current column is replaced
// by values. Potentials and optional columns are preserved. values must be
// the same length as the scan.
func (s Scan) WithCurrents(values []float64) Scan {
	out := make(Scan, len(s))
	copy(out, s)
	for i := range out {
		if i < len(values) {
			out[i].Current = values[i]
		}
	}
	return out
}

// HasTime reports whether every sample in the scan carries a time value.
// Charge integrates over time (Coulombs) only when this holds.
func (s Scan) HasTime() bool {
	if len(s) == 0 {
		return false
	}
	for _, smp := range s {
		if smp.Time == nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the scan, including optional columns.
func (s Scan) Clone() Scan {
	out := make(Scan, len(s))
	for i, smp := range s {
		out[i] = smp
		if smp.Time != nil {
			t := *smp.Time
			out[i].Time = &t
		}
		if smp.AppliedPotential != nil {
			a := *smp.AppliedPotential
			out[i].AppliedPotential = &a
		}
	}
	return out
}

// PotentialRange returns the minimum and maximum finite potential in the
// scan. Returns (0, 0) for an empty scan.
func (s Scan) PotentialRange() (min, max float64) {
	first := true
	for _, smp := range s {
		if math.IsNaN(smp.Potential) || math.IsInf(smp.Potential, 0) {
			continue
		}
		if first {
			min, max = smp.Potential, smp.Potential
			first = false
			continue
		}
		if smp.Potential < min {
			min = smp.Potential
		}
		if smp.Potential > max {
			max = smp.Potential
		}
	}
	return min, max
}

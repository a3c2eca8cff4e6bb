package derivative

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/voltagram/voltagram/algorithms/savgol"
	"github.com/voltagram/voltagram/trace"
)

func rampScan(n int, spacing, slope, intercept float64) trace.Scan {
	scan := make(trace.Scan, n)
	for i := range scan {
		e := float64(i) * spacing
		scan[i] = trace.Sample{Potential: e, Current: slope*e + intercept}
	}
	return scan
}

func TestDifferentiatorCalibratedSlope(t *testing.T) {
	// A quadratic-fit derivative kernel recovers a linear slope exactly
	// wherever the window does not touch the mirrored edges.
	scan := rampScan(50, 0.01, 3.0, 0.5)

	d := NewDifferentiatorWithParams(DifferentiatorParams{Window: 5})
	res, err := d.Analyze(scan)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if math.Abs(res.Spacing-0.01) > 1e-12 {
		t.Errorf("spacing = %v, want 0.01", res.Spacing)
	}
	for i := 2; i < len(scan)-2; i++ {
		if math.Abs(res.Values[i]-3.0) > 1e-9 {
			t.Errorf("position %d: slope = %v, want 3.0", i, res.Values[i])
		}
	}
}

func TestMedianSpacingExcludesZeroSteps(t *testing.T) {
	scan := trace.Scan{
		{Potential: 0.0, Current: 1},
		{Potential: 0.1, Current: 1},
		{Potential: 0.1, Current: 1}, // switching-point artifact
		{Potential: 0.2, Current: 1},
		{Potential: 0.3, Current: 1},
		{Potential: 0.4, Current: 1},
	}
	res, err := NewDifferentiatorWithParams(DifferentiatorParams{Window: 5}).Analyze(scan)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if math.Abs(res.Spacing-0.1) > 1e-12 {
		t.Errorf("spacing = %v, want 0.1 with zero-width pair excluded", res.Spacing)
	}
}

func TestDifferentiatorFlatSignal(t *testing.T) {
	scan := rampScan(40, 0.01, 0, 1.0)

	res, err := NewDifferentiator().Analyze(scan)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for i, v := range res.Values {
		if v != 0 {
			t.Errorf("position %d: slope = %v, want 0 for constant current", i, v)
		}
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "flat") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a flat-signal warning, got %v", res.Warnings)
	}
}

func TestDifferentiatorSpacingWarning(t *testing.T) {
	scan := rampScan(30, 1e-9, 0, 1.0)

	res, err := NewDifferentiator().Analyze(scan)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "unreliable") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a spacing warning, got %v", res.Warnings)
	}
}

func TestDifferentiatorExtremeSlopeWarning(t *testing.T) {
	scan := make(trace.Scan, 40)
	for i := range scan {
		scan[i].Potential = float64(i) * 1e-5
		if i >= 20 {
			scan[i].Current = 100.0
		}
	}
	res, err := NewDifferentiator().Analyze(scan)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "exceed 1e6") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an extreme-slope warning, got %v", res.Warnings)
	}
}

func TestCountZeroCrossings(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"alternating", []float64{1, -1, 1}, 2},
		{"skips non-finite", []float64{1, math.NaN(), -1}, 1},
		{"zero is non-negative", []float64{0, 1, -1}, 1},
		{"negative to zero", []float64{-1, 0, 1}, 1},
		{"monotone", []float64{1, 2, 3}, 0},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countZeroCrossings(tt.values); got != tt.want {
				t.Errorf("countZeroCrossings(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestHighFrequencyRatio(t *testing.T) {
	n := 64

	t.Run("nyquist-band signal", func(t *testing.T) {
		values := make([]float64, n)
		for i := range values {
			values[i] = math.Cos(math.Pi / 2.0 * float64(i)) // period 4
		}
		if ratio := highFrequencyRatio(values); ratio <= 0.5 {
			t.Errorf("ratio = %v, want > 0.5 for a period-4 signal", ratio)
		}
	})

	t.Run("slow signal", func(t *testing.T) {
		values := make([]float64, n)
		for i := range values {
			values[i] = math.Sin(2.0 * math.Pi * float64(i) / float64(n))
		}
		if ratio := highFrequencyRatio(values); ratio >= 0.1 {
			t.Errorf("ratio = %v, want < 0.1 for a single-cycle signal", ratio)
		}
	})

	t.Run("zero signal", func(t *testing.T) {
		if ratio := highFrequencyRatio(make([]float64, n)); ratio != 0 {
			t.Errorf("ratio = %v, want 0", ratio)
		}
	})
}

func TestDifferentiatorErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := NewDifferentiator().Analyze(nil)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Analyze(nil) error = %v, want ErrEmptyInput", err)
		}
	})
	t.Run("unsupported window", func(t *testing.T) {
		d := NewDifferentiatorWithParams(DifferentiatorParams{Window: 6})
		_, err := d.Analyze(rampScan(10, 0.01, 1, 0))
		if !errors.Is(err, savgol.ErrUnsupportedWindow) {
			t.Errorf("Analyze() error = %v, want ErrUnsupportedWindow", err)
		}
	})
}

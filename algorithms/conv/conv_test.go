package conv

import (
	"errors"
	"math"
	"testing"
)

func TestConvolveConstantInput(t *testing.T) {
	// A normalized kernel must reproduce a constant signal exactly under
	// every edge mode.
	kernel := []float64{0.25, 0.5, 0.25}
	data := make([]float64, 32)
	for i := range data {
		data[i] = 3.7
	}

	for _, mode := range []EdgeMode{Mirror, Constant, Extend} {
		t.Run(mode.String(), func(t *testing.T) {
			res, err := Convolve(data, kernel, mode)
			if err != nil {
				t.Fatalf("Convolve() error = %v", err)
			}
			for i, v := range res.Values {
				if math.Abs(v-3.7) > 1e-12 {
					t.Errorf("position %d: got %v, want 3.7", i, v)
				}
			}
		})
	}
}

func TestConvolveEdgeResolution(t *testing.T) {
	data := []float64{1, 2, 3, 4}

	tests := []struct {
		name   string
		kernel []float64
		mode   EdgeMode
		index  int
		want   float64
	}{
		{
			// Window position -1 reflects to index 1.
			name:   "mirror low side",
			kernel: []float64{1, 0, 0},
			mode:   Mirror,
			index:  0,
			want:   2,
		},
		{
			// Window position n reflects to index n-2.
			name:   "mirror high side",
			kernel: []float64{0, 0, 1},
			mode:   Mirror,
			index:  3,
			want:   3,
		},
		{
			name:   "extend low side clamps",
			kernel: []float64{1, 0, 0},
			mode:   Extend,
			index:  0,
			want:   1,
		},
		{
			name:   "constant high side clamps",
			kernel: []float64{0, 0, 1},
			mode:   Constant,
			index:  3,
			want:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Convolve(data, tt.kernel, tt.mode)
			if err != nil {
				t.Fatalf("Convolve() error = %v", err)
			}
			if got := res.Values[tt.index]; math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("position %d: got %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}

func TestConvolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []float64
		kernel  []float64
		wantErr error
	}{
		{"empty data", nil, []float64{1}, ErrEmptyData},
		{"empty kernel", []float64{1, 2}, nil, ErrEmptyKernel},
		{"even kernel", []float64{1, 2, 3}, []float64{0.5, 0.5}, ErrEvenKernel},
		{"nan kernel", []float64{1, 2, 3}, []float64{0.5, math.NaN(), 0.5}, ErrKernelNotFinite},
		{"inf kernel", []float64{1, 2, 3}, []float64{0.5, math.Inf(1), 0.5}, ErrKernelNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convolve(tt.data, tt.kernel, Mirror)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvolveNonFiniteData(t *testing.T) {
	data := []float64{1, math.NaN(), 1}
	kernel := []float64{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0}

	res, err := Convolve(data, kernel, Extend)
	if err != nil {
		t.Fatalf("Convolve() error = %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a non-finite data warning")
	}
	// The NaN sample contributes zero at the center position.
	if got, want := res.Values[1], 2.0/3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("center value: got %v, want %v", got, want)
	}
	for i, v := range res.Values {
		if math.IsNaN(v) {
			t.Errorf("position %d: NaN leaked into output", i)
		}
	}
}

func TestConvolveKernelLongerThanData(t *testing.T) {
	data := []float64{1, 2}
	kernel := []float64{0.2, 0.2, 0.2, 0.2, 0.2}

	res, err := Convolve(data, kernel, Mirror)
	if err != nil {
		t.Fatalf("Convolve() error = %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected an oversized-kernel warning")
	}
	if len(res.Values) != len(data) {
		t.Errorf("output length = %d, want %d", len(res.Values), len(data))
	}
}

// Package conv implements weighted sliding-window convolution over 1D
// signals with configurable edge handling. Every filtering stage in the
// analysis pipeline runs through Convolve.
package conv

import (
	"errors"
	"fmt"
	"math"
)

// EdgeMode selects how windows extending past the data ends are resolved.
type EdgeMode int

const (
	// Mirror reflects out-of-range indices across the nearest boundary.
	Mirror EdgeMode = iota
	// Constant clamps out-of-range indices to the nearest edge sample.
	Constant
	// Extend clamps out-of-range indices to the nearest edge sample.
	Extend
)

func (m EdgeMode) String() string {
	switch m {
	case Mirror:
		return "mirror"
	case Constant:
		return "constant"
	case Extend:
		return "extend"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyData is returned when the input signal has no samples.
	ErrEmptyData = errors.New("conv: empty data")
	// ErrEmptyKernel is returned when the kernel has no coefficients.
	ErrEmptyKernel = errors.New("conv: empty kernel")
	// ErrEvenKernel is returned when the kernel length is not odd.
	ErrEvenKernel = errors.New("conv: kernel length must be odd")
	// ErrKernelNotFinite is returned when a kernel coefficient is NaN or
	// infinite. A broken kernel is a programming error, not a data issue.
	ErrKernelNotFinite = errors.New("conv: non-finite kernel coefficient")
)

// Result carries the convolved signal and any data-quality warnings
// raised while computing it.
type Result struct {
	Values   []float64 `json:"values"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Convolve computes, for every position i, the dot product of kernel with
// the data window centered at i. The kernel length must be odd; its
// half-width is len(kernel)/2. Out-of-range window positions resolve per
// the edge mode. Non-finite data samples contribute zero and are counted
// into a warning; non-finite kernel coefficients are fatal. A kernel
// longer than the data warns but still computes.
func Convolve(data, kernel []float64, edge EdgeMode) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if len(kernel)%2 == 0 {
		return nil, fmt.Errorf("%w: got length %d", ErrEvenKernel, len(kernel))
	}
	for i, c := range kernel {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: index %d", ErrKernelNotFinite, i)
		}
	}

	result := &Result{Values: make([]float64, len(data))}
	if len(kernel) > len(data) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("kernel length %d exceeds data length %d, edge handling dominates", len(kernel), len(data)))
	}

	nonFinite := 0
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite++
		}
	}
	if nonFinite > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d non-finite data samples treated as zero", nonFinite))
	}

	n := len(data)
	half := len(kernel) / 2

	for i := range data {
		sum := 0.0
		for k, c := range kernel {
			idx := resolveIndex(i+k-half, n, edge)
			v := data[idx]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += c * v
		}
		result.Values[i] = sum
	}
	return result, nil
}

// resolveIndex maps a possibly out-of-range index into [0, n-1].
func resolveIndex(idx, n int, edge EdgeMode) int {
	if idx >= 0 && idx < n {
		return idx
	}
	switch edge {
	case Mirror:
		if idx < 0 {
			m := -idx
			if m > n-1 {
				m = n - 1
			}
			return m
		}
		m := 2*n - idx - 2
		if m < 0 {
			m = 0
		}
		return m
	default: // Constant, Extend
		if idx < 0 {
			return 0
		}
		return n - 1
	}
}

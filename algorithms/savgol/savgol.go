// Package savgol holds the fixed Savitzky-Golay coefficient table used by
// the smoothing and derivative stages.
//
// Coefficients follow the classic quadratic (order 2) least-squares tables
// from Savitzky & Golay (1964), Analytical Chemistry 36(8). Entries are
// stored as integers exactly as published; smoothing retrieval divides by
// the table sum so the kernel sums to 1, derivative retrieval returns the
// raw integer pattern and leaves scaling to the caller (the derivative
// stage divides by 2*sum(i^2)*h).
//
// The table is read-only after package initialization and safe for
// concurrent lookups.
package savgol

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedWindow is returned when no kernel exists for the requested
// window size.
var ErrUnsupportedWindow = errors.New("savgol: unsupported window size")

type kernelPair struct {
	smooth []int
	deriv  []int
}

var kernels = map[int]kernelPair{
	5: {
		smooth: []int{-3, 12, 17, 12, -3},
		deriv:  []int{-2, -1, 0, 1, 2},
	},
	9: {
		smooth: []int{-21, 14, 39, 54, 59, 54, 39, 14, -21},
		deriv:  []int{-4, -3, -2, -1, 0, 1, 2, 3, 4},
	},
	11: {
		smooth: []int{-36, 9, 44, 69, 84, 89, 84, 69, 44, 9, -36},
		deriv:  []int{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5},
	},
	15: {
		smooth: []int{-78, -13, 42, 87, 122, 147, 162, 167, 162, 147, 122, 87, 42, -13, -78},
		deriv:  []int{-7, -6, -5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7},
	},
	21: {
		smooth: []int{-171, -76, 9, 84, 149, 204, 249, 284, 309, 324, 329, 324, 309, 284, 249, 204, 149, 84, 9, -76, -171},
		deriv:  []int{-10, -9, -8, -7, -6, -5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	},
}

// SupportedWindows returns the window sizes present in the table, sorted
// ascending.
func SupportedWindows() []int {
	sizes := make([]int, 0, len(kernels))
	for w := range kernels {
		sizes = append(sizes, w)
	}
	sort.Ints(sizes)
	return sizes
}

// IsSupported reports whether a kernel pair exists for the window size.
func IsSupported(window int) bool {
	_, ok := kernels[window]
	return ok
}

// SmoothingKernel returns the smoothing coefficients for the window size,
// normalized to sum to 1.
func SmoothingKernel(window int) ([]float64, error) {
	pair, ok := kernels[window]
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedWindow, window, SupportedWindows())
	}
	sum := 0
	for _, c := range pair.smooth {
		sum += c
	}
	out := make([]float64, len(pair.smooth))
	for i, c := range pair.smooth {
		out[i] = float64(c) / float64(sum)
	}
	return out, nil
}

// DerivativeKernel returns the raw first-derivative coefficients for the
// window size, unscaled. Callers divide the convolution output by
// DerivativeNorm(window) times the sample spacing to obtain a calibrated
// slope.
func DerivativeKernel(window int) ([]float64, error) {
	pair, ok := kernels[window]
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedWindow, window, SupportedWindows())
	}
	out := make([]float64, len(pair.deriv))
	for i, c := range pair.deriv {
		out[i] = float64(c)
	}
	return out, nil
}

// DerivativeNorm returns 2*sum(i^2) for i in 1..halfWidth, the
// least-squares denominator of the first-derivative kernel.
func DerivativeNorm(window int) (float64, error) {
	if _, ok := kernels[window]; !ok {
		return 0, fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedWindow, window, SupportedWindows())
	}
	m := window / 2
	sum := 0
	for i := 1; i <= m; i++ {
		sum += i * i
	}
	return 2.0 * float64(sum), nil
}

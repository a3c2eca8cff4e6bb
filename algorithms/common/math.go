package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Descriptive statistics shared by the quality checks. gonum backs the
// ambient statistics; anything feeding a solver stays hand-rolled.

// Mean calculates the arithmetic mean of a slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice.
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation.
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// ValueRange returns max - min. Returns 0 for fewer than two values.
func ValueRange(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return floats.Max(data) - floats.Min(data)
}

// Median returns the middle value of data (mean of the two middle values
// for even lengths). Sorting happens on a copy. Median feeds the derivative
// calibration path, so it is implemented directly rather than through a
// statistics package.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

// CenteredMovingAverage smooths data with a window of radius halfWidth
// centered on each position. Windows truncate at the array ends instead of
// padding, so the output keeps the input length with no phase shift.
func CenteredMovingAverage(data []float64, halfWidth int) []float64 {
	if len(data) == 0 || halfWidth <= 0 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	result := make([]float64, len(data))
	for i := range data {
		start := i - halfWidth
		if start < 0 {
			start = 0
		}
		end := i + halfWidth
		if end > len(data)-1 {
			end = len(data) - 1
		}
		sum := 0.0
		for j := start; j <= end; j++ {
			sum += data[j]
		}
		result[i] = sum / float64(end-start+1)
	}
	return result
}

// FirstDifferences returns data[i+1] - data[i] for consecutive elements.
// Returns an empty slice for fewer than two values.
func FirstDifferences(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}
	diffs := make([]float64, len(data)-1)
	for i := 0; i < len(data)-1; i++ {
		diffs[i] = data[i+1] - data[i]
	}
	return diffs
}

// CountNonFinite returns the number of NaN or infinite values in data.
func CountNonFinite(data []float64) int {
	count := 0
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			count++
		}
	}
	return count
}

// Clamp limits value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Lerp linearly interpolates between a and b by factor t in [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Package config holds the tunable parameters for a full scan analysis
// run and their validation rules.
package config

import (
	"fmt"

	"github.com/voltagram/voltagram/algorithms/savgol"
)

// Config carries every tunable of the analysis pipeline. A zero value
// is not usable; start from DefaultConfig or a preset.
type Config struct {
	// Smoothing
	SmoothingEnabled bool `json:"smoothing_enabled"`
	SmoothingWindow  int  `json:"smoothing_window"` // One of the supported Savitzky-Golay windows

	// Baseline estimation
	BaselineMethod       string  `json:"baseline_method"` // "rubberband", "linear", "asls"
	ASLSLambda           float64 `json:"asls_lambda"`
	ASLSAsymmetry        float64 `json:"asls_asymmetry"` // 0 < p < 1
	ASLSMaxIterations    int     `json:"asls_max_iterations"`
	ASLSTolerance        float64 `json:"asls_tolerance"`
	RubberbandIterations int     `json:"rubberband_iterations"`
	RubberbandWindow     int     `json:"rubberband_window"`
	LinearAnchorFraction float64 `json:"linear_anchor_fraction"` // Fraction of samples anchored at each end

	// Peak detection
	ProminenceThreshold float64 `json:"prominence_threshold"` // Fraction of the largest peak magnitude
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() *Config {
	return &Config{
		SmoothingEnabled:     true,
		SmoothingWindow:      9,
		BaselineMethod:       "rubberband",
		ASLSLambda:           1e6,
		ASLSAsymmetry:        0.01,
		ASLSMaxIterations:    20,
		ASLSTolerance:        1e-6,
		RubberbandIterations: 10,
		RubberbandWindow:     25,
		LinearAnchorFraction: 0.1,
		ProminenceThreshold:  0.05,
	}
}

// FastConfig trades smoothing quality for speed: a narrow window and
// the cheap linear baseline.
func FastConfig() *Config {
	cfg := DefaultConfig()
	cfg.SmoothingWindow = 5
	cfg.BaselineMethod = "linear"
	return cfg
}

// HighResolutionConfig suits dense, low-noise scans: a wide smoothing
// window and the asymmetric least-squares baseline.
func HighResolutionConfig() *Config {
	cfg := DefaultConfig()
	cfg.SmoothingWindow = 15
	cfg.BaselineMethod = "asls"
	return cfg
}

// Validate reports the first invalid parameter. An unknown baseline
// method is not an error; the estimator dispatch falls back to
// rubberband for those.
func (c *Config) Validate() error {
	if !savgol.IsSupported(c.SmoothingWindow) {
		return fmt.Errorf("smoothing_window must be one of %v, got: %d",
			savgol.SupportedWindows(), c.SmoothingWindow)
	}
	if c.ASLSLambda <= 0 {
		return fmt.Errorf("asls_lambda must be positive, got: %v", c.ASLSLambda)
	}
	if c.ASLSAsymmetry <= 0 || c.ASLSAsymmetry >= 1 {
		return fmt.Errorf("asls_asymmetry must be between 0 and 1 exclusive, got: %v",
			c.ASLSAsymmetry)
	}
	if c.ASLSMaxIterations < 1 {
		return fmt.Errorf("asls_max_iterations must be at least 1, got: %d",
			c.ASLSMaxIterations)
	}
	if c.ASLSTolerance <= 0 {
		return fmt.Errorf("asls_tolerance must be positive, got: %v", c.ASLSTolerance)
	}
	if c.RubberbandIterations < 1 {
		return fmt.Errorf("rubberband_iterations must be at least 1, got: %d",
			c.RubberbandIterations)
	}
	if c.RubberbandWindow < 1 {
		return fmt.Errorf("rubberband_window must be at least 1, got: %d",
			c.RubberbandWindow)
	}
	if c.LinearAnchorFraction < 0 || c.LinearAnchorFraction > 1 {
		return fmt.Errorf("linear_anchor_fraction must be between 0 and 1, got: %v",
			c.LinearAnchorFraction)
	}
	if c.ProminenceThreshold < 0 || c.ProminenceThreshold > 1 {
		return fmt.Errorf("prominence_threshold must be between 0 and 1, got: %v",
			c.ProminenceThreshold)
	}
	return nil
}

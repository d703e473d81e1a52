// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and EEG_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Predictor names accepted in Config.Predictor.
const (
	PredictorLSTM   = "lstm"
	PredictorRandom = "random"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// SampleRateHz is the assumed acquisition rate of pasted samples.
	SampleRateHz float64 `koanf:"sample_rate_hz"`

	// BandLowHz and BandHighHz bound the bandpass preprocessing filter.
	BandLowHz  float64 `koanf:"band_low_hz"`
	BandHighHz float64 `koanf:"band_high_hz"`

	// FilterOrder is the Butterworth prototype order.
	FilterOrder int `koanf:"filter_order"`

	// Wavelet and WaveletLevels configure feature extraction.
	Wavelet       string `koanf:"wavelet"`
	WaveletLevels int    `koanf:"wavelet_levels"`

	// Threshold is the probability above which a segment is flagged.
	Threshold float64 `koanf:"threshold"`

	// MinSamples triggers a short-segment warning below it.
	MinSamples int `koanf:"min_samples"`

	// RecommendedSamples is quoted in the short-segment warning.
	RecommendedSamples int `koanf:"recommended_samples"`

	// MaxSamples caps a single submission.
	MaxSamples int `koanf:"max_samples"`

	// Predictor selects the placeholder classifier: lstm or random.
	Predictor string `koanf:"predictor"`

	// SeizureRate is the positive rate of the random predictor.
	SeizureRate float64 `koanf:"seizure_rate"`

	// ModelSeed seeds placeholder weights and the random predictor.
	ModelSeed int64 `koanf:"model_seed"`

	// WorkerCount sets the number of inference workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds pending inference jobs.
	QueueSize int `koanf:"queue_size"`

	// ScreenTimeoutMS bounds a single screening request.
	ScreenTimeoutMS int `koanf:"screen_timeout_ms"`

	// MaxBodyBytes caps request bodies on form and API routes.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8501",
		SampleRateHz:       256,
		BandLowHz:          0.5,
		BandHighHz:         40,
		FilterOrder:        4,
		Wavelet:            "db4",
		WaveletLevels:      5,
		Threshold:          0.5,
		MinSamples:         10,
		RecommendedSamples: 384,
		MaxSamples:         65_536,
		Predictor:          PredictorLSTM,
		SeizureRate:        0.2,
		ModelSeed:          42,
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          256,
		ScreenTimeoutMS:    10_000,
		MaxBodyBytes:       1 << 20,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SampleRateHz <= 0:
		return fmt.Errorf("%w: sample_rate_hz must be positive", ErrInvalidConfig)
	case c.BandLowHz <= 0 || c.BandHighHz <= c.BandLowHz || c.BandHighHz >= c.SampleRateHz/2:
		return fmt.Errorf("%w: band must satisfy 0 < band_low_hz < band_high_hz < sample_rate_hz/2", ErrInvalidConfig)
	case c.FilterOrder < 1:
		return fmt.Errorf("%w: filter_order must be >= 1", ErrInvalidConfig)
	case c.WaveletLevels < 1:
		return fmt.Errorf("%w: wavelet_levels must be >= 1", ErrInvalidConfig)
	case c.Threshold <= 0 || c.Threshold >= 1:
		return fmt.Errorf("%w: threshold must be in (0, 1)", ErrInvalidConfig)
	case c.SeizureRate < 0 || c.SeizureRate > 1:
		return fmt.Errorf("%w: seizure_rate must be in [0, 1]", ErrInvalidConfig)
	case c.MaxSamples < 1:
		return fmt.Errorf("%w: max_samples must be >= 1", ErrInvalidConfig)
	}
	switch c.Predictor {
	case PredictorLSTM, PredictorRandom:
	default:
		return fmt.Errorf("%w: unknown predictor %q", ErrInvalidConfig, c.Predictor)
	}
	switch strings.ToLower(c.Wavelet) {
	case "haar", "db1", "db2", "db4":
	default:
		return fmt.Errorf("%w: unsupported wavelet %q", ErrInvalidConfig, c.Wavelet)
	}
	return nil
}

package service

import (
	"time"

	"github.com/okian/eegscreen/internal/domain/classifier"
	"github.com/okian/eegscreen/internal/domain/dsp"
	"github.com/okian/eegscreen/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of inference workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting inference jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPredictor sets the model that scores recordings.
func WithPredictor(p classifier.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithExtractor sets the band-pass and wavelet feature extractor.
func WithExtractor(e *dsp.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithThreshold sets the probability above which a seizure is reported.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold < 1 {
			s.threshold = threshold
		}
	}
}

// WithSampleLimits sets the warning threshold, the recommended length quoted
// in the warning and the hard upper bound.
func WithSampleLimits(minimum, recommended, maximum int) Option {
	return func(s *Service) {
		if minimum > 0 {
			s.minSamples = minimum
		}
		if recommended > 0 {
			s.recommendedSamples = recommended
		}
		if maximum > 0 {
			s.maxSamples = maximum
		}
	}
}

// WithSampleRate sets the sampling rate quoted in warnings.
func WithSampleRate(hz float64) Option {
	return func(s *Service) {
		if hz > 0 {
			s.sampleRate = hz
		}
	}
}

// WithTimeout bounds how long one screening may wait for a worker.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

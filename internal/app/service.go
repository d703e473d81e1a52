// Package service provides the screening service that implements the
// dependencies required by the HTTP layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/eegscreen/internal/adapters/mq/queue"
	workerpool "github.com/okian/eegscreen/internal/adapters/mq/worker"
	"github.com/okian/eegscreen/internal/adapters/render"
	"github.com/okian/eegscreen/internal/config"
	"github.com/okian/eegscreen/internal/domain/classifier"
	"github.com/okian/eegscreen/internal/domain/dsp"
	"github.com/okian/eegscreen/internal/domain/signal"
	"github.com/okian/eegscreen/internal/domain/types"
	"github.com/okian/eegscreen/pkg/logger"
	"github.com/okian/eegscreen/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultThreshold          = 0.5
	defaultMinSamples         = 10
	defaultRecommendedSamples = 384
	defaultMaxSamples         = 65_536
	defaultQueueSize          = 256
	defaultTimeout            = 10 * time.Second
	stopTimeout               = 10 * time.Second
)

// Service screens EEG recordings through a pool of predictor workers.
type Service struct {
	mu sync.RWMutex

	// Core components
	predictor classifier.Predictor
	extractor *dsp.Extractor
	queue     jobqueue.Queue
	pool      *workerpool.Pool

	// Configuration
	workerCount        int
	queueSize          int
	threshold          float64
	minSamples         int
	recommendedSamples int
	maxSamples         int
	sampleRate         float64
	timeout            time.Duration

	// Session counters
	total    atomic.Int64
	seizure  atomic.Int64
	normal   atomic.Int64
	rejected atomic.Int64

	started bool

	logger logger.Logger
}

// New constructs a new Service. Without WithPredictor and WithExtractor the
// placeholder LSTM and the default 0.5-40 Hz db4 extractor are used.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		queueSize:          defaultQueueSize,
		threshold:          defaultThreshold,
		minSamples:         defaultMinSamples,
		recommendedSamples: defaultRecommendedSamples,
		maxSamples:         defaultMaxSamples,
		sampleRate:         dsp.DefaultSampleRate,
		timeout:            defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig builds the predictor and extractor described by cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	predictor, err := classifier.New(cfg.Predictor,
		classifier.WithSeed(cfg.ModelSeed),
		classifier.WithSeizureRate(cfg.SeizureRate),
	)
	if err != nil {
		return nil, fmt.Errorf("build predictor: %w", err)
	}
	extractor, err := dsp.NewExtractor(
		dsp.WithSampleRate(cfg.SampleRateHz),
		dsp.WithBand(cfg.BandLowHz, cfg.BandHighHz),
		dsp.WithOrder(cfg.FilterOrder),
		dsp.WithWavelet(cfg.Wavelet),
		dsp.WithLevels(cfg.WaveletLevels),
	)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	base := []Option{
		WithPredictor(predictor),
		WithExtractor(extractor),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithThreshold(cfg.Threshold),
		WithSampleLimits(cfg.MinSamples, cfg.RecommendedSamples, cfg.MaxSamples),
		WithSampleRate(cfg.SampleRateHz),
		WithTimeout(time.Duration(cfg.ScreenTimeoutMS) * time.Millisecond),
	}
	return New(append(base, opts...)...), nil
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("screening")
	}
	if s.predictor == nil {
		p, err := classifier.New(classifier.NameLSTM)
		if err != nil {
			return err
		}
		s.predictor = p
	}
	if s.extractor == nil {
		e, err := dsp.NewExtractor(dsp.WithSampleRate(s.sampleRate))
		if err != nil {
			return fmt.Errorf("build extractor: %w", err)
		}
		s.extractor = e
	}

	s.logger.Info(ctx, "starting screening service...")

	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.predictor)
	// Workers outlive the request that started the service.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "screening service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("predictor", s.predictor.Name()),
		logger.Float64("threshold", s.threshold),
	)
	return nil
}

// Stop drains queued screenings and shuts the worker pool down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping screening service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "screening service stopped")
}

// Screen parses raw sample text and screens it.
func (s *Service) Screen(ctx context.Context, raw string) (types.Screening, error) {
	values, err := signal.Parse(raw)
	if err != nil {
		s.reject(ctx, "parse", err)
		return types.Screening{}, err
	}
	return s.ScreenValues(ctx, values)
}

// ScreenValues screens already-parsed samples.
func (s *Service) ScreenValues(ctx context.Context, values []float64) (types.Screening, error) {
	start := time.Now()

	s.mu.RLock()
	started, pool := s.started, s.pool
	s.mu.RUnlock()
	if !started {
		return types.Screening{}, ErrNotStarted
	}

	if err := s.validate(values); err != nil {
		s.reject(ctx, "validate", err)
		return types.Screening{}, err
	}

	n := len(values)
	result := types.Screening{
		ID:        uuid.NewString(),
		Timestamp: start.UTC(),
		Samples:   n,
		Threshold: s.threshold,
		Stats:     signal.Summarize(values),
		Values:    values,
	}
	if n < s.minSamples {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Only %d points detected. For best results, provide at least %d samples (%.1fs at %gHz).",
			n, s.recommendedSamples, float64(s.recommendedSamples)/s.sampleRate, s.sampleRate))
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := pool.Predict(pctx, result.ID, signal.Normalize(values))
	if err != nil {
		metrics.RecordErrorByComponent("screening", errorKind(err))
		metrics.RecordErrorLatency("screening", errorKind(err), msSince(start))
		s.logger.Warn(ctx, "prediction failed",
			logger.String("id", result.ID),
			logger.Int("samples", n),
			logger.Error(err),
		)
		return types.Screening{}, fmt.Errorf("predict: %w", err)
	}
	if p := res.Probability; math.IsNaN(p) || p < 0 || p > 1 {
		metrics.RecordErrorByComponent("screening", "probability")
		return types.Screening{}, fmt.Errorf("%w: %v from %s", ErrBadProbability, p, res.Predictor)
	}

	result.Probability = res.Probability
	result.Predictor = res.Predictor
	result.Seizure = classifier.Decide(res.Probability, s.threshold)
	result.Label = classifier.Label(result.Seizure)
	result.Confidence = classifier.Confidence(res.Probability, result.Seizure)

	if n >= s.extractor.MinSamples() {
		features, err := s.extractor.Extract(values)
		if err == nil && !finiteFeatures(features) {
			err = ErrNonFinite
		}
		if err != nil {
			// The verdict stands without features.
			s.logger.Warn(ctx, "feature extraction failed", logger.String("id", result.ID), logger.Error(err))
			result.Warnings = append(result.Warnings, "Band-pass features unavailable: "+err.Error()+".")
		} else {
			result.Features = &features
		}
	} else {
		metrics.RecordFeatureSkip()
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Signal too short for band-pass features: need at least %d samples.", s.extractor.MinSamples()))
	}

	result.LatencyMS = msSince(start)
	s.total.Add(1)
	if result.Seizure {
		s.seizure.Add(1)
	} else {
		s.normal.Add(1)
	}
	metrics.RecordScreening(result.Label, n, result.Probability)
	s.logger.Debug(ctx, "screened recording",
		logger.String("id", result.ID),
		logger.Int("samples", n),
		logger.Float64("probability", result.Probability),
		logger.String("label", result.Label),
		logger.Float64("latency_ms", result.LatencyMS),
	)
	return result, nil
}

// finiteFeatures reports whether every band summary can be encoded.
func finiteFeatures(f dsp.Features) bool {
	for _, b := range f.Bands {
		for _, v := range []float64{b.Mean, b.Std, b.Energy} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (s *Service) validate(values []float64) error {
	if len(values) == 0 {
		return signal.ErrNoSamples
	}
	if len(values) > s.maxSamples {
		return fmt.Errorf("%w: %d exceeds the limit of %d", ErrTooManySamples, len(values), s.maxSamples)
	}
	return signal.Validate(values)
}

func (s *Service) reject(ctx context.Context, stage string, err error) {
	s.rejected.Add(1)
	metrics.RecordParseError()
	s.logger.Warn(ctx, "rejected recording", logger.String("stage", stage), logger.Error(err))
}

// Plot renders the raw and band-passed waveform of a screening as PNG.
func (s *Service) Plot(sc types.Screening) ([]byte, error) { //nolint:gocritic // hugeParam: read-only result
	return s.render(sc.Values, sc.Filtered())
}

// PlotValues renders samples without screening them. Recordings long enough
// for the band-pass filter get the filtered series as well.
func (s *Service) PlotValues(values []float64) ([]byte, error) {
	if err := s.validate(values); err != nil {
		return nil, err
	}
	var filtered []float64
	if s.extractor != nil && len(values) >= s.extractor.MinSamples() {
		f, err := dsp.FiltFilt(s.extractor.Filter(), values)
		if err == nil {
			filtered = f
		}
	}
	return s.render(values, filtered)
}

func (s *Service) render(values, filtered []float64) ([]byte, error) {
	opts := []render.Option{}
	if s.extractor != nil {
		lo, hi := s.extractor.Band()
		opts = append(opts, render.WithBandLabel(fmt.Sprintf("%g-%g Hz", lo, hi)))
	}
	img, err := render.Waveform(values, filtered, opts...)
	if err != nil {
		metrics.RecordPlotError()
		return nil, err
	}
	metrics.RecordPlotRender()
	return img, nil
}

// Counters returns the session totals.
func (s *Service) Counters() types.Counters {
	return types.Counters{
		Total:    s.total.Load(),
		Seizure:  s.seizure.Load(),
		Normal:   s.normal.Load(),
		Rejected: s.rejected.Load(),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.Counters()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"threshold":   s.threshold,
		"total":       c.Total,
		"seizure":     c.Seizure,
		"normal":      c.Normal,
		"rejected":    c.Rejected,
	}
	if s.predictor != nil {
		stats["predictor"] = s.predictor.Name()
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["processed"] = s.pool.Processed()
	}
	return stats
}

// Threshold returns the decision threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrBackpressure):
		return "backpressure"
	case errors.Is(err, ErrPoolClosed):
		return "pool_closed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "predict_error"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

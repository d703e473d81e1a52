package synth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/eegscreen/pkg/logger"
)

// Run generates recordings, screens them concurrently and returns the
// outcomes in submission order.
func Run(ctx context.Context, config *Config) ([]Outcome, *Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("synth")

	log.Info(ctx, "starting screening run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("recordings", config.Recordings),
		logger.Int("samples", config.Samples),
		logger.Int("workers", config.Workers))

	client := NewHTTPClient(config.BaseURL, config.Timeout)
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, stats, fmt.Errorf("service health check failed: %w", err)
	}

	gen, err := NewGenerator(config.SampleRate, config.Seed)
	if err != nil {
		return nil, stats, err
	}
	recs, err := gen.Generate(config.Recordings, config.Samples, config.SeizureMix)
	if err != nil {
		return nil, stats, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(recs)

	outcomes := screenAll(ctx, client, recs, config.Workers)
	for _, o := range outcomes {
		if o.Status == 0 && o.Err == "" {
			continue
		}
		stats.Submitted++
		switch {
		case o.Err != "":
			stats.Failed++
			log.Warn(ctx, "screening failed", logger.String("recording", o.RecordingID), logger.String("reason", o.Err))
		case o.Seizure:
			stats.Succeeded++
			stats.Seizure++
		default:
			stats.Succeeded++
			stats.Normal++
		}
		if config.Verbose && o.Err == "" {
			log.Info(ctx, "screened",
				logger.String("recording", o.RecordingID),
				logger.Bool("burst", o.Burst),
				logger.Float64("probability", o.Probability),
				logger.Bool("seizure", o.Seizure))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return outcomes, stats, ctx.Err()
}

// screenAll fans recordings out to workers. Slots for recordings not sent
// before ctx ends stay zero.
func screenAll(ctx context.Context, client *HTTPClient, recs []Recording, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]Outcome, len(recs))
	idx := make(chan int, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				outcomes[i] = client.Screen(ctx, recs[i])
			}
		}()
	}

	func() {
		defer close(idx)
		for i := range recs {
			select {
			case <-ctx.Done():
				return
			case idx <- i:
			}
		}
	}()
	wg.Wait()
	return outcomes
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("seizure", stats.Seizure),
		logger.Int("normal", stats.Normal),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("recordingsPerSecond", perSecond))
}

package classifier

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Random is the mock screener: it reports a seizure (probability 1) with a
// fixed rate and a normal segment (probability 0) otherwise, ignoring the
// input entirely.
type Random struct {
	mu   sync.Mutex
	rng  *rand.Rand
	rate float64
}

// NewRandom creates a seeded mock predictor.
func NewRandom(seed int64, rate float64) *Random {
	return &Random{
		rng:  seededRand(seed),
		rate: rate,
	}
}

// Predict implements Predictor.
func (r *Random) Predict(ctx context.Context, samples []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}
	r.mu.Lock()
	draw := r.rng.Float64()
	r.mu.Unlock()
	if draw >= 1-r.rate {
		return 1, nil
	}
	return 0, nil
}

// seededRand returns a PCG-backed generator; the same seed always yields the
// same stream.
func seededRand(seed int64) *rand.Rand {
	s := uint64(seed) //nolint:gosec // seed bits are reused as-is
	return rand.New(rand.NewPCG(s, s^pcgStream))
}

const pcgStream = 0x9e3779b97f4a7c15

// Name implements Predictor.
func (r *Random) Name() string { return NameRandom }

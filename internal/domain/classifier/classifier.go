// Package classifier defines the seizure probability contract and the
// placeholder predictors used until a trained model is available.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Default classifier configuration constants.
const (
	defaultSeed        = 42
	defaultSeizureRate = 0.2
	defaultFirstUnits  = 64
	defaultSecondUnits = 32
	cancelCheckEvery   = 1024
)

// Predictor names accepted by New.
const (
	NameLSTM   = "lstm"
	NameRandom = "random"
)

// Labels reported for a decision.
const (
	LabelSeizure = "seizure"
	LabelNormal  = "normal"
)

// Sentinel kinds for classifier errors.
var (
	ErrUnknownPredictor = errors.New("unknown predictor")
	ErrEmptyInput       = errors.New("empty input")
)

// Predictor maps a z-scored EEG segment to a seizure probability in [0, 1].
// Implementations must be safe for concurrent use and honour ctx.
type Predictor interface {
	Predict(ctx context.Context, samples []float64) (float64, error)
	Name() string
}

// Option applies a configuration option to predictor construction.
type Option func(*options)

type options struct {
	seed        int64
	seizureRate float64
	firstUnits  int
	secondUnits int
}

// WithSeed sets the seed for placeholder weights or random draws.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSeizureRate sets the positive rate of the random predictor.
func WithSeizureRate(rate float64) Option {
	return func(o *options) {
		if rate >= 0 && rate <= 1 {
			o.seizureRate = rate
		}
	}
}

// WithUnits sets the hidden sizes of the two recurrent layers.
func WithUnits(first, second int) Option {
	return func(o *options) {
		if first > 0 && second > 0 {
			o.firstUnits, o.secondUnits = first, second
		}
	}
}

// New builds the named predictor.
func New(name string, opts ...Option) (Predictor, error) {
	o := options{
		seed:        defaultSeed,
		seizureRate: defaultSeizureRate,
		firstUnits:  defaultFirstUnits,
		secondUnits: defaultSecondUnits,
	}
	for _, opt := range opts {
		opt(&o)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameLSTM:
		return NewLSTM(o.seed, o.firstUnits, o.secondUnits), nil
	case NameRandom:
		return NewRandom(o.seed, o.seizureRate), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredictor, name)
	}
}

// Decide flags a seizure when p is strictly above threshold.
func Decide(p, threshold float64) bool {
	return p > threshold
}

// Label names the outcome of Decide.
func Label(seizure bool) string {
	if seizure {
		return LabelSeizure
	}
	return LabelNormal
}

// Confidence is the probability of the reported label.
func Confidence(p float64, seizure bool) float64 {
	if seizure {
		return p
	}
	return 1 - p
}

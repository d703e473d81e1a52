package synth

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidShape is returned for non-positive sample counts or rates.
var ErrInvalidShape = errors.New("synth: samples and sample rate must be positive")

// Generator produces deterministic synthetic EEG for a seed.
type Generator struct {
	rate  float64
	rng   *rand.Rand
	noise distuv.Normal
}

// NewGenerator creates a generator sampling at rate Hz.
func NewGenerator(rate float64, seed uint64) (*Generator, error) {
	if rate <= 0 || math.IsNaN(rate) {
		return nil, ErrInvalidShape
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Generator{
		rate:  rate,
		rng:   rand.New(src),
		noise: distuv.Normal{Mu: 0, Sigma: noiseStd, Src: src},
	}, nil
}

// Background returns n samples of alpha, theta and beta rhythms plus noise.
func (g *Generator) Background(n int) ([]float64, error) {
	if n <= 0 {
		return nil, ErrInvalidShape
	}
	phase := g.rng.Float64() * 2 * math.Pi
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / g.rate
		out[i] = alphaAmp*math.Sin(2*math.Pi*alphaHz*t+phase) +
			thetaAmp*math.Sin(2*math.Pi*thetaHz*t) +
			betaAmp*math.Sin(2*math.Pi*betaHz*t+phase/2) +
			g.noise.Rand()
	}
	return out, nil
}

// Seizure returns a background signal whose middle half carries a 3 Hz
// spike-and-wave burst.
func (g *Generator) Seizure(n int) ([]float64, error) {
	out, err := g.Background(n)
	if err != nil {
		return nil, err
	}
	start := int(float64(n) * (1 - burstFrac) / 2)
	end := start + int(float64(n)*burstFrac)
	for i := start; i < end; i++ {
		t := float64(i-start) / g.rate
		out[i] += spikeWave(t)
	}
	return out, nil
}

// spikeWave is a sharp negative spike followed by a slow wave each cycle.
func spikeWave(t float64) float64 {
	cycle := math.Mod(t*spikeHz, 1)
	spike := -spikeAmp * math.Exp(-math.Pow((cycle-0.1)/0.03, 2))
	wave := spikeAmp / 3 * math.Sin(2*math.Pi*cycle)
	return spike + wave
}

// Recording generates one recording, bursting with probability mix.
func (g *Generator) Recording(n int, mix float64) (Recording, error) {
	burst := g.rng.Float64() < mix
	var (
		samples []float64
		err     error
	)
	if burst {
		samples, err = g.Seizure(n)
	} else {
		samples, err = g.Background(n)
	}
	if err != nil {
		return Recording{}, err
	}
	return Recording{ID: uuid.New().String(), Burst: burst, Samples: samples}, nil
}

// Generate creates count recordings.
func (g *Generator) Generate(count, n int, mix float64) ([]Recording, error) {
	out := make([]Recording, 0, count)
	for i := 0; i < count; i++ {
		r, err := g.Recording(n, mix)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Package signal parses raw EEG text input and provides sample-level helpers.
package signal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sentinel kinds for signal errors.
var (
	ErrNoSamples     = errors.New("no samples")
	ErrInvalidSample = errors.New("invalid sample")
)

// separators are treated as whitespace so both "a, b, c" and "[a b\nc]"
// inputs tokenize the same way.
var separators = strings.NewReplacer("[", " ", "]", " ", ",", " ")

// Parse converts free-form text into samples. Values may be separated by
// commas, spaces or newlines and may be wrapped in square brackets.
func Parse(raw string) ([]float64, error) {
	tokens := strings.Fields(separators.Replace(raw))
	if len(tokens) == 0 {
		return nil, ErrNoSamples
	}
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidSample, tok, i+1)
		}
		out[i] = v
	}
	return out, nil
}

// Validate checks samples that arrived already decoded, e.g. from JSON.
func Validate(x []float64) error {
	if len(x) == 0 {
		return ErrNoSamples
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w %v at position %d", ErrInvalidSample, v, i+1)
		}
	}
	return nil
}

// Stats summarizes a recording in the units it was entered in.
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summarize computes population statistics; an empty input yields zero Stats.
func Summarize(x []float64) Stats {
	if len(x) == 0 {
		return Stats{}
	}
	mean, std := meanStd(x)
	return Stats{
		Count: len(x),
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(x),
		Max:   floats.Max(x),
	}
}

// Normalize returns the z-scored signal. A flat signal maps to zeros.
func Normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	scale := maxAbs(x)
	if scale == 0 {
		return out
	}
	floats.ScaleTo(out, 1/scale, x)
	mean, variance := stat.PopMeanVariance(out, nil)
	std := math.Sqrt(variance)
	if std == 0 {
		return make([]float64, len(x))
	}
	for i, v := range out {
		out[i] = (v - mean) / std
	}
	return out
}

// meanStd returns the mean and the population (ddof 0) standard deviation.
// Samples are divided by their largest magnitude first so that sums and
// squared deviations of values near math.MaxFloat64 stay finite.
func meanStd(x []float64) (float64, float64) {
	scale := maxAbs(x)
	if scale == 0 {
		return 0, 0
	}
	scaled := floats.ScaleTo(make([]float64, len(x)), 1/scale, x)
	mean, variance := stat.PopMeanVariance(scaled, nil)
	return mean * scale, math.Sqrt(variance) * scale
}

func maxAbs(x []float64) float64 {
	return math.Max(math.Abs(floats.Min(x)), math.Abs(floats.Max(x)))
}

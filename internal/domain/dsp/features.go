package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Band summarizes one array of wavelet coefficients.
type Band struct {
	Name   string  `json:"name"`
	Length int     `json:"length"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Energy float64 `json:"energy"`
}

// WaveletFeatures decomposes x and summarizes each coefficient array.
// Bands are named A<levels>, D<levels>, ..., D1.
func WaveletFeatures(x []float64, w Wavelet, levels int) ([]Band, error) {
	coeffs, err := WaveDec(x, w, levels)
	if err != nil {
		return nil, err
	}
	bands := make([]Band, len(coeffs))
	for i, c := range coeffs {
		name := fmt.Sprintf("D%d", levels-i+1)
		if i == 0 {
			name = fmt.Sprintf("A%d", levels)
		}
		mean, variance := stat.PopMeanVariance(c, nil)
		bands[i] = Band{
			Name:   name,
			Length: len(c),
			Mean:   mean,
			Std:    math.Sqrt(variance),
			Energy: floats.Dot(c, c),
		}
	}
	return bands, nil
}

// Means returns the per-band coefficient means as a flat feature vector.
func Means(bands []Band) []float64 {
	out := make([]float64, len(bands))
	for i, b := range bands {
		out[i] = b.Mean
	}
	return out
}

// Package dsp holds the EEG preprocessing primitives: Butterworth band-pass
// design, zero-phase IIR filtering and Daubechies wavelet decomposition.
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Coefficients are transfer-function coefficients of an IIR filter,
// highest power first, with A[0] == 1.
type Coefficients struct {
	B []float64 `json:"b"`
	A []float64 `json:"a"`
}

// Butterworth designs a digital band-pass filter of the given prototype
// order passing [lowHz, highHz] for a signal sampled at fs. The resulting
// polynomials have 2*order+1 coefficients and the magnitude response is
// exactly 1/sqrt(2) at both band edges.
func Butterworth(order int, lowHz, highHz, fs float64) (Coefficients, error) {
	nyq := fs / 2
	switch {
	case order < 1:
		return Coefficients{}, fmt.Errorf("%w: order %d", ErrInvalidFilter, order)
	case fs <= 0:
		return Coefficients{}, fmt.Errorf("%w: sample rate %g", ErrInvalidFilter, fs)
	case lowHz <= 0 || highHz <= lowHz || highHz >= nyq:
		return Coefficients{}, fmt.Errorf("%w: band [%g, %g] Hz at fs %g", ErrInvalidFilter, lowHz, highHz, fs)
	}

	// Design at a normalized rate of 2 so frequencies are fractions of Nyquist.
	const fsDesign = 2.0
	warp := func(hz float64) float64 {
		return 2 * fsDesign * math.Tan(math.Pi*(hz/nyq)/fsDesign)
	}
	lo, hi := warp(lowHz), warp(highHz)
	bw := hi - lo
	wo := math.Sqrt(lo * hi)

	// Analog low-pass prototype: poles on the left half of the unit circle.
	proto := make([]complex128, order)
	for i := range proto {
		m := float64(2*i - order + 1)
		proto[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
	}

	// Low-pass to band-pass: each pole splits in two, order zeros land at 0.
	poles := make([]complex128, 0, 2*order)
	for _, p := range proto {
		pl := p * complex(bw/2, 0)
		r := cmplx.Sqrt(pl*pl - complex(wo*wo, 0))
		poles = append(poles, pl+r, pl-r)
	}
	gain := math.Pow(bw, float64(order))

	// Bilinear transform. Zeros at 0 map to +1, zeros at infinity to -1.
	fs2 := complex(2*fsDesign, 0)
	zeros := make([]complex128, 0, 2*order)
	for i := 0; i < order; i++ {
		zeros = append(zeros, 1, -1)
	}
	num := cmplx.Pow(fs2, complex(float64(order), 0))
	den := complex(1, 0)
	digital := make([]complex128, len(poles))
	for i, p := range poles {
		digital[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	gain *= real(num / den)

	b := poly(zeros)
	a := poly(digital)
	c := Coefficients{B: make([]float64, len(b)), A: make([]float64, len(a))}
	for i := range b {
		c.B[i] = gain * real(b[i])
		c.A[i] = real(a[i])
	}
	return c, nil
}

// poly expands prod(x - r) into coefficients, highest power first.
func poly(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		next[0] = c[0]
		for j := 1; j < len(c); j++ {
			next[j] = c[j] - r*c[j-1]
		}
		next[len(c)] = -r * c[len(c)-1]
		c = next
	}
	return c
}

// Gain returns |H(f)| of the filter at frequency hz for sample rate fs.
func (c Coefficients) Gain(hz, fs float64) float64 {
	w := 2 * math.Pi * hz / fs
	eval := func(p []float64) complex128 {
		var s complex128
		for k, v := range p {
			s += complex(v, 0) * cmplx.Exp(complex(0, -w*float64(k)))
		}
		return s
	}
	return cmplx.Abs(eval(c.B) / eval(c.A))
}

// PadLen is the edge extension FiltFilt applies on each side.
func (c Coefficients) PadLen() int {
	return 3 * max(len(c.A), len(c.B))
}

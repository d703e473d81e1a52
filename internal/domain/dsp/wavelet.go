package dsp

import (
	"fmt"
	"math"
	"strings"
)

// Wavelet is an orthogonal wavelet described by its decomposition filters.
type Wavelet struct {
	Name  string
	DecLo []float64
	DecHi []float64
}

// Daubechies scaling filters, decomposition order.
var daubechies = map[string][]float64{
	"db1": {0.7071067811865476, 0.7071067811865476},
	"db2": {-0.12940952255092145, 0.22414386804185735, 0.836516303737469, 0.48296291314469025},
	"db4": {
		-0.010597401784997278, 0.032883011666982945, 0.030841381835986965, -0.18703481171888114,
		-0.02798376941698385, 0.6308807679295904, 0.7148465705525415, 0.23037781330885523,
	},
}

// LookupWavelet returns the named wavelet. "haar" is an alias of "db1".
func LookupWavelet(name string) (Wavelet, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "haar" {
		key = "db1"
	}
	lo, ok := daubechies[key]
	if !ok {
		return Wavelet{}, fmt.Errorf("%w: %q", ErrUnknownWavelet, name)
	}
	// Quadrature mirror: hi[k] = (-1)^(k+1) * lo[F-1-k].
	f := len(lo)
	hi := make([]float64, f)
	for k := range hi {
		v := lo[f-1-k]
		if k%2 == 0 {
			v = -v
		}
		hi[k] = v
	}
	return Wavelet{Name: key, DecLo: lo, DecHi: hi}, nil
}

// MaxLevel is the deepest decomposition of an n-sample signal whose
// coefficients are not dominated by boundary extension.
func (w Wavelet) MaxLevel(n int) int {
	f := len(w.DecLo)
	if f <= 1 || n < f-1 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n) / float64(f-1))))
}

// DWT performs a single-level decomposition with symmetric boundary
// extension. Both outputs have (len(x)+F-1)/2 coefficients.
func (w Wavelet) DWT(x []float64) (approx, detail []float64) {
	n, f := len(x), len(w.DecLo)
	size := (n + f - 1) / 2
	approx = make([]float64, size)
	detail = make([]float64, size)
	for o := 0; o < size; o++ {
		i := 2*o + 1
		var a, d float64
		for j := 0; j < f; j++ {
			v := x[mirror(i-j, n)]
			a += w.DecLo[j] * v
			d += w.DecHi[j] * v
		}
		approx[o] = a
		detail[o] = d
	}
	return approx, detail
}

// mirror maps an out-of-range index onto x by half-sample symmetric
// reflection (x[-1] == x[0], x[n] == x[n-1]), repeating as needed.
func mirror(k, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	k %= period
	if k < 0 {
		k += period
	}
	if k >= n {
		k = period - 1 - k
	}
	return k
}

// WaveDec decomposes x into levels detail bands plus the final
// approximation, ordered [cA_levels, cD_levels, ..., cD_1]. Levels above
// MaxLevel are allowed; their coefficients are boundary dominated.
func WaveDec(x []float64, w Wavelet, levels int) ([][]float64, error) {
	if levels < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, levels)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrSignalTooShort)
	}
	coeffs := make([][]float64, levels+1)
	approx := x
	for l := 0; l < levels; l++ {
		var detail []float64
		approx, detail = w.DWT(approx)
		coeffs[levels-l] = detail
	}
	coeffs[0] = approx
	return coeffs, nil
}

package dsp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// normalized pads b and a to a common length and scales both by a[0].
func normalized(b, a []float64) ([]float64, []float64, error) {
	if len(a) == 0 || len(b) == 0 || a[0] == 0 {
		return nil, nil, fmt.Errorf("%w: a[0] must be non-zero", ErrInvalidFilter)
	}
	n := max(len(a), len(b))
	nb := make([]float64, n)
	na := make([]float64, n)
	for i, v := range b {
		nb[i] = v / a[0]
	}
	for i, v := range a {
		na[i] = v / a[0]
	}
	return nb, na, nil
}

// LFilter runs x through the IIR filter (b, a) in direct form II
// transposed. zi is the initial delay-line state (len max(len(a),len(b))-1)
// or nil for a resting filter. It returns the output and the final state.
func LFilter(b, a, x, zi []float64) ([]float64, []float64, error) {
	nb, na, err := normalized(b, a)
	if err != nil {
		return nil, nil, err
	}
	n := len(nb)
	z := make([]float64, n-1)
	if zi != nil {
		if len(zi) != n-1 {
			return nil, nil, fmt.Errorf("%w: zi has %d values, want %d", ErrInvalidFilter, len(zi), n-1)
		}
		copy(z, zi)
	}

	y := make([]float64, len(x))
	for i, xi := range x {
		if n == 1 {
			y[i] = nb[0] * xi
			continue
		}
		yi := nb[0]*xi + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = nb[j+1]*xi + z[j+1] - na[j+1]*yi
		}
		z[n-2] = nb[n-1]*xi - na[n-1]*yi
		y[i] = yi
	}
	return y, z, nil
}

// LFilterZI returns the delay-line state that makes the filter's response
// to a unit step start in steady state. Scale it by the first input value.
func LFilterZI(b, a []float64) ([]float64, error) {
	nb, na, err := normalized(b, a)
	if err != nil {
		return nil, err
	}
	m := len(nb) - 1
	if m == 0 {
		return []float64{}, nil
	}

	// (I - companion(a)^T) zi = b[1:] - a[1:]*b[0]
	lhs := mat.NewDense(m, m, nil)
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			var v float64
			if i == j {
				v = 1
			}
			if j == 0 {
				v += na[i+1]
			}
			if j == i+1 {
				v--
			}
			lhs.Set(i, j, v)
		}
		rhs.SetVec(i, nb[i+1]-na[i+1]*nb[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(lhs, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %w", ErrSingularSystem, err)
		}
	}
	out := make([]float64, m)
	for i := range out {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// FiltFilt applies the filter forward and backward so the result has no
// phase shift. The signal is extended at both ends by odd reflection of
// PadLen samples and must be strictly longer than that.
func FiltFilt(c Coefficients, x []float64) ([]float64, error) {
	edge := c.PadLen()
	if len(x) <= edge {
		return nil, fmt.Errorf("%w: need more than %d samples, got %d", ErrSignalTooShort, edge, len(x))
	}
	zi, err := LFilterZI(c.B, c.A)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, edge)
	y, _, err := LFilter(c.B, c.A, ext, scaled(zi, ext[0]))
	if err != nil {
		return nil, err
	}
	reverse(y)
	y, _, err = LFilter(c.B, c.A, y, scaled(zi, y[0]))
	if err != nil {
		return nil, err
	}
	reverse(y)
	return y[edge : len(y)-edge], nil
}

// oddExtend reflects x about its end points: 2*x[0]-x[edge..1] before and
// 2*x[n-1]-x[n-2..n-1-edge] after.
func oddExtend(x []float64, edge int) []float64 {
	n := len(x)
	out := make([]float64, 0, n+2*edge)
	for i := edge; i >= 1; i-- {
		out = append(out, 2*x[0]-x[i])
	}
	out = append(out, x...)
	for i := n - 2; i >= n-1-edge; i-- {
		out = append(out, 2*x[n-1]-x[i])
	}
	return out
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

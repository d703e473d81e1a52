package classifier

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// LSTM is an untrained two-layer recurrent network: LSTM(first, full
// sequence) -> LSTM(second, last state) -> Dense(1, sigmoid). Weights are
// drawn once from a seeded source with the usual recurrent-network
// initializers, so outputs are deterministic per seed but carry no
// clinical meaning.
type LSTM struct {
	first  *lstmLayer
	second *lstmLayer
	dense  []float64
	bias   float64
	seed   int64
}

// lstmLayer holds gate weights in i, f, c, o order along the 4*units axis.
type lstmLayer struct {
	units     int
	inputDim  int
	kernel    []float64 // inputDim x 4*units, row-major
	recurrent []float64 // units x 4*units, row-major
	bias      []float64 // 4*units
}

// NewLSTM initializes the placeholder network.
func NewLSTM(seed int64, firstUnits, secondUnits int) *LSTM {
	rng := seededRand(seed)
	first := newLSTMLayer(rng, 1, firstUnits)
	second := newLSTMLayer(rng, firstUnits, secondUnits)
	return &LSTM{
		first:  first,
		second: second,
		dense:  glorotUniform(rng, secondUnits, 1),
		seed:   seed,
	}
}

func newLSTMLayer(rng *rand.Rand, inputDim, units int) *lstmLayer {
	bias := make([]float64, 4*units)
	for k := units; k < 2*units; k++ {
		bias[k] = 1 // unit forget bias
	}
	return &lstmLayer{
		units:     units,
		inputDim:  inputDim,
		kernel:    glorotUniform(rng, inputDim, 4*units),
		recurrent: orthogonal(rng, units, 4*units),
		bias:      bias,
	}
}

// glorotUniform draws a fanIn x fanOut matrix from U(-l, l) with
// l = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(rng *rand.Rand, fanIn, fanOut int) []float64 {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	w := make([]float64, fanIn*fanOut)
	for i := range w {
		w[i] = (2*rng.Float64() - 1) * limit
	}
	return w
}

// orthogonal returns a rows x cols matrix (rows <= cols) with orthonormal
// rows, taken from the QR factorization of a Gaussian matrix.
func orthogonal(rng *rand.Rand, rows, cols int) []float64 {
	g := mat.NewDense(cols, rows, nil)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			g.Set(i, j, rng.NormFloat64())
		}
	}
	var qr mat.QR
	qr.Factorize(g)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	// Transpose of the first rows columns of Q, sign-corrected by diag(R).
	w := make([]float64, rows*cols)
	for j := 0; j < rows; j++ {
		sign := 1.0
		if r.At(j, j) < 0 {
			sign = -1
		}
		for i := 0; i < cols; i++ {
			w[j*cols+i] = sign * q.At(i, j)
		}
	}
	return w
}

// step advances the layer by one timestep, updating h and c in place.
// z is scratch space of len 4*units.
func (l *lstmLayer) step(x, h, c, z []float64) {
	g := 4 * l.units
	copy(z, l.bias)
	for d := 0; d < l.inputDim; d++ {
		xv := x[d]
		if xv == 0 {
			continue
		}
		row := l.kernel[d*g : (d+1)*g]
		for k, w := range row {
			z[k] += xv * w
		}
	}
	for j := 0; j < l.units; j++ {
		hv := h[j]
		if hv == 0 {
			continue
		}
		row := l.recurrent[j*g : (j+1)*g]
		for k, w := range row {
			z[k] += hv * w
		}
	}
	u := l.units
	for j := 0; j < u; j++ {
		in := sigmoid(z[j])
		forget := sigmoid(z[u+j])
		cand := math.Tanh(z[2*u+j])
		out := sigmoid(z[3*u+j])
		c[j] = forget*c[j] + in*cand
		h[j] = out * math.Tanh(c[j])
	}
}

// Predict runs the sequence through both layers in lockstep and returns
// the sigmoid output.
func (m *LSTM) Predict(ctx context.Context, samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}
	h1 := make([]float64, m.first.units)
	c1 := make([]float64, m.first.units)
	z1 := make([]float64, 4*m.first.units)
	h2 := make([]float64, m.second.units)
	c2 := make([]float64, m.second.units)
	z2 := make([]float64, 4*m.second.units)
	x := make([]float64, 1)

	for t, v := range samples {
		if t%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("lstm predict cancelled at step %d: %w", t, err)
			}
		}
		x[0] = v
		m.first.step(x, h1, c1, z1)
		m.second.step(h1, h2, c2, z2)
	}

	logit := m.bias
	for j, w := range m.dense {
		logit += h2[j] * w
	}
	return sigmoid(logit), nil
}

// Name implements Predictor.
func (m *LSTM) Name() string { return NameLSTM }

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

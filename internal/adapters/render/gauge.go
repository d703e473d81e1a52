package render

import (
	"fmt"
	"math"
)

const gaugeTicks = 11

// Gauge is the vertical probability bar shown next to the verdict. The bar
// is a red-to-green gradient and Overlay is the height, in percent, of the
// translucent mask drawn from the bottom.
type Gauge struct {
	Probability float64  `json:"probability"`
	Ticks       []string `json:"ticks"`
	Overlay     string   `json:"overlay"`
}

// NewGauge builds a gauge for probability p, clamped to [0, 1].
func NewGauge(p float64) Gauge {
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Min(math.Max(p, 0), 1)
	ticks := make([]string, gaugeTicks)
	for i := range ticks {
		ticks[i] = fmt.Sprintf("%.1f", 1-float64(i)/float64(gaugeTicks-1))
	}
	return Gauge{
		Probability: p,
		Ticks:       ticks,
		Overlay:     fmt.Sprintf("%.1f", 100-p*100),
	}
}

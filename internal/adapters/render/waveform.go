// Package render draws screening results: the waveform PNG and the
// probability gauge.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default plot geometry, an 8x3 inch figure at 100 dpi.
const (
	DefaultWidth  = 800
	DefaultHeight = 300
	yTickCount    = 6
)

// ErrNoSamples is returned when there is nothing to plot.
var ErrNoSamples = errors.New("no samples to plot")

// ErrRange is returned when the amplitude span cannot be represented on an axis.
var ErrRange = errors.New("amplitude range too large to plot")

var (
	rawColor      = drawing.ColorFromHex("1f77b4")
	filteredColor = drawing.ColorFromHex("ff7f0e")
)

// Option adjusts a waveform plot.
type Option func(*plotConfig)

type plotConfig struct {
	width  int
	height int
	title  string
	band   string
}

// WithSize sets the PNG dimensions in pixels.
func WithSize(width, height int) Option {
	return func(c *plotConfig) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(c *plotConfig) {
		c.title = title
	}
}

// WithBandLabel names the filtered series, e.g. "0.5-40 Hz".
func WithBandLabel(label string) Option {
	return func(c *plotConfig) {
		if label != "" {
			c.band = label
		}
	}
}

// Waveform renders samples as a line plot. When filtered is non-empty it is
// drawn as a second series.
func Waveform(samples, filtered []float64, opts ...Option) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	cfg := plotConfig{width: DefaultWidth, height: DefaultHeight, band: "band-passed"}
	for _, opt := range opts {
		opt(&cfg)
	}

	lo, hi := bounds(samples)
	series := []chart.Series{lineSeries("Raw EEG", samples, rawColor)}
	if len(filtered) > 0 {
		flo, fhi := bounds(filtered)
		lo, hi = math.Min(lo, flo), math.Max(hi, fhi)
		series = append(series, lineSeries("Filtered ("+cfg.band+")", filtered, filteredColor))
	}
	yMin, yMax := niceAxisBounds(lo, hi)
	if span := yMax - yMin; math.IsInf(span, 0) || math.IsNaN(span) {
		return nil, ErrRange
	}
	xMax := float64(len(samples) - 1)
	if xMax < 1 {
		xMax = 1
	}

	ch := chart.Chart{
		Title:      cfg.title,
		Width:      cfg.width,
		Height:     cfg.height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Samples",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  "Amplitude (μV)",
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
			Ticks: niceTicks(yMin, yMax, yTickCount),
		},
		Series: series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render waveform: %w", err)
	}
	return buf.Bytes(), nil
}

// lineSeries builds a continuous series over sample indices. go-chart needs
// at least two points, so a single sample is drawn as a flat segment.
func lineSeries(name string, ys []float64, col drawing.Color) chart.ContinuousSeries {
	if len(ys) == 1 {
		return chart.ContinuousSeries{
			Name:    name,
			XValues: []float64{0, 1},
			YValues: []float64{ys[0], ys[0]},
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5},
		}
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5},
	}
}

func bounds(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// niceAxisBounds pads [min, max] by 5% and rounds outward to the span's
// order of magnitude.
func niceAxisBounds(min, max float64) (float64, float64) {
	if max <= min {
		min, max = min-0.5, min+0.5
	}
	span := max - min
	a := min - span*0.05
	b := max + span*0.05
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// niceTicks picks up to n ticks in steps of 1, 2, 2.5 or 5 times a power of ten.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || max <= min {
		return nil
	}
	mag := math.Pow(10, math.Floor(math.Log10((max-min)/float64(n-1))))
	best, bestScore := mag, math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Max(math.Ceil((max-min)/step), 2)
		if score := math.Abs(count - float64(n)); score < bestScore {
			best, bestScore = step, score
		}
	}
	start := math.Floor(min/best) * best
	end := math.Ceil(max/best) * best
	var ticks []chart.Tick
	for v := start; v <= end+best/2; v += best {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	av := math.Abs(v)
	switch {
	case av < 1e-9:
		return "0"
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Blank returns a white PNG, used in place of a plot that failed to render.
func Blank(width, height int) []byte {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

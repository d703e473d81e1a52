package dsp

// Default preprocessing parameters for scalp EEG.
const (
	DefaultSampleRate = 256.0
	DefaultLowHz      = 0.5
	DefaultHighHz     = 40.0
	DefaultOrder      = 4
	DefaultWavelet    = "db4"
	DefaultLevels     = 5
)

// Option applies a configuration option to the Extractor.
type Option func(*extractorConfig)

type extractorConfig struct {
	sampleRate float64
	lowHz      float64
	highHz     float64
	order      int
	wavelet    string
	levels     int
}

// WithSampleRate sets the acquisition rate in Hz.
func WithSampleRate(hz float64) Option {
	return func(c *extractorConfig) {
		if hz > 0 {
			c.sampleRate = hz
		}
	}
}

// WithBand sets the band-pass edges in Hz.
func WithBand(lowHz, highHz float64) Option {
	return func(c *extractorConfig) {
		c.lowHz, c.highHz = lowHz, highHz
	}
}

// WithOrder sets the Butterworth prototype order.
func WithOrder(order int) Option {
	return func(c *extractorConfig) {
		c.order = order
	}
}

// WithWavelet selects the decomposition wavelet by name.
func WithWavelet(name string) Option {
	return func(c *extractorConfig) {
		if name != "" {
			c.wavelet = name
		}
	}
}

// WithLevels sets the number of decomposition levels.
func WithLevels(levels int) Option {
	return func(c *extractorConfig) {
		c.levels = levels
	}
}

// Extractor turns a raw recording into band-passed samples and wavelet
// band summaries. It is immutable and safe for concurrent use.
type Extractor struct {
	filter     Coefficients
	wavelet    Wavelet
	levels     int
	sampleRate float64
	lowHz      float64
	highHz     float64
}

// Features is the output of Extractor.Extract.
type Features struct {
	Filtered []float64 `json:"-"`
	Bands    []Band    `json:"bands"`
	// MaxLevel is the deepest boundary-free level for this signal length.
	MaxLevel int `json:"max_level"`
}

// NewExtractor designs the filter and resolves the wavelet up front.
func NewExtractor(opts ...Option) (*Extractor, error) {
	cfg := extractorConfig{
		sampleRate: DefaultSampleRate,
		lowHz:      DefaultLowHz,
		highHz:     DefaultHighHz,
		order:      DefaultOrder,
		wavelet:    DefaultWavelet,
		levels:     DefaultLevels,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.levels < 1 {
		return nil, ErrInvalidLevel
	}
	filter, err := Butterworth(cfg.order, cfg.lowHz, cfg.highHz, cfg.sampleRate)
	if err != nil {
		return nil, err
	}
	w, err := LookupWavelet(cfg.wavelet)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		filter:     filter,
		wavelet:    w,
		levels:     cfg.levels,
		sampleRate: cfg.sampleRate,
		lowHz:      cfg.lowHz,
		highHz:     cfg.highHz,
	}, nil
}

// MinSamples is the shortest recording Extract accepts.
func (e *Extractor) MinSamples() int {
	return e.filter.PadLen() + 1
}

// Filter returns the designed band-pass coefficients.
func (e *Extractor) Filter() Coefficients {
	return e.filter
}

// Band returns the pass band edges in Hz.
func (e *Extractor) Band() (float64, float64) {
	return e.lowHz, e.highHz
}

// SampleRate returns the sampling rate the filter was designed for.
func (e *Extractor) SampleRate() float64 {
	return e.sampleRate
}

// Wavelet returns the decomposition wavelet.
func (e *Extractor) Wavelet() Wavelet {
	return e.wavelet
}

// Levels returns the configured decomposition depth.
func (e *Extractor) Levels() int {
	return e.levels
}

// Extract band-passes x and summarizes its wavelet decomposition.
func (e *Extractor) Extract(x []float64) (Features, error) {
	filtered, err := FiltFilt(e.filter, x)
	if err != nil {
		return Features{}, err
	}
	bands, err := WaveletFeatures(filtered, e.wavelet, e.levels)
	if err != nil {
		return Features{}, err
	}
	return Features{
		Filtered: filtered,
		Bands:    bands,
		MaxLevel: e.wavelet.MaxLevel(len(filtered)),
	}, nil
}

// Bandpass applies the default 0.5-40 Hz order-4 zero-phase filter.
func Bandpass(x []float64, fs float64) ([]float64, error) {
	c, err := Butterworth(DefaultOrder, DefaultLowHz, DefaultHighHz, fs)
	if err != nil {
		return nil, err
	}
	return FiltFilt(c, x)
}

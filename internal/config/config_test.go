package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/eegscreen/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should mirror the screening defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
			convey.So(cfg.SampleRateHz, convey.ShouldEqual, 256)
			convey.So(cfg.BandLowHz, convey.ShouldEqual, 0.5)
			convey.So(cfg.BandHighHz, convey.ShouldEqual, 40)
			convey.So(cfg.FilterOrder, convey.ShouldEqual, 4)
			convey.So(cfg.Wavelet, convey.ShouldEqual, "db4")
			convey.So(cfg.WaveletLevels, convey.ShouldEqual, 5)
			convey.So(cfg.Threshold, convey.ShouldEqual, 0.5)
			convey.So(cfg.MinSamples, convey.ShouldEqual, 10)
			convey.So(cfg.RecommendedSamples, convey.ShouldEqual, 384)
			convey.So(cfg.Predictor, convey.ShouldEqual, config.PredictorLSTM)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
		})

		convey.Convey("And it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one constraint each", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = " " },
			"zero sample rate":    func(c *config.Config) { c.SampleRateHz = 0 },
			"inverted band":       func(c *config.Config) { c.BandLowHz, c.BandHighHz = 40, 0.5 },
			"band above nyquist":  func(c *config.Config) { c.BandHighHz = 128 },
			"zero order":          func(c *config.Config) { c.FilterOrder = 0 },
			"zero levels":         func(c *config.Config) { c.WaveletLevels = 0 },
			"threshold of one":    func(c *config.Config) { c.Threshold = 1 },
			"negative rate":       func(c *config.Config) { c.SeizureRate = -0.1 },
			"zero max samples":    func(c *config.Config) { c.MaxSamples = 0 },
			"unknown predictor":   func(c *config.Config) { c.Predictor = "cnn" },
			"unsupported wavelet": func(c *config.Config) { c.Wavelet = "sym5" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+name+" should be rejected as invalid config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/eegscreen/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
				convey.So(cfg.SampleRateHz, convey.ShouldEqual, 256)
				convey.So(cfg.Predictor, convey.ShouldEqual, "lstm")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("EEG_ADDR", ":8080")
			_ = os.Setenv("EEG_SAMPLE_RATE_HZ", "512")
			_ = os.Setenv("EEG_BAND_HIGH_HZ", "70")
			_ = os.Setenv("EEG_PREDICTOR", "random")
			_ = os.Setenv("EEG_WORKER_COUNT", "3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SampleRateHz, convey.ShouldEqual, 512)
				convey.So(cfg.BandHighHz, convey.ShouldEqual, 70)
				convey.So(cfg.Predictor, convey.ShouldEqual, "random")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
# screening overrides
addr: ":9090"
wavelet: db2
wavelet_levels: 3
threshold: 0.7
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("EEG_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML and keep defaults elsewhere", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Wavelet, convey.ShouldEqual, "db2")
				convey.So(cfg.WaveletLevels, convey.ShouldEqual, 3)
				convey.So(cfg.Threshold, convey.ShouldEqual, 0.7)
				convey.So(cfg.FilterOrder, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
min_samples: 20
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("EEG_CONFIG", tmpFile)
			_ = os.Setenv("EEG_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MinSamples, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When a .env file is present", func() {
			dir := t.TempDir()
			envFile := filepath.Join(dir, "screen.env")
			convey.So(os.WriteFile(envFile, []byte("EEG_MAX_SAMPLES=1024\nEEG_LOG_LEVEL=debug\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("EEG_ENV_FILE", envFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxSamples, convey.ShouldEqual, 1024)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When EEG_ENV_FILE points at a missing file", func() {
			_ = os.Setenv("EEG_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("EEG_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("EEG_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("EEG_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the band exceeds the Nyquist frequency", func() {
			_ = os.Setenv("EEG_SAMPLE_RATE_HZ", "64")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("EEG_WORKER_COUNT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"EEG_CONFIG",
		"EEG_ENV_FILE",
		"EEG_ADDR",
		"EEG_LOG_LEVEL",
		"EEG_SAMPLE_RATE_HZ",
		"EEG_BAND_HIGH_HZ",
		"EEG_PREDICTOR",
		"EEG_WORKER_COUNT",
		"EEG_MAX_SAMPLES",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "eeg-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

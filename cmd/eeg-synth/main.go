package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/okian/eegscreen/internal/domain/dsp"
	eegsignal "github.com/okian/eegscreen/internal/domain/signal"
	"github.com/okian/eegscreen/internal/synth"
	"github.com/okian/eegscreen/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

var (
	sampleRate float64
	samples    int
	seed       uint64
	burst      bool
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "eeg-synth",
		Short:        "Synthetic EEG generator and screening client",
		SilenceUsage: true,
	}

	root.PersistentFlags().Float64Var(&sampleRate, "rate", synth.DefaultSampleRate, "sampling rate in Hz")
	root.PersistentFlags().IntVar(&samples, "samples", synth.DefaultSamples, "samples per recording")
	root.PersistentFlags().Uint64Var(&seed, "seed", synth.DefaultSeed, "generator seed")

	root.AddCommand(generateCmd())
	root.AddCommand(featuresCmd())
	root.AddCommand(screenCmd())
	return root
}

func generateRecording() ([]float64, error) {
	g, err := synth.NewGenerator(sampleRate, seed)
	if err != nil {
		return nil, err
	}
	if burst {
		return g.Seizure(samples)
	}
	return g.Background(samples)
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print one recording as comma separated samples",
		RunE: func(cmd *cobra.Command, _ []string) error {
			x, err := generateRecording()
			if err != nil {
				return err
			}
			parts := make([]string, len(x))
			for i, v := range x {
				parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&burst, "burst", false, "inject a 3 Hz spike-and-wave burst")
	return cmd
}

func featuresCmd() *cobra.Command {
	var (
		wavelet string
		levels  int
	)

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Band-pass a recording and print its wavelet band summaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			x, err := generateRecording()
			if err != nil {
				return err
			}
			ex, err := dsp.NewExtractor(
				dsp.WithSampleRate(sampleRate),
				dsp.WithWavelet(wavelet),
				dsp.WithLevels(levels),
			)
			if err != nil {
				return err
			}
			f, err := ex.Extract(x)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := eegsignal.Summarize(x)
			fmt.Fprintf(out, "Original signal shape: (%d,)\n", st.Count)
			fmt.Fprintf(out, "Filtered signal shape: (%d,)\n", len(f.Filtered))
			fmt.Fprintf(out, "Mean: %.2f μV | Std: %.2f μV | Min: %.2f | Max: %.2f\n", st.Mean, st.Std, st.Min, st.Max)
			if levels > f.MaxLevel {
				fmt.Fprintf(out, "Note: %d levels exceed the boundary-free maximum of %d\n", levels, f.MaxLevel)
			}
			fmt.Fprintf(out, "%-4s %7s %12s %12s %14s\n", "band", "length", "mean", "std", "energy")
			for _, b := range f.Bands {
				fmt.Fprintf(out, "%-4s %7d %12.4f %12.4f %14.2f\n", b.Name, b.Length, b.Mean, b.Std, b.Energy)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&burst, "burst", false, "inject a 3 Hz spike-and-wave burst")
	cmd.Flags().StringVar(&wavelet, "wavelet", dsp.DefaultWavelet, "wavelet name (db1, haar, db2, db4)")
	cmd.Flags().IntVar(&levels, "levels", dsp.DefaultLevels, "decomposition levels")
	return cmd
}

func screenCmd() *cobra.Command {
	cfg := &synth.Config{}

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen generated recordings against a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.SampleRate = sampleRate
			cfg.Samples = samples
			cfg.Seed = seed

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
			defer cancel()

			outcomes, stats, err := synth.Run(ctx, cfg)
			if err != nil {
				return err
			}
			a := synth.Verify(outcomes)
			fmt.Fprintf(cmd.OutOrStdout(),
				"screened %d/%d in %s: seizure=%d normal=%d failed=%d agreement=%.0f%%\n",
				stats.Succeeded, stats.Generated, stats.Duration.Round(time.Millisecond),
				stats.Seizure, stats.Normal, stats.Failed, a.Accuracy()*synth.PercentageMultiplier)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8501", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Recordings, "recordings", 100, "number of recordings")
	cmd.Flags().Float64Var(&cfg.SeizureMix, "mix", 0.5, "fraction of recordings with a burst")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "concurrent workers")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log every outcome")
	return cmd
}

// Package types contains common types used across the application
package types

import (
	"fmt"
	"time"

	"github.com/okian/eegscreen/internal/domain/dsp"
	"github.com/okian/eegscreen/internal/domain/signal"
)

// Screening is the outcome of one submitted recording.
type Screening struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Samples     int           `json:"samples"`
	Probability float64       `json:"probability"`
	Threshold   float64       `json:"threshold"`
	Seizure     bool          `json:"seizure"`
	Label       string        `json:"label"`
	Confidence  float64       `json:"confidence"`
	Predictor   string        `json:"predictor"`
	Warnings    []string      `json:"warnings,omitempty"`
	Stats       signal.Stats  `json:"stats"`
	Features    *dsp.Features `json:"features,omitempty"`
	LatencyMS   float64       `json:"latency_ms"`
	// Plot is a base64 PNG, filled only when the caller asks for it.
	Plot string `json:"plot,omitempty"`

	// Values are the parsed samples, kept for plotting.
	Values []float64 `json:"-"`
}

// Message is the banner text shown for the outcome.
func (s Screening) Message() string {
	if s.Seizure {
		return fmt.Sprintf("Seizure Detected (confidence: %.0f%%)", s.Confidence*100)
	}
	return fmt.Sprintf("Normal EEG (confidence: %.0f%%)", s.Confidence*100)
}

// Filtered returns the band-passed samples, or nil when features were skipped.
func (s Screening) Filtered() []float64 {
	if s.Features == nil {
		return nil
	}
	return s.Features.Filtered
}

// Counters are the session totals shown in the status panel.
type Counters struct {
	Total    int64 `json:"total"`
	Seizure  int64 `json:"seizure"`
	Normal   int64 `json:"normal"`
	Rejected int64 `json:"rejected"`
}

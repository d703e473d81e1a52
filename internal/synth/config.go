// Package synth generates synthetic EEG recordings and drives a running
// screening service with them.
package synth

import "time"

// Config holds configuration for a screening run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Recordings int           // Number of recordings to generate
	Samples    int           // Samples per recording
	SampleRate float64       // Sampling rate in Hz
	SeizureMix float64       // Fraction of recordings carrying a spike-and-wave burst
	Seed       uint64        // Generator seed
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every outcome
}

// Recording is one generated signal.
type Recording struct {
	ID      string    `json:"id"`
	Burst   bool      `json:"burst"`
	Samples []float64 `json:"samples"`
}

// Outcome is the server verdict for one recording.
type Outcome struct {
	RecordingID string  `json:"recording_id"`
	Burst       bool    `json:"burst"`
	Status      int     `json:"status"`
	Probability float64 `json:"probability"`
	Seizure     bool    `json:"seizure"`
	Err         string  `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Submitted int
	Succeeded int
	Failed    int
	Seizure   int
	Normal    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

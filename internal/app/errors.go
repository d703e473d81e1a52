package service

import (
	"errors"

	workerpool "github.com/okian/eegscreen/internal/adapters/mq/worker"
)

// Sentinel kinds for screening errors.
var (
	ErrNotStarted     = errors.New("screening service not started")
	ErrTooManySamples = errors.New("too many samples")
	ErrBadProbability = errors.New("predictor returned a probability outside [0, 1]")
	ErrNonFinite      = errors.New("amplitudes too large for filtering")
	ErrBackpressure   = workerpool.ErrBackpressure
	ErrPoolClosed     = workerpool.ErrPoolClosed
)

package dsp

import "errors"

// Sentinel kinds for dsp errors.
var (
	ErrInvalidFilter  = errors.New("invalid filter specification")
	ErrSignalTooShort = errors.New("signal too short")
	ErrUnknownWavelet = errors.New("unknown wavelet")
	ErrInvalidLevel   = errors.New("invalid decomposition level")
	ErrSingularSystem = errors.New("singular filter state system")
)

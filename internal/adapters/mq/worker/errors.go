package worker

import "errors"

// Sentinel kinds for pool errors.
var (
	ErrBackpressure = errors.New("inference queue is full")
	ErrPoolClosed   = errors.New("inference pool is closed")
)

// Package model contains domain models passed between layers.
package model

import (
	"context"
	"time"
)

// Job is one inference request travelling through the pool.
type Job struct {
	ID        string
	Ctx       context.Context //nolint:containedctx // jobs carry their caller's deadline across the queue
	Samples   []float64       // z-scored samples
	Submitted time.Time
	reply     chan Result
}

// Result is what a worker sends back for a Job.
type Result struct {
	JobID       string
	Probability float64
	Predictor   string
	Latency     time.Duration
	Err         error
}

// NewJob builds a job and the channel its single result arrives on.
func NewJob(ctx context.Context, id string, samples []float64) (Job, <-chan Result) {
	reply := make(chan Result, 1)
	return Job{
		ID:        id,
		Ctx:       ctx,
		Samples:   samples,
		Submitted: time.Now(),
		reply:     reply,
	}, reply
}

// Done reports whether the submitter has given up on the job.
func (j Job) Done() bool {
	if j.Ctx == nil {
		return false
	}
	return j.Ctx.Err() != nil
}

// Complete delivers r to the submitter. Only the first call has an effect.
func (j Job) Complete(r Result) {
	if j.reply == nil {
		return
	}
	r.JobID = j.ID
	select {
	case j.reply <- r:
	default:
	}
}

// Package async runs document jobs on a bounded set of background workers.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one input document to process.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
}

func NewJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now().UTC()}
}

// Handler processes one job. ctx carries the per-job timeout.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

type HandlerFunc func(ctx context.Context, job Job) error

func (f HandlerFunc) Handle(ctx context.Context, job Job) error { return f(ctx, job) }

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// Stats counts finished jobs.
type Stats struct {
	Succeeded int64
	Failed    int64
}

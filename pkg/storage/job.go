package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs next to the rows they refer to, so an
// item and its analysis job become visible together when used inside a
// transaction.
type JobStorage interface {
	// AddJob enqueues a job and reports whether it was inserted (false when a
	// uniqueness rule skipped it as a duplicate).
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}

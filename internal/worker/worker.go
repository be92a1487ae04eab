// Package worker runs the background jobs that analyze submitted items.
package worker

import (
	"context"
	"detector/internal/detector"
	"detector/pkg/logger"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

type Options struct {
	// MaxWorkers is the number of items analyzed in parallel.
	MaxWorkers int
	// JobTimeout bounds a single analysis; 0 keeps the queue default.
	JobTimeout time.Duration
}

// NewWorkers registers every job handled by this service.
func NewWorkers(service detector.Service) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewAnalyzeWorker(service))

	return workers
}

// Start creates a river client consuming analysis jobs and starts it.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	service detector.Service,
	options Options) (*river.Client[pgx.Tx], error) {
	if options.MaxWorkers <= 0 {
		options.MaxWorkers = 1
	}

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: options.MaxWorkers},
		},
		Workers:    NewWorkers(service),
		JobTimeout: options.JobTimeout,
		Logger:     logger.Slog(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}

package worker

import (
	"context"
	"detector/internal/detector"
	"detector/pkg/domain"
	"detector/pkg/logger"
	"detector/pkg/serrors"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// AnalyzeWorker runs the analysis pipeline of one item per job. Jobs for items
// that were deleted or already picked up are cancelled rather than retried.
type AnalyzeWorker struct {
	river.WorkerDefaults[detector.JobArgs]

	service detector.Service
}

func NewAnalyzeWorker(service detector.Service) *AnalyzeWorker {
	return &AnalyzeWorker{service: service}
}

func (w *AnalyzeWorker) Work(ctx context.Context, job *river.Job[detector.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("itemID", job.Args.ItemID))

	id, err := uuid.Parse(job.Args.ItemID)
	if err != nil {
		logger.Error(ctx, "job has an invalid item id", zap.Error(err))

		return river.JobCancel(fmt.Errorf("invalid item id: %w", err)) //nolint: wrapcheck
	}

	item, err := w.service.Process(ctx, domain.ItemID(id))
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) || errors.Is(err, serrors.ErrConflict) {
			logger.Warn(ctx, "skipping analysis", zap.Error(err))

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in analyzing item", zap.Error(err))

		return fmt.Errorf("could not analyze item: %w", err)
	}

	logger.Info(ctx, "item analyzed", zap.String("status", string(item.Status)))

	return nil
}

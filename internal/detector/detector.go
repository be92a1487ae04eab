// Package detector manages the lifecycle of uploaded items: validation and
// queueing on submit, analysis in background jobs, listing, deletion and
// history export.
package detector

import (
	"context"
	"detector/internal/analyzer"
	"detector/internal/config"
	"detector/pkg/blob"
	"detector/pkg/domain"
	"detector/pkg/logger"
	"detector/pkg/media"
	"detector/pkg/serrors"
	"detector/pkg/storage"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize uint = 20
	MaxPageSize     uint = 100
)

type Options struct {
	// MaxUploadBytes rejects larger uploads; 0 disables the check.
	MaxUploadBytes int64
	// FailureJudgment is recorded on items that fail before analysis starts.
	FailureJudgment domain.Judgment
}

func NewOptions(cfg *config.Config) Options {
	j, _ := domain.ParseJudgment(cfg.Analyzer.FailureJudgment)

	return Options{
		MaxUploadBytes:  cfg.Media.MaxUploadBytes,
		FailureJudgment: j,
	}
}

type service struct {
	options  Options
	storage  storage.Storage
	blobs    blob.Store
	analyzer analyzer.Analyzer
	now      func() time.Time
}

var _ Service = (*service)(nil)

func New(storage storage.Storage, blobs blob.Store, a analyzer.Analyzer, options Options) Service {
	if !options.FailureJudgment.Valid() {
		options.FailureJudgment = domain.JudgmentUnknown
	}

	return &service{
		options:  options,
		storage:  storage,
		blobs:    blobs,
		analyzer: a,
		now:      time.Now,
	}
}

// Submit validates the upload before any side effect, stores its content and
// creates a WAITING item together with its analysis job.
func (s *service) Submit(ctx context.Context, userID domain.UserID, upload Upload) (*domain.Item, error) {
	size := int64(len(upload.Content))
	if s.options.MaxUploadBytes > 0 && size > s.options.MaxUploadBytes {
		return nil, serrors.With(serrors.ErrBadRequest, "file is larger than %d bytes", s.options.MaxUploadBytes)
	}

	mediaType, err := media.Validate(upload.MediaType, upload.Content)
	if err != nil {
		return nil, err
	}

	id := domain.ItemID(uuid.New())
	if err := s.blobs.Put(ctx, id.String(), upload.Content, mediaType); err != nil {
		return nil, fmt.Errorf("could not store upload: %w", err)
	}

	var item *domain.Item
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err := tx.StoreItem(ctx, domain.Item{
			ID:        id,
			UserID:    userID,
			Filename:  cleanFilename(upload.Filename),
			MediaType: mediaType,
			Size:      size,
			Status:    domain.ItemStatusWaiting,
		})
		if err != nil {
			return fmt.Errorf("could not store item: %w", err)
		}
		item = stored

		if _, err := tx.AddJob(ctx, JobArgs{ItemID: id.String()}, nil); err != nil {
			return fmt.Errorf("could not add job: %w", err)
		}

		return nil
	}); err != nil {
		if delErr := s.blobs.Delete(ctx, id.String()); delErr != nil {
			logger.Warn(ctx, "could not remove orphaned upload", zap.Error(delErr))
		}

		return nil, fmt.Errorf("could not submit item: %w", err)
	}

	logger.Info(ctx, "item submitted",
		zap.String("item_id", id.String()),
		zap.String("media_type", mediaType),
		zap.Int64("size", size))

	return item, nil
}

// Process analyzes a WAITING item. It returns ErrNotFound for unknown or
// deleted items and ErrConflict when the item is no longer WAITING, so a
// duplicate delivery never analyzes an item twice.
func (s *service) Process(ctx context.Context, itemID domain.ItemID) (*domain.Item, error) {
	ctx = logger.WithFields(ctx, zap.String("item_id", itemID.String()))

	item, err := s.storage.TransitionItem(ctx, itemID, domain.ItemStatusWaiting, storage.ItemUpdates{
		Status: domain.ItemStatusProcessing,
	})
	if err != nil {
		return nil, fmt.Errorf("could not start processing: %w", err)
	}
	if item == nil {
		return nil, s.transitionError(ctx, itemID)
	}

	var out analyzer.Outcome
	content, err := s.blobs.Get(ctx, itemID.String())
	if err != nil {
		logger.Error(ctx, "could not load upload", zap.Error(err))
		msg := "the uploaded file is no longer available"
		if !errors.Is(err, serrors.ErrNotFound) {
			msg = "the uploaded file could not be loaded"
		}
		out = analyzer.Outcome{
			Status: domain.ItemStatusError,
			Result: domain.ProcessingResult{
				Judgment:  s.options.FailureJudgment,
				Reason:    msg,
				Records:   []domain.AnalysisRecord{},
				Timestamp: s.now(),
			},
			Err: err,
		}
	} else {
		out = s.analyzer.Analyze(ctx, analyzer.Input{Content: content, MediaType: item.MediaType})
	}

	// the result is stored even when the job context was cancelled mid-analysis
	finishCtx := context.WithoutCancel(ctx)

	lastError := ""
	if out.Err != nil {
		lastError = out.Err.Error()
	}
	done, err := s.storage.TransitionItem(finishCtx, itemID, domain.ItemStatusProcessing, storage.ItemUpdates{
		Status:    out.Status,
		Result:    &out.Result,
		LastError: &lastError,
	})
	if err != nil {
		return nil, fmt.Errorf("could not store result: %w", err)
	}

	if err := s.blobs.Delete(finishCtx, itemID.String()); err != nil && !errors.Is(err, serrors.ErrNotFound) {
		logger.Warn(ctx, "could not remove processed upload", zap.Error(err))
	}

	if done == nil {
		// deleted while it was being analyzed
		return nil, serrors.With(serrors.ErrNotFound, "item not found")
	}

	logger.Info(ctx, "item processed",
		zap.String("status", string(done.Status)),
		zap.String("judgment", string(out.Result.Judgment)))

	return done, nil
}

func (s *service) transitionError(ctx context.Context, itemID domain.ItemID) error {
	current, err := s.storage.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("could not get item: %w", err)
	}
	if current == nil {
		return serrors.With(serrors.ErrNotFound, "item not found")
	}

	return serrors.With(serrors.ErrConflict, "item is already %s", strings.ToLower(string(current.Status)))
}

func (s *service) Item(ctx context.Context, userID domain.UserID, itemID domain.ItemID) (*domain.Item, error) {
	item, err := s.storage.ItemByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("could not get item: %w", err)
	}
	if item == nil {
		return nil, serrors.With(serrors.ErrNotFound, "item not found")
	}

	return item, nil
}

// Items returns a page of the user's items, newest first. cursor is the
// RFC 3339 timestamp returned as next cursor by the previous page.
func (s *service) Items(ctx context.Context,
	userID domain.UserID,
	status domain.ItemStatus,
	cursor string,
	limit uint) ([]domain.Item, string, error) {
	if status != "" && !status.Valid() {
		return nil, "", serrors.With(serrors.ErrBadRequest, "invalid status %q", status)
	}

	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		cursorTime = t
	}

	switch {
	case limit == 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	page, err := s.storage.UserItems(ctx, userID, status, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user items: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.UTC().Format(time.RFC3339Nano)
	}

	return page.Items, next, nil
}

// Delete soft-deletes the item and drops its upload. A job still queued for
// the item finds it missing and is cancelled.
func (s *service) Delete(ctx context.Context, userID domain.UserID, itemID domain.ItemID) error {
	item, err := s.storage.DeleteItem(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("could not delete item: %w", err)
	}
	if item == nil {
		return serrors.With(serrors.ErrNotFound, "item not found")
	}

	if err := s.blobs.Delete(ctx, itemID.String()); err != nil && !errors.Is(err, serrors.ErrNotFound) {
		logger.Warn(ctx, "could not remove upload of deleted item",
			zap.String("item_id", itemID.String()), zap.Error(err))
	}

	return nil
}

// ReasonInterrupted is recorded on items whose analysis never finished.
const ReasonInterrupted = "processing was interrupted, please upload the file again"

// RecoverStale fails items left in PROCESSING for longer than olderThan, which
// happens when a worker dies mid-analysis since jobs are never retried.
func (s *service) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	lastError := ReasonInterrupted
	items, err := s.storage.FailStaleItems(ctx, s.now().Add(-olderThan), storage.ItemUpdates{
		Status: domain.ItemStatusError,
		Result: &domain.ProcessingResult{
			Judgment:  s.options.FailureJudgment,
			Reason:    ReasonInterrupted,
			Records:   []domain.AnalysisRecord{},
			Timestamp: s.now(),
		},
		LastError: &lastError,
	})
	if err != nil {
		return 0, fmt.Errorf("could not fail stale items: %w", err)
	}

	for _, item := range items {
		if err := s.blobs.Delete(ctx, item.ID.String()); err != nil && !errors.Is(err, serrors.ErrNotFound) {
			logger.Warn(ctx, "could not remove upload of stale item",
				zap.String("item_id", item.ID.String()), zap.Error(err))
		}
	}
	if len(items) > 0 {
		logger.Warn(ctx, "failed stale items", zap.Int("count", len(items)))
	}

	return len(items), nil
}

// Export serializes every finished item of the user as a history document.
func (s *service) Export(ctx context.Context, userID domain.UserID) ([]byte, error) {
	items, err := s.storage.UserHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get history: %w", err)
	}

	return domain.MarshalHistory(items)
}

func cleanFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}

	return name
}

// Package analyzer runs the detection pipeline for one uploaded file: reverse
// image search, per-candidate classification and judgment, and aggregation of
// the per-candidate records into one result.
package analyzer

import (
	"context"
	"detector/internal/config"
	"detector/pkg/classifier"
	"detector/pkg/domain"
	"detector/pkg/judge"
	"detector/pkg/logger"
	"detector/pkg/media"
	"detector/pkg/metrics"
	"detector/pkg/pagetext"
	"detector/pkg/serrors"
	"detector/pkg/websearch"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Deps are the collaborators of the pipeline. Pages and Rasterizer are
// optional: without Pages no page content is fetched, and without Rasterizer
// PDFs are rejected.
type Deps struct {
	Search     websearch.Client
	Judge      judge.Client
	Classifier *classifier.Classifier
	Pages      pagetext.Fetcher
	Rasterizer media.Rasterizer
}

type Options struct {
	// NoMatchJudgment is the overall judgment when search finds nothing.
	NoMatchJudgment domain.Judgment
	// FailureJudgment is the overall judgment of items that end in ERROR.
	FailureJudgment domain.Judgment
	// MaxConcurrentCalls bounds outbound calls per item; 0 means unbounded.
	MaxConcurrentCalls int
	// CompareImages asks the judgment service whether a candidate shows the
	// uploaded image before judging its content.
	CompareImages bool
	// FetchPageText passes the candidate page text to the judgment service.
	FetchPageText bool
}

// NewOptions maps the analyzer section of cfg, which config.Validate has
// already checked.
func NewOptions(cfg *config.Config) Options {
	noMatch, _ := domain.ParseJudgment(cfg.Analyzer.NoMatchJudgment)
	failure, _ := domain.ParseJudgment(cfg.Analyzer.FailureJudgment)

	return Options{
		NoMatchJudgment:    noMatch,
		FailureJudgment:    failure,
		MaxConcurrentCalls: cfg.Analyzer.MaxConcurrentCalls,
		CompareImages:      cfg.Analyzer.CompareImages,
		FetchPageText:      cfg.Analyzer.FetchPageText,
	}
}

type analyzer struct {
	deps    Deps
	options Options
	now     func() time.Time
	tracer  trace.Tracer
	items   metric.Int64Counter
}

var _ Analyzer = (*analyzer)(nil)

// New creates an Analyzer. Unset or invalid judgments in options default to ?.
func New(deps Deps, options Options) Analyzer {
	if !options.NoMatchJudgment.Valid() {
		options.NoMatchJudgment = domain.JudgmentUnknown
	}
	if !options.FailureJudgment.Valid() {
		options.FailureJudgment = domain.JudgmentUnknown
	}

	// a failed instrument registration leaves a nil counter, which record skips
	items, _ := otel.Meter(metrics.MeterName).Int64Counter("detector_items_total",
		metric.WithDescription("Analyzed items by final status and judgment"))

	return &analyzer{
		deps:    deps,
		options: options,
		now:     time.Now,
		tracer:  otel.Tracer("detector/analyzer"),
		items:   items,
	}
}

func (a *analyzer) Analyze(ctx context.Context, in Input) (out Outcome) {
	ctx, span := a.tracer.Start(ctx, "analyzer.Analyze",
		trace.WithAttributes(attribute.String("media_type", in.MediaType)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			out = a.failure(fmt.Errorf("analysis panicked: %v", r))
		}
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Err.Error())
		}
		a.record(ctx, out)
	}()

	images, err := media.Normalize(ctx, in.Content, in.MediaType, a.deps.Rasterizer)
	if err != nil {
		logger.Warn(ctx, "could not normalize input", zap.Error(err))

		return a.failure(err)
	}

	candidates, err := a.deps.Search.Search(ctx, images[0].Data)
	if err != nil {
		logger.Warn(ctx, "image search failed", zap.Error(err))

		return a.failure(err)
	}
	logger.Debug(ctx, "image search finished", zap.Int("candidates", len(candidates)))

	if len(candidates) == 0 {
		return Outcome{
			Status: domain.ItemStatusCompleted,
			Result: domain.ProcessingResult{
				Judgment:  a.options.NoMatchJudgment,
				Reason:    ReasonNoMatches,
				Records:   []domain.AnalysisRecord{},
				Timestamp: a.now(),
			},
		}
	}

	records, err := a.analyzeCandidates(ctx, images[0], candidates)
	if err != nil {
		return a.failure(err)
	}

	judgment, reason := Aggregate(records)
	logger.Info(ctx, "analysis completed",
		zap.String("judgment", string(judgment)),
		zap.Int("records", len(records)))

	return Outcome{
		Status: domain.ItemStatusCompleted,
		Result: domain.ProcessingResult{
			Judgment:  judgment,
			Reason:    reason,
			Records:   records,
			Timestamp: a.now(),
		},
	}
}

// analyzeCandidates resolves every candidate concurrently. Records keep the
// candidate order regardless of completion order.
func (a *analyzer) analyzeCandidates(ctx context.Context,
	original media.Image,
	candidates []domain.Candidate) ([]domain.AnalysisRecord, error) {
	var sem *semaphore.Weighted
	if a.options.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(a.options.MaxConcurrentCalls))
	}

	records := make([]domain.AnalysisRecord, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("analysis of %s panicked: %v", c.URL, r)
				}
			}()

			t := task{analyzer: a, sem: sem, original: original}
			records[i], err = t.run(gctx, c)

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func (a *analyzer) failure(err error) Outcome {
	return Outcome{
		Status: domain.ItemStatusError,
		Result: domain.ProcessingResult{
			Judgment:  a.options.FailureJudgment,
			Reason:    serrors.MessageOf(err),
			Records:   []domain.AnalysisRecord{},
			Timestamp: a.now(),
		},
		Err: err,
	}
}

func (a *analyzer) record(ctx context.Context, out Outcome) {
	if a.items == nil {
		return
	}

	a.items.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", string(out.Status)),
		attribute.String("judgment", string(out.Result.Judgment)),
	))
}

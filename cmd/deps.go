package main

import (
	"context"
	"detector/internal/analyzer"
	"detector/internal/config"
	"detector/pkg/blob"
	"detector/pkg/blob/memory"
	"detector/pkg/blob/miniostore"
	"detector/pkg/classifier"
	"detector/pkg/judge/gemini"
	"detector/pkg/logger"
	"detector/pkg/media"
	"detector/pkg/pagetext"
	"detector/pkg/websearch/vision"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

func newClassifier(ctx context.Context, cfg *config.Config) (*classifier.Classifier, error) {
	if cfg.Domains.ListsFile == "" {
		return classifier.New(classifier.DefaultLists()), nil
	}

	lists, err := classifier.LoadLists(cfg.Domains.ListsFile)
	if err != nil {
		return nil, fmt.Errorf("could not load domain lists: %w", err)
	}
	logger.Info(ctx, "loaded domain lists", zap.String("path", cfg.Domains.ListsFile))

	return classifier.New(lists), nil
}

// newAnalyzer wires the gateways and helpers of the analysis pipeline.
// Missing API keys are reported on first use, not here.
func newAnalyzer(ctx context.Context, cfg *config.Config) (analyzer.Analyzer, error) {
	cls, err := newClassifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var filter vision.TextSearchFilter
	if cfg.Vision.FilterTextSearchPages {
		filter = cls
	}
	search := vision.New(&http.Client{Timeout: cfg.Vision.Timeout}, vision.Options{
		APIKey:     cfg.Vision.APIKey,
		Endpoint:   cfg.Vision.Endpoint,
		MaxResults: cfg.Vision.MaxResults,
		Filter:     filter,
	})

	judgeClient := gemini.New(&http.Client{Timeout: cfg.Gemini.Timeout}, gemini.Options{
		APIKey:            cfg.Gemini.APIKey,
		Endpoint:          cfg.Gemini.Endpoint,
		Model:             cfg.Gemini.Model,
		Temperature:       cfg.Gemini.Temperature,
		RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
		Burst:             cfg.Gemini.Burst,
		IllegalKeywords:   cls.IllegalKeywords(),
	})

	pages := pagetext.New(&http.Client{Timeout: cfg.PageText.Timeout}, pagetext.Options{
		UserAgent: cfg.PageText.UserAgent,
		MaxBytes:  cfg.PageText.MaxBytes,
		MaxChars:  cfg.PageText.MaxChars,
	})

	return analyzer.New(analyzer.Deps{
		Search:     search,
		Judge:      judgeClient,
		Classifier: cls,
		Pages:      pages,
		Rasterizer: &media.Pdftoppm{
			Binary:   cfg.Media.PdftoppmPath,
			DPI:      cfg.Media.PDFDPI,
			MaxPages: cfg.Media.MaxPDFPages,
		},
	}, analyzer.NewOptions(cfg)), nil
}

// newBlobStore returns the upload store selected by cfg.Blob.Driver.
func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Blob.Driver {
	case "", "memory":
		logger.Warn(ctx, "uploads are kept in memory; pending items are lost on restart")

		return memory.New(), nil
	case "minio":
		store, err := miniostore.New(miniostore.Options{
			Endpoint:  cfg.Blob.Endpoint,
			AccessKey: cfg.Blob.AccessKey,
			SecretKey: cfg.Blob.SecretKey,
			Bucket:    cfg.Blob.Bucket,
			UseSSL:    cfg.Blob.UseSSL,
			Prefix:    cfg.Blob.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create minio store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("could not ensure bucket: %w", err)
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

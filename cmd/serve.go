package main

import (
	"context"
	"detector/internal/api"
	"detector/internal/api/handler/v1handler"
	"detector/internal/config"
	"detector/internal/detector"
	"detector/internal/worker"
	"detector/pkg/logger"
	"detector/pkg/metrics"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, service detector.Service) func(ctx context.Context) {
	server, err := api.NewServer(api.Deps{
		Deps: v1handler.Deps{Detector: service},
	}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := metrics.Setup(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not setup metrics", zap.Error(err))
			}

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			blobs, err := newBlobStore(ctx, cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create blob store", zap.Error(err))
			}

			a, err := newAnalyzer(ctx, cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create analyzer", zap.Error(err))
			}

			service := detector.New(strg, blobs, a, detector.NewOptions(cfg))

			// jobs run once, so an item still PROCESSING past the job timeout lost its worker
			if cfg.Queue.JobTimeout > 0 {
				if _, err := service.RecoverStale(ctx, cfg.Queue.JobTimeout+cfg.GracefulShutdownTimeout); err != nil {
					logger.Error(ctx, "could not recover stale items", zap.Error(err))
				}
			}

			riverClient, err := worker.Start(ctx, strg.Pool, service, worker.Options{
				MaxWorkers: cfg.Queue.MaxWorkers,
				JobTimeout: cfg.Queue.JobTimeout,
			})
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, service)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers gracefully", zap.Error(err))
			}

			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shutdown meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}

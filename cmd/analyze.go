package main

import (
	"context"
	"detector/internal/analyzer"
	"detector/internal/config"
	"detector/pkg/domain"
	"detector/pkg/logger"
	"detector/pkg/media"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type analyzeOutput struct {
	Status domain.ItemStatus       `json:"status"`
	Error  string                  `json:"error,omitempty"`
	Result domain.ProcessingResult `json:"result"`
}

// analyzeCommand runs the pipeline once on a local file and prints the result
// as JSON. Nothing is stored.
func analyzeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyzes a local image or PDF and prints the result",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			path, _ := cmd.Flags().GetString("file")
			ctx = logger.WithFields(ctx, zap.String("file", path))

			content, err := os.ReadFile(path)
			if err != nil {
				logger.Fatal(ctx, "could not read file", zap.Error(err))
			}

			mediaType, err := media.Validate("", content)
			if err != nil {
				logger.Fatal(ctx, "file is not accepted", zap.Error(err))
			}

			a, err := newAnalyzer(ctx, cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create analyzer", zap.Error(err))
			}

			out := a.Analyze(ctx, analyzer.Input{Content: content, MediaType: mediaType})
			if out.Err != nil {
				logger.Error(ctx, "analysis failed", zap.Error(out.Err))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			res := analyzeOutput{Status: out.Status, Result: out.Result}
			if out.Err != nil {
				res.Error = out.Err.Error()
			}
			if err := enc.Encode(res); err != nil {
				logger.Fatal(ctx, "could not write result", zap.Error(err))
			}
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path of the image or PDF to analyze")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

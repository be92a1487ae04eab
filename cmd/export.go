package main

import (
	"context"
	"detector/internal/config"
	"detector/internal/detector"
	"detector/pkg/blob/memory"
	"detector/pkg/domain"
	"detector/pkg/logger"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCommand writes the history of a user to a file, the same document the
// API serves from /v1/history/export.
func exportCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exports the detection history of a user as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			user, _ := cmd.Flags().GetString("user")
			out, _ := cmd.Flags().GetString("out")

			userID, err := domain.ParseUserID(user)
			if err != nil {
				logger.Fatal(ctx, "invalid user id", zap.Error(err))
			}
			if out == "" {
				out = domain.HistoryFilename(time.Now())
			}

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			// exporting never touches uploads or runs analysis
			service := detector.New(strg, memory.New(), nil, detector.NewOptions(cfg))

			b, err := service.Export(ctx, userID)
			if err != nil {
				logger.Fatal(ctx, "could not export history", zap.Error(err))
			}

			if out == "-" {
				_, _ = cmd.OutOrStdout().Write(append(b, '\n'))

				return
			}
			if err := os.WriteFile(out, b, 0o600); err != nil {
				logger.Fatal(ctx, "could not write history", zap.Error(err))
			}
			logger.Info(ctx, "history exported", zap.String("path", out), zap.Int("bytes", len(b)))
		},
	}

	cmd.Flags().StringP("user", "u", "", "User uuid whose history is exported")
	cmd.Flags().StringP("out", "o", "", `Output path ("-" for stdout); detection-history-YYYY-MM-DD.json when empty`)
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/krissiernir/IceScriber/internal/app"
	"github.com/krissiernir/IceScriber/internal/observability"
)

func newTranscribeCmd() *cobra.Command {
	var (
		inputDir string
		workers  int
		provider string
	)

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe every unprocessed audio file in a folder",
		Long: `Runs the sliding-window pipeline over each audio file in the input
folder. Files that already have a canonical .json transcript are
skipped, so re-runs only pick up new or previously failed files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if inputDir != "" {
				cfg.Batch.InputDir = inputDir
			}
			if workers > 0 {
				cfg.Batch.Workers = workers
			}
			if provider != "" {
				cfg.STT.Provider = provider
			}

			application := app.New(cfg)
			defer application.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr := cfg.Observability.MetricsAddr; addr != "" {
				srv := observability.NewServer(addr)
				srv.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			driver, err := application.NewDriver(ctx)
			if err != nil {
				return err
			}
			_, err = driver.Run(ctx)
			return err
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Input folder of audio files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent files (default 1)")
	cmd.Flags().StringVar(&provider, "provider", "", "STT provider: mock|google")
	return cmd
}

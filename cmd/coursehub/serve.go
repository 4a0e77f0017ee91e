package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coursehub/marketplace/internal/app"
)

func newServeCmd() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log, err := setup(ctx)
			if err != nil {
				return err
			}

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error().Err(err).Msg("failed to initialize app")
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- application.Run() }()

			select {
			case err := <-errCh:
				if err != nil {
					log.Error().Err(err).Msg("http server failed")
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = application.Shutdown(shutdownCtx)
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := application.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown failed")
				return err
			}
			log.Info().Msg("coursehub stopped cleanly")
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests to finish")
	return cmd
}

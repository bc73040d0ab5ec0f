package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/maltlab/brewmap/internal/adapter/http"
	"github.com/maltlab/brewmap/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an enrichment pass and serve the results over HTTP",
	Long: `Runs one enrichment pass, then serves the enriched map layer and run
statistics until interrupted.

Endpoints:
  GET /healthz            liveness
  GET /readyz             readiness (503 until the first pass completes)
  GET /metrics            Prometheus metrics
  GET /breweries.geojson  map layer for the latest run
  GET /stats              run statistics`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		p, cleanup := buildPipeline(observability.NewMetrics())
		defer cleanup()

		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

		serverErr := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// The serve endpoints report not-ready until this pass completes.
		go func() {
			if _, err := p.Run(ctx); err != nil {
				logger.Error("enrichment run failed", "error", err)
			}
		}()

		select {
		case err := <-serverErr:
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

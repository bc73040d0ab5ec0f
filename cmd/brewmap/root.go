package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/maltlab/brewmap/internal/config"
	"github.com/maltlab/brewmap/internal/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "brewmap",
	Short: "Beer and brewery dataset enrichment",
	Long: "Cleans the beers and breweries CSV datasets, joins them, resolves each\n" +
		"distinct city to coordinates with a single geocoding call, and writes the\n" +
		"enriched CSV and GeoJSON map outputs.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd, serveCmd, gensampleCmd, validateCmd)
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maltlab/brewmap/internal/observability"
)

var enrichState string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run one enrichment pass and write the outputs",
	Long: `Reads the configured beers and breweries CSV files, cleans and joins
them, resolves coordinates and reviews, and writes the enriched CSV and
GeoJSON outputs.

Examples:
  # Enrich the default California subset
  brewmap enrich

  # Enrich Oregon breweries instead
  brewmap enrich --state OR`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if enrichState != "" {
			cfg.StateFilter = enrichState
		}

		p, cleanup := buildPipeline(observability.NewMetrics())
		defer cleanup()

		result, err := p.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("enrichment run: %w", err)
		}

		fmt.Printf("Enriched %d records (%d with coordinates) in %s\n",
			result.Records, result.WithCoords, result.Duration.Round(time.Millisecond))
		fmt.Printf("  beers read:      %d (%d excluded for missing IBU, %d dangling)\n",
			result.BeersRead, result.ExcludedIBU, result.DanglingRefs)
		fmt.Printf("  breweries read:  %d (%d outside %s)\n",
			result.BreweriesRead, result.ExcludedState, cfg.StateFilter)
		fmt.Printf("  places:          %d unique, %d calls, %d resolved, %d failed, %d no match\n",
			result.Resolution.UniqueKeys, result.Resolution.Calls,
			result.Resolution.Resolved, result.Resolution.Failed, result.Resolution.NoMatch)
		fmt.Printf("  outputs:         %s, %s\n", cfg.OutputCSV, cfg.OutputGeoJSON)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichState, "state", "", "2-letter state filter (overrides STATE_FILTER)")
}

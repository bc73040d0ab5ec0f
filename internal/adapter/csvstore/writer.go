package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/maltlab/brewmap/internal/domain"
)

var enrichedHeader = []string{
	"beer_id", "beer_name", "abv", "ibu", "style",
	"brewery_id", "brewery_name", "city", "state",
	"lat", "lon", "rating", "review_count", "processed_at",
}

// WriteEnriched writes the enriched dataset to path, creating parent
// directories as needed. Rows without coordinates are retained with empty
// lat/lon fields; only the map output excludes them.
func WriteEnriched(path string, records []domain.EnrichedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(enrichedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		if err := w.Write(enrichedRow(rec)); err != nil {
			return fmt.Errorf("write row for beer %d: %w", rec.BeerID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func enrichedRow(rec domain.EnrichedRecord) []string {
	lat, lon := "", ""
	if rec.Geo != nil {
		lat = strconv.FormatFloat(rec.Geo.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(rec.Geo.Lon, 'f', -1, 64)
	}
	rating, reviewCount := "", ""
	if rec.Review != nil {
		rating = strconv.FormatFloat(rec.Review.Rating, 'f', -1, 64)
		reviewCount = strconv.Itoa(rec.Review.ReviewCount)
	}

	return []string{
		strconv.Itoa(rec.BeerID),
		rec.BeerName,
		strconv.FormatFloat(rec.ABV, 'f', -1, 64),
		strconv.FormatFloat(rec.IBU, 'f', -1, 64),
		rec.Style,
		strconv.Itoa(rec.BreweryID),
		rec.BreweryName,
		rec.City,
		rec.State,
		lat,
		lon,
		rating,
		reviewCount,
		rec.ProcessedAt.UTC().Format(time.RFC3339),
	}
}

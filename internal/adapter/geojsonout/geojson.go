// Package geojsonout renders enriched records as a GeoJSON
// FeatureCollection for consumption by an external map renderer.
package geojsonout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/maltlab/brewmap/internal/domain"
)

// BuildFeatureCollection converts records into point features, one per beer
// row. Records without coordinates are excluded from the map output; they
// remain in the enriched CSV.
func BuildFeatureCollection(records []domain.EnrichedRecord) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}

	for _, rec := range records {
		if rec.Geo == nil {
			continue
		}

		props := map[string]interface{}{
			"beer_name":    rec.BeerName,
			"style":        rec.Style,
			"abv":          rec.ABV,
			"ibu":          rec.IBU,
			"brewery_name": rec.BreweryName,
			"city":         rec.City,
			"state":        rec.State,
		}
		if rec.Review != nil {
			props["rating"] = rec.Review.Rating
			props["review_count"] = rec.Review.ReviewCount
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(rec.BeerID),
			Geometry:   geom.NewPointFlat(geom.XY, []float64{rec.Geo.Lon, rec.Geo.Lat}).SetSRID(4326),
			Properties: props,
		})
	}

	return fc
}

// WriteFile marshals the records to a GeoJSON file, creating parent
// directories as needed.
func WriteFile(path string, records []domain.EnrichedRecord) error {
	fc := BuildFeatureCollection(records)

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Package resolver maps collections of place keys to coordinates with
// at-most-one external geocoding lookup per distinct key.
package resolver

import (
	"context"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/maltlab/brewmap/internal/domain"
)

// Report summarizes one resolution pass.
type Report struct {
	UniqueKeys int // distinct place keys seen in the input
	Calls      int // external geocoding calls issued
	Resolved   int // keys that resolved to coordinates
	Failed     int // keys whose lookup errored
	NoMatch    int // keys the provider found no location for
}

// PlaceResolver deduplicates place lookups within a single enrichment pass.
// The mapping it builds lives only for that pass; construct a fresh resolver
// per run.
type PlaceResolver struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	progress bool
}

// New creates a PlaceResolver. Pass a nil geocoder to disable resolution
// entirely (ResolveAll then returns an empty mapping).
func New(geocoder domain.Geocoder, logger *slog.Logger) *PlaceResolver {
	return &PlaceResolver{
		geocoder: geocoder,
		logger:   logger,
		progress: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// ResolveAll resolves every distinct place in the input to coordinates,
// calling the geocoder exactly once per unique key in first-occurrence
// order. Keys whose lookup fails or matches nothing are absent from the
// returned mapping; failures never abort resolution of the remaining keys.
func (r *PlaceResolver) ResolveAll(ctx context.Context, places []domain.Place) (map[domain.PlaceKey]domain.GeoResult, Report) {
	unique := dedupe(places)
	report := Report{UniqueKeys: len(unique)}
	mapping := make(map[domain.PlaceKey]domain.GeoResult, len(unique))

	if r.geocoder == nil || len(unique) == 0 {
		return mapping, report
	}

	var bar *progressbar.ProgressBar
	if r.progress {
		bar = progressbar.NewOptions(len(unique),
			progressbar.OptionSetDescription("Resolving places"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, place := range unique {
		if ctx.Err() != nil {
			r.logger.Info("place resolution cancelled", "resolved", report.Resolved, "remaining", report.UniqueKeys-report.Calls)
			break
		}

		key := place.Key()
		result, err := r.geocoder.ForwardGeocode(ctx, place.City, place.State)
		report.Calls++
		if bar != nil {
			_ = bar.Add(1)
		}

		if err != nil {
			// A failed lookup marks the key unresolved for the rest of
			// the run; rows sharing it simply lack coordinates.
			r.logger.Warn("place resolution failed",
				"place", string(key),
				"error", err,
			)
			report.Failed++
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			r.logger.Debug("place not found", "place", string(key))
			report.NoMatch++
			continue
		}

		mapping[key] = result
		report.Resolved++
	}

	return mapping, report
}

// Broadcast projects resolved coordinates onto every record whose place key
// is present in the mapping. Records are looked up, never re-queried, so all
// rows sharing a key receive the identical result.
func Broadcast(records []domain.EnrichedRecord, mapping map[domain.PlaceKey]domain.GeoResult) {
	for i := range records {
		if geo, ok := mapping[records[i].Place().Key()]; ok {
			g := geo
			records[i].Geo = &g
		}
	}
}

// dedupe returns the distinct places in first-occurrence order. Order does
// not affect correctness but keeps runs reproducible.
func dedupe(places []domain.Place) []domain.Place {
	seen := make(map[domain.PlaceKey]struct{}, len(places))
	unique := make([]domain.Place, 0, len(places))
	for _, p := range places {
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

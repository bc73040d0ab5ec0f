package pipeline

import (
	"context"
	"log/slog"

	"github.com/maltlab/brewmap/internal/domain"
)

// fetchReviews enriches records with review data, calling the provider at
// most once per unique brewery+place combination and broadcasting the
// result to every record of that brewery. Failed lookups leave the records
// without review data; they never abort the pass.
func (p *Pipeline) fetchReviews(ctx context.Context, records []domain.EnrichedRecord, result *Result, logger *slog.Logger) {
	if p.reviews == nil {
		return
	}

	type comboKey struct {
		brewery string
		place   domain.PlaceKey
	}

	cache := make(map[comboKey]*domain.ReviewResult)
	for i := range records {
		rec := &records[i]
		key := comboKey{brewery: rec.BreweryName, place: rec.Place().Key()}

		review, seen := cache[key]
		if !seen {
			if ctx.Err() != nil {
				return
			}
			result.Reviews++
			fetched, err := p.reviews.FetchReviews(ctx, rec.BreweryName, string(key.place))
			switch {
			case err != nil:
				logger.Warn("review lookup failed",
					"brewery", rec.BreweryName,
					"place", string(key.place),
					"error", err,
				)
				review = nil
			case fetched == (domain.ReviewResult{}):
				review = nil
			default:
				review = &fetched
			}
			cache[key] = review
		}

		if review != nil {
			r := *review
			rec.Review = &r
		}
	}
}

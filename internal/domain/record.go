package domain

import "time"

// RawBeerRow is a beers.csv row before parsing. All fields are the raw
// column strings; empty and "NA" values are handled during parsing.
type RawBeerRow struct {
	ID        string
	Name      string
	ABV       string
	IBU       string
	Style     string
	BreweryID string
}

// RawBreweryRow is a breweries.csv row before parsing.
type RawBreweryRow struct {
	ID    string
	Name  string
	City  string
	State string
}

// Beer is a cleaned beverage entry. IBU is nil when the source row had no
// bitterness value; such rows never reach the enrichment phase.
type Beer struct {
	ID        int
	Name      string
	ABV       float64 // percent, e.g. 6.6
	IBU       *float64
	Style     string
	BreweryID int
}

// Brewery is a cleaned brewery entry. Geo stays nil until the resolution
// phase populates it and is never modified afterward.
type Brewery struct {
	ID    int
	Name  string
	City  string
	State string // canonical 2-letter code
	Geo   *GeoResult
}

// ReviewResult holds review data returned by a review provider.
type ReviewResult struct {
	Rating      float64
	ReviewCount int
	URL         string
}

// EnrichedRecord is one beer joined to its brewery, carrying the derived
// coordinate and review fields. This is the row shape written to the
// enriched CSV and, when coordinates are present, to the GeoJSON output.
type EnrichedRecord struct {
	BeerID      int
	BeerName    string
	ABV         float64
	IBU         float64
	Style       string
	BreweryID   int
	BreweryName string
	City        string
	State       string

	Geo    *GeoResult
	Review *ReviewResult

	ProcessedAt time.Time
}

// Place returns the record's city/state pair for geocoding.
func (r EnrichedRecord) Place() Place {
	return Place{City: r.City, State: r.State}
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBeerRow converts a raw beers.csv row into a Beer.
// It returns an error when the identifier or brewery reference is not an
// integer; those rows cannot participate in the join and are skipped by the
// caller.
func ParseBeerRow(raw RawBeerRow) (Beer, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw.ID))
	if err != nil {
		return Beer{}, fmt.Errorf("parse beer id %q: %w", raw.ID, err)
	}
	breweryID, err := strconv.Atoi(strings.TrimSpace(raw.BreweryID))
	if err != nil {
		return Beer{}, fmt.Errorf("parse brewery ref %q for beer %d: %w", raw.BreweryID, id, err)
	}

	return Beer{
		ID:        id,
		Name:      strings.TrimSpace(raw.Name),
		ABV:       parseABV(raw.ABV),
		IBU:       parseIBU(raw.IBU),
		Style:     strings.TrimSpace(raw.Style),
		BreweryID: breweryID,
	}, nil
}

// ParseBreweryRow converts a raw breweries.csv row into a Brewery.
// Rows with a non-integer identifier or a state that does not normalize to a
// 2-letter code are rejected.
func ParseBreweryRow(raw RawBreweryRow) (Brewery, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw.ID))
	if err != nil {
		return Brewery{}, fmt.Errorf("parse brewery id %q: %w", raw.ID, err)
	}
	state, ok := NormalizeState(raw.State)
	if !ok {
		return Brewery{}, fmt.Errorf("brewery %d: invalid state %q", id, raw.State)
	}

	return Brewery{
		ID:    id,
		Name:  strings.TrimSpace(raw.Name),
		City:  strings.TrimSpace(raw.City),
		State: state,
	}, nil
}

// NormalizeState trims and uppercases a region code, accepting only exact
// 2-letter forms. The source data pads some codes with whitespace (" CA").
func NormalizeState(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return "", false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return s, true
}

// parseABV parses an alcohol-by-volume value, converting source fractions to
// percent. The dataset stores ABV as a fraction of one (0.066 = 6.6%); values
// above 1.0 are assumed to already be percentages.
func parseABV(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	if v <= 1.0 {
		return v * 100
	}
	return v
}

// parseIBU parses a bitterness value. Empty strings and the "NA" sentinel
// yield nil, marking the row for exclusion during cleaning.
func parseIBU(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CleanBeers drops beers without a bitterness value and reports how many
// were excluded. Excluded rows never trigger a geocoding call on their own.
func CleanBeers(beers []Beer) ([]Beer, int) {
	kept := make([]Beer, 0, len(beers))
	for _, b := range beers {
		if b.IBU == nil {
			continue
		}
		kept = append(kept, b)
	}
	return kept, len(beers) - len(kept)
}

// FilterBreweries keeps breweries in the given canonical state code. An
// empty state keeps everything.
func FilterBreweries(breweries []Brewery, state string) []Brewery {
	if state == "" {
		return breweries
	}
	kept := make([]Brewery, 0, len(breweries))
	for _, b := range breweries {
		if b.State == state {
			kept = append(kept, b)
		}
	}
	return kept
}

// JoinRecords joins each beer to its brewery, producing the enriched row
// shape. Beers whose brewery reference matches no brewery are dropped; the
// count of dropped rows is returned alongside the join.
func JoinRecords(beers []Beer, breweries []Brewery) ([]EnrichedRecord, int) {
	byID := make(map[int]Brewery, len(breweries))
	for _, br := range breweries {
		byID[br.ID] = br
	}

	records := make([]EnrichedRecord, 0, len(beers))
	dangling := 0
	now := clock.Now()
	for _, b := range beers {
		if b.IBU == nil {
			// CleanBeers runs first; tolerate uncleaned input anyway.
			continue
		}
		br, ok := byID[b.BreweryID]
		if !ok {
			dangling++
			continue
		}
		records = append(records, EnrichedRecord{
			BeerID:      b.ID,
			BeerName:    b.Name,
			ABV:         b.ABV,
			IBU:         *b.IBU,
			Style:       b.Style,
			BreweryID:   br.ID,
			BreweryName: br.Name,
			City:        br.City,
			State:       br.State,
			ProcessedAt: now,
		})
	}
	return records, dangling
}

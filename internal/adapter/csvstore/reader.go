// Package csvstore reads the beer and brewery CSV datasets and writes the
// enriched output CSV.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/maltlab/brewmap/internal/domain"
)

// ReadStats reports how many rows a read pass saw and skipped.
type ReadStats struct {
	Rows    int // data rows read, excluding the header
	Skipped int // rows dropped as malformed
}

// Store loads the source datasets from two CSV files. Malformed rows are
// logged and counted, never fatal.
type Store struct {
	beersPath     string
	breweriesPath string
	logger        *slog.Logger
}

// NewStore creates a CSV store over the given dataset paths.
func NewStore(beersPath, breweriesPath string, logger *slog.Logger) *Store {
	return &Store{
		beersPath:     beersPath,
		breweriesPath: breweriesPath,
		logger:        logger,
	}
}

// Beers loads beers.csv. Expected columns: id, name, abv, ibu, style,
// brewery_id; an unnamed leading index column is tolerated.
func (s *Store) Beers(_ context.Context) ([]domain.Beer, ReadStats, error) {
	var beers []domain.Beer
	stats, err := s.readRows(s.beersPath, []string{"name", "abv", "ibu", "style", "brewery_id"}, func(get func(string) string) error {
		beer, err := domain.ParseBeerRow(domain.RawBeerRow{
			ID:        get("id"),
			Name:      get("name"),
			ABV:       get("abv"),
			IBU:       get("ibu"),
			Style:     get("style"),
			BreweryID: get("brewery_id"),
		})
		if err != nil {
			return err
		}
		beers = append(beers, beer)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return beers, stats, nil
}

// Breweries loads breweries.csv. Expected columns: id, name, city, state.
// The public dataset carries the brewery identifier in an unnamed leading
// index column; when no "id" header exists that column is used.
func (s *Store) Breweries(_ context.Context) ([]domain.Brewery, ReadStats, error) {
	var breweries []domain.Brewery
	stats, err := s.readRows(s.breweriesPath, []string{"name", "city", "state"}, func(get func(string) string) error {
		brewery, err := domain.ParseBreweryRow(domain.RawBreweryRow{
			ID:    get("id"),
			Name:  get("name"),
			City:  get("city"),
			State: get("state"),
		})
		if err != nil {
			return err
		}
		breweries = append(breweries, brewery)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return breweries, stats, nil
}

// readRows streams a CSV file row by row, handing each row to parse via a
// header-name accessor. Rows that fail to parse are skipped and counted.
func (s *Store) readRows(path string, required []string, parse func(get func(string) string) error) (ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReadStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled as malformed, not fatal

	header, err := r.Read()
	if err != nil {
		return ReadStats{}, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols, err := mapColumns(header, required)
	if err != nil {
		return ReadStats{}, fmt.Errorf("%s: %w", path, err)
	}

	var stats ReadStats
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Skipped++
			s.logger.Warn("skipping malformed csv row", "file", path, "error", err)
			continue
		}
		stats.Rows++

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		if err := parse(get); err != nil {
			stats.Skipped++
			s.logger.Warn("skipping unparseable row", "file", path, "error", err)
		}
	}
	return stats, nil
}

// mapColumns resolves header names to indices, case-insensitively. A header
// whose first column is unnamed maps that column to "id" when no explicit id
// column exists (the public breweries dataset uses a bare index column).
func mapColumns(header, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		cols[name] = i
	}
	if _, ok := cols["id"]; !ok && len(header) > 0 && strings.TrimSpace(header[0]) == "" {
		cols["id"] = 0
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if _, ok := cols["id"]; !ok {
		missing = append(missing, "id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

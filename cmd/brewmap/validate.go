package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maltlab/brewmap/internal/domain"
)

var (
	validateBeers     string
	validateBreweries string
	validateEnriched  string
	validateGeoJSON   string
	validateState     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check enriched outputs against the source datasets",
	Long: `Performs end-to-end integrity checks across the source CSVs, the
enriched CSV, and the GeoJSON map layer: row provenance, exclusion rules,
coordinate consistency per place, and map layer alignment.

Usage:

  brewmap validate \
    --beers data/beers.csv --breweries data/breweries.csv \
    --enriched out/breweries_enriched.csv --geojson out/breweries.geojson`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if code := runValidation(); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateBeers, "beers", "data/beers.csv", "source beers CSV")
	validateCmd.Flags().StringVar(&validateBreweries, "breweries", "data/breweries.csv", "source breweries CSV")
	validateCmd.Flags().StringVar(&validateEnriched, "enriched", "out/breweries_enriched.csv", "enriched output CSV")
	validateCmd.Flags().StringVar(&validateGeoJSON, "geojson", "out/breweries.geojson", "GeoJSON map output")
	validateCmd.Flags().StringVar(&validateState, "state", "CA", "state filter the outputs were produced with")
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// enrichedRow is one parsed row of the enriched output CSV.
type enrichedRow struct {
	lineNum  int
	beerID   int
	city     string
	state    string
	ibu      string
	lat, lon string
}

func runValidation() int {
	fmt.Println("=== Brewmap Output Validation ===")
	fmt.Println()

	beers, breweries, err := loadSources()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	enriched, err := loadEnriched(validateEnriched)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load enriched CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateProvenance(enriched, beers, breweries),
		validateExclusions(enriched, beers),
		validateCoordinates(enriched),
		validateMapLayer(enriched),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d source beers, %d source breweries, %d enriched rows\n",
		len(beers), len(breweries), len(enriched))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// loadSources parses both source CSVs with the same domain rules the
// pipeline applies, so the validation sees what the pipeline saw.
func loadSources() (map[int]domain.Beer, map[int]domain.Brewery, error) {
	beerRows, err := loadCSV(validateBeers)
	if err != nil {
		return nil, nil, fmt.Errorf("load beers CSV: %w", err)
	}
	beers := map[int]domain.Beer{}
	for _, row := range beerRows {
		b, err := domain.ParseBeerRow(domain.RawBeerRow{
			ID: row["id"], Name: row["name"], ABV: row["abv"], IBU: row["ibu"],
			Style: row["style"], BreweryID: row["brewery_id"],
		})
		if err != nil {
			continue
		}
		beers[b.ID] = b
	}

	breweryRows, err := loadCSV(validateBreweries)
	if err != nil {
		return nil, nil, fmt.Errorf("load breweries CSV: %w", err)
	}
	breweries := map[int]domain.Brewery{}
	for _, row := range breweryRows {
		br, err := domain.ParseBreweryRow(domain.RawBreweryRow{
			ID: row["id"], Name: row["name"], City: row["city"], State: row["state"],
		})
		if err != nil {
			continue
		}
		breweries[br.ID] = br
	}
	return beers, breweries, nil
}

// loadCSV reads a CSV into rows keyed by header name. An unnamed first
// column maps to "id", matching the public dataset's index column.
func loadCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	if header[0] == "" {
		header[0] = "id"
	}
	var rows []map[string]string
	for _, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = row[j]
			}
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

func loadEnriched(path string) ([]enrichedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 1 {
		return nil, fmt.Errorf("missing header in %s", path)
	}

	col := map[string]int{}
	for i, h := range all[0] {
		col[h] = i
	}
	for _, name := range []string{"beer_id", "city", "state", "ibu", "lat", "lon"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("enriched CSV missing column %q", name)
		}
	}

	var rows []enrichedRow
	for i, row := range all[1:] {
		id, err := strconv.Atoi(row[col["beer_id"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad beer_id %q", i+2, row[col["beer_id"]])
		}
		rows = append(rows, enrichedRow{
			lineNum: i + 2,
			beerID:  id,
			city:    row[col["city"]],
			state:   row[col["state"]],
			ibu:     row[col["ibu"]],
			lat:     row[col["lat"]],
			lon:     row[col["lon"]],
		})
	}
	return rows, nil
}

// validateProvenance checks every enriched row traces back to a source beer
// whose brewery exists and sits in the configured state.
func validateProvenance(enriched []enrichedRow, beers map[int]domain.Beer, breweries map[int]domain.Brewery) *phase {
	p := &phase{name: "Phase 1: Provenance (enriched vs sources)"}

	for _, row := range enriched {
		beer, ok := beers[row.beerID]
		if !ok {
			p.errorf("line %d: beer %d not found in source CSV", row.lineNum, row.beerID)
			continue
		}
		brewery, ok := breweries[beer.BreweryID]
		if !ok {
			p.errorf("line %d: beer %d references missing brewery %d", row.lineNum, row.beerID, beer.BreweryID)
			continue
		}
		if row.state != brewery.State {
			p.errorf("line %d: state %q does not match brewery state %q", row.lineNum, row.state, brewery.State)
		}
		if validateState != "" && row.state != validateState {
			p.errorf("line %d: state %q outside filter %q", row.lineNum, row.state, validateState)
		}
	}
	return p
}

// validateExclusions checks that no beer without a bitterness value reached
// the enriched output.
func validateExclusions(enriched []enrichedRow, beers map[int]domain.Beer) *phase {
	p := &phase{name: "Phase 2: Exclusion rules (missing IBU)"}

	for _, row := range enriched {
		if row.ibu == "" {
			p.errorf("line %d: beer %d has empty IBU in the enriched output", row.lineNum, row.beerID)
		}
		if beer, ok := beers[row.beerID]; ok && beer.IBU == nil {
			p.errorf("line %d: beer %d has no source IBU and should have been excluded", row.lineNum, row.beerID)
		}
	}
	return p
}

// validateCoordinates checks that all rows sharing a place carry identical
// coordinates, the referential consistency the resolver guarantees.
func validateCoordinates(enriched []enrichedRow) *phase {
	p := &phase{name: "Phase 3: Coordinate consistency per place"}

	type coords struct{ lat, lon string }
	byPlace := map[domain.PlaceKey]coords{}
	for _, row := range enriched {
		if row.lat == "" && row.lon == "" {
			continue
		}
		if (row.lat == "") != (row.lon == "") {
			p.errorf("line %d: partial coordinates lat=%q lon=%q", row.lineNum, row.lat, row.lon)
			continue
		}
		if _, err := strconv.ParseFloat(row.lat, 64); err != nil {
			p.errorf("line %d: bad latitude %q", row.lineNum, row.lat)
		}
		if _, err := strconv.ParseFloat(row.lon, 64); err != nil {
			p.errorf("line %d: bad longitude %q", row.lineNum, row.lon)
		}

		key := domain.Place{City: row.city, State: row.state}.Key()
		c := coords{row.lat, row.lon}
		if prev, seen := byPlace[key]; seen && prev != c {
			p.errorf("line %d: place %q has coordinates (%s, %s) but earlier rows have (%s, %s)",
				row.lineNum, string(key), row.lat, row.lon, prev.lat, prev.lon)
			continue
		}
		byPlace[key] = c
	}
	return p
}

// validateMapLayer checks the GeoJSON output holds exactly the rows with
// coordinates and that feature coordinates match the CSV.
func validateMapLayer(enriched []enrichedRow) *phase {
	p := &phase{name: "Phase 4: Map layer alignment (GeoJSON)"}

	data, err := os.ReadFile(validateGeoJSON)
	if err != nil {
		p.errorf("load GeoJSON: %v", err)
		return p
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		p.errorf("parse GeoJSON: %v", err)
		return p
	}
	if fc.Type != "FeatureCollection" {
		p.errorf("type is %q, expected FeatureCollection", fc.Type)
	}

	withCoords := map[int]enrichedRow{}
	for _, row := range enriched {
		if row.lat != "" && row.lon != "" {
			withCoords[row.beerID] = row
		}
	}
	if len(fc.Features) != len(withCoords) {
		p.errorf("feature count %d does not match %d rows with coordinates", len(fc.Features), len(withCoords))
	}

	for i, feat := range fc.Features {
		id, err := strconv.Atoi(feat.ID)
		if err != nil {
			p.errorf("feature %d: non-numeric id %q", i, feat.ID)
			continue
		}
		row, ok := withCoords[id]
		if !ok {
			p.errorf("feature %d: beer %d has no coordinates in the enriched CSV", i, id)
			continue
		}
		if len(feat.Geometry.Coordinates) < 2 {
			p.errorf("feature %d: malformed coordinates", i)
			continue
		}
		lat, _ := strconv.ParseFloat(row.lat, 64)
		lon, _ := strconv.ParseFloat(row.lon, 64)
		if !floatEq(feat.Geometry.Coordinates[0], lon) || !floatEq(feat.Geometry.Coordinates[1], lat) {
			p.errorf("feature %d: coordinates (%g, %g) do not match CSV (%g, %g)",
				i, feat.Geometry.Coordinates[0], feat.Geometry.Coordinates[1], lon, lat)
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maltlab/brewmap/internal/domain"
)

var gensampleDir string

// Sample rows mirror the quirks of the public dataset: an unnamed index
// column, fractional ABV, "NA" and empty IBU values, and padded state codes.
var (
	sampleBeerRows = [][]string{
		{"0", "0.05", "18", "1436", "Pub Beer", "American Pale Lager", "408"},
		{"1", "0.066", "", "2265", "Dale's Pale Ale", "American Pale Ale (APA)", "177"},
		{"2", "0.07", "70", "2262", "Sculpin", "American IPA", "154"},
		{"3", "0.07", "70", "2263", "Grapefruit Sculpin", "American IPA", "154"},
		{"4", "0.056", "38", "1001", "Pale Ale", "American Pale Ale (APA)", "301"},
		{"5", "0.049", "NA", "1002", "Summer Ale", "American Blonde Ale", "301"},
		{"6", "0.08", "85", "1003", "Hop Stoopid", "American Double IPA", "302"},
		{"7", "0.055", "35", "1004", "Orphan Ale", "American Amber", "999"},
	}
	sampleBreweryRows = [][]string{
		{"154", "Ballast Point Brewing Company", "San Diego", " CA"},
		{"177", "Oskar Blues Brewery", "Longmont", " CO"},
		{"301", "Sierra Nevada Brewing Co.", "Chico", " CA"},
		{"302", "Lagunitas Brewing Company", "Petaluma", " CA"},
		{"408", "10 Barrel Brewing Company", "Bend", " OR"},
	}
)

var gensampleCmd = &cobra.Command{
	Use:   "gensample",
	Short: "Generate sample source CSV files for local runs",
	Long: `Writes small beers.csv and breweries.csv files shaped like the public
dataset, including its quirks: the unnamed index column, fractional ABV
values, "NA" bitterness entries, and whitespace-padded state codes.

Usage:

  brewmap gensample --dir data
  BEERS_CSV=data/beers.csv BREWERIES_CSV=data/breweries.csv brewmap enrich`,
	RunE: func(_ *cobra.Command, _ []string) error {
		beersPath := filepath.Join(gensampleDir, "beers.csv")
		breweriesPath := filepath.Join(gensampleDir, "breweries.csv")

		if err := writeSampleCSV(beersPath,
			[]string{"", "abv", "ibu", "id", "name", "style", "brewery_id"}, sampleBeerRows); err != nil {
			return fmt.Errorf("writing %s: %w", beersPath, err)
		}
		if err := writeSampleCSV(breweriesPath,
			[]string{"", "name", "city", "state"}, sampleBreweryRows); err != nil {
			return fmt.Errorf("writing %s: %w", breweriesPath, err)
		}

		fmt.Printf("wrote %s (%d beers) and %s (%d breweries)\n",
			beersPath, len(sampleBeerRows), breweriesPath, len(sampleBreweryRows))
		printSampleStats()
		return nil
	},
}

func init() {
	gensampleCmd.Flags().StringVar(&gensampleDir, "dir", "data", "output directory for the sample CSV files")
}

func writeSampleCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// printSampleStats runs the actual cleaning and join over the sample data so
// the printed counts can seed test assertions.
func printSampleStats() {
	var beers []domain.Beer
	for _, row := range sampleBeerRows {
		b, err := domain.ParseBeerRow(domain.RawBeerRow{
			ID: row[3], Name: row[4], ABV: row[1], IBU: row[2], Style: row[5], BreweryID: row[6],
		})
		if err != nil {
			continue
		}
		beers = append(beers, b)
	}
	var breweries []domain.Brewery
	for _, row := range sampleBreweryRows {
		br, err := domain.ParseBreweryRow(domain.RawBreweryRow{
			ID: row[0], Name: row[1], City: row[2], State: row[3],
		})
		if err != nil {
			continue
		}
		breweries = append(breweries, br)
	}

	cleaned, excluded := domain.CleanBeers(beers)
	filtered := domain.FilterBreweries(breweries, "CA")
	records, dangling := domain.JoinRecords(cleaned, filtered)

	places := map[domain.PlaceKey]struct{}{}
	for _, rec := range records {
		places[rec.Place().Key()] = struct{}{}
	}

	fmt.Println("\n=== Stats for updating test assertions (CA filter) ===")
	fmt.Printf("beers: %d total, %d excluded missing IBU\n", len(beers), excluded)
	fmt.Printf("breweries: %d total, %d in CA\n", len(breweries), len(filtered))
	fmt.Printf("joined records: %d (%d dangling)\n", len(records), dangling)
	fmt.Printf("unique places: %d\n", len(places))
}

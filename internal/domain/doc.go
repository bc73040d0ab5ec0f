// Package domain models the craft beer and brewery datasets and the
// cleaning rules applied before enrichment.
//
// # Data Source
//
// The input is the public "craft beers" dataset: two UTF-8 CSV files with a
// header row. beers.csv carries one row per beverage (id, name, abv, ibu,
// style, brewery_id) and breweries.csv one row per brewery (id, name, city,
// state).
//
// # Dataset Conventions
//
// ABV:
//
//	Stored as a fraction of one in the source data (0.066 = 6.6% alcohol by
//	volume). Parsed values at or below 1.0 are converted to percent; values
//	above 1.0 are assumed to already be percentages and pass through.
//
// IBU:
//
//	International bitterness units. Roughly 40% of rows have no IBU value
//	(empty or "NA"). Rows without an IBU are excluded from the enriched
//	dataset before any external lookup happens; they are data gaps, not
//	errors.
//
// State codes:
//
//	Two-letter USPS abbreviations, sometimes padded with whitespace
//	(" CA"). Normalized to canonical uppercase 2-character form before
//	building place keys. Rows whose state does not normalize are dropped.
//
// # Place Keys
//
// A PlaceKey is the normalized "city, ST" string used to deduplicate
// geocoding lookups: city lowercased with interior whitespace collapsed,
// state uppercased. Every brewery row sharing a PlaceKey receives the
// identical geocoding result, resolved at most once per run.
package domain

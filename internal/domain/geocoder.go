package domain

import "context"

// Geocoder resolves a place to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a city and state to coordinates. A provider
	// that finds no match returns a zero GeoResult and a nil error; errors
	// are reserved for transport and API failures.
	ForwardGeocode(ctx context.Context, city, state string) (GeoResult, error)
}

// ReviewProvider fetches review data for a business at a place.
type ReviewProvider interface {
	// FetchReviews looks up review data for a business name near the given
	// place string ("city, ST"). A provider that finds no match returns a
	// zero ReviewResult and a nil error.
	FetchReviews(ctx context.Context, name, place string) (ReviewResult, error)
}

package domain

import "strings"

// PlaceKey is the normalized "city, ST" string used as the geocoding cache
// key. Build one with Place.Key rather than by hand so equal places always
// produce equal keys.
type PlaceKey string

// Place is a city/state pair as it appears on a brewery row.
type Place struct {
	City  string
	State string
}

// Key normalizes the place into its cache key: city lowercased with interior
// whitespace collapsed, state uppercased.
func (p Place) Key() PlaceKey {
	city := strings.ToLower(strings.Join(strings.Fields(p.City), " "))
	state := strings.ToUpper(strings.TrimSpace(p.State))
	return PlaceKey(city + ", " + state)
}

// GeoResult is a resolved coordinate pair for a PlaceKey.
type GeoResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

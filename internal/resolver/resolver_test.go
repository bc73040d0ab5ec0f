package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltlab/brewmap/internal/domain"
)

// --- fake geocoder ---

// fakeGeocoder records every call and serves canned results keyed by
// "city|state".
type fakeGeocoder struct {
	results map[string]domain.GeoResult
	errs    map[string]error
	calls   []string
}

func (f *fakeGeocoder) ForwardGeocode(_ context.Context, city, state string) (domain.GeoResult, error) {
	key := city + "|" + state
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return domain.GeoResult{}, err
	}
	return f.results[key], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func repeat(place domain.Place, n int) []domain.Place {
	places := make([]domain.Place, n)
	for i := range places {
		places[i] = place
	}
	return places
}

// --- tests ---

func TestResolveAll_OneCallPerDistinctKey(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]domain.GeoResult{
		"San Diego|CA": {Lat: 32.7157, Lon: -117.1611},
		"Chico|CA":     {Lat: 39.7285, Lon: -121.8375},
	}}
	r := New(geo, discardLogger())

	// 10 San Diego rows and 3 Chico rows must produce exactly 2 calls.
	places := append(repeat(domain.Place{City: "San Diego", State: "CA"}, 10),
		repeat(domain.Place{City: "Chico", State: "CA"}, 3)...)

	mapping, report := r.ResolveAll(context.Background(), places)

	assert.Len(t, geo.calls, 2)
	assert.Equal(t, 2, report.UniqueKeys)
	assert.Equal(t, 2, report.Calls)
	assert.Equal(t, 2, report.Resolved)

	sd := mapping[domain.Place{City: "San Diego", State: "CA"}.Key()]
	chico := mapping[domain.Place{City: "Chico", State: "CA"}.Key()]
	assert.Equal(t, 32.7157, sd.Lat)
	assert.Equal(t, 39.7285, chico.Lat)
	assert.NotEqual(t, sd, chico)
}

func TestResolveAll_CaseInsensitiveDedupe(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]domain.GeoResult{}}
	r := New(geo, discardLogger())

	places := []domain.Place{
		{City: "San Diego", State: "CA"},
		{City: "SAN DIEGO", State: "ca"},
		{City: "san  diego", State: "CA"},
	}

	_, report := r.ResolveAll(context.Background(), places)

	assert.Equal(t, 1, report.UniqueKeys)
	assert.Len(t, geo.calls, 1)
}

func TestResolveAll_FirstOccurrenceOrder(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]domain.GeoResult{}}
	r := New(geo, discardLogger())

	places := []domain.Place{
		{City: "Chico", State: "CA"},
		{City: "San Diego", State: "CA"},
		{City: "Chico", State: "CA"},
		{City: "Fresno", State: "CA"},
	}

	r.ResolveAll(context.Background(), places)

	assert.Equal(t, []string{"Chico|CA", "San Diego|CA", "Fresno|CA"}, geo.calls)
}

func TestResolveAll_FailedKeyAbsent_OthersContinue(t *testing.T) {
	geo := &fakeGeocoder{
		results: map[string]domain.GeoResult{
			"Chico|CA": {Lat: 39.7285, Lon: -121.8375},
		},
		errs: map[string]error{
			"San Diego|CA": errors.New("API timeout"),
		},
	}
	r := New(geo, discardLogger())

	places := []domain.Place{
		{City: "San Diego", State: "CA"},
		{City: "Chico", State: "CA"},
	}

	mapping, report := r.ResolveAll(context.Background(), places)

	assert.Len(t, mapping, 1)
	assert.NotContains(t, mapping, domain.Place{City: "San Diego", State: "CA"}.Key())
	assert.Contains(t, mapping, domain.Place{City: "Chico", State: "CA"}.Key())
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 2, report.Calls)
}

func TestResolveAll_NoMatchAbsent(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]domain.GeoResult{}} // zero result = no match
	r := New(geo, discardLogger())

	mapping, report := r.ResolveAll(context.Background(), []domain.Place{{City: "Nowhereville", State: "CA"}})

	assert.Empty(t, mapping)
	assert.Equal(t, 1, report.NoMatch)
}

func TestResolveAll_NilGeocoder(t *testing.T) {
	r := New(nil, discardLogger())

	mapping, report := r.ResolveAll(context.Background(), []domain.Place{{City: "Chico", State: "CA"}})

	assert.Empty(t, mapping)
	assert.Equal(t, 1, report.UniqueKeys)
	assert.Zero(t, report.Calls)
}

func TestResolveAll_IdempotentAcrossRuns(t *testing.T) {
	results := map[string]domain.GeoResult{
		"San Diego|CA": {Lat: 32.7157, Lon: -117.1611},
		"Chico|CA":     {Lat: 39.7285, Lon: -121.8375},
	}
	places := []domain.Place{
		{City: "San Diego", State: "CA"},
		{City: "Chico", State: "CA"},
	}

	first, _ := New(&fakeGeocoder{results: results}, discardLogger()).ResolveAll(context.Background(), places)
	second, _ := New(&fakeGeocoder{results: results}, discardLogger()).ResolveAll(context.Background(), places)

	assert.Equal(t, first, second)
}

func TestResolveAll_CancelledContextStopsEarly(t *testing.T) {
	geo := &fakeGeocoder{results: map[string]domain.GeoResult{}}
	r := New(geo, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mapping, report := r.ResolveAll(ctx, []domain.Place{{City: "Chico", State: "CA"}})

	assert.Empty(t, mapping)
	assert.Zero(t, report.Calls)
}

func TestBroadcast_ReferentialConsistency(t *testing.T) {
	records := []domain.EnrichedRecord{
		{BeerID: 1, City: "San Diego", State: "CA"},
		{BeerID: 2, City: "SAN DIEGO", State: "CA"},
		{BeerID: 3, City: "Chico", State: "CA"},
		{BeerID: 4, City: "Eureka", State: "CA"}, // unresolved
	}
	mapping := map[domain.PlaceKey]domain.GeoResult{
		domain.Place{City: "San Diego", State: "CA"}.Key(): {Lat: 32.7157, Lon: -117.1611},
		domain.Place{City: "Chico", State: "CA"}.Key():     {Lat: 39.7285, Lon: -121.8375},
	}

	Broadcast(records, mapping)

	require.NotNil(t, records[0].Geo)
	require.NotNil(t, records[1].Geo)
	assert.Equal(t, *records[0].Geo, *records[1].Geo)

	require.NotNil(t, records[2].Geo)
	assert.NotEqual(t, *records[0].Geo, *records[2].Geo)

	assert.Nil(t, records[3].Geo, "unresolved key leaves coordinates absent")
}

func TestBroadcast_DoesNotShareResultPointers(t *testing.T) {
	records := []domain.EnrichedRecord{
		{BeerID: 1, City: "Chico", State: "CA"},
		{BeerID: 2, City: "Chico", State: "CA"},
	}
	mapping := map[domain.PlaceKey]domain.GeoResult{
		domain.Place{City: "Chico", State: "CA"}.Key(): {Lat: 39.7285, Lon: -121.8375},
	}

	Broadcast(records, mapping)

	require.NotNil(t, records[0].Geo)
	records[0].Geo.Lat = 0
	assert.Equal(t, 39.7285, records[1].Geo.Lat)
}

// Package pipeline orchestrates one enrichment pass over the beer and
// brewery datasets: extract, clean and join, resolve places, fetch reviews,
// and load the outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/maltlab/brewmap/internal/adapter/csvstore"
	"github.com/maltlab/brewmap/internal/domain"
	"github.com/maltlab/brewmap/internal/observability"
	"github.com/maltlab/brewmap/internal/resolver"
)

// DataSource loads the raw datasets.
type DataSource interface {
	Beers(ctx context.Context) ([]domain.Beer, csvstore.ReadStats, error)
	Breweries(ctx context.Context) ([]domain.Brewery, csvstore.ReadStats, error)
}

// Loader writes the enriched records to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, records []domain.EnrichedRecord) error
}

// Result summarizes one enrichment run.
type Result struct {
	RunID string

	BeersRead     int
	BreweriesRead int
	ExcludedIBU   int // beers dropped for missing bitterness
	ExcludedState int // breweries outside the state filter
	DanglingRefs  int // beers whose brewery reference did not join
	Records       int // enriched rows produced

	Resolution resolver.Report
	WithCoords int // rows that received coordinates
	Reviews    int // unique brewery+place review lookups issued

	Duration time.Duration
}

// Pipeline runs enrichment passes and retains the latest result for the
// serve endpoints.
type Pipeline struct {
	source   DataSource
	resolver *resolver.PlaceResolver
	reviews  domain.ReviewProvider
	loaders  []Loader

	stateFilter string
	logger      *slog.Logger
	metrics     *observability.Metrics

	ready atomic.Bool

	mu          sync.RWMutex
	lastRecords []domain.EnrichedRecord
	lastResult  *Result
}

// New creates a Pipeline. Pass a nil reviews provider to skip review
// enrichment.
func New(source DataSource, res *resolver.PlaceResolver, reviews domain.ReviewProvider, loaders []Loader, stateFilter string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      source,
		resolver:    res,
		reviews:     reviews,
		loaders:     loaders,
		stateFilter: stateFilter,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// enrichment pass.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no enrichment pass has completed yet")
	}
	return nil
}

// Snapshot returns the records and result of the most recent run, or nil
// before the first completed pass.
func (p *Pipeline) Snapshot() ([]domain.EnrichedRecord, *Result) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRecords, p.lastResult
}

// Run executes one enrichment pass. Failures of individual geocode or
// review lookups are local to their key; a loader failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", result.RunID)

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	records, err := p.buildRecords(ctx, result, logger)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	p.resolvePlaces(ctx, records, result, logger)
	p.fetchReviews(ctx, records, result, logger)

	for _, loader := range p.loaders {
		if err := loader.Load(ctx, records); err != nil {
			p.metrics.RunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("load %s: %w", loader.Name(), err)
		}
		logger.Info("output written", "loader", loader.Name(), "records", len(records))
	}

	result.Duration = time.Since(start)
	p.metrics.EnrichmentDuration.Observe(result.Duration.Seconds())
	p.metrics.RunsTotal.WithLabelValues("success").Inc()

	p.mu.Lock()
	p.lastRecords = records
	p.lastResult = result
	p.mu.Unlock()
	p.ready.Store(true)

	logger.Info("enrichment pass complete",
		"records", result.Records,
		"unique_places", result.Resolution.UniqueKeys,
		"resolved", result.Resolution.Resolved,
		"with_coords", result.WithCoords,
		"duration", result.Duration,
	)
	return result, nil
}

// buildRecords extracts both datasets, cleans them, and joins beers to
// breweries.
func (p *Pipeline) buildRecords(ctx context.Context, result *Result, logger *slog.Logger) ([]domain.EnrichedRecord, error) {
	beers, beerStats, err := p.source.Beers(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract beers: %w", err)
	}
	breweries, breweryStats, err := p.source.Breweries(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract breweries: %w", err)
	}

	result.BeersRead = beerStats.Rows
	result.BreweriesRead = breweryStats.Rows
	p.metrics.RowsLoaded.WithLabelValues("beers").Add(float64(beerStats.Rows))
	p.metrics.RowsLoaded.WithLabelValues("breweries").Add(float64(breweryStats.Rows))
	p.metrics.RowsExcluded.WithLabelValues("bad_row").Add(float64(beerStats.Skipped + breweryStats.Skipped))

	cleaned, excludedIBU := domain.CleanBeers(beers)
	result.ExcludedIBU = excludedIBU
	p.metrics.RowsExcluded.WithLabelValues("missing_ibu").Add(float64(excludedIBU))

	filtered := domain.FilterBreweries(breweries, p.stateFilter)
	result.ExcludedState = len(breweries) - len(filtered)
	p.metrics.RowsExcluded.WithLabelValues("out_of_state").Add(float64(result.ExcludedState))

	records, dangling := domain.JoinRecords(cleaned, filtered)
	result.DanglingRefs = dangling
	result.Records = len(records)
	p.metrics.RowsExcluded.WithLabelValues("dangling_ref").Add(float64(dangling))

	logger.Info("datasets joined",
		"beers", beerStats.Rows,
		"breweries", breweryStats.Rows,
		"excluded_missing_ibu", excludedIBU,
		"excluded_out_of_state", result.ExcludedState,
		"dangling_refs", dangling,
		"records", len(records),
	)
	return records, nil
}

// resolvePlaces runs the unique-key resolution pass and broadcasts the
// mapping onto the records.
func (p *Pipeline) resolvePlaces(ctx context.Context, records []domain.EnrichedRecord, result *Result, logger *slog.Logger) {
	places := make([]domain.Place, len(records))
	for i, rec := range records {
		places[i] = rec.Place()
	}

	mapping, report := p.resolver.ResolveAll(ctx, places)
	resolver.Broadcast(records, mapping)

	result.Resolution = report
	for _, rec := range records {
		if rec.Geo != nil {
			result.WithCoords++
		}
	}

	p.metrics.UniquePlaces.Set(float64(report.UniqueKeys))
	p.metrics.PlacesResolved.Set(float64(report.Resolved))

	logger.Info("places resolved",
		"unique_keys", report.UniqueKeys,
		"calls", report.Calls,
		"resolved", report.Resolved,
		"failed", report.Failed,
		"no_match", report.NoMatch,
	)
}

package main

import (
	"github.com/maltlab/brewmap/internal/adapter/csvstore"
	kafkaadapter "github.com/maltlab/brewmap/internal/adapter/kafka"
	"github.com/maltlab/brewmap/internal/adapter/mapbox"
	"github.com/maltlab/brewmap/internal/adapter/yelp"
	"github.com/maltlab/brewmap/internal/domain"
	"github.com/maltlab/brewmap/internal/observability"
	"github.com/maltlab/brewmap/internal/pipeline"
	"github.com/maltlab/brewmap/internal/resolver"
)

// buildPipeline wires the configured adapters into a Pipeline. The returned
// cleanup closes any adapters holding connections and is safe to call once.
func buildPipeline(metrics *observability.Metrics) (*pipeline.Pipeline, func()) {
	store := csvstore.NewStore(cfg.BeersCSV, cfg.BreweriesCSV, logger)

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled; records keep empty coordinates")
	}

	var reviews domain.ReviewProvider
	if cfg.YelpEnabled {
		reviews = yelp.NewClient(cfg.YelpAPIKey, cfg.YelpTimeout, metrics, logger)
		logger.Info("yelp review enrichment enabled", "timeout", cfg.YelpTimeout)
	}

	loaders := []pipeline.Loader{
		pipeline.CSVLoader{Path: cfg.OutputCSV},
		pipeline.GeoJSONLoader{Path: cfg.OutputGeoJSON},
	}

	cleanup := func() {}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, pipeline.KafkaLoader{Writer: writer})
		cleanup = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	res := resolver.New(geocoder, logger)
	return pipeline.New(store, res, reviews, loaders, cfg.StateFilter, logger, metrics), cleanup
}

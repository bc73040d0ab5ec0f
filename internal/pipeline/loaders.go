package pipeline

import (
	"context"

	"github.com/maltlab/brewmap/internal/adapter/csvstore"
	"github.com/maltlab/brewmap/internal/adapter/geojsonout"
	"github.com/maltlab/brewmap/internal/adapter/kafka"
	"github.com/maltlab/brewmap/internal/domain"
)

// CSVLoader writes the enriched dataset to a CSV file.
type CSVLoader struct {
	Path string
}

func (l CSVLoader) Name() string { return "csv" }

func (l CSVLoader) Load(_ context.Context, records []domain.EnrichedRecord) error {
	return csvstore.WriteEnriched(l.Path, records)
}

// GeoJSONLoader writes the map output. Records without coordinates are
// excluded by the writer.
type GeoJSONLoader struct {
	Path string
}

func (l GeoJSONLoader) Name() string { return "geojson" }

func (l GeoJSONLoader) Load(_ context.Context, records []domain.EnrichedRecord) error {
	return geojsonout.WriteFile(l.Path, records)
}

// KafkaLoader publishes the enriched records to the sink topic.
type KafkaLoader struct {
	Writer *kafka.Writer
}

func (l KafkaLoader) Name() string { return "kafka" }

func (l KafkaLoader) Load(ctx context.Context, records []domain.EnrichedRecord) error {
	return l.Writer.PublishBatch(ctx, records)
}

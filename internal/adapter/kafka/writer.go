// Package kafka publishes enriched brewery records to a sink topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/maltlab/brewmap/internal/config"
	"github.com/maltlab/brewmap/internal/domain"
)

// Writer produces messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the enriched records to the sink
// topic in a single WriteMessages call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, records []domain.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// recordPayload is the JSON wire shape for an enriched record. Coordinate
// and review fields are omitted when unresolved.
type recordPayload struct {
	BeerID      int     `json:"beer_id"`
	BeerName    string  `json:"beer_name"`
	ABV         float64 `json:"abv"`
	IBU         float64 `json:"ibu"`
	Style       string  `json:"style"`
	BreweryID   int     `json:"brewery_id"`
	BreweryName string  `json:"brewery_name"`
	City        string  `json:"city"`
	State       string  `json:"state"`

	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// serializeToMessage marshals an enriched record into a Kafka message keyed
// by brewery so all of a brewery's beers land in one partition.
func serializeToMessage(rec domain.EnrichedRecord) (kafkago.Message, error) {
	payload := recordPayload{
		BeerID:      rec.BeerID,
		BeerName:    rec.BeerName,
		ABV:         rec.ABV,
		IBU:         rec.IBU,
		Style:       rec.Style,
		BreweryID:   rec.BreweryID,
		BreweryName: rec.BreweryName,
		City:        rec.City,
		State:       rec.State,
		ProcessedAt: rec.ProcessedAt,
	}
	if rec.Geo != nil {
		payload.Lat = &rec.Geo.Lat
		payload.Lon = &rec.Geo.Lon
	}
	if rec.Review != nil {
		payload.Rating = &rec.Review.Rating
		payload.ReviewCount = &rec.Review.ReviewCount
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record for beer %d: %w", rec.BeerID, err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%d", rec.BreweryID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(rec.State)},
			{Key: "processed_at", Value: []byte(rec.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

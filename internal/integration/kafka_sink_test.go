//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/maltlab/brewmap/internal/adapter/kafka"
	"github.com/maltlab/brewmap/internal/config"
	"github.com/maltlab/brewmap/internal/domain"
)

const testSinkTopic = "test-enriched-breweries"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("brewmap-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Payload map[string]any
	Key     string
	Headers map[string]string
}

func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload), "unmarshal sink message")

	return sinkMessage{Payload: payload, Key: string(msg.Key), Headers: headers}
}

func sampleRecords(processedAt time.Time) []domain.EnrichedRecord {
	return []domain.EnrichedRecord{
		{
			BeerID: 2262, BeerName: "Sculpin", ABV: 7.0, IBU: 70, Style: "American IPA",
			BreweryID: 154, BreweryName: "Ballast Point Brewing Company",
			City: "San Diego", State: "CA",
			Geo:         &domain.GeoResult{Lat: 32.7157, Lon: -117.1611},
			Review:      &domain.ReviewResult{Rating: 4.5, ReviewCount: 1280},
			ProcessedAt: processedAt,
		},
		{
			BeerID: 2263, BeerName: "Grapefruit Sculpin", ABV: 7.0, IBU: 70, Style: "American IPA",
			BreweryID: 154, BreweryName: "Ballast Point Brewing Company",
			City: "San Diego", State: "CA",
			Geo:         &domain.GeoResult{Lat: 32.7157, Lon: -117.1611},
			ProcessedAt: processedAt,
		},
		{
			BeerID: 1001, BeerName: "Pale Ale", ABV: 5.6, IBU: 38, Style: "American Pale Ale (APA)",
			BreweryID: 301, BreweryName: "Sierra Nevada Brewing Co.",
			City: "Chico", State: "CA",
			ProcessedAt: processedAt, // unresolved: no coordinates
		},
	}
}

// TestKafkaSinkPublishBatch verifies that the Kafka loader publishes every
// enriched record with the expected key, headers, and payload shape.
func TestKafkaSinkPublishBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	processedAt := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	records := sampleRecords(processedAt)

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishBatch(ctx, records))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]sinkMessage, 0, len(records))
	for len(received) < len(records) {
		received = append(received, readSink(ctx, t, consumer))
	}

	byBeer := map[float64]sinkMessage{}
	for _, sm := range received {
		assert.Equal(t, "CA", sm.Headers["state"])
		assert.Equal(t, processedAt.Format(time.RFC3339), sm.Headers["processed_at"])
		byBeer[sm.Payload["beer_id"].(float64)] = sm
	}
	require.Len(t, byBeer, 3)

	// All of a brewery's beers are keyed by the brewery id.
	sculpin := byBeer[2262]
	assert.Equal(t, "154", sculpin.Key)
	assert.Equal(t, "Sculpin", sculpin.Payload["beer_name"])
	assert.Equal(t, 32.7157, sculpin.Payload["lat"])
	assert.Equal(t, -117.1611, sculpin.Payload["lon"])
	assert.Equal(t, 4.5, sculpin.Payload["rating"])
	assert.Equal(t, byBeer[2263].Key, sculpin.Key)

	// Records without reviews omit the review fields.
	_, hasRating := byBeer[2263].Payload["rating"]
	assert.False(t, hasRating)

	// Unresolved records omit the coordinate fields entirely.
	paleAle := byBeer[1001]
	assert.Equal(t, "301", paleAle.Key)
	_, hasLat := paleAle.Payload["lat"]
	assert.False(t, hasLat, "unresolved record should not carry coordinates")

	// Verify no unexpected extra message arrives.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected exactly %d messages on the sink topic", len(records))
}

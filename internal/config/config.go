package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tool settings, populated from environment variables.
// A .env file in the working directory is loaded first when present.
type Config struct {
	BeersCSV     string
	BreweriesCSV string
	StateFilter  string // canonical 2-letter code, empty = all states

	OutputCSV     string
	OutputGeoJSON string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Yelp review enrichment configuration.
	YelpAPIKey  string
	YelpEnabled bool
	YelpTimeout time.Duration

	// Optional Kafka sink configuration.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	yelpTimeout, err := parseDuration("YELP_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	stateFilter := strings.ToUpper(envOrDefault("STATE_FILTER", "CA"))
	if stateFilter != "" && len(stateFilter) != 2 {
		return nil, errors.New("STATE_FILTER must be a 2-letter state code or empty")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	yelpKey := os.Getenv("YELP_API_KEY")
	yelpEnabled := yelpKey != ""
	if v := os.Getenv("YELP_ENABLED"); v != "" {
		yelpEnabled = v == "true"
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		BeersCSV:     envOrDefault("BEERS_CSV", "data/beers.csv"),
		BreweriesCSV: envOrDefault("BREWERIES_CSV", "data/breweries.csv"),
		StateFilter:  stateFilter,

		OutputCSV:     envOrDefault("OUTPUT_CSV", "out/breweries_enriched.csv"),
		OutputGeoJSON: envOrDefault("OUTPUT_GEOJSON", "out/breweries.geojson"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseCacheSize(),

		YelpAPIKey:  yelpKey,
		YelpEnabled: yelpEnabled,
		YelpTimeout: yelpTimeout,

		KafkaBrokers:   kafkaBrokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "enriched-breweries"),
		KafkaEnabled:   kafkaEnabled,
	}

	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.YelpEnabled && cfg.YelpAPIKey == "" {
		return nil, errors.New("YELP_ENABLED is true but YELP_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, part := range strings.Split(s, ",") {
		if b := strings.TrimSpace(part); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

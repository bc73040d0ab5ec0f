// Package yelp implements domain.ReviewProvider against the Yelp Fusion
// business search API.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/maltlab/brewmap/internal/domain"
	"github.com/maltlab/brewmap/internal/observability"
)

// Client implements domain.ReviewProvider using the Yelp Fusion API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Yelp review client with a per-call timeout.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.yelp.com/v3/businesses/search",
		metrics: metrics,
		logger:  logger,
	}
}

// FetchReviews looks up review data for a business name near a place string
// ("city, ST"). No match returns a zero ReviewResult and nil error.
func (c *Client) FetchReviews(ctx context.Context, name, place string) (domain.ReviewResult, error) {
	params := url.Values{
		"term":     {name},
		"location": {place},
		"limit":    {"1"},
	}

	start := time.Now()
	result, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.ReviewAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.ReviewRequests.WithLabelValues("error").Inc()
	case result == (domain.ReviewResult{}):
		c.metrics.ReviewRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.ReviewRequests.WithLabelValues("success").Inc()
	}

	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.ReviewResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("review request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.ReviewResult{}, fmt.Errorf("yelp API error: status %d: %s", resp.StatusCode, body)
	}

	var yelpResp response
	if err := json.NewDecoder(resp.Body).Decode(&yelpResp); err != nil {
		return domain.ReviewResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(yelpResp.Businesses) == 0 {
		return domain.ReviewResult{}, nil
	}

	b := yelpResp.Businesses[0]
	return domain.ReviewResult{
		Rating:      b.Rating,
		ReviewCount: b.ReviewCount,
		URL:         b.URL,
	}, nil
}

// Yelp API response types.

type response struct {
	Businesses []business `json:"businesses"`
}

type business struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	URL         string  `json:"url"`
}

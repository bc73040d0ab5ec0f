package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltlab/brewmap/internal/observability"
)

func testClient(baseURL string) *Client {
	return &Client{
		token:      "test-token",
		httpClient: &http.Client{Timeout: 2 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestForwardGeocode_Success(t *testing.T) {
	var gotPath string
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("access_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"features": [{
				"center": [-117.1611, 32.7157],
				"place_name": "San Diego, California, United States",
				"relevance": 0.98
			}]
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "San Diego", "CA")

	require.NoError(t, err)
	assert.Equal(t, 32.7157, result.Lat)
	assert.Equal(t, -117.1611, result.Lon)
	assert.Equal(t, "San Diego, California, United States", result.FormattedAddress)
	assert.Equal(t, 0.98, result.Confidence)
	assert.Equal(t, "/San Diego, CA.json", gotPath)
	assert.Equal(t, "test-token", gotQuery)
}

func TestForwardGeocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "Nowhereville", "CA")

	require.NoError(t, err)
	assert.Zero(t, result.Lat)
	assert.Zero(t, result.Lon)
	assert.Empty(t, result.FormattedAddress)
}

func TestForwardGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ForwardGeocode(context.Background(), "San Diego", "CA")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestForwardGeocode_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ForwardGeocode(context.Background(), "San Diego", "CA")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestForwardGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 20 * time.Millisecond

	_, err := c.ForwardGeocode(context.Background(), "San Diego", "CA")
	require.Error(t, err)
}

func TestForwardGeocode_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ForwardGeocode(ctx, "San Diego", "CA")
	require.Error(t, err)
}

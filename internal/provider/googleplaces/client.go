// Package googleplaces loads candidate shops from the Google Places API.
//
// Places uses key-based auth (query parameter) and token-based pagination
// with a maximum of three pages per search. Rate limiting is handled via a
// token bucket limiter; the enforced gap between requests also covers the
// warm-up delay Places imposes before a next_page_token becomes valid.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Places API endpoint root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client is the shared HTTP client for all Places endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Places HTTP client with rate limiting.
func NewClient(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// placeRaw is one result object as Places returns it.
type placeRaw struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Vicinity         string `json:"vicinity"`
	Geometry         *struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Types  []string `json:"types"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

// searchResponse is the common Places search response wrapper.
type searchResponse struct {
	Results       []placeRaw `json:"results"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"error_message"`
	NextPageToken string     `json:"next_page_token"`
}

// search performs a rate-limited GET against one Places search endpoint.
func (c *Client) search(ctx context.Context, path string, params url.Values) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)

	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// ZERO_RESULTS is a successful empty page, not a failure.
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		if result.ErrorMessage != "" {
			return nil, fmt.Errorf("places %s status %s: %s", path, result.Status, result.ErrorMessage)
		}
		return nil, fmt.Errorf("places %s status %s", path, result.Status)
	}

	return &result, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

// Package external provides clients for collaborator web services (geocoding).
package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ---------------------------------------------------------------------------
// Geocoder contract
// ---------------------------------------------------------------------------

// ErrNoResult is returned when an address resolves to nothing.
var ErrNoResult = errors.New("no geocoding result")

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// ---------------------------------------------------------------------------
// Nominatim implementation
// ---------------------------------------------------------------------------

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	geocodeTimeout   = 15 * time.Second

	// Nominatim's usage policy rejects anonymous clients.
	geocodeUserAgent = "skatemap-data/1.0 (+https://github.com/skatemap/skatemap-data)"
)

type geocodeHit struct {
	lat, lng float64
	found    bool
}

// NominatimGeocoder resolves addresses through the public Nominatim API.
// The usage policy caps clients at one request per second; results are
// cached per instance so repeated addresses within a run cost one request.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]geocodeHit
}

// NewNominatimGeocoder creates a Nominatim client. baseURL may be empty.
func NewNominatimGeocoder(baseURL string, logger *slog.Logger) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NominatimGeocoder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: geocodeTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger,
		cache:      make(map[string]geocodeHit),
	}
}

// nominatimResult is the minimal search result shape. Coordinates come back
// as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves one US address. Misses are cached too, so a bad address
// is only ever queried once per run.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	key := strings.ToLower(strings.TrimSpace(address))
	if key == "" {
		return 0, 0, ErrNoResult
	}

	g.mu.Lock()
	hit, cached := g.cache[key]
	g.mu.Unlock()
	if cached {
		if !hit.found {
			return 0, 0, ErrNoResult
		}
		return hit.lat, hit.lng, nil
	}

	lat, lng, err := g.lookup(ctx, address)
	if err != nil && !errors.Is(err, ErrNoResult) {
		return 0, 0, err
	}

	g.mu.Lock()
	g.cache[key] = geocodeHit{lat: lat, lng: lng, found: err == nil}
	g.mu.Unlock()

	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func (g *NominatimGeocoder) lookup(ctx context.Context, address string) (float64, float64, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", geocodeUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("Nominatim HTTP %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return 0, 0, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return lat, lng, nil
}

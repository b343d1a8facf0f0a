package googleplaces

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/skatemap/skatemap-data/internal/geo"
	"github.com/skatemap/skatemap-data/internal/shop"
)

// maxPages is the Places API's hard pagination limit per search.
const maxPages = 3

// photoMaxWidth is the width requested in generated photo URLs.
const photoMaxWidth = 800

// Config holds the knobs for a Places loader.
type Config struct {
	APIKey  string
	BaseURL string // empty means DefaultBaseURL
	Region  geo.Region

	// GridStep enables a nearby-search sweep over the region at this
	// spacing in degrees. Zero disables the sweep; text search alone is
	// enough for most regions.
	GridStep float64

	// NearbyRadiusMeters is the search radius at each sweep point.
	NearbyRadiusMeters int

	RequestsPerMinute int
}

// Loader fetches candidate shops from the Places API: a pair of text
// searches over the region plus an optional grid sweep of nearby searches
// for dense areas where text search truncates at 60 results.
type Loader struct {
	client *Client
	cfg    Config
	logger *slog.Logger
}

// NewLoader creates a Places loader.
func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 20
	}
	if cfg.NearbyRadiusMeters <= 0 {
		cfg.NearbyRadiusMeters = 25000
	}
	return &Loader{
		client: NewClient(cfg.BaseURL, cfg.APIKey, cfg.RequestsPerMinute, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// Name implements provider.Loader.
func (l *Loader) Name() string { return shop.SourceGooglePlaces }

// Fetch runs all searches and returns the de-duplicated candidate set.
func (l *Loader) Fetch(ctx context.Context) ([]shop.Record, error) {
	seen := make(map[string]bool)
	var out []shop.Record

	collect := func(results []placeRaw) {
		for _, raw := range results {
			if raw.PlaceID == "" || seen[raw.PlaceID] {
				continue
			}
			seen[raw.PlaceID] = true
			out = append(out, l.normalizePlace(raw))
		}
	}

	for _, query := range searchQueries(l.cfg.Region.Name) {
		results, err := l.textSearch(ctx, query)
		if err != nil {
			// Partial results are still useful; report only if the
			// very first search produced nothing.
			if len(out) == 0 {
				return nil, err
			}
			l.logger.Warn("places text search failed, continuing with partial results",
				"query", query, "error", err)
			continue
		}
		collect(results)
	}

	if l.cfg.GridStep > 0 {
		points := l.cfg.Region.Grid(l.cfg.GridStep)
		l.logger.Info("places nearby sweep", "points", len(points), "step_deg", l.cfg.GridStep)
		for _, pt := range points {
			results, err := l.nearby(ctx, pt)
			if err != nil {
				l.logger.Warn("places nearby search failed, skipping point",
					"lat", pt.Lat, "lng", pt.Lng, "error", err)
				continue
			}
			collect(results)
		}
	}

	l.logger.Info("places fetch done", "records", len(out))
	return out, nil
}

// searchQueries returns the text search queries for a region.
func searchQueries(regionName string) []string {
	return []string{
		fmt.Sprintf("skate shop in %s", regionName),
		fmt.Sprintf("skateboard shop in %s", regionName),
	}
}

// textSearch fetches every page of one text search.
func (l *Loader) textSearch(ctx context.Context, query string) ([]placeRaw, error) {
	params := url.Values{"query": {query}}

	var all []placeRaw
	for page := 0; page < maxPages; page++ {
		resp, err := l.client.search(ctx, "/textsearch/json", params)
		if err != nil {
			return all, fmt.Errorf("text search %q: %w", query, err)
		}
		all = append(all, resp.Results...)

		if resp.NextPageToken == "" {
			break
		}
		params = url.Values{"pagetoken": {resp.NextPageToken}}
	}
	return all, nil
}

// nearby fetches every page of one nearby search around a sweep point.
func (l *Loader) nearby(ctx context.Context, pt geo.Point) ([]placeRaw, error) {
	params := url.Values{
		"location": {fmt.Sprintf("%f,%f", pt.Lat, pt.Lng)},
		"radius":   {strconv.Itoa(l.cfg.NearbyRadiusMeters)},
		"keyword":  {"skate shop"},
	}

	var all []placeRaw
	for page := 0; page < maxPages; page++ {
		resp, err := l.client.search(ctx, "/nearbysearch/json", params)
		if err != nil {
			return all, fmt.Errorf("nearby search %v: %w", pt, err)
		}
		all = append(all, resp.Results...)

		if resp.NextPageToken == "" {
			break
		}
		params = url.Values{"pagetoken": {resp.NextPageToken}}
	}
	return all, nil
}

// normalizePlace converts one raw Places result to a canonical record.
func (l *Loader) normalizePlace(raw placeRaw) shop.Record {
	rec := shop.Record{
		Name:          raw.Name,
		Source:        shop.SourceGooglePlaces,
		Types:         raw.Types,
		GooglePlaceID: shop.Ptr(raw.PlaceID),
	}

	// Text search carries formatted_address, nearby carries vicinity.
	if raw.FormattedAddress != "" {
		rec.Address = shop.Ptr(raw.FormattedAddress)
	} else if raw.Vicinity != "" {
		rec.Address = shop.Ptr(raw.Vicinity)
	}

	if raw.Geometry != nil {
		rec.Lat = shop.Ptr(raw.Geometry.Location.Lat)
		rec.Lng = shop.Ptr(raw.Geometry.Location.Lng)
	}

	if len(raw.Photos) > 0 && raw.Photos[0].PhotoReference != "" {
		rec.PhotoURL = shop.Ptr(l.photoURL(raw.Photos[0].PhotoReference))
	}

	return rec
}

// photoURL builds the photo endpoint URL for a reference. The API key is
// deliberately left off; the frontend attaches its own restricted key.
func (l *Loader) photoURL(ref string) string {
	return fmt.Sprintf("%s/photo?maxwidth=%d&photo_reference=%s",
		l.client.baseURL, photoMaxWidth, url.QueryEscape(ref))
}

package overpass

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skatemap/skatemap-data/internal/geo"
	"github.com/skatemap/skatemap-data/internal/shop"
)

// Config holds the Overpass loader settings.
type Config struct {
	BaseURL           string
	Region            geo.Region
	RequestsPerMinute int
}

// Loader fetches skate shops from OpenStreetMap via the Overpass API.
type Loader struct {
	client *Client
	region geo.Region
	logger *slog.Logger
}

// NewLoader creates an Overpass loader for one region.
func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 2
	}
	return &Loader{
		client: NewClient(cfg.BaseURL, cfg.RequestsPerMinute, logger),
		region: cfg.Region,
		logger: logger,
	}
}

// Name reports the provenance tag attached to fetched records.
func (l *Loader) Name() string { return shop.SourceOSM }

// Fetch queries OSM for skate shops inside the region's bounding box.
func (l *Loader) Fetch(ctx context.Context) ([]shop.Record, error) {
	elements, err := l.client.query(ctx, buildQuery(l.region))
	if err != nil {
		return nil, fmt.Errorf("overpass query: %w", err)
	}

	l.logger.Info("Overpass query complete", "region", l.region.Name, "elements", len(elements))

	records := make([]shop.Record, 0, len(elements))
	for _, el := range elements {
		rec, ok := normalizeElement(el)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildQuery assembles the Overpass QL program for one bounding box.
// Dedicated shops are tagged shop=skateboard; general sports stores that
// stock decks are tagged shop=sports + sport=skateboard.
func buildQuery(region geo.Region) string {
	bbox := fmt.Sprintf("%g,%g,%g,%g", region.MinLat, region.MinLng, region.MaxLat, region.MaxLng)

	var b strings.Builder
	b.WriteString("[out:json][timeout:60];\n(\n")
	for _, filter := range []string{
		`["shop"="skateboard"]`,
		`["shop"="sports"]["sport"="skateboard"]`,
	} {
		fmt.Fprintf(&b, "  node%s(%s);\n", filter, bbox)
		fmt.Fprintf(&b, "  way%s(%s);\n", filter, bbox)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

// normalizeElement converts one OSM element to a canonical record.
// Unnamed elements are unusable and reported as not ok.
func normalizeElement(el element) (shop.Record, bool) {
	name := strings.TrimSpace(el.Tags["name"])
	if name == "" {
		return shop.Record{}, false
	}

	rec := shop.Record{
		Name:    name,
		Source:  shop.SourceOSM,
		Types:   elementTypes(el.Tags),
		OSMID:   shop.Ptr(el.ID),
		OSMType: shop.Ptr(el.Type),
	}

	switch {
	case el.Lat != nil && el.Lon != nil:
		rec.Lat = el.Lat
		rec.Lng = el.Lon
	case el.Center != nil:
		rec.Lat = shop.Ptr(el.Center.Lat)
		rec.Lng = shop.Ptr(el.Center.Lon)
	}

	if addr := composeAddress(el.Tags); addr != "" {
		rec.Address = &addr
	}
	if phone := firstTag(el.Tags, "phone", "contact:phone"); phone != "" {
		rec.Phone = &phone
	}
	if site := firstTag(el.Tags, "website", "contact:website"); site != "" {
		rec.Website = &site
	}

	return rec, true
}

// elementTypes maps OSM shop tags onto the place-type vocabulary the
// classifier understands.
func elementTypes(tags map[string]string) []string {
	switch {
	case tags["shop"] == "skateboard":
		return []string{"skateboard_shop", "store"}
	case tags["shop"] == "sports":
		return []string{"sporting_goods_store", "store"}
	}
	return []string{"store"}
}

// composeAddress assembles a single-line address from addr:* tags. OSM
// splits addresses across housenumber, street, city, state and postcode.
func composeAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	locality := strings.TrimSpace(tags["addr:state"] + " " + tags["addr:postcode"])

	var parts []string
	for _, part := range []string{street, strings.TrimSpace(tags["addr:city"]), locality} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// firstTag returns the first non-empty value among the given tag keys.
func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(tags[key]); v != "" {
			return v
		}
	}
	return ""
}

package googleplaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skatemap/skatemap-data/internal/geo"
	"github.com/skatemap/skatemap-data/internal/shop"
)

var testRegion = geo.Region{Name: "Testville", MinLat: 30, MaxLat: 31, MinLng: -98, MaxLng: -97}

func newTestLoader(t *testing.T, handler http.Handler) *Loader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLoader(Config{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		Region:            testRegion,
		RequestsPerMinute: 60000,
	}, nil)
}

func placesPage(results []map[string]any, nextToken string) []byte {
	body := map[string]any{"status": "OK", "results": results}
	if len(results) == 0 {
		body["status"] = "ZERO_RESULTS"
	}
	if nextToken != "" {
		body["next_page_token"] = nextToken
	}
	raw, _ := json.Marshal(body)
	return raw
}

func rawPlace(id, name, address string, lat, lng float64) map[string]any {
	return map[string]any{
		"place_id":          id,
		"name":              name,
		"formatted_address": address,
		"geometry":          map[string]any{"location": map[string]any{"lat": lat, "lng": lng}},
		"types":             []string{"store"},
	}
}

func TestFetchPaginatesAndDeduplicates(t *testing.T) {
	var requests []string

	loader := newTestLoader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		require.Equal(t, "/textsearch/json", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		switch {
		case r.URL.Query().Get("pagetoken") == "page-two":
			w.Write(placesPage([]map[string]any{
				rawPlace("p2", "Second Shop", "2 Oak St, Testville, TX", 30.2, -97.2),
			}, ""))
		case r.URL.Query().Get("query") == "skate shop in Testville":
			w.Write(placesPage([]map[string]any{
				rawPlace("p1", "First Shop", "1 Main St, Testville, TX", 30.1, -97.1),
			}, "page-two"))
		default:
			// Second query returns an overlap with page one.
			w.Write(placesPage([]map[string]any{
				rawPlace("p1", "First Shop", "1 Main St, Testville, TX", 30.1, -97.1),
			}, ""))
		}
	}))

	got, err := loader.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2, "p1 seen twice but emitted once")
	assert.Len(t, requests, 3, "two pages for query one, one page for query two")

	assert.Equal(t, "First Shop", got[0].Name)
	assert.Equal(t, shop.SourceGooglePlaces, got[0].Source)
	require.NotNil(t, got[0].GooglePlaceID)
	assert.Equal(t, "p1", *got[0].GooglePlaceID)
	require.NotNil(t, got[0].Lat)
	assert.Equal(t, 30.1, *got[0].Lat)
	assert.Equal(t, "Second Shop", got[1].Name)
}

func TestFetchErrorStatus(t *testing.T) {
	loader := newTestLoader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"key invalid"}`))
	}))

	_, err := loader.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "key invalid")
}

func TestFetchZeroResultsIsEmpty(t *testing.T) {
	loader := newTestLoader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(placesPage(nil, ""))
	}))

	got, err := loader.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func parsePlace(t *testing.T, data string) placeRaw {
	t.Helper()
	var raw placeRaw
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	return raw
}

func TestNormalizePlace(t *testing.T) {
	loader := NewLoader(Config{Region: testRegion}, nil)

	t.Run("full record", func(t *testing.T) {
		raw := parsePlace(t, `{
			"place_id": "ChIJfull",
			"name": "Palomino",
			"formatted_address": "2500 E 6th St, Austin, TX",
			"geometry": {"location": {"lat": 30.259489, "lng": -97.719505}},
			"types": ["store", "clothing_store"]
		}`)

		rec := loader.normalizePlace(raw)
		assert.Equal(t, "Palomino", rec.Name)
		require.NotNil(t, rec.Address)
		assert.Equal(t, "2500 E 6th St, Austin, TX", *rec.Address)
		require.NotNil(t, rec.Lat)
		assert.Equal(t, 30.259489, *rec.Lat)
		require.NotNil(t, rec.Lng)
		assert.Equal(t, -97.719505, *rec.Lng)
		assert.Equal(t, []string{"store", "clothing_store"}, rec.Types)
	})

	t.Run("vicinity fallback", func(t *testing.T) {
		raw := parsePlace(t, `{"place_id": "x", "name": "N", "vicinity": "Near the park"}`)

		rec := loader.normalizePlace(raw)
		require.NotNil(t, rec.Address)
		assert.Equal(t, "Near the park", *rec.Address)
	})

	t.Run("missing geometry means no coordinates", func(t *testing.T) {
		rec := loader.normalizePlace(parsePlace(t, `{"place_id": "x", "name": "N"}`))
		assert.Nil(t, rec.Lat)
		assert.Nil(t, rec.Lng)
		assert.Nil(t, rec.Address)
	})

	t.Run("photo reference becomes keyless url", func(t *testing.T) {
		raw := parsePlace(t, `{
			"place_id": "x",
			"name": "N",
			"photos": [{"photo_reference": "ref 123"}, {"photo_reference": "unused"}]
		}`)

		rec := loader.normalizePlace(raw)
		require.NotNil(t, rec.PhotoURL)
		assert.Contains(t, *rec.PhotoURL, "/photo?maxwidth=800&photo_reference=ref+123")
		assert.NotContains(t, *rec.PhotoURL, "key=")
	})
}

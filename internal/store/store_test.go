package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skatemap/skatemap-data/internal/shop"
)

func sampleRecords() []shop.Record {
	return []shop.Record{
		{
			ID:            1,
			Name:          "Palomino",
			Website:       shop.Ptr("https://palominoskate.com"),
			Phone:         shop.Ptr("(512) 555-0123"),
			PhotoURL:      shop.Ptr("https://places.example.com/photo/1"),
			IsIndependent: true,
			Source:        shop.SourceGooglePlaces,
			GooglePlaceID: shop.Ptr("ChIJpalomino"),
		},
		{
			ID:            2,
			Name:          "Zumiez",
			IsIndependent: false,
			ChainName:     shop.Ptr("Zumiez"),
			Source:        shop.SourceChain,
		},
		{
			ID:            3,
			Name:          "Word of Mouth Boards",
			Phone:         shop.Ptr("(503) 555-0188"),
			IsIndependent: true,
			Source:        shop.SourceManual,
		},
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sampleRecords())

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Independent)
	assert.Equal(t, 1, s.Chains)
	assert.Equal(t, 1, s.WithWebsite)
	assert.Equal(t, 2, s.WithPhone)
	assert.Equal(t, 1, s.WithPhoto)
}

func TestDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "shops.json")
	now := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	ds := NewDataset(sampleRecords(), now)
	ds.Stats.RunID = "run-123"
	ds.Stats.Region = "socal"
	require.NoError(t, WriteDataset(path, ds))

	got, err := ReadDataset(path)
	require.NoError(t, err)

	assert.Equal(t, "2026-02-14T09:30:00Z", got.LastUpdated)
	assert.Equal(t, DatasetVersion, got.Version)
	assert.Equal(t, 3, got.Stats.Total)
	assert.Equal(t, "run-123", got.Stats.RunID)
	require.Len(t, got.Shops, 3)
	assert.Equal(t, "Palomino", got.Shops[0].Name)
}

func TestDatasetStripsProvenance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shops.json")
	require.NoError(t, WriteDataset(path, NewDataset(sampleRecords(), time.Now())))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Shops []map[string]any `json:"shops"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Shops, 3)

	for _, m := range doc.Shops {
		assert.NotContains(t, m, "source")
		assert.NotContains(t, m, "googlePlaceId")
		assert.NotContains(t, m, "osmId")
		assert.NotContains(t, m, "mergedFrom")
		assert.NotContains(t, m, "types")
	}

	// Absent optionals are omitted, not null.
	assert.NotContains(t, doc.Shops[1], "website")
	assert.NotContains(t, doc.Shops[1], "phone")
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shops.json")
	require.NoError(t, WriteDataset(path, NewDataset(nil, time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shops.json", entries[0].Name())
}

func TestPendingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending-review.json")

	entries := []PendingEntry{
		{
			Record: shop.Record{
				Name:          "Corner Market",
				Types:         []string{"store"},
				GooglePlaceID: shop.Ptr("ChIJcorner"),
				Source:        shop.SourceGooglePlaces,
			},
			ConfidenceReason: "Store type without skate signals",
		},
	}
	require.NoError(t, WritePending(path, entries))

	got, err := ReadPending(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Corner Market", got[0].Name)
	assert.Equal(t, "Store type without skate signals", got[0].ConfidenceReason)
	require.NotNil(t, got[0].GooglePlaceID, "pending entries keep external IDs")
	assert.Equal(t, "ChIJcorner", *got[0].GooglePlaceID)
}

func TestPendingEntrySerializesFlat(t *testing.T) {
	e := PendingEntry{
		Record:           shop.Record{Name: "Corner Market", Source: shop.SourceOSM},
		ConfidenceReason: "Store type without skate signals",
	}

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "Corner Market", m["name"], "record fields sit at the top level")
	assert.Equal(t, "osm", m["source"])
	assert.Equal(t, "Store type without skate signals", m["confidenceReason"])
}

func TestWritePendingEmptyWritesList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending-review.json")
	require.NoError(t, WritePending(path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestReadPendingMissingFile(t *testing.T) {
	got, err := ReadPending(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadDatasetMissingFile(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

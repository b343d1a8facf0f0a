package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skatemap/skatemap-data/internal/classify"
	"github.com/skatemap/skatemap-data/internal/shop"
	"github.com/skatemap/skatemap-data/internal/store"
)

func TestChainCandidates(t *testing.T) {
	got := ChainCandidates([]classify.ChainCandidate{
		{Name: "Board Barn", LocationCount: 12, Cities: []string{"Austin", "Dallas"}},
		{Name: "八百", LocationCount: 2, Cities: []string{"San Jose", "Fremont"}},
	})

	want := "" +
		"NAME        LOCATIONS  CITIES\n" +
		"Board Barn  12         Austin, Dallas\n" +
		"八百        2          San Jose, Fremont\n"
	assert.Equal(t, want, got, "wide runes count double for padding")
}

func TestChainCandidatesEmpty(t *testing.T) {
	assert.Empty(t, ChainCandidates(nil))
}

func TestPending(t *testing.T) {
	emporium := store.PendingEntry{ConfidenceReason: "Store type without skate signals"}
	emporium.Name = "Emporium Select"
	emporium.GooglePlaceID = shop.Ptr("gp-emporium")

	mystery := store.PendingEntry{ConfidenceReason: "No store type"}
	mystery.Name = "Mystery Stand"

	got := Pending([]store.PendingEntry{emporium, mystery})

	want := "" +
		"ID           NAME             REASON\n" +
		"gp-emporium  Emporium Select  Store type without skate signals\n" +
		"-            Mystery Stand    No store type\n"
	assert.Equal(t, want, got, "records without a stable ID show a dash")
}

func TestPendingEmpty(t *testing.T) {
	assert.Empty(t, Pending(nil))
}

func TestStats(t *testing.T) {
	got := Stats(store.Stats{
		Total:       42,
		Independent: 30,
		Chains:      12,
		WithWebsite: 25,
		WithPhone:   18,
		WithPhoto:   9,
		Region:      "Southern California",
	})

	want := "" +
		"Total shops   42\n" +
		"Independent   30\n" +
		"Chains        12\n" +
		"With website  25\n" +
		"With phone    18\n" +
		"With photo    9\n" +
		"Region        Southern California\n"
	assert.Equal(t, want, got)
}

func TestStatsOmitsEmptyRunMetadata(t *testing.T) {
	got := Stats(store.Stats{Total: 1, Independent: 1})
	assert.NotContains(t, got, "Run")
	assert.NotContains(t, got, "Region")
}

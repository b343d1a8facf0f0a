package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skatemap/skatemap-data/internal/shop"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Palomino", "Palomino"},
		{"collapses whitespace", "  Uprise   Skateshop ", "Uprise Skateshop"},
		{"decodes ampersand", "Board &amp; Brush", "Board & Brush"},
		{"decodes apostrophe entity", "Val&#39;s Skate", "Val's Skate"},
		{"decodes quote entity", "&quot;The&quot; Spot", `"The" Spot`},
		{"straightens curly single", "Val’s Skate", "Val's Skate"},
		{"straightens curly double", "“The” Spot", `"The" Spot`},
		{"empty becomes sentinel", "", UnknownName},
		{"whitespace only becomes sentinel", "   \t ", UnknownName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.in))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ten digits", "5551234567", "(555) 123-4567"},
		{"ten digits with punctuation", "555.123.4567", "(555) 123-4567"},
		{"ten digits with parens", "(555) 123 4567", "(555) 123-4567"},
		{"eleven with leading one", "15551234567", "(555) 123-4567"},
		{"eleven with plus one", "+1 555-123-4567", "(555) 123-4567"},
		{"eleven without leading one", "25551234567", "25551234567"},
		{"international passthrough", "+44 20 7946 0958", "+44 20 7946 0958"},
		{"too short passthrough", "123-4567", "123-4567"},
		{"trims passthrough", "  12345  ", "12345"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.in))
		})
	}
}

func TestWebsite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain gets scheme", "labor-nyc.com", "https://labor-nyc.com"},
		{"www domain", "www.upriseskateshop.com", "https://www.upriseskateshop.com"},
		{"existing https kept", "https://shredders.com", "https://shredders.com"},
		{"http kept", "http://shredders.com", "http://shredders.com"},
		{"host lowercased", "HTTPS://WWW.Shredders.COM", "https://www.shredders.com"},
		{"root slash dropped", "https://shredders.com/", "https://shredders.com"},
		{"path kept", "https://shredders.com/shop", "https://shredders.com/shop"},
		{"query kept", "https://shredders.com/?utm=1", "https://shredders.com?utm=1"},
		{"port kept", "shop.example.com:8080", "https://shop.example.com:8080"},
		{"too short", "a.b", ""},
		{"bare scheme", "https://", ""},
		{"bare scheme http", "http://", ""},
		{"no dot no www", "myshop", ""},
		{"host without dot", "https://localhost", ""},
		{"garbage", "not a url at all", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Website(tt.in))
		})
	}
}

// Normalizing an already-normalized URL must be a no-op, otherwise re-runs
// over persisted data would drift.
func TestWebsiteIdempotent(t *testing.T) {
	inputs := []string{
		"labor-nyc.com",
		"www.upriseskateshop.com",
		"HTTPS://WWW.Shredders.COM/",
		"http://shredders.com/shop?ref=map",
		"shop.example.com:8080",
	}

	for _, in := range inputs {
		once := Website(in)
		require.NotEmpty(t, once, "input %q unexpectedly rejected", in)
		assert.Equal(t, once, Website(once), "input %q", in)
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"suffix expanded", "123 Main St", "123 Main St."},
		{"suffix mid string", "123 Main St Los Angeles", "123 Main St. Los Angeles"},
		{"already abbreviated", "123 Main St. Los Angeles", "123 Main St. Los Angeles"},
		{"ave expanded", "9 Linden Ave, Portland, OR", "9 Linden Ave., Portland, OR"},
		{"case sensitive", "1st and main st", "1st and main st"},
		{"not inside words", "4 Stanton Street Station", "4 Stanton Street Station"},
		{"comma spacing", "123 Main St.,Los Angeles,CA", "123 Main St., Los Angeles, CA"},
		{"comma with stray spaces", "123 Main St. , Los Angeles , CA", "123 Main St., Los Angeles, CA"},
		{"whitespace collapsed", "123   Main\tSt.", "123 Main St."},
		{"multiple suffixes", "Blvd and Hwy junction", "Blvd. and Hwy. junction"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Address(tt.in))
		})
	}
}

func TestCityToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"standard", "123 Main St., Los Angeles, CA", "Los Angeles"},
		{"with zip", "123 Main St., Los Angeles, CA 90012", "Los Angeles"},
		{"multi comma picks city before state", "Suite 5, 123 Main St., Portland, OR", "Portland"},
		{"no state code", "123 Main St., Los Angeles", ""},
		{"lowercase state rejected", "123 Main St., Los Angeles, ca", ""},
		{"street only", "123 Main St.", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CityToken(tt.in))
		})
	}
}

func TestStreetSegment(t *testing.T) {
	assert.Equal(t, "123 main st", StreetSegment("123 Main St., Los Angeles, CA"))
	assert.Equal(t, "123 main st", StreetSegment("123 MAIN ST"))
	assert.Equal(t, "", StreetSegment(""))
}

func TestCoordinate(t *testing.T) {
	v, ok := Coordinate(30.2594891234)
	require.True(t, ok)
	assert.Equal(t, 30.259489, v)

	v, ok = Coordinate(-97.71950549)
	require.True(t, ok)
	assert.Equal(t, -97.719505, v)

	_, ok = Coordinate(math.NaN())
	assert.False(t, ok)

	_, ok = Coordinate(math.Inf(1))
	assert.False(t, ok)

	_, ok = Coordinate(math.Inf(-1))
	assert.False(t, ok)
}

func TestForComparison(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "UPRISE", "uprise"},
		{"drops apostrophes", "Val's Boards", "vals boards"},
		{"drops curly apostrophes", "Val’s Boards", "vals boards"},
		{"punctuation to space", "Labor-NYC", "labor nyc"},
		{"removes shop", "Uprise Shop", "uprise"},
		{"removes skate shop phrase", "FTC Skate Shop", "ftc"},
		{"removes skateshop", "FTC Skateshop", "ftc"},
		{"removes store", "The Board Store", "the board"},
		{"removes corporate suffixes", "Shredders Inc", "shredders"},
		{"removes llc", "Shredders LLC", "shredders"},
		{"whole words only", "Cooperstown", "cooperstown"},
		{"shoppe untouched", "Ye Olde Shoppe", "ye olde shoppe"},
		{"all filler collapses to empty", "The Skate Shop", "the"},
		{"pure filler", "Skate Shop", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForComparison(tt.in))
		})
	}
}

func TestFoldKeepsSuffixWords(t *testing.T) {
	// Fold is the grouping key for chain detection; it must NOT remove
	// retail words, or "Zumiez Store #12" and "Zumiez" would collide with
	// unrelated names.
	assert.Equal(t, "the board store", Fold("The Board Store!"))
	assert.Equal(t, "vals skate shop", Fold("Val's Skate Shop"))
}

func TestApply(t *testing.T) {
	rec := shop.Record{
		Name:    "  Val&#39;s   Skate ",
		Address: shop.Ptr("123 Main St,Los Angeles,CA"),
		Lat:     shop.Ptr(34.05223912345),
		Lng:     shop.Ptr(-118.24368198765),
		Website: shop.Ptr("WWW.Vals.COM/"),
		Phone:   shop.Ptr("1 (555) 123-4567"),
	}

	Apply(&rec)

	assert.Equal(t, "Val's Skate", rec.Name)
	require.NotNil(t, rec.Address)
	assert.Equal(t, "123 Main St., Los Angeles, CA", *rec.Address)
	require.NotNil(t, rec.Lat)
	assert.Equal(t, 34.052239, *rec.Lat)
	require.NotNil(t, rec.Lng)
	assert.Equal(t, -118.243682, *rec.Lng)
	require.NotNil(t, rec.Website)
	assert.Equal(t, "https://www.vals.com", *rec.Website)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "(555) 123-4567", *rec.Phone)
}

func TestApplyClearsUnusableOptionals(t *testing.T) {
	rec := shop.Record{
		Name:     "",
		Website:  shop.Ptr("???"),
		Phone:    shop.Ptr("   "),
		Address:  shop.Ptr("  "),
		Lat:      shop.Ptr(math.NaN()),
		PhotoURL: shop.Ptr("  "),
	}

	Apply(&rec)

	assert.Equal(t, UnknownName, rec.Name)
	assert.Nil(t, rec.Website)
	assert.Nil(t, rec.Phone)
	assert.Nil(t, rec.Address)
	assert.Nil(t, rec.Lat)
	assert.Nil(t, rec.PhotoURL)
}

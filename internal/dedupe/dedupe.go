// Package dedupe collapses records that describe the same physical shop.
//
// Sources overlap constantly: the same storefront shows up from the places
// API, the curated chain list, and manual submissions, each with slightly
// different text. Three independent match signals (coordinates, name+city,
// address) decide sameness; a source priority rule decides which record's
// fields survive the merge.
package dedupe

import (
	"math"
	"strings"

	"github.com/skatemap/skatemap-data/internal/normalize"
	"github.com/skatemap/skatemap-data/internal/shop"
)

// coordEpsilon is the Euclidean coordinate distance (plain degrees, not
// geodesic) below which two records are the same place. Roughly 11 meters
// at mid latitudes.
const coordEpsilon = 0.0001

// sourcePriority ranks sources for merging. Higher wins the merge; unknown
// sources (including google-places) rank lowest.
var sourcePriority = map[string]int{
	shop.SourceChain:  3,
	shop.SourceManual: 2,
	shop.SourceOSM:    1,
}

// ---------------------------------------------------------------------------
// Comparison fields
// ---------------------------------------------------------------------------

// comparison holds the normalized match keys for one record, computed once
// per record instead of on every pairwise check.
type comparison struct {
	name    string // normalize.ForComparison of the display name
	address string // folded full address
	street  string // folded address text before the first comma
	city    string // lowercased ", City, ST" token, "" when absent
}

func fieldsFor(rec *shop.Record) comparison {
	c := comparison{name: normalize.ForComparison(rec.Name)}
	if rec.Address != nil {
		c.address = normalize.Fold(*rec.Address)
		c.street = normalize.StreetSegment(*rec.Address)
		c.city = strings.ToLower(normalize.CityToken(*rec.Address))
	}
	return c
}

// ---------------------------------------------------------------------------
// Match predicates
// ---------------------------------------------------------------------------

// coordMatch reports whether both records carry coordinates closer than
// coordEpsilon. Records missing either coordinate never match this way.
func coordMatch(a, b *shop.Record) bool {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return false
	}
	return math.Hypot(*a.Lat-*b.Lat, *a.Lng-*b.Lng) < coordEpsilon
}

// nameCityMatch reports whether two records share a non-empty comparison
// name and do not disagree on city. A record without an extractable city is
// a provisional match; only two present-but-different cities veto.
func nameCityMatch(a, b comparison) bool {
	if a.name == "" || a.name != b.name {
		return false
	}
	return a.city == "" || b.city == "" || a.city == b.city
}

// addressMatch reports whether two records share a full normalized address,
// or share a street segment while agreeing on an extracted city.
func addressMatch(a, b comparison) bool {
	if a.address != "" && a.address == b.address {
		return true
	}
	return a.street != "" && a.street == b.street &&
		a.city != "" && b.city != "" && a.city == b.city
}

func isMatch(existing *cluster, rec *shop.Record, cmp comparison) bool {
	return coordMatch(&existing.rec, rec) ||
		nameCityMatch(existing.cmp, cmp) ||
		addressMatch(existing.cmp, cmp)
}

// ---------------------------------------------------------------------------
// Clustering
// ---------------------------------------------------------------------------

type cluster struct {
	rec shop.Record
	cmp comparison
}

// Deduplicate collapses duplicate records with single-pass incremental
// clustering: each incoming record is compared against every cluster seen
// so far and merged into the first match, or starts a new cluster.
//
// Quadratic over the input. Fine at the few thousand records a run sees;
// revisit with a spatial index if the shop count ever grows 10x.
func Deduplicate(records []shop.Record) []shop.Record {
	clusters := make([]cluster, 0, len(records))

	for i := range records {
		rec := records[i]
		cmp := fieldsFor(&rec)

		merged := false
		for j := range clusters {
			if isMatch(&clusters[j], &rec, cmp) {
				clusters[j].rec = Merge(clusters[j].rec, rec)
				clusters[j].cmp = fieldsFor(&clusters[j].rec)
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, cluster{rec: rec, cmp: cmp})
		}
	}

	out := make([]shop.Record, len(clusters))
	for i := range clusters {
		out[i] = clusters[i].rec
	}
	return out
}

// Stats summarizes one deduplication pass for logs and the run report.
type Stats struct {
	Original int `json:"original"`
	Unique   int `json:"unique"`
	Merged   int `json:"merged"`
}

// StatsFor derives pass statistics from the input and output sizes.
func StatsFor(in, out []shop.Record) Stats {
	return Stats{
		Original: len(in),
		Unique:   len(out),
		Merged:   len(in) - len(out),
	}
}

// ---------------------------------------------------------------------------
// Merging
// ---------------------------------------------------------------------------

// Merge combines two records describing the same shop. The higher-priority
// source becomes the base and keeps its fields; gaps are filled from the
// other record. On equal priority the incoming record wins, so later
// sources refresh earlier ones.
func Merge(existing, incoming shop.Record) shop.Record {
	base, other := existing, incoming
	if sourcePriority[incoming.Source] >= sourcePriority[existing.Source] {
		base, other = incoming, existing
	}

	out := base
	if out.Name == "" {
		out.Name = other.Name
	}
	if out.Address == nil {
		out.Address = other.Address
	}
	if out.Lat == nil {
		out.Lat = other.Lat
	}
	if out.Lng == nil {
		out.Lng = other.Lng
	}
	if out.Website == nil {
		out.Website = other.Website
	}
	if out.Phone == nil {
		out.Phone = other.Phone
	}
	if out.PhotoURL == nil {
		out.PhotoURL = other.PhotoURL
	}
	if out.GooglePlaceID == nil {
		out.GooglePlaceID = other.GooglePlaceID
	}
	if len(out.Types) == 0 {
		out.Types = other.Types
	}
	if out.OSMID == nil {
		out.OSMID = other.OSMID
	}
	if out.OSMType == nil {
		out.OSMType = other.OSMType
	}
	out.MergedFrom = mergedFromUnion(&base, &other)
	return out
}

// mergedFromUnion builds the ordered, de-duplicated union of both records'
// merge histories, base first. A record with no history contributes its own
// source tag.
func mergedFromUnion(base, other *shop.Record) []string {
	out := make([]string, 0, len(base.MergedFrom)+len(other.MergedFrom)+2)
	seen := make(map[string]bool)

	add := func(history []string, source string) {
		if len(history) == 0 && source != "" {
			history = []string{source}
		}
		for _, tag := range history {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	add(base.MergedFrom, base.Source)
	add(other.MergedFrom, other.Source)
	return out
}

// Package shop defines the canonical shop record that all source loaders
// normalize into. These structs are the contract between providers and the
// pipeline: loaders output them and the dataset writer serializes them for
// the frontend.
//
// Adding a new source means implementing a loader that returns these types.
// The pipeline and the published JSON shape never change.
package shop

import "fmt"

// Source tags identify where a record came from. They matter only for merge
// priority during deduplication and are stripped before publishing.
const (
	SourceOSM          = "osm"
	SourceChain        = "chain"
	SourceManual       = "manual"
	SourceGooglePlaces = "google-places"
)

// Record is a shop as it moves through the pipeline. Optional fields are
// pointers; absent means the upstream source had nothing for them.
type Record struct {
	ID       int      `json:"id,omitempty"`
	Name     string   `json:"name"`
	Address  *string  `json:"address,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Website  *string  `json:"website,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	PhotoURL *string  `json:"photoUrl,omitempty"`

	IsIndependent bool    `json:"isIndependent"`
	ChainName     *string `json:"chainName,omitempty"`

	// Provenance. Used for merge priority, classification, and idempotent
	// re-runs; never published.
	Source        string   `json:"source,omitempty"`
	Types         []string `json:"types,omitempty"`
	GooglePlaceID *string  `json:"googlePlaceId,omitempty"`
	OSMID         *int64   `json:"osmId,omitempty"`
	OSMType       *string  `json:"osmType,omitempty"`
	MergedFrom    []string `json:"mergedFrom,omitempty"`
}

// ExternalID returns the stable upstream identifier used to key manual
// review decisions across runs. Google place IDs win over OSM identifiers;
// records with neither return "".
func (r *Record) ExternalID() string {
	if r.GooglePlaceID != nil && *r.GooglePlaceID != "" {
		return *r.GooglePlaceID
	}
	if r.OSMID != nil && r.OSMType != nil && *r.OSMType != "" {
		return fmt.Sprintf("%s/%d", *r.OSMType, *r.OSMID)
	}
	return ""
}

// HasCoordinates reports whether both lat and lng are present.
func (r *Record) HasCoordinates() bool {
	return r.Lat != nil && r.Lng != nil
}

// Public is the published record shape: internal-only fields (source,
// provenance IDs, merge history) are gone, and optional fields are omitted
// entirely when absent so the dataset JSON carries no null keys.
type Public struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Address       *string  `json:"address,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
	Website       *string  `json:"website,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	PhotoURL      *string  `json:"photoUrl,omitempty"`
	IsIndependent bool     `json:"isIndependent"`
	ChainName     *string  `json:"chainName,omitempty"`
}

// ToPublic strips a record down to its published form.
func (r *Record) ToPublic() Public {
	return Public{
		ID:            r.ID,
		Name:          r.Name,
		Address:       r.Address,
		Lat:           r.Lat,
		Lng:           r.Lng,
		Website:       r.Website,
		Phone:         r.Phone,
		PhotoURL:      r.PhotoURL,
		IsIndependent: r.IsIndependent,
		ChainName:     r.ChainName,
	}
}

// ToRecord lifts a published record back into pipeline form, for tooling
// that re-analyzes an existing dataset. Provenance fields are gone from the
// published form and stay empty.
func (p Public) ToRecord() Record {
	return Record{
		ID:            p.ID,
		Name:          p.Name,
		Address:       p.Address,
		Lat:           p.Lat,
		Lng:           p.Lng,
		Website:       p.Website,
		Phone:         p.Phone,
		PhotoURL:      p.PhotoURL,
		IsIndependent: p.IsIndependent,
		ChainName:     p.ChainName,
	}
}

// String implements fmt.Stringer for log lines.
func (r *Record) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Source)
}

// Ptr returns a pointer to v. Convenience for building optional fields.
func Ptr[T any](v T) *T { return &v }

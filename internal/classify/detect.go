package classify

import (
	"sort"
	"strings"

	"github.com/skatemap/skatemap-data/internal/normalize"
	"github.com/skatemap/skatemap-data/internal/shop"
)

// ChainCandidate is a shop name appearing in two or more distinct cities,
// suggesting a chain missing from the curated table. Purely diagnostic;
// candidates never affect which records are published.
type ChainCandidate struct {
	Name          string   `json:"name"`
	LocationCount int      `json:"locationCount"`
	Cities        []string `json:"cities"`
}

// DetectPotentialChains groups records by folded name and reports groups
// with at least two members spanning at least two distinct cities, sorted
// by descending location count. Records already labeled as chains are
// skipped; the point is surfacing names the curated table does not know.
func DetectPotentialChains(records []shop.Record) []ChainCandidate {
	type group struct {
		display string
		count   int
		cities  []string        // display form, first-seen order
		seen    map[string]bool // lowercased, for distinctness
	}

	groups := make(map[string]*group)
	var order []string

	for i := range records {
		rec := &records[i]
		if !rec.IsIndependent {
			continue
		}
		key := normalize.Fold(rec.Name)
		if key == "" {
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = &group{display: rec.Name, seen: make(map[string]bool)}
			groups[key] = g
			order = append(order, key)
		}
		g.count++

		if rec.Address == nil {
			continue
		}
		city := normalize.CityToken(*rec.Address)
		if city == "" {
			continue
		}
		lower := strings.ToLower(city)
		if !g.seen[lower] {
			g.seen[lower] = true
			g.cities = append(g.cities, city)
		}
	}

	var out []ChainCandidate
	for _, key := range order {
		g := groups[key]
		if g.count < 2 || len(g.cities) < 2 {
			continue
		}
		out = append(out, ChainCandidate{
			Name:          g.display,
			LocationCount: g.count,
			Cities:        g.cities,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LocationCount != out[j].LocationCount {
			return out[i].LocationCount > out[j].LocationCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Package classify scores how likely a record is to be a genuine
// skateboard shop and labels independents versus chains.
//
// Everything here is driven by static lookup tables (chain patterns, type
// tags, skip phrases). The tables are best-effort heuristics over messy
// third-party text; each pattern's expected hits and misses are pinned by
// the package tests, so edit the tables and the tests together.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/skatemap/skatemap-data/internal/shop"
)

// UnknownChain is the fallback display name for records flagged as a chain
// by their source without naming one.
const UnknownChain = "Unknown Chain"

// ---------------------------------------------------------------------------
// Known chain table
// ---------------------------------------------------------------------------

// Chain is one recognized multi-location retailer. A record matches when
// its name hits the word-boundary pattern or its website host is the chain
// domain (or a subdomain of it).
type Chain struct {
	Name    string
	pattern *regexp.Regexp
	Domains []string
}

// chains is the curated chain list. Order matters only for which name wins
// when a record somehow matches two patterns; first match is taken.
var chains = []Chain{
	{
		Name:    "Zumiez",
		pattern: regexp.MustCompile(`(?i)\bzumiez\b`),
		Domains: []string{"zumiez.com"},
	},
	{
		Name:    "Vans",
		pattern: regexp.MustCompile(`(?i)\bvans\b`),
		Domains: []string{"vans.com"},
	},
	{
		Name:    "Tactics",
		pattern: regexp.MustCompile(`(?i)\btactics\b`),
		Domains: []string{"tactics.com"},
	},
	{
		Name:    "CCS",
		pattern: regexp.MustCompile(`(?i)\bccs\b`),
		Domains: []string{"ccs.com"},
	},
	{
		Name:    "Tilly's",
		pattern: regexp.MustCompile(`(?i)\btilly['\x{2019}]?s\b`),
		Domains: []string{"tillys.com"},
	},
	{
		Name:    "PacSun",
		pattern: regexp.MustCompile(`(?i)\bpacsun\b`),
		Domains: []string{"pacsun.com"},
	},
	{
		Name:    "Active Ride Shop",
		pattern: regexp.MustCompile(`(?i)\bactive ride shop\b`),
		Domains: []string{"activerideshop.com"},
	},
	{
		Name:    "Empire",
		pattern: regexp.MustCompile(`(?i)\bempire\b`),
		Domains: []string{"empireskateshop.com"},
	},
	{
		Name:    "Skate Warehouse",
		pattern: regexp.MustCompile(`(?i)\bskate warehouse\b`),
		Domains: []string{"skatewarehouse.com"},
	},
}

// matchChain returns the first chain whose name pattern or domain matches
// the record, or nil.
func matchChain(rec *shop.Record) *Chain {
	host := websiteHost(rec.Website)
	for i := range chains {
		c := &chains[i]
		if rec.Name != "" && c.pattern.MatchString(rec.Name) {
			return c
		}
		for _, domain := range c.Domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return c
			}
		}
	}
	return nil
}

// websiteHost extracts a lowercased hostname with any leading "www."
// stripped. Classification runs before URL normalization, so this has to
// tolerate raw scheme-less values. Unparseable input yields "".
func websiteHost(website *string) string {
	if website == nil {
		return ""
	}
	s := strings.TrimSpace(*website)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// ---------------------------------------------------------------------------
// Independent / chain labeling
// ---------------------------------------------------------------------------

// Label decides independent-versus-chain for one record, in place. A chain
// designation carried by the source is preserved as-is; otherwise the
// curated chain table decides. The result always satisfies the output
// invariant: ChainName is set exactly when IsIndependent is false.
func Label(rec *shop.Record) {
	if rec.Source == shop.SourceChain || (rec.ChainName != nil && *rec.ChainName != "") {
		rec.IsIndependent = false
		if rec.ChainName == nil || *rec.ChainName == "" {
			rec.ChainName = shop.Ptr(UnknownChain)
		}
		return
	}

	if c := matchChain(rec); c != nil {
		rec.IsIndependent = false
		rec.ChainName = shop.Ptr(c.Name)
		return
	}

	rec.IsIndependent = true
	rec.ChainName = nil
}

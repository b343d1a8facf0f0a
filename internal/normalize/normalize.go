// Package normalize canonicalizes free-text shop fields (names, phones,
// addresses, URLs, coordinates) into a consistent shape.
//
// Every function here is pure and total: malformed input yields an empty
// result or a sentinel, never an error. Upstream sources disagree wildly on
// formatting, so the pipeline runs every record through Apply before
// publishing.
package normalize

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/skatemap/skatemap-data/internal/shop"
)

// UnknownName is the fallback shop name when a source record has none.
const UnknownName = "Unknown Skateshop"

// ---------------------------------------------------------------------------
// Shared patterns
// ---------------------------------------------------------------------------

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	nonDigitRe = regexp.MustCompile(`\D`)

	// ", City, ST" with a two-letter state code. Best effort; US-style
	// addresses only.
	cityStateRe = regexp.MustCompile(`,\s*([^,]+),\s*[A-Z]{2}\b`)

	// Comma plus surrounding whitespace, renormalized to ", ".
	commaRe = regexp.MustCompile(`\s*,\s*`)

	// Apostrophe variants folded away for comparison keys.
	apostropheRe = regexp.MustCompile("['‘’`´]")

	// Anything that is not a letter, digit, or space becomes a space when
	// building comparison keys.
	punctRe = regexp.MustCompile(`[^a-z0-9\s]`)
)

// curlyQuotes maps typographic quotes to their ASCII equivalents.
var curlyQuotes = strings.NewReplacer(
	"‘", "'", // left single
	"’", "'", // right single
	"“", `"`, // left double
	"”", `"`, // right double
)

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

// Name cleans a display name: HTML entities decoded, curly quotes
// straightened, whitespace collapsed. Empty input becomes UnknownName so
// every published record has something to show.
func Name(raw string) string {
	s := html.UnescapeString(raw)
	s = curlyQuotes.Replace(s)
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return UnknownName
	}
	return s
}

// ---------------------------------------------------------------------------
// Phones
// ---------------------------------------------------------------------------

// Phone formats North American numbers as "(AAA) BBB-CCCC". Ten digits
// format directly; eleven digits with a leading 1 drop the country code
// first. Anything else is assumed international and returned trimmed but
// otherwise untouched. Empty input returns "".
func Phone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	digits := nonDigitRe.ReplaceAllString(trimmed, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
	return trimmed
}

// ---------------------------------------------------------------------------
// Websites
// ---------------------------------------------------------------------------

// Website normalizes a URL string: https scheme added when missing,
// lowercase host, bare root path dropped. Returns "" for anything that does
// not look like a usable absolute URL. Idempotent, so re-running the
// pipeline over already-normalized data is safe.
func Website(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 4 {
		return ""
	}

	lower := strings.ToLower(s)
	if lower == "http://" || lower == "https://" {
		return ""
	}

	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		// No scheme. Only promote things that plausibly name a host.
		if !strings.Contains(s, ".") && !strings.HasPrefix(lower, "www.") {
			return ""
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if !strings.Contains(u.Hostname(), ".") {
		return ""
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}

// ---------------------------------------------------------------------------
// Addresses
// ---------------------------------------------------------------------------

// streetSuffixes are expanded to their period-suffixed form when they appear
// as bare words. Matching is case-sensitive: "St" is a street, "st" in
// "1st" is not.
var streetSuffixes = []string{
	"St", "Ave", "Blvd", "Rd", "Dr", "Ln", "Ct", "Pl", "Pkwy", "Hwy",
}

// suffixRules is built once from streetSuffixes. RE2 has no lookahead, so
// each pattern captures the character after the suffix and the replacement
// re-emits it; a following period means the suffix is already abbreviated
// and the pattern skips it.
var suffixRules = func() []suffixRule {
	rules := make([]suffixRule, 0, len(streetSuffixes))
	for _, s := range streetSuffixes {
		rules = append(rules, suffixRule{
			re:   regexp.MustCompile(`\b` + s + `\b([^.]|$)`),
			repl: s + ".${1}",
		})
	}
	return rules
}()

type suffixRule struct {
	re   *regexp.Regexp
	repl string
}

// Address tidies a free-text street address: whitespace collapsed, street
// suffixes period-ified, comma spacing normalized to ", ". Empty input
// returns "".
func Address(raw string) string {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	if s == "" {
		return ""
	}
	for _, rule := range suffixRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return strings.TrimSpace(commaRe.ReplaceAllString(s, ", "))
}

// CityToken extracts the city portion of a ", City, ST" address tail.
// Returns the city as written, or "" when the address does not match the
// pattern. Callers doing equality checks should fold case themselves.
func CityToken(address string) string {
	m := cityStateRe.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// StreetSegment returns the address text before the first comma, folded for
// comparison. "123 Main St., Los Angeles, CA" and "123 Main St" compare
// equal.
func StreetSegment(address string) string {
	street, _, _ := strings.Cut(address, ",")
	return Fold(street)
}

// ---------------------------------------------------------------------------
// Coordinates
// ---------------------------------------------------------------------------

// Coordinate rounds to 6 decimal places (~0.1m). NaN and infinities report
// ok=false and callers should treat the value as absent.
func Coordinate(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return math.Round(v*1e6) / 1e6, true
}

// ---------------------------------------------------------------------------
// Comparison keys
// ---------------------------------------------------------------------------

// genericSuffixes are retail filler words removed from names before
// comparison, so "FTC Skate Shop" and "FTC" key the same. Multi-word
// phrases come first; removing "shop" before "skate shop" would leave a
// stray "skate" behind.
var genericSuffixes = []string{
	"skate shop", "skateshop", "shop", "store", "inc", "llc", "ltd", "co",
}

var genericSuffixRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(genericSuffixes))
	for _, s := range genericSuffixes {
		res = append(res, regexp.MustCompile(`\b`+s+`\b`))
	}
	return res
}()

// Fold lowercases, drops apostrophes, turns all other punctuation into
// spaces, and collapses runs. The base key for fuzzy grouping.
func Fold(s string) string {
	s = strings.ToLower(s)
	s = apostropheRe.ReplaceAllString(s, "")
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ForComparison builds the dedup key for a shop name: Fold plus removal of
// generic retail suffixes. Can return "" for names made entirely of filler
// ("The Skate Shop"); callers must not treat two empty keys as a match.
func ForComparison(name string) string {
	s := Fold(name)
	for _, re := range genericSuffixRes {
		s = re.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ---------------------------------------------------------------------------
// Whole records
// ---------------------------------------------------------------------------

// Apply canonicalizes every free-text field of a record in place. Optional
// fields that normalize to nothing become nil so they vanish from the
// serialized output.
func Apply(rec *shop.Record) {
	rec.Name = Name(rec.Name)

	rec.Phone = optional(rec.Phone, Phone)
	rec.Website = optional(rec.Website, Website)
	rec.Address = optional(rec.Address, Address)

	rec.Lat = coordinate(rec.Lat)
	rec.Lng = coordinate(rec.Lng)

	if rec.PhotoURL != nil {
		if trimmed := strings.TrimSpace(*rec.PhotoURL); trimmed == "" {
			rec.PhotoURL = nil
		} else {
			rec.PhotoURL = &trimmed
		}
	}
}

func optional(field *string, fn func(string) string) *string {
	if field == nil {
		return nil
	}
	if out := fn(*field); out != "" {
		return &out
	}
	return nil
}

func coordinate(field *float64) *float64 {
	if field == nil {
		return nil
	}
	if v, ok := Coordinate(*field); ok {
		return &v
	}
	return nil
}

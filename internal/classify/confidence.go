package classify

import (
	"regexp"
	"strings"

	"github.com/skatemap/skatemap-data/internal/shop"
)

// ---------------------------------------------------------------------------
// Confidence levels
// ---------------------------------------------------------------------------

// Level is a graded classification outcome, ordered
// exclude < review < good < high < very_high.
type Level string

const (
	LevelExclude  Level = "exclude"
	LevelReview   Level = "review"
	LevelGood     Level = "good"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "very_high"
)

// AutoInclude reports whether the level admits a record into the published
// dataset without manual review.
func (l Level) AutoInclude() bool {
	switch l {
	case LevelGood, LevelHigh, LevelVeryHigh:
		return true
	}
	return false
}

// Confidence is the scored outcome for one record. Reason is a short
// operator-facing explanation carried into the pending-review file.
type Confidence struct {
	Level  Level  `json:"level"`
	Reason string `json:"reason"`
}

// Pinned reason strings. Review tooling greps for these; change them there
// too.
const (
	ReasonSkipPattern = "Name matches skip pattern"
	ReasonNoStoreType = "No store type"
)

// ---------------------------------------------------------------------------
// Type tag sets
// ---------------------------------------------------------------------------

var (
	// Explicit skateboard-shop tags from upstream category data.
	skateShopTypes = map[string]bool{
		"skateboard_shop": true,
		"skate_shop":      true,
	}

	// Skatepark tags. A park alone is not a shop, but a park that also
	// carries a retail tag almost always has a counter selling decks.
	skateParkTypes = map[string]bool{
		"skateboard_park": true,
		"skate_park":      true,
	}

	// Generic retail tags.
	retailTypes = map[string]bool{
		"store":                true,
		"sporting_goods_store": true,
		"retail":               true,
	}

	// Tags that rule a place out regardless of name.
	excludedTypes = map[string]bool{
		"ice_rink":         true,
		"ice_skating_rink": true,
		"skating_rink":     true,
		"stadium":          true,
		"arena":            true,
		"department_store": true,
	}
)

// skateWordRe is the lexical signal that a name or host is skate-adjacent.
// Substring match on purpose: "skateboard", "boardshop", "sk8ordie" all
// count.
var skateWordRe = regexp.MustCompile(`(?i)skate|sk8|board|deck|shred|thrash`)

// ---------------------------------------------------------------------------
// Skip list
// ---------------------------------------------------------------------------

// skipPhrases mark businesses that pass the lexical skate check but are not
// skateboard shops: ice and roller rinks, hockey retail, fingerboard/toy
// sellers, big-box sporting goods, blade sharpening services. Matched
// case-insensitively as substrings of the record name.
var skipPhrases = []string{
	// Ice skating.
	"ice skating", "ice rink", "ice arena", "ice center", "ice centre",
	"ice house", "figure skating", "speed skating",
	// Rinks and rink-style names.
	"skating rink", "skating club", "skating academy", "skating school",
	"skating lessons", "skating center", "skating centre",
	"roller skating", "roller rink", "roller derby", "rollerskating",
	"skateland", "skate world", "skate city", "skate country", "skatetown",
	// Hockey.
	"hockey", "goalie", "skate sharpening", "blade sharpening",
	"sharpening service",
	// Fingerboards and toys.
	"fingerboard", "finger board", "tech deck", "toy store", "toys",
	// Big-box sporting goods.
	"play it again", "dick's sporting", "dicks sporting", "big 5",
	"academy sports", "scheels", "sportsman's warehouse",
	// Other board sports.
	"paddleboard", "paddle board", "wakeboard",
}

// matchesSkipList reports whether the name contains any skip phrase.
func matchesSkipList(name string) bool {
	lower := strings.ToLower(name)
	for _, phrase := range skipPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Scoring
// ---------------------------------------------------------------------------

// Score runs the ordered decision list over one record and returns the
// first rule that fires. Order is load-bearing: specific signals (known
// chain, explicit shop type) outrank lexical guesses, and the skip list
// vetoes lexical hits before they can score.
func Score(rec *shop.Record) Confidence {
	// Known chains are always real skate retailers.
	if c := matchChain(rec); c != nil {
		return Confidence{LevelHigh, "Known chain: " + c.Name}
	}

	if hasAnyType(rec, skateShopTypes) {
		return Confidence{LevelHigh, "Skateboard shop type"}
	}

	// A park that also carries a retail tag has a shop counter.
	if hasAnyType(rec, skateParkTypes) && hasAnyType(rec, retailTypes) {
		return Confidence{LevelVeryHigh, "Skatepark with store type"}
	}

	retail := hasAnyType(rec, retailTypes)

	if retail && skateWordRe.MatchString(rec.Name) {
		if matchesSkipList(rec.Name) {
			return Confidence{LevelExclude, ReasonSkipPattern}
		}
		return Confidence{LevelGood, "Store type with skate-related name"}
	}

	if retail && skateWordRe.MatchString(websiteHost(rec.Website)) {
		if matchesSkipList(rec.Name) {
			return Confidence{LevelExclude, ReasonSkipPattern}
		}
		return Confidence{LevelGood, "Store type with skate-related website"}
	}

	if tag, ok := firstType(rec, excludedTypes); ok {
		return Confidence{LevelExclude, "Excluded type: " + tag}
	}

	if matchesSkipList(rec.Name) {
		return Confidence{LevelExclude, ReasonSkipPattern}
	}

	if retail {
		return Confidence{LevelReview, "Store type without skate signals"}
	}

	return Confidence{LevelExclude, ReasonNoStoreType}
}

func hasAnyType(rec *shop.Record, set map[string]bool) bool {
	_, ok := firstType(rec, set)
	return ok
}

func firstType(rec *shop.Record, set map[string]bool) (string, bool) {
	for _, tag := range rec.Types {
		if set[strings.ToLower(tag)] {
			return strings.ToLower(tag), true
		}
	}
	return "", false
}

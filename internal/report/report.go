// Package report renders operator-facing text for the CLI: the
// potential-chain table printed after a run and the dataset stats block.
package report

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/skatemap/skatemap-data/internal/classify"
	"github.com/skatemap/skatemap-data/internal/store"
)

// ChainCandidates renders the potential-chain table. Returns "" for an
// empty set so callers can print conditionally.
func ChainCandidates(candidates []classify.ChainCandidate) string {
	if len(candidates) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(candidates)+1)
	rows = append(rows, []string{"NAME", "LOCATIONS", "CITIES"})
	for _, c := range candidates {
		rows = append(rows, []string{
			c.Name,
			strconv.Itoa(c.LocationCount),
			strings.Join(c.Cities, ", "),
		})
	}
	return renderTable(rows)
}

// Pending renders the review queue. Entries are keyed by external ID, the
// handle the review commands take. Returns "" for an empty queue.
func Pending(entries []store.PendingEntry) string {
	if len(entries) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, []string{"ID", "NAME", "REASON"})
	for i := range entries {
		e := &entries[i]
		id := e.ExternalID()
		if id == "" {
			id = "-"
		}
		rows = append(rows, []string{id, e.Name, e.ConfidenceReason})
	}
	return renderTable(rows)
}

// Stats renders the dataset tally block as aligned label/value lines.
func Stats(s store.Stats) string {
	rows := [][]string{
		{"Total shops", strconv.Itoa(s.Total)},
		{"Independent", strconv.Itoa(s.Independent)},
		{"Chains", strconv.Itoa(s.Chains)},
		{"With website", strconv.Itoa(s.WithWebsite)},
		{"With phone", strconv.Itoa(s.WithPhone)},
		{"With photo", strconv.Itoa(s.WithPhoto)},
	}
	if s.Region != "" {
		rows = append(rows, []string{"Region", s.Region})
	}
	if s.RunID != "" {
		rows = append(rows, []string{"Run", s.RunID})
	}
	return renderTable(rows)
}

// renderTable pads cells to the widest entry per column, two spaces between
// columns. Widths are display widths, so wide runes in shop names do not
// break the alignment.
func renderTable(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

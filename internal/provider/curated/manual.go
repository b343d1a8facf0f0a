// Package curated loads hand-maintained shop sources from local JSON files.
//
// Two files feed the pipeline: manual submissions collected through the
// site's suggestion form, and the seed list of known chain locations. Both
// files are optional; a missing one contributes nothing to the run.
package curated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/skatemap/skatemap-data/internal/shop"
)

// submission is the wire shape of one manual entry.
type submission struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Website string   `json:"website"`
	Phone   string   `json:"phone"`
	Types   []string `json:"types"`
}

// Manual loads user-submitted shops from a JSON array file.
type Manual struct {
	path   string
	logger *slog.Logger
}

// NewManual creates a loader for the manual-submissions file.
func NewManual(path string, logger *slog.Logger) *Manual {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manual{path: path, logger: logger}
}

// Name reports the provenance tag attached to fetched records.
func (m *Manual) Name() string { return shop.SourceManual }

// Fetch reads and normalizes the submissions file. A missing file is not
// an error; unnamed entries are dropped.
func (m *Manual) Fetch(ctx context.Context) ([]shop.Record, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Info("No manual submissions file", "path", m.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manual submissions: %w", err)
	}

	var subs []submission
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("decode manual submissions: %w", err)
	}

	records := make([]shop.Record, 0, len(subs))
	for _, sub := range subs {
		if strings.TrimSpace(sub.Name) == "" {
			continue
		}
		records = append(records, normalizeSubmission(sub))
	}
	return records, nil
}

func normalizeSubmission(sub submission) shop.Record {
	rec := shop.Record{
		Name:   strings.TrimSpace(sub.Name),
		Source: shop.SourceManual,
		Types:  sub.Types,
		Lat:    sub.Lat,
		Lng:    sub.Lng,
	}

	// The suggestion form has no place-type field.
	if len(rec.Types) == 0 {
		rec.Types = []string{"skateboard_shop", "store"}
	}

	if v := strings.TrimSpace(sub.Address); v != "" {
		rec.Address = &v
	}
	if v := strings.TrimSpace(sub.Website); v != "" {
		rec.Website = &v
	}
	if v := strings.TrimSpace(sub.Phone); v != "" {
		rec.Phone = &v
	}

	return rec
}

// Package store persists pipeline outputs: the published dataset document,
// the pending-review file, and the manual decision sets that survive across
// runs.
//
// Everything is flat JSON on disk. The frontend fetches the dataset
// directly, so writes go through a temp file and rename; a reader must
// never observe a half-written document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/skatemap/skatemap-data/internal/shop"
)

// DatasetVersion is the published document's schema version. Bump when the
// record shape changes in a way the frontend must know about.
const DatasetVersion = 2

// Output file names under the data directory.
const (
	DatasetFile = "shops.json"
	PendingFile = "pending-shops.json"
)

// ---------------------------------------------------------------------------
// Dataset document
// ---------------------------------------------------------------------------

// Stats is the tally block embedded in the dataset document.
type Stats struct {
	Total       int `json:"total"`
	Independent int `json:"independent"`
	Chains      int `json:"chains"`
	WithWebsite int `json:"withWebsite"`
	WithPhone   int `json:"withPhone"`
	WithPhoto   int `json:"withPhoto"`

	// Run metadata, for tracing a published file back to the run that
	// produced it.
	RunID  string `json:"runId,omitempty"`
	Region string `json:"region,omitempty"`
}

// ComputeStats tallies the published record set.
func ComputeStats(shops []shop.Record) Stats {
	var s Stats
	s.Total = len(shops)
	for i := range shops {
		rec := &shops[i]
		if rec.IsIndependent {
			s.Independent++
		} else {
			s.Chains++
		}
		if rec.Website != nil {
			s.WithWebsite++
		}
		if rec.Phone != nil {
			s.WithPhone++
		}
		if rec.PhotoURL != nil {
			s.WithPhoto++
		}
	}
	return s
}

// Dataset is the published JSON document consumed by the frontend.
type Dataset struct {
	Shops       []shop.Public `json:"shops"`
	LastUpdated string        `json:"lastUpdated"`
	Version     int           `json:"version"`
	Stats       Stats         `json:"stats"`
}

// NewDataset builds the document for a finished run. Records are published
// in their stripped form; stats are tallied from the full records.
func NewDataset(shops []shop.Record, now time.Time) Dataset {
	public := make([]shop.Public, len(shops))
	for i := range shops {
		public[i] = shops[i].ToPublic()
	}
	return Dataset{
		Shops:       public,
		LastUpdated: now.UTC().Format(time.RFC3339),
		Version:     DatasetVersion,
		Stats:       ComputeStats(shops),
	}
}

// WriteDataset writes the document to path atomically.
func WriteDataset(path string, ds Dataset) error {
	return writeJSON(path, ds)
}

// ReadDataset loads a previously published document.
func ReadDataset(path string) (Dataset, error) {
	var ds Dataset
	data, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("read dataset: %w", err)
	}
	if err := json.Unmarshal(data, &ds); err != nil {
		return ds, fmt.Errorf("parse dataset: %w", err)
	}
	return ds, nil
}

// ---------------------------------------------------------------------------
// Pending review
// ---------------------------------------------------------------------------

// PendingEntry is a record routed to manual review: the full record shape
// (provenance included, so decisions can key on external IDs) plus the
// classifier's reason.
type PendingEntry struct {
	shop.Record
	ConfidenceReason string `json:"confidenceReason"`
}

// WritePending writes the pending-review file atomically. An empty set
// still writes a file, so reviewers see an explicit empty list rather than
// a stale one.
func WritePending(path string, entries []PendingEntry) error {
	if entries == nil {
		entries = []PendingEntry{}
	}
	return writeJSON(path, entries)
}

// ReadPending loads the pending-review file. A missing file is an empty
// set, not an error.
func ReadPending(path string) ([]PendingEntry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending: %w", err)
	}
	var entries []PendingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse pending: %w", err)
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Atomic JSON writes
// ---------------------------------------------------------------------------

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

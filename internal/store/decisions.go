package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Decision set file names, under the data directory.
const (
	approvedFile = "approved-shops.json"
	removedFile  = "removed-shops.json"
)

// Decisions holds manual review outcomes keyed by stable external place
// IDs. They persist across runs so a shop approved or removed once is
// never re-scored. The two sets are mutually exclusive; recording one
// verdict clears the other.
type Decisions struct {
	dir      string
	approved map[string]bool
	removed  map[string]bool
}

// LoadDecisions reads both decision files from dir. Missing files are
// empty sets; a first run needs no setup.
func LoadDecisions(dir string) (*Decisions, error) {
	approved, err := readIDSet(filepath.Join(dir, approvedFile))
	if err != nil {
		return nil, err
	}
	removed, err := readIDSet(filepath.Join(dir, removedFile))
	if err != nil {
		return nil, err
	}
	return &Decisions{dir: dir, approved: approved, removed: removed}, nil
}

func readIDSet(path string) (map[string]bool, error) {
	set := make(map[string]bool)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set, nil
}

// Save writes both decision files atomically, IDs sorted for stable diffs.
func (d *Decisions) Save() error {
	if err := writeJSON(filepath.Join(d.dir, approvedFile), sortedIDs(d.approved)); err != nil {
		return err
	}
	return writeJSON(filepath.Join(d.dir, removedFile), sortedIDs(d.removed))
}

func sortedIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Approve records an approval. Reports whether the set changed. Empty IDs
// are ignored; a record without a stable external ID cannot carry a
// decision across runs.
func (d *Decisions) Approve(id string) bool {
	if id == "" || d.approved[id] {
		return false
	}
	d.approved[id] = true
	delete(d.removed, id)
	return true
}

// Remove records a removal, clearing any prior approval.
func (d *Decisions) Remove(id string) bool {
	if id == "" || d.removed[id] {
		return false
	}
	d.removed[id] = true
	delete(d.approved, id)
	return true
}

// IsApproved reports whether the ID has a persisted approval.
func (d *Decisions) IsApproved(id string) bool { return id != "" && d.approved[id] }

// IsRemoved reports whether the ID has a persisted removal.
func (d *Decisions) IsRemoved(id string) bool { return id != "" && d.removed[id] }

// Counts returns the sizes of the approved and removed sets.
func (d *Decisions) Counts() (approved, removed int) {
	return len(d.approved), len(d.removed)
}

// ApprovedIDs returns the approved set sorted, for the review listing.
func (d *Decisions) ApprovedIDs() []string { return sortedIDs(d.approved) }

// RemovedIDs returns the removed set sorted.
func (d *Decisions) RemovedIDs() []string { return sortedIDs(d.removed) }

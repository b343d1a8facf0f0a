// Package pipeline orchestrates a full collection run: fetch from every
// source, filter to the region, deduplicate, validate coordinates, classify,
// normalize, route by confidence, and persist the outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skatemap/skatemap-data/internal/classify"
	"github.com/skatemap/skatemap-data/internal/dedupe"
	"github.com/skatemap/skatemap-data/internal/external"
	"github.com/skatemap/skatemap-data/internal/geo"
	"github.com/skatemap/skatemap-data/internal/normalize"
	"github.com/skatemap/skatemap-data/internal/provider"
	"github.com/skatemap/skatemap-data/internal/shop"
	"github.com/skatemap/skatemap-data/internal/store"
)

var (
	// ErrNoRecords means every source returned nothing or failed outright.
	// Publishing in that state would replace the live dataset with an empty
	// one, so the run aborts before writing anything.
	ErrNoRecords = errors.New("no records collected")

	// ErrAllFiltered means filtering and classification removed every
	// record. Same abort-before-write protection as ErrNoRecords.
	ErrAllFiltered = errors.New("all records filtered out")
)

// Options configures one collection run.
type Options struct {
	Region   geo.Region
	Loaders  []provider.Loader
	Geocoder external.Geocoder // optional; without it coordinate-less records are dropped
	// Decisions carries persisted review verdicts. Optional; nil means no
	// overrides apply.
	Decisions *store.Decisions
	DataDir   string
	DryRun    bool
	Logger    *slog.Logger
}

// Result tracks counts from one collection run.
type Result struct {
	RunID     string
	Region    string
	Collected int
	PerSource map[string]int

	OutOfRegion int
	Merged      int
	Geocoded    int
	Unlocatable int

	Published int
	Pending   int
	Excluded  int
	Approved  int
	Removed   int

	Candidates []classify.ChainCandidate
	Errors     []string
	Duration   time.Duration
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a one-line human-readable account of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"collected=%d merged=%d geocoded=%d published=%d pending=%d excluded=%d removed=%d out_of_region=%d unlocatable=%d errors=%d",
		r.Collected, r.Merged, r.Geocoded,
		r.Published, r.Pending, r.Excluded, r.Removed,
		r.OutOfRegion, r.Unlocatable, len(r.Errors),
	)
}

// fetchResult is one source's contribution, kept in loader order so that
// fetch completion order never affects downstream merge outcomes.
type fetchResult struct {
	name    string
	records []shop.Record
	err     error
}

// Run executes the full pipeline. Source failures are tolerated and
// reported in the Result; only an empty outcome or a write failure aborts
// the run.
func Run(ctx context.Context, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := Result{
		RunID:     uuid.NewString(),
		Region:    opts.Region.Name,
		PerSource: make(map[string]int),
	}

	if err := opts.Region.Validate(); err != nil {
		return result, fmt.Errorf("invalid region: %w", err)
	}

	start := time.Now()
	logger.Info("Starting collection run",
		"run_id", result.RunID, "region", opts.Region.Name, "sources", len(opts.Loaders))

	// Collect from all sources in parallel.
	fetches := make([]fetchResult, len(opts.Loaders))
	var wg sync.WaitGroup
	for i, loader := range opts.Loaders {
		i, loader := i, loader
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := loader.Fetch(ctx)
			fetches[i] = fetchResult{name: loader.Name(), records: records, err: err}
		}()
	}
	wg.Wait()

	var collected []shop.Record
	for _, fr := range fetches {
		if fr.err != nil {
			logger.Error("Source failed", "source", fr.name, "error", fr.err)
			result.AddErrorf("fetch %s: %v", fr.name, fr.err)
			continue
		}
		logger.Info("Source complete", "source", fr.name, "records", len(fr.records))
		result.PerSource[fr.name] = len(fr.records)
		collected = append(collected, fr.records...)
	}
	result.Collected = len(collected)

	if len(collected) == 0 {
		return result, ErrNoRecords
	}

	// Bounding-box prefilter. Records without coordinates stay in; they get
	// a chance at geocoding after the merge.
	bounded := make([]shop.Record, 0, len(collected))
	for _, rec := range collected {
		if rec.HasCoordinates() && !opts.Region.Contains(*rec.Lat, *rec.Lng) {
			result.OutOfRegion++
			continue
		}
		bounded = append(bounded, rec)
	}
	logger.Info("Bounding box filter", "kept", len(bounded), "dropped", result.OutOfRegion)

	// Merge duplicates across sources.
	unique := dedupe.Deduplicate(bounded)
	dstats := dedupe.StatsFor(bounded, unique)
	result.Merged = dstats.Merged
	logger.Info("Deduplication complete", "unique", dstats.Unique, "merged", dstats.Merged)

	// Coordinate validation: fill missing coordinates from the address where
	// possible, drop what stays unlocatable or lands outside the region.
	located := make([]shop.Record, 0, len(unique))
	for _, rec := range unique {
		if rec.HasCoordinates() {
			located = append(located, rec)
			continue
		}
		if opts.Geocoder == nil || rec.Address == nil {
			result.Unlocatable++
			logger.Warn("Dropping record without coordinates", "name", rec.Name)
			continue
		}
		lat, lng, err := opts.Geocoder.Geocode(ctx, *rec.Address)
		if err != nil {
			if ctx.Err() != nil {
				return result, fmt.Errorf("geocoding interrupted: %w", ctx.Err())
			}
			result.Unlocatable++
			logger.Warn("Geocoding failed", "name", rec.Name, "address", *rec.Address, "error", err)
			continue
		}
		if !opts.Region.Contains(lat, lng) {
			result.OutOfRegion++
			logger.Warn("Geocoded outside region", "name", rec.Name, "lat", lat, "lng", lng)
			continue
		}
		rec.Lat, rec.Lng = &lat, &lng
		result.Geocoded++
		located = append(located, rec)
	}

	// Chain labeling, then the diagnostic sweep for names the chain table
	// does not know yet.
	for i := range located {
		classify.Label(&located[i])
	}
	result.Candidates = classify.DetectPotentialChains(located)
	for _, cand := range result.Candidates {
		logger.Info("Potential chain detected",
			"name", cand.Name, "locations", cand.LocationCount, "cities", strings.Join(cand.Cities, ", "))
	}

	for i := range located {
		normalize.Apply(&located[i])
	}

	// Confidence routing. Persisted removals are checked before scoring so
	// a removed shop never resurfaces in the pending file; approvals bypass
	// scoring entirely.
	var published []shop.Record
	var pending []store.PendingEntry
	for _, rec := range located {
		id := rec.ExternalID()

		if opts.Decisions != nil && opts.Decisions.IsRemoved(id) {
			result.Removed++
			continue
		}
		if opts.Decisions != nil && opts.Decisions.IsApproved(id) {
			result.Approved++
			published = append(published, rec)
			continue
		}

		conf := classify.Score(&rec)
		switch {
		case conf.Level.AutoInclude():
			published = append(published, rec)
		case conf.Level == classify.LevelReview:
			pending = append(pending, store.PendingEntry{Record: rec, ConfidenceReason: conf.Reason})
		default:
			result.Excluded++
		}
	}
	result.Published = len(published)
	result.Pending = len(pending)
	logger.Info("Confidence routing complete",
		"published", result.Published, "pending", result.Pending,
		"excluded", result.Excluded, "removed", result.Removed)

	if len(published) == 0 {
		return result, ErrAllFiltered
	}

	// Stable output order: sorted by name, ties keeping merge order, with
	// sequential IDs assigned after the sort. Pending entries are sorted the
	// same way but carry no IDs.
	sort.SliceStable(published, func(i, j int) bool { return published[i].Name < published[j].Name })
	for i := range published {
		published[i].ID = i + 1
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Name < pending[j].Name })

	if opts.DryRun {
		logger.Info("Dry run, skipping writes")
	} else {
		ds := store.NewDataset(published, time.Now())
		ds.Stats.RunID = result.RunID
		ds.Stats.Region = opts.Region.Name
		if err := store.WriteDataset(filepath.Join(opts.DataDir, store.DatasetFile), ds); err != nil {
			return result, fmt.Errorf("write dataset: %w", err)
		}
		if err := store.WritePending(filepath.Join(opts.DataDir, store.PendingFile), pending); err != nil {
			return result, fmt.Errorf("write pending: %w", err)
		}
	}

	result.Duration = time.Since(start)
	logger.Info("Run complete", "summary", result.Summary(), "duration", result.Duration)
	return result, nil
}

// Package provider defines the contract between the pipeline and its data
// sources.
//
// Each source (places API, Overpass, curated files) lives in its own
// subpackage and exposes a Loader. The pipeline fans out over loaders,
// tolerates individual failures, and never cares where records came from
// beyond their source tag.
package provider

import (
	"context"

	"github.com/skatemap/skatemap-data/internal/shop"
)

// Loader is one upstream source of candidate shop records.
//
// Fetch returns raw, un-normalized records; cleanup is the pipeline's job.
// A loader should honor ctx cancellation on network calls and return
// partial results with an error only when the partial set is usable.
type Loader interface {
	// Name identifies the source in logs and run summaries. By
	// convention it matches the source tag the loader stamps on records.
	Name() string

	Fetch(ctx context.Context) ([]shop.Record, error)
}

// Func adapts a plain function into a Loader, mostly for tests.
type Func struct {
	LoaderName string
	FetchFunc  func(ctx context.Context) ([]shop.Record, error)
}

func (f Func) Name() string { return f.LoaderName }

func (f Func) Fetch(ctx context.Context) ([]shop.Record, error) {
	return f.FetchFunc(ctx)
}

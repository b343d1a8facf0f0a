// Command ingest is the Skatemap shop directory pipeline CLI.
//
// Usage:
//
//	skatemap-ingest collect --region socal
//	skatemap-ingest collect --dry-run
//	skatemap-ingest chains
//	skatemap-ingest review list
//	skatemap-ingest review approve ChIJN1t_tDeuEmsRUsoyG83frY4
//	skatemap-ingest review remove node/5371123456
//	skatemap-ingest stats
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skatemap/skatemap-data/internal/classify"
	"github.com/skatemap/skatemap-data/internal/config"
	"github.com/skatemap/skatemap-data/internal/external"
	"github.com/skatemap/skatemap-data/internal/geo"
	"github.com/skatemap/skatemap-data/internal/pipeline"
	"github.com/skatemap/skatemap-data/internal/provider"
	"github.com/skatemap/skatemap-data/internal/provider/curated"
	"github.com/skatemap/skatemap-data/internal/provider/googleplaces"
	"github.com/skatemap/skatemap-data/internal/provider/overpass"
	"github.com/skatemap/skatemap-data/internal/report"
	"github.com/skatemap/skatemap-data/internal/shop"
	"github.com/skatemap/skatemap-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "skatemap-ingest",
		Short: "Skatemap shop directory pipeline CLI",
	}

	root.AddCommand(collectCmd())
	root.AddCommand(chainsCmd())
	root.AddCommand(reviewCmd())
	root.AddCommand(statsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// collect command
// --------------------------------------------------------------------------

func collectCmd() *cobra.Command {
	var (
		regionSlug string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run the full collection pipeline and publish the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, cfg *config.Config) error {
				if regionSlug != "" {
					cfg.Region = regionSlug
				}
				region, ok := cfg.LookupRegion(cfg.Region)
				if !ok {
					return fmt.Errorf("unknown region %q (known: %s)", cfg.Region, strings.Join(cfg.RegionSlugs(), ", "))
				}

				loaders := buildLoaders(cfg, region)
				if len(loaders) == 0 {
					return fmt.Errorf("every source is disabled")
				}

				decisions, err := store.LoadDecisions(cfg.DataDir)
				if err != nil {
					return fmt.Errorf("load decisions: %w", err)
				}

				if !dryRun {
					if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
						return fmt.Errorf("create data dir: %w", err)
					}
				}

				result, err := pipeline.Run(ctx, pipeline.Options{
					Region:    region,
					Loaders:   loaders,
					Geocoder:  external.NewNominatimGeocoder(cfg.NominatimURL, logger),
					Decisions: decisions,
					DataDir:   cfg.DataDir,
					DryRun:    dryRun,
					Logger:    logger,
				})
				if err != nil {
					return err
				}

				logger.Info("Collect finished",
					"region", region.Name,
					"dry_run", dryRun,
					"duration", result.Duration.Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("collect error", "error", e)
				}
				if table := report.ChainCandidates(result.Candidates); table != "" {
					fmt.Print(table)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&regionSlug, "region", "", "Region slug (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline but write no files")
	return cmd
}

// buildLoaders assembles the enabled sources. Google Places is skipped with
// a warning when no API key is configured, so OSM-only runs still work.
func buildLoaders(cfg *config.Config, region geo.Region) []provider.Loader {
	var loaders []provider.Loader

	if cfg.Pipeline.SourceEnabled(shop.SourceChain) {
		loaders = append(loaders, curated.NewChains(cfg.ChainSeedFile, logger))
	}
	if cfg.Pipeline.SourceEnabled(shop.SourceManual) {
		loaders = append(loaders, curated.NewManual(cfg.ManualFile, logger))
	}
	if cfg.Pipeline.SourceEnabled(shop.SourceOSM) {
		loaders = append(loaders, overpass.NewLoader(overpass.Config{
			BaseURL: cfg.OverpassURL,
			Region:  region,
		}, logger))
	}
	if cfg.Pipeline.SourceEnabled(shop.SourceGooglePlaces) {
		if cfg.GooglePlacesAPIKey == "" {
			logger.Warn("GOOGLE_PLACES_API_KEY not set, skipping Google Places")
		} else {
			loaders = append(loaders, googleplaces.NewLoader(googleplaces.Config{
				APIKey:             cfg.GooglePlacesAPIKey,
				Region:             region,
				GridStep:           cfg.Pipeline.GridStep,
				NearbyRadiusMeters: cfg.Pipeline.SearchRadius,
				RequestsPerMinute:  cfg.PlacesRPM,
			}, logger))
		}
	}

	return loaders
}

// --------------------------------------------------------------------------
// chains command
// --------------------------------------------------------------------------

func chainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "Detect potential chains in the current dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, cfg *config.Config) error {
				records, err := loadCurrentRecords(cfg)
				if err != nil {
					return err
				}
				candidates := classify.DetectPotentialChains(records)
				if len(candidates) == 0 {
					fmt.Println("No potential chains detected.")
					return nil
				}
				fmt.Print(report.ChainCandidates(candidates))
				return nil
			})
		},
	}
}

// loadCurrentRecords lifts the published dataset and the pending file back
// into pipeline records, for analysis over existing output.
func loadCurrentRecords(cfg *config.Config) ([]shop.Record, error) {
	ds, err := store.ReadDataset(filepath.Join(cfg.DataDir, store.DatasetFile))
	if err != nil {
		return nil, err
	}
	records := make([]shop.Record, 0, len(ds.Shops))
	for i := range ds.Shops {
		records = append(records, ds.Shops[i].ToRecord())
	}

	pending, err := store.ReadPending(filepath.Join(cfg.DataDir, store.PendingFile))
	if err != nil {
		return nil, err
	}
	for i := range pending {
		records = append(records, pending[i].Record)
	}
	return records, nil
}

// --------------------------------------------------------------------------
// review commands
// --------------------------------------------------------------------------

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and decide the manual review queue",
	}
	cmd.AddCommand(reviewListCmd())
	cmd.AddCommand(reviewApproveCmd())
	cmd.AddCommand(reviewRemoveCmd())
	return cmd
}

func reviewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shops awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, cfg *config.Config) error {
				entries, err := store.ReadPending(filepath.Join(cfg.DataDir, store.PendingFile))
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Println("Review queue is empty.")
					return nil
				}
				fmt.Print(report.Pending(entries))
				return nil
			})
		},
	}
}

func reviewApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a shop by external ID; it publishes on the next run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, cfg *config.Config) error {
				return recordDecision(cfg, args[0], "approve")
			})
		},
	}
}

func reviewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a shop by external ID; it is dropped on future runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, cfg *config.Config) error {
				return recordDecision(cfg, args[0], "remove")
			})
		},
	}
}

// recordDecision persists one verdict into the decision set.
func recordDecision(cfg *config.Config, id, verdict string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("empty ID")
	}

	decisions, err := store.LoadDecisions(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load decisions: %w", err)
	}

	var changed bool
	switch verdict {
	case "approve":
		changed = decisions.Approve(id)
	case "remove":
		changed = decisions.Remove(id)
	}
	if !changed {
		logger.Info("Decision already recorded", "id", id, "verdict", verdict)
		return nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := decisions.Save(); err != nil {
		return fmt.Errorf("save decisions: %w", err)
	}

	approved, removed := decisions.Counts()
	logger.Info("Decision recorded",
		"id", id, "verdict", verdict,
		"approved", approved, "removed", removed)
	return nil
}

// --------------------------------------------------------------------------
// stats command
// --------------------------------------------------------------------------

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the published dataset's stats block",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, cfg *config.Config) error {
				ds, err := store.ReadDataset(filepath.Join(cfg.DataDir, store.DatasetFile))
				if err != nil {
					return err
				}
				fmt.Printf("%s  (version %d, updated %s)\n\n", store.DatasetFile, ds.Version, ds.LastUpdated)
				fmt.Print(report.Stats(ds.Stats))
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runPipeline handles config loading and context cancellation.
func runPipeline(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return fn(ctx, cfg)
}

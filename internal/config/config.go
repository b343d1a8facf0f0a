// Package config provides centralized configuration loaded from environment
// variables and the optional pipeline YAML file. Shared by cmd/ingest and
// cmd/preview.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skatemap/skatemap-data/internal/geo"
)

// ErrUnknownRegion marks a region slug that neither the built-in registry
// nor the pipeline file knows.
var ErrUnknownRegion = errors.New("unknown region")

// --------------------------------------------------------------------------
// Pipeline file
// --------------------------------------------------------------------------

// Pipeline holds the pipeline file contents: sweep tuning, source toggles,
// and custom regions layered over the built-in registry.
type Pipeline struct {
	Region       string                `yaml:"region"`
	GridStep     float64               `yaml:"grid_step"`
	SearchRadius int                   `yaml:"search_radius"`
	Sources      map[string]bool       `yaml:"sources"`
	Regions      map[string]geo.Region `yaml:"regions"`
}

// SourceEnabled reports whether a source participates in collection.
// Sources are opt-out; anything the file does not name stays on.
func (p Pipeline) SourceEnabled(name string) bool {
	enabled, ok := p.Sources[name]
	return !ok || enabled
}

// --------------------------------------------------------------------------
// Config struct
// --------------------------------------------------------------------------

type Config struct {
	// Data layout
	DataDir       string
	SiteDir       string
	ManualFile    string
	ChainSeedFile string

	// Collection
	Region             string
	GooglePlacesAPIKey string
	PlacesRPM          int
	OverpassURL        string
	NominatimURL       string

	// Preview server
	PreviewHost string
	PreviewPort int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	Pipeline Pipeline
}

// Load reads configuration with sensible defaults. Precedence is built-in
// default, then pipeline file, then environment.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir: envOr("DATA_DIR", "data"),
		SiteDir: envOr("SITE_DIR", "site"),

		GooglePlacesAPIKey: envOr("GOOGLE_PLACES_API_KEY", ""),
		PlacesRPM:          envInt("PLACES_REQUESTS_PER_MINUTE", 20),
		OverpassURL:        envOr("OVERPASS_URL", ""),
		NominatimURL:       envOr("NOMINATIM_URL", ""),

		PreviewHost: envOr("PREVIEW_HOST", "0.0.0.0"),
		PreviewPort: envInt("PREVIEW_PORT", envInt("PORT", 8100)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),
	}

	cfg.ManualFile = envOr("MANUAL_SUBMISSIONS_FILE", filepath.Join(cfg.DataDir, "manual-submissions.json"))
	cfg.ChainSeedFile = envOr("CHAIN_SEED_FILE", filepath.Join(cfg.DataDir, "chain-locations.json"))

	if err := cfg.loadPipelineFile(envOr("PIPELINE_CONFIG", "pipeline.yaml")); err != nil {
		return nil, err
	}

	cfg.Region = geo.DefaultRegion
	if cfg.Pipeline.Region != "" {
		cfg.Region = cfg.Pipeline.Region
	}
	if v := os.Getenv("REGION"); v != "" {
		cfg.Region = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPipelineFile reads and parses the pipeline file. A missing file just
// leaves the defaults in place.
func (c *Config) loadPipelineFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read pipeline config: %w", err)
	}

	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse pipeline config: %w", err)
	}

	// Custom region slugs match case-insensitively, same as the built-in
	// registry.
	if len(p.Regions) > 0 {
		regions := make(map[string]geo.Region, len(p.Regions))
		for slug, r := range p.Regions {
			regions[strings.ToLower(strings.TrimSpace(slug))] = r
		}
		p.Regions = regions
	}

	c.Pipeline = p
	return nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	for slug, r := range c.Pipeline.Regions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("region %q: %w", slug, err)
		}
	}
	if _, ok := c.LookupRegion(c.Region); !ok {
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownRegion, c.Region, strings.Join(c.RegionSlugs(), ", "))
	}
	if c.Pipeline.GridStep < 0 {
		return fmt.Errorf("grid_step must not be negative, got %v", c.Pipeline.GridStep)
	}
	if c.Pipeline.SearchRadius < 0 {
		return fmt.Errorf("search_radius must not be negative, got %d", c.Pipeline.SearchRadius)
	}
	return nil
}

// IsProduction returns true if running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LookupRegion resolves a slug against the pipeline file's custom regions
// first, then the built-in registry.
func (c *Config) LookupRegion(slug string) (geo.Region, bool) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if r, ok := c.Pipeline.Regions[key]; ok {
		return r, true
	}
	return geo.Lookup(key)
}

// RegionSlugs returns every known region slug, built-in and custom, sorted.
func (c *Config) RegionSlugs() []string {
	out := geo.Slugs()
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s] = true
	}
	for slug := range c.Pipeline.Regions {
		if !seen[slug] {
			out = append(out, slug)
		}
	}
	sort.Strings(out)
	return out
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

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

// chainSeed is the wire shape of the chain-locations file.
type chainSeed struct {
	Chains []struct {
		Name      string `json:"name"`
		Website   string `json:"website"`
		Locations []struct {
			Name    string   `json:"name"`
			Address string   `json:"address"`
			Lat     *float64 `json:"lat"`
			Lng     *float64 `json:"lng"`
			Phone   string   `json:"phone"`
		} `json:"locations"`
	} `json:"chains"`
}

// Chains loads the curated list of known chain locations. Chain entries
// outrank every other source during merging, so the seed file is the place
// to pin authoritative names and coordinates.
type Chains struct {
	path   string
	logger *slog.Logger
}

// NewChains creates a loader for the chain-locations file.
func NewChains(path string, logger *slog.Logger) *Chains {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chains{path: path, logger: logger}
}

// Name reports the provenance tag attached to fetched records.
func (c *Chains) Name() string { return shop.SourceChain }

// Fetch reads the seed file and flattens it to one record per location.
// A missing file is not an error.
func (c *Chains) Fetch(ctx context.Context) ([]shop.Record, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Info("No chain seed file", "path", c.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chain seed: %w", err)
	}

	var seed chainSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode chain seed: %w", err)
	}

	var records []shop.Record
	for _, ch := range seed.Chains {
		chainName := strings.TrimSpace(ch.Name)
		if chainName == "" {
			c.logger.Warn("Skipping chain entry without a name", "locations", len(ch.Locations))
			continue
		}

		for _, loc := range ch.Locations {
			name := strings.TrimSpace(loc.Name)
			if name == "" {
				name = chainName
			}

			rec := shop.Record{
				Name:          name,
				IsIndependent: false,
				ChainName:     shop.Ptr(chainName),
				Source:        shop.SourceChain,
				Types:         []string{"skateboard_shop", "store"},
				Lat:           loc.Lat,
				Lng:           loc.Lng,
			}

			if v := strings.TrimSpace(loc.Address); v != "" {
				rec.Address = &v
			}
			if v := strings.TrimSpace(loc.Phone); v != "" {
				rec.Phone = &v
			}
			// The site is chain-wide, not per location.
			if v := strings.TrimSpace(ch.Website); v != "" {
				rec.Website = &v
			}

			records = append(records, rec)
		}
	}
	return records, nil
}

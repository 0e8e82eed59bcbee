package mapengine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mapengine/internal/observe"
	"mapengine/mapdata"
	"mapengine/raster"
)

// Options tune how a context is assembled.
type Options struct {
	// Logger receives progress and warnings. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics defaults to observe.DefaultMetrics().
	Metrics *observe.Metrics
	// Workers bounds the parallel folds. Zero means GOMAXPROCS.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = observe.DefaultMetrics()
	}
	o.Workers = raster.Workers(o.Workers)
	return o
}

// Assemble loads every input named by paths and builds a snapshot. Province
// definitions and the raster must load; unreadable state files are skipped
// and an unreadable country color file leaves the color table empty.
func Assemble(ctx context.Context, paths mapdata.Paths, opts Options) (*Context, error) {
	opts = opts.withDefaults()
	log := opts.Logger
	start := time.Now()

	log.Info("parsing province definitions", "path", paths.Definitions, "elapsed", time.Since(start))
	defs, err := mapdata.LoadDefinitions(paths.Definitions)
	if err != nil {
		return nil, err
	}
	if err := checkIDRange(defs); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("parsing states", "dir", paths.StatesDir, "elapsed", time.Since(start))
	var skipped int64
	states, err := mapdata.LoadAllStates(paths.StatesDir, func(path string, err error) {
		skipped++
		log.Warn("skipping state file", "path", path, "err", err)
	})
	if skipped > 0 {
		opts.Metrics.SkippedFiles.Add(ctx, skipped)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("parsing country colors", "path", paths.CountryColors, "elapsed", time.Since(start))
	countryColors, err := mapdata.LoadCountryColors(paths.CountryColors)
	if err != nil {
		log.Warn("country colors unavailable", "path", paths.CountryColors, "err", err)
		countryColors = map[string]mapdata.RGBColor{}
	}

	lut := raster.BuildColorLUT(defs)
	if lut.Duplicates > 0 {
		log.Warn("duplicate province colors, later definitions win", "count", lut.Duplicates)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("decoding province raster", "path", paths.Raster, "elapsed", time.Since(start))
	ras, err := raster.DecodeFile(paths.Raster, lut, opts.Workers)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("building map context", "elapsed", time.Since(start))
	c := NewContext(ras, defs, states, countryColors, opts.Workers)
	log.Info("map context ready",
		"width", c.width,
		"height", c.height,
		"provinces", len(c.definitions),
		"states", len(c.states),
		"elapsed", time.Since(start),
	)
	return c, nil
}

// idSlack is how far past the definition count province ids may run. Render
// tables and the spatial index are dense up to the largest id.
const idSlack = 1 << 20

// checkIDRange rejects definition sets whose largest id would size the dense
// per-id tables far beyond the number of provinces.
func checkIDRange(defs []mapdata.ProvinceDefinition) error {
	var maxID uint32
	for _, d := range defs {
		maxID = max(maxID, d.ID)
	}
	if limit := uint64(len(defs))*4 + idSlack; uint64(maxID) > limit {
		return fmt.Errorf("%w: province id %d is too sparse for %d definitions", mapdata.ErrParse, maxID, len(defs))
	}
	return nil
}

func initMessage(c *Context) string {
	return fmt.Sprintf("Map initialized: %dx%d", c.width, c.height)
}

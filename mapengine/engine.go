package mapengine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mapengine/mapdata"
)

// Engine holds the current map snapshot. Readers copy the snapshot pointer
// under a read lock and render without holding it; Initialize builds a new
// snapshot outside the lock and swaps it in.
type Engine struct {
	opts Options

	mu  sync.RWMutex
	cur *Context
}

// New returns an engine with no map installed.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Initialize loads the map named by paths and installs it. On failure the
// previously installed map, if any, stays in place.
func (e *Engine) Initialize(ctx context.Context, paths mapdata.Paths) (string, error) {
	start := time.Now()
	c, err := Assemble(ctx, paths, e.opts)
	e.opts.Metrics.RecordQuery(ctx, "initialize", err)
	if err != nil {
		e.opts.Logger.Error("map initialization failed", "err", err, "elapsed", time.Since(start))
		return "", err
	}
	e.Install(c)
	e.opts.Metrics.InitDuration.Record(ctx, time.Since(start).Seconds())
	return initMessage(c), nil
}

// Install replaces the current snapshot with c.
func (e *Engine) Install(c *Context) {
	e.mu.Lock()
	e.cur = c
	e.mu.Unlock()
}

// Clear drops the current snapshot.
func (e *Engine) Clear() {
	e.Install(nil)
}

// Current returns the installed snapshot.
func (e *Engine) Current() (*Context, error) {
	e.mu.RLock()
	c := e.cur
	e.mu.RUnlock()
	if c == nil {
		return nil, ErrNotInitialized
	}
	return c, nil
}

func (e *Engine) logger() *slog.Logger { return e.opts.Logger }

func (e *Engine) ProvinceAt(x, y int) (uint32, bool, error) {
	c, err := e.Current()
	e.opts.Metrics.RecordQuery(context.Background(), "province_at", err)
	if err != nil {
		return 0, false, err
	}
	id, ok := c.ProvinceAt(x, y)
	return id, ok, nil
}

func (e *Engine) Metadata() (Metadata, error) {
	c, err := e.Current()
	e.opts.Metrics.RecordQuery(context.Background(), "metadata", err)
	if err != nil {
		return Metadata{}, err
	}
	return c.Metadata(), nil
}

func (e *Engine) ProvinceOutline(id uint32) ([]Point, error) {
	return e.outline("province_outline", func(c *Context) ([]Point, error) { return c.ProvinceOutline(id) })
}

func (e *Engine) StateOutline(id uint32) ([]Point, error) {
	return e.outline("state_outline", func(c *Context) ([]Point, error) { return c.StateOutline(id) })
}

func (e *Engine) outline(op string, fn func(*Context) ([]Point, error)) ([]Point, error) {
	c, err := e.Current()
	var pts []Point
	if err == nil {
		pts, err = fn(c)
	}
	e.opts.Metrics.RecordQuery(context.Background(), op, err)
	return pts, err
}

// Preview renders the whole map at targetW x targetH. Unknown mode names
// render provinces.
func (e *Engine) Preview(targetW, targetH int, mode string) ([]byte, error) {
	ctx := context.Background()
	start := time.Now()
	m := ParseRenderMode(mode)

	c, err := e.Current()
	var buf []byte
	if err == nil {
		buf, err = c.Preview(targetW, targetH, m)
	}
	e.opts.Metrics.RecordQuery(ctx, "preview", err)
	if err != nil {
		return nil, err
	}
	e.opts.Metrics.RecordRender(ctx, "preview", m.String(), start)
	e.logger().Debug("preview rendered", "width", targetW, "height", targetH, "mode", m.String(), "elapsed", time.Since(start))
	return buf, nil
}

// Tile renders one TileSize square tile. Unknown mode names render
// provinces.
func (e *Engine) Tile(tileX, tileY, zoom int, mode string) ([]byte, error) {
	ctx := context.Background()
	start := time.Now()
	m := ParseRenderMode(mode)

	c, err := e.Current()
	e.opts.Metrics.RecordQuery(ctx, "tile", err)
	if err != nil {
		return nil, err
	}
	buf := c.Tile(tileX, tileY, zoom, m)
	e.opts.Metrics.RecordRender(ctx, "tile", m.String(), start)
	return buf, nil
}

// Edges returns the province edges of the current snapshot.
func (e *Engine) Edges() ([]ProvinceEdge, error) {
	c, err := e.Current()
	e.opts.Metrics.RecordQuery(context.Background(), "edges", err)
	if err != nil {
		return nil, err
	}
	return c.Edges(), nil
}

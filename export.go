package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/gift"
	"github.com/golang/freetype"
	bmp "github.com/jsummers/gobmp"
	_ "github.com/lukegb/dds"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"mapengine/internal/idstream"
	"mapengine/mapengine"
)

var (
	outlineColor  = color.RGBA{0, 0, 0, 255}
	labelFontSize = 10.0
	outlineMargin = 4
)

// exporter writes every configured artifact of the installed map to
// cfg.OutputDir.
type exporter struct {
	eng   *mapengine.Engine
	cfg   Config
	log   *slog.Logger
	start time.Time
}

func (x *exporter) path(name string) string {
	return filepath.Join(x.cfg.OutputDir, name)
}

func (x *exporter) run() error {
	c, err := x.eng.Current()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(x.cfg.OutputDir, 0o755); err != nil {
		return err
	}

	for _, mode := range x.cfg.Modes {
		if err := x.writePreview(mode); err != nil {
			return err
		}
		for _, t := range x.cfg.Tiles {
			if err := x.writeTile(t, mode); err != nil {
				return err
			}
		}
	}
	if x.cfg.LabelStates {
		if err := x.writeStateIDMap(c); err != nil {
			return err
		}
	}
	if err := x.writeStateCenters(c); err != nil {
		return err
	}
	if len(x.cfg.OutlineStates) > 0 {
		var backdrop image.Image
		if x.cfg.Backdrop != "" {
			if backdrop, err = loadImage(x.cfg.Backdrop); err != nil {
				x.log.Warn("backdrop unavailable", "path", x.cfg.Backdrop, "err", err)
			}
		}
		for _, id := range x.cfg.OutlineStates {
			if err := x.writeStateOutline(c, id, backdrop); err != nil {
				return err
			}
		}
	}
	if err := x.writeEdges(); err != nil {
		return err
	}
	if x.cfg.DumpIDs {
		if err := x.writeIDs(c); err != nil {
			return err
		}
	}
	return nil
}

func (x *exporter) writePreview(mode string) error {
	x.log.Info("generating preview", "mode", mode, "elapsed", time.Since(x.start))
	w, h := x.cfg.PreviewWidth, x.cfg.PreviewHeight
	buf, err := x.eng.Preview(w, h, mode)
	if err != nil {
		return err
	}
	img := upscale(mapengine.RGBAImage(buf, w, h), x.cfg.Upscale)
	name := "preview_" + mode
	if err := savePNG(x.path(name+".png"), img); err != nil {
		return err
	}
	if err := saveBMP(x.path(name+".bmp"), img); err != nil {
		return err
	}
	x.log.Info("saved preview", "file", name+".png", "elapsed", time.Since(x.start))
	return nil
}

func (x *exporter) writeTile(t TileConfig, mode string) error {
	buf, err := x.eng.Tile(t.X, t.Y, t.Zoom, mode)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("tile_%s_%d_%d_%d.png", mode, t.Zoom, t.X, t.Y)
	if err := savePNG(x.path(name), mapengine.RGBAImage(buf, mapengine.TileSize, mapengine.TileSize)); err != nil {
		return err
	}
	x.log.Debug("saved tile", "file", name, "elapsed", time.Since(x.start))
	return nil
}

// writeStateIDMap renders the state map at full size and writes every state
// id at the center of its bounding box.
func (x *exporter) writeStateIDMap(c *mapengine.Context) error {
	x.log.Info("generating state ID map", "elapsed", time.Since(x.start))
	buf, err := c.Preview(c.Width(), c.Height(), mapengine.ModeState)
	if err != nil {
		return err
	}
	img := mapengine.RGBAImage(buf, c.Width(), c.Height())

	fc, err := initFont(img)
	if err != nil {
		return err
	}
	for _, id := range c.StateIDs() {
		center, ok := stateCenter(c, id)
		if !ok {
			continue
		}
		n := strconv.FormatUint(uint64(id), 10)
		if err := addLabel(fc, center.X-len(n)*3, center.Y+4, n); err != nil {
			return err
		}
	}
	if err := savePNG(x.path("state_map_with_ids.png"), img); err != nil {
		return err
	}
	x.log.Info("saved state ID map", "file", "state_map_with_ids.png", "elapsed", time.Since(x.start))
	return nil
}

// writeStateCenters writes an on_actions script storing each state's map
// position in state variables.
func (x *exporter) writeStateCenters(c *mapengine.Context) error {
	var sb strings.Builder
	sb.WriteString("on_actions = {\n\ton_startup = {\n\t\teffect = {\n")
	for _, id := range c.StateIDs() {
		center, ok := stateCenter(c, id)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "\t\t\t%d = {\n\t\t\t\tset_variable = { map_x_position = %d }\n\t\t\t\tset_variable = { map_y_position = %d }\n\t\t\t}\n",
			id, center.X, center.Y)
	}
	sb.WriteString("\t\t}\n\t}\n}\n")
	return os.WriteFile(x.path("state_centers_on_actions.txt"), []byte(sb.String()), 0o644)
}

func (x *exporter) writeStateOutline(c *mapengine.Context, id uint32, backdrop image.Image) error {
	pts, err := x.eng.StateOutline(id)
	if errors.Is(err, mapengine.ErrNotFound) {
		x.log.Warn("no outline for state", "state", id)
		return nil
	}
	if err != nil {
		return err
	}
	bounds := image.Rect(0, 0, c.Width(), c.Height())
	canvas := image.NewRGBA(bounds)
	if backdrop != nil {
		draw.NearestNeighbor.Scale(canvas, bounds, backdrop, backdrop.Bounds(), draw.Src, nil)
	}
	draw.Draw(canvas, bounds, dilateOutline(pts, bounds), image.Point{}, draw.Over)

	img := cropImage(canvas, outlineRect(pts).Inset(-outlineMargin))
	name := fmt.Sprintf("state_outline_%d.png", id)
	if err := savePNG(x.path(name), img); err != nil {
		return err
	}
	x.log.Info("saved state outline", "file", name, "pixels", len(pts), "elapsed", time.Since(x.start))
	return nil
}

func (x *exporter) writeEdges() error {
	edges, err := x.eng.Edges()
	if err != nil {
		return err
	}
	f, err := os.Create(x.path("edges.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write([]string{"from_id", "to_id", "pixels"}); err != nil {
		return err
	}
	for _, e := range edges {
		rec := []string{
			strconv.FormatUint(uint64(e.FromID), 10),
			strconv.FormatUint(uint64(e.ToID), 10),
			strconv.Itoa(len(e.Points)),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	x.log.Info("saved edges", "file", "edges.csv", "edges", len(edges), "elapsed", time.Since(x.start))
	return f.Close()
}

func (x *exporter) writeIDs(c *mapengine.Context) error {
	f, err := os.Create(x.path("province_ids.lz4"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := idstream.WriteCompressed(f, c.Width(), c.Height(), c.IDs()); err != nil {
		return err
	}
	return f.Close()
}

// stateCenter returns the center of the union of a state's province boxes.
func stateCenter(c *mapengine.Context, stateID uint32) (image.Point, bool) {
	var box mapengine.BoundingBox
	found := false
	for _, p := range c.StateProvinces(stateID) {
		st, ok := c.Stats(p)
		if !ok {
			continue
		}
		if !found {
			box, found = st.Box, true
		} else {
			box = box.Union(st.Box)
		}
	}
	if !found {
		return image.Point{}, false
	}
	return image.Pt(int(box.MinX+box.MaxX)/2, int(box.MinY+box.MaxY)/2), true
}

// dilateOutline paints pts on a transparent image of size bounds and thickens
// them by one pixel in every direction.
func dilateOutline(pts []mapengine.Point, bounds image.Rectangle) *image.RGBA {
	overlay := image.NewRGBA(bounds)
	for _, p := range pts {
		overlay.SetRGBA(int(p.X), int(p.Y), outlineColor)
	}
	g := gift.New(gift.Maximum(3, true))
	dst := image.NewRGBA(g.Bounds(overlay.Bounds()))
	g.Draw(dst, overlay)
	return dst
}

func outlineRect(pts []mapengine.Point) image.Rectangle {
	var r image.Rectangle
	for i, p := range pts {
		pr := image.Rect(int(p.X), int(p.Y), int(p.X)+1, int(p.Y)+1)
		if i == 0 {
			r = pr
		} else {
			r = r.Union(pr)
		}
	}
	return r
}

// cropImage cuts r out of img. r is clipped to the image bounds.
func cropImage(img image.Image, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	g := gift.New(gift.Crop(r))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// upscale resizes img by scale with nearest neighbor sampling.
func upscale(img *image.RGBA, scale float64) image.Image {
	if scale == 1.0 || scale < 0.01 {
		return img
	}
	w := int(math.Round(float64(img.Bounds().Dx()) * scale))
	h := int(math.Round(float64(img.Bounds().Dy()) * scale))
	scaled := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.NearestNeighbor.Scale(scaled, scaled.Rect, img, img.Rect, draw.Src, nil)
	return scaled
}

func initFont(img *image.RGBA) (*freetype.Context, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, err
	}
	c := freetype.NewContext()
	c.SetDPI(72.0)
	c.SetFont(f)
	c.SetFontSize(labelFontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.Black)
	c.SetHinting(font.HintingNone)
	return c, nil
}

func addLabel(c *freetype.Context, x, y int, label string) error {
	_, err := c.DrawString(label, freetype.Pt(x, y))
	return err
}

// loadImage decodes any registered format, including DDS textures.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return img, nil
}

func savePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return err
	}
	return out.Close()
}

func saveBMP(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := bmp.Encode(out, img); err != nil {
		return err
	}
	return out.Close()
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	bmp "github.com/jsummers/gobmp"

	"mapengine/internal/bmptest"
	"mapengine/internal/idstream"
	"mapengine/mapdata"
	"mapengine/mapengine"
	"mapengine/raster"
)

var testPalette = []mapdata.RGBColor{
	mapdata.RGB(255, 0, 0),
	mapdata.RGB(0, 255, 0),
	mapdata.RGB(0, 0, 255),
}

func writeTestProject(t *testing.T) mapdata.Paths {
	t.Helper()
	dir := t.TempDir()
	p := mapdata.Paths{
		Raster:        filepath.Join(dir, "provinces.bmp"),
		Definitions:   filepath.Join(dir, "definition.csv"),
		StatesDir:     filepath.Join(dir, "states"),
		CountryColors: filepath.Join(dir, "colors.txt"),
	}
	rows := [][]int{
		{0, 0, 1, 1, 2, 2},
		{0, 0, 1, 1, 2, 2},
		{0, 0, 0, 1, 2, 2},
		{0, 0, 0, 1, 1, 2},
	}
	files := map[string][]byte{
		p.Raster:        bmptest.Encode(6, 4, 24, bmptest.Grid(testPalette, rows)),
		p.Definitions:   []byte("1;255;0;0;land;false;plains;1\n2;0;255;0;land;false;forest;1\n3;0;0;255;sea;false;ocean;0\n"),
		p.CountryColors: []byte("GER = { color = rgb { 10 20 30 } }\n"),
		filepath.Join(p.StatesDir, "10-A.txt"): []byte(`state = { id = 10 name = "A" history = { owner = GER } provinces = { 1 2 } }`),
	}
	for path, data := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

var backdropColor = color.NRGBA{200, 100, 50, 255}

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// writeDDS stores img as an uncompressed 32-bit BGRA DirectDraw surface.
func writeDDS(t *testing.T, img *image.NRGBA) string {
	t.Helper()
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	// DDS_HEADER followed by its DDS_PIXELFORMAT, as little-endian dwords.
	hdr := make([]uint32, 31)
	hdr[0] = 124
	hdr[1] = 0x1 | 0x2 | 0x4 | 0x1000
	hdr[2] = uint32(h)
	hdr[3] = uint32(w)
	hdr[4] = uint32(w * 4)
	hdr[18] = 32
	hdr[19] = 0x1 | 0x40
	hdr[21] = 32
	hdr[22], hdr[23], hdr[24], hdr[25] = 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000
	hdr[26] = 0x1000

	buf := bytes.NewBufferString("DDS ")
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			buf.Write([]byte{c.B, c.G, c.R, c.A})
		}
	}
	path := filepath.Join(t.TempDir(), "backdrop.dds")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func hasColor(img image.Image, want color.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) == want {
				return true
			}
		}
	}
	return false
}

func TestExporterRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := mapengine.New(mapengine.Options{Logger: logger, Workers: 2})
	if _, err := eng.Initialize(context.Background(), writeTestProject(t)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	backdrop := writeDDS(t, uniformImage(3, 2, backdropColor))

	out := filepath.Join(t.TempDir(), "out")
	cfg := Config{
		OutputDir:     out,
		PreviewWidth:  8,
		PreviewHeight: 4,
		Modes:         []string{"province", "state"},
		Tiles:         []TileConfig{{X: 0, Y: 0, Zoom: 1}},
		LabelStates:   true,
		Upscale:       2,
		Backdrop:      backdrop,
		DumpIDs:       true,
		OutlineStates: []uint32{10, 99},
	}
	x := &exporter{eng: eng, cfg: cfg, log: logger, start: time.Now()}
	if err := x.run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{
		"preview_province.png", "preview_province.bmp", "preview_state.png", "preview_state.bmp",
		"tile_province_1_0_0.png", "tile_state_1_0_0.png",
		"state_map_with_ids.png", "state_centers_on_actions.txt",
		"state_outline_10.png", "edges.csv", "province_ids.lz4",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "state_outline_99.png")); !os.IsNotExist(err) {
		t.Errorf("outline written for a missing state: %v", err)
	}

	if b := decodePNG(t, filepath.Join(out, "preview_province.png")).Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("upscaled preview = %v, want 16x8", b)
	}
	f, err := os.Open(filepath.Join(out, "preview_province.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	img, err := bmp.Decode(f)
	f.Close()
	if err != nil {
		t.Fatalf("decode bmp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("bmp preview = %v, want 16x8", b)
	}
	if b := decodePNG(t, filepath.Join(out, "tile_state_1_0_0.png")).Bounds(); b.Dx() != mapengine.TileSize {
		t.Errorf("tile = %v", b)
	}

	outline := decodePNG(t, filepath.Join(out, "state_outline_10.png"))
	if b := outline.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Errorf("state outline = %v, want the clipped 6x4 map", b)
	}
	if !hasColor(outline, backdropColor) {
		t.Error("state outline does not show the DDS backdrop")
	}

	centers, err := os.ReadFile(filepath.Join(out, "state_centers_on_actions.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(centers), "10 = {") || !strings.Contains(string(centers), "map_x_position = 2") {
		t.Errorf("state centers:\n%s", centers)
	}

	ef, err := os.Open(filepath.Join(out, "edges.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()
	sc := bufio.NewScanner(ef)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) < 2 || lines[0] != "from_id;to_id;pixels" {
		t.Errorf("edges.csv = %v", lines)
	}
	if !slices.Contains(lines[1:], "1;2;8") {
		t.Errorf("edges.csv lacks 1;2 edge: %v", lines)
	}

	idf, err := os.Open(filepath.Join(out, "province_ids.lz4"))
	if err != nil {
		t.Fatal(err)
	}
	defer idf.Close()
	w, h, ids, err := idstream.ReadCompressed(idf)
	if err != nil {
		t.Fatalf("ReadCompressed: %v", err)
	}
	c, _ := eng.Current()
	if w != 6 || h != 4 || !slices.Equal(ids, c.IDs()) {
		t.Errorf("id dump = %dx%d, ids equal: %v", w, h, slices.Equal(ids, c.IDs()))
	}
}

func TestExporterRunNotInitialized(t *testing.T) {
	eng := mapengine.New(mapengine.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	x := &exporter{eng: eng, cfg: Config{OutputDir: t.TempDir()}, log: slog.Default(), start: time.Now()}
	if err := x.run(); err == nil {
		t.Fatal("run succeeded without a map")
	}
}

func TestLoadImageDDS(t *testing.T) {
	src := uniformImage(4, 3, backdropColor)
	src.SetNRGBA(3, 2, color.NRGBA{1, 2, 3, 255})

	img, err := loadImage(writeDDS(t, src))
	if err != nil {
		t.Fatalf("loadImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds = %v, want 4x3", b)
	}
	if c := color.NRGBAModel.Convert(img.At(0, 0)); c != backdropColor {
		t.Errorf("At(0,0) = %v, want %v", c, backdropColor)
	}
	if c := color.NRGBAModel.Convert(img.At(3, 2)); c != (color.NRGBA{1, 2, 3, 255}) {
		t.Errorf("At(3,2) = %v", c)
	}

	bad := filepath.Join(t.TempDir(), "bad.dds")
	if err := os.WriteFile(bad, []byte("DDS garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadImage(bad); err == nil {
		t.Error("truncated DDS decoded")
	}
}

func TestStateCenter(t *testing.T) {
	ras := &raster.Raster{Width: 4, Height: 3, IDs: []uint32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		0, 0, 0, 2,
	}}
	defs := []mapdata.ProvinceDefinition{{ID: 1}, {ID: 2}, {ID: 3}}
	states := []mapdata.StateDefinition{
		{ID: 5, Provinces: []uint32{1, 2}},
		{ID: 6, Provinces: []uint32{3}},
	}
	c := mapengine.NewContext(ras, defs, states, nil, 1)

	if p, ok := stateCenter(c, 5); !ok || p != image.Pt(1, 1) {
		t.Errorf("stateCenter(5) = %v, %v; want (1,1)", p, ok)
	}
	if _, ok := stateCenter(c, 6); ok {
		t.Error("state without pixels has a center")
	}
}

func TestDilateOutline(t *testing.T) {
	bounds := image.Rect(0, 0, 5, 5)
	img := dilateOutline([]mapengine.Point{{X: 2, Y: 2}}, bounds)
	if img.Bounds() != bounds {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for _, p := range []image.Point{{2, 2}, {1, 2}, {3, 2}, {2, 1}, {2, 3}} {
		if a := img.RGBAAt(p.X, p.Y).A; a != 255 {
			t.Errorf("alpha at %v = %d, want 255", p, a)
		}
	}
	if a := img.RGBAAt(0, 0).A; a != 0 {
		t.Errorf("alpha at (0,0) = %d, want 0", a)
	}
}

func TestCropImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.SetRGBA(2, 3, color.RGBA{1, 2, 3, 255})

	got := cropImage(src, image.Rect(2, 3, 5, 7))
	if b := got.Bounds(); b.Dx() != 3 || b.Dy() != 4 {
		t.Fatalf("bounds = %v, want 3x4", b)
	}
	if c := got.RGBAAt(got.Bounds().Min.X, got.Bounds().Min.Y); c != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("corner = %v", c)
	}

	clipped := cropImage(src, image.Rect(-4, -4, 3, 3))
	if b := clipped.Bounds(); b.Dx() != 3 || b.Dy() != 3 {
		t.Errorf("clipped bounds = %v, want 3x3", b)
	}
}

func TestOutlineRect(t *testing.T) {
	r := outlineRect([]mapengine.Point{{X: 4, Y: 1}, {X: 2, Y: 5}, {X: 3, Y: 3}})
	if r != image.Rect(2, 1, 5, 6) {
		t.Errorf("outlineRect = %v", r)
	}
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(2, 1, color.RGBA{9, 9, 9, 255})

	if got := upscale(src, 1.0); got != image.Image(src) {
		t.Error("scale 1 should return the source")
	}
	got := upscale(src, 2)
	if b := got.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Fatalf("bounds = %v, want 6x4", b)
	}
	if r, _, _, _ := got.At(5, 3).RGBA(); r>>8 != 9 {
		t.Errorf("scaled corner red = %d, want 9", r>>8)
	}
}

package diagram

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestSVG(t *testing.T) {
	pos := board.NewPosition()
	svg := string(SVG(pos, Options{Coordinates: true}))

	if got := strings.Count(svg, "<rect x="); got < 64 {
		t.Errorf("%d rects, want at least the 64 squares", got)
	}
	if got := strings.Count(svg, "<g transform="); got != 32 {
		t.Errorf("%d piece groups, want 32", got)
	}
	if !strings.Contains(svg, ">a</text>") || !strings.Contains(svg, ">8</text>") {
		t.Error("coordinates missing")
	}
	if strings.Contains(string(SVG(pos, Options{})), "<text") {
		t.Error("coordinates drawn without the option")
	}

	// a8 is the top-left square unless flipped.
	if x, y := origin(board.A8, false); x != 0 || y != 0 {
		t.Errorf("a8 at %d,%d", x, y)
	}
	if x, y := origin(board.H1, true); x != 0 || y != 0 {
		t.Errorf("flipped h1 at %d,%d", x, y)
	}
}

func TestSVGHighlightsLastMove(t *testing.T) {
	pos := board.NewPosition()
	plain := string(SVG(pos, Options{LastMove: true}))
	pos.ApplyMove(board.NewMove(board.E2, board.E4))
	moved := string(SVG(pos, Options{LastMove: true}))

	if strings.Contains(plain, hex(lightHighlight)) || strings.Contains(plain, hex(darkHighlight)) {
		t.Error("start position should have no highlight")
	}
	// e2 is light and e4 is light.
	if got := strings.Count(moved, hex(lightHighlight)); got != 2 {
		t.Errorf("%d highlighted light squares, want 2", got)
	}
}

func TestPNG(t *testing.T) {
	tests := []struct {
		fen  string
		size int
	}{
		{board.StartFEN, 64},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 200},
		{"8/8/8/8/8/8/8/K6k w - - 0 1", 17},
	}
	for _, tc := range tests {
		data, err := PNG(board.MustParseFEN(tc.fen), tc.size)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if b := img.Bounds(); b.Dx() != tc.size || b.Dy() != tc.size {
			t.Errorf("image is %dx%d, want %dx%d", b.Dx(), b.Dy(), tc.size, tc.size)
		}
	}

	if _, err := PNG(board.NewPosition(), 0); err == nil {
		t.Error("expected an error for size 0")
	}
}

func TestPNGColors(t *testing.T) {
	data, err := PNG(board.MustParseFEN("8/8/8/8/8/8/8/K6k w - - 0 1"), 160)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// Centre of d5 (light) and e5 (dark), both empty.
	if c := img.At(3*20+10, 3*20+10); !near(c, lightSquare) {
		t.Errorf("light square pixel %v, want %v", c, lightSquare)
	}
	if c := img.At(4*20+10, 3*20+10); !near(c, darkSquare) {
		t.Errorf("dark square pixel %v, want %v", c, darkSquare)
	}
}

// near allows for rounding in the scaler.
func near(c color.Color, want color.RGBA) bool {
	r, g, b, _ := c.RGBA()
	within := func(got uint32, want uint8) bool {
		d := int(got>>8) - int(want)
		return d >= -2 && d <= 2
	}
	return within(r, want.R) && within(g, want.G) && within(b, want.B)
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	if err := WritePNG(path, board.NewPosition(), 96); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 96 || cfg.Height != 96 {
		t.Errorf("written image is %dx%d", cfg.Width, cfg.Height)
	}

	if err := WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), board.NewPosition(), 8); err == nil {
		t.Error("expected an error writing into a missing directory")
	}
}

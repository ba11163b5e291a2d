// Package diagram renders board positions as SVG and PNG diagrams.
package diagram

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"github.com/hailam/chesscore/internal/board"
)

// squareSize is the side of one square in SVG user units. Piece glyphs
// are drawn in the same 45x45 box.
const squareSize = 45

// renderScale oversamples the raster before scaling down to the
// requested size.
const renderScale = 3

var (
	lightSquare     = colornames.Wheat
	darkSquare      = colornames.Peru
	lightHighlight  = colornames.Palegoldenrod
	darkHighlight   = colornames.Darkkhaki
	whitePieceFill  = colornames.White
	blackPieceFill  = colornames.Black
	pieceOutline    = colornames.Black
	blackPieceInner = colornames.Whitesmoke
	coordinateColor = colornames.Saddlebrown
)

// Options control SVG output.
type Options struct {
	// Flip draws the board from Black's side.
	Flip bool
	// Coordinates adds file and rank labels as SVG text. The PNG
	// rasterizer does not draw text, so PNG leaves them out.
	Coordinates bool
	// LastMove highlights the from and to squares of the position's last
	// move.
	LastMove bool
	// Highlight lists extra squares to highlight.
	Highlight []board.Square
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// SVG returns an SVG document of pos.
func SVG(pos *board.Position, opts Options) []byte {
	var buf bytes.Buffer
	side := 8 * squareSize
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		side, side, side, side)

	marked := make(map[board.Square]bool, len(opts.Highlight)+2)
	for _, sq := range opts.Highlight {
		marked[sq] = true
	}
	if m := pos.LastMove(); opts.LastMove && m.IsOK() {
		marked[m.From()] = true
		marked[m.To()] = true
	}

	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := origin(sq, opts.Flip)
		light := (sq.File()+sq.Rank())%2 == 1
		fill := darkSquare
		switch {
		case light && marked[sq]:
			fill = lightHighlight
		case light:
			fill = lightSquare
		case marked[sq]:
			fill = darkHighlight
		}
		fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
			x, y, squareSize, squareSize, hex(fill))
	}

	for sq := board.A1; sq <= board.H8; sq++ {
		if pc := pos.PieceAt(sq); pc != board.NoPiece {
			x, y := origin(sq, opts.Flip)
			writePiece(&buf, pc, x, y)
		}
	}

	if opts.Coordinates {
		writeCoordinates(&buf, opts.Flip)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// origin returns the top-left corner of sq in user units.
func origin(sq board.Square, flip bool) (x, y int) {
	file, rank := sq.File(), 7-sq.Rank()
	if flip {
		file, rank = 7-file, 7-rank
	}
	return file * squareSize, rank * squareSize
}

func writeCoordinates(buf *bytes.Buffer, flip bool) {
	for i := 0; i < 8; i++ {
		file, rank := i, i
		if flip {
			file, rank = 7-i, 7-i
		}
		fmt.Fprintf(buf, `<text x="%d" y="%d" font-size="8" fill="%s">%c</text>`+"\n",
			i*squareSize+squareSize-7, 8*squareSize-2, hex(coordinateColor), 'a'+file)
		fmt.Fprintf(buf, `<text x="2" y="%d" font-size="8" fill="%s">%d</text>`+"\n",
			(7-i)*squareSize+9, hex(coordinateColor), rank+1)
	}
}

// glyphs are the piece shapes in a 45x45 box. Elements with class
// "inner" are drawn in the contrast color.
var glyphs = [6]string{
	board.Pawn: `<circle cx="22.5" cy="14" r="5"/>` +
		`<polygon points="16,34 18,22 27,22 29,34"/>` +
		`<rect x="11" y="34" width="23" height="4"/>`,
	board.Knight: `<polygon points="14,37 33,37 32,20 28,12 22,10 22,6 19,10 12,19 11,24 15,25 19,21 21,22 15,31"/>` +
		`<circle class="inner" cx="19" cy="15" r="1.3"/>`,
	board.Bishop: `<circle cx="22.5" cy="9" r="2.5"/>` +
		`<polygon points="22.5,12 15,22 17,28 28,28 30,22"/>` +
		`<polygon points="16,30 29,30 31,34 14,34"/>` +
		`<rect x="10" y="34" width="25" height="3"/>`,
	board.Rook: `<polygon points="12,37 33,37 33,33 30,31 29,17 32,15 32,10 28,10 28,12 25,12 25,10 20,10 20,12 17,12 17,10 13,10 13,15 16,17 15,31 12,33"/>`,
	board.Queen: `<circle cx="9" cy="13" r="2.5"/><circle cx="15.5" cy="10" r="2.5"/>` +
		`<circle cx="22.5" cy="9" r="2.5"/><circle cx="29.5" cy="10" r="2.5"/><circle cx="36" cy="13" r="2.5"/>` +
		`<polygon points="9,13 13,30 32,30 36,13 29.5,25 29.5,10 22.5,24 15.5,10 15.5,25"/>` +
		`<polygon points="12,30 33,30 34,37 11,37"/>`,
	board.King: `<rect x="21" y="5" width="3" height="9"/><rect x="18" y="8" width="9" height="3"/>` +
		`<polygon points="10,24 14,34 31,34 35,24 30,18 25,20 22.5,15 20,20 15,18"/>` +
		`<rect x="13" y="34" width="19" height="4"/>`,
}

func writePiece(buf *bytes.Buffer, pc board.Piece, x, y int) {
	fill, inner := whitePieceFill, pieceOutline
	if pc.Color() == board.Black {
		fill, inner = blackPieceFill, blackPieceInner
	}
	glyph := glyphs[pc.Type()]
	fmt.Fprintf(buf, `<g transform="translate(%d,%d)" fill="%s" stroke="%s" stroke-width="1.5">`,
		x, y, hex(fill), hex(pieceOutline))
	buf.WriteString(colorInner(glyph, hex(inner)))
	buf.WriteString("</g>\n")
}

// colorInner gives "inner" elements their own fill.
func colorInner(glyph, fill string) string {
	return strings.ReplaceAll(glyph, `class="inner"`, `fill="`+fill+`" stroke="none"`)
}

// PNG renders pos as a size x size PNG image.
func PNG(pos *board.Position, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("diagram: invalid size %d", size)
	}
	img, err := rasterize(SVG(pos, Options{LastMove: true}), size*renderScale)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("diagram: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNG writes the PNG diagram of pos to path.
func WritePNG(path string, pos *board.Position, size int) error {
	data, err := PNG(pos, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("diagram: write %s: %w", path, err)
	}
	return nil
}

func rasterize(svg []byte, px int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("diagram: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(px), float64(px))

	rgba := image.NewRGBA(image.Rect(0, 0, px, px))
	scanner := rasterx.NewScannerGV(px, px, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(px, px, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}

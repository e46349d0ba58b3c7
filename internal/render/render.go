// Package render draws board positions to raster images.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chesscore/internal/board"
)

// Options controls rendering.
type Options struct {
	SquareSize  int  // output pixels per square
	Scale       int  // supersampling factor, 1 disables
	Flip        bool // Black at the bottom
	Coordinates bool // file and rank labels along the edges

	Light, Dark color.RGBA
	Highlight   color.RGBA // tint over LastMove squares

	// LastMove is outlined when set.
	LastMove *board.Move
}

// DefaultOptions returns 64px squares at 3x supersampling with labels.
func DefaultOptions() Options {
	return Options{
		SquareSize:  64,
		Scale:       3,
		Coordinates: true,
		Light:       color.RGBA{0xEE, 0xEE, 0xD2, 0xFF},
		Dark:        color.RGBA{0x76, 0x96, 0x56, 0xFF},
		Highlight:   color.RGBA{0xF6, 0xF6, 0x69, 0xFF},
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.SquareSize <= 0 {
		o.SquareSize = d.SquareSize
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Light.A == 0 {
		o.Light = d.Light
	}
	if o.Dark.A == 0 {
		o.Dark = d.Dark
	}
	if o.Highlight.A == 0 {
		o.Highlight = d.Highlight
	}
	return o
}

// Render draws b. The caller must keep b from changing while it runs. It
// fails only when a piece silhouette cannot be parsed.
func Render(b *board.Board, opts Options) (*image.RGBA, error) {
	opts = opts.normalized()
	sq := opts.SquareSize * opts.Scale
	size := sq * 8

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, canvas, canvas.Bounds())
	filler := rasterx.NewFiller(size, size, scanner)

	// origin maps a board coordinate to the canvas pixel of its top-left corner
	origin := func(x, y int) (float64, float64) {
		col, row := x, 7-y
		if opts.Flip {
			col, row = 7-x, y
		}
		return float64(col * sq), float64(row * sq)
	}

	highlighted := func(x, y int) bool {
		if opts.LastMove == nil {
			return false
		}
		sx, sy := opts.LastMove.Start()
		ex, ey := opts.LastMove.End()
		return (x == sx && y == sy) || (x == ex && y == ey)
	}

	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			c := opts.Dark
			if (x+y)%2 == 1 {
				c = opts.Light
			}
			if highlighted(x, y) {
				c = blend(c, opts.Highlight)
			}
			px, py := origin(x, y)
			filler.Clear()
			filler.SetColor(c)
			rasterx.AddRect(px, py, px+float64(sq), py+float64(sq), 0, filler)
			filler.Draw()
		}
	}

	icons := make(map[board.Piece]*oksvg.SvgIcon)
	dasher := rasterx.NewDasher(size, size, scanner)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if !b.GetSquare(x, y).Occupied() {
				continue
			}
			p := b.PieceAt(x, y)
			icon, ok := icons[p]
			if !ok {
				var err error
				if icon, err = pieceIcon(p); err != nil {
					return nil, errors.Wrapf(err, "piece %s", p)
				}
				icons[p] = icon
			}
			px, py := origin(x, y)
			icon.SetTarget(px, py, float64(sq), float64(sq))
			icon.Draw(dasher, 1.0)
		}
	}

	out := canvas
	if opts.Scale > 1 {
		n := opts.SquareSize * 8
		out = image.NewRGBA(image.Rect(0, 0, n, n))
		draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}

	if opts.Coordinates {
		drawLabels(out, opts)
	}
	return out, nil
}

// drawLabels writes file letters along the bottom edge and rank digits along
// the left edge, each in the opposite square color.
func drawLabels(img *image.RGBA, opts Options) {
	sq := opts.SquareSize
	if sq < 20 {
		return
	}

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for i := 0; i < 8; i++ {
		file, rank := boardFileAt(i, opts), boardRankAt(7, opts)
		d.Src = image.NewUniform(labelColor(file, rank, opts))
		d.Dot = fixed.P(i*sq+sq-9, 8*sq-3)
		d.DrawString(string(rune('a' + file)))

		file, rank = boardFileAt(0, opts), boardRankAt(i, opts)
		d.Src = image.NewUniform(labelColor(file, rank, opts))
		d.Dot = fixed.P(2, i*sq+12)
		d.DrawString(string(rune('1' + rank)))
	}
}

// boardRankAt returns the board rank drawn in canvas row.
func boardRankAt(row int, opts Options) int {
	if opts.Flip {
		return row
	}
	return 7 - row
}

// boardFileAt returns the board file drawn in canvas column.
func boardFileAt(col int, opts Options) int {
	if opts.Flip {
		return 7 - col
	}
	return col
}

func labelColor(x, y int, opts Options) color.RGBA {
	if (x+y)%2 == 1 {
		return opts.Dark
	}
	return opts.Light
}

func blend(a, b color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8((uint16(a.R) + uint16(b.R)) / 2),
		G: uint8((uint16(a.G) + uint16(b.G)) / 2),
		B: uint8((uint16(a.B) + uint16(b.B)) / 2),
		A: 0xFF,
	}
}

// WritePNG renders b and encodes it as PNG.
func WritePNG(w io.Writer, b *board.Board, opts Options) error {
	img, err := Render(b, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

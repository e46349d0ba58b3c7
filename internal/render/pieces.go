package render

import (
	"fmt"
	"strings"

	"github.com/srwiley/oksvg"

	"github.com/hailam/chesscore/internal/board"
)

// Silhouettes on a 45x45 canvas. Each shape inherits fill and stroke from
// the wrapping group.
var pieceShapes = [6]string{
	board.Pawn: `<circle cx="22.5" cy="13" r="5"/>
<polygon points="15,37 30,37 27,22 18,22"/>
<rect x="11" y="35" width="23" height="5"/>`,

	board.Knight: `<polygon points="12,37 33,37 32,23 29,14 24,9 22,6 20,10 14,15 10,22 12,25 16,22 19,21 15,30"/>
<rect x="10" y="35" width="25" height="5"/>`,

	board.Bishop: `<circle cx="22.5" cy="7.5" r="2.5"/>
<ellipse cx="22.5" cy="20" rx="6.5" ry="9"/>
<polygon points="13,37 32,37 28,28 17,28"/>
<rect x="9" y="35" width="27" height="5"/>`,

	board.Rook: `<polygon points="11,9 15,9 15,12 19,12 19,9 26,9 26,12 30,12 30,9 34,9 34,15 11,15"/>
<rect x="13" y="15" width="19" height="20"/>
<rect x="9" y="35" width="27" height="5"/>`,

	board.Queen: `<polygon points="9,26 12,12 17,22 22.5,10 28,22 33,12 36,26"/>
<circle cx="12" cy="11" r="2.5"/>
<circle cx="22.5" cy="9" r="2.5"/>
<circle cx="33" cy="11" r="2.5"/>
<rect x="11" y="26" width="23" height="9"/>
<rect x="9" y="35" width="27" height="5"/>`,

	board.King: `<rect x="21" y="3" width="3" height="11"/>
<rect x="17.5" y="6" width="10" height="3"/>
<polygon points="11,36 34,36 36,22 29,15 16,15 9,22"/>
<rect x="9" y="35" width="27" height="5"/>`,
}

var pieceColors = [2]struct{ fill, stroke string }{
	board.White: {"#ffffff", "#000000"},
	board.Black: {"#202020", "#000000"},
}

// pieceSVG returns a standalone SVG document for p.
// pieceSource yields the SVG document drawn for each piece.
var pieceSource = pieceSVG

func pieceSVG(p board.Piece) string {
	c := pieceColors[p.Color()]
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">
<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">
%s
</g>
</svg>`, c.fill, c.stroke, pieceShapes[p.Type()])
}

// pieceIcon parses the silhouette for p.
func pieceIcon(p board.Piece) (*oksvg.SvgIcon, error) {
	return oksvg.ReadIconStream(strings.NewReader(pieceSource(p)), oksvg.IgnoreErrorMode)
}

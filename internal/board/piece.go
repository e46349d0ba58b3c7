package board

import "strings"

// Color is the side a piece or player belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposing side.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// ParseColor accepts "w", "b", "white" and "black", lower, title or upper case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "w", "white":
		return White, true
	case "b", "black":
		return Black, true
	}
	return NoColor, false
}

// PieceType selects a Variant: the move shapes and value table of a piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var typeNames = [7]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

func (pt PieceType) String() string {
	if pt > NoPieceType {
		pt = NoPieceType
	}
	return typeNames[pt]
}

// Piece is the kind held by an arena slot, type and color packed as
// type + 6*color. Promotion is the only operation that changes a slot's kind.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// pieceLetters is indexed by Piece; it is also the Layout alphabet.
const pieceLetters = "PNBRQKpnbrqk"

// NewPiece packs a type and color, NoPiece when either is out of range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String returns the FEN letter, " " for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return pieceLetters[p : p+1]
}

// PieceFromChar maps a FEN letter to a Piece, NoPiece for anything else.
func PieceFromChar(c byte) Piece {
	i := strings.IndexByte(pieceLetters, c)
	if i < 0 {
		return NoPiece
	}
	return Piece(i)
}

// slot is the piece's Zobrist table column: Black on even slots, White on
// odd ones.
func (p Piece) slot() int {
	return int(p.Type())*2 + int(p.Color()^1)
}

// variant returns the behaviour shared by every piece of this type.
func (p Piece) variant() Variant {
	return variants[p.Type()]
}

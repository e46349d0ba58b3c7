// Package board implements the chess position engine: an 8x8 square grid over a
// flat piece arena, move application and reversal (castling, promotion and
// demotion included), an incrementally maintained Zobrist hash, repetition
// tracking, evaluation and cheap cloning for search branches.
//
// Coordinates are (x, y) with x the file (0=a, 7=h) and y the rank (0=1, 7=8).
package board

import "github.com/pkg/errors"

const noOccupant = -1

// Square is a single board cell. The occupant is an index into the owning
// Board's piece arena, not an owning reference.
type Square struct {
	X, Y     int
	occupant int
}

// Occupied reports whether a piece stands on the square.
func (s *Square) Occupied() bool {
	return s.occupant != noOccupant
}

// String returns the algebraic notation for the square (e.g., "e4").
func (s *Square) String() string {
	return CoordName(s.X, s.Y)
}

// SquareIndex maps a coordinate to its 0-63 index, rank-major (a1=0, h1=7,
// a8=56).
func SquareIndex(x, y int) int {
	return y*8 + x
}

// IndexCoord maps a 0-63 index back to its coordinate.
func IndexCoord(i int) (x, y int) {
	return i & 7, i >> 3
}

// InBounds reports whether x and y both lie in 0-7.
func InBounds(x, y int) bool {
	return x >= 0 && x < 8 && y >= 0 && y < 8
}

// CoordName returns the algebraic name of a coordinate, "-" when off the board.
func CoordName(x, y int) string {
	if !InBounds(x, y) {
		return "-"
	}
	return string([]byte{byte('a' + x), byte('1' + y)})
}

// ParseCoord parses algebraic notation (e.g., "e4") into a coordinate.
func ParseCoord(s string) (x, y int, err error) {
	if len(s) != 2 {
		return 0, 0, errors.Wrapf(ErrInvalidSquare, "%q", s)
	}

	x = int(s[0]) - 'a'
	y = int(s[1]) - '1'

	if !InBounds(x, y) {
		return 0, 0, errors.Wrapf(ErrInvalidSquare, "%q", s)
	}
	return x, y, nil
}

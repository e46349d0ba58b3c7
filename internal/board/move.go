package board

// Move describes one transition. It carries no behaviour and is compared by
// value. Castling moves describe the king; the rook follows implicitly.
type Move struct {
	StartX, StartY int8
	EndX, EndY     int8
	IsCastling     bool
	IsPromoting    bool
}

// NoMove is the zero Move (a1a1), never produced by move generation.
var NoMove Move

// NewMove creates a plain move.
func NewMove(sx, sy, ex, ey int) Move {
	return Move{StartX: int8(sx), StartY: int8(sy), EndX: int8(ex), EndY: int8(ey)}
}

// NewCastling creates a castling move from the king's start to its destination.
func NewCastling(sx, sy, ex, ey int) Move {
	m := NewMove(sx, sy, ex, ey)
	m.IsCastling = true
	return m
}

// NewPromotion creates a pawn move that promotes to a queen on arrival.
func NewPromotion(sx, sy, ex, ey int) Move {
	m := NewMove(sx, sy, ex, ey)
	m.IsPromoting = true
	return m
}

// Start returns the origin coordinate.
func (m Move) Start() (x, y int) {
	return int(m.StartX), int(m.StartY)
}

// End returns the destination coordinate.
func (m Move) End() (x, y int) {
	return int(m.EndX), int(m.EndY)
}

// KingSide reports whether a castling move goes to the g-file.
func (m Move) KingSide() bool {
	return m.EndX == 6
}

// rookMove returns the rook's half of a castling move.
func (m Move) rookMove() Move {
	if m.KingSide() {
		return NewMove(7, int(m.StartY), 5, int(m.StartY))
	}
	return NewMove(0, int(m.StartY), 3, int(m.StartY))
}

// String returns coordinate notation (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	s := CoordName(int(m.StartX), int(m.StartY)) + CoordName(int(m.EndX), int(m.EndY))
	if m.IsPromoting {
		s += "q"
	}
	return s
}

package board

// Position data byte layout: bits 0-5 square index, bit 6 has-moved,
// bit 7 active.
const (
	posSquareMask = 0x3F
	posMovedBit   = 1 << 6
	posActiveBit  = 1 << 7
)

// PieceRef is a handle to one arena slot of a Board. It is the piece
// capability seen by callers: identity, flags, move shapes and positional
// value. A PieceRef is only meaningful for the Board that produced it.
type PieceRef struct {
	b   *Board
	idx int
}

// Valid reports whether the handle refers to a slot.
func (r PieceRef) Valid() bool {
	return r.b != nil
}

// Index returns the slot's position in arena order.
func (r PieceRef) Index() int {
	return r.idx
}

func (r PieceRef) state() *pieceState {
	return &r.b.pieces[r.idx]
}

// Piece returns the piece kind.
func (r PieceRef) Piece() Piece {
	return r.state().piece
}

// Color returns the piece's color.
func (r PieceRef) Color() Color {
	return r.state().piece.Color()
}

// Type returns the piece's type.
func (r PieceRef) Type() PieceType {
	return r.state().piece.Type()
}

// Active reports whether the piece is on the board.
func (r PieceRef) Active() bool {
	return r.state().active
}

// HasMoved reports whether the piece has moved since setup.
func (r PieceRef) HasMoved() bool {
	return r.state().hasMoved
}

// SetHasMoved overrides the has-moved flag.
func (r PieceRef) SetHasMoved(moved bool) {
	r.state().hasMoved = moved
}

// Square returns the piece's coordinate; ok is false for a captured piece.
func (r PieceRef) Square() (x, y int, ok bool) {
	s := r.state()
	if !s.active {
		return -1, -1, false
	}
	return int(s.x), int(s.y), true
}

// DefinedValue returns the positional value of this piece type on (x, y),
// from White's point of view.
func (r PieceRef) DefinedValue(x, y int) float64 {
	return r.Piece().variant().Value(x, y)
}

// PossibleMoves returns the piece's candidate moves from its current square.
func (r PieceRef) PossibleMoves() []Move {
	x, y, ok := r.Square()
	if !ok {
		return nil
	}
	return r.b.GetPossibleMovesForPiece(x, y)
}

// PositionData returns the compact serialized state of the piece.
func (r PieceRef) PositionData() byte {
	return r.state().positionData()
}

// SetPositionData overwrites the piece's square and flags from a compact
// encoding. It updates the piece slot only; Board.SetPositionalByteArray is
// the entry point that keeps grid and hash consistent.
func (r PieceRef) SetPositionData(data byte) {
	r.state().setPositionData(data)
}

func (s *pieceState) positionData() byte {
	var data byte
	if s.active {
		data = byte(SquareIndex(int(s.x), int(s.y))) | posActiveBit
	}
	if s.hasMoved {
		data |= posMovedBit
	}
	return data
}

func (s *pieceState) setPositionData(data byte) {
	s.hasMoved = data&posMovedBit != 0
	s.active = data&posActiveBit != 0
	if !s.active {
		s.x, s.y = -1, -1
		return
	}
	x, y := IndexCoord(int(data & posSquareMask))
	s.x, s.y = int8(x), int8(y)
}

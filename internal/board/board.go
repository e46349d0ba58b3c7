package board

import (
	"fmt"
	"strings"
	"sync"
)

// pieceState is one arena slot. A captured piece keeps its slot with
// active=false and no square (x, y = -1).
type pieceState struct {
	piece    Piece
	x, y     int8
	active   bool
	hasMoved bool
}

// undoRecord holds what a reversal needs beyond the move itself.
type undoRecord struct {
	move     Move
	mover    int
	rook     int // castling only
	captured int
	moverHad bool // mover's has-moved flag before the move
	rookHad  bool
	kingsHad [2]bool
}

// Board is the aggregate position state. It is not safe for concurrent
// mutation; share a live instance through Locker/WithLock, or Clone it.
type Board struct {
	mu sync.Mutex

	squares [8][8]Square
	pieces  []pieceState

	activeKings [2]bool
	turn        Color
	turnNumber  int

	hash      uint64
	history   map[uint64]int
	threefold bool

	undo []undoRecord
}

// NewEmptyBoard returns a board with no pieces, White to move.
func NewEmptyBoard() *Board {
	b := &Board{
		pieces:      make([]pieceState, 0, 32),
		activeKings: [2]bool{true, true},
		turn:        White,
		turnNumber:  1,
		history:     make(map[uint64]int),
	}
	b.resetGrid()
	return b
}

// NewBoard returns the standard 32-piece starting position. Arena order is
// fixed: pawns file by file (White then Black per file), then rooks, knights,
// bishops, queens and kings. Serialized positional data depends on it.
func NewBoard() *Board {
	b := NewEmptyBoard()

	for x := 0; x < 8; x++ {
		b.AddPiece(x, 1, WhitePawn)
		b.AddPiece(x, 6, BlackPawn)
	}

	back := []struct {
		pt PieceType
		xs []int
	}{
		{Rook, []int{0, 7}},
		{Knight, []int{1, 6}},
		{Bishop, []int{2, 5}},
		{Queen, []int{3}},
		{King, []int{4}},
	}
	for _, row := range back {
		for _, c := range []Color{White, Black} {
			y := 0
			if c == Black {
				y = 7
			}
			for _, x := range row.xs {
				b.AddPiece(x, y, NewPiece(row.pt, c))
			}
		}
	}
	return b
}

func (b *Board) resetGrid() {
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			b.squares[x][y] = Square{X: x, Y: y, occupant: noOccupant}
		}
	}
}

// AddPiece registers a piece in the arena and binds it to (x, y), updating
// the hash. Intended for setup; normal play never adds pieces.
func (b *Board) AddPiece(x, y int, p Piece) PieceRef {
	sq := &b.squares[x][y]
	if sq.occupant != noOccupant {
		b.deactivate(sq.occupant)
	}
	idx := len(b.pieces)
	b.pieces = append(b.pieces, pieceState{piece: p, x: int8(x), y: int8(y), active: true})
	sq.occupant = idx
	b.hash ^= pieceKey(x, y, p)
	if p.Type() == King {
		b.activeKings[p.Color()] = true
	}
	return PieceRef{b: b, idx: idx}
}

// GetSquare returns the cell at (x, y). Out-of-range coordinates panic.
func (b *Board) GetSquare(x, y int) *Square {
	return &b.squares[x][y]
}

// GetPiece returns the piece on (x, y), if any. Out-of-range coordinates panic.
func (b *Board) GetPiece(x, y int) (PieceRef, bool) {
	idx := b.squares[x][y].occupant
	if idx == noOccupant {
		return PieceRef{}, false
	}
	return PieceRef{b: b, idx: idx}, true
}

// PieceAt returns the piece kind on (x, y), or NoPiece.
func (b *Board) PieceAt(x, y int) Piece {
	idx := b.squares[x][y].occupant
	if idx == noOccupant {
		return NoPiece
	}
	return b.pieces[idx].piece
}

// Pieces returns handles for every arena slot, captured pieces included, in
// arena order.
func (b *Board) Pieces() []PieceRef {
	refs := make([]PieceRef, len(b.pieces))
	for i := range b.pieces {
		refs[i] = PieceRef{b: b, idx: i}
	}
	return refs
}

// PieceCount returns the arena size (active and captured pieces).
func (b *Board) PieceCount() int {
	return len(b.pieces)
}

// ActiveCount returns the number of pieces currently on the board.
func (b *Board) ActiveCount() int {
	n := 0
	for i := range b.pieces {
		if b.pieces[i].active {
			n++
		}
	}
	return n
}

// Hash returns the running position hash.
func (b *Board) Hash() uint64 {
	return b.hash
}

// CurrentTurn returns the side to move.
func (b *Board) CurrentTurn() Color {
	return b.turn
}

// SetTurn sets the side to move without touching counters or history.
func (b *Board) SetTurn(c Color) {
	b.turn = c
}

// TurnNumber returns the number of SwitchTurn calls plus one.
func (b *Board) TurnNumber() int {
	return b.turnNumber
}

// SetTurnNumber overrides the turn counter, for restoring saved games.
func (b *Board) SetTurnNumber(n int) {
	b.turnNumber = n
}

// KingActive reports whether the king of color c is still on the board.
func (b *Board) KingActive(c Color) bool {
	return b.activeKings[c]
}

// CheckIfDone reports whether a king has been captured.
func (b *Board) CheckIfDone() bool {
	return !b.activeKings[White] || !b.activeKings[Black]
}

// Locker returns the lock guarding this board for callers that share one live
// instance between goroutines.
func (b *Board) Locker() sync.Locker {
	return &b.mu
}

// WithLock runs fn while holding the board's lock.
func (b *Board) WithLock(fn func(*Board)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// deactivate marks a slot captured and clears its square binding.
func (b *Board) deactivate(idx int) {
	p := &b.pieces[idx]
	if p.active {
		b.squares[p.x][p.y].occupant = noOccupant
		b.hash ^= pieceKey(int(p.x), int(p.y), p.piece)
	}
	p.active = false
	p.x, p.y = -1, -1
	if p.piece.Type() == King {
		b.activeKings[p.piece.Color()] = false
	}
}

// String returns a visual representation of the board, rank 8 on top.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for y := 7; y >= 0; y-- {
		fmt.Fprintf(&sb, "%d  ", y+1)
		for x := 0; x < 8; x++ {
			if p := b.PieceAt(x, y); p == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", b.turn)
	fmt.Fprintf(&sb, "Turn: %d\n", b.turnNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", b.hash)
	return sb.String()
}

package board

// Variant is the behaviour of one piece type: the shapes it can move in and
// its positional value table. Variants generate pseudo-legal moves only; they
// do not look for checks.
type Variant interface {
	AppendMoves(b *Board, x, y int, dst []Move) []Move
	Value(x, y int) float64
}

type (
	pawnVariant   struct{}
	knightVariant struct{}
	sliderVariant struct {
		pt   PieceType
		dirs [][2]int
	}
	kingVariant struct{}
)

var (
	diagonals  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonal = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	allDirs    = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	knightJumps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

var variants = [6]Variant{
	Pawn:   pawnVariant{},
	Knight: knightVariant{},
	Bishop: sliderVariant{pt: Bishop, dirs: diagonals},
	Rook:   sliderVariant{pt: Rook, dirs: orthogonal},
	Queen:  sliderVariant{pt: Queen, dirs: allDirs},
	King:   kingVariant{},
}

// GetPossibleMovesForPiece returns the candidate moves of the piece on (x, y).
// An empty square yields no moves.
func (b *Board) GetPossibleMovesForPiece(x, y int) []Move {
	idx := b.squares[x][y].occupant
	if idx == noOccupant {
		return nil
	}
	return b.pieces[idx].piece.variant().AppendMoves(b, x, y, nil)
}

// GetAllPossibleMoves returns the candidate moves of every active piece of
// color c, scanning x then y from 0 to 7. It returns no moves once a king has
// been captured.
func (b *Board) GetAllPossibleMoves(c Color) []Move {
	return b.AppendAllPossibleMoves(nil, c)
}

// AppendAllPossibleMoves is GetAllPossibleMoves appending into dst, so search
// loops can reuse one buffer.
func (b *Board) AppendAllPossibleMoves(dst []Move, c Color) []Move {
	if b.CheckIfDone() {
		return dst
	}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			idx := b.squares[x][y].occupant
			if idx == noOccupant {
				continue
			}
			p := b.pieces[idx].piece
			if p.Color() != c {
				continue
			}
			dst = p.variant().AppendMoves(b, x, y, dst)
		}
	}
	return dst
}

// canLand reports whether a piece of color c may end on (x, y): on the board
// and not holding a friendly piece.
func (b *Board) canLand(x, y int, c Color) bool {
	if !InBounds(x, y) {
		return false
	}
	idx := b.squares[x][y].occupant
	return idx == noOccupant || b.pieces[idx].piece.Color() != c
}

func (b *Board) empty(x, y int) bool {
	return b.squares[x][y].occupant == noOccupant
}

func (b *Board) colorAt(x, y int) Color {
	return b.pieces[b.squares[x][y].occupant].piece.Color()
}

func (pawnVariant) AppendMoves(b *Board, x, y int, dst []Move) []Move {
	c := b.colorAt(x, y)
	dir, home, last := 1, 1, 7
	if c == Black {
		dir, home, last = -1, 6, 0
	}

	add := func(ex, ey int) {
		if ey == last {
			dst = append(dst, NewPromotion(x, y, ex, ey))
		} else {
			dst = append(dst, NewMove(x, y, ex, ey))
		}
	}

	ny := y + dir
	if ny < 0 || ny > 7 {
		return dst
	}
	if b.empty(x, ny) {
		add(x, ny)
		if y == home && b.empty(x, ny+dir) {
			add(x, ny+dir)
		}
	}
	for _, dx := range [2]int{-1, 1} {
		ex := x + dx
		if ex < 0 || ex > 7 || b.empty(ex, ny) {
			continue
		}
		if b.colorAt(ex, ny) != c {
			add(ex, ny)
		}
	}
	return dst
}

func (pawnVariant) Value(x, y int) float64 { return valueTables[Pawn][x][y] }

func (knightVariant) AppendMoves(b *Board, x, y int, dst []Move) []Move {
	c := b.colorAt(x, y)
	for _, j := range knightJumps {
		ex, ey := x+j[0], y+j[1]
		if b.canLand(ex, ey, c) {
			dst = append(dst, NewMove(x, y, ex, ey))
		}
	}
	return dst
}

func (knightVariant) Value(x, y int) float64 { return valueTables[Knight][x][y] }

func (v sliderVariant) AppendMoves(b *Board, x, y int, dst []Move) []Move {
	c := b.colorAt(x, y)
	for _, d := range v.dirs {
		ex, ey := x+d[0], y+d[1]
		for InBounds(ex, ey) {
			if b.empty(ex, ey) {
				dst = append(dst, NewMove(x, y, ex, ey))
			} else {
				if b.colorAt(ex, ey) != c {
					dst = append(dst, NewMove(x, y, ex, ey))
				}
				break
			}
			ex, ey = ex+d[0], ey+d[1]
		}
	}
	return dst
}

func (v sliderVariant) Value(x, y int) float64 { return valueTables[v.pt][x][y] }

func (kingVariant) AppendMoves(b *Board, x, y int, dst []Move) []Move {
	king := b.pieces[b.squares[x][y].occupant]
	c := king.piece.Color()
	for _, d := range allDirs {
		ex, ey := x+d[0], y+d[1]
		if b.canLand(ex, ey, c) {
			dst = append(dst, NewMove(x, y, ex, ey))
		}
	}

	home := 0
	if c == Black {
		home = 7
	}
	if king.hasMoved || x != 4 || y != home {
		return dst
	}
	if b.rookReady(7, y, c) && b.empty(5, y) && b.empty(6, y) {
		dst = append(dst, NewCastling(x, y, 6, y))
	}
	if b.rookReady(0, y, c) && b.empty(1, y) && b.empty(2, y) && b.empty(3, y) {
		dst = append(dst, NewCastling(x, y, 2, y))
	}
	return dst
}

func (kingVariant) Value(x, y int) float64 { return valueTables[King][x][y] }

// rookReady reports whether an unmoved rook of color c stands on (x, y).
func (b *Board) rookReady(x, y int, c Color) bool {
	idx := b.squares[x][y].occupant
	if idx == noOccupant {
		return false
	}
	p := b.pieces[idx]
	return p.piece == NewPiece(Rook, c) && !p.hasMoved
}

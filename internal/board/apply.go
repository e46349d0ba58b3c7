package board

import "github.com/pkg/errors"

// DoMove applies m, or reverses it when reversing is true. Reversal takes the
// move exactly as it was applied; start and end are swapped internally.
// Moves must come from GetAllPossibleMoves or GetPossibleMovesForPiece:
// legality is not re-checked here.
func (b *Board) DoMove(m Move, reversing bool) {
	switch {
	case m.IsCastling && reversing:
		b.UndoCastle(m)
	case m.IsCastling:
		b.Castle(m)
	case m.IsPromoting && reversing:
		b.Demote(m)
	case m.IsPromoting:
		b.Promote(m)
	case reversing:
		b.MovePieceReverse(m)
	default:
		b.MovePiece(m)
	}
}

// UndoMove reverses m, which must be the most recently applied move.
func (b *Board) UndoMove(m Move) {
	b.DoMove(m, true)
}

// UndoLast reverses the most recently applied move and returns it.
func (b *Board) UndoLast() (Move, bool) {
	if len(b.undo) == 0 {
		return NoMove, false
	}
	m := b.undo[len(b.undo)-1].move
	b.DoMove(m, true)
	return m, true
}

// UndoDepth returns how many applied moves can still be reversed.
func (b *Board) UndoDepth() int {
	return len(b.undo)
}

// Play applies m and passes the turn.
func (b *Board) Play(m Move) {
	b.DoMove(m, false)
	b.SwitchTurn()
}

// TakeBack reverses the last Play.
func (b *Board) TakeBack() (Move, bool) {
	if len(b.undo) == 0 {
		return NoMove, false
	}
	b.RevertTurn()
	return b.UndoLast()
}

// MovePiece moves the piece on m's start square to its end square, capturing
// any piece standing there.
func (b *Board) MovePiece(m Move) {
	b.undo = append(b.undo, b.relocate(m))
}

// MovePieceReverse undoes MovePiece(m), restoring a captured piece.
func (b *Board) MovePieceReverse(m Move) {
	rec := b.popUndo(m)
	sx, sy := m.Start()
	b.shift(rec.mover, sx, sy)
	b.pieces[rec.mover].hasMoved = rec.moverHad
	b.restoreCapture(rec)
}

// Castle moves the king as described by m and the matching rook: from the
// h-file to the f-file when the king lands on the g-file, otherwise from the
// a-file to the d-file.
func (b *Board) Castle(m Move) {
	rookRec := b.relocate(m.rookMove())
	rec := b.relocate(m)
	rec.rook = rookRec.mover
	rec.rookHad = rookRec.moverHad
	rec.kingsHad = rookRec.kingsHad
	b.undo = append(b.undo, rec)
}

// UndoCastle reverses Castle(m), restoring both has-moved flags.
func (b *Board) UndoCastle(m Move) {
	rec := b.popUndo(m)
	sx, sy := m.Start()
	b.shift(rec.mover, sx, sy)
	b.pieces[rec.mover].hasMoved = rec.moverHad

	rx, ry := m.rookMove().Start()
	b.shift(rec.rook, rx, ry)
	b.pieces[rec.rook].hasMoved = rec.rookHad
}

// Promote replaces the pawn on m's start square with a queen of the same
// color on m's end square. The pawn's arena slot is retired and reused by
// the queen, so arena order is unchanged.
func (b *Board) Promote(m Move) {
	sx, sy := m.Start()
	ex, ey := m.End()
	idx := b.occupant(sx, sy, m)

	rec := b.record(m, idx)
	if rec.captured != noOccupant {
		b.deactivate(rec.captured)
	}

	p := &b.pieces[idx]
	pawn := p.piece
	b.squares[sx][sy].occupant = noOccupant
	b.hash ^= pieceKey(sx, sy, pawn)

	p.piece = NewPiece(Queen, pawn.Color())
	p.x, p.y = int8(ex), int8(ey)
	p.hasMoved = true
	b.squares[ex][ey].occupant = idx
	b.hash ^= pieceKey(ex, ey, p.piece)

	b.undo = append(b.undo, rec)
}

// Demote reverses Promote(m): the queen on m's end square becomes a pawn on
// m's start square again.
func (b *Board) Demote(m Move) {
	rec := b.popUndo(m)
	sx, sy := m.Start()
	ex, ey := m.End()

	idx := b.occupant(ex, ey, m)
	p := &b.pieces[idx]
	queen := p.piece
	b.squares[ex][ey].occupant = noOccupant
	b.hash ^= pieceKey(ex, ey, queen)

	p.piece = NewPiece(Pawn, queen.Color())
	p.x, p.y = int8(sx), int8(sy)
	p.hasMoved = rec.moverHad
	b.squares[sx][sy].occupant = idx
	b.hash ^= pieceKey(sx, sy, p.piece)

	b.restoreCapture(rec)
}

// relocate performs a plain move and returns its undo record.
func (b *Board) relocate(m Move) undoRecord {
	ex, ey := m.End()
	idx := b.occupant(int(m.StartX), int(m.StartY), m)

	rec := b.record(m, idx)
	if rec.captured != noOccupant {
		b.deactivate(rec.captured)
	}
	b.shift(idx, ex, ey)
	b.pieces[idx].hasMoved = true
	return rec
}

func (b *Board) record(m Move, mover int) undoRecord {
	return undoRecord{
		move:     m,
		mover:    mover,
		rook:     noOccupant,
		captured: b.squares[m.EndX][m.EndY].occupant,
		moverHad: b.pieces[mover].hasMoved,
		kingsHad: b.activeKings,
	}
}

// shift moves slot idx from its square to (x, y), keeping the hash in step.
func (b *Board) shift(idx, x, y int) {
	p := &b.pieces[idx]
	b.squares[p.x][p.y].occupant = noOccupant
	b.hash ^= pieceKey(int(p.x), int(p.y), p.piece)

	p.x, p.y = int8(x), int8(y)
	b.squares[x][y].occupant = idx
	b.hash ^= pieceKey(x, y, p.piece)
}

func (b *Board) restoreCapture(rec undoRecord) {
	if rec.captured != noOccupant {
		ex, ey := rec.move.End()
		p := &b.pieces[rec.captured]
		p.active = true
		p.x, p.y = int8(ex), int8(ey)
		b.squares[ex][ey].occupant = rec.captured
		b.hash ^= pieceKey(ex, ey, p.piece)
	}
	b.activeKings = rec.kingsHad
}

// occupant returns the arena slot on (x, y) and panics when the square is
// empty: applying a move from an empty square is a caller bug.
func (b *Board) occupant(x, y int, m Move) int {
	idx := b.squares[x][y].occupant
	if idx == noOccupant {
		panic(errors.Wrapf(ErrEmptySquare, "move %s", m))
	}
	return idx
}

func (b *Board) popUndo(m Move) undoRecord {
	n := len(b.undo)
	if n == 0 || b.undo[n-1].move != m {
		panic(errors.Wrapf(ErrUndoMismatch, "reverse %s", m))
	}
	rec := b.undo[n-1]
	b.undo = b.undo[:n-1]
	return rec
}

package board

// Clone returns an independent copy of the board. The arena is duplicated in
// one bulk copy and the grid is a value array, so nothing mutable is shared.
// The repetition history and the undo stack are copied too: the clone sees
// earlier repetitions and can reverse moves made before it was taken.
func (b *Board) Clone() *Board {
	c := b.CloneForSearch()
	c.history = b.History()
	c.undo = append([]undoRecord(nil), b.undo...)
	return c
}

// CloneForSearch is Clone without history or undo stack, for short-lived
// search branches that only reverse their own moves.
func (b *Board) CloneForSearch() *Board {
	c := &Board{
		squares:     b.squares,
		pieces:      append(make([]pieceState, 0, cap(b.pieces)), b.pieces...),
		activeKings: b.activeKings,
		turn:        b.turn,
		turnNumber:  b.turnNumber,
		hash:        b.hash,
		history:     make(map[uint64]int),
		threefold:   b.threefold,
	}
	return c
}

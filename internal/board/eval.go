package board

// EvaluateBoard scores the position in pawn units from c's point of view.
// White pieces add their value on their own square; Black pieces subtract
// the value of the point-mirrored square (7-x, 7-y). The sum is negated for
// Black.
func (b *Board) EvaluateBoard(c Color) float64 {
	var value float64
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			idx := b.squares[x][y].occupant
			if idx == noOccupant {
				continue
			}
			p := b.pieces[idx].piece
			v := p.variant()
			if p.Color() == White {
				value += v.Value(x, y)
			} else {
				value -= v.Value(7-x, 7-y)
			}
		}
	}

	if c == Black {
		value = -value
	}
	return value
}

// Evaluate scores the position for the side to move.
func (b *Board) Evaluate() float64 {
	return b.EvaluateBoard(b.turn)
}

// Material returns the material balance in centipawns (positive favors
// White), kings excluded.
func (b *Board) Material() int {
	score := 0
	for i := range b.pieces {
		p := b.pieces[i]
		if !p.active || p.piece.Type() == King {
			continue
		}
		if p.piece.Color() == White {
			score += p.piece.Value()
		} else {
			score -= p.piece.Value()
		}
	}
	return score
}

package board

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

// PositionalByteArray returns one byte per arena slot, in arena order. Each
// byte is the slot's PositionData. The encoding only makes sense against a
// board whose arena was built in the same order.
func (b *Board) PositionalByteArray() []byte {
	out := make([]byte, len(b.pieces))
	for i := range b.pieces {
		out[i] = b.pieces[i].positionData()
	}
	return out
}

// SetPositionalByteArray applies a positional snapshot. The data is checked
// in full before anything changes: a length different from the arena size
// or two active pieces on one square is rejected. On success the grid, hash
// and king flags are rebuilt from the slots.
func (b *Board) SetPositionalByteArray(data []byte) error {
	if len(data) != len(b.pieces) {
		return errors.Wrapf(ErrSnapshotLength, "got %d bytes for %d pieces", len(data), len(b.pieces))
	}

	var seen [64]bool
	for i, d := range data {
		if d&posActiveBit == 0 {
			continue
		}
		sq := d & posSquareMask
		if seen[sq] {
			x, y := IndexCoord(int(sq))
			return errors.Wrapf(ErrSnapshotOverlap, "slot %d on %s", i, CoordName(x, y))
		}
		seen[sq] = true
	}

	for i, d := range data {
		b.pieces[i].setPositionData(d)
	}
	b.rebind()
	return nil
}

// PositionalDataString is PositionalByteArray in standard base64.
func (b *Board) PositionalDataString() string {
	return base64.StdEncoding.EncodeToString(b.PositionalByteArray())
}

// SetPositionalDataString decodes base64 positional data and applies it.
func (b *Board) SetPositionalDataString(s string) error {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return errors.Wrap(ErrSnapshotEncoding, err.Error())
	}
	return b.SetPositionalByteArray(data)
}

// rebind rebuilds the grid, king flags and hash from the arena and drops the
// undo stack, which no longer describes the position. A color whose arena
// holds no king at all keeps its king flag set.
func (b *Board) rebind() {
	b.resetGrid()
	var hasKing, kingOn [2]bool
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.piece.Type() == King {
			hasKing[p.piece.Color()] = true
		}
		if !p.active {
			continue
		}
		b.squares[p.x][p.y].occupant = i
		if p.piece.Type() == King {
			kingOn[p.piece.Color()] = true
		}
	}
	for c := White; c <= Black; c++ {
		b.activeKings[c] = !hasKing[c] || kingOn[c]
	}
	b.hash = b.ComputeHash()
	b.undo = nil
}

// Layout returns the arena's pieces as FEN letters in slot order, captured
// slots included. Together with PositionalByteArray it describes the board
// completely, promoted slots included.
func (b *Board) Layout() string {
	out := make([]byte, len(b.pieces))
	for i := range b.pieces {
		out[i] = b.pieces[i].piece.String()[0]
	}
	return string(out)
}

// NewBoardFromLayout builds a board whose arena holds the pieces named by
// layout, in order, and places them with positional data. White is to move
// on turn 1; callers restore the turn separately.
func NewBoardFromLayout(layout string, data []byte) (*Board, error) {
	b := NewEmptyBoard()
	for i := 0; i < len(layout); i++ {
		p := PieceFromChar(layout[i])
		if p == NoPiece {
			return nil, errors.Wrapf(ErrSnapshotEncoding, "invalid layout letter %q at %d", layout[i], i)
		}
		b.pieces = append(b.pieces, pieceState{piece: p, x: -1, y: -1})
	}
	if err := b.SetPositionalByteArray(data); err != nil {
		return nil, err
	}
	return b, nil
}

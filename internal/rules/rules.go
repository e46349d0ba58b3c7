// Package rules layers check, checkmate and stalemate detection over the
// board package. The core generator is pseudo-legal; legality is decided by
// handing the position to dragontoothmg as FEN.
package rules

import (
	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/chesscore/internal/board"
)

// Status is the state of a game.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	KingCaptured
	ThreefoldRepetition
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case KingCaptured:
		return "king captured"
	case ThreefoldRepetition:
		return "threefold repetition"
	default:
		return "unknown"
	}
}

// Terminal reports whether the game is over.
func (s Status) Terminal() bool {
	return s != Ongoing
}

// mirror parses b with c to move. Callers must ensure both kings are on the
// board; dragontoothmg assumes one king per side.
func mirror(b *board.Board, c board.Color) dragontoothmg.Board {
	return dragontoothmg.ParseFen(b.ToFENFor(c))
}

// InCheck reports whether c's king is attacked.
func InCheck(b *board.Board, c board.Color) bool {
	if b.CheckIfDone() {
		return false
	}
	db := mirror(b, c)
	return db.OurKingInCheck()
}

// LegalMoves returns c's candidate moves that do not leave c's king
// attacked, in the core generator's order.
func LegalMoves(b *board.Board, c board.Color) []board.Move {
	candidates := b.GetAllPossibleMoves(c)
	if len(candidates) == 0 {
		return candidates
	}

	db := mirror(b, c)
	legal := make(map[[2]uint8]bool)
	for _, m := range db.GenerateLegalMoves() {
		if p := m.Promote(); p != dragontoothmg.Nothing && p != dragontoothmg.Queen {
			continue
		}
		legal[[2]uint8{m.From(), m.To()}] = true
	}

	out := candidates[:0]
	for _, m := range candidates {
		sx, sy := m.Start()
		ex, ey := m.End()
		key := [2]uint8{uint8(board.SquareIndex(sx, sy)), uint8(board.SquareIndex(ex, ey))}
		if legal[key] {
			out = append(out, m)
		}
	}
	return out
}

// IsCheckmate reports whether c is in check with no legal move.
func IsCheckmate(b *board.Board, c board.Color) bool {
	return InCheck(b, c) && len(LegalMoves(b, c)) == 0
}

// IsStalemate reports whether c is not in check but has no legal move.
func IsStalemate(b *board.Board, c board.Color) bool {
	if b.CheckIfDone() {
		return false
	}
	return !InCheck(b, c) && len(LegalMoves(b, c)) == 0
}

// GameStatus classifies the position for the side to move. A captured king
// takes precedence, then mate and stalemate, then repetition.
func GameStatus(b *board.Board) Status {
	if b.CheckIfDone() {
		return KingCaptured
	}

	c := b.CurrentTurn()
	if len(LegalMoves(b, c)) == 0 {
		if InCheck(b, c) {
			return Checkmate
		}
		return Stalemate
	}
	if b.ThreefoldRepetition() {
		return ThreefoldRepetition
	}
	return Ongoing
}

package board

import "testing"

// perft counts leaf nodes of the candidate-move tree, checking the running
// hash at every node on the way.
func perft(t *testing.T, b *Board, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := b.GetAllPossibleMoves(b.CurrentTurn())
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		b.Play(m)
		if b.Hash() != b.ComputeHash() {
			t.Fatalf("hash drift after %v", m)
		}
		nodes += perft(t, b, depth-1)
		b.TakeBack()
	}
	return nodes
}

// TestPerftStartingPosition counts candidate moves from the starting
// position. Checks only become possible from the third ply, so the first two
// depths match the legal-move counts.
func TestPerftStartingPosition(t *testing.T) {
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			b := NewBoard()
			start := capture(b)
			got := perft(t, b, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
			if capture(b) != start {
				t.Error("perft left the board changed")
			}
		})
	}
}

// TestPerftCastlingPosition exercises castling and promotion on both sides.
func TestPerftCastlingPosition(t *testing.T) {
	b, err := ParseFEN("r3k2r/1P4P1/8/8/8/8/1p4p1/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	start := capture(b)

	perft(t, b, 3)
	if capture(b) != start {
		t.Fatal("perft left the board changed")
	}
}

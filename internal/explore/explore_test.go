package explore

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func TestPerft(t *testing.T) {
	tests := []struct {
		depth    int
		expected uint64
	}{
		{0, 1},
		{1, 20},
		{2, 400},
	}
	for _, tc := range tests {
		b := board.NewBoard()
		if got := Perft(b, tc.depth); got != tc.expected {
			t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

func TestPerftLeavesBoard(t *testing.T) {
	b := mustFEN(t, "r3k2r/1P4P1/8/8/8/8/1p4p1/R3K2R w KQkq - 0 1")
	fen, hash := b.ToFEN(), b.Hash()

	Perft(b, 3)
	if b.ToFEN() != fen || b.Hash() != hash {
		t.Errorf("board changed: %s", b.ToFEN())
	}
	if b.UndoDepth() != 0 {
		t.Errorf("UndoDepth() = %d, want 0", b.UndoDepth())
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	b := board.NewBoard()
	var sum uint64
	entries := Divide(b, 3)
	if len(entries) != 20 {
		t.Fatalf("got %d root moves, want 20", len(entries))
	}
	for _, e := range entries {
		sum += e.Nodes
	}
	if want := Perft(b, 3); sum != want {
		t.Errorf("divide sum = %d, perft = %d", sum, want)
	}
}

func TestParallelPerftMatchesSequential(t *testing.T) {
	for _, fen := range []string{
		board.StartFEN,
		"r3k2r/1P4P1/8/8/8/8/1p4p1/R3K2R w KQkq - 0 1",
	} {
		b := mustFEN(t, fen)
		want := Perft(b, 3)
		got, err := ParallelPerft(context.Background(), b, 3, 4)
		if err != nil {
			t.Fatalf("ParallelPerft: %v", err)
		}
		if got != want {
			t.Errorf("%s: parallel %d, sequential %d", fen, got, want)
		}
	}
}

func TestParallelPerftCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParallelPerft(ctx, board.NewBoard(), 3, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestScoreMovesPrefersCapture(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	fen := b.ToFEN()

	scored, err := ScoreMoves(context.Background(), b, DefaultScoreOptions())
	if err != nil {
		t.Fatalf("ScoreMoves: %v", err)
	}
	if len(scored) != len(b.GetAllPossibleMoves(board.White)) {
		t.Fatalf("scored %d moves", len(scored))
	}
	if want := board.NewMove(4, 3, 3, 4); scored[0].Move != want {
		t.Errorf("best = %v, want %v", scored[0].Move, want)
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Fatalf("not sorted at %d", i)
		}
	}
	if b.ToFEN() != fen {
		t.Errorf("board changed: %s", b.ToFEN())
	}
}

func TestScoreMovesIsOnePly(t *testing.T) {
	b := board.NewBoard()
	scored, err := ScoreMoves(context.Background(), b, ScoreOptions{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range scored {
		c := b.Clone()
		c.DoMove(s.Move, false)
		if want := c.EvaluateBoard(board.White); s.Score != want {
			t.Errorf("%v: score %v, want static evaluation %v", s.Move, s.Score, want)
		}
	}
}

func TestScoreMovesKingCapture(t *testing.T) {
	b := mustFEN(t, "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1")
	scored, err := ScoreMoves(context.Background(), b, DefaultScoreOptions())
	if err != nil {
		t.Fatalf("ScoreMoves: %v", err)
	}
	if scored[0].Move != board.NewMove(4, 6, 4, 7) || scored[0].Score != KingLoss {
		t.Errorf("best = %+v, want king capture", scored[0])
	}
}

func TestScoreMovesCacheIsTransparent(t *testing.T) {
	b := board.NewBoard()
	b.Play(board.NewMove(4, 1, 4, 3))

	cached := DefaultScoreOptions()
	uncached := cached
	uncached.Cache = nil

	withCache, err := ScoreMoves(context.Background(), b, cached)
	if err != nil {
		t.Fatal(err)
	}
	without, err := ScoreMoves(context.Background(), b, uncached)
	if err != nil {
		t.Fatal(err)
	}
	if len(withCache) != len(without) {
		t.Fatalf("lengths %d and %d", len(withCache), len(without))
	}
	for i := range without {
		if withCache[i] != without[i] {
			t.Errorf("entry %d: %+v vs %+v", i, withCache[i], without[i])
		}
	}
}

func TestScoreMovesLogs(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultScoreOptions()
	opts.Logger = zerolog.New(&buf)

	if _, err := ScoreMoves(context.Background(), board.NewBoard(), opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "scored root moves") {
		t.Errorf("missing summary log: %s", buf.String())
	}
}

func TestScoreMovesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScoreMoves(ctx, board.NewBoard(), DefaultScoreOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEvalCache(t *testing.T) {
	c := NewEvalCache(1)
	if c.Size() == 0 || c.Size()&(c.Size()-1) != 0 {
		t.Fatalf("size %d is not a power of two", c.Size())
	}

	c.Store(0x1234, board.White, 1.5)
	if v, ok := c.Probe(0x1234, board.White); !ok || v != 1.5 {
		t.Errorf("Probe = %v, %v; want 1.5, true", v, ok)
	}
	if _, ok := c.Probe(0x1234, board.Black); ok {
		t.Error("point of view must be part of the key")
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", c.HitRate())
	}

	c.Clear()
	if _, ok := c.Probe(0x1234, board.White); ok {
		t.Error("entry survived Clear")
	}
	if c.HitRate() != 0 {
		t.Errorf("HitRate() = %v after Clear", c.HitRate())
	}
}

func TestEvalCacheIgnoresCastlingRights(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"white rights", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1"},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, b := mustFEN(t, tc.a), mustFEN(t, tc.b)
			if a.Hash() != b.Hash() {
				t.Fatal("placements should hash alike")
			}
			if len(a.GetAllPossibleMoves(board.White)) == len(b.GetAllPossibleMoves(board.White)) {
				t.Fatal("castling rights should change the candidate moves")
			}

			c := NewEvalCache(1)
			for _, side := range []board.Color{board.White, board.Black} {
				if got, want := c.Evaluate(a, side), b.EvaluateBoard(side); got != want {
					t.Errorf("%v: cached %v, want %v", side, got, want)
				}
				if got, want := c.Evaluate(b, side), b.EvaluateBoard(side); got != want {
					t.Errorf("%v: shared entry %v, want %v", side, got, want)
				}
			}
		})
	}
}

package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/storage"
)

// run feeds script to a fresh shell and returns its output.
func run(t *testing.T, sh *Shell, script string) string {
	t.Helper()
	var out strings.Builder
	if err := sh.Run(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestMoveAndUndo(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "move e2e4\nmove e7e5\nmove Nf3\nturn\nundo\nturn\n")

	for _, want := range []string{"ok e2e4", "ok e7e5", "ok g1f3", "Black 4", "undone g1f3", "White 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := sh.Board().PieceAt(4, 3); got != board.WhitePawn {
		t.Errorf("e4 = %v, want P", got)
	}
}

func TestErrorsDoNotStopTheLoop(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "bogus\nmove e2e5\nundo\nmoves purple\nmove e2e4\n")

	if n := strings.Count(out, "error:"); n != 4 {
		t.Errorf("got %d errors, want 4:\n%s", n, out)
	}
	if !strings.Contains(out, "ok e2e4") {
		t.Errorf("loop stopped early:\n%s", out)
	}
}

func TestQuitStopsReading(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "hash\nquit\nmove e2e4\n")
	if strings.Contains(out, "ok e2e4") {
		t.Errorf("command after quit ran:\n%s", out)
	}
	if sh.Board().TurnNumber() != 1 {
		t.Error("board changed after quit")
	}
}

func TestFENAndStatus(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "fen rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 3\nstatus\nfen\n")

	if !strings.Contains(out, "checkmate") {
		t.Errorf("status not reported:\n%s", out)
	}
	if !strings.Contains(out, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 3") {
		t.Errorf("fen not echoed:\n%s", out)
	}
}

func TestMovesAndPerft(t *testing.T) {
	sh := New(nil, WithWorkers(2))
	out := run(t, sh, "moves\nperft 2\ndivide 1\n")

	if !strings.HasPrefix(out, "20: a2a3 a2a4") {
		t.Errorf("moves output:\n%s", out)
	}
	if !strings.Contains(out, "Nodes: 400") {
		t.Errorf("perft output:\n%s", out)
	}
	if !strings.Contains(out, "Nodes: 20") {
		t.Errorf("divide output:\n%s", out)
	}
}

func TestScore(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "fen 4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1\nscore\n")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "e4d5 ") {
		t.Errorf("best move not first:\n%s", out)
	}
}

func TestScoreRejectsArguments(t *testing.T) {
	out := run(t, New(nil), "score 3\n")
	if !strings.Contains(out, "error:") {
		t.Errorf("score with an argument should fail:\n%s", out)
	}
}

func TestEvalDefaultsToSideToMove(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "move e2e4\neval\neval b\neval w\n")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("output:\n%s", out)
	}
	if lines[1] != lines[2] || lines[1] == lines[3] {
		t.Errorf("eval should score for Black to move:\n%s", out)
	}
}

func TestHistoryCommand(t *testing.T) {
	sh := New(nil)
	cycle := "move g1f3\nmove g8f6\nmove f3g1\nmove f6g8\n"
	out := run(t, sh, cycle+cycle+"history\nhistory reset\nhistory bogus\n")

	for _, want := range []string{"repetitions 2 threefold false", "repetitions 0 threefold false", "error:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out = run(t, sh, cycle+"move g1f3\nhistory\n")
	if !strings.Contains(out, "repetitions 2 threefold false") {
		t.Errorf("reset history should count afresh:\n%s", out)
	}
}

func TestSnapshotCommands(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer store.Close()

	sh := New(nil, WithStore(store))
	run(t, sh, "move e2e4\nsave opening\nnew\n")
	if sh.Board().TurnNumber() != 1 {
		t.Fatal("new did not reset the board")
	}

	out := run(t, sh, "list\nload opening\nturn\n")
	if !strings.Contains(out, "opening\n") || !strings.Contains(out, "Black 2") {
		t.Errorf("load output:\n%s", out)
	}
	if sh.Board().PieceAt(4, 3) != board.WhitePawn {
		t.Error("loaded board lacks e4 pawn")
	}

	out = run(t, sh, "delete opening\nload opening\n")
	if !strings.Contains(out, "error:") {
		t.Errorf("loading a deleted snapshot should fail:\n%s", out)
	}
}

func TestSnapshotWithoutStore(t *testing.T) {
	sh := New(nil)
	out := run(t, sh, "save x\n")
	if !strings.Contains(out, ErrNoStore.Error()) {
		t.Errorf("output:\n%s", out)
	}
}

func TestPositionalRestore(t *testing.T) {
	sh := New(nil)
	start := sh.Board().PositionalDataString()

	run(t, sh, "move e2e4\nmove d7d5\nmove e4d5\n")
	if sh.Board().ActiveCount() != 31 {
		t.Fatal("capture not applied")
	}
	run(t, sh, "restore "+start+"\n")
	if sh.Board().ActiveCount() != 32 || sh.Board().Hash() != board.NewBoard().Hash() {
		t.Error("restore did not bring back the start position")
	}
}

func TestPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	sh := New(nil)
	out := run(t, sh, "move e2e4\npng "+path+"\n")

	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("output:\n%s", out)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("png not written: %v", err)
	}
}

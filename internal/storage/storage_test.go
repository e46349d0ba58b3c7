package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func playedBoard() *board.Board {
	b := board.NewBoard()
	for _, m := range []board.Move{
		board.NewMove(4, 1, 4, 3), board.NewMove(3, 6, 3, 4),
		board.NewMove(4, 3, 3, 4), board.NewMove(6, 7, 5, 5),
	} {
		b.Play(m)
	}
	return b
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	b := playedBoard()

	if err := s.SaveSnapshot("scandinavian", Capture(b)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	snap, err := s.LoadSnapshot("scandinavian")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.SavedAt.IsZero() {
		t.Error("SavedAt not set")
	}

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Hash() != b.Hash() {
		t.Errorf("hash = %016x, want %016x", restored.Hash(), b.Hash())
	}
	if restored.ToFEN() != b.ToFEN() {
		t.Errorf("FEN = %q, want %q", restored.ToFEN(), b.ToFEN())
	}
	if restored.CurrentTurn() != board.White || restored.TurnNumber() != 5 {
		t.Errorf("turn = %v/%d, want White/5", restored.CurrentTurn(), restored.TurnNumber())
	}
	if restored.PositionalDataString() != b.PositionalDataString() {
		t.Error("positional data differs")
	}
	for h, n := range b.History() {
		if restored.Repetitions(h) != n {
			t.Errorf("history[%016x] = %d, want %d", h, restored.Repetitions(h), n)
		}
	}
}

func TestSnapshotNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LoadSnapshot("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSnapshot err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSnapshot("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSnapshot err = %v, want ErrNotFound", err)
	}
	if err := s.SaveSnapshot("a/b", Capture(board.NewBoard())); !errors.Is(err, ErrInvalidName) {
		t.Errorf("SaveSnapshot err = %v, want ErrInvalidName", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	snap := Capture(board.NewBoard())

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.SaveSnapshot(name, snap); err != nil {
			t.Fatalf("SaveSnapshot(%s): %v", name, err)
		}
	}
	names, err := s.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(names) != 3 || names[0] != "alpha" || names[2] != "zeta" {
		t.Errorf("names = %v", names)
	}

	if err := s.DeleteSnapshot("mid"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	names, _ = s.ListSnapshots()
	if len(names) != 2 {
		t.Errorf("names after delete = %v", names)
	}
}

func TestRestoreRejectsTampering(t *testing.T) {
	b := playedBoard()

	tests := []struct {
		name   string
		mutate func(*Snapshot)
		cause  error
	}{
		{"Hash", func(s *Snapshot) { s.Hash ^= 1 }, nil},
		{"Encoding", func(s *Snapshot) { s.Positional = "%%%" }, nil},
		{"Layout", func(s *Snapshot) { s.Layout = s.Layout[1:] }, board.ErrSnapshotLength},
		{"Letter", func(s *Snapshot) { s.Layout = "X" + s.Layout[1:] }, board.ErrSnapshotEncoding},
		{"Turn", func(s *Snapshot) { s.Turn = "purple" }, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := Capture(b)
			tc.mutate(&snap)
			_, err := Restore(snap)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("err = %v, want ErrCorrupt", err)
			}
			if tc.cause != nil && !errors.Is(err, tc.cause) {
				t.Errorf("err = %v, want cause %v", err, tc.cause)
			}
		})
	}
}

func TestSnapshotKeepsThreefold(t *testing.T) {
	b := board.NewBoard()
	cycle := []board.Move{
		board.NewMove(6, 0, 5, 2), board.NewMove(6, 7, 5, 5),
		board.NewMove(5, 2, 6, 0), board.NewMove(5, 5, 6, 7),
	}
	for round := 0; round < 3; round++ {
		for _, m := range cycle {
			b.Play(m)
		}
	}
	for i := 0; i < 4; i++ {
		if _, ok := b.TakeBack(); !ok {
			t.Fatal("TakeBack failed")
		}
	}
	if !b.ThreefoldRepetition() {
		t.Fatal("threefold flag should survive TakeBack")
	}

	s := openTestStore(t)
	if err := s.SaveSnapshot("repeated", Capture(b)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	snap, err := s.LoadSnapshot("repeated")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !restored.ThreefoldRepetition() {
		t.Error("threefold flag lost across save and restore")
	}

	fresh, err := Restore(Capture(board.NewBoard()))
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ThreefoldRepetition() {
		t.Error("restoring a fresh game set the threefold flag")
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := Open("", InMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.SaveSnapshot("start", Capture(board.NewBoard())); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := s.LoadSnapshot("start"); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
}

func TestDatabaseDirOverride(t *testing.T) {
	dir := t.TempDir() + "/custom"
	t.Setenv(EnvDatabaseDir, dir)

	got, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir: %v", err)
	}
	if got != dir {
		t.Errorf("GetDatabaseDir() = %q, want %q", got, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestDataDirFollowsXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_HOME only applies on Linux")
	}
	home := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", home)
	xdg.Reload()

	got, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if want := filepath.Join(home, appName); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

// Package shell drives a live board from line-oriented text commands.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/explore"
	"github.com/hailam/chesscore/internal/notation"
	"github.com/hailam/chesscore/internal/render"
	"github.com/hailam/chesscore/internal/rules"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	// ErrUnknownCommand is returned for commands the shell does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command's arguments are wrong.
	ErrUsage = errors.New("usage")
	// ErrNoStore is returned by snapshot commands when no store is set.
	ErrNoStore = errors.New("no snapshot store configured")
	// ErrNothingToUndo is returned by undo on a board with no history.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Shell holds one live board and the collaborators its commands use.
type Shell struct {
	b     *board.Board
	store *storage.Store
	cache *explore.EvalCache
	log   zerolog.Logger

	workers  int
	lastMove *board.Move
}

// Option configures a Shell.
type Option func(*Shell)

// WithStore enables save, load, list and delete.
func WithStore(s *storage.Store) Option {
	return func(sh *Shell) { sh.store = s }
}

// WithLogger sets the logger for command tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(sh *Shell) { sh.log = l }
}

// WithWorkers bounds the goroutines used by perft and score.
func WithWorkers(n int) Option {
	return func(sh *Shell) { sh.workers = n }
}

// New creates a shell driving b. A nil b starts from the initial position.
func New(b *board.Board, opts ...Option) *Shell {
	if b == nil {
		b = board.NewBoard()
	}
	sh := &Shell{
		b:     b,
		cache: explore.NewEvalCache(16),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(sh)
	}
	return sh
}

// Board returns the live board. Commands that load a new position replace
// it, so callers should not hold on to the result across commands.
func (sh *Shell) Board() *board.Board {
	return sh.b
}

// Run reads commands from r until EOF, "quit" or ctx is done. Command errors
// are written to w and do not stop the loop.
func (sh *Shell) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		quit, err := sh.Exec(ctx, line, w)
		if err != nil {
			sh.log.Debug().Err(err).Str("line", line).Msg("command failed")
			fmt.Fprintf(w, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// Exec runs one command line while holding the board's lock.
func (sh *Shell) Exec(ctx context.Context, line string, w io.Writer) (quit bool, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	start := time.Now()
	lock := sh.b.Locker()
	lock.Lock()
	defer func() {
		lock.Unlock()
		sh.log.Debug().Str("cmd", cmd).Dur("elapsed", time.Since(start)).Msg("command")
	}()

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprint(w, helpText)
	case "new":
		sh.replace(board.NewBoard())
		fmt.Fprintln(w, "ok")
	case "fen":
		err = sh.handleFEN(args, w)
	case "moves":
		err = sh.handleMoves(args, w)
	case "legal":
		sh.handleLegal(w)
	case "move":
		err = sh.handleMove(args, w)
	case "undo":
		err = sh.handleUndo(w)
	case "turn":
		fmt.Fprintf(w, "%v %d\n", sh.b.CurrentTurn(), sh.b.TurnNumber())
	case "eval":
		err = sh.handleEval(args, w)
	case "hash":
		fmt.Fprintf(w, "%016x\n", sh.b.Hash())
	case "perft":
		err = sh.handlePerft(ctx, args, w)
	case "divide":
		err = sh.handleDivide(args, w)
	case "score":
		err = sh.handleScore(ctx, args, w)
	case "history":
		err = sh.handleHistory(args, w)
	case "status":
		fmt.Fprintln(w, rules.GameStatus(sh.b))
	case "save":
		err = sh.handleSave(args, w)
	case "load":
		err = sh.handleLoad(args, w)
	case "list":
		err = sh.handleList(w)
	case "delete":
		err = sh.handleDelete(args, w)
	case "snapshot":
		fmt.Fprintln(w, sh.b.PositionalDataString())
	case "restore":
		err = sh.handleRestore(args, w)
	case "png":
		err = sh.handlePNG(args, w)
	case "d":
		fmt.Fprintln(w, sh.b.String())
		fmt.Fprintf(w, "Fen: %s\n", sh.b.ToFEN())
	default:
		err = errors.Wrapf(ErrUnknownCommand, "%q", cmd)
	}
	return false, err
}

const helpText = `commands:
  new                  start position
  fen [fen]            print or set the position
  moves [color]        candidate moves
  legal                legal moves in SAN
  move <move>          play e2e4, e7e8q or SAN
  undo                 take back the last move
  turn                 side to move and turn number
  eval [color]         positional evaluation
  hash                 position hash
  perft <depth>        count leaf nodes
  divide <depth>       perft per root move
  score                rank candidate moves
  history [reset]      repetitions of this position
  status               game state
  save|load|delete <name>, list
  snapshot             positional data (base64)
  restore <base64>     apply positional data
  png <path>           render the board
  d                    show the board
  quit
`

// replace swaps in a new board. The old board's lock is still held by Exec
// and is released there.
func (sh *Shell) replace(b *board.Board) {
	sh.b = b
	sh.lastMove = nil
	sh.cache.Clear()
}

func (sh *Shell) handleFEN(args []string, w io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(w, sh.b.ToFEN())
		return nil
	}
	b, err := board.ParseFEN(strings.Join(args, " "))
	if err != nil {
		return err
	}
	sh.replace(b)
	fmt.Fprintln(w, "ok")
	return nil
}

func (sh *Shell) colorArg(args []string) (board.Color, error) {
	if len(args) == 0 {
		return sh.b.CurrentTurn(), nil
	}
	c, ok := board.ParseColor(args[0])
	if !ok {
		return board.NoColor, errors.Wrapf(ErrUsage, "color %q", args[0])
	}
	return c, nil
}

func (sh *Shell) handleMoves(args []string, w io.Writer) error {
	c, err := sh.colorArg(args)
	if err != nil {
		return err
	}
	moves := sh.b.GetAllPossibleMoves(c)
	strs := make([]string, len(moves))
	for i, m := range moves {
		strs[i] = m.String()
	}
	fmt.Fprintf(w, "%d: %s\n", len(moves), strings.Join(strs, " "))
	return nil
}

func (sh *Shell) handleLegal(w io.Writer) {
	moves := rules.LegalMoves(sh.b, sh.b.CurrentTurn())
	strs := make([]string, 0, len(moves))
	for _, m := range moves {
		if san, err := notation.SAN(sh.b, m); err == nil {
			strs = append(strs, san)
		} else {
			strs = append(strs, m.String())
		}
	}
	fmt.Fprintf(w, "%d: %s\n", len(moves), strings.Join(strs, " "))
}

func (sh *Shell) handleMove(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.Wrap(ErrUsage, "move <e2e4|SAN>")
	}
	if sh.b.CheckIfDone() {
		return errors.Wrap(notation.ErrIllegalMove, "game is over")
	}

	m, err := notation.ParseCoordinateMove(args[0], sh.b)
	if errors.Is(err, notation.ErrInvalidNotation) {
		m, err = notation.ParseSAN(args[0], sh.b)
	}
	if err != nil {
		return err
	}

	sh.b.Play(m)
	sh.lastMove = &m
	sh.log.Info().Str("move", m.String()).Int("turn", sh.b.TurnNumber()).Msg("played")

	if status := rules.GameStatus(sh.b); status.Terminal() {
		fmt.Fprintf(w, "ok %v (%v)\n", m, status)
	} else {
		fmt.Fprintf(w, "ok %v\n", m)
	}
	return nil
}

func (sh *Shell) handleUndo(w io.Writer) error {
	m, ok := sh.b.TakeBack()
	if !ok {
		return ErrNothingToUndo
	}
	sh.lastMove = nil
	fmt.Fprintf(w, "undone %v\n", m)
	return nil
}

func (sh *Shell) handleEval(args []string, w io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintf(w, "%.2f\n", sh.b.Evaluate())
		return nil
	}
	c, err := sh.colorArg(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%.2f\n", sh.b.EvaluateBoard(c))
	return nil
}

func (sh *Shell) handleHistory(args []string, w io.Writer) error {
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "reset":
		sh.b.ResetHistory()
	default:
		return errors.Wrap(ErrUsage, "history [reset]")
	}
	fmt.Fprintf(w, "repetitions %d threefold %v\n", sh.b.Repetitions(sh.b.Hash()), sh.b.ThreefoldRepetition())
	return nil
}

func depthArg(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	d, err := strconv.Atoi(args[0])
	if err != nil || d < 0 {
		return 0, errors.Wrapf(ErrUsage, "depth %q", args[0])
	}
	return d, nil
}

func (sh *Shell) handlePerft(ctx context.Context, args []string, w io.Writer) error {
	depth, err := depthArg(args, 4)
	if err != nil {
		return err
	}

	start := time.Now()
	nodes, err := explore.ParallelPerft(ctx, sh.b, depth, sh.workers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(w, "Nodes: %d\n", nodes)
	fmt.Fprintf(w, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(w, "NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
	return nil
}

func (sh *Shell) handleDivide(args []string, w io.Writer) error {
	depth, err := depthArg(args, 2)
	if err != nil {
		return err
	}
	var total uint64
	for _, e := range explore.Divide(sh.b, depth) {
		fmt.Fprintf(w, "%v: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	fmt.Fprintf(w, "Nodes: %d\n", total)
	return nil
}

func (sh *Shell) handleScore(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 0 {
		return errors.Wrap(ErrUsage, "score")
	}

	scored, err := explore.ScoreMoves(ctx, sh.b, explore.ScoreOptions{
		Workers: sh.workers,
		Cache:   sh.cache,
		Logger:  sh.log,
	})
	if err != nil {
		return err
	}
	for _, s := range scored {
		fmt.Fprintf(w, "%v %.2f\n", s.Move, s.Score)
	}
	return nil
}

func (sh *Shell) nameArg(args []string) (string, error) {
	if sh.store == nil {
		return "", ErrNoStore
	}
	if len(args) != 1 {
		return "", errors.Wrap(ErrUsage, "expected one snapshot name")
	}
	return args[0], nil
}

func (sh *Shell) handleSave(args []string, w io.Writer) error {
	name, err := sh.nameArg(args)
	if err != nil {
		return err
	}
	if err := sh.store.SaveSnapshot(name, storage.Capture(sh.b)); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %s\n", name)
	return nil
}

func (sh *Shell) handleLoad(args []string, w io.Writer) error {
	name, err := sh.nameArg(args)
	if err != nil {
		return err
	}
	snap, err := sh.store.LoadSnapshot(name)
	if err != nil {
		return err
	}
	b, err := storage.Restore(snap)
	if err != nil {
		return err
	}
	sh.replace(b)
	fmt.Fprintf(w, "loaded %s\n", name)
	return nil
}

func (sh *Shell) handleList(w io.Writer) error {
	if sh.store == nil {
		return ErrNoStore
	}
	names, err := sh.store.ListSnapshots()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func (sh *Shell) handleDelete(args []string, w io.Writer) error {
	name, err := sh.nameArg(args)
	if err != nil {
		return err
	}
	if err := sh.store.DeleteSnapshot(name); err != nil {
		return err
	}
	fmt.Fprintf(w, "deleted %s\n", name)
	return nil
}

func (sh *Shell) handleRestore(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.Wrap(ErrUsage, "restore <base64>")
	}
	if err := sh.b.SetPositionalDataString(args[0]); err != nil {
		return err
	}
	sh.lastMove = nil
	fmt.Fprintln(w, "ok")
	return nil
}

func (sh *Shell) handlePNG(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.Wrap(ErrUsage, "png <path>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return errors.Wrap(err, "create png")
	}

	opts := render.DefaultOptions()
	opts.LastMove = sh.lastMove
	opts.Flip = sh.b.CurrentTurn() == board.Black
	err = render.WritePNG(f, sh.b, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", args[0])
	return nil
}

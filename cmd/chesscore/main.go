// Command chesscore drives a board from a text shell on stdin, or runs one
// batch job (perft, PNG rendering) and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/explore"
	"github.com/hailam/chesscore/internal/notation"
	"github.com/hailam/chesscore/internal/render"
	"github.com/hailam/chesscore/internal/shell"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	dbDir      = flag.String("db", "", "snapshot database directory (default: $"+storage.EnvDatabaseDir+" or the platform data dir)")
	noDB       = flag.Bool("nodb", false, "run without a snapshot database")
	logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	fen        = flag.String("fen", "", "start from this FEN instead of the initial position")
	pgnPath    = flag.String("pgn", "", "replay this PGN game before starting")
	perftDepth = flag.Int("perft", 0, "print perft node count to this depth and exit")
	pngPath    = flag.String("png", "", "render the position to this PNG file and exit")
	workers    = flag.Int("workers", 0, "goroutines for perft and scoring (default GOMAXPROCS)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	logger := newLogger(*logLevel)
	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("chesscore failed")
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func run(logger zerolog.Logger) error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return errors.Wrap(err, "could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := startingBoard(logger)
	if err != nil {
		return err
	}

	switch {
	case *perftDepth > 0:
		start := time.Now()
		nodes, err := explore.ParallelPerft(ctx, b, *perftDepth, *workers)
		if err != nil {
			return err
		}
		logger.Info().Int("depth", *perftDepth).Dur("elapsed", time.Since(start)).Msg("perft done")
		fmt.Println(nodes)
		return nil

	case *pngPath != "":
		return writePNG(b, *pngPath)
	}

	opts := []shell.Option{
		shell.WithLogger(logger),
		shell.WithWorkers(*workers),
	}
	if !*noDB {
		store, err := openStore(logger)
		if err != nil {
			logger.Warn().Err(err).Msg("snapshot database unavailable")
		} else {
			defer store.Close()
			opts = append(opts, shell.WithStore(store))
		}
	}

	return shell.New(b, opts...).Run(ctx, os.Stdin, os.Stdout)
}

func startingBoard(logger zerolog.Logger) (*board.Board, error) {
	if *pgnPath != "" {
		f, err := os.Open(*pgnPath)
		if err != nil {
			return nil, errors.Wrap(err, "open pgn")
		}
		defer f.Close()

		b, err := notation.LoadPGN(f)
		if err != nil {
			return nil, errors.Wrapf(err, "replay %s", *pgnPath)
		}
		logger.Info().Str("pgn", *pgnPath).Int("turn", b.TurnNumber()).Msg("game replayed")
		return b, nil
	}
	if *fen != "" {
		return board.ParseFEN(*fen)
	}
	return board.NewBoard(), nil
}

func openStore(logger zerolog.Logger) (*storage.Store, error) {
	if *dbDir != "" {
		return storage.Open(*dbDir, storage.WithLogger(logger))
	}
	return storage.OpenDefault(storage.WithLogger(logger))
}

func writePNG(b *board.Board, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	opts := render.DefaultOptions()
	opts.Flip = b.CurrentTurn() == board.Black
	err = render.WritePNG(f, b, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

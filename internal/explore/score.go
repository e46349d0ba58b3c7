package explore

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// KingLoss is the score of a move that captures the opposing king. It
// dwarfs any material sum.
const KingLoss = 1000.0

// Scored is a root move with its score for the side that plays it.
type Scored struct {
	Move  board.Move
	Score float64
}

// ScoreOptions controls ScoreMoves.
type ScoreOptions struct {
	Workers int // GOMAXPROCS when <= 0

	// Cache is shared by all workers when set.
	Cache *EvalCache

	Logger zerolog.Logger
}

// DefaultScoreOptions uses a 16MB cache and no logging.
func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{
		Cache:  NewEvalCache(16),
		Logger: zerolog.Nop(),
	}
}

// ScoreMoves scores every candidate move of the side to move, best first.
// Each move is applied to its own clone of b and the resulting position is
// evaluated for the mover; b is only read. A move that captures the
// opposing king scores KingLoss. Ties keep generator order.
func ScoreMoves(ctx context.Context, b *board.Board, opts ScoreOptions) ([]Scored, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	side := b.CurrentTurn()
	moves := b.GetAllPossibleMoves(side)
	out := make([]Scored, len(moves))
	clones := make([]*board.Board, len(moves))
	for i := range moves {
		clones[i] = b.CloneForSearch()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := clones[i]
			c.DoMove(m, false)
			score := scorePosition(c, side, opts.Cache)
			out[i] = Scored{Move: m, Score: score}
			opts.Logger.Debug().
				Str("move", m.String()).
				Float64("score", score).
				Msg("root move scored")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "score moves")
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	ev := opts.Logger.Info().
		Int("moves", len(out)).
		Dur("elapsed", time.Since(start))
	if opts.Cache != nil {
		ev = ev.Float64("cache_hit_rate", opts.Cache.HitRate())
	}
	ev.Msg("scored root moves")
	return out, nil
}

// scorePosition evaluates b, reached by a move of side, for side.
func scorePosition(b *board.Board, side board.Color, cache *EvalCache) float64 {
	if !b.KingActive(side.Other()) {
		return KingLoss
	}
	if cache == nil {
		return b.EvaluateBoard(side)
	}
	return cache.Evaluate(b, side)
}

// Package explore walks the move tree of a board: perft node counts and
// shallow root-move scoring, both parallelised by giving every root move its
// own clone.
package explore

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// Perft counts the leaf nodes of the candidate-move tree below b, with the
// side to move first. Moves are applied and reversed in place; b is left as
// it was. Turn state and repetition history are not touched.
func Perft(b *board.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	return perft(b, b.CurrentTurn(), depth, make([][]board.Move, depth))
}

// perft reuses one move buffer per remaining depth.
func perft(b *board.Board, side board.Color, depth int, bufs [][]board.Move) uint64 {
	moves := b.AppendAllPossibleMoves(bufs[depth-1][:0], side)
	bufs[depth-1] = moves
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		b.DoMove(m, false)
		nodes += perft(b, side.Other(), depth-1, bufs)
		b.DoMove(m, true)
	}
	return nodes
}

// DivideEntry is the node count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Divide runs Perft below each root move, in generator order.
func Divide(b *board.Board, depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	side := b.CurrentTurn()
	moves := b.GetAllPossibleMoves(side)
	out := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		var nodes uint64 = 1
		if depth > 1 {
			b.DoMove(m, false)
			nodes = perft(b, side.Other(), depth-1, make([][]board.Move, depth-1))
			b.DoMove(m, true)
		}
		out = append(out, DivideEntry{Move: m, Nodes: nodes})
	}
	return out
}

// ParallelPerft is Perft with the root moves spread over up to workers
// goroutines (GOMAXPROCS when workers <= 0). Each root move is searched on
// its own clone, taken before any goroutine starts, so b is only read.
func ParallelPerft(ctx context.Context, b *board.Board, depth, workers int) (uint64, error) {
	if depth <= 1 {
		return Perft(b, depth), nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	side := b.CurrentTurn()
	moves := b.GetAllPossibleMoves(side)
	clones := make([]*board.Board, len(moves))
	for i := range moves {
		clones[i] = b.CloneForSearch()
	}

	var total atomic.Uint64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := clones[i]
			c.DoMove(m, false)
			total.Add(perft(c, side.Other(), depth-1, make([][]board.Move, depth-1)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, errors.Wrap(err, "parallel perft")
	}
	return total.Load(), nil
}

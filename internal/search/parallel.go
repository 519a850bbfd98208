package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// ParallelBestMove - same choice as Searcher.BestMove, but every root candidate is
// scored in its own goroutine on a private clone of the state. The caller's state is never mutated.
func ParallelBestMove(ctx context.Context, state *entity.GameState, maximizer entity.Cell) (Result, error) {
	// a searcher on a clone runs the precondition checks and the immediate-win scan
	root := NewSearcher(state.Clone(), maximizer)
	if err := root.validate(); err != nil {
		return Result{Move: entity.NoMove}, err
	}

	if move := root.winningMove(); move != entity.NoMove {
		return Result{Move: move, Score: Win, Nodes: root.nodes}, nil
	}

	moves := state.AvailableMoves()
	scores := make([]Score, len(moves))
	nodes := make([]int, len(moves))

	group, ctx := errgroup.WithContext(ctx)
	for i, move := range moves {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			clone := state.Clone()
			if err := clone.ApplyMove(move); err != nil {
				return fmt.Errorf("failed to try move %d: %w", move, err)
			}

			searcher := NewSearcher(clone, maximizer)
			scores[i] = searcher.minimax(negInf, posInf, false)
			nodes[i] = searcher.nodes

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{Move: entity.NoMove}, fmt.Errorf("parallel search aborted: %w", err)
	}

	best := Result{Move: entity.NoMove, Score: negInf, Nodes: root.nodes}
	for i, move := range moves {
		best.Nodes += nodes[i]

		if scores[i] > best.Score {
			best.Move = move
			best.Score = scores[i]
		}
	}

	return best, nil
}

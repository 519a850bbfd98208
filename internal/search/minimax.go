// Package search picks optimal tic-tac-toe moves with minimax and alpha-beta pruning.
package search

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Score - exact game value from the maximizer's point of view.
type Score int

const (
	Loss Score = -1
	Draw Score = 0
	Win  Score = 1

	// bounds outside every reachable score
	negInf Score = -2
	posInf Score = 2
)

// Result - move chosen by the search with its value.
type Result struct {
	Move  entity.Move
	Score Score
	Nodes int
}

// Searcher - explores the game tree in place on one GameState.
// It is not reentrant: one search at a time per state.
type Searcher struct {
	state     *entity.GameState
	maximizer entity.Cell
	nodes     int
}

func NewSearcher(state *entity.GameState, maximizer entity.Cell) *Searcher {
	return &Searcher{
		state:     state,
		maximizer: maximizer,
	}
}

// BestMove - returns the move of the maximizer with the greatest minimax score.
// A move that completes a line right away is taken first. Otherwise candidates
// are tried in ascending order and the first one wins ties.
// The state is restored to its exact pre-call value.
func (that *Searcher) BestMove() (Result, error) {
	if err := that.validate(); err != nil {
		return Result{Move: entity.NoMove}, err
	}

	that.nodes = 0
	if move := that.winningMove(); move != entity.NoMove {
		return Result{Move: move, Score: Win, Nodes: that.nodes}, nil
	}

	best := Result{Move: entity.NoMove, Score: negInf}

	for _, move := range that.state.AvailableMoves() {
		var score Score
		if err := that.state.With(move, func() {
			score = that.minimax(negInf, posInf, false)
		}); err != nil {
			return Result{Move: entity.NoMove}, fmt.Errorf("failed to try move %d: %w", move, err)
		}

		if score > best.Score {
			best.Move = move
			best.Score = score
		}
	}

	best.Nodes = that.nodes

	return best, nil
}

// Value - minimax value of the current state for the maximizer.
func (that *Searcher) Value() Score {
	that.nodes = 0
	return that.minimax(negInf, posInf, that.state.Turn == that.maximizer)
}

// Nodes - states visited by the last search.
func (that *Searcher) Nodes() int {
	return that.nodes
}

// winningMove - lowest move that wins on the spot, NoMove if there is none.
func (that *Searcher) winningMove() entity.Move {
	for _, move := range that.state.AvailableMoves() {
		won := false
		_ = that.state.With(move, func() {
			that.nodes++
			won = that.state.Winner() == that.maximizer
		})

		if won {
			return move
		}
	}

	return entity.NoMove
}

func (that *Searcher) minimax(alpha, beta Score, maximizing bool) Score {
	that.nodes++

	if that.state.IsTerminal() {
		return that.evaluate()
	}

	if maximizing {
		best := negInf
		for _, move := range that.state.AvailableMoves() {
			var score Score
			// moves come from AvailableMoves, so With cannot fail
			_ = that.state.With(move, func() {
				score = that.minimax(alpha, beta, false)
			})

			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}

		return best
	}

	best := posInf
	for _, move := range that.state.AvailableMoves() {
		var score Score
		_ = that.state.With(move, func() {
			score = that.minimax(alpha, beta, true)
		})

		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}

	return best
}

func (that *Searcher) validate() error {
	if that.maximizer != entity.PlayerX && that.maximizer != entity.PlayerO {
		return fmt.Errorf("%w: no mark to search for", apperror.ErrIllegalTurn)
	}

	if that.state.Turn != that.maximizer {
		return fmt.Errorf("%w: %s to move, searching for %s", apperror.ErrIllegalTurn, that.state.Turn, that.maximizer)
	}

	if that.state.IsTerminal() {
		return apperror.ErrNoMoveAvailable
	}

	return nil
}

// evaluate - exact value of a terminal state.
func (that *Searcher) evaluate() Score {
	switch that.state.Winner() {
	case that.maximizer:
		return Win
	case that.maximizer.Opponent():
		return Loss
	default:
		return Draw
	}
}
